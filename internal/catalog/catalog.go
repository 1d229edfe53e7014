// Package catalog holds the read-only table of FPV video channels, grouped by
// modulation, frequency range, and band. A Catalog is built once at startup
// and never mutated afterwards, so a single value can be shared by every
// request without locking.
package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

//go:embed default_catalog.yaml
var defaultCatalog []byte

// DefaultRange is used whenever a lookup omits the frequency range.
const DefaultRange = "5.8GHz"

// Modulation is the transmission type of a band.
type Modulation string

const (
	Analog  Modulation = "analog"
	Digital Modulation = "digital"
)

// Valid reports whether m is a known modulation.
func (m Modulation) Valid() bool {
	return m == Analog || m == Digital
}

// ParseModulation accepts the modulation names case-insensitively.
func ParseModulation(s string) (Modulation, error) {
	m := Modulation(strings.ToLower(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", errors.Errorf("unknown modulation %q", s)
	}
	return m, nil
}

// rangeAliases maps the compact range identifiers used by older clients to
// the display names stored in the catalog.
var rangeAliases = map[string]string{
	"5G8": "5.8GHz",
	"5G3": "5.3GHz",
	"4G9": "4.9GHz",
	"3G3": "3.3GHz",
}

// NormalizeRange returns the canonical name for a frequency range. Empty
// input resolves to DefaultRange.
func NormalizeRange(r string) string {
	r = strings.TrimSpace(r)
	if r == "" {
		return DefaultRange
	}
	if canonical, ok := rangeAliases[strings.ToUpper(r)]; ok {
		return canonical
	}
	return r
}

// Band is one named group of channels sharing a bandwidth and region.
type Band struct {
	Name      string             `yaml:"name"      json:"bandName,omitempty"`
	Bandwidth int                `yaml:"bandwidth" json:"bandwidth"`
	Region    string             `yaml:"region"    json:"region,omitempty"`
	Channels  map[string]float64 `yaml:"channels"  json:"channels"`
}

// ChannelNumbers returns the band's channel numbers in natural order.
func (b Band) ChannelNumbers() []string {
	keys := make([]string, 0, len(b.Channels))
	for k := range b.Channels {
		keys = append(keys, k)
	}
	sortChannelKeys(keys)
	return keys
}

type tree map[Modulation]map[string]map[string]Band

// Catalog is the immutable channel table.
type Catalog struct {
	source string
	data   tree
}

// Default returns the reference catalog compiled into the binary.
func Default() *Catalog {
	c, err := Parse(defaultCatalog)
	if err != nil {
		panic("embedded catalog is invalid: " + err.Error())
	}
	c.source = "embedded"
	return c
}

// Load reads and parses a catalog document from disk.
func Load(path string) (*Catalog, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read catalog error")
	}
	c, err := Parse(b)
	if err != nil {
		return nil, errors.Wrapf(err, "parse catalog %s", path)
	}
	c.source = path
	return c, nil
}

// Parse decodes a YAML catalog document. JSON documents are accepted too,
// since every JSON document is valid YAML.
func Parse(b []byte) (*Catalog, error) {
	var raw map[string]map[string]map[string]Band
	if err := yaml.Unmarshal(b, &raw); err != nil {
		return nil, errors.Wrap(err, "decode catalog error")
	}

	data := make(tree, len(raw))
	for modName, ranges := range raw {
		mod, err := ParseModulation(modName)
		if err != nil {
			return nil, err
		}
		if data[mod] == nil {
			data[mod] = make(map[string]map[string]Band, len(ranges))
		}
		for rangeName, bands := range ranges {
			rng := NormalizeRange(rangeName)
			if data[mod][rng] == nil {
				data[mod][rng] = make(map[string]Band, len(bands))
			}
			for id, band := range bands {
				if err := validateBand(band); err != nil {
					return nil, errors.Wrapf(err, "%s/%s/%s", mod, rng, id)
				}
				if _, dup := data[mod][rng][id]; dup {
					return nil, errors.Errorf("%s/%s/%s: band defined more than once (again under %s/%s)", mod, rng, id, modName, rangeName)
				}
				data[mod][rng][id] = band
			}
		}
	}
	return &Catalog{source: "inline", data: data}, nil
}

func validateBand(b Band) error {
	if b.Bandwidth <= 0 {
		return errors.New("bandwidth must be > 0")
	}
	if len(b.Channels) == 0 {
		return errors.New("band has no channels")
	}
	for ch, f := range b.Channels {
		if f <= 0 {
			return errors.Errorf("channel %s: frequency must be > 0", ch)
		}
	}
	return nil
}

// Source describes where the catalog was loaded from.
func (c *Catalog) Source() string {
	return c.source
}

// Band returns the band definition for the given selector parts. The
// returned channel map is a copy.
func (c *Catalog) Band(mod Modulation, rng, band string) (Band, bool) {
	b, ok := c.data[mod][NormalizeRange(rng)][band]
	if !ok {
		return Band{}, false
	}
	return b.clone(), true
}

func (b Band) clone() Band {
	b.Channels = maps.Clone(b.Channels)
	return b
}

// Frequency returns the carrier frequency in MHz of one channel.
func (c *Catalog) Frequency(mod Modulation, rng, band, channel string) (float64, bool) {
	f, ok := c.data[mod][NormalizeRange(rng)][band].Channels[channel]
	return f, ok
}

// Entry is one band together with its position in the catalog tree.
type Entry struct {
	Modulation Modulation `json:"modulation"`
	Range      string     `json:"range"`
	ID         string     `json:"band"`
	Band
}

// Entries returns every band, sorted by modulation, range, and band id.
func (c *Catalog) Entries() []Entry {
	var out []Entry
	for mod, ranges := range c.data {
		for rng, bands := range ranges {
			for id, b := range bands {
				out = append(out, Entry{Modulation: mod, Range: rng, ID: id, Band: b.clone()})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Modulation != b.Modulation {
			return a.Modulation < b.Modulation
		}
		if a.Range != b.Range {
			return a.Range < b.Range
		}
		return a.ID < b.ID
	})
	return out
}

// Channel is a single resolved catalog entry.
type Channel struct {
	Modulation Modulation `json:"modulation"`
	Range      string     `json:"range"`
	Band       string     `json:"band"`
	Number     string     `json:"channel"`
	Frequency  float64    `json:"frequency"`
	Bandwidth  int        `json:"bandwidth"`
	Region     string     `json:"region,omitempty"`
}

// ID renders the channel as "modulation/range/band/channel".
func (ch Channel) ID() string {
	return fmt.Sprintf("%s/%s/%s/%s", ch.Modulation, ch.Range, ch.Band, ch.Number)
}

// Channels lists every channel of one modulation and range, sorted by
// frequency and then by band and channel number.
func (c *Catalog) Channels(mod Modulation, rng string) []Channel {
	rng = NormalizeRange(rng)
	var out []Channel
	for id, b := range c.data[mod][rng] {
		for num, f := range b.Channels {
			out = append(out, Channel{
				Modulation: mod,
				Range:      rng,
				Band:       id,
				Number:     num,
				Frequency:  f,
				Bandwidth:  b.Bandwidth,
				Region:     b.Region,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Frequency != b.Frequency {
			return a.Frequency < b.Frequency
		}
		if a.Band != b.Band {
			return a.Band < b.Band
		}
		return lessChannelKey(a.Number, b.Number)
	})
	return out
}

// ChannelCount returns the total number of channels across all bands.
func (c *Catalog) ChannelCount() int {
	n := 0
	for _, ranges := range c.data {
		for _, bands := range ranges {
			for _, b := range bands {
				n += len(b.Channels)
			}
		}
	}
	return n
}

// MarshalJSON exposes the nested tree in the same shape it is loaded from.
func (c *Catalog) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.data)
}

func sortChannelKeys(keys []string) {
	sort.Slice(keys, func(i, j int) bool { return lessChannelKey(keys[i], keys[j]) })
}

// lessChannelKey orders numeric channel numbers numerically and everything
// else lexically after them.
func lessChannelKey(a, b string) bool {
	ai, aErr := strconv.Atoi(a)
	bi, bErr := strconv.Atoi(b)
	switch {
	case aErr == nil && bErr == nil:
		return ai < bi
	case aErr == nil:
		return true
	case bErr == nil:
		return false
	default:
		return a < b
	}
}

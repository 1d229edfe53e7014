// Package interference estimates mutual interference between FPV video
// transmitters: per-target scoring, all-pairs group analysis, the
// adjacent-channel overlap view, and alternative-channel suggestions.
//
// The Engine reads from an injected catalog and never mutates it; every
// call is synchronous and allocates its own working state, so one Engine
// can serve concurrent requests.
package interference

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/large-farva/vtx-planner/internal/catalog"
	"github.com/large-farva/vtx-planner/internal/rf"
)

// ErrChannelNotFound is matched by every *NotFoundError.
var ErrChannelNotFound = errors.New("channel not found")

// Selector names one catalog channel.
type Selector struct {
	Band       string             `json:"band"`
	Channel    string             `json:"channel"`
	Range      string             `json:"range,omitempty"`
	Modulation catalog.Modulation `json:"modulation,omitempty"`
}

func (s Selector) String() string {
	return fmt.Sprintf("%s/%s/%s/%s", s.Modulation, s.Range, s.Band, s.Channel)
}

// withDefaults fills an empty modulation from mod and canonicalises the range.
func (s Selector) withDefaults(mod catalog.Modulation) Selector {
	if s.Modulation == "" {
		s.Modulation = mod
	}
	if s.Modulation == "" {
		s.Modulation = catalog.Analog
	}
	s.Range = catalog.NormalizeRange(s.Range)
	return s
}

// NotFoundError reports a selector that does not resolve in the catalog.
type NotFoundError struct {
	Selector Selector
}

func (e *NotFoundError) Error() string {
	return "channel not found: " + e.Selector.String()
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrChannelNotFound
}

// Engine binds the scorer to a catalog.
type Engine struct {
	cat    *catalog.Catalog
	cal    Calibration
	scorer Scorer
}

// New returns an engine reading from cat with the given calibration.
func New(cat *catalog.Catalog, cal Calibration) *Engine {
	return &Engine{
		cat:    cat,
		cal:    cal,
		scorer: NewScorer(cal),
	}
}

func (e *Engine) Catalog() *catalog.Catalog {
	return e.cat
}

func (e *Engine) Calibration() Calibration {
	return e.cal
}

// Frequency looks up an analog channel; an empty range means 5.8GHz.
func (e *Engine) Frequency(band, channel, rng string) (float64, bool) {
	return e.cat.Frequency(catalog.Analog, rng, band, channel)
}

// PowerRatio returns the calibrated power ratio between two frequencies.
func (e *Engine) PowerRatio(f1, f2 float64) float64 {
	return e.scorer.PowerRatio(f1, f2)
}

// IMDProducts enumerates intermodulation products up to order.
func (e *Engine) IMDProducts(freqs []float64, order int) []float64 {
	return rf.IMDProducts(freqs, order)
}

// TotalInterference scores target against others.
func (e *Engine) TotalInterference(target float64, others []float64) Result {
	return e.scorer.TotalInterference(target, others)
}

// resolve maps every selector to a catalog channel, preserving order. The
// first miss aborts the whole call.
func (e *Engine) resolve(selectors []Selector, mod catalog.Modulation) ([]catalog.Channel, error) {
	out := make([]catalog.Channel, 0, len(selectors))
	for _, sel := range selectors {
		sel = sel.withDefaults(mod)
		band, ok := e.cat.Band(sel.Modulation, sel.Range, sel.Band)
		if !ok {
			return nil, &NotFoundError{Selector: sel}
		}
		f, ok := band.Channels[sel.Channel]
		if !ok {
			return nil, &NotFoundError{Selector: sel}
		}
		out = append(out, catalog.Channel{
			Modulation: sel.Modulation,
			Range:      sel.Range,
			Band:       sel.Band,
			Number:     sel.Channel,
			Frequency:  f,
			Bandwidth:  band.Bandwidth,
			Region:     band.Region,
		})
	}
	return out, nil
}

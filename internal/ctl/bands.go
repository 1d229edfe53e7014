package ctl

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/large-farva/vtx-planner/internal/catalog"
)

// BandsOptions filters the bands command.
type BandsOptions struct {
	Region     string
	Modulation string
	Bandwidth  int
	JSON       bool
}

// Bands lists the daemon's channel catalog grouped by modulation and range.
func Bands(baseURL string, opts BandsOptions) error {
	q := url.Values{}
	if opts.Region != "" {
		q.Set("region", opts.Region)
	}
	if opts.Modulation != "" {
		q.Set("modulation", opts.Modulation)
	}
	if opts.Bandwidth > 0 {
		q.Set("bandwidth", strconv.Itoa(opts.Bandwidth))
	}

	var data map[string]map[string]map[string]catalog.Band
	if err := getJSON(baseURL, "/api/data", q, &data); err != nil {
		return err
	}
	if opts.JSON {
		return printJSON(data)
	}

	fmt.Fprintln(stdout)
	if len(data) == 0 {
		fmt.Fprintln(stdout, colorize(dim, "  no bands match"))
		fmt.Fprintln(stdout)
		return nil
	}

	for _, mod := range sortedKeys(data) {
		ranges := data[mod]
		for _, rng := range sortedKeys(ranges) {
			bands := ranges[rng]
			fmt.Fprintln(stdout, header(fmt.Sprintf("  %s %s", strings.ToUpper(mod), rng)))

			t := newTable("  ", "Band", "Name", "BW", "Region", "Channels (MHz)")
			for _, id := range sortedKeys(bands) {
				b := bands[id]
				freqs := make([]string, 0, len(b.Channels))
				for _, num := range b.ChannelNumbers() {
					freqs = append(freqs, fmt.Sprintf("%g", b.Channels[num]))
				}
				region := b.Region
				if region == "" {
					region = "-"
				}
				t.row(id, b.Name, fmt.Sprintf("%d", b.Bandwidth), region, strings.Join(freqs, " "))
			}
			t.flush()
			fmt.Fprintln(stdout)
		}
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

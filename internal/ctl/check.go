package ctl

import (
	"fmt"
	"net/url"

	"github.com/large-farva/vtx-planner/internal/catalog"
	"github.com/large-farva/vtx-planner/internal/interference"
)

// CheckOptions selects the channel whose band neighbours are rated.
type CheckOptions struct {
	Selector   Selector
	Modulation string
	JSON       bool
}

// Check shows how much every channel of a band overlaps the selected one.
func Check(baseURL string, opts CheckOptions) error {
	mod := opts.Modulation
	if mod == "" {
		mod = string(catalog.Analog)
	}
	rng := catalog.NormalizeRange(opts.Selector.Range)

	q := url.Values{}
	q.Set("modulation", mod)
	q.Set("range", rng)
	q.Set("band", opts.Selector.Band)
	q.Set("channel", opts.Selector.Channel)

	var report interference.ChannelReport
	if err := getJSON(baseURL, "/api/interference", q, &report); err != nil {
		return err
	}
	if opts.JSON {
		return printJSON(report)
	}

	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, header(fmt.Sprintf("  %s%s  %g MHz  (%s %s, %d MHz wide)",
		report.Band, report.Channel, report.Frequency, report.Modulation, report.Range, report.Bandwidth)))
	fmt.Fprintln(stdout, rule(50))

	t := newTable("  ", "Ch", "Freq", "Dist", "Overlap", "", "Category")
	for _, ch := range report.Channels {
		t.row(
			report.Band+ch.Channel,
			fmt.Sprintf("%g", ch.Frequency),
			fmt.Sprintf("%g", ch.Distance),
			fmt.Sprintf("%6.2f%%", ch.OverlapPercent),
			percentBar(ch.OverlapPercent, 20, overlapLevel(ch.Category)),
			colorize(overlapColor(string(ch.Category)), string(ch.Category)),
		)
	}
	t.flush()
	fmt.Fprintln(stdout)
	return nil
}

// overlapLevel maps an overlap category onto the risk palette.
func overlapLevel(c interference.OverlapCategory) string {
	switch c {
	case interference.OverlapSource:
		return "none"
	case interference.OverlapFull:
		return "critical"
	case interference.OverlapPartial:
		return "medium"
	case interference.OverlapClose:
		return "low"
	default:
		return "none"
	}
}

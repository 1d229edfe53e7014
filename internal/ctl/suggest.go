package ctl

import (
	"fmt"
	"strings"

	"github.com/large-farva/vtx-planner/internal/interference"
)

// SuggestOptions names the occupied channels and where to look for free
// ones.
type SuggestOptions struct {
	Selectors  []Selector
	Modulation string
	Range      string
	JSON       bool
}

// Suggest asks the daemon for up to three quiet channels next to a group.
func Suggest(baseURL string, opts SuggestOptions) error {
	var s interference.Suggestion
	body := groupBody{Channels: opts.Selectors, Modulation: opts.Modulation, Range: opts.Range}
	if err := postJSON(baseURL, "/api/interference/suggest", body, &s); err != nil {
		return err
	}
	if opts.JSON {
		return printJSON(s)
	}

	selected := make([]string, len(s.Selected))
	for i, ch := range s.Selected {
		selected[i] = fmt.Sprintf("%s (%g)", shortLabel(ch.Band, ch.Number), ch.Frequency)
	}

	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, header("  SUGGESTED CHANNELS"))
	fmt.Fprintf(stdout, "  %s %s\n", colorize(dim, "occupied:"), strings.Join(selected, ", "))
	fmt.Fprintln(stdout, rule(50))

	if len(s.Alternatives) == 0 {
		fmt.Fprintln(stdout, colorize(yellow, "  no channel with low or no interference is left"))
		fmt.Fprintln(stdout)
		return nil
	}

	t := newTable("  ", "Ch", "Freq", "Range", "Total", "Level")
	for _, alt := range s.Alternatives {
		t.row(
			shortLabel(alt.Band, alt.Number),
			fmt.Sprintf("%g", alt.Frequency),
			alt.Range,
			fmt.Sprintf("%.2f%%", alt.Interference.TotalPercent),
			colorize(riskColor(alt.Level), alt.Level),
		)
	}
	t.flush()
	fmt.Fprintln(stdout)
	return nil
}

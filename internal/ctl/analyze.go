package ctl

import (
	"fmt"
	"strings"

	"github.com/large-farva/vtx-planner/internal/interference"
)

// AnalyzeOptions names the channels flown together.
type AnalyzeOptions struct {
	Selectors  []Selector
	Modulation string
	JSON       bool
}

type groupBody struct {
	Channels   []Selector `json:"channels"`
	Modulation string     `json:"modulation,omitempty"`
	Range      string     `json:"range,omitempty"`
}

// Analyze scores a group of simultaneously active channels.
func Analyze(baseURL string, opts AnalyzeOptions) error {
	var report interference.GroupReport
	body := groupBody{Channels: opts.Selectors, Modulation: opts.Modulation}
	if err := postJSON(baseURL, "/api/interference/analyze", body, &report); err != nil {
		return err
	}
	if opts.JSON {
		return printJSON(report)
	}
	renderGroup(&report)
	return nil
}

func shortLabel(band, number string) string {
	return band + number
}

func renderGroup(r *interference.GroupReport) {
	labels := make([]string, len(r.Channels))
	for i, ch := range r.Channels {
		labels[i] = shortLabel(ch.Band, ch.Number)
	}

	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, header(fmt.Sprintf("  GROUP ANALYSIS  (%d channels)", r.Analysis.TotalChannels)))
	fmt.Fprintln(stdout, rule(56))

	t := newTable("  ", "Ch", "Freq", "Total", "", "Risk", "IMD products")
	for i, ch := range r.Channels {
		imd := make([]string, len(ch.IMDProducts))
		for k, p := range ch.IMDProducts {
			imd[k] = fmt.Sprintf("%g", p)
		}
		level := string(ch.RiskLevel)
		t.row(
			labels[i],
			fmt.Sprintf("%g", ch.Frequency),
			fmt.Sprintf("%6.2f%%", ch.Interference.TotalPercent),
			percentBar(ch.Interference.TotalPercent, 20, level),
			colorize(riskColor(level), level),
			strings.Join(imd, " "),
		)
	}
	t.flush()

	if len(r.Matrix) > 1 {
		fmt.Fprintln(stdout)
		fmt.Fprintln(stdout, header("  PAIRWISE INTERFERENCE (%)"))
		m := newTable("  ", append([]string{""}, labels...)...)
		for i, row := range r.Matrix {
			cells := []string{labels[i]}
			for _, cell := range row {
				if cell.Self {
					cells = append(cells, "-")
					continue
				}
				cells = append(cells, fmt.Sprintf("%.2f", cell.Interference))
			}
			m.row(cells...)
		}
		m.flush()
	}

	if len(r.CriticalPairs) > 0 {
		fmt.Fprintln(stdout)
		fmt.Fprintln(stdout, header("  CRITICAL PAIRS"))
		for _, p := range r.CriticalPairs {
			fmt.Fprintf(stdout, "    %s <-> %s  %g MHz apart, %.2f%%  %s\n",
				padRight(labels[p.A], 4), padRight(labels[p.B], 4),
				p.Separation, p.Interference,
				colorize(dim, "("+strings.Join(p.Reasons, ", ")+")"))
		}
	}

	fmt.Fprintln(stdout)
	verdict := colorize(green, "SAFE")
	if !r.Analysis.SafeSeparation {
		verdict = colorize(red, "UNSAFE")
	}
	minSep := "n/a"
	if r.Analysis.MinSeparation != nil {
		minSep = fmt.Sprintf("%g MHz", *r.Analysis.MinSeparation)
	}
	fmt.Fprintf(stdout, "  %s  min separation %s, max pairwise %.2f%%  %s\n\n",
		verdict, minSep, r.Analysis.MaxInterference,
		colorize(dim, fmt.Sprintf("(needs >= %g MHz and < %g%%)", r.Analysis.Debug.MinSafeDistance, r.Analysis.Debug.HighThreshold)))
}

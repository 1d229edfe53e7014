package interference

import (
	"math"
	"sort"

	"github.com/large-farva/vtx-planner/internal/catalog"
	"github.com/large-farva/vtx-planner/internal/rf"
)

// OverlapCategory buckets the spectral overlap of two channels in a band.
type OverlapCategory string

const (
	OverlapSource  OverlapCategory = "source"
	OverlapFull    OverlapCategory = "full_overlap"
	OverlapPartial OverlapCategory = "partial_overlap"
	OverlapClose   OverlapCategory = "close"
	OverlapSafe    OverlapCategory = "safe"
)

// ChannelOverlap is one band member as seen from the selected channel.
type ChannelOverlap struct {
	Channel        string          `json:"channel"`
	Frequency      float64         `json:"frequency"`
	Distance       float64         `json:"distance"`
	OverlapPercent float64         `json:"overlap_percent"`
	Category       OverlapCategory `json:"category"`
}

// ChannelReport is the adjacent-channel view of one selected channel.
type ChannelReport struct {
	Modulation catalog.Modulation `json:"modulation"`
	Range      string             `json:"range"`
	Band       string             `json:"band"`
	Channel    string             `json:"channel"`
	Frequency  float64            `json:"frequency"`
	Bandwidth  int                `json:"bandwidth"`
	Channels   []ChannelOverlap   `json:"channels"`
}

// Categorize buckets a Gaussian overlap percentage.
func (t OverlapThresholds) Categorize(pct float64) OverlapCategory {
	switch {
	case pct >= t.Full:
		return OverlapFull
	case pct >= t.Partial:
		return OverlapPartial
	case pct >= t.Close:
		return OverlapClose
	default:
		return OverlapSafe
	}
}

// AnalyzeChannel rates every channel of the selected channel's band by its
// Gaussian spectral overlap with the selection. This is the simple two-channel
// model and is independent of TotalInterference.
func (e *Engine) AnalyzeChannel(mod catalog.Modulation, rng, band, channel string) (*ChannelReport, error) {
	sel := Selector{Band: band, Channel: channel, Range: rng, Modulation: mod}.withDefaults(mod)

	b, ok := e.cat.Band(sel.Modulation, sel.Range, sel.Band)
	if !ok {
		return nil, &NotFoundError{Selector: sel}
	}
	selected, ok := b.Channels[sel.Channel]
	if !ok {
		return nil, &NotFoundError{Selector: sel}
	}

	report := &ChannelReport{
		Modulation: sel.Modulation,
		Range:      sel.Range,
		Band:       sel.Band,
		Channel:    sel.Channel,
		Frequency:  selected,
		Bandwidth:  b.Bandwidth,
	}
	for _, num := range b.ChannelNumbers() {
		f := b.Channels[num]
		d := math.Abs(f - selected)
		pct := rf.GaussianOverlap(d, float64(b.Bandwidth))

		cat := e.cal.Overlap.Categorize(pct)
		if num == sel.Channel {
			cat = OverlapSource
		}
		report.Channels = append(report.Channels, ChannelOverlap{
			Channel:        num,
			Frequency:      f,
			Distance:       d,
			OverlapPercent: round2(pct),
			Category:       cat,
		})
	}
	sort.SliceStable(report.Channels, func(i, j int) bool {
		return report.Channels[i].Frequency < report.Channels[j].Frequency
	})
	return report, nil
}

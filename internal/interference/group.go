package interference

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/large-farva/vtx-planner/internal/catalog"
)

// ResolvedChannel is one selected channel with its overall score against
// every other selected channel.
type ResolvedChannel struct {
	catalog.Channel
	RiskLevel    RiskLevel `json:"risk_level"`
	Interference Result    `json:"interference"`
	IMDProducts  []float64 `json:"imd_products"`
}

// Cell is one entry of the interference matrix. Row i, column j holds the
// score of channel i against channel j alone, which is not the overall
// score of channel i split pairwise.
type Cell struct {
	Self         bool      `json:"self,omitempty"`
	Separation   float64   `json:"separation"`
	Interference float64   `json:"interference"`
	RiskLevel    RiskLevel `json:"risk_level"`
	Result       *Result   `json:"result,omitempty"`
}

// CriticalPair is an unordered pair that is too close or interferes too
// much. Interference is the worse of the two matrix directions.
type CriticalPair struct {
	A            int      `json:"a"`
	B            int      `json:"b"`
	Channels     []string `json:"channels"`
	Separation   float64  `json:"separation"`
	Interference float64  `json:"interference"`
	Reasons      []string `json:"reasons"`
}

// PairTrace is one ordered matrix entry, kept for inspection.
type PairTrace struct {
	From         string  `json:"ch1"`
	To           string  `json:"ch2"`
	Separation   float64 `json:"separation"`
	Interference float64 `json:"interference"`
}

// AnalysisDebug exposes the thresholds the verdict was computed with.
type AnalysisDebug struct {
	MinSafeDistance float64     `json:"min_safe_distance"`
	HighThreshold   float64     `json:"high_threshold"`
	AllPairs        []PairTrace `json:"all_pairs"`
}

// Analysis is the aggregate verdict for the group.
type Analysis struct {
	TotalChannels   int           `json:"total_channels"`
	MaxInterference float64       `json:"max_interference"`
	MinSeparation   *float64      `json:"min_separation"` // nil for fewer than two channels
	SafeSeparation  bool          `json:"safe_separation"`
	Debug           AnalysisDebug `json:"debug"`
}

// GroupReport is the full result of AnalyzeGroup.
type GroupReport struct {
	Channels      []ResolvedChannel `json:"channels"`
	Matrix        [][]Cell          `json:"interference_matrix"`
	CriticalPairs []CriticalPair    `json:"critical_pairs"`
	Analysis      Analysis          `json:"analysis"`
}

// AnalyzeGroup scores every selected channel against the rest of the group
// and against each other channel in isolation. Selectors without a
// modulation use mod. If any selector does not resolve, the call fails with
// a *NotFoundError and no partial report.
func (e *Engine) AnalyzeGroup(selectors []Selector, mod catalog.Modulation) (*GroupReport, error) {
	chans, err := e.resolve(selectors, mod)
	if err != nil {
		return nil, err
	}

	n := len(chans)
	freqs := make([]float64, n)
	for i, ch := range chans {
		freqs[i] = ch.Frequency
	}

	report := &GroupReport{
		Channels:      make([]ResolvedChannel, n),
		Matrix:        make([][]Cell, n),
		CriticalPairs: []CriticalPair{},
	}

	for i, ch := range chans {
		res := e.scorer.TotalInterference(freqs[i], without(freqs, i))
		report.Channels[i] = ResolvedChannel{
			Channel:      ch,
			RiskLevel:    res.RiskLevel,
			Interference: res,
			IMDProducts:  res.IMDFrequencies,
		}
	}

	var (
		seps      []float64
		levels    []float64
		allPairs  = []PairTrace{}
		highLimit = e.cal.Risk.High
	)
	for i := range chans {
		row := make([]Cell, n)
		for j := range chans {
			if i == j {
				row[j] = Cell{Self: true, RiskLevel: RiskNone}
				continue
			}
			res := e.scorer.TotalInterference(freqs[i], []float64{freqs[j]})
			sep := math.Abs(freqs[i] - freqs[j])
			row[j] = Cell{
				Separation:   sep,
				Interference: res.TotalPercent,
				RiskLevel:    res.RiskLevel,
				Result:       &res,
			}
			seps = append(seps, sep)
			levels = append(levels, res.TotalPercent)
			allPairs = append(allPairs, PairTrace{
				From:         chans[i].ID(),
				To:           chans[j].ID(),
				Separation:   sep,
				Interference: res.TotalPercent,
			})
		}
		report.Matrix[i] = row
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			sep := report.Matrix[i][j].Separation
			worst := math.Max(report.Matrix[i][j].Interference, report.Matrix[j][i].Interference)

			var reasons []string
			if sep < e.cal.MinSafeDistance {
				reasons = append(reasons, "separation")
			}
			if worst >= highLimit {
				reasons = append(reasons, "interference")
			}
			if len(reasons) == 0 {
				continue
			}
			report.CriticalPairs = append(report.CriticalPairs, CriticalPair{
				A:            i,
				B:            j,
				Channels:     []string{chans[i].ID(), chans[j].ID()},
				Separation:   sep,
				Interference: worst,
				Reasons:      reasons,
			})
		}
	}

	analysis := Analysis{
		TotalChannels:  n,
		SafeSeparation: true,
		Debug: AnalysisDebug{
			MinSafeDistance: e.cal.MinSafeDistance,
			HighThreshold:   highLimit,
			AllPairs:        allPairs,
		},
	}
	if len(seps) > 0 {
		minSep := floats.Min(seps)
		analysis.MinSeparation = &minSep
		analysis.MaxInterference = floats.Max(levels)
		analysis.SafeSeparation = minSep >= e.cal.MinSafeDistance && analysis.MaxInterference < highLimit
	}
	report.Analysis = analysis

	return report, nil
}

// without returns a copy of fs with index i removed.
func without(fs []float64, i int) []float64 {
	out := make([]float64, 0, len(fs)-1)
	out = append(out, fs[:i]...)
	return append(out, fs[i+1:]...)
}

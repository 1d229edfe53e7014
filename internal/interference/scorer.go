package interference

import (
	"math"

	"github.com/large-farva/vtx-planner/internal/rf"
)

// Result is the scored interference seen by one target frequency.
type Result struct {
	TotalPercent       float64   `json:"total_percent"`
	RiskLevel          RiskLevel `json:"risk_level"`
	DirectInterference float64   `json:"direct_interference"`
	IMDInterference    float64   `json:"imd_interference"`
	IMDFrequencies     []float64 `json:"imd_frequencies"`
	Debug              Trace     `json:"debug"`
}

// Trace records the intermediate values behind a Result.
type Trace struct {
	TotalChannels int      `json:"total_channels"`
	CloseChannels int      `json:"close_channels"`
	MinSeparation *float64 `json:"min_separation"` // nil when there are no other transmitters
	BaseMax       float64  `json:"base_max"`
	BaseMin       float64  `json:"base_min"`
	Multiplier    float64  `json:"multiplier"`
	DirectCoef    float64  `json:"direct_coef"`
	IMDCoef       float64  `json:"imd_coef"`
}

// Scorer turns a target frequency and its spectrum neighbours into a Result.
// It is a pure function of its calibration and inputs.
type Scorer struct {
	cal Calibration
}

// NewScorer returns a scorer using cal.
func NewScorer(cal Calibration) Scorer {
	return Scorer{cal: cal}
}

// PowerRatio exposes the calibrated signal model.
func (s Scorer) PowerRatio(f1, f2 float64) float64 {
	return s.cal.Signal.PowerRatio(f1, f2)
}

// TotalInterference scores target against others. An empty others list is
// a valid input and scores zero.
func (s Scorer) TotalInterference(target float64, others []float64) Result {
	cal := s.cal

	minSep := math.Inf(1)
	closeCount := 0
	closeLimit := cal.CloseFactor * cal.MinSafeDistance
	for _, o := range others {
		d := math.Abs(target - o)
		if d < minSep {
			minSep = d
		}
		if d <= closeLimit {
			closeCount++
		}
	}

	total := len(others) + 1
	clustered := closeCount >= cal.ClusteredCount
	tier := cal.Multipliers.pick(total >= cal.CrowdedCount, clustered)
	multiplier := interpolate(tier, minSep, cal.MinSafeDistance)
	coef := cal.Coefficients.pick(clustered)

	direct := 0.0
	for _, o := range others {
		direct += s.PowerRatio(target, o) * coef.Direct
	}

	freqs := make([]float64, 0, total)
	freqs = append(freqs, target)
	freqs = append(freqs, others...)
	products := rf.IMDProducts(freqs, cal.IMDOrder)

	imd := 0.0
	for _, p := range products {
		imd += s.PowerRatio(target, p) * coef.IMD
	}

	pct := round2(clamp((direct+imd)*multiplier, 0, 100))

	trace := Trace{
		TotalChannels: total,
		CloseChannels: closeCount,
		BaseMax:       tier.Max,
		BaseMin:       tier.Min,
		Multiplier:    round4(multiplier),
		DirectCoef:    coef.Direct,
		IMDCoef:       coef.IMD,
	}
	if !math.IsInf(minSep, 1) {
		trace.MinSeparation = &minSep
	}

	return Result{
		TotalPercent:       pct,
		RiskLevel:          cal.Risk.Classify(pct),
		DirectInterference: round2(direct),
		IMDInterference:    round2(imd),
		IMDFrequencies:     products,
		Debug:              trace,
	}
}

// interpolate scales the tier linearly from Max at minSafe down to Min at
// twice minSafe.
func interpolate(tier MultiplierTier, minSep, minSafe float64) float64 {
	switch {
	case minSep <= minSafe:
		return tier.Max
	case minSep >= 2*minSafe:
		return tier.Min
	default:
		t := (minSep - minSafe) / minSafe
		return tier.Max - t*(tier.Max-tier.Min)
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}

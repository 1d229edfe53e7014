package interference

import (
	"math"

	"github.com/pkg/errors"

	"github.com/large-farva/vtx-planner/internal/rf"
)

// MultiplierTier is the multiplier range used for one crowding tier. Max
// applies at or below the minimum safe distance, Min at or beyond twice it.
type MultiplierTier struct {
	Max float64 `toml:"max" json:"max"`
	Min float64 `toml:"min" json:"min"`
}

// MultiplierTable picks a tier from two questions: are at least
// CrowdedCount transmitters on air, and are at least ClusteredCount of the
// others close to the target.
type MultiplierTable struct {
	Sparse           MultiplierTier `toml:"sparse"            json:"sparse"`
	Clustered        MultiplierTier `toml:"clustered"         json:"clustered"`
	Crowded          MultiplierTier `toml:"crowded"           json:"crowded"`
	CrowdedClustered MultiplierTier `toml:"crowded_clustered" json:"crowded_clustered"`
}

func (t MultiplierTable) pick(crowded, clustered bool) MultiplierTier {
	switch {
	case crowded && clustered:
		return t.CrowdedClustered
	case crowded:
		return t.Crowded
	case clustered:
		return t.Clustered
	default:
		return t.Sparse
	}
}

// CoefficientTier weighs direct and intermodulation contributions.
type CoefficientTier struct {
	Direct float64 `toml:"direct" json:"direct"`
	IMD    float64 `toml:"imd"    json:"imd"`
}

// CoefficientTable is keyed on whether the target has a cluster of close
// neighbours.
type CoefficientTable struct {
	Sparse    CoefficientTier `toml:"sparse"    json:"sparse"`
	Clustered CoefficientTier `toml:"clustered" json:"clustered"`
}

func (t CoefficientTable) pick(clustered bool) CoefficientTier {
	if clustered {
		return t.Clustered
	}
	return t.Sparse
}

// RiskThresholds are the lower bounds, in percent, of each risk level.
type RiskThresholds struct {
	Critical float64 `toml:"critical" json:"critical"`
	High     float64 `toml:"high"     json:"high"`
	Medium   float64 `toml:"medium"   json:"medium"`
	Low      float64 `toml:"low"      json:"low"`
}

// OverlapThresholds are the lower bounds, as Gaussian overlap percentages,
// of the adjacent-channel categories.
type OverlapThresholds struct {
	Full    float64 `toml:"full"    json:"full"`
	Partial float64 `toml:"partial" json:"partial"`
	Close   float64 `toml:"close"   json:"close"`
}

// Calibration collects every tunable constant of the risk model.
type Calibration struct {
	Signal          rf.Model `toml:"signal"                json:"signal"`
	MinSafeDistance float64  `toml:"min_safe_distance_mhz" json:"min_safe_distance_mhz"`
	CloseFactor     float64  `toml:"close_factor"          json:"close_factor"`
	CrowdedCount    int      `toml:"crowded_count"         json:"crowded_count"`
	ClusteredCount  int      `toml:"clustered_count"       json:"clustered_count"`
	IMDOrder        int      `toml:"imd_order"             json:"imd_order"`

	Multipliers  MultiplierTable   `toml:"multipliers"  json:"multipliers"`
	Coefficients CoefficientTable  `toml:"coefficients" json:"coefficients"`
	Risk         RiskThresholds    `toml:"risk"         json:"risk"`
	Overlap      OverlapThresholds `toml:"overlap"      json:"overlap"`
}

// DefaultCalibration returns the reference tuning. The minimum safe distance
// sits just above the 37 MHz raceband spacing.
func DefaultCalibration() Calibration {
	return Calibration{
		Signal:          rf.DefaultModel(),
		MinSafeDistance: 38,
		CloseFactor:     1.5,
		CrowdedCount:    3,
		ClusteredCount:  2,
		IMDOrder:        3,
		Multipliers: MultiplierTable{
			Sparse:           MultiplierTier{Max: 4.0, Min: 1.0},
			Clustered:        MultiplierTier{Max: 4.5, Min: 1.2},
			Crowded:          MultiplierTier{Max: 4.5, Min: 1.2},
			CrowdedClustered: MultiplierTier{Max: 5.0, Min: 1.5},
		},
		Coefficients: CoefficientTable{
			Sparse:    CoefficientTier{Direct: 100, IMD: 60},
			Clustered: CoefficientTier{Direct: 120, IMD: 80},
		},
		Risk: RiskThresholds{
			Critical: 35,
			High:     28,
			Medium:   15,
			Low:      5,
		},
		Overlap: OverlapThresholds{
			Full:    50,
			Partial: 10,
			Close:   1,
		},
	}
}

// Validate rejects calibrations that would make the model non-monotone or
// divide by zero.
func (c Calibration) Validate() error {
	if err := c.checkFinite(); err != nil {
		return err
	}
	if c.Signal.DecayConstant <= 0 {
		return errors.New("signal.decay_constant must be > 0")
	}
	if c.Signal.ChannelWidth <= 0 {
		return errors.New("signal.channel_width_mhz must be > 0")
	}
	if c.MinSafeDistance <= 0 {
		return errors.New("min_safe_distance_mhz must be > 0")
	}
	if c.CloseFactor <= 0 {
		return errors.New("close_factor must be > 0")
	}
	if c.CrowdedCount < 2 {
		return errors.New("crowded_count must be >= 2")
	}
	if c.ClusteredCount < 1 {
		return errors.New("clustered_count must be >= 1")
	}
	if c.IMDOrder < 0 {
		return errors.New("imd_order must be >= 0")
	}

	tiers := []struct {
		name string
		tier MultiplierTier
	}{
		{"sparse", c.Multipliers.Sparse},
		{"clustered", c.Multipliers.Clustered},
		{"crowded", c.Multipliers.Crowded},
		{"crowded_clustered", c.Multipliers.CrowdedClustered},
	}
	for _, t := range tiers {
		if t.tier.Min < 0 || t.tier.Max < t.tier.Min {
			return errors.Errorf("multipliers.%s: need 0 <= min <= max", t.name)
		}
	}
	if c.Coefficients.Sparse.Direct < 0 || c.Coefficients.Sparse.IMD < 0 {
		return errors.New("coefficients.sparse must be >= 0")
	}
	if c.Coefficients.Clustered.Direct < 0 || c.Coefficients.Clustered.IMD < 0 {
		return errors.New("coefficients.clustered must be >= 0")
	}

	r := c.Risk
	if !(r.Critical > r.High && r.High > r.Medium && r.Medium > r.Low && r.Low > 0) {
		return errors.New("risk thresholds must satisfy critical > high > medium > low > 0")
	}
	o := c.Overlap
	if !(o.Full > o.Partial && o.Partial > o.Close && o.Close > 0) {
		return errors.New("overlap thresholds must satisfy full > partial > close > 0")
	}
	return nil
}

// checkFinite rejects NaN and infinite values, which every ordered
// comparison below would let through.
func (c Calibration) checkFinite() error {
	fields := []struct {
		name string
		v    float64
	}{
		{"signal.decay_constant", c.Signal.DecayConstant},
		{"signal.channel_width_mhz", c.Signal.ChannelWidth},
		{"min_safe_distance_mhz", c.MinSafeDistance},
		{"close_factor", c.CloseFactor},
		{"multipliers.sparse.max", c.Multipliers.Sparse.Max},
		{"multipliers.sparse.min", c.Multipliers.Sparse.Min},
		{"multipliers.clustered.max", c.Multipliers.Clustered.Max},
		{"multipliers.clustered.min", c.Multipliers.Clustered.Min},
		{"multipliers.crowded.max", c.Multipliers.Crowded.Max},
		{"multipliers.crowded.min", c.Multipliers.Crowded.Min},
		{"multipliers.crowded_clustered.max", c.Multipliers.CrowdedClustered.Max},
		{"multipliers.crowded_clustered.min", c.Multipliers.CrowdedClustered.Min},
		{"coefficients.sparse.direct", c.Coefficients.Sparse.Direct},
		{"coefficients.sparse.imd", c.Coefficients.Sparse.IMD},
		{"coefficients.clustered.direct", c.Coefficients.Clustered.Direct},
		{"coefficients.clustered.imd", c.Coefficients.Clustered.IMD},
		{"risk.critical", c.Risk.Critical},
		{"risk.high", c.Risk.High},
		{"risk.medium", c.Risk.Medium},
		{"risk.low", c.Risk.Low},
		{"overlap.full", c.Overlap.Full},
		{"overlap.partial", c.Overlap.Partial},
		{"overlap.close", c.Overlap.Close},
	}
	for _, f := range fields {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return errors.Errorf("%s must be a finite number, got %v", f.name, f.v)
		}
	}
	return nil
}

package interference

// RiskLevel is the discrete severity scale of an interference percentage.
type RiskLevel string

const (
	RiskNone     RiskLevel = "none"
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// Rank orders the levels from none (0) to critical (4). Unknown levels rank
// above critical so they never sort as safe.
func (r RiskLevel) Rank() int {
	switch r {
	case RiskNone:
		return 0
	case RiskLow:
		return 1
	case RiskMedium:
		return 2
	case RiskHigh:
		return 3
	case RiskCritical:
		return 4
	default:
		return 5
	}
}

// Classify maps a total percentage to a risk level. Thresholds are tested
// from the highest down; the first one met wins.
func (t RiskThresholds) Classify(total float64) RiskLevel {
	scan := []struct {
		level RiskLevel
		min   float64
	}{
		{RiskCritical, t.Critical},
		{RiskHigh, t.High},
		{RiskMedium, t.Medium},
		{RiskLow, t.Low},
	}
	for _, s := range scan {
		if total >= s.min {
			return s.level
		}
	}
	return RiskNone
}

// SimpleLevel collapses a risk level onto the four-step none/low/medium/high
// scale shown by the channel picker.
func SimpleLevel(r RiskLevel) string {
	switch r {
	case RiskCritical:
		return "high"
	case RiskHigh:
		return "medium"
	default:
		return string(r)
	}
}

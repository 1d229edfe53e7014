// Package rf implements the simplified signal model used to rate how much
// two video transmitters disturb each other. It is a heuristic, not an RF
// propagation simulation: separation in MHz is the only input.
package rf

import "math"

// GaussianOverlap models the spectral overlap of two channels as a Gaussian
// with a standard deviation of half the channel bandwidth, evaluated at the
// given centre distance. The result is a percentage in [0, 100].
func GaussianOverlap(distance, bandwidth float64) float64 {
	if bandwidth <= 0 {
		return 0
	}
	sigma := bandwidth / 2
	return 100 * math.Exp(-(distance*distance)/(2*sigma*sigma))
}

// Model holds the exponential decay calibration used by PowerRatio.
type Model struct {
	DecayConstant float64 `toml:"decay_constant"     json:"decay_constant"`
	ChannelWidth  float64 `toml:"channel_width_mhz"  json:"channel_width_mhz"`
}

// DefaultModel is the reference calibration: 1.2 decay over 20 MHz channels.
func DefaultModel() Model {
	return Model{DecayConstant: 1.2, ChannelWidth: 20}
}

// PowerRatio returns the relative interfering power of a transmitter at f2
// as seen on f1, in (0, 1]. Co-channel transmitters return exactly 1.
func (m Model) PowerRatio(f1, f2 float64) float64 {
	if f1 == f2 {
		return 1
	}
	return math.Exp(-math.Abs(f1-f2) * m.DecayConstant / m.ChannelWidth)
}

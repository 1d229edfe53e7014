package interference

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	th := DefaultCalibration().Risk

	tests := []struct {
		total    float64
		expected RiskLevel
	}{
		{100, RiskCritical},
		{36, RiskCritical},
		{35, RiskCritical},
		{34.99, RiskHigh},
		{30, RiskHigh},
		{28, RiskHigh},
		{20, RiskMedium},
		{15, RiskMedium},
		{6, RiskLow},
		{5, RiskLow},
		{2, RiskNone},
		{0, RiskNone},
	}

	for _, tst := range tests {
		t.Run(fmt.Sprintf("total %.2f", tst.total), func(t *testing.T) {
			assert := require.New(t)
			assert.Equal(tst.expected, th.Classify(tst.total))
			assert.Equal(th.Classify(tst.total), th.Classify(tst.total))
		})
	}
}

func TestRiskLevelRank(t *testing.T) {
	assert := require.New(t)

	levels := []RiskLevel{RiskNone, RiskLow, RiskMedium, RiskHigh, RiskCritical}
	for i := 1; i < len(levels); i++ {
		assert.Less(levels[i-1].Rank(), levels[i].Rank())
	}
	assert.Greater(RiskLevel("bogus").Rank(), RiskCritical.Rank())
}

func TestSimpleLevel(t *testing.T) {
	assert := require.New(t)

	assert.Equal("none", SimpleLevel(RiskNone))
	assert.Equal("low", SimpleLevel(RiskLow))
	assert.Equal("medium", SimpleLevel(RiskMedium))
	assert.Equal("medium", SimpleLevel(RiskHigh))
	assert.Equal("high", SimpleLevel(RiskCritical))
}

func TestTotalInterference(t *testing.T) {
	s := NewScorer(DefaultCalibration())

	t.Run("no other transmitters", func(t *testing.T) {
		assert := require.New(t)

		res := s.TotalInterference(5800, nil)
		assert.Equal(0.0, res.TotalPercent)
		assert.Equal(RiskNone, res.RiskLevel)
		assert.Equal(0.0, res.DirectInterference)
		assert.Equal(0.0, res.IMDInterference)
		assert.Empty(res.IMDFrequencies)
		assert.Nil(res.Debug.MinSeparation)
		assert.Equal(1, res.Debug.TotalChannels)
		// the minimum multiplier of the sparse tier
		assert.Equal(1.0, res.Debug.Multiplier)
	})

	t.Run("multiplier interpolation", func(t *testing.T) {
		tests := []struct {
			other      float64
			multiplier float64
			total      float64
			risk       RiskLevel
		}{
			{5838, 4.0, 40.91, RiskCritical},
			{5840, 3.8421, 34.85, RiskHigh},
			{5857, 2.5, 8.18, RiskLow},
			{5876, 1.0, 1.05, RiskNone},
			{5950, 1.0, 0.01, RiskNone},
		}

		for _, tst := range tests {
			t.Run(fmt.Sprintf("other %.0f", tst.other), func(t *testing.T) {
				assert := require.New(t)
				res := s.TotalInterference(5800, []float64{tst.other})
				assert.InDelta(tst.multiplier, res.Debug.Multiplier, 1e-4)
				assert.InDelta(tst.total, res.TotalPercent, 0.011)
				assert.Equal(tst.risk, res.RiskLevel)
				assert.Equal(2, res.Debug.TotalChannels)
				assert.NotNil(res.Debug.MinSeparation)
			})
		}
	})

	t.Run("tier selection", func(t *testing.T) {
		assert := require.New(t)

		// two close neighbours among three transmitters
		res := s.TotalInterference(5695, []float64{5658, 5732})
		assert.Equal(2, res.Debug.CloseChannels)
		assert.Equal(5.0, res.Debug.BaseMax)
		assert.Equal(1.5, res.Debug.BaseMin)
		assert.Equal(120.0, res.Debug.DirectCoef)
		assert.Equal(80.0, res.Debug.IMDCoef)

		// three transmitters, only one of them close
		res = s.TotalInterference(5658, []float64{5695, 5880})
		assert.Equal(1, res.Debug.CloseChannels)
		assert.Equal(4.5, res.Debug.BaseMax)
		assert.Equal(100.0, res.Debug.DirectCoef)
	})

	t.Run("imd products include the target", func(t *testing.T) {
		assert := require.New(t)
		res := s.TotalInterference(5800, []float64{5760, 5840})
		assert.Equal([]float64{5720, 5800, 5880}, res.IMDFrequencies)
		assert.Greater(res.IMDInterference, 0.0)
	})

	t.Run("clamped under pathological clustering", func(t *testing.T) {
		assert := require.New(t)

		var others []float64
		for i := 1; i <= 12; i++ {
			others = append(others, 5800+float64(i)*0.08)
		}
		res := s.TotalInterference(5800, others)
		assert.Equal(100.0, res.TotalPercent)
		assert.Equal(RiskCritical, res.RiskLevel)

		for _, target := range []float64{1, 5000, 5800.5, 9000} {
			r := s.TotalInterference(target, others)
			assert.GreaterOrEqual(r.TotalPercent, 0.0)
			assert.LessOrEqual(r.TotalPercent, 100.0)
		}
	})

	t.Run("overridden thresholds", func(t *testing.T) {
		assert := require.New(t)

		cal := DefaultCalibration()
		cal.Risk = RiskThresholds{Critical: 90, High: 60, Medium: 30, Low: 10}
		res := NewScorer(cal).TotalInterference(5800, []float64{5840})
		assert.Equal(RiskMedium, res.RiskLevel)
	})
}

func TestCalibrationValidate(t *testing.T) {
	assert := require.New(t)
	assert.NoError(DefaultCalibration().Validate())

	tests := []struct {
		name   string
		mutate func(*Calibration)
	}{
		{"zero decay", func(c *Calibration) { c.Signal.DecayConstant = 0 }},
		{"zero channel width", func(c *Calibration) { c.Signal.ChannelWidth = 0 }},
		{"zero min safe distance", func(c *Calibration) { c.MinSafeDistance = 0 }},
		{"zero close factor", func(c *Calibration) { c.CloseFactor = 0 }},
		{"crowded count", func(c *Calibration) { c.CrowdedCount = 1 }},
		{"clustered count", func(c *Calibration) { c.ClusteredCount = 0 }},
		{"negative imd order", func(c *Calibration) { c.IMDOrder = -1 }},
		{"inverted tier", func(c *Calibration) { c.Multipliers.Crowded = MultiplierTier{Max: 1, Min: 2} }},
		{"negative coefficient", func(c *Calibration) { c.Coefficients.Clustered.IMD = -1 }},
		{"unordered risk", func(c *Calibration) { c.Risk.High = c.Risk.Critical }},
		{"unordered overlap", func(c *Calibration) { c.Overlap.Close = c.Overlap.Partial }},
		{"nan min safe distance", func(c *Calibration) { c.MinSafeDistance = math.NaN() }},
		{"inf decay", func(c *Calibration) { c.Signal.DecayConstant = math.Inf(1) }},
		{"nan tier max", func(c *Calibration) { c.Multipliers.Sparse.Max = math.NaN() }},
		{"nan coefficient", func(c *Calibration) { c.Coefficients.Sparse.Direct = math.NaN() }},
		{"inf risk critical", func(c *Calibration) { c.Risk.Critical = math.Inf(1) }},
		{"nan overlap full", func(c *Calibration) { c.Overlap.Full = math.NaN() }},
	}
	for _, tst := range tests {
		t.Run(tst.name, func(t *testing.T) {
			cal := DefaultCalibration()
			tst.mutate(&cal)
			require.Error(t, cal.Validate())
		})
	}
}

package interference

import (
	"encoding/json"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/large-farva/vtx-planner/internal/catalog"
)

const testCatalog = `
analog:
  5.8GHz:
    R:
      name: Race Band
      bandwidth: 20
      region: FCC
      channels: {"1": 5658, "2": 5695, "3": 5732, "4": 5769, "5": 5806, "6": 5843, "7": 5880, "8": 5917}
    F:
      name: Band F
      bandwidth: 20
      region: CE
      channels: {"1": 5740, "2": 5760, "3": 5780, "4": 5800, "5": 5820, "6": 5840, "7": 5860, "8": 5880}
    T:
      name: Test Band
      bandwidth: 20
      channels: {"1": 5800, "2": 5805, "3": 5820, "4": 5825, "5": 5900}
digital:
  5.8GHz:
    D:
      name: DJI Band
      bandwidth: 40
      channels: {"1": 5660, "2": 5695, "3": 5735}
`

func testEngine(t *testing.T) *Engine {
	t.Helper()
	cat, err := catalog.Parse([]byte(testCatalog))
	require.NoError(t, err)
	return New(cat, DefaultCalibration())
}

func sel(band, channel string) Selector {
	return Selector{Band: band, Channel: channel}
}

func TestAnalyzeGroup(t *testing.T) {
	e := testEngine(t)

	tests := []struct {
		name          string
		selectors     []Selector
		safe          bool
		maxAtLeast    float64
		maxBelow      float64
		minSeparation float64
		criticalPairs int
	}{
		{
			name:          "adjacent race band channels",
			selectors:     []Selector{sel("R", "1"), sel("R", "2"), sel("R", "3")},
			safe:          false,
			maxAtLeast:    40,
			maxBelow:      45,
			minSeparation: 37,
			criticalPairs: 2,
		},
		{
			name:          "spread race band channels",
			selectors:     []Selector{sel("R", "1"), sel("R", "4"), sel("R", "7")},
			safe:          true,
			maxBelow:      25,
			minSeparation: 111,
		},
		{
			name:          "evenly spaced band F channels",
			selectors:     []Selector{sel("F", "2"), sel("F", "4"), sel("F", "6")},
			safe:          false,
			maxAtLeast:    15,
			maxBelow:      35,
			minSeparation: 40,
			criticalPairs: 2,
		},
		{
			name:          "mixed bands",
			selectors:     []Selector{sel("R", "2"), sel("F", "4"), sel("R", "6")},
			safe:          true,
			maxBelow:      30,
			minSeparation: 43,
		},
	}

	for _, tst := range tests {
		t.Run(tst.name, func(t *testing.T) {
			assert := require.New(t)

			report, err := e.AnalyzeGroup(tst.selectors, "")
			assert.NoError(err)
			assert.Equal(tst.safe, report.Analysis.SafeSeparation)
			assert.GreaterOrEqual(report.Analysis.MaxInterference, tst.maxAtLeast)
			assert.Less(report.Analysis.MaxInterference, tst.maxBelow)
			assert.NotNil(report.Analysis.MinSeparation)
			assert.Equal(tst.minSeparation, *report.Analysis.MinSeparation)
			assert.Len(report.CriticalPairs, tst.criticalPairs)
			assert.Equal(len(tst.selectors), report.Analysis.TotalChannels)
			assert.Len(report.Analysis.Debug.AllPairs, len(tst.selectors)*(len(tst.selectors)-1))
		})
	}
}

func TestAnalyzeGroupValues(t *testing.T) {
	e := testEngine(t)

	t.Run("adjacent race band channels", func(t *testing.T) {
		assert := require.New(t)

		report, err := e.AnalyzeGroup([]Selector{sel("R", "1"), sel("R", "2"), sel("R", "3")}, catalog.Analog)
		assert.NoError(err)
		assert.Equal(43.44, report.Analysis.MaxInterference)
		assert.Equal(43.44, report.Matrix[0][1].Interference)
		assert.Equal(RiskCritical, report.Matrix[0][1].RiskLevel)
		assert.Equal(1.37, report.Matrix[0][2].Interference)

		for _, ch := range report.Channels {
			assert.Equal(100.0, ch.Interference.TotalPercent)
			assert.Equal(RiskCritical, ch.RiskLevel)
		}

		cp := report.CriticalPairs[0]
		assert.Equal(0, cp.A)
		assert.Equal(1, cp.B)
		assert.Equal([]string{"analog/5.8GHz/R/1", "analog/5.8GHz/R/2"}, cp.Channels)
		assert.Equal([]string{"separation", "interference"}, cp.Reasons)
	})

	t.Run("imd products on evenly spaced channels", func(t *testing.T) {
		assert := require.New(t)

		report, err := e.AnalyzeGroup([]Selector{sel("F", "2"), sel("F", "4"), sel("F", "6")}, "")
		assert.NoError(err)
		for _, ch := range report.Channels {
			assert.Equal([]float64{5720, 5800, 5880}, ch.IMDProducts)
		}
		assert.Equal(34.85, report.Analysis.MaxInterference)
		for _, cp := range report.CriticalPairs {
			assert.Equal([]string{"interference"}, cp.Reasons)
		}
	})

	t.Run("overall score differs from the pairwise cells", func(t *testing.T) {
		assert := require.New(t)

		report, err := e.AnalyzeGroup([]Selector{sel("R", "1"), sel("R", "4"), sel("R", "7")}, "")
		assert.NoError(err)
		assert.Equal(72.31, report.Channels[1].Interference.TotalPercent)
		for _, cell := range report.Matrix[1] {
			assert.Less(cell.Interference, report.Channels[1].Interference.TotalPercent)
		}
	})
}

func TestAnalyzeGroupInvariants(t *testing.T) {
	assert := require.New(t)
	e := testEngine(t)

	selectors := []Selector{sel("R", "1"), sel("F", "3"), sel("R", "5"), sel("F", "8"), sel("T", "5")}
	report, err := e.AnalyzeGroup(selectors, "")
	assert.NoError(err)
	assert.Len(report.Matrix, len(selectors))

	for i := range report.Matrix {
		assert.Len(report.Matrix[i], len(selectors))
		assert.True(report.Matrix[i][i].Self)
		assert.Nil(report.Matrix[i][i].Result)
		for j := range report.Matrix[i] {
			assert.Equal(report.Matrix[i][j].Separation, report.Matrix[j][i].Separation)
			assert.GreaterOrEqual(report.Matrix[i][j].Interference, 0.0)
			assert.LessOrEqual(report.Matrix[i][j].Interference, 100.0)
		}
	}
	for _, ch := range report.Channels {
		assert.GreaterOrEqual(ch.Interference.TotalPercent, 0.0)
		assert.LessOrEqual(ch.Interference.TotalPercent, 100.0)
	}

	t.Run("repeatable", func(t *testing.T) {
		assert := require.New(t)

		again, err := e.AnalyzeGroup(selectors, "")
		assert.NoError(err)

		a, err := json.Marshal(report)
		assert.NoError(err)
		b, err := json.Marshal(again)
		assert.NoError(err)
		assert.JSONEq(string(a), string(b))
	})
}

func TestAnalyzeGroupEdgeCases(t *testing.T) {
	e := testEngine(t)

	t.Run("unknown channel", func(t *testing.T) {
		assert := require.New(t)

		report, err := e.AnalyzeGroup([]Selector{sel("R", "1"), sel("Z", "9")}, "")
		assert.Nil(report)
		assert.ErrorIs(err, ErrChannelNotFound)
		assert.Contains(err.Error(), "channel not found")
		assert.Contains(err.Error(), "Z/9")

		var nf *NotFoundError
		assert.True(errors.As(err, &nf))
		assert.Equal("Z", nf.Selector.Band)
	})

	t.Run("unknown channel number in a known band", func(t *testing.T) {
		_, err := e.AnalyzeGroup([]Selector{sel("R", "9")}, "")
		require.ErrorIs(t, err, ErrChannelNotFound)
	})

	t.Run("single channel", func(t *testing.T) {
		assert := require.New(t)

		report, err := e.AnalyzeGroup([]Selector{sel("R", "1")}, "")
		assert.NoError(err)
		assert.True(report.Analysis.SafeSeparation)
		assert.Nil(report.Analysis.MinSeparation)
		assert.Equal(0.0, report.Analysis.MaxInterference)
		assert.Empty(report.CriticalPairs)
		assert.NotNil(report.CriticalPairs)
		assert.Equal(0.0, report.Channels[0].Interference.TotalPercent)
	})

	t.Run("empty selection", func(t *testing.T) {
		assert := require.New(t)

		report, err := e.AnalyzeGroup(nil, "")
		assert.NoError(err)
		assert.Empty(report.Channels)
		assert.True(report.Analysis.SafeSeparation)
	})

	t.Run("modulation and range defaults", func(t *testing.T) {
		assert := require.New(t)

		report, err := e.AnalyzeGroup([]Selector{
			{Band: "D", Channel: "1"},
			{Band: "D", Channel: "3", Range: "5G8"},
		}, catalog.Digital)
		assert.NoError(err)
		assert.Equal(catalog.Digital, report.Channels[0].Modulation)
		assert.Equal("5.8GHz", report.Channels[1].Range)
		assert.Equal(40, report.Channels[0].Bandwidth)

		_, err = e.AnalyzeGroup([]Selector{{Band: "D", Channel: "1"}}, "")
		assert.ErrorIs(err, ErrChannelNotFound)
	})
}

package interference

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/large-farva/vtx-planner/internal/catalog"
)

func candidate(band, num string, freq float64, level RiskLevel) Candidate {
	return Candidate{
		Channel:      catalog.Channel{Modulation: catalog.Analog, Range: catalog.DefaultRange, Band: band, Number: num, Frequency: freq},
		Level:        SimpleLevel(level),
		Interference: Result{RiskLevel: level},
	}
}

func TestSuggestAlternatives(t *testing.T) {
	t.Run("filters and orders", func(t *testing.T) {
		assert := require.New(t)

		scored := []Candidate{
			candidate("A", "1", 5865, RiskLow),
			candidate("A", "2", 5845, RiskMedium),
			candidate("B", "1", 5733, RiskNone),
			candidate("R", "1", 5658, RiskNone),
			candidate("F", "8", 5880, RiskNone),
			candidate("R", "7", 5880, RiskNone),
			candidate("E", "1", 5705, RiskCritical),
		}

		out := SuggestAlternatives(scored, []float64{5658.04})
		assert.Len(out, 3)
		assert.Equal("B", out[0].Band)
		assert.Equal("F", out[1].Band)
		assert.Equal("R", out[2].Band)
		assert.Equal("7", out[2].Number)
	})

	t.Run("risk before frequency", func(t *testing.T) {
		assert := require.New(t)

		out := SuggestAlternatives([]Candidate{
			candidate("A", "8", 5725, RiskLow),
			candidate("A", "1", 5865, RiskNone),
		}, nil)
		assert.Len(out, 2)
		assert.Equal(5865.0, out[0].Frequency)
		assert.Equal(5725.0, out[1].Frequency)
	})

	t.Run("nothing acceptable", func(t *testing.T) {
		assert := require.New(t)

		out := SuggestAlternatives([]Candidate{candidate("A", "1", 5865, RiskHigh)}, nil)
		assert.NotNil(out)
		assert.Empty(out)
	})
}

func TestSuggest(t *testing.T) {
	e := New(catalog.Default(), DefaultCalibration())

	t.Run("single pilot", func(t *testing.T) {
		assert := require.New(t)

		s, err := e.Suggest([]Selector{sel("R", "1")}, "", "")
		assert.NoError(err)
		assert.Len(s.Selected, 1)
		assert.Len(s.Alternatives, 3)

		ids := []string{s.Alternatives[0].ID(), s.Alternatives[1].ID(), s.Alternatives[2].ID()}
		assert.Equal([]string{"analog/5.8GHz/A/8", "analog/5.8GHz/R/3", "analog/5.8GHz/B/1"}, ids)
		for _, alt := range s.Alternatives {
			assert.Equal("none", alt.Level)
			assert.NotEqual(5658.0, alt.Frequency)
		}
	})

	t.Run("crowded spectrum", func(t *testing.T) {
		assert := require.New(t)

		s, err := e.Suggest([]Selector{sel("R", "1"), sel("R", "4"), sel("R", "7")}, catalog.Analog, "5.8GHz")
		assert.NoError(err)
		assert.Len(s.Alternatives, 1)
		assert.Equal("E", s.Alternatives[0].Band)
		assert.Equal("8", s.Alternatives[0].Number)
		assert.Equal("low", s.Alternatives[0].Level)
	})

	t.Run("unknown channel", func(t *testing.T) {
		assert := require.New(t)

		s, err := e.Suggest([]Selector{sel("Z", "9")}, "", "")
		assert.Nil(s)
		assert.ErrorIs(err, ErrChannelNotFound)
	})
}

package interference

import (
	"math"
	"sort"

	"github.com/large-farva/vtx-planner/internal/catalog"
)

// maxSuggestions is how many alternatives SuggestAlternatives returns.
const maxSuggestions = 3

// Candidate is a catalog channel scored against a set of selected channels.
type Candidate struct {
	catalog.Channel
	Level        string `json:"level"`
	Interference Result `json:"interference"`
}

// ScoreCandidates scores each candidate as a target against the selected
// frequencies.
func (e *Engine) ScoreCandidates(selected []float64, candidates []catalog.Channel) []Candidate {
	out := make([]Candidate, len(candidates))
	for i, ch := range candidates {
		res := e.scorer.TotalInterference(ch.Frequency, selected)
		out[i] = Candidate{
			Channel:      ch,
			Level:        SimpleLevel(res.RiskLevel),
			Interference: res,
		}
	}
	return out
}

// SuggestAlternatives keeps candidates rated none or low whose frequency is
// not already occupied, orders them by risk and then frequency, and returns
// at most three.
func SuggestAlternatives(scored []Candidate, occupied []float64) []Candidate {
	taken := make(map[float64]struct{}, len(occupied))
	for _, f := range occupied {
		taken[round1(f)] = struct{}{}
	}

	out := []Candidate{}
	for _, c := range scored {
		if c.Interference.RiskLevel.Rank() > RiskLow.Rank() {
			continue
		}
		if _, ok := taken[round1(c.Frequency)]; ok {
			continue
		}
		out = append(out, c)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if ra, rb := a.Interference.RiskLevel.Rank(), b.Interference.RiskLevel.Rank(); ra != rb {
			return ra < rb
		}
		if a.Frequency != b.Frequency {
			return a.Frequency < b.Frequency
		}
		return a.ID() < b.ID()
	})

	if len(out) > maxSuggestions {
		out = out[:maxSuggestions]
	}
	return out
}

// Suggestion is the result of Suggest.
type Suggestion struct {
	Selected     []catalog.Channel `json:"selected"`
	Alternatives []Candidate       `json:"alternatives"`
}

// Suggest resolves the selected channels and proposes up to three free
// channels of the given modulation and range that the group barely
// disturbs.
func (e *Engine) Suggest(selectors []Selector, mod catalog.Modulation, rng string) (*Suggestion, error) {
	if mod == "" {
		mod = catalog.Analog
	}
	chans, err := e.resolve(selectors, mod)
	if err != nil {
		return nil, err
	}

	occupied := make([]float64, len(chans))
	for i, ch := range chans {
		occupied[i] = ch.Frequency
	}

	scored := e.ScoreCandidates(occupied, e.cat.Channels(mod, rng))
	return &Suggestion{
		Selected:     chans,
		Alternatives: SuggestAlternatives(scored, occupied),
	}, nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

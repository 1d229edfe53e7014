package rf

import (
	"math"
	"slices"
)

// IMDProducts enumerates the intermodulation products of a transmitter set.
//
// For order >= 3 it emits f[i] + f[j] - f[k] for every ordered triple of
// pairwise distinct indices; for order >= 5 it additionally emits
// 3*f[i] - 2*f[j] for every ordered pair of distinct indices. Products are
// rounded to 0.1 MHz, de-duplicated, and returned in ascending order.
//
// The third-order term is O(n³) in len(freqs). That is fine for the handful
// of pilots sharing a field; revisit before feeding it large sets.
func IMDProducts(freqs []float64, order int) []float64 {
	seen := make(map[float64]struct{})
	add := func(f float64) {
		seen[roundTenth(f)] = struct{}{}
	}

	n := len(freqs)
	if order >= 3 {
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				if j == i {
					continue
				}
				for k := 0; k < n; k++ {
					if k == i || k == j {
						continue
					}
					add(freqs[i] + freqs[j] - freqs[k])
				}
			}
		}
	}
	if order >= 5 {
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				if j != i {
					add(3*freqs[i] - 2*freqs[j])
				}
			}
		}
	}

	out := make([]float64, 0, len(seen))
	for f := range seen {
		out = append(out, f)
	}
	slices.Sort(out)
	return out
}

func roundTenth(f float64) float64 {
	return math.Round(f*10) / 10
}

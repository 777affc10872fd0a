package analyze

import (
	"math"
	"math/rand"
	"sort"
)

// bootstrapCI estimates a 95% confidence interval for the Pearson
// coefficient by resampling (feature, outcome) pairs with replacement.
// Degenerate resamples (zero variance) are discarded; if every resample
// degenerates, the interval is (NaN, NaN).
func bootstrapCI(rng *rand.Rand, x, y []float64, resamples int) (lo, hi float64) {
	n := len(x)
	rs := make([]float64, 0, resamples)
	bx := make([]float64, n)
	by := make([]float64, n)

	for range resamples {
		for j := range n {
			idx := rng.Intn(n)
			bx[j] = x[idx]
			by[j] = y[idx]
		}
		if r := pearson(bx, by); !math.IsNaN(r) {
			rs = append(rs, r)
		}
	}

	if len(rs) == 0 {
		return math.NaN(), math.NaN()
	}
	sort.Float64s(rs)
	return percentile(rs, 0.025), percentile(rs, 0.975)
}

// percentile interpolates linearly within a sorted series.
func percentile(sorted []float64, q float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

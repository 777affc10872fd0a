package analyze

import "math"

// pearson computes the Pearson correlation coefficient between two equal
// length series. A zero-variance series yields NaN: the coefficient is
// undefined for a constant column and the caller annotates rather than
// aborts.
func pearson(x, y []float64) float64 {
	n := float64(len(x))
	if n == 0 {
		return math.NaN()
	}

	var meanX, meanY float64
	for i := range x {
		meanX += x[i]
		meanY += y[i]
	}
	meanX /= n
	meanY /= n

	var sxy, sxx, syy float64
	for i := range x {
		dx := x[i] - meanX
		dy := y[i] - meanY
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}
	if sxx == 0 || syy == 0 {
		return math.NaN()
	}
	return sxy / math.Sqrt(sxx*syy)
}

// variance returns the sum of squared deviations from the mean.
func variance(x []float64) float64 {
	n := float64(len(x))
	if n == 0 {
		return 0
	}
	var mean float64
	for _, v := range x {
		mean += v
	}
	mean /= n
	var ss float64
	for _, v := range x {
		d := v - mean
		ss += d * d
	}
	return ss
}

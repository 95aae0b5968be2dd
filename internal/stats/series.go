package stats

import "math"

// CenteredRollingMean returns, for every position i, the mean of the window
// of the given size centered on i. For odd windows that is values[i-w/2 :
// i+w/2]; for even windows the extra element is taken from the left. Windows
// are clipped at the series edges and averaged over the values that exist.
// Positions with no values in their window (only possible when window < 1)
// are NaN.
func CenteredRollingMean(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window < 1 {
		for i := range out {
			out[i] = math.NaN()
		}
		return out
	}

	half := window / 2
	for i := range values {
		start := i - half
		end := start + window - 1
		if start < 0 {
			start = 0
		}
		if end > len(values)-1 {
			end = len(values) - 1
		}

		var sum float64
		for j := start; j <= end; j++ {
			sum += values[j]
		}
		out[i] = sum / float64(end-start+1)
	}
	return out
}

// OLSSlope fits y = a + b·x by ordinary least squares against x = 0..n-1 and
// returns b. ok is false when fewer than two points are given.
func OLSSlope(values []float64) (slope float64, ok bool) {
	n := len(values)
	if n < 2 {
		return 0, false
	}

	meanX := float64(n-1) / 2
	meanY := Mean(values)

	var numerator, denominator float64
	for i, y := range values {
		dx := float64(i) - meanX
		numerator += dx * (y - meanY)
		denominator += dx * dx
	}

	if denominator == 0 {
		return 0, false
	}
	return numerator / denominator, true
}

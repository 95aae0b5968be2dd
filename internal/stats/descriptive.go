// Package stats provides the small numeric kernel shared by the analyzers:
// descriptive statistics, a centered rolling mean and a least-squares slope.
// Functions never mutate their inputs and never divide by zero; degenerate
// inputs produce a zero value or a false ok flag.
package stats

import "math"

// Mean calculates the arithmetic mean of a slice of float64 values
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// PopulationVariance divides by n.
func PopulationVariance(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return sumSquaredDiff(values) / float64(len(values))
}

// SampleVariance divides by n-1 and is 0 for fewer than two values.
func SampleVariance(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	return sumSquaredDiff(values) / float64(len(values)-1)
}

// PopulationStdDev calculates the population standard deviation
func PopulationStdDev(values []float64) float64 {
	return math.Sqrt(PopulationVariance(values))
}

// SampleStdDev calculates the sample standard deviation
func SampleStdDev(values []float64) float64 {
	return math.Sqrt(SampleVariance(values))
}

func sumSquaredDiff(values []float64) float64 {
	mean := Mean(values)
	var sum float64
	for _, v := range values {
		diff := v - mean
		sum += diff * diff
	}
	return sum
}

// Mode returns the most frequent value. On ties the value that occurs first
// in the slice wins. ok is false for an empty slice.
func Mode(values []int) (mode int, ok bool) {
	if len(values) == 0 {
		return 0, false
	}

	counts := make(map[int]int, len(values))
	for _, v := range values {
		counts[v]++
	}

	best := -1
	for _, v := range values {
		if counts[v] > best {
			best = counts[v]
			mode = v
		}
	}
	return mode, true
}

// Ints converts integer samples to float64.
func Ints(values []int) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = float64(v)
	}
	return out
}

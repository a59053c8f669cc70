package analytics

import (
	"math"
	"slices"
)

// MedianUpper finds the median age in a slice of day counts using the
// upper-median tie-break: the element at index n/2 of the sorted values, for
// even counts the higher of the two middle elements. Existing chart consumers
// depend on this exact tie-break, so it must not be replaced with an averaged
// median.
func MedianUpper(values []int) int {
	if len(values) == 0 {
		return 0
	}

	// Work on a copy to avoid mutating the original
	temp := make([]int, len(values))
	copy(temp, values)
	slices.Sort(temp)

	return temp[len(temp)/2]
}

// roundPct returns round(n/d*100) with a zero-population fallback of 0.
func roundPct(n, d float64) int {
	if d == 0 {
		return 0
	}
	return int(math.Round(n / d * 100))
}

// safeDiv returns n/d, or 0 when d is 0.
func safeDiv(n, d float64) float64 {
	if d == 0 {
		return 0
	}
	return n / d
}

// round1 rounds to one decimal place.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

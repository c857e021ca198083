// Package engine implements the pricing and opportunity computations: currency
// normalization, marketplace fees, margins, price trend analysis, opportunity
// scoring and multi-market arbitrage. Every function is a pure computation over
// an immutable snapshot of already-fetched data; missing inputs are represented
// as nil and propagate to nil outputs instead of errors.
package engine

import "math"

// round2 rounds to 2 decimals, half away from zero.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// round1 rounds to 1 decimal, half away from zero.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stddev is the population standard deviation.
func stddev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	var sq float64
	for _, v := range values {
		d := v - m
		sq += d * d
	}
	return math.Sqrt(sq / float64(len(values)))
}

func ptr(v float64) *float64 {
	return &v
}

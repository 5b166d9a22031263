package utils

import "math"

// Linspace returns n evenly spaced values from start to stop inclusive
func Linspace(start, stop float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{start}
	}
	out := make([]float64, n)
	step := (stop - start) / float64(n-1)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	out[n-1] = stop
	return out
}

// Interp linearly interpolates y(x) from a table of (xs, ys) points.
// xs must be sorted ascending. Queries outside the table range return
// the nearest endpoint value.
func Interp(x float64, xs, ys []float64) float64 {
	if len(xs) == 0 || len(xs) != len(ys) {
		return math.NaN()
	}
	if x <= xs[0] {
		return ys[0]
	}
	if x >= xs[len(xs)-1] {
		return ys[len(ys)-1]
	}
	for i := 1; i < len(xs); i++ {
		if x <= xs[i] {
			span := xs[i] - xs[i-1]
			if span == 0 {
				return ys[i]
			}
			frac := (x - xs[i-1]) / span
			return ys[i-1] + frac*(ys[i]-ys[i-1])
		}
	}
	return ys[len(ys)-1]
}

// SearchInterval returns the index i such that xs[i] <= x < xs[i+1],
// clamped to the valid interpolation intervals of xs, plus a flag
// reporting whether x fell outside the table range.
func SearchInterval(x float64, xs []float64) (int, bool) {
	n := len(xs)
	if n < 2 {
		return 0, true
	}
	if x < xs[0] {
		return 0, true
	}
	if x > xs[n-1] {
		return n - 2, true
	}
	for i := 1; i < n; i++ {
		if x <= xs[i] {
			return i - 1, false
		}
	}
	return n - 2, false
}

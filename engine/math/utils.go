package math

import "golang.org/x/exp/constraints"

// Clamp returns the value `f` clamped to the range [low, high].
// It works for any numeric type (integers and floats).
func Clamp[T constraints.Ordered](f, low, high T) T {
	if f < low {
		return low
	}
	if f > high {
		return high
	}
	return f
}

// Wrap returns f folded into [0, period).
func Wrap[T constraints.Float](f, period T) T {
	if period <= 0 {
		return 0
	}
	for f >= period {
		f -= period
	}
	for f < 0 {
		f += period
	}
	return f
}

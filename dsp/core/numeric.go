package core

import "math"

// Float is the capability bound satisfied by every sample scalar. All
// processing algorithms in this module are written once against it and
// instantiated per concrete precision.
type Float interface {
	~float32 | ~float64
}

const defaultEpsilon = 1e-12

// Clamp limits value to the inclusive range [min, max].
func Clamp[T Float](value, min, max T) T {
	if min > max {
		min, max = max, min
	}

	if value < min {
		return min
	}

	if value > max {
		return max
	}

	return value
}

// Abs returns the absolute value of x.
func Abs[T Float](x T) T {
	if x < 0 {
		return -x
	}

	return x
}

// NearlyEqual reports whether a and b are equal within eps.
func NearlyEqual[T Float](a, b, eps T) bool {
	if eps <= 0 {
		eps = T(defaultEpsilon)
	}

	diff := Abs(a - b)
	if diff <= eps {
		return true
	}

	largest := max(Abs(a), Abs(b))
	if largest == 0 {
		return diff <= eps
	}

	return diff/largest <= eps
}

// FlushDenormals converts tiny denormal-like values to exact zero.
// This can reduce denormal-related CPU slowdowns in hot DSP loops.
func FlushDenormals[T Float](x T) T {
	const epsilon = 1e-30
	if x > -epsilon && x < epsilon {
		return 0
	}

	return x
}

// IsFinite reports whether x is neither NaN nor infinite.
func IsFinite[T Float](x T) bool {
	f := float64(x)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Sanitize replaces non-finite values with zero so that a numerical
// excursion never propagates past a node's output.
func Sanitize[T Float](x T) T {
	if !IsFinite(x) {
		return 0
	}

	return x
}

// DBToLinear converts dB to linear amplitude (20*log10 convention).
func DBToLinear[T Float](db T) T {
	return T(math.Pow(10, float64(db)/20))
}

// LinearToDB converts linear amplitude to dB (20*log10 convention).
// Returns -Inf for zero and NaN for negative values.
func LinearToDB[T Float](linear T) T {
	if linear < 0 {
		return T(math.NaN())
	}

	if linear == 0 {
		return T(math.Inf(-1))
	}

	return T(20 * math.Log10(float64(linear)))
}

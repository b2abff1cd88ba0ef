package core

import "math"

// Transcendental helpers routed through float64, the reference precision.
// Keeping the conversion in one place lets every algorithm stay generic
// without duplicating per-precision code paths.

// Tanh returns the hyperbolic tangent of x.
func Tanh[T Float](x T) T { return T(math.Tanh(float64(x))) }

// Asinh returns the inverse hyperbolic sine of x.
func Asinh[T Float](x T) T { return T(math.Asinh(float64(x))) }

// Cosh returns the hyperbolic cosine of x.
func Cosh[T Float](x T) T { return T(math.Cosh(float64(x))) }

// Exp returns e**x.
func Exp[T Float](x T) T { return T(math.Exp(float64(x))) }

// Log returns the natural logarithm of x.
func Log[T Float](x T) T { return T(math.Log(float64(x))) }

// Sqrt returns the square root of x.
func Sqrt[T Float](x T) T { return T(math.Sqrt(float64(x))) }

// Tan returns the tangent of x (radians).
func Tan[T Float](x T) T { return T(math.Tan(float64(x))) }

package tensor

import "math"

// Sigmoid computes 1 / (1 + exp(-x) + Epsilon) elementwise.
func Sigmoid(t *Tensor) *Tensor {
	return mapScalar(t, func(x float32) float32 {
		return float32(1 / (1 + math.Exp(float64(-x)) + Epsilon))
	})
}

// ReLU computes max(0, x) elementwise.
func ReLU(t *Tensor) *Tensor {
	return mapScalar(t, func(x float32) float32 {
		if x > 0 {
			return x
		}
		return 0
	})
}

// Exp computes e^x elementwise.
func Exp(t *Tensor) *Tensor {
	return mapScalar(t, func(x float32) float32 {
		return float32(math.Exp(float64(x)))
	})
}

// Log computes ln(x + Epsilon) elementwise, so zero maps to a large negative
// number instead of -Inf.
func Log(t *Tensor) *Tensor {
	return mapScalar(t, func(x float32) float32 {
		return float32(math.Log(float64(x) + Epsilon))
	})
}

// Sqrt computes the square root elementwise.
func Sqrt(t *Tensor) *Tensor {
	return mapScalar(t, func(x float32) float32 {
		return float32(math.Sqrt(float64(x)))
	})
}

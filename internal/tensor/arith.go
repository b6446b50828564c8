package tensor

import (
	"fmt"

	"github.com/born-ml/tensornet/internal/parallel"
)

// Epsilon is the bias used to keep divisions, logarithms and the sigmoid
// denominator finite.
const Epsilon = 1e-7

// DivisionPolicy selects how division treats zero denominators.
type DivisionPolicy int

const (
	// EpsilonDivision computes a / (b + Epsilon). It never produces ±Inf for
	// b == 0 but biases every quotient slightly.
	EpsilonDivision DivisionPolicy = iota

	// IEEEDivision computes a / b with plain IEEE-754 semantics.
	IEEEDivision
)

// String returns the policy name used in configuration files.
func (p DivisionPolicy) String() string {
	switch p {
	case EpsilonDivision:
		return "epsilon"
	case IEEEDivision:
		return "ieee"
	default:
		return fmt.Sprintf("DivisionPolicy(%d)", int(p))
	}
}

// ParseDivisionPolicy maps "epsilon" or "ieee" to a DivisionPolicy.
func ParseDivisionPolicy(name string) (DivisionPolicy, error) {
	switch name {
	case "", "epsilon":
		return EpsilonDivision, nil
	case "ieee":
		return IEEEDivision, nil
	default:
		return 0, fmt.Errorf("%w: unknown division policy %q (want epsilon or ieee)", ErrInvalidArgument, name)
	}
}

func (p DivisionPolicy) div(a, b float32) float32 {
	if p == IEEEDivision {
		return a / b
	}
	return a / (b + Epsilon)
}

// cpuParallel is the loop configuration shared by all native kernels.
var cpuParallel = parallel.DefaultConfig()

// Add returns a + b with broadcasting.
func Add(a, b *Tensor) (*Tensor, error) {
	return binaryOp("Add", a, b, func(x, y float32) float32 { return x + y })
}

// Sub returns a - b with broadcasting.
func Sub(a, b *Tensor) (*Tensor, error) {
	return binaryOp("Sub", a, b, func(x, y float32) float32 { return x - y })
}

// Mul returns the elementwise product a * b with broadcasting.
func Mul(a, b *Tensor) (*Tensor, error) {
	return binaryOp("Mul", a, b, func(x, y float32) float32 { return x * y })
}

// Div returns a / b with broadcasting under EpsilonDivision.
func Div(a, b *Tensor) (*Tensor, error) {
	return DivWithPolicy(a, b, EpsilonDivision)
}

// DivWithPolicy returns a / b with broadcasting under the given policy.
func DivWithPolicy(a, b *Tensor, policy DivisionPolicy) (*Tensor, error) {
	return binaryOp("Div", a, b, policy.div)
}

// Equal returns 1 where a == b and 0 elsewhere, with broadcasting.
func Equal(a, b *Tensor) (*Tensor, error) {
	return binaryOp("Equal", a, b, func(x, y float32) float32 {
		if x == y {
			return 1
		}
		return 0
	})
}

// binaryOp applies fn elementwise. Identical shapes take the index-for-index
// path; otherwise each output multi-index is mapped to both operands through
// broadcast strides (stride 0 on size-1 axes).
func binaryOp(name string, a, b *Tensor, fn func(x, y float32) float32) (*Tensor, error) {
	if len(a.shape) == 0 || len(b.shape) == 0 {
		return nil, fmt.Errorf("%w: %s on uninitialized tensor", ErrInvalidArgument, name)
	}

	if a.shape.Equal(b.shape) {
		out := &Tensor{}
		out.setShape(a.shape)
		ad, bd, od := a.data, b.data, out.data
		parallel.ForRange(len(od), func(start, end int) {
			for i := start; i < end; i++ {
				od[i] = fn(ad[i], bd[i])
			}
		}, cpuParallel)
		return out, nil
	}

	outShape, _, err := BroadcastShapes(a.shape, b.shape)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	out := &Tensor{}
	out.setShape(outShape)

	outStrides := out.strides
	aStrides := broadcastStrides(a.shape, outShape)
	bStrides := broadcastStrides(b.shape, outShape)
	ad, bd, od := a.data, b.data, out.data

	parallel.ForRange(len(od), func(start, end int) {
		for i := start; i < end; i++ {
			ai, bi := 0, 0
			rem := i
			for d, s := range outStrides {
				coord := rem / s
				rem %= s
				ai += coord * aStrides[d]
				bi += coord * bStrides[d]
			}
			od[i] = fn(ad[ai], bd[bi])
		}
	}, cpuParallel)

	return out, nil
}

// AddScalar returns t + s.
func AddScalar(t *Tensor, s float32) *Tensor {
	return mapScalar(t, func(x float32) float32 { return x + s })
}

// SubScalar returns t - s.
func SubScalar(t *Tensor, s float32) *Tensor {
	return mapScalar(t, func(x float32) float32 { return x - s })
}

// ScalarSub returns s - t.
func ScalarSub(s float32, t *Tensor) *Tensor {
	return mapScalar(t, func(x float32) float32 { return s - x })
}

// MulScalar returns t * s.
func MulScalar(t *Tensor, s float32) *Tensor {
	return mapScalar(t, func(x float32) float32 { return x * s })
}

// DivScalar returns t / s under EpsilonDivision.
func DivScalar(t *Tensor, s float32) *Tensor {
	return DivScalarWithPolicy(t, s, EpsilonDivision)
}

// DivScalarWithPolicy returns t / s under the given policy.
func DivScalarWithPolicy(t *Tensor, s float32, policy DivisionPolicy) *Tensor {
	return mapScalar(t, func(x float32) float32 { return policy.div(x, s) })
}

// ScalarDiv returns s / t under EpsilonDivision.
func ScalarDiv(s float32, t *Tensor) *Tensor {
	return ScalarDivWithPolicy(s, t, EpsilonDivision)
}

// ScalarDivWithPolicy returns s / t under the given policy.
func ScalarDivWithPolicy(s float32, t *Tensor, policy DivisionPolicy) *Tensor {
	return mapScalar(t, func(x float32) float32 { return policy.div(s, x) })
}

// mapScalar applies fn to every stored element of a copy of t.
func mapScalar(t *Tensor, fn func(x float32) float32) *Tensor {
	out := &Tensor{}
	out.setShape(t.shape)
	src, dst := t.data, out.data
	parallel.ForRange(len(dst), func(start, end int) {
		for i := start; i < end; i++ {
			dst[i] = fn(src[i])
		}
	}, cpuParallel)
	return out
}

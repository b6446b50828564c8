package nn

import (
	"fmt"

	"github.com/born-ml/tensornet/internal/tensor"
)

// ReLU is a Rectified Linear Unit layer.
//
// Applies the element-wise function: f(x) = max(0, x).
// Forward caches the original input; Backward passes dout through where that
// input was positive and zeroes it elsewhere.
type ReLU struct {
	engine *tensor.Engine
	x      *tensor.Tensor
}

// NewReLU creates a ReLU layer. A nil engine runs natively.
func NewReLU(engine *tensor.Engine) *ReLU {
	return &ReLU{engine: engine}
}

// Name returns "ReLU".
func (r *ReLU) Name() string {
	return "ReLU"
}

// Forward applies max(0, x).
func (r *ReLU) Forward(x *tensor.Tensor) (*tensor.Tensor, error) {
	out, err := r.engine.ReLU(x)
	if err != nil {
		return nil, fmt.Errorf("ReLU forward: %w", err)
	}
	r.x = x.Clone()
	return out, nil
}

// Backward returns dout where the cached input was positive, 0 elsewhere.
func (r *ReLU) Backward(dout *tensor.Tensor) (*tensor.Tensor, error) {
	if r.x == nil {
		return nil, fmt.Errorf("ReLU: %w", ErrBackwardBeforeForward)
	}
	if !tensor.IsSameShape(r.x, dout) {
		return nil, fmt.Errorf("%w: ReLU backward expects dout %v, got %v", tensor.ErrInvalidArgument, r.x.Shape(), dout.Shape())
	}

	dx := dout.Clone()
	in, d := r.x.Storage(), dx.Storage()
	for i, v := range in {
		if v <= 0 {
			d[i] = 0
		}
	}
	return dx, nil
}

// Sigmoid is a logistic activation layer.
//
// Forward caches its own output out = 1/(1+exp(-x)); Backward computes
// dout * out * (1 - out).
type Sigmoid struct {
	engine *tensor.Engine
	out    *tensor.Tensor
}

// NewSigmoid creates a Sigmoid layer. A nil engine runs natively.
func NewSigmoid(engine *tensor.Engine) *Sigmoid {
	return &Sigmoid{engine: engine}
}

// Name returns "Sigmoid".
func (s *Sigmoid) Name() string {
	return "Sigmoid"
}

// Forward applies the logistic function.
func (s *Sigmoid) Forward(x *tensor.Tensor) (*tensor.Tensor, error) {
	out, err := s.engine.Sigmoid(x)
	if err != nil {
		return nil, fmt.Errorf("Sigmoid forward: %w", err)
	}
	s.out = out
	return out.Clone(), nil
}

// Backward computes dout * out * (1 - out).
func (s *Sigmoid) Backward(dout *tensor.Tensor) (*tensor.Tensor, error) {
	if s.out == nil {
		return nil, fmt.Errorf("Sigmoid: %w", ErrBackwardBeforeForward)
	}
	if !tensor.IsSameShape(s.out, dout) {
		return nil, fmt.Errorf("%w: Sigmoid backward expects dout %v, got %v", tensor.ErrInvalidArgument, s.out.Shape(), dout.Shape())
	}

	local, err := s.engine.Mul(s.out, tensor.ScalarSub(1, s.out))
	if err != nil {
		return nil, err
	}
	return s.engine.Mul(dout, local)
}

package tensor

import (
	"errors"
	"fmt"

	"github.com/born-ml/tensornet/internal/backend"
)

// Engine redirects functional ops to a device executor.
//
// Ops the executor reports as backend.ErrUnsupported, and operands that need
// broadcasting, run through the native package functions instead, so an
// Engine always honors the same shape contracts. A nil *Engine, or one without
// an executor, is valid and runs everything natively.
//
// Example:
//
//	exec := cpu.New()
//	defer exec.Release()
//	eng := tensor.NewEngine(exec)
//	y, err := eng.Matmul(x, w)
type Engine struct {
	exec   backend.Executor
	policy DivisionPolicy
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithDivisionPolicy sets how Engine.Div treats zero denominators.
func WithDivisionPolicy(p DivisionPolicy) EngineOption {
	return func(e *Engine) {
		e.policy = p
	}
}

// NewEngine wraps exec. The engine does not take ownership: the caller still
// releases the executor.
func NewEngine(exec backend.Executor, opts ...EngineOption) *Engine {
	e := &Engine{exec: exec, policy: EpsilonDivision}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Executor returns the wrapped executor, or nil.
func (e *Engine) Executor() backend.Executor {
	if e == nil {
		return nil
	}
	return e.exec
}

// DivisionPolicy returns the policy used by Div.
func (e *Engine) DivisionPolicy() DivisionPolicy {
	if e == nil {
		return EpsilonDivision
	}
	return e.policy
}

// launch runs k on the executor. It reports false when the caller should use
// the native implementation instead.
func (e *Engine) launch(k backend.Kernel, l backend.Launch) (bool, error) {
	if e == nil || e.exec == nil {
		return false, nil
	}
	err := e.exec.Run(k, l)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, backend.ErrUnsupported):
		return false, nil
	default:
		return false, fmt.Errorf("%s %s: %w", e.exec.Name(), k, err)
	}
}

// Matmul is Matmul on the device.
func (e *Engine) Matmul(a, b *Tensor) (*Tensor, error) {
	if err := checkMatmul(a.shape, b.shape); err != nil {
		return nil, err
	}

	var (
		outShape Shape
		l        backend.Launch
	)
	if len(a.shape) == 2 {
		outShape = Shape{a.shape[0], b.shape[1]}
		l = backend.Launch{Rows: a.shape[0], Inner: a.shape[1], Cols: b.shape[1], Batch: 1}
	} else {
		outShape = Shape{a.shape[0], a.shape[1], b.shape[2]}
		l = backend.Launch{Rows: a.shape[1], Inner: a.shape[2], Cols: b.shape[2], Batch: a.shape[0]}
	}

	out := &Tensor{}
	out.setShape(outShape)
	l.Inputs = [][]float32{a.data, b.data}
	l.Output = out.data
	if l.Batch == 0 {
		return out, nil
	}

	ok, err := e.launch(backend.KernelMatmul, l)
	if err != nil {
		return nil, err
	}
	if !ok {
		return Matmul(a, b)
	}
	return out, nil
}

// Add is Add on the device when shapes match exactly.
func (e *Engine) Add(a, b *Tensor) (*Tensor, error) {
	return e.binary(backend.KernelAdd, a, b, Add)
}

// Sub is Sub on the device when shapes match exactly.
func (e *Engine) Sub(a, b *Tensor) (*Tensor, error) {
	return e.binary(backend.KernelSub, a, b, Sub)
}

// Mul is Mul on the device when shapes match exactly.
func (e *Engine) Mul(a, b *Tensor) (*Tensor, error) {
	return e.binary(backend.KernelMul, a, b, Mul)
}

// Div is DivWithPolicy under the engine's policy, on the device when shapes
// match exactly.
func (e *Engine) Div(a, b *Tensor) (*Tensor, error) {
	policy := e.DivisionPolicy()
	native := func(x, y *Tensor) (*Tensor, error) { return DivWithPolicy(x, y, policy) }

	if e == nil || e.exec == nil || len(a.shape) == 0 || !IsSameShape(a, b) {
		return native(a, b)
	}

	// Device kernels divide exactly, so the epsilon goes into the launch
	// denominator only. The native fallback always sees the original b.
	denom := b
	if policy == EpsilonDivision {
		denom = AddScalar(b, Epsilon)
	}
	out := &Tensor{}
	out.setShape(a.shape)
	ok, err := e.launch(backend.KernelDiv, backend.Launch{
		Inputs: [][]float32{a.data, denom.data},
		Output: out.data,
		Length: len(out.data),
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return native(a, b)
	}
	return out, nil
}

func (e *Engine) binary(k backend.Kernel, a, b *Tensor, native func(a, b *Tensor) (*Tensor, error)) (*Tensor, error) {
	if len(a.shape) == 0 || !IsSameShape(a, b) {
		return native(a, b)
	}
	out := &Tensor{}
	out.setShape(a.shape)
	ok, err := e.launch(k, backend.Launch{
		Inputs: [][]float32{a.data, b.data},
		Output: out.data,
		Length: len(out.data),
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return native(a, b)
	}
	return out, nil
}

// Sqrt is Sqrt on the device.
func (e *Engine) Sqrt(t *Tensor) (*Tensor, error) {
	return e.unary(backend.KernelSqrt, t, Sqrt)
}

// Sigmoid is Sigmoid on the device.
func (e *Engine) Sigmoid(t *Tensor) (*Tensor, error) {
	return e.unary(backend.KernelSigmoid, t, Sigmoid)
}

// ReLU is ReLU on the device.
func (e *Engine) ReLU(t *Tensor) (*Tensor, error) {
	return e.unary(backend.KernelReLU, t, ReLU)
}

func (e *Engine) unary(k backend.Kernel, t *Tensor, native func(*Tensor) *Tensor) (*Tensor, error) {
	out := &Tensor{}
	out.setShape(t.shape)
	ok, err := e.launch(k, backend.Launch{
		Inputs: [][]float32{t.data},
		Output: out.data,
		Length: len(out.data),
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return native(t), nil
	}
	return out, nil
}

// Softmax is Softmax on the device.
func (e *Engine) Softmax(t *Tensor) (*Tensor, error) {
	if err := requireRank("Softmax", t.shape, 1, 2); err != nil {
		return nil, err
	}
	n := t.shape[len(t.shape)-1]
	if n == 0 {
		return Softmax(t)
	}

	out := &Tensor{}
	out.setShape(t.shape)
	ok, err := e.launch(backend.KernelSoftmax, backend.Launch{
		Inputs: [][]float32{t.data},
		Output: out.data,
		Length: n,
		Batch:  len(t.data) / n,
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return Softmax(t)
	}
	return out, nil
}

// Sum is Sum on the device.
func (e *Engine) Sum(t *Tensor) (*Tensor, error) {
	return e.rowReduce(backend.KernelSum, "Sum", t, nil, Sum)
}

// Dot is Dot on the device.
func (e *Engine) Dot(a, b *Tensor) (*Tensor, error) {
	if err := requireRank("Dot", a.shape, 1, 2); err != nil {
		return nil, err
	}
	if err := requireSameShape("Dot", a, b); err != nil {
		return nil, err
	}
	return e.rowReduce(backend.KernelDot, "Dot", a, b, func(x *Tensor) (*Tensor, error) { return Dot(x, b) })
}

// rowReduce collapses the last axis with kernel k. other is the second operand
// for binary reductions.
func (e *Engine) rowReduce(k backend.Kernel, op string, t, other *Tensor, native func(*Tensor) (*Tensor, error)) (*Tensor, error) {
	if err := requireRank(op, t.shape, 1, 2, 3); err != nil {
		return nil, err
	}
	n := t.shape[len(t.shape)-1]
	if n == 0 {
		return native(t)
	}

	outShape := t.shape[:len(t.shape)-1].Clone()
	if len(outShape) == 0 {
		outShape = Shape{1}
	}
	out := &Tensor{}
	out.setShape(outShape)

	inputs := [][]float32{t.data}
	if other != nil {
		inputs = append(inputs, other.data)
	}
	ok, err := e.launch(k, backend.Launch{
		Inputs: inputs,
		Output: out.data,
		Length: n,
		Batch:  len(t.data) / n,
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return native(t)
	}
	return out, nil
}

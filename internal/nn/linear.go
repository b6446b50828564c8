package nn

import (
	"fmt"

	"github.com/born-ml/tensornet/internal/tensor"
)

// Affine implements a fully connected layer.
//
// Performs the transformation: y = x @ W + b
// where:
//   - x is the input with shape [batch, in] or [batch, seq, in]
//   - W is the weight matrix with shape [in, out]
//   - b is the bias vector with shape [out]
//
// W and B are shared with the network's parameter table: updating them in
// place between training steps is visible to the layer. DW and DB hold the
// gradients of the last Backward call.
//
// Example:
//
//	w := tensor.Must(tensor.RandomNormal(tensor.Shape{784, 50}, 0, 0.01, nil))
//	b := tensor.Must(tensor.Zeros(tensor.Shape{50}))
//	layer, err := nn.NewAffine(w, b, nil)
//	out, err := layer.Forward(x) // [batch, 50]
type Affine struct {
	W, B   *tensor.Tensor
	DW, DB *tensor.Tensor

	engine  *tensor.Engine
	x       *tensor.Tensor // input flattened to [rows, in]
	inShape tensor.Shape
}

// NewAffine creates an Affine layer over w [in, out] and b [out].
// A nil engine runs natively.
func NewAffine(w, b *tensor.Tensor, engine *tensor.Engine) (*Affine, error) {
	if w.Rank() != 2 {
		return nil, fmt.Errorf("%w: Affine weight must be rank 2, got shape %v", tensor.ErrInvalidArgument, w.Shape())
	}
	if b.Rank() != 1 || b.Dim(0) != w.Dim(1) {
		return nil, fmt.Errorf("%w: Affine bias shape %v does not match weight %v", tensor.ErrInvalidArgument, b.Shape(), w.Shape())
	}
	return &Affine{W: w, B: b, engine: engine}, nil
}

// Name returns "Affine".
func (a *Affine) Name() string {
	return "Affine"
}

// InFeatures returns the input width.
func (a *Affine) InFeatures() int {
	return a.W.Dim(0)
}

// OutFeatures returns the output width.
func (a *Affine) OutFeatures() int {
	return a.W.Dim(1)
}

// Forward computes x @ W + b. Rank-3 inputs apply the same W to every batch entry.
func (a *Affine) Forward(x *tensor.Tensor) (*tensor.Tensor, error) {
	x2, err := flatten2D("Affine", x)
	if err != nil {
		return nil, err
	}

	y, err := a.engine.Matmul(x2, a.W)
	if err != nil {
		return nil, fmt.Errorf("Affine forward: %w", err)
	}
	y, err = a.engine.Add(y, a.B)
	if err != nil {
		return nil, fmt.Errorf("Affine forward: %w", err)
	}

	if x2 == x {
		x2 = x.Clone()
	}
	a.x = x2
	a.inShape = x.Shape()
	return unflatten(y, a.inShape, a.OutFeatures())
}

// Backward computes dX = dOut @ Wᵀ, dW = xᵀ @ dOut and db = Σ dOut over every
// leading axis.
func (a *Affine) Backward(dout *tensor.Tensor) (*tensor.Tensor, error) {
	if a.x == nil {
		return nil, fmt.Errorf("Affine: %w", ErrBackwardBeforeForward)
	}
	want := append(a.inShape[:len(a.inShape)-1].Clone(), a.OutFeatures())
	if !dout.Shape().Equal(want) {
		return nil, fmt.Errorf("%w: Affine backward expects dout %v, got %v", tensor.ErrInvalidArgument, want, dout.Shape())
	}
	d2, err := flatten2D("Affine", dout)
	if err != nil {
		return nil, err
	}

	wT, err := tensor.Transpose(a.W)
	if err != nil {
		return nil, err
	}
	dx, err := a.engine.Matmul(d2, wT)
	if err != nil {
		return nil, fmt.Errorf("Affine backward: %w", err)
	}

	xT, err := tensor.Transpose(a.x)
	if err != nil {
		return nil, err
	}
	if a.DW, err = a.engine.Matmul(xT, d2); err != nil {
		return nil, fmt.Errorf("Affine backward: %w", err)
	}
	if a.DB, err = tensor.SumAxis(d2, 0); err != nil {
		return nil, fmt.Errorf("Affine backward: %w", err)
	}

	return unflatten(dx, a.inShape, a.InFeatures())
}

// flatten2D folds the leading axes of a rank-2 or rank-3 tensor into rows.
func flatten2D(op string, x *tensor.Tensor) (*tensor.Tensor, error) {
	switch x.Rank() {
	case 2:
		return x, nil
	case 3:
		return x.Reshape(x.Dim(0)*x.Dim(1), x.Dim(2))
	default:
		return nil, fmt.Errorf("%w: %s expects rank 2 or 3 input, got shape %v", tensor.ErrInvalidArgument, op, x.Shape())
	}
}

// unflatten restores the leading axes of like with a new trailing width.
func unflatten(y *tensor.Tensor, like tensor.Shape, width int) (*tensor.Tensor, error) {
	if len(like) == 2 {
		return y, nil
	}
	return y.Reshape(like[0], like[1], width)
}

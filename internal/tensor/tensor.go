package tensor

import (
	"fmt"
	"io"
	"strings"
)

// Tensor is a dense float32 N-dimensional array stored in row-major order.
//
// The zero value is an uninitialized tensor with an empty shape and no storage.
// Use New or one of the factory functions to create a usable tensor.
type Tensor struct {
	shape   Shape
	strides []int
	data    []float32
}

// New creates a zero-filled tensor with the given dimensions.
//
// Example:
//
//	t, err := tensor.New(3, 4) // 3×4 zeros
func New(shape ...int) (*Tensor, error) {
	s := Shape(shape)
	if err := s.Validate(); err != nil {
		return nil, err
	}
	t := &Tensor{}
	t.setShape(s)
	return t, nil
}

// Must returns t or panics if err is non-nil.
// It is meant for literals in tests and example programs.
func Must(t *Tensor, err error) *Tensor {
	if err != nil {
		panic(err)
	}
	return t
}

// SetShape changes the tensor's dimensions in place.
//
// Strides are recomputed and storage is resized to the new element count;
// existing values are kept up to the new length and any new storage is zero.
func (t *Tensor) SetShape(shape Shape) error {
	if err := shape.Validate(); err != nil {
		return err
	}
	t.setShape(shape)
	return nil
}

func (t *Tensor) setShape(shape Shape) {
	t.shape = shape.Clone()
	t.strides = t.shape.ComputeStrides()

	n := t.shape.NumElements()
	switch {
	case n <= len(t.data):
		t.data = t.data[:n]
	case n <= cap(t.data):
		old := len(t.data)
		t.data = t.data[:n]
		clear(t.data[old:])
	default:
		data := make([]float32, n)
		copy(data, t.data)
		t.data = data
	}
}

// Shape returns a copy of the tensor's dimensions.
func (t *Tensor) Shape() Shape {
	return t.shape.Clone()
}

// Strides returns a copy of the tensor's row-major strides.
func (t *Tensor) Strides() []int {
	s := make([]int, len(t.strides))
	copy(s, t.strides)
	return s
}

// Rank returns the number of dimensions.
func (t *Tensor) Rank() int {
	return len(t.shape)
}

// Size returns the number of stored elements.
func (t *Tensor) Size() int {
	return len(t.data)
}

// Dim returns the size of one axis. Negative axes count from the end.
func (t *Tensor) Dim(axis int) int {
	if axis < 0 {
		axis += len(t.shape)
	}
	return t.shape[axis]
}

// Storage returns the flat row-major buffer.
//
// WARNING: the slice aliases the tensor; writes through it modify the tensor.
func (t *Tensor) Storage() []float32 {
	return t.data
}

// At returns the element at the given multi-index.
func (t *Tensor) At(indices ...int) (float32, error) {
	off, err := t.shape.Offset(indices...)
	if err != nil {
		return 0, err
	}
	return t.data[off], nil
}

// Set stores value at the given multi-index.
func (t *Tensor) Set(value float32, indices ...int) error {
	off, err := t.shape.Offset(indices...)
	if err != nil {
		return err
	}
	t.data[off] = value
	return nil
}

// Clone returns a deep copy.
func (t *Tensor) Clone() *Tensor {
	data := make([]float32, len(t.data))
	copy(data, t.data)
	return &Tensor{
		shape:   t.shape.Clone(),
		strides: t.Strides(),
		data:    data,
	}
}

// Reshape returns a copy with new dimensions and the same storage order.
func (t *Tensor) Reshape(shape ...int) (*Tensor, error) {
	s := Shape(shape)
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if s.NumElements() != len(t.data) {
		return nil, fmt.Errorf("%w: cannot reshape %v (%d elements) into %v (%d elements)",
			ErrInvalidArgument, t.shape, len(t.data), s, s.NumElements())
	}
	out := t.Clone()
	out.shape = s.Clone()
	out.strides = s.ComputeStrides()
	return out, nil
}

// Slice copies the rows [start, end) along the leading axis.
// The result keeps the tensor's rank.
func (t *Tensor) Slice(start, end int) (*Tensor, error) {
	if len(t.shape) == 0 {
		return nil, fmt.Errorf("%w: slice of uninitialized tensor", ErrInvalidArgument)
	}
	if start < 0 || end > t.shape[0] || start > end {
		return nil, fmt.Errorf("%w: slice [%d, %d) of axis 0 (size %d)", ErrOutOfRange, start, end, t.shape[0])
	}

	shape := t.shape.Clone()
	shape[0] = end - start
	out := &Tensor{}
	out.setShape(shape)

	row := t.strides[0]
	copy(out.data, t.data[start*row:end*row])
	return out, nil
}

// Index copies the i-th entry along the leading axis and drops that axis.
// Indexing a rank-1 tensor yields a one-element rank-1 tensor.
func (t *Tensor) Index(i int) (*Tensor, error) {
	sub, err := t.Slice(i, i+1)
	if err != nil {
		return nil, err
	}
	if len(sub.shape) == 1 {
		return sub, nil
	}
	return sub.Reshape(sub.shape[1:]...)
}

// IsSameShape reports whether a and b have identical dimensions.
func IsSameShape(a, b *Tensor) bool {
	return a.shape.Equal(b.shape)
}

// requireSameShape fails with a message naming op if shapes differ.
func requireSameShape(op string, a, b *Tensor) error {
	if !IsSameShape(a, b) {
		return fmt.Errorf("%w: %s requires identical shapes, got %v and %v", ErrInvalidArgument, op, a.shape, b.shape)
	}
	return nil
}

// String renders shape and values for debugging. The format is not stable.
func (t *Tensor) String() string {
	var sb strings.Builder
	t.Print(&sb)
	return sb.String()
}

// PrintShape writes the tensor's shape.
func (t *Tensor) PrintShape(w io.Writer) {
	fmt.Fprintf(w, "shape: %v\n", t.shape)
}

// Print writes the tensor's values as nested brackets, one innermost row per line.
func (t *Tensor) Print(w io.Writer) {
	if len(t.shape) == 0 {
		fmt.Fprintln(w, "[]")
		return
	}
	t.printAxis(w, 0, 0)
	fmt.Fprintln(w)
}

func (t *Tensor) printAxis(w io.Writer, axis, offset int) {
	fmt.Fprint(w, "[")
	n := t.shape[axis]
	if axis == len(t.shape)-1 {
		for i := 0; i < n; i++ {
			if i > 0 {
				fmt.Fprint(w, ", ")
			}
			fmt.Fprintf(w, "%g", t.data[offset+i])
		}
		fmt.Fprint(w, "]")
		return
	}
	for i := 0; i < n; i++ {
		if i > 0 {
			fmt.Fprint(w, ",\n"+strings.Repeat(" ", axis+1))
		}
		t.printAxis(w, axis+1, offset+i*t.strides[axis])
	}
	fmt.Fprint(w, "]")
}

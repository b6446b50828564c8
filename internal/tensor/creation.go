package tensor

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// Zeros creates a tensor filled with zeros.
//
// Example:
//
//	t, err := tensor.Zeros(tensor.Shape{3, 4})
func Zeros(shape Shape) (*Tensor, error) {
	return New(shape...)
}

// Ones creates a tensor filled with ones.
func Ones(shape Shape) (*Tensor, error) {
	return Fill(shape, 1)
}

// Fill creates a tensor with every element set to value.
func Fill(shape Shape, value float32) (*Tensor, error) {
	t, err := New(shape...)
	if err != nil {
		return nil, err
	}
	for i := range t.data {
		t.data[i] = value
	}
	return t, nil
}

// Eye creates a rank-2 identity-like tensor: ones on the main diagonal
// (min(rows, cols) entries) and zeros elsewhere.
func Eye(shape Shape) (*Tensor, error) {
	if err := requireRank("Eye", shape, 2); err != nil {
		return nil, err
	}
	t, err := New(shape...)
	if err != nil {
		return nil, err
	}
	n := min(shape[0], shape[1])
	for i := 0; i < n; i++ {
		t.data[i*t.strides[0]+i] = 1
	}
	return t, nil
}

// Random creates a tensor with values drawn uniformly from [0, 1).
// A nil src uses a randomly seeded PCG source.
func Random(shape Shape, src rand.Source) (*Tensor, error) {
	t, err := New(shape...)
	if err != nil {
		return nil, err
	}
	dist := distuv.Uniform{Min: 0, Max: 1, Src: sourceOrDefault(src)}
	for i := range t.data {
		t.data[i] = float32(dist.Rand())
	}
	return t, nil
}

// RandomNormal creates a tensor with values drawn from N(mean, std²).
// A nil src uses a randomly seeded PCG source.
//
// Example:
//
//	w, err := tensor.RandomNormal(tensor.Shape{784, 50}, 0, 0.01, rand.NewPCG(42, 42))
func RandomNormal(shape Shape, mean, std float64, src rand.Source) (*Tensor, error) {
	if std < 0 {
		return nil, fmt.Errorf("%w: standard deviation %g must be >= 0", ErrInvalidArgument, std)
	}
	t, err := New(shape...)
	if err != nil {
		return nil, err
	}
	if std == 0 {
		for i := range t.data {
			t.data[i] = float32(mean)
		}
		return t, nil
	}
	dist := distuv.Normal{Mu: mean, Sigma: std, Src: sourceOrDefault(src)}
	for i := range t.data {
		t.data[i] = float32(dist.Rand())
	}
	return t, nil
}

// FromArray creates a tensor from a flat row-major slice. The slice is copied.
func FromArray(data []float32, shape Shape) (*Tensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	if shape.NumElements() != len(data) {
		return nil, fmt.Errorf("%w: shape %v requires %d elements, but got %d",
			ErrInvalidArgument, shape, shape.NumElements(), len(data))
	}
	t := &Tensor{}
	t.setShape(shape)
	copy(t.data, data)
	return t, nil
}

// FromRows creates a rank-2 tensor from equally long rows.
func FromRows(rows [][]float32) (*Tensor, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: FromRows needs at least one row", ErrInvalidArgument)
	}
	cols := len(rows[0])
	data := make([]float32, 0, len(rows)*cols)
	for i, row := range rows {
		if len(row) != cols {
			return nil, fmt.Errorf("%w: row %d has %d values, row 0 has %d", ErrInvalidArgument, i, len(row), cols)
		}
		data = append(data, row...)
	}
	return FromArray(data, Shape{len(rows), cols})
}

func sourceOrDefault(src rand.Source) rand.Source {
	if src != nil {
		return src
	}
	return rand.NewPCG(rand.Uint64(), rand.Uint64())
}

// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"io"
	"math/rand/v2"

	"github.com/born-ml/tensornet/internal/backend"
	"github.com/born-ml/tensornet/internal/tensor"
)

// Tensor is a float32 N-dimensional array.
type Tensor = tensor.Tensor

// Shape represents the dimensions of a tensor.
// Example: Shape{2, 3, 4} represents a 3D tensor with dimensions 2×3×4.
type Shape = tensor.Shape

// MaxRank is the highest supported rank.
const MaxRank = tensor.MaxRank

// Epsilon is added to denominators under EpsilonDivision.
const Epsilon = tensor.Epsilon

// Errors returned by tensor operations. Test with errors.Is.
var (
	ErrInvalidArgument = tensor.ErrInvalidArgument
	ErrOutOfRange      = tensor.ErrOutOfRange
	ErrIO              = tensor.ErrIO
	ErrParse           = tensor.ErrParse
)

// Creation

// New creates a zero-filled tensor with the given dimensions.
func New(shape ...int) (*Tensor, error) { return tensor.New(shape...) }

// Must panics if err is non-nil and returns t otherwise.
func Must(t *Tensor, err error) *Tensor { return tensor.Must(t, err) }

// Zeros creates a tensor filled with zeros.
func Zeros(shape Shape) (*Tensor, error) { return tensor.Zeros(shape) }

// Ones creates a tensor filled with ones.
func Ones(shape Shape) (*Tensor, error) { return tensor.Ones(shape) }

// Fill creates a tensor filled with value.
func Fill(shape Shape, value float32) (*Tensor, error) { return tensor.Fill(shape, value) }

// Eye creates a rank-2 tensor with ones on the main diagonal.
func Eye(shape Shape) (*Tensor, error) { return tensor.Eye(shape) }

// Random draws values uniformly from [0, 1). A nil src uses a random seed.
func Random(shape Shape, src rand.Source) (*Tensor, error) { return tensor.Random(shape, src) }

// RandomNormal draws values from N(mean, std²).
func RandomNormal(shape Shape, mean, std float64, src rand.Source) (*Tensor, error) {
	return tensor.RandomNormal(shape, mean, std, src)
}

// FromArray copies data into a tensor of the given shape.
func FromArray(data []float32, shape Shape) (*Tensor, error) { return tensor.FromArray(data, shape) }

// FromRows builds a rank-2 tensor from equal-length rows.
func FromRows(rows [][]float32) (*Tensor, error) { return tensor.FromRows(rows) }

// FromCSV reads a numeric CSV file into a rank-2 tensor.
func FromCSV(path string) (*Tensor, error) { return tensor.FromCSV(path) }

// ReadCSV parses numeric CSV rows from r into a rank-2 tensor.
func ReadCSV(r io.Reader) (*Tensor, error) { return tensor.ReadCSV(r) }

// Shapes

// BroadcastShapes returns the broadcast result of a and b and whether the
// shapes differ.
func BroadcastShapes(a, b Shape) (Shape, bool, error) { return tensor.BroadcastShapes(a, b) }

// IsBroadcastable reports whether a and b can be broadcast together.
func IsBroadcastable(a, b Shape) bool { return tensor.IsBroadcastable(a, b) }

// IsSameShape reports whether a and b have identical dimensions.
func IsSameShape(a, b *Tensor) bool { return tensor.IsSameShape(a, b) }

// Arithmetic

// DivisionPolicy selects how division treats zero denominators.
type DivisionPolicy = tensor.DivisionPolicy

// Division policies.
const (
	EpsilonDivision = tensor.EpsilonDivision
	IEEEDivision    = tensor.IEEEDivision
)

// ParseDivisionPolicy maps "epsilon" or "ieee" to a DivisionPolicy.
func ParseDivisionPolicy(name string) (DivisionPolicy, error) { return tensor.ParseDivisionPolicy(name) }

// Add adds elementwise with broadcasting.
func Add(a, b *Tensor) (*Tensor, error) { return tensor.Add(a, b) }

// Sub subtracts elementwise with broadcasting.
func Sub(a, b *Tensor) (*Tensor, error) { return tensor.Sub(a, b) }

// Mul multiplies elementwise with broadcasting.
func Mul(a, b *Tensor) (*Tensor, error) { return tensor.Mul(a, b) }

// Div divides elementwise under EpsilonDivision.
func Div(a, b *Tensor) (*Tensor, error) { return tensor.Div(a, b) }

// DivWithPolicy divides elementwise under policy.
func DivWithPolicy(a, b *Tensor, policy DivisionPolicy) (*Tensor, error) {
	return tensor.DivWithPolicy(a, b, policy)
}

// Equal returns 1 where a == b and 0 elsewhere.
func Equal(a, b *Tensor) (*Tensor, error) { return tensor.Equal(a, b) }

// AddScalar returns t + s.
func AddScalar(t *Tensor, s float32) *Tensor { return tensor.AddScalar(t, s) }

// SubScalar returns t - s.
func SubScalar(t *Tensor, s float32) *Tensor { return tensor.SubScalar(t, s) }

// ScalarSub returns s - t.
func ScalarSub(s float32, t *Tensor) *Tensor { return tensor.ScalarSub(s, t) }

// MulScalar returns t * s.
func MulScalar(t *Tensor, s float32) *Tensor { return tensor.MulScalar(t, s) }

// DivScalar returns t / s under EpsilonDivision.
func DivScalar(t *Tensor, s float32) *Tensor { return tensor.DivScalar(t, s) }

// ScalarDiv returns s / t under EpsilonDivision.
func ScalarDiv(s float32, t *Tensor) *Tensor { return tensor.ScalarDiv(s, t) }

// Linear algebra and reductions

// Matmul multiplies [m, k] by [k, n], batched over a leading axis for rank 3.
func Matmul(a, b *Tensor) (*Tensor, error) { return tensor.Matmul(a, b) }

// Dot returns the inner product along the last axis.
func Dot(a, b *Tensor) (*Tensor, error) { return tensor.Dot(a, b) }

// Transpose swaps the last two axes.
func Transpose(t *Tensor) (*Tensor, error) { return tensor.Transpose(t) }

// Concat stacks equally shaped tensors along a new leading axis.
func Concat(ts []*Tensor) (*Tensor, error) { return tensor.Concat(ts) }

// Sum reduces the last axis.
func Sum(t *Tensor) (*Tensor, error) { return tensor.Sum(t) }

// SumAxis reduces the given axis.
func SumAxis(t *Tensor, axis int) (*Tensor, error) { return tensor.SumAxis(t, axis) }

// Mean averages the last axis.
func Mean(t *Tensor) (*Tensor, error) { return tensor.Mean(t) }

// Softmax normalizes the last axis into probabilities.
func Softmax(t *Tensor) (*Tensor, error) { return tensor.Softmax(t) }

// Argmax returns the largest index per row.
func Argmax(t *Tensor) ([]int, error) { return tensor.Argmax(t) }

// Elementwise functions

// Sigmoid applies 1 / (1 + exp(-x) + Epsilon).
func Sigmoid(t *Tensor) *Tensor { return tensor.Sigmoid(t) }

// ReLU applies max(0, x).
func ReLU(t *Tensor) *Tensor { return tensor.ReLU(t) }

// Exp applies e^x.
func Exp(t *Tensor) *Tensor { return tensor.Exp(t) }

// Log applies the natural logarithm.
func Log(t *Tensor) *Tensor { return tensor.Log(t) }

// Sqrt applies the square root.
func Sqrt(t *Tensor) *Tensor { return tensor.Sqrt(t) }

// Devices

// Engine routes tensor operations to a compute device and falls back to
// native code for kernels the device lacks.
type Engine = tensor.Engine

// EngineOption configures an Engine.
type EngineOption = tensor.EngineOption

// Executor runs named kernels on a device. See backend/cpu and backend/webgpu.
type Executor = backend.Executor

// NewEngine wraps exec. A nil exec runs everything natively.
func NewEngine(exec Executor, opts ...EngineOption) *Engine { return tensor.NewEngine(exec, opts...) }

// WithDivisionPolicy sets the division policy of an Engine.
func WithDivisionPolicy(p DivisionPolicy) EngineOption { return tensor.WithDivisionPolicy(p) }

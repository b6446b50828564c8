package tensor

import "fmt"

// MaxRank is the highest rank supported by the rank-dispatched ops
// (Sum, SumAxis, Transpose, Matmul). The strided kernels underneath are
// rank-agnostic.
const MaxRank = 3

// Shape represents the dimensions of a tensor.
// Example: Shape{2, 3, 4} represents a 3D tensor with dimensions 2×3×4.
type Shape []int

// NumElements returns the product of all dimensions.
// An empty shape has no elements.
func (s Shape) NumElements() int {
	if len(s) == 0 {
		return 0
	}
	n := 1
	for _, dim := range s {
		n *= dim
	}
	return n
}

// Validate checks that the shape is non-empty and has no negative dimension.
func (s Shape) Validate() error {
	if len(s) == 0 {
		return fmt.Errorf("%w: shape must have at least one dimension", ErrInvalidArgument)
	}
	for i, dim := range s {
		if dim < 0 {
			return fmt.Errorf("%w: dimension %d is %d (must be >= 0)", ErrInvalidArgument, i, dim)
		}
	}
	return nil
}

// Equal checks if two shapes are equal.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of the shape.
func (s Shape) Clone() Shape {
	clone := make(Shape, len(s))
	copy(clone, s)
	return clone
}

// ComputeStrides calculates row-major strides for the shape.
// Strides define memory layout: stride[i] = product of all dimensions after i.
func (s Shape) ComputeStrides() []int {
	strides := make([]int, len(s))
	if len(s) == 0 {
		return strides
	}

	strides[len(s)-1] = 1
	for i := len(s) - 2; i >= 0; i-- {
		strides[i] = strides[i+1] * s[i+1]
	}
	return strides
}

// Offset maps a multi-index to its position in the flat row-major buffer.
func (s Shape) Offset(indices ...int) (int, error) {
	if len(s) == 0 {
		return 0, fmt.Errorf("%w: indexing an uninitialized tensor", ErrInvalidArgument)
	}
	if len(indices) != len(s) {
		return 0, fmt.Errorf("%w: expected %d indices for shape %v, got %d",
			ErrInvalidArgument, len(s), s, len(indices))
	}

	offset := 0
	stride := 1
	for i := len(s) - 1; i >= 0; i-- {
		idx := indices[i]
		if idx < 0 || idx >= s[i] {
			return 0, fmt.Errorf("%w: index %d for axis %d (size %d)", ErrOutOfRange, idx, i, s[i])
		}
		offset += idx * stride
		stride *= s[i]
	}
	return offset, nil
}

// String renders the shape as [d0 d1 ...].
func (s Shape) String() string {
	return fmt.Sprint([]int(s))
}

// BroadcastShapes implements NumPy-style broadcasting rules.
//
// Rules:
// 1. Compare shapes element-wise from right to left
// 2. Dimensions are compatible if:
//   - They are equal, OR
//   - One of them is 1
//
// 3. Missing dimensions are treated as 1
//
// Returns the broadcasted shape, a flag indicating if broadcasting is needed, and an error if incompatible.
//
// Examples:
//
//	(3, 1) + (3, 5) → (3, 5), true, nil
//	(1, 5) + (3, 5) → (3, 5), true, nil
//	(3, 5) + (3, 5) → (3, 5), false, nil
//	(3, 4) + (3, 5) → nil, false, Error
func BroadcastShapes(a, b Shape) (Shape, bool, error) {
	maxLen := max(len(a), len(b))
	result := make(Shape, maxLen)
	needsBroadcast := len(a) != len(b)

	for i := 0; i < maxLen; i++ {
		aDim := dimFromRight(a, i)
		bDim := dimFromRight(b, i)

		switch {
		case aDim == bDim:
			result[maxLen-1-i] = aDim
		case aDim == 1:
			result[maxLen-1-i] = bDim
			needsBroadcast = true
		case bDim == 1:
			result[maxLen-1-i] = aDim
			needsBroadcast = true
		default:
			return nil, false, fmt.Errorf("%w: shapes %v and %v are not broadcastable (dimension %d: %d vs %d)",
				ErrInvalidArgument, a, b, maxLen-1-i, aDim, bDim)
		}
	}

	return result, needsBroadcast, nil
}

// IsBroadcastable reports whether a and b can be combined elementwise.
func IsBroadcastable(a, b Shape) bool {
	_, _, err := BroadcastShapes(a, b)
	return err == nil
}

// dimFromRight returns the i-th dimension counted from the trailing axis,
// treating missing leading axes as size 1.
func dimFromRight(s Shape, i int) int {
	idx := len(s) - 1 - i
	if idx < 0 {
		return 1
	}
	return s[idx]
}

// broadcastStrides computes strides for reading inShape as if it had outShape.
// Padded axes and axes of size 1 get stride 0.
func broadcastStrides(inShape, outShape Shape) []int {
	outDim := len(outShape)
	strides := make([]int, outDim)
	offset := outDim - len(inShape)
	origStrides := inShape.ComputeStrides()

	for i := 0; i < outDim; i++ {
		inIdx := i - offset
		switch {
		case inIdx < 0:
			strides[i] = 0
		case inShape[inIdx] == 1:
			strides[i] = 0
		default:
			strides[i] = origStrides[inIdx]
		}
	}
	return strides
}

// requireRank fails unless the shape rank is one of the allowed values.
func requireRank(op string, s Shape, allowed ...int) error {
	for _, r := range allowed {
		if len(s) == r {
			return nil
		}
	}
	return fmt.Errorf("%w: %s does not support rank %d (shape %v)", ErrInvalidArgument, op, len(s), s)
}

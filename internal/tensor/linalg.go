package tensor

import (
	"fmt"

	"github.com/born-ml/tensornet/internal/parallel"
)

// Matmul multiplies two rank-2 matrices or two rank-3 batches of matrices.
//
// Shapes:
//
//	[M, K] @ [K, N]       → [M, N]
//	[B, M, K] @ [B, K, N] → [B, M, N]
//
// Inner (and batch) dimensions must match exactly; there is no broadcasting.
func Matmul(a, b *Tensor) (*Tensor, error) {
	if err := checkMatmul(a.shape, b.shape); err != nil {
		return nil, err
	}

	if len(a.shape) == 2 {
		m, k, n := a.shape[0], a.shape[1], b.shape[1]
		out := &Tensor{}
		out.setShape(Shape{m, n})
		matmulInto(out.data, a.data, b.data, m, k, n)
		return out, nil
	}

	batch, m, k, n := a.shape[0], a.shape[1], a.shape[2], b.shape[2]
	out := &Tensor{}
	out.setShape(Shape{batch, m, n})
	for i := 0; i < batch; i++ {
		matmulInto(out.data[i*m*n:(i+1)*m*n], a.data[i*m*k:(i+1)*m*k], b.data[i*k*n:(i+1)*k*n], m, k, n)
	}
	return out, nil
}

func checkMatmul(as, bs Shape) error {
	switch {
	case len(as) == 2 && len(bs) == 2:
		if as[1] != bs[0] {
			return fmt.Errorf("%w: Matmul inner dimensions differ: %v @ %v", ErrInvalidArgument, as, bs)
		}
	case len(as) == 3 && len(bs) == 3:
		if as[0] != bs[0] {
			return fmt.Errorf("%w: Matmul batch dimensions differ: %v @ %v", ErrInvalidArgument, as, bs)
		}
		if as[2] != bs[1] {
			return fmt.Errorf("%w: Matmul inner dimensions differ: %v @ %v", ErrInvalidArgument, as, bs)
		}
	default:
		return fmt.Errorf("%w: Matmul supports rank 2×2 or 3×3, got %v @ %v", ErrInvalidArgument, as, bs)
	}
	return nil
}

// matmulInto computes C = A @ B for row-major A [m,k], B [k,n] into c [m,n].
// Rows of C are independent, so they are split across workers.
func matmulInto(c, a, b []float32, m, k, n int) {
	cfg := cpuParallel
	cfg.MinChunkSize = max(1, cfg.MinChunkSize/max(1, k*n))
	parallel.ForRange(m, func(start, end int) {
		for i := start; i < end; i++ {
			row := c[i*n : (i+1)*n]
			clear(row)
			for p := 0; p < k; p++ {
				av := a[i*k+p]
				bRow := b[p*n : (p+1)*n]
				for j, bv := range bRow {
					row[j] += av * bv
				}
			}
		}
	}, cfg)
}

// Dot computes inner products along the last axis.
//
// Rank 1: a single value in a one-element tensor.
// Rank 2: one value per row, shape [rows].
//
// Both operands must have the same shape. Dot does not contract like Matmul.
func Dot(a, b *Tensor) (*Tensor, error) {
	if err := requireRank("Dot", a.shape, 1, 2); err != nil {
		return nil, err
	}
	if err := requireSameShape("Dot", a, b); err != nil {
		return nil, err
	}
	prod, err := Mul(a, b)
	if err != nil {
		return nil, err
	}
	return Sum(prod)
}

// Transpose swaps the two axes of a rank-2 tensor or the last two axes of a
// rank-3 tensor (the batch axis stays in place).
func Transpose(t *Tensor) (*Tensor, error) {
	if err := requireRank("Transpose", t.shape, 2, 3); err != nil {
		return nil, err
	}
	return swapLastAxes(t), nil
}

// swapLastAxes transposes the trailing two axes of any tensor with rank >= 2.
func swapLastAxes(t *Tensor) *Tensor {
	r := len(t.shape)
	rows, cols := t.shape[r-2], t.shape[r-1]
	batch := 1
	for _, d := range t.shape[:r-2] {
		batch *= d
	}

	outShape := t.shape.Clone()
	outShape[r-2], outShape[r-1] = cols, rows
	out := &Tensor{}
	out.setShape(outShape)

	plane := rows * cols
	src, dst := t.data, out.data
	parallel.For(batch, func(bi int) {
		base := bi * plane
		for i := 0; i < rows; i++ {
			for j := 0; j < cols; j++ {
				dst[base+j*rows+i] = src[base+i*cols+j]
			}
		}
	}, cpuParallel)
	return out
}

// Concat stacks equally shaped tensors along a new leading axis.
func Concat(ts []*Tensor) (*Tensor, error) {
	if len(ts) == 0 {
		return nil, fmt.Errorf("%w: Concat needs at least one tensor", ErrInvalidArgument)
	}
	first := ts[0]
	if len(first.shape) == 0 {
		return nil, fmt.Errorf("%w: Concat of uninitialized tensor", ErrInvalidArgument)
	}
	for i, t := range ts[1:] {
		if !IsSameShape(first, t) {
			return nil, fmt.Errorf("%w: Concat tensor %d has shape %v, want %v", ErrInvalidArgument, i+1, t.shape, first.shape)
		}
	}

	outShape := append(Shape{len(ts)}, first.shape...)
	out := &Tensor{}
	out.setShape(outShape)

	n := len(first.data)
	for i, t := range ts {
		copy(out.data[i*n:(i+1)*n], t.data)
	}
	return out, nil
}

package tensor

import (
	"fmt"
	"math"

	"github.com/born-ml/tensornet/internal/parallel"
)

// Sum collapses the last axis of a rank 1-3 tensor.
//
//	[n]       → [1]
//	[r, c]    → [r]
//	[b, r, c] → [b, r]
func Sum(t *Tensor) (*Tensor, error) {
	if err := requireRank("Sum", t.shape, 1, 2, 3); err != nil {
		return nil, err
	}
	return SumAxis(t, len(t.shape)-1)
}

// SumAxis collapses one axis of a rank 1-3 tensor. Negative axes count from the end.
// Reducing the only axis of a rank-1 tensor yields shape [1].
func SumAxis(t *Tensor, axis int) (*Tensor, error) {
	if err := requireRank("SumAxis", t.shape, 1, 2, 3); err != nil {
		return nil, err
	}
	r := len(t.shape)
	if axis < 0 {
		axis += r
	}
	if axis < 0 || axis >= r {
		return nil, fmt.Errorf("%w: axis %d for rank %d", ErrInvalidArgument, axis, r)
	}

	outShape := make(Shape, 0, r)
	outShape = append(outShape, t.shape[:axis]...)
	outShape = append(outShape, t.shape[axis+1:]...)
	if len(outShape) == 0 {
		outShape = Shape{1}
	}

	out := &Tensor{}
	out.setShape(outShape)
	sumAxisInto(out.data, t.data, t.shape, axis)
	return out, nil
}

// splitAxis returns the pre/axis/post decomposition of a row-major shape:
// element (p, k, q) lives at (p*n + k)*post + q.
func splitAxis(shape Shape, axis int) (pre, n, post int) {
	pre, post = 1, 1
	for _, d := range shape[:axis] {
		pre *= d
	}
	for _, d := range shape[axis+1:] {
		post *= d
	}
	return pre, shape[axis], post
}

// sumAxisInto reduces src along axis into dst (len pre*post). Works for any rank.
func sumAxisInto(dst, src []float32, shape Shape, axis int) {
	pre, n, post := splitAxis(shape, axis)
	parallel.ForRange(pre*post, func(start, end int) {
		for o := start; o < end; o++ {
			p, q := o/post, o%post
			base := p*n*post + q
			var acc float64
			for k := 0; k < n; k++ {
				acc += float64(src[base+k*post])
			}
			dst[o] = float32(acc)
		}
	}, cpuParallel)
}

// Softmax normalizes a rank-1 tensor as a whole or a rank-2 tensor row by row.
// The row maximum is subtracted before exponentiating, so large inputs do not
// overflow.
func Softmax(t *Tensor) (*Tensor, error) {
	if err := requireRank("Softmax", t.shape, 1, 2); err != nil {
		return nil, err
	}
	out := &Tensor{}
	out.setShape(t.shape)
	softmaxLastAxis(out.data, t.data, t.shape[len(t.shape)-1])
	return out, nil
}

// softmaxLastAxis applies a stabilized softmax to each contiguous row of length n.
func softmaxLastAxis(dst, src []float32, n int) {
	if n == 0 {
		return
	}
	rows := len(src) / n
	parallel.For(rows, func(r int) {
		in := src[r*n : (r+1)*n]
		out := dst[r*n : (r+1)*n]

		maxV := in[0]
		for _, v := range in[1:] {
			if v > maxV {
				maxV = v
			}
		}
		var sum float64
		for i, v := range in {
			e := math.Exp(float64(v - maxV))
			out[i] = float32(e)
			sum += e
		}
		for i := range out {
			out[i] = float32(float64(out[i]) / sum)
		}
	}, cpuParallel)
}

// Mean averages a rank-1 tensor into shape [1] or each row of a rank-2 tensor
// into shape [rows]. Averaging zero elements is an error.
func Mean(t *Tensor) (*Tensor, error) {
	if err := requireRank("Mean", t.shape, 1, 2); err != nil {
		return nil, err
	}
	n := t.shape[len(t.shape)-1]
	if n == 0 {
		return nil, fmt.Errorf("%w: Mean of zero-length axis (shape %v)", ErrInvalidArgument, t.shape)
	}
	s, err := Sum(t)
	if err != nil {
		return nil, err
	}
	for i := range s.data {
		s.data[i] /= float32(n)
	}
	return s, nil
}

// Argmax returns the index of the largest value: one index for a rank-1
// tensor, one per row for a rank-2 tensor. Ties resolve to the first index.
func Argmax(t *Tensor) ([]int, error) {
	if err := requireRank("Argmax", t.shape, 1, 2); err != nil {
		return nil, err
	}
	if len(t.shape) == 1 {
		if len(t.data) == 0 {
			return nil, fmt.Errorf("%w: Argmax of empty tensor", ErrInvalidArgument)
		}
		return []int{argmax(t.data)}, nil
	}

	idx := make([]int, t.shape[0])
	for i := range idx {
		row, err := t.Index(i)
		if err != nil {
			return nil, err
		}
		r, err := Argmax(row)
		if err != nil {
			return nil, err
		}
		idx[i] = r[0]
	}
	return idx, nil
}

func argmax(v []float32) int {
	best := 0
	for i, x := range v[1:] {
		if x > v[best] {
			best = i + 1
		}
	}
	return best
}

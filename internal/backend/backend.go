// Package backend defines the device-execution service that tensor ops can be
// redirected to: named kernels over flat float32 buffers.
//
// Implementations:
//   - backend/cpu: pure Go, BLAS SGEMM for matmul
//   - backend/webgpu: WGSL compute shaders via go-webgpu
//
// Executors are passed explicitly to whatever needs them (see tensor.Engine);
// there is no process-wide device state.
package backend

import (
	"errors"
	"fmt"
)

// Kernel names a device computation.
type Kernel string

// Supported kernels.
//
// Elementwise kernels (add, sub, mul, div, sqrt, sigmoid, relu) process
// Launch.Elements() values. Row kernels (sum, dot, softmax) treat the inputs
// as Batch rows of Length values. Matmul multiplies Batch consecutive
// [Rows×Inner] and [Inner×Cols] matrices.
const (
	KernelAdd     Kernel = "add"
	KernelSub     Kernel = "sub"
	KernelMul     Kernel = "mul"
	KernelDiv     Kernel = "div" // plain IEEE division
	KernelSqrt    Kernel = "sqrt"
	KernelSum     Kernel = "sum"
	KernelDot     Kernel = "dot"
	KernelSigmoid Kernel = "sigmoid" // 1 / (1 + exp(-x) + 1e-7)
	KernelReLU    Kernel = "relu"
	KernelSoftmax Kernel = "softmax"
	KernelMatmul  Kernel = "matmul"
)

// Kernels lists every kernel name.
var Kernels = []Kernel{
	KernelAdd, KernelSub, KernelMul, KernelDiv, KernelSqrt,
	KernelSum, KernelDot,
	KernelSigmoid, KernelReLU, KernelSoftmax,
	KernelMatmul,
}

var (
	// ErrUnsupported is returned by executors that do not implement a kernel.
	// Callers are expected to fall back to native code.
	ErrUnsupported = errors.New("backend: kernel not supported")

	// ErrUnavailable is returned when a device cannot be opened.
	ErrUnavailable = errors.New("backend: device not available")

	// ErrBadLaunch is returned when buffers do not match the launch dimensions.
	ErrBadLaunch = errors.New("backend: invalid launch")
)

// Launch carries the buffers and dimensions of one kernel invocation.
type Launch struct {
	Inputs [][]float32
	Output []float32

	Length int // values per row (or total values when Batch is 0 or 1)
	Batch  int // number of rows or matrices; 0 means 1

	// Matmul dimensions.
	Rows, Inner, Cols int
}

// Batches returns Batch, treating 0 as 1.
func (l Launch) Batches() int {
	if l.Batch <= 0 {
		return 1
	}
	return l.Batch
}

// Elements returns the number of values an elementwise kernel touches.
func (l Launch) Elements() int {
	return l.Length * l.Batches()
}

// Executor runs kernels on a device.
type Executor interface {
	// Run executes kernel k synchronously. Output is fully written on success.
	Run(k Kernel, l Launch) error

	// Name returns a human readable device name (e.g. "CPU", "WebGPU").
	Name() string

	// Release frees device resources. The executor must not be used afterwards.
	Release()
}

// Validate checks that l's buffers are large enough for kernel k.
func Validate(k Kernel, l Launch) error {
	b := l.Batches()
	switch k {
	case KernelAdd, KernelSub, KernelMul, KernelDiv:
		return expect(k, l, 2, l.Elements(), l.Elements())
	case KernelSqrt, KernelSigmoid, KernelReLU:
		return expect(k, l, 1, l.Elements(), l.Elements())
	case KernelSoftmax:
		return expect(k, l, 1, l.Elements(), l.Elements())
	case KernelSum:
		return expect(k, l, 1, l.Elements(), b)
	case KernelDot:
		return expect(k, l, 2, l.Elements(), b)
	case KernelMatmul:
		if l.Rows < 0 || l.Inner < 0 || l.Cols < 0 {
			return fmt.Errorf("%w: %s with negative dimensions", ErrBadLaunch, k)
		}
		if len(l.Inputs) != 2 {
			return fmt.Errorf("%w: %s needs 2 inputs, got %d", ErrBadLaunch, k, len(l.Inputs))
		}
		if len(l.Inputs[0]) < b*l.Rows*l.Inner || len(l.Inputs[1]) < b*l.Inner*l.Cols {
			return fmt.Errorf("%w: %s input buffers too small for %d×[%d×%d]@[%d×%d]",
				ErrBadLaunch, k, b, l.Rows, l.Inner, l.Inner, l.Cols)
		}
		if len(l.Output) < b*l.Rows*l.Cols {
			return fmt.Errorf("%w: %s output buffer holds %d values, need %d", ErrBadLaunch, k, len(l.Output), b*l.Rows*l.Cols)
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnsupported, k)
	}
}

func expect(k Kernel, l Launch, inputs, inLen, outLen int) error {
	if l.Length < 0 {
		return fmt.Errorf("%w: %s with negative length", ErrBadLaunch, k)
	}
	if len(l.Inputs) != inputs {
		return fmt.Errorf("%w: %s needs %d inputs, got %d", ErrBadLaunch, k, inputs, len(l.Inputs))
	}
	for i, in := range l.Inputs {
		if len(in) < inLen {
			return fmt.Errorf("%w: %s input %d holds %d values, need %d", ErrBadLaunch, k, i, len(in), inLen)
		}
	}
	if len(l.Output) < outLen {
		return fmt.Errorf("%w: %s output buffer holds %d values, need %d", ErrBadLaunch, k, len(l.Output), outLen)
	}
	return nil
}

// Package cpu implements the device-execution service on the host CPU.
//
// Elementwise and row kernels run through internal/parallel; matmul uses the
// gonum BLAS SGEMM implementation.
package cpu

import (
	"fmt"
	"math"

	"github.com/born-ml/tensornet/internal/backend"
	"github.com/born-ml/tensornet/internal/parallel"
	xcpu "golang.org/x/sys/cpu"
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas32"
)

// Executor runs kernels on the CPU.
type Executor struct {
	parallel parallel.Config
}

var _ backend.Executor = (*Executor)(nil)

// New creates a CPU executor using the default parallel configuration.
func New() *Executor {
	return &Executor{parallel: parallel.DefaultConfig()}
}

// NewWithConfig creates a CPU executor with an explicit parallel configuration.
func NewWithConfig(cfg parallel.Config) *Executor {
	return &Executor{parallel: cfg}
}

// Name returns the backend name.
func (e *Executor) Name() string {
	return "CPU"
}

// Release is a no-op; the CPU executor holds no device resources.
func (e *Executor) Release() {}

// Features lists the SIMD extensions detected on this machine.
func (e *Executor) Features() []string {
	var f []string
	add := func(ok bool, name string) {
		if ok {
			f = append(f, name)
		}
	}
	add(xcpu.X86.HasSSE41, "sse4.1")
	add(xcpu.X86.HasAVX, "avx")
	add(xcpu.X86.HasAVX2, "avx2")
	add(xcpu.X86.HasFMA, "fma")
	add(xcpu.X86.HasAVX512F, "avx512f")
	add(xcpu.ARM64.HasASIMD, "neon")
	add(xcpu.ARM64.HasFPHP, "fp16")
	add(xcpu.ARM64.HasSVE, "sve")
	return f
}

// Run executes kernel k.
func (e *Executor) Run(k backend.Kernel, l backend.Launch) error {
	if err := backend.Validate(k, l); err != nil {
		return err
	}

	switch k {
	case backend.KernelAdd:
		e.binary(l, func(a, b float32) float32 { return a + b })
	case backend.KernelSub:
		e.binary(l, func(a, b float32) float32 { return a - b })
	case backend.KernelMul:
		e.binary(l, func(a, b float32) float32 { return a * b })
	case backend.KernelDiv:
		e.binary(l, func(a, b float32) float32 { return a / b })
	case backend.KernelSqrt:
		e.unary(l, func(x float32) float32 { return float32(math.Sqrt(float64(x))) })
	case backend.KernelSigmoid:
		e.unary(l, func(x float32) float32 { return float32(1 / (1 + math.Exp(float64(-x)) + 1e-7)) })
	case backend.KernelReLU:
		e.unary(l, func(x float32) float32 {
			if x > 0 {
				return x
			}
			return 0
		})
	case backend.KernelSum:
		e.rows(l, func(row int) float32 {
			var acc float64
			for _, v := range l.Inputs[0][row*l.Length : (row+1)*l.Length] {
				acc += float64(v)
			}
			return float32(acc)
		})
	case backend.KernelDot:
		e.rows(l, func(row int) float32 {
			a := l.Inputs[0][row*l.Length : (row+1)*l.Length]
			b := l.Inputs[1][row*l.Length : (row+1)*l.Length]
			var acc float64
			for i := range a {
				acc += float64(a[i]) * float64(b[i])
			}
			return float32(acc)
		})
	case backend.KernelSoftmax:
		e.softmax(l)
	case backend.KernelMatmul:
		e.matmul(l)
	default:
		return fmt.Errorf("%w: %q", backend.ErrUnsupported, k)
	}
	return nil
}

func (e *Executor) binary(l backend.Launch, fn func(a, b float32) float32) {
	a, b, out := l.Inputs[0], l.Inputs[1], l.Output
	parallel.ForRange(l.Elements(), func(start, end int) {
		for i := start; i < end; i++ {
			out[i] = fn(a[i], b[i])
		}
	}, e.parallel)
}

func (e *Executor) unary(l backend.Launch, fn func(x float32) float32) {
	in, out := l.Inputs[0], l.Output
	parallel.ForRange(l.Elements(), func(start, end int) {
		for i := start; i < end; i++ {
			out[i] = fn(in[i])
		}
	}, e.parallel)
}

func (e *Executor) rows(l backend.Launch, fn func(row int) float32) {
	parallel.For(l.Batches(), func(row int) {
		l.Output[row] = fn(row)
	}, e.parallel)
}

func (e *Executor) softmax(l backend.Launch) {
	n := l.Length
	if n == 0 {
		return
	}
	parallel.For(l.Batches(), func(row int) {
		in := l.Inputs[0][row*n : (row+1)*n]
		out := l.Output[row*n : (row+1)*n]
		maxV := in[0]
		for _, v := range in[1:] {
			maxV = max(maxV, v)
		}
		var sum float64
		for i, v := range in {
			ev := math.Exp(float64(v - maxV))
			out[i] = float32(ev)
			sum += ev
		}
		for i := range out {
			out[i] = float32(float64(out[i]) / sum)
		}
	}, e.parallel)
}

// matmul runs one SGEMM per batch entry.
func (e *Executor) matmul(l backend.Launch) {
	m, k, n := l.Rows, l.Inner, l.Cols
	for b := 0; b < l.Batches(); b++ {
		out := l.Output[b*m*n : (b+1)*m*n]
		if m == 0 || n == 0 {
			continue
		}
		if k == 0 {
			clear(out)
			continue
		}
		a := blas32.General{Rows: m, Cols: k, Stride: k, Data: l.Inputs[0][b*m*k : (b+1)*m*k]}
		bm := blas32.General{Rows: k, Cols: n, Stride: n, Data: l.Inputs[1][b*k*n : (b+1)*k*n]}
		c := blas32.General{Rows: m, Cols: n, Stride: n, Data: out}
		blas32.Gemm(blas.NoTrans, blas.NoTrans, 1, a, bm, 0, c)
	}
}

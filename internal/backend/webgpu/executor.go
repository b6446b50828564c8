//go:build windows

package webgpu

import (
	"encoding/binary"
	"fmt"
	"sync"
	"unsafe"

	"github.com/born-ml/tensornet/internal/backend"
	"github.com/go-webgpu/webgpu/wgpu"
)

// Executor runs kernels as WGSL compute shaders.
//
// Every Run uploads its inputs, dispatches one compute pass and reads the
// result back before returning, so buffers never outlive a call.
type Executor struct {
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue

	// Shader and pipeline cache
	shaders   map[string]*wgpu.ShaderModule
	pipelines map[string]*wgpu.ComputePipeline
	mu        sync.RWMutex
}

var _ backend.Executor = (*Executor)(nil)

// New opens the default high-performance adapter.
// Returns backend.ErrUnavailable if WebGPU cannot be initialized.
func New() (exec *Executor, err error) {
	// Recover from panic if wgpu_native library is not found.
	defer func() {
		if r := recover(); r != nil {
			exec = nil
			err = fmt.Errorf("%w: webgpu native library: %v", backend.ErrUnavailable, r)
		}
	}()

	instance := wgpu.CreateInstance(nil)
	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference: wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		instance.Release()
		return nil, fmt.Errorf("%w: request adapter: %w", backend.ErrUnavailable, err)
	}

	device, err := adapter.RequestDevice(nil)
	if err != nil {
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("%w: request device: %w", backend.ErrUnavailable, err)
	}

	queue := device.GetQueue()
	if queue == nil {
		device.Release()
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("%w: device has no queue", backend.ErrUnavailable)
	}

	return &Executor{
		instance:  instance,
		adapter:   adapter,
		device:    device,
		queue:     queue,
		shaders:   make(map[string]*wgpu.ShaderModule),
		pipelines: make(map[string]*wgpu.ComputePipeline),
	}, nil
}

// IsAvailable checks if a WebGPU adapter can be obtained on this system.
func IsAvailable() (available bool) {
	defer func() {
		if r := recover(); r != nil {
			available = false
		}
	}()

	instance := wgpu.CreateInstance(nil)
	defer instance.Release()

	adapter, err := instance.RequestAdapter(nil)
	if err != nil {
		return false
	}
	adapter.Release()
	return true
}

// Name returns the backend name.
func (e *Executor) Name() string {
	return "WebGPU"
}

// Release releases all WebGPU resources.
func (e *Executor) Release() {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, p := range e.pipelines {
		p.Release()
	}
	e.pipelines = nil
	for _, s := range e.shaders {
		s.Release()
	}
	e.shaders = nil

	if e.queue != nil {
		e.queue.Release()
		e.queue = nil
	}
	if e.device != nil {
		e.device.Release()
		e.device = nil
	}
	if e.adapter != nil {
		e.adapter.Release()
		e.adapter = nil
	}
	if e.instance != nil {
		e.instance.Release()
		e.instance = nil
	}
}

// Run executes kernel k. Sum and dot are left to the caller's native path.
func (e *Executor) Run(k backend.Kernel, l backend.Launch) error {
	if err := backend.Validate(k, l); err != nil {
		return err
	}
	n := l.Elements()

	switch k {
	case backend.KernelAdd:
		return e.runBinary("add", addShader, l.Inputs[0][:n], l.Inputs[1][:n], l.Output[:n])
	case backend.KernelSub:
		return e.runBinary("sub", subShader, l.Inputs[0][:n], l.Inputs[1][:n], l.Output[:n])
	case backend.KernelMul:
		return e.runBinary("mul", mulShader, l.Inputs[0][:n], l.Inputs[1][:n], l.Output[:n])
	case backend.KernelDiv:
		return e.runBinary("div", divShader, l.Inputs[0][:n], l.Inputs[1][:n], l.Output[:n])
	case backend.KernelSqrt:
		return e.runUnary("sqrt", sqrtShader, l.Inputs[0][:n], l.Output[:n])
	case backend.KernelSigmoid:
		return e.runUnary("sigmoid", sigmoidShader, l.Inputs[0][:n], l.Output[:n])
	case backend.KernelReLU:
		return e.runUnary("relu", reluShader, l.Inputs[0][:n], l.Output[:n])
	case backend.KernelSoftmax:
		return e.runSoftmax(l.Inputs[0][:n], l.Output[:n], l.Batches(), l.Length)
	case backend.KernelMatmul:
		m, kk, nn := l.Rows, l.Inner, l.Cols
		for b := 0; b < l.Batches(); b++ {
			err := e.runMatMul(
				l.Inputs[0][b*m*kk:(b+1)*m*kk],
				l.Inputs[1][b*kk*nn:(b+1)*kk*nn],
				l.Output[b*m*nn:(b+1)*m*nn],
				m, kk, nn)
			if err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("%w: %q on %s", backend.ErrUnsupported, k, e.Name())
	}
}

// compileShader compiles WGSL shader code into a ShaderModule.
// Results are cached by name.
func (e *Executor) compileShader(name, code string) *wgpu.ShaderModule {
	e.mu.RLock()
	if shader, exists := e.shaders[name]; exists {
		e.mu.RUnlock()
		return shader
	}
	e.mu.RUnlock()

	shader := e.device.CreateShaderModuleWGSL(code)

	e.mu.Lock()
	e.shaders[name] = shader
	e.mu.Unlock()

	return shader
}

// getOrCreatePipeline returns a cached ComputePipeline or creates a new one.
func (e *Executor) getOrCreatePipeline(name string, shader *wgpu.ShaderModule) *wgpu.ComputePipeline {
	e.mu.RLock()
	if pipeline, exists := e.pipelines[name]; exists {
		e.mu.RUnlock()
		return pipeline
	}
	e.mu.RUnlock()

	// Auto layout (nil layout)
	pipeline := e.device.CreateComputePipelineSimple(nil, shader, "main")

	e.mu.Lock()
	e.pipelines[name] = pipeline
	e.mu.Unlock()

	return pipeline
}

// createBuffer creates a GPU buffer initialized with data.
func (e *Executor) createBuffer(data []byte, usage wgpu.BufferUsage) *wgpu.Buffer {
	size := uint64(len(data))

	buffer := e.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage:            usage,
		Size:             size,
		MappedAtCreation: wgpu.True,
	})

	mappedPtr := buffer.GetMappedRange(0, size)
	//nolint:gosec // unsafe.Slice for zero-copy conversion from unsafe.Pointer
	copy(unsafe.Slice((*byte)(mappedPtr), size), data)
	buffer.Unmap()

	return buffer
}

// createOutputBuffer allocates an uninitialized storage buffer of size bytes.
func (e *Executor) createOutputBuffer(size uint64) *wgpu.Buffer {
	return e.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage: wgpu.BufferUsageStorage | wgpu.BufferUsageCopySrc | wgpu.BufferUsageCopyDst,
		Size:  size,
	})
}

// createParams creates a 16-byte aligned uniform buffer holding up to four u32 values.
func (e *Executor) createParams(values ...uint32) *wgpu.Buffer {
	params := make([]byte, 16)
	for i, v := range values {
		binary.LittleEndian.PutUint32(params[i*4:(i+1)*4], v)
	}
	return e.createBuffer(params, wgpu.BufferUsageUniform|wgpu.BufferUsageCopyDst)
}

// readBuffer copies a GPU buffer into dst through a staging buffer.
func (e *Executor) readBuffer(src *wgpu.Buffer, dst []float32) error {
	size := uint64(len(dst) * 4)

	staging := e.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage: wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst,
		Size:  size,
	})
	defer staging.Release()

	encoder := e.device.CreateCommandEncoder(nil)
	encoder.CopyBufferToBuffer(src, 0, staging, 0, size)
	e.queue.Submit(encoder.Finish(nil))

	if err := staging.MapAsync(e.device, wgpu.MapModeRead, 0, size); err != nil {
		return fmt.Errorf("webgpu: failed to map staging buffer: %w", err)
	}

	mappedPtr := staging.GetMappedRange(0, size)
	//nolint:gosec // unsafe.Slice for zero-copy conversion from unsafe.Pointer
	copy(float32Bytes(dst), unsafe.Slice((*byte)(mappedPtr), size))
	staging.Unmap()

	return nil
}

// dispatch runs pipeline name over entries with the given workgroup counts.
func (e *Executor) dispatch(name, code string, entries func(layout *wgpu.BindGroupLayout) *wgpu.BindGroup, x, y uint32) {
	pipeline := e.getOrCreatePipeline(name, e.compileShader(name, code))

	bindGroup := entries(pipeline.GetBindGroupLayout(0))
	defer bindGroup.Release()

	encoder := e.device.CreateCommandEncoder(nil)
	pass := encoder.BeginComputePass(nil)
	pass.SetPipeline(pipeline)
	pass.SetBindGroup(0, bindGroup, nil)
	pass.DispatchWorkgroups(x, y, 1)
	pass.End()

	e.queue.Submit(encoder.Finish(nil))
}

func (e *Executor) runBinary(name, code string, a, b, out []float32) error {
	if len(out) == 0 {
		return nil
	}
	size := uint64(len(out) * 4)

	bufA := e.createBuffer(float32Bytes(a), wgpu.BufferUsageStorage|wgpu.BufferUsageCopySrc)
	defer bufA.Release()
	bufB := e.createBuffer(float32Bytes(b), wgpu.BufferUsageStorage|wgpu.BufferUsageCopySrc)
	defer bufB.Release()
	bufOut := e.createOutputBuffer(size)
	defer bufOut.Release()
	//nolint:gosec // G115: element counts are non-negative and bounded by buffer limits
	params := e.createParams(uint32(len(out)))
	defer params.Release()

	e.dispatch(name, code, func(layout *wgpu.BindGroupLayout) *wgpu.BindGroup {
		return e.device.CreateBindGroupSimple(layout, []wgpu.BindGroupEntry{
			wgpu.BufferBindingEntry(0, bufA, 0, size),
			wgpu.BufferBindingEntry(1, bufB, 0, size),
			wgpu.BufferBindingEntry(2, bufOut, 0, size),
			wgpu.BufferBindingEntry(3, params, 0, 16),
		})
	}, workgroups(len(out), workgroupSize), 1)

	return e.readBuffer(bufOut, out)
}

func (e *Executor) runUnary(name, code string, in, out []float32) error {
	if len(out) == 0 {
		return nil
	}
	size := uint64(len(out) * 4)

	bufIn := e.createBuffer(float32Bytes(in), wgpu.BufferUsageStorage|wgpu.BufferUsageCopySrc)
	defer bufIn.Release()
	bufOut := e.createOutputBuffer(size)
	defer bufOut.Release()
	//nolint:gosec // G115: element counts are non-negative and bounded by buffer limits
	params := e.createParams(uint32(len(out)))
	defer params.Release()

	e.dispatch(name, code, func(layout *wgpu.BindGroupLayout) *wgpu.BindGroup {
		return e.device.CreateBindGroupSimple(layout, []wgpu.BindGroupEntry{
			wgpu.BufferBindingEntry(0, bufIn, 0, size),
			wgpu.BufferBindingEntry(1, bufOut, 0, size),
			wgpu.BufferBindingEntry(2, params, 0, 16),
		})
	}, workgroups(len(out), workgroupSize), 1)

	return e.readBuffer(bufOut, out)
}

func (e *Executor) runSoftmax(in, out []float32, rows, cols int) error {
	if len(out) == 0 {
		return nil
	}
	size := uint64(len(out) * 4)

	bufIn := e.createBuffer(float32Bytes(in), wgpu.BufferUsageStorage|wgpu.BufferUsageCopySrc)
	defer bufIn.Release()
	bufOut := e.createOutputBuffer(size)
	defer bufOut.Release()
	//nolint:gosec // G115: dimensions are non-negative
	params := e.createParams(uint32(rows), uint32(cols))
	defer params.Release()

	e.dispatch("softmax", softmaxShader, func(layout *wgpu.BindGroupLayout) *wgpu.BindGroup {
		return e.device.CreateBindGroupSimple(layout, []wgpu.BindGroupEntry{
			wgpu.BufferBindingEntry(0, bufIn, 0, size),
			wgpu.BufferBindingEntry(1, bufOut, 0, size),
			wgpu.BufferBindingEntry(2, params, 0, 16),
		})
	}, workgroups(rows, workgroupSize), 1)

	return e.readBuffer(bufOut, out)
}

func (e *Executor) runMatMul(a, b, out []float32, m, k, n int) error {
	if len(out) == 0 {
		return nil
	}
	if k == 0 {
		clear(out)
		return nil
	}

	bufA := e.createBuffer(float32Bytes(a), wgpu.BufferUsageStorage|wgpu.BufferUsageCopySrc)
	defer bufA.Release()
	bufB := e.createBuffer(float32Bytes(b), wgpu.BufferUsageStorage|wgpu.BufferUsageCopySrc)
	defer bufB.Release()
	outSize := uint64(len(out) * 4)
	bufOut := e.createOutputBuffer(outSize)
	defer bufOut.Release()
	//nolint:gosec // G115: matrix dimensions are non-negative
	params := e.createParams(uint32(m), uint32(k), uint32(n))
	defer params.Release()

	e.dispatch("matmul", matmulShader, func(layout *wgpu.BindGroupLayout) *wgpu.BindGroup {
		return e.device.CreateBindGroupSimple(layout, []wgpu.BindGroupEntry{
			wgpu.BufferBindingEntry(0, bufA, 0, uint64(len(a)*4)),
			wgpu.BufferBindingEntry(1, bufB, 0, uint64(len(b)*4)),
			wgpu.BufferBindingEntry(2, bufOut, 0, outSize),
			wgpu.BufferBindingEntry(3, params, 0, 16),
		})
	}, workgroups(n, 16), workgroups(m, 16))

	return e.readBuffer(bufOut, out)
}

// workgroups returns ceil(n / size).
func workgroups(n, size int) uint32 {
	//nolint:gosec // G115: workgroup count is non-negative
	return uint32((n + size - 1) / size)
}

// float32Bytes reinterprets a float32 slice as its little-endian bytes.
func float32Bytes(data []float32) []byte {
	if len(data) == 0 {
		return nil
	}
	//nolint:gosec // unsafe.Slice for zero-copy reinterpretation
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), len(data)*4)
}

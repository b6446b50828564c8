// Package webgpu implements the device-execution service with WGSL compute
// shaders through go-webgpu (github.com/go-webgpu/webgpu), a zero-CGO binding
// to wgpu-native.
//
// The GPU build is enabled on windows, where the native library ships with the
// binding; on other platforms New returns backend.ErrUnavailable and callers
// fall back to the CPU executor.
//
// Sum and dot reductions are not implemented on the GPU and report
// backend.ErrUnsupported.
package webgpu

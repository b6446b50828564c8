// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package webgpu provides the WebGPU executor for GPU-accelerated tensor
// operations.
//
// The executor is built on windows through go-webgpu; on other platforms New
// returns an error wrapping backend.ErrUnavailable.
//
// Example:
//
//	import (
//	    "github.com/born-ml/tensornet/backend/webgpu"
//	    "github.com/born-ml/tensornet/tensor"
//	)
//
//	func main() {
//	    gpu, err := webgpu.New()
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    defer gpu.Release()
//
//	    engine := tensor.NewEngine(gpu)
//	    y, err := engine.Matmul(a, b)
//	}
package webgpu

import (
	internalwebgpu "github.com/born-ml/tensornet/internal/backend/webgpu"
	"github.com/born-ml/tensornet/tensor"
)

// Executor runs tensor kernels as WGSL compute shaders.
type Executor = internalwebgpu.Executor

// Compile-time check that Executor implements tensor.Executor.
var _ tensor.Executor = (*Executor)(nil)

// New creates a new WebGPU executor.
//
// Call Release() when done to free GPU resources. Returns an error if no
// compatible adapter is present.
func New() (*Executor, error) {
	return internalwebgpu.New()
}

// IsAvailable reports whether a WebGPU adapter can be opened.
func IsAvailable() bool {
	return internalwebgpu.IsAvailable()
}

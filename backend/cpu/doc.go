// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides the pure Go CPU executor for tensor operations.
//
// # Overview
//
// This package implements a CPU executor with:
//   - Pure Go implementation (no CGO)
//   - gonum BLAS SGEMM for matrix multiplication
//   - Goroutine-parallel elementwise and row kernels
//   - SIMD feature reporting through golang.org/x/sys/cpu
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/tensornet/backend/cpu"
//	    "github.com/born-ml/tensornet/nn"
//	    "github.com/born-ml/tensornet/tensor"
//	)
//
//	func main() {
//	    exec := cpu.New()
//	    defer exec.Release()
//
//	    engine := tensor.NewEngine(exec)
//	    net, err := nn.NewTwoLayerNet(cfg, nn.WithEngine(engine))
//	}
//
// # Thread Safety
//
// The CPU executor holds no mutable state and is safe for concurrent use.
// Each kernel writes only its own output buffer.
package cpu

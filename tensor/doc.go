// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the public API for float32 N-dimensional arrays.
//
// Tensors are row-major, own their storage, and support NumPy-style
// broadcasting up to rank 3. Every derived tensor is a copy.
//
// Example:
//
//	a := tensor.Must(tensor.Ones(tensor.Shape{3, 1}))
//	b := tensor.Must(tensor.Ones(tensor.Shape{1, 4}))
//	c, err := tensor.Add(a, b) // shape [3 4]
//
// Operations can be routed to a compute device with an Engine:
//
//	exec := cpu.New()
//	defer exec.Release()
//	engine := tensor.NewEngine(exec)
//	y, err := engine.Matmul(x, w)
package tensor

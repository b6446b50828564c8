// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package cpu

import (
	internalcpu "github.com/born-ml/tensornet/internal/backend/cpu"
	"github.com/born-ml/tensornet/internal/parallel"
	"github.com/born-ml/tensornet/tensor"
)

// Executor runs tensor kernels on the host CPU.
type Executor = internalcpu.Executor

// Compile-time check that Executor implements tensor.Executor.
var _ tensor.Executor = (*Executor)(nil)

// ParallelConfig controls how elementwise and row kernels are split across
// goroutines.
type ParallelConfig = parallel.Config

// New creates a new CPU executor.
//
// Example:
//
//	import (
//	    "github.com/born-ml/tensornet/backend/cpu"
//	    "github.com/born-ml/tensornet/tensor"
//	)
//
//	func main() {
//	    exec := cpu.New()
//	    engine := tensor.NewEngine(exec)
//	    y, err := engine.Matmul(a, b)
//	}
func New() *Executor {
	return internalcpu.New()
}

// NewWithConfig creates a CPU executor with an explicit parallel configuration.
func NewWithConfig(cfg ParallelConfig) *Executor {
	return internalcpu.NewWithConfig(cfg)
}

// DefaultParallelConfig returns the configuration New uses.
func DefaultParallelConfig() ParallelConfig {
	return parallel.DefaultConfig()
}

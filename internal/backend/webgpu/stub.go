//go:build !windows

package webgpu

import (
	"fmt"
	"runtime"

	"github.com/born-ml/tensornet/internal/backend"
)

// Executor is unavailable on this platform; New always fails.
type Executor struct{}

var _ backend.Executor = (*Executor)(nil)

// New reports backend.ErrUnavailable: the WebGPU executor is built for windows only.
func New() (*Executor, error) {
	return nil, fmt.Errorf("%w: webgpu executor is not built for %s", backend.ErrUnavailable, runtime.GOOS)
}

// IsAvailable always returns false on this platform.
func IsAvailable() bool {
	return false
}

// Name returns the backend name.
func (e *Executor) Name() string {
	return "WebGPU"
}

// Release is a no-op.
func (e *Executor) Release() {}

// Run always fails with backend.ErrUnavailable.
func (e *Executor) Run(k backend.Kernel, _ backend.Launch) error {
	return fmt.Errorf("%w: %s", backend.ErrUnavailable, k)
}

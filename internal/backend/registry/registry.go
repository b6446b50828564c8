// Package registry opens device executors by name.
package registry

import (
	"fmt"
	"strings"

	"github.com/born-ml/tensornet/internal/backend"
	"github.com/born-ml/tensornet/internal/backend/cpu"
	"github.com/born-ml/tensornet/internal/backend/webgpu"
)

// Device names accepted by Open.
const (
	CPU    = "cpu"
	WebGPU = "webgpu"
	Auto   = "auto"
)

// Names lists the accepted device names.
func Names() []string {
	return []string{CPU, WebGPU, Auto}
}

// Open returns an executor for name. "auto" prefers WebGPU and falls back to
// the CPU when no adapter is available. Callers must Release the executor.
func Open(name string) (backend.Executor, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", CPU:
		return cpu.New(), nil
	case WebGPU:
		exec, err := webgpu.New()
		if err != nil {
			return nil, err
		}
		return exec, nil
	case Auto:
		if webgpu.IsAvailable() {
			if exec, err := webgpu.New(); err == nil {
				return exec, nil
			}
		}
		return cpu.New(), nil
	default:
		return nil, fmt.Errorf("%w: unknown device %q (want one of %s)",
			backend.ErrUnavailable, name, strings.Join(Names(), ", "))
	}
}

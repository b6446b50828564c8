//go:build !windows

package webgpu

import (
	"errors"
	"testing"

	"github.com/born-ml/tensornet/internal/backend"
)

func TestNew_UnavailableOffWindows(t *testing.T) {
	exec, err := New()
	if exec != nil {
		t.Fatal("expected nil executor")
	}
	if !errors.Is(err, backend.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if IsAvailable() {
		t.Error("IsAvailable should be false")
	}
}

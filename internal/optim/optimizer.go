// Package optim implements optimization algorithms for training the network.
//
// This package provides:
//   - Optimizer interface: applies a gradient map to a parameter table
//   - SGD: Stochastic Gradient Descent with momentum
//   - Adam: Adaptive Moment Estimation
//
// Parameters are updated in place. Because layers share their weight tensors
// with the table, the next forward pass sees the update.
//
// Example usage:
//
//	optimizer, err := optim.New(net.Params(), optim.Config{Kind: optim.KindAdam, LR: 0.001})
//
//	for step := range steps {
//	    grads, err := net.Gradient(xBatch, tBatch)
//	    if err := optimizer.Step(grads); err != nil { ... }
//	}
package optim

import (
	"fmt"

	"github.com/born-ml/tensornet/internal/nn"
	"github.com/born-ml/tensornet/internal/tensor"
)

// Optimizer is the base interface for all optimization algorithms.
type Optimizer interface {
	// Step applies one update to every parameter.
	//
	// grads must hold a gradient of matching shape for each parameter name.
	Step(grads nn.Grads) error

	// GetLR returns the current learning rate.
	GetLR() float32

	// SetLR updates the learning rate, e.g. for scheduling.
	SetLR(lr float32)
}

// Optimizer kinds accepted by New.
const (
	KindSGD  = "sgd"
	KindAdam = "adam"
)

// Config selects and configures an optimizer.
//
// Zero values take each optimizer's defaults.
type Config struct {
	Kind     string  `yaml:"kind"`     // "sgd" (default) or "adam"
	LR       float32 `yaml:"lr"`       // Learning rate
	Momentum float32 `yaml:"momentum"` // SGD only
	Beta1    float32 `yaml:"beta1"`    // Adam only
	Beta2    float32 `yaml:"beta2"`    // Adam only
	Eps      float32 `yaml:"eps"`      // Adam only
}

// New creates the optimizer described by cfg over params.
func New(params *nn.Params, cfg Config) (Optimizer, error) {
	if cfg.LR < 0 {
		return nil, fmt.Errorf("%w: learning rate %g must be >= 0", tensor.ErrInvalidArgument, cfg.LR)
	}
	switch cfg.Kind {
	case "", KindSGD:
		if cfg.Momentum < 0 || cfg.Momentum >= 1 {
			return nil, fmt.Errorf("%w: momentum %g must be in [0, 1)", tensor.ErrInvalidArgument, cfg.Momentum)
		}
		return NewSGD(params, SGDConfig{LR: cfg.LR, Momentum: cfg.Momentum}), nil
	case KindAdam:
		return NewAdam(params, AdamConfig{
			LR:    cfg.LR,
			Betas: [2]float32{cfg.Beta1, cfg.Beta2},
			Eps:   cfg.Eps,
		}), nil
	default:
		return nil, fmt.Errorf("%w: unknown optimizer %q (want %s or %s)", tensor.ErrInvalidArgument, cfg.Kind, KindSGD, KindAdam)
	}
}

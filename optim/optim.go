// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package optim

import (
	"github.com/born-ml/tensornet/internal/nn"
	"github.com/born-ml/tensornet/internal/optim"
)

// Optimizer interface defines the common interface for all optimizers.
type Optimizer = optim.Optimizer

// Config selects and configures an optimizer by kind.
type Config = optim.Config

// Optimizer kinds accepted by New.
const (
	KindSGD  = optim.KindSGD
	KindAdam = optim.KindAdam
)

// New creates the optimizer described by cfg.
func New(params *nn.Params, cfg Config) (Optimizer, error) {
	return optim.New(params, cfg)
}

// SGD (Stochastic Gradient Descent)

// SGD represents the SGD optimizer with optional momentum.
type SGD = optim.SGD

// SGDConfig contains configuration for SGD optimizer.
type SGDConfig = optim.SGDConfig

// NewSGD creates a new SGD optimizer.
//
// Example:
//
//	net, _ := nn.NewTwoLayerNet(nn.Config{InputSize: 784, HiddenSize: 50, OutputSize: 10})
//	optimizer := optim.NewSGD(net.Params(), optim.SGDConfig{
//	    LR:       0.01,
//	    Momentum: 0.9,
//	})
func NewSGD(params *nn.Params, config SGDConfig) *SGD {
	return optim.NewSGD(params, config)
}

// Adam (Adaptive Moment Estimation)

// Adam represents the Adam optimizer.
type Adam = optim.Adam

// AdamConfig contains configuration for Adam optimizer.
type AdamConfig = optim.AdamConfig

// NewAdam creates a new Adam optimizer with bias correction.
func NewAdam(params *nn.Params, config AdamConfig) *Adam {
	return optim.NewAdam(params, config)
}

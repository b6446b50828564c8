// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides optimizers that update a network's parameter table
// in place from a gradient map.
//
// # Available Optimizers
//
// SGD: Stochastic Gradient Descent with optional momentum
//
//	optimizer := optim.NewSGD(net.Params(), optim.SGDConfig{LR: 0.1, Momentum: 0.9})
//
// Adam: Adaptive Moment Estimation with bias correction
//
//	optimizer := optim.NewAdam(net.Params(), optim.AdamConfig{LR: 0.001})
//
// # Training Loop
//
//	for step := range steps {
//	    grads, err := net.Gradient(xBatch, tBatch)
//	    if err != nil {
//	        return err
//	    }
//	    if err := optimizer.Step(grads); err != nil {
//	        return err
//	    }
//	}
package optim

// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides neural network layers and the two-layer classifier.
//
// # Overview
//
// This package contains:
//   - Layers: Affine, ReLU, Sigmoid, SoftmaxWithLoss
//   - Loss functions: CrossEntropyError, MeanSquaredError
//   - Utilities: Sequential, Layer interface, Params
//   - Initialization: Normal, Xavier, He
//   - TwoLayerNet with analytic and numerical gradients
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/tensornet/nn"
//	    "github.com/born-ml/tensornet/optim"
//	)
//
//	func main() {
//	    net, err := nn.NewTwoLayerNet(nn.Config{InputSize: 784, HiddenSize: 50, OutputSize: 10})
//	    opt := optim.NewSGD(net.Params(), optim.SGDConfig{LR: 0.1})
//
//	    grads, err := net.Gradient(xBatch, tBatch)
//	    err = opt.Step(grads)
//	}
//
// # Layers
//
// Every layer caches what its backward pass needs during Forward. Calling
// Backward first fails with ErrBackwardBeforeForward.
//
// Parameters are shared by pointer between layers and the Params table, so
// in-place optimizer updates are seen by the next forward pass.
package nn

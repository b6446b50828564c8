// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"math/rand/v2"

	"github.com/born-ml/tensornet/internal/nn"
	"github.com/born-ml/tensornet/internal/tensor"
)

// ErrBackwardBeforeForward is returned by Backward when no forward pass has
// been cached.
var ErrBackwardBeforeForward = nn.ErrBackwardBeforeForward

// Layer is a differentiable stage with a forward and a backward pass.
type Layer = nn.Layer

// Params is an ordered table of named parameters.
type Params = nn.Params

// Grads maps parameter names to gradients.
type Grads = nn.Grads

// NewParams creates an empty parameter table.
func NewParams() *Params {
	return nn.NewParams()
}

// Layers

// Affine computes x @ W + b.
type Affine = nn.Affine

// NewAffine creates an affine layer sharing w [in, out] and b [out].
//
// Example:
//
//	w := tensor.Must(tensor.RandomNormal(tensor.Shape{784, 50}, 0, 0.01, nil))
//	b := tensor.Must(tensor.Zeros(tensor.Shape{50}))
//	layer, err := nn.NewAffine(w, b, nil)
func NewAffine(w, b *tensor.Tensor, engine *tensor.Engine) (*Affine, error) {
	return nn.NewAffine(w, b, engine)
}

// ReLU is the max(0, x) activation layer.
type ReLU = nn.ReLU

// NewReLU creates a ReLU layer. A nil engine runs natively.
func NewReLU(engine *tensor.Engine) *ReLU {
	return nn.NewReLU(engine)
}

// Sigmoid is the logistic activation layer.
type Sigmoid = nn.Sigmoid

// NewSigmoid creates a Sigmoid layer.
func NewSigmoid(engine *tensor.Engine) *Sigmoid {
	return nn.NewSigmoid(engine)
}

// SoftmaxWithLoss fuses softmax and cross-entropy.
type SoftmaxWithLoss = nn.SoftmaxWithLoss

// NewSoftmaxWithLoss creates the output layer.
func NewSoftmaxWithLoss(engine *tensor.Engine) *SoftmaxWithLoss {
	return nn.NewSoftmaxWithLoss(engine)
}

// Sequential runs named layers in order.
type Sequential = nn.Sequential

// NewSequential creates an empty layer stack.
func NewSequential() *Sequential {
	return nn.NewSequential()
}

// Loss functions

// CrossEntropyError returns the mean cross-entropy of probabilities y against
// one-hot or label targets t.
func CrossEntropyError(y, t *tensor.Tensor) (float32, error) {
	return nn.CrossEntropyError(y, t)
}

// MeanSquaredError returns 0.5 * sum((y - t)^2).
func MeanSquaredError(y, t *tensor.Tensor) (float32, error) {
	return nn.MeanSquaredError(y, t)
}

// Initialization

// Weight initialization schemes.
const (
	InitNormal = nn.InitNormal
	InitXavier = nn.InitXavier
	InitHe     = nn.InitHe
)

// DefaultWeightInitStd is the InitNormal standard deviation when none is set.
const DefaultWeightInitStd = nn.DefaultWeightInitStd

// NewWeight draws a [fanIn, fanOut] weight matrix.
func NewWeight(scheme string, std float64, fanIn, fanOut int, src rand.Source) (*tensor.Tensor, error) {
	return nn.NewWeight(scheme, std, fanIn, fanOut, src)
}

// Two-layer network

// Parameter names used by TwoLayerNet.
const (
	ParamW1 = nn.ParamW1
	ParamB1 = nn.ParamB1
	ParamW2 = nn.ParamW2
	ParamB2 = nn.ParamB2
)

// Config describes a TwoLayerNet.
type Config = nn.Config

// TwoLayerNet is Affine → ReLU → Affine → SoftmaxWithLoss.
type TwoLayerNet = nn.TwoLayerNet

// Option configures a TwoLayerNet.
type Option = nn.Option

// NewTwoLayerNet builds the network described by cfg.
func NewTwoLayerNet(cfg Config, opts ...Option) (*TwoLayerNet, error) {
	return nn.NewTwoLayerNet(cfg, opts...)
}

// WithEngine routes layer math through engine.
func WithEngine(engine *tensor.Engine) Option {
	return nn.WithEngine(engine)
}

// GradientDiff is the per-parameter result of GradientCheck.
type GradientDiff = nn.GradientDiff

// GradientCheck compares back-propagated and numerical gradients on one batch.
func GradientCheck(net *TwoLayerNet, x, t *tensor.Tensor) ([]GradientDiff, error) {
	return nn.GradientCheck(net, x, t)
}

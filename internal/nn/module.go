// Package nn implements the layer stack of a small feed-forward network.
//
// This package provides:
//   - Layer interface: forward/backward pair with memoized state
//   - Affine: x @ W + b with weights shared with a Params table
//   - Activations: ReLU, Sigmoid
//   - SoftmaxWithLoss: softmax followed by cross-entropy
//   - Sequential: ordered (name, Layer) container
//   - TwoLayerNet: Affine → ReLU → Affine → SoftmaxWithLoss with analytic
//     and numerical gradients
//
// Gradients are computed manually per layer. Every layer supports one Backward
// call after a Forward call; calling Backward first fails with
// ErrBackwardBeforeForward.
package nn

import (
	"errors"

	"github.com/born-ml/tensornet/internal/tensor"
)

// ErrBackwardBeforeForward is returned when a layer has no cached forward state.
var ErrBackwardBeforeForward = errors.New("nn: backward called before forward")

// Layer is a differentiable step of the network.
//
// Forward caches whatever Backward needs. Backward takes the gradient of the
// loss with respect to the layer output and returns the gradient with respect
// to its input.
type Layer interface {
	// Name returns the layer kind, e.g. "Affine".
	Name() string

	// Forward computes the layer output for x.
	Forward(x *tensor.Tensor) (*tensor.Tensor, error)

	// Backward propagates dout through the most recent Forward.
	Backward(dout *tensor.Tensor) (*tensor.Tensor, error)
}

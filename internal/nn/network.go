package nn

import (
	"fmt"
	"math/rand/v2"

	"github.com/born-ml/tensornet/internal/tensor"
)

// Parameter names used by TwoLayerNet.
const (
	ParamW1 = "W1"
	ParamB1 = "b1"
	ParamW2 = "W2"
	ParamB2 = "b2"
)

// NumericalGradientStep is the central-difference step h.
const NumericalGradientStep = 1e-4

// Config describes a TwoLayerNet.
type Config struct {
	InputSize  int `yaml:"input_size"`
	HiddenSize int `yaml:"hidden_size"`
	OutputSize int `yaml:"output_size"`

	// WeightInit selects the weight scheme: InitNormal (default), InitXavier or InitHe.
	WeightInit string `yaml:"weight_init"`

	// WeightInitStd is the standard deviation for InitNormal; 0 means
	// DefaultWeightInitStd.
	WeightInitStd float64 `yaml:"weight_init_std"`

	// Seed makes initialization reproducible. 0 draws a random seed.
	Seed uint64 `yaml:"seed"`
}

// Validate checks layer sizes and the init scheme.
func (c Config) Validate() error {
	if c.InputSize <= 0 || c.HiddenSize <= 0 || c.OutputSize <= 0 {
		return fmt.Errorf("%w: layer sizes must be positive, got input=%d hidden=%d output=%d",
			tensor.ErrInvalidArgument, c.InputSize, c.HiddenSize, c.OutputSize)
	}
	if c.WeightInitStd < 0 {
		return fmt.Errorf("%w: weight_init_std %g must be >= 0", tensor.ErrInvalidArgument, c.WeightInitStd)
	}
	_, err := initStd(c.WeightInit, c.WeightInitStd, c.InputSize)
	return err
}

// TwoLayerNet is Affine1 → Relu1 → Affine2 → SoftmaxWithLoss.
//
// Weights are drawn at construction and biases start at zero. All four
// parameters live in Params and are shared with the Affine layers, so callers
// update them in place between training steps (see internal/optim).
//
// Example:
//
//	net, err := nn.NewTwoLayerNet(nn.Config{InputSize: 784, HiddenSize: 50, OutputSize: 10})
//	grads, err := net.Gradient(xBatch, tBatch)
//	// apply grads to net.Params()
type TwoLayerNet struct {
	cfg       Config
	params    *Params
	layers    *Sequential
	lastLayer *SoftmaxWithLoss
	engine    *tensor.Engine
}

// Option configures a TwoLayerNet.
type Option func(*TwoLayerNet)

// WithEngine routes layer math through engine.
func WithEngine(engine *tensor.Engine) Option {
	return func(n *TwoLayerNet) {
		n.engine = engine
	}
}

// NewTwoLayerNet builds the network described by cfg.
func NewTwoLayerNet(cfg Config, opts ...Option) (*TwoLayerNet, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	n := &TwoLayerNet{cfg: cfg, params: NewParams()}
	for _, opt := range opts {
		opt(n)
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	src := rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)

	w1, err := NewWeight(cfg.WeightInit, cfg.WeightInitStd, cfg.InputSize, cfg.HiddenSize, src)
	if err != nil {
		return nil, err
	}
	b1 := tensor.Must(tensor.Zeros(tensor.Shape{cfg.HiddenSize}))
	w2, err := NewWeight(cfg.WeightInit, cfg.WeightInitStd, cfg.HiddenSize, cfg.OutputSize, src)
	if err != nil {
		return nil, err
	}
	b2 := tensor.Must(tensor.Zeros(tensor.Shape{cfg.OutputSize}))

	for _, p := range []struct {
		name string
		t    *tensor.Tensor
	}{{ParamW1, w1}, {ParamB1, b1}, {ParamW2, w2}, {ParamB2, b2}} {
		if err := n.params.Add(p.name, p.t); err != nil {
			return nil, err
		}
	}

	affine1, err := NewAffine(w1, b1, n.engine)
	if err != nil {
		return nil, err
	}
	affine2, err := NewAffine(w2, b2, n.engine)
	if err != nil {
		return nil, err
	}

	n.layers = NewSequential()
	n.layers.Add("Affine1", affine1)
	n.layers.Add("Relu1", NewReLU(n.engine))
	n.layers.Add("Affine2", affine2)
	n.lastLayer = NewSoftmaxWithLoss(n.engine)
	return n, nil
}

// Config returns the configuration the network was built with.
func (n *TwoLayerNet) Config() Config {
	return n.cfg
}

// Params returns the shared parameter table.
func (n *TwoLayerNet) Params() *Params {
	return n.params
}

// Layers returns the hidden layer stack (without the loss layer).
func (n *TwoLayerNet) Layers() *Sequential {
	return n.layers
}

// Predict returns the class scores (pre-softmax) for x [batch, input].
func (n *TwoLayerNet) Predict(x *tensor.Tensor) (*tensor.Tensor, error) {
	return n.layers.Forward(x)
}

// Loss returns the cross-entropy loss of x against targets t
// (one-hot [batch, output] or class indices [batch]).
func (n *TwoLayerNet) Loss(x, t *tensor.Tensor) (float32, error) {
	loss, err := n.loss(x, t)
	return float32(loss), err
}

func (n *TwoLayerNet) loss(x, t *tensor.Tensor) (float64, error) {
	y, err := n.Predict(x)
	if err != nil {
		return 0, err
	}
	return n.lastLayer.forward(y, t)
}

// Accuracy returns the fraction of rows whose highest score matches the target.
func (n *TwoLayerNet) Accuracy(x, t *tensor.Tensor) (float32, error) {
	y, err := n.Predict(x)
	if err != nil {
		return 0, err
	}
	if y.Rank() != 2 || y.Dim(0) == 0 {
		return 0, fmt.Errorf("%w: Accuracy needs a non-empty batch, got scores %v", tensor.ErrInvalidArgument, y.Shape())
	}
	predicted, err := tensor.Argmax(y)
	if err != nil {
		return 0, err
	}
	labels, err := targetLabels(y, t)
	if err != nil {
		return 0, err
	}

	correct := 0
	for i, p := range predicted {
		if p == labels[i] {
			correct++
		}
	}
	return float32(correct) / float32(len(predicted)), nil
}

// Gradient runs one forward pass and back-propagates the loss, returning
// gradients for W1, b1, W2 and b2.
func (n *TwoLayerNet) Gradient(x, t *tensor.Tensor) (Grads, error) {
	if _, err := n.loss(x, t); err != nil {
		return nil, err
	}

	dout, err := n.lastLayer.Backward(nil)
	if err != nil {
		return nil, err
	}
	if _, err := n.layers.Backward(dout); err != nil {
		return nil, err
	}

	affine1, affine2 := n.affine("Affine1"), n.affine("Affine2")
	return Grads{
		ParamW1: affine1.DW,
		ParamB1: affine1.DB,
		ParamW2: affine2.DW,
		ParamB2: affine2.DB,
	}, nil
}

// NumericalGradient estimates every parameter gradient by central differences:
//
//	(L(w + h) - L(w - h)) / 2h
//
// Each element is perturbed in place and restored. It needs two full forward
// passes per parameter element and exists to verify Gradient.
func (n *TwoLayerNet) NumericalGradient(x, t *tensor.Tensor) (Grads, error) {
	grads := make(Grads, n.params.Len())
	for _, name := range n.params.Names() {
		w, _ := n.params.Get(name)
		g := tensor.Must(tensor.Zeros(w.Shape()))
		wd, gd := w.Storage(), g.Storage()

		for i := range wd {
			orig := wd[i]
			plus := orig + NumericalGradientStep
			minus := orig - NumericalGradientStep

			wd[i] = plus
			lp, err := n.loss(x, t)
			if err != nil {
				wd[i] = orig
				return nil, err
			}
			wd[i] = minus
			lm, err := n.loss(x, t)
			wd[i] = orig
			if err != nil {
				return nil, err
			}

			// Divide by the step actually taken after float32 rounding.
			gd[i] = float32((lp - lm) / (float64(plus) - float64(minus)))
		}
		grads[name] = g
	}
	return grads, nil
}

func (n *TwoLayerNet) affine(name string) *Affine {
	l, _ := n.layers.Layer(name)
	return l.(*Affine)
}

package optim

import (
	"github.com/born-ml/tensornet/internal/nn"
	"github.com/born-ml/tensornet/internal/tensor"
)

// SGD implements Stochastic Gradient Descent optimizer with optional momentum.
//
// Update rule without momentum:
//
//	param = param - lr * gradient
//
// Update rule with momentum:
//
//	velocity = momentum * velocity + gradient
//	param = param - lr * velocity
//
// Example:
//
//	optimizer := optim.NewSGD(net.Params(), optim.SGDConfig{
//	    LR:       0.1,
//	    Momentum: 0.9,
//	})
type SGD struct {
	params     *nn.Params
	lr         float32
	momentum   float32
	velocities map[string]*tensor.Tensor
}

// SGDConfig holds configuration for SGD optimizer.
type SGDConfig struct {
	LR       float32 // Learning rate (default: 0.01)
	Momentum float32 // Momentum factor (default: 0.0, range: [0, 1))
}

// NewSGD creates a new SGD optimizer.
func NewSGD(params *nn.Params, config SGDConfig) *SGD {
	if config.LR == 0 {
		config.LR = 0.01
	}
	return &SGD{
		params:     params,
		lr:         config.LR,
		momentum:   config.Momentum,
		velocities: make(map[string]*tensor.Tensor),
	}
}

// Step performs a single optimization step.
func (s *SGD) Step(grads nn.Grads) error {
	if err := s.params.Check(grads); err != nil {
		return err
	}

	s.params.Each(func(name string, param *tensor.Tensor) {
		p, g := param.Storage(), grads[name].Storage()

		if s.momentum == 0 {
			for i := range p {
				p[i] -= s.lr * g[i]
			}
			return
		}

		vel, ok := s.velocities[name]
		if !ok {
			vel = tensor.Must(tensor.Zeros(param.Shape()))
			s.velocities[name] = vel
		}
		v := vel.Storage()
		for i := range p {
			v[i] = s.momentum*v[i] + g[i]
			p[i] -= s.lr * v[i]
		}
	})
	return nil
}

// GetLR returns the current learning rate.
func (s *SGD) GetLR() float32 {
	return s.lr
}

// SetLR updates the learning rate.
func (s *SGD) SetLR(lr float32) {
	s.lr = lr
}

package optim

import (
	"math"

	"github.com/born-ml/tensornet/internal/nn"
	"github.com/born-ml/tensornet/internal/tensor"
)

// Adam implements the Adam optimizer (Kingma & Ba, 2014).
//
// Update rule:
//
//	m = beta1 * m + (1 - beta1) * grad
//	v = beta2 * v + (1 - beta2) * grad²
//	m_hat = m / (1 - beta1^t)
//	v_hat = v / (1 - beta2^t)
//	param = param - lr * m_hat / (sqrt(v_hat) + eps)
//
// Example:
//
//	optimizer := optim.NewAdam(net.Params(), optim.AdamConfig{LR: 0.001})
type Adam struct {
	params *nn.Params
	lr     float32
	beta1  float32
	beta2  float32
	eps    float32
	t      int                       // Timestep for bias correction
	m      map[string]*tensor.Tensor // First moment estimates
	v      map[string]*tensor.Tensor // Second moment estimates
}

// AdamConfig holds configuration for Adam optimizer.
type AdamConfig struct {
	LR    float32    // Learning rate (default: 0.001)
	Betas [2]float32 // Coefficients for computing running averages (default: [0.9, 0.999])
	Eps   float32    // Term for numerical stability (default: 1e-8)
}

// NewAdam creates a new Adam optimizer.
//
// Default hyperparameters:
//   - LR: 0.001
//   - Beta1: 0.9
//   - Beta2: 0.999
//   - Eps: 1e-8
func NewAdam(params *nn.Params, config AdamConfig) *Adam {
	if config.LR == 0 {
		config.LR = 0.001
	}
	if config.Betas[0] == 0 {
		config.Betas[0] = 0.9
	}
	if config.Betas[1] == 0 {
		config.Betas[1] = 0.999
	}
	if config.Eps == 0 {
		config.Eps = 1e-8
	}

	return &Adam{
		params: params,
		lr:     config.LR,
		beta1:  config.Betas[0],
		beta2:  config.Betas[1],
		eps:    config.Eps,
		m:      make(map[string]*tensor.Tensor),
		v:      make(map[string]*tensor.Tensor),
	}
}

// Step performs a single optimization step.
func (a *Adam) Step(grads nn.Grads) error {
	if err := a.params.Check(grads); err != nil {
		return err
	}

	a.t++
	biasCorrection1 := float32(1.0 - math.Pow(float64(a.beta1), float64(a.t)))
	biasCorrection2 := float32(1.0 - math.Pow(float64(a.beta2), float64(a.t)))

	a.params.Each(func(name string, param *tensor.Tensor) {
		m, ok := a.m[name]
		if !ok {
			m = tensor.Must(tensor.Zeros(param.Shape()))
			a.m[name] = m
		}
		v, ok := a.v[name]
		if !ok {
			v = tensor.Must(tensor.Zeros(param.Shape()))
			a.v[name] = v
		}

		p, g := param.Storage(), grads[name].Storage()
		md, vd := m.Storage(), v.Storage()
		for i := range p {
			md[i] = a.beta1*md[i] + (1-a.beta1)*g[i]
			vd[i] = a.beta2*vd[i] + (1-a.beta2)*g[i]*g[i]

			mHat := md[i] / biasCorrection1
			vHat := vd[i] / biasCorrection2
			p[i] -= a.lr * mHat / (float32(math.Sqrt(float64(vHat))) + a.eps)
		}
	})
	return nil
}

// GetLR returns the current learning rate.
func (a *Adam) GetLR() float32 {
	return a.lr
}

// SetLR updates the learning rate.
func (a *Adam) SetLR(lr float32) {
	a.lr = lr
}

// GetTimestep returns the number of steps taken.
func (a *Adam) GetTimestep() int {
	return a.t
}

package optim_test

import (
	"math"
	"testing"

	"github.com/born-ml/tensornet/internal/nn"
	"github.com/born-ml/tensornet/internal/optim"
	"github.com/born-ml/tensornet/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Helper to check float equality with tolerance.
func floatEqual(a, b, eps float32) bool {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return diff < eps
}

// scalarParams returns a table with a single parameter "x" = [value].
func scalarParams(t *testing.T, value float32) (*nn.Params, *tensor.Tensor) {
	t.Helper()
	x := tensor.Must(tensor.FromArray([]float32{value}, tensor.Shape{1}))
	params := nn.NewParams()
	require.NoError(t, params.Add("x", x))
	return params, x
}

func grad(value float32) nn.Grads {
	return nn.Grads{"x": tensor.Must(tensor.FromArray([]float32{value}, tensor.Shape{1}))}
}

// TestSGD_SimpleUpdate tests SGD without momentum.
func TestSGD_SimpleUpdate(t *testing.T) {
	params, x := scalarParams(t, 2.0)
	optimizer := optim.NewSGD(params, optim.SGDConfig{LR: 0.1})

	require.NoError(t, optimizer.Step(grad(1.0)))

	// Expected: x_new = x_old - lr * grad = 2.0 - 0.1 * 1.0 = 1.9
	if actual := x.Storage()[0]; !floatEqual(actual, 1.9, 1e-6) {
		t.Errorf("SGD update: got %f, want %f", actual, 1.9)
	}
}

// TestSGD_WithMomentum tests SGD with momentum.
func TestSGD_WithMomentum(t *testing.T) {
	params, x := scalarParams(t, 1.0)
	optimizer := optim.NewSGD(params, optim.SGDConfig{LR: 0.1, Momentum: 0.9})

	// Step 1: v = 1.0, x = 1.0 - 0.1 = 0.9
	require.NoError(t, optimizer.Step(grad(1.0)))
	if actual := x.Storage()[0]; !floatEqual(actual, 0.9, 1e-6) {
		t.Errorf("step 1: got %f, want 0.9", actual)
	}

	// Step 2: v = 0.9 + 1.0 = 1.9, x = 0.9 - 0.19 = 0.71
	require.NoError(t, optimizer.Step(grad(1.0)))
	if actual := x.Storage()[0]; !floatEqual(actual, 0.71, 1e-6) {
		t.Errorf("step 2: got %f, want 0.71", actual)
	}
}

func TestSGD_GetSetLR(t *testing.T) {
	params, _ := scalarParams(t, 0)
	optimizer := optim.NewSGD(params, optim.SGDConfig{})
	assert.Equal(t, float32(0.01), optimizer.GetLR())
	optimizer.SetLR(0.5)
	assert.Equal(t, float32(0.5), optimizer.GetLR())
}

// TestAdam_SimpleUpdate checks the first step moves by about lr.
func TestAdam_SimpleUpdate(t *testing.T) {
	params, x := scalarParams(t, 1.0)
	optimizer := optim.NewAdam(params, optim.AdamConfig{LR: 0.1})

	require.NoError(t, optimizer.Step(grad(0.5)))

	// After bias correction m_hat = g and v_hat = g², so the step is lr * sign(g).
	if actual := x.Storage()[0]; !floatEqual(actual, 0.9, 1e-5) {
		t.Errorf("Adam update: got %f, want 0.9", actual)
	}
	assert.Equal(t, 1, optimizer.GetTimestep())
}

func TestAdam_Defaults(t *testing.T) {
	params, _ := scalarParams(t, 0)
	optimizer := optim.NewAdam(params, optim.AdamConfig{})
	assert.Equal(t, float32(0.001), optimizer.GetLR())
}

func TestStep_RejectsBadGradients(t *testing.T) {
	params, x := scalarParams(t, 1.0)
	for _, opt := range []optim.Optimizer{
		optim.NewSGD(params, optim.SGDConfig{LR: 0.1}),
		optim.NewAdam(params, optim.AdamConfig{LR: 0.1}),
	} {
		assert.ErrorIs(t, opt.Step(nn.Grads{}), tensor.ErrInvalidArgument)
		assert.ErrorIs(t, opt.Step(nn.Grads{"x": tensor.Must(tensor.Ones(tensor.Shape{2}))}), tensor.ErrInvalidArgument)
	}
	assert.Equal(t, float32(1.0), x.Storage()[0], "failed steps must not touch parameters")
}

func TestConvergence_SimpleQuadratic(t *testing.T) {
	// f(x) = x², df/dx = 2x
	run := func(t *testing.T, opt optim.Optimizer, x *tensor.Tensor) {
		for i := 0; i < 100; i++ {
			require.NoError(t, opt.Step(grad(2*x.Storage()[0])))
		}
		if final := x.Storage()[0]; math.Abs(float64(final)) > 0.1 {
			t.Errorf("convergence: x = %f, expected close to 0", final)
		}
	}

	t.Run("SGD", func(t *testing.T) {
		params, x := scalarParams(t, 3.0)
		run(t, optim.NewSGD(params, optim.SGDConfig{LR: 0.1, Momentum: 0.9}), x)
	})

	t.Run("Adam", func(t *testing.T) {
		params, x := scalarParams(t, 3.0)
		run(t, optim.NewAdam(params, optim.AdamConfig{LR: 0.1, Betas: [2]float32{0.9, 0.999}, Eps: 1e-8}), x)
	})
}

func TestNew(t *testing.T) {
	params, _ := scalarParams(t, 0)

	sgd, err := optim.New(params, optim.Config{LR: 0.2, Momentum: 0.5})
	require.NoError(t, err)
	assert.IsType(t, &optim.SGD{}, sgd)
	assert.Equal(t, float32(0.2), sgd.GetLR())

	adam, err := optim.New(params, optim.Config{Kind: optim.KindAdam})
	require.NoError(t, err)
	assert.IsType(t, &optim.Adam{}, adam)

	for _, cfg := range []optim.Config{
		{Kind: "rmsprop"},
		{LR: -1},
		{Momentum: 1},
	} {
		_, err := optim.New(params, cfg)
		assert.ErrorIs(t, err, tensor.ErrInvalidArgument, "%+v", cfg)
	}
}

// TestTrainsTwoLayerNet checks that SGD on the shared parameter table lowers the loss.
func TestTrainsTwoLayerNet(t *testing.T) {
	net, err := nn.NewTwoLayerNet(nn.Config{InputSize: 2, HiddenSize: 8, OutputSize: 2, WeightInitStd: 0.5, Seed: 7})
	require.NoError(t, err)

	x := tensor.Must(tensor.FromRows([][]float32{{0, 0}, {0, 1}, {1, 0}, {1, 1}}))
	labels := tensor.Must(tensor.FromArray([]float32{0, 1, 1, 1}, tensor.Shape{4}))

	before, err := net.Loss(x, labels)
	require.NoError(t, err)

	optimizer := optim.NewSGD(net.Params(), optim.SGDConfig{LR: 0.5, Momentum: 0.5})
	for i := 0; i < 200; i++ {
		grads, err := net.Gradient(x, labels)
		require.NoError(t, err)
		require.NoError(t, optimizer.Step(grads))
	}

	after, err := net.Loss(x, labels)
	require.NoError(t, err)
	assert.Less(t, after, before)
}

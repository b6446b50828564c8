package nn

import (
	"math"
	"testing"

	"github.com/born-ml/tensornet/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustRows(t *testing.T, rows [][]float32) *tensor.Tensor {
	t.Helper()
	x, err := tensor.FromRows(rows)
	require.NoError(t, err)
	return x
}

func TestAffine_ForwardBackward(t *testing.T) {
	w := mustRows(t, [][]float32{{1, 2}, {3, 4}, {5, 6}})
	b := tensor.Must(tensor.FromArray([]float32{0.5, -0.5}, tensor.Shape{2}))
	layer, err := NewAffine(w, b, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, layer.InFeatures())
	assert.Equal(t, 2, layer.OutFeatures())

	x := mustRows(t, [][]float32{{1, 0, 0}, {0, 1, 1}})
	y, err := layer.Forward(x)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{2, 2}, y.Shape())
	assert.Equal(t, []float32{1.5, 1.5, 8.5, 9.5}, y.Storage())

	dout := tensor.Must(tensor.Ones(tensor.Shape{2, 2}))
	dx, err := layer.Backward(dout)
	require.NoError(t, err)

	// dX = dOut @ Wᵀ
	assert.Equal(t, tensor.Shape{2, 3}, dx.Shape())
	assert.Equal(t, []float32{3, 7, 11, 3, 7, 11}, dx.Storage())
	// dW = xᵀ @ dOut
	assert.Equal(t, []float32{1, 1, 1, 1, 1, 1}, layer.DW.Storage())
	// db = Σ dOut over the batch
	assert.Equal(t, []float32{2, 2}, layer.DB.Storage())
}

func TestAffine_OwnsForwardInput(t *testing.T) {
	layer, err := NewAffine(tensor.Must(tensor.Ones(tensor.Shape{2, 2})), tensor.Must(tensor.Zeros(tensor.Shape{2})), nil)
	require.NoError(t, err)

	x := mustRows(t, [][]float32{{1, 2}})
	_, err = layer.Forward(x)
	require.NoError(t, err)
	x.Storage()[0] = 100

	_, err = layer.Backward(tensor.Must(tensor.Ones(tensor.Shape{1, 2})))
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 1, 2, 2}, layer.DW.Storage())
}

func TestAffine_Rank3(t *testing.T) {
	w := mustRows(t, [][]float32{{1, 0}, {0, 1}})
	b := tensor.Must(tensor.FromArray([]float32{1, 1}, tensor.Shape{2}))
	layer, err := NewAffine(w, b, nil)
	require.NoError(t, err)

	x := tensor.Must(tensor.FromArray([]float32{1, 2, 3, 4, 5, 6, 7, 8}, tensor.Shape{2, 2, 2}))
	y, err := layer.Forward(x)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{2, 2, 2}, y.Shape())
	assert.Equal(t, []float32{2, 3, 4, 5, 6, 7, 8, 9}, y.Storage())

	dx, err := layer.Backward(tensor.Must(tensor.Ones(tensor.Shape{2, 2, 2})))
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{2, 2, 2}, dx.Shape())
	// db sums over batch and sequence axes.
	assert.Equal(t, []float32{4, 4}, layer.DB.Storage())
	// dW sums xᵀ @ dOut over the batch.
	assert.Equal(t, []float32{16, 16, 20, 20}, layer.DW.Storage())
}

func TestAffine_SharesParameters(t *testing.T) {
	w := tensor.Must(tensor.Zeros(tensor.Shape{2, 1}))
	b := tensor.Must(tensor.Zeros(tensor.Shape{1}))
	layer, err := NewAffine(w, b, nil)
	require.NoError(t, err)

	w.Storage()[0] = 3 // in-place update, as an optimizer would do
	y, err := layer.Forward(mustRows(t, [][]float32{{2, 0}}))
	require.NoError(t, err)
	assert.Equal(t, []float32{6}, y.Storage())
}

func TestAffine_Errors(t *testing.T) {
	_, err := NewAffine(tensor.Must(tensor.Zeros(tensor.Shape{3})), tensor.Must(tensor.Zeros(tensor.Shape{3})), nil)
	assert.ErrorIs(t, err, tensor.ErrInvalidArgument)

	_, err = NewAffine(tensor.Must(tensor.Zeros(tensor.Shape{3, 2})), tensor.Must(tensor.Zeros(tensor.Shape{3})), nil)
	assert.ErrorIs(t, err, tensor.ErrInvalidArgument)

	layer, err := NewAffine(tensor.Must(tensor.Zeros(tensor.Shape{3, 2})), tensor.Must(tensor.Zeros(tensor.Shape{2})), nil)
	require.NoError(t, err)

	_, err = layer.Backward(tensor.Must(tensor.Ones(tensor.Shape{1, 2})))
	assert.ErrorIs(t, err, ErrBackwardBeforeForward)

	_, err = layer.Forward(tensor.Must(tensor.Ones(tensor.Shape{1, 4})))
	assert.ErrorIs(t, err, tensor.ErrInvalidArgument)

	_, err = layer.Forward(tensor.Must(tensor.Ones(tensor.Shape{3})))
	assert.ErrorIs(t, err, tensor.ErrInvalidArgument)

	_, err = layer.Forward(tensor.Must(tensor.Ones(tensor.Shape{1, 3})))
	require.NoError(t, err)
	_, err = layer.Backward(tensor.Must(tensor.Ones(tensor.Shape{2, 2})))
	assert.ErrorIs(t, err, tensor.ErrInvalidArgument)
}

func TestReLU_Layer(t *testing.T) {
	r := NewReLU(nil)
	assert.Equal(t, "ReLU", r.Name())

	_, err := r.Backward(tensor.Must(tensor.Ones(tensor.Shape{3})))
	assert.ErrorIs(t, err, ErrBackwardBeforeForward)

	x := tensor.Must(tensor.FromArray([]float32{-1, 0, 2}, tensor.Shape{3}))
	y, err := r.Forward(x)
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 0, 2}, y.Storage())

	dout := tensor.Must(tensor.FromArray([]float32{5, 6, 7}, tensor.Shape{3}))
	dx, err := r.Backward(dout)
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 0, 7}, dx.Storage())

	_, err = r.Backward(tensor.Must(tensor.Ones(tensor.Shape{2})))
	assert.ErrorIs(t, err, tensor.ErrInvalidArgument)
}

func TestSigmoid_Layer(t *testing.T) {
	s := NewSigmoid(nil)
	_, err := s.Backward(tensor.Must(tensor.Ones(tensor.Shape{1})))
	assert.ErrorIs(t, err, ErrBackwardBeforeForward)

	x := tensor.Must(tensor.FromArray([]float32{0, 2}, tensor.Shape{2}))
	y, err := s.Forward(x)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, y.Storage()[0], 1e-6)

	dx, err := s.Backward(tensor.Must(tensor.Ones(tensor.Shape{2})))
	require.NoError(t, err)
	assert.InDelta(t, 0.25, dx.Storage()[0], 1e-6)
	sig2 := 1 / (1 + math.Exp(-2))
	assert.InDelta(t, sig2*(1-sig2), dx.Storage()[1], 1e-5)
}

func TestSequential(t *testing.T) {
	w := mustRows(t, [][]float32{{1, -1}})
	b := tensor.Must(tensor.Zeros(tensor.Shape{2}))
	affine, err := NewAffine(w, b, nil)
	require.NoError(t, err)

	seq := NewSequential()
	seq.Add("Affine1", affine)
	seq.Add("Relu1", NewReLU(nil))
	assert.Equal(t, []string{"Affine1", "Relu1"}, seq.Names())
	assert.Equal(t, 2, seq.Len())

	l, ok := seq.Layer("Relu1")
	require.True(t, ok)
	assert.Equal(t, "ReLU", l.Name())
	_, ok = seq.Layer("missing")
	assert.False(t, ok)

	_, err = seq.Backward(tensor.Must(tensor.Ones(tensor.Shape{1, 2})))
	assert.ErrorIs(t, err, ErrBackwardBeforeForward)
	assert.Contains(t, err.Error(), "Relu1")

	y, err := seq.Forward(mustRows(t, [][]float32{{2}}))
	require.NoError(t, err)
	assert.Equal(t, []float32{2, 0}, y.Storage())

	dx, err := seq.Backward(tensor.Must(tensor.Ones(tensor.Shape{1, 2})))
	require.NoError(t, err)
	assert.Equal(t, []float32{1}, dx.Storage())
}

func TestParams(t *testing.T) {
	p := NewParams()
	w := tensor.Must(tensor.Zeros(tensor.Shape{2, 3}))
	b := tensor.Must(tensor.Zeros(tensor.Shape{3}))
	require.NoError(t, p.Add("W", w))
	require.NoError(t, p.Add("b", b))
	assert.ErrorIs(t, p.Add("W", b), tensor.ErrInvalidArgument)
	assert.ErrorIs(t, p.Add("nil", nil), tensor.ErrInvalidArgument)

	got, ok := p.Get("W")
	require.True(t, ok)
	assert.Same(t, w, got)
	assert.Equal(t, []string{"W", "b"}, p.Names())
	assert.Equal(t, 2, p.Len())
	assert.Equal(t, 9, p.NumElements())

	var visited []string
	p.Each(func(name string, _ *tensor.Tensor) { visited = append(visited, name) })
	assert.Equal(t, []string{"W", "b"}, visited)

	assert.NoError(t, p.Check(Grads{"W": w.Clone(), "b": b.Clone()}))
	assert.ErrorIs(t, p.Check(Grads{"W": w.Clone()}), tensor.ErrInvalidArgument)
	assert.ErrorIs(t, p.Check(Grads{"W": b.Clone(), "b": b.Clone()}), tensor.ErrInvalidArgument)
}

func TestNewWeight(t *testing.T) {
	w, err := NewWeight(InitHe, 0, 8, 4, nil)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{8, 4}, w.Shape())

	_, err = NewWeight("orthogonal", 0, 8, 4, nil)
	assert.ErrorIs(t, err, tensor.ErrInvalidArgument)

	std, err := initStd(InitNormal, 0, 8)
	require.NoError(t, err)
	assert.Equal(t, DefaultWeightInitStd, std)
}

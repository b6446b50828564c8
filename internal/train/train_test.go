package train

import (
	"bytes"
	"context"
	"log/slog"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	"github.com/born-ml/tensornet/internal/config"
	"github.com/born-ml/tensornet/internal/dataset"
	"github.com/born-ml/tensornet/internal/nn"
	"github.com/born-ml/tensornet/internal/optim"
	"github.com/born-ml/tensornet/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func blobs(t *testing.T, samples int) *dataset.Dataset {
	t.Helper()
	d, err := dataset.Blobs(dataset.BlobsConfig{Samples: samples, Features: 2, Classes: 3, Radius: 3, Spread: 0.3}, rand.NewPCG(1, 2))
	require.NoError(t, err)
	return d
}

func newNet(t *testing.T) *nn.TwoLayerNet {
	t.Helper()
	net, err := nn.NewTwoLayerNet(nn.Config{InputSize: 2, HiddenSize: 16, OutputSize: 3, WeightInitStd: 0.1, Seed: 3})
	require.NoError(t, err)
	return net
}

func TestTrainer_LearnsBlobs(t *testing.T) {
	data := blobs(t, 300)
	train, test, err := data.Split(0.2, rand.NewPCG(4, 5))
	require.NoError(t, err)

	net := newNet(t)
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	tr, err := New(net, optim.NewSGD(net.Params(), optim.SGDConfig{LR: 0.1, Momentum: 0.9}), train,
		Options{Iterations: 300, BatchSize: 32, EvalInterval: 100, Seed: 6},
		WithLogger(logger), WithTestSet(test))
	require.NoError(t, err)

	h, err := tr.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, h.Losses, 300)
	require.Len(t, h.Evals, 3)
	assert.Equal(t, []int{100, 200, 300}, []int{h.Evals[0].Iteration, h.Evals[1].Iteration, h.Evals[2].Iteration})
	assert.Less(t, h.FinalLoss(), h.Losses[0])

	last := h.Evals[len(h.Evals)-1]
	assert.Greater(t, last.TrainAcc, float32(0.9))
	assert.Greater(t, last.TestAcc, float32(0.9))
	assert.Positive(t, h.Duration)

	assert.Contains(t, logs.String(), "training started")
	assert.Contains(t, logs.String(), "train_acc=")
	assert.NotContains(t, logs.String(), "msg=step", "debug records are filtered at the default level")
}

func TestTrainer_EpochInterval(t *testing.T) {
	data := blobs(t, 40)
	net := newNet(t)
	tr, err := New(net, optim.NewSGD(net.Params(), optim.SGDConfig{}), data, Options{Iterations: 9, BatchSize: 10, Seed: 1})
	require.NoError(t, err)

	h, err := tr.Run(context.Background())
	require.NoError(t, err)
	// 4 iterations per epoch plus the final one.
	require.Len(t, h.Evals, 3)
	assert.Equal(t, 4, h.Evals[0].Iteration)
	assert.Equal(t, 1, h.Evals[0].Epoch)
	assert.Equal(t, 9, h.Evals[2].Iteration)
	assert.Zero(t, h.Evals[0].TestAcc)
}

func TestTrainer_Cancelled(t *testing.T) {
	data := blobs(t, 30)
	net := newNet(t)
	tr, err := New(net, optim.NewSGD(net.Params(), optim.SGDConfig{}), data, Options{Iterations: 10, BatchSize: 5})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	h, err := tr.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, h.Losses)
	assert.Zero(t, h.FinalLoss())
}

func TestNew_Errors(t *testing.T) {
	data := blobs(t, 30)
	net := newNet(t)
	opt := optim.NewSGD(net.Params(), optim.SGDConfig{})

	_, err := New(nil, opt, data, Options{Iterations: 1, BatchSize: 1})
	assert.ErrorIs(t, err, tensor.ErrInvalidArgument)
	_, err = New(net, opt, data, Options{Iterations: 0, BatchSize: 1})
	assert.ErrorIs(t, err, tensor.ErrInvalidArgument)

	wide, err := dataset.Blobs(dataset.BlobsConfig{Samples: 10, Features: 5, Classes: 3}, nil)
	require.NoError(t, err)
	_, err = New(net, opt, wide, Options{Iterations: 1, BatchSize: 1})
	assert.ErrorIs(t, err, tensor.ErrInvalidArgument)
	_, err = New(net, opt, data, Options{Iterations: 1, BatchSize: 1}, WithTestSet(wide))
	assert.ErrorIs(t, err, tensor.ErrInvalidArgument)
}

func TestSession_Default(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Training.Iterations = 50
	cfg.Training.Seed = 9
	cfg.Model.Seed = 9

	s, err := NewSession(cfg, nil)
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, 480, s.Train.Len())
	require.NotNil(t, s.Test)
	assert.Equal(t, 120, s.Test.Len())
	assert.Equal(t, "CPU", s.Engine.Executor().Name())
	assert.Equal(t, tensor.EpsilonDivision, s.Engine.DivisionPolicy())

	tr, err := s.Trainer(cfg.Training, nil)
	require.NoError(t, err)
	h, err := tr.Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, h.Losses, 50)

	s.Close()
	s.Close()
}

func TestSession_DivisionPolicyReachesEngine(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Division = tensor.IEEEDivision.String()

	s, err := NewSession(cfg, nil)
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, tensor.IEEEDivision, s.Engine.DivisionPolicy())

	one := tensor.Must(tensor.Ones(tensor.Shape{1}))
	q, err := s.Engine.Div(one, tensor.Must(tensor.Zeros(tensor.Shape{1})))
	require.NoError(t, err)
	assert.True(t, math.IsInf(float64(q.Storage()[0]), 1))
}

func TestSession_Errors(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Device = "tpu"
	_, err := NewSession(cfg, nil)
	assert.ErrorIs(t, err, tensor.ErrInvalidArgument)

	cfg = config.DefaultConfig()
	cfg.Data.Source = config.SourceCSV
	cfg.Data.Path = "/nonexistent/train.csv"
	_, err = NewSession(cfg, nil)
	assert.ErrorIs(t, err, tensor.ErrIO)
}

func TestLoadData_NoTestRatio(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Training.TestRatio = 0
	train, test, err := LoadData(cfg)
	require.NoError(t, err)
	assert.Nil(t, test)
	assert.Equal(t, cfg.Data.Blobs.Samples, train.Len())
}

func TestLoadData_Text(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reviews.csv")
	require.NoError(t, os.WriteFile(path, []byte("label,text\n1,good film\n0,bad film\n1,good plot\n0,bad plot\n1,good cast\n"), 0o600))

	cfg := config.DefaultConfig()
	cfg.Data = config.Data{Source: config.SourceText, Path: path, Classes: 2, Header: true, Tokenizer: config.TokenizerWords, Width: 8}
	cfg.Model.InputSize = cfg.Data.Features()
	cfg.Model.OutputSize = 2
	cfg.Training.TestRatio = 0.4

	s, err := NewSession(cfg, nil)
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, 3, s.Train.Len())
	assert.Equal(t, 2, s.Test.Len())
	assert.Equal(t, 8, s.Train.Features())
}

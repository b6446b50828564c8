// Package train runs minibatch training of a TwoLayerNet.
package train

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/born-ml/tensornet/internal/dataset"
	"github.com/born-ml/tensornet/internal/nn"
	"github.com/born-ml/tensornet/internal/optim"
	"github.com/born-ml/tensornet/internal/tensor"
)

// Options controls the training loop.
type Options struct {
	Iterations int
	BatchSize  int

	// EvalInterval is the number of iterations between accuracy checks.
	// 0 evaluates once per epoch (train size / batch size iterations).
	EvalInterval int

	// Seed makes batch sampling reproducible. 0 draws a random seed.
	Seed uint64
}

// Eval is one accuracy measurement.
type Eval struct {
	Iteration int
	Epoch     int
	TrainAcc  float32
	TestAcc   float32 // 0 when there is no test set
}

// History records a finished run.
type History struct {
	Losses   []float32 // minibatch loss after each update
	Evals    []Eval
	Duration time.Duration
}

// FinalLoss returns the last recorded loss, or 0 for an empty history.
func (h *History) FinalLoss() float32 {
	if len(h.Losses) == 0 {
		return 0
	}
	return h.Losses[len(h.Losses)-1]
}

// Trainer samples minibatches, back-propagates and steps the optimizer.
type Trainer struct {
	net    *nn.TwoLayerNet
	opt    optim.Optimizer
	train  *dataset.Dataset
	test   *dataset.Dataset
	opts   Options
	logger *slog.Logger
	src    rand.Source
}

// Option configures a Trainer.
type Option func(*Trainer)

// WithLogger sets the logger for progress reports. The default discards them.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Trainer) {
		t.logger = logger
	}
}

// WithTestSet evaluates accuracy on test alongside the training set.
func WithTestSet(test *dataset.Dataset) Option {
	return func(t *Trainer) {
		t.test = test
	}
}

// New creates a trainer for net over the train dataset.
func New(net *nn.TwoLayerNet, opt optim.Optimizer, train *dataset.Dataset, opts Options, options ...Option) (*Trainer, error) {
	if net == nil || opt == nil || train == nil {
		return nil, fmt.Errorf("%w: trainer needs a network, an optimizer and a dataset", tensor.ErrInvalidArgument)
	}
	if opts.Iterations <= 0 || opts.BatchSize <= 0 || opts.EvalInterval < 0 {
		return nil, fmt.Errorf("%w: iterations=%d batch_size=%d eval_interval=%d",
			tensor.ErrInvalidArgument, opts.Iterations, opts.BatchSize, opts.EvalInterval)
	}

	t := &Trainer{
		net:    net,
		opt:    opt,
		train:  train,
		opts:   opts,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, o := range options {
		o(t)
	}
	if err := t.checkShapes(train); err != nil {
		return nil, fmt.Errorf("train set: %w", err)
	}
	if t.test != nil {
		if err := t.checkShapes(t.test); err != nil {
			return nil, fmt.Errorf("test set: %w", err)
		}
	}

	seed := opts.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	t.src = rand.NewPCG(seed, seed+1)
	return t, nil
}

func (t *Trainer) checkShapes(d *dataset.Dataset) error {
	cfg := t.net.Config()
	if d.Features() != cfg.InputSize || d.Classes() != cfg.OutputSize {
		return fmt.Errorf("%w: dataset has %d features and %d classes, network expects %d and %d",
			tensor.ErrInvalidArgument, d.Features(), d.Classes(), cfg.InputSize, cfg.OutputSize)
	}
	if d.Len() == 0 {
		return fmt.Errorf("%w: empty dataset", tensor.ErrInvalidArgument)
	}
	return nil
}

// Run trains for the configured number of iterations. It stops early with the
// context's error when ctx is done, returning the history so far.
func (t *Trainer) Run(ctx context.Context) (*History, error) {
	batch := min(t.opts.BatchSize, t.train.Len())
	perEpoch := max(t.train.Len()/batch, 1)
	interval := t.opts.EvalInterval
	if interval == 0 {
		interval = perEpoch
	}

	start := time.Now()
	h := &History{Losses: make([]float32, 0, t.opts.Iterations)}
	defer func() { h.Duration = time.Since(start) }()

	t.logger.Info("training started",
		"examples", t.train.Len(),
		"batch_size", batch,
		"iterations", t.opts.Iterations,
		"params", t.net.Params().NumElements(),
		"lr", t.opt.GetLR())

	for i := 1; i <= t.opts.Iterations; i++ {
		if err := ctx.Err(); err != nil {
			return h, err
		}

		loss, err := t.step(batch)
		if err != nil {
			return h, fmt.Errorf("iteration %d: %w", i, err)
		}
		h.Losses = append(h.Losses, loss)

		if i%interval == 0 || i == t.opts.Iterations {
			ev, err := t.evaluate(i, i/perEpoch)
			if err != nil {
				return h, fmt.Errorf("iteration %d: %w", i, err)
			}
			h.Evals = append(h.Evals, ev)
			t.logger.Info("evaluation",
				"iteration", ev.Iteration,
				"epoch", ev.Epoch,
				"loss", loss,
				"train_acc", ev.TrainAcc,
				"test_acc", ev.TestAcc)
		} else {
			t.logger.Debug("step", "iteration", i, "loss", loss)
		}
	}

	t.logger.Info("training finished", "loss", h.FinalLoss(), "elapsed", time.Since(start))
	return h, nil
}

// step applies one minibatch update and returns the loss after it.
func (t *Trainer) step(batch int) (float32, error) {
	x, target, err := t.train.Sample(batch, t.src)
	if err != nil {
		return 0, err
	}
	grads, err := t.net.Gradient(x, target)
	if err != nil {
		return 0, err
	}
	if err := t.opt.Step(grads); err != nil {
		return 0, err
	}
	return t.net.Loss(x, target)
}

func (t *Trainer) evaluate(iteration, epoch int) (Eval, error) {
	ev := Eval{Iteration: iteration, Epoch: epoch}
	var err error
	if ev.TrainAcc, err = t.net.Accuracy(t.train.X, t.train.T); err != nil {
		return ev, err
	}
	if t.test != nil {
		if ev.TestAcc, err = t.net.Accuracy(t.test.X, t.test.T); err != nil {
			return ev, err
		}
	}
	return ev, nil
}

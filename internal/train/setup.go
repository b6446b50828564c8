package train

import (
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/born-ml/tensornet/internal/backend"
	"github.com/born-ml/tensornet/internal/backend/registry"
	"github.com/born-ml/tensornet/internal/config"
	"github.com/born-ml/tensornet/internal/dataset"
	"github.com/born-ml/tensornet/internal/nn"
	"github.com/born-ml/tensornet/internal/optim"
	"github.com/born-ml/tensornet/internal/tensor"
	"github.com/born-ml/tensornet/internal/tokenizer"
)

// Session bundles everything a configured run needs.
// Close releases the device executor.
type Session struct {
	Net       *nn.TwoLayerNet
	Optimizer optim.Optimizer
	Train     *dataset.Dataset
	Test      *dataset.Dataset // nil when test_ratio is 0 and the source has no split
	Engine    *tensor.Engine
	exec      backend.Executor
}

// Close releases the executor. It is safe to call more than once.
func (s *Session) Close() {
	if s.exec != nil {
		s.exec.Release()
		s.exec = nil
	}
}

// NewSession loads data, opens the device and builds the network and
// optimizer described by cfg.
func NewSession(cfg config.Config, logger *slog.Logger) (*Session, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	train, test, err := LoadData(cfg)
	if err != nil {
		return nil, err
	}
	logger.Info("data loaded", "source", cfg.Data.Source, "train", train.Len(), "test", lenOf(test),
		"features", train.Features(), "classes", train.Classes())

	policy, err := tensor.ParseDivisionPolicy(cfg.Division)
	if err != nil {
		return nil, err
	}
	exec, err := registry.Open(cfg.Device)
	if err != nil {
		return nil, err
	}
	logger.Info("device opened", "requested", cfg.Device, "executor", exec.Name())

	s := &Session{Train: train, Test: test, exec: exec}
	s.Engine = tensor.NewEngine(exec, tensor.WithDivisionPolicy(policy))
	if s.Net, err = nn.NewTwoLayerNet(cfg.Model, nn.WithEngine(s.Engine)); err != nil {
		s.Close()
		return nil, err
	}
	if s.Optimizer, err = optim.New(s.Net.Params(), cfg.Optimizer); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// Trainer returns a trainer for the session using cfg.Training.
func (s *Session) Trainer(cfg config.Training, logger *slog.Logger) (*Trainer, error) {
	opts := []Option{}
	if logger != nil {
		opts = append(opts, WithLogger(logger))
	}
	if s.Test != nil {
		opts = append(opts, WithTestSet(s.Test))
	}
	return New(s.Net, s.Optimizer, s.Train, Options{
		Iterations:   cfg.Iterations,
		BatchSize:    cfg.BatchSize,
		EvalInterval: cfg.EvalInterval,
		Seed:         cfg.Seed,
	}, opts...)
}

// LoadData reads the train and test sets for cfg. Sources without a
// dedicated test split are split by cfg.Training.TestRatio.
func LoadData(cfg config.Config) (train, test *dataset.Dataset, err error) {
	d := cfg.Data
	var all *dataset.Dataset
	switch d.Source {
	case config.SourceMNIST:
		if train, err = dataset.LoadMNIST(d.Path, true, d.MaxSamples); err != nil {
			return nil, nil, err
		}
		if test, err = dataset.LoadMNIST(d.Path, false, d.MaxSamples); err != nil {
			return nil, nil, err
		}
		return train, test, nil
	case config.SourceCSV:
		all, err = dataset.LoadCSV(d.Path, dataset.CSVOptions{
			LabelColumn: d.LabelColumn,
			Classes:     d.Classes,
			Header:      d.Header,
			Scale:       d.Scale,
			MaxSamples:  d.MaxSamples,
		})
	case config.SourceBlobs:
		all, err = dataset.Blobs(d.Blobs, seededSource(cfg.Training.Seed))
	case config.SourceText:
		var f *dataset.TextFeaturizer
		if f, err = newFeaturizer(d); err != nil {
			return nil, nil, err
		}
		all, err = dataset.LoadText(d.Path, f, d.Classes, d.Header)
	default:
		err = fmt.Errorf("%w: unknown data source %q", tensor.ErrInvalidArgument, d.Source)
	}
	if err != nil {
		return nil, nil, err
	}

	if cfg.Training.TestRatio == 0 {
		return all, nil, nil
	}
	return all.Split(cfg.Training.TestRatio, seededSource(cfg.Training.Seed))
}

func newFeaturizer(d config.Data) (*dataset.TextFeaturizer, error) {
	var (
		tok tokenizer.Tokenizer
		err error
	)
	if d.Tokenizer == config.TokenizerWords {
		tok, err = tokenizer.NewWords(d.Width)
	} else {
		tok, err = tokenizer.NewTikToken(d.Tokenizer)
	}
	if err != nil {
		return nil, err
	}
	return dataset.NewTextFeaturizer(tok, d.Width)
}

func seededSource(seed uint64) rand.Source {
	if seed == 0 {
		return nil
	}
	return rand.NewPCG(seed, ^seed)
}

func lenOf(d *dataset.Dataset) int {
	if d == nil {
		return 0
	}
	return d.Len()
}

// Package config loads training runs from YAML files.
//
// A run file looks like:
//
//	device: auto
//	division: epsilon
//	model:
//	  input_size: 784
//	  hidden_size: 50
//	  output_size: 10
//	optimizer:
//	  kind: sgd
//	  lr: 0.1
//	training:
//	  iterations: 10000
//	  batch_size: 100
//	  eval_interval: 600
//	data:
//	  source: csv
//	  path: data/mnist_train.csv
//	  header: true
//	  scale: 0.00392156862
//
// Fields left out keep the values from DefaultConfig.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/born-ml/tensornet/internal/backend/registry"
	"github.com/born-ml/tensornet/internal/dataset"
	"github.com/born-ml/tensornet/internal/nn"
	"github.com/born-ml/tensornet/internal/optim"
	"github.com/born-ml/tensornet/internal/tensor"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

// Data sources.
const (
	SourceCSV   = "csv"
	SourceMNIST = "mnist"
	SourceBlobs = "blobs"
	SourceText  = "text"
)

// TokenizerWords selects the offline hashing tokenizer for text data. Any
// other value names a tiktoken encoding such as "cl100k_base".
const TokenizerWords = "words"

// Config is a complete training run.
//
// Division sets the policy of the session engine's Div. The training loop
// itself only divides by positive batch sizes, where the policies agree, so
// the key matters to callers that divide through Session.Engine.
type Config struct {
	Device    string       `yaml:"device"`
	Division  string       `yaml:"division"`
	Model     nn.Config    `yaml:"model"`
	Optimizer optim.Config `yaml:"optimizer"`
	Training  Training     `yaml:"training"`
	Data      Data         `yaml:"data"`
}

// Training controls the iteration loop.
type Training struct {
	Iterations   int     `yaml:"iterations"`
	BatchSize    int     `yaml:"batch_size"`
	EvalInterval int     `yaml:"eval_interval"` // 0 evaluates once per epoch
	TestRatio    float64 `yaml:"test_ratio"`    // held-out share when the source has no test split
	Seed         uint64  `yaml:"seed"`          // batch sampling seed; 0 is random
}

// Data selects where examples come from.
type Data struct {
	Source      string              `yaml:"source"`
	Path        string              `yaml:"path"`         // CSV file or MNIST IDX directory
	LabelColumn int                 `yaml:"label_column"` // csv only
	Classes     int                 `yaml:"classes"`      // csv and text
	Header      bool                `yaml:"header"`       // csv and text
	Scale       float32             `yaml:"scale"`        // csv only
	MaxSamples  int                 `yaml:"max_samples"`
	Blobs       dataset.BlobsConfig `yaml:"blobs"`
	Tokenizer   string              `yaml:"tokenizer"` // text only
	Width       int                 `yaml:"width"`     // text only: feature columns
}

// DefaultConfig returns a small run on synthetic blobs that needs no files.
func DefaultConfig() Config {
	return Config{
		Device:   registry.CPU,
		Division: tensor.EpsilonDivision.String(),
		Model: nn.Config{
			InputSize:  2,
			HiddenSize: 16,
			OutputSize: 3,
			WeightInit: nn.InitNormal,
		},
		Optimizer: optim.Config{Kind: optim.KindSGD, LR: 0.1},
		Training: Training{
			Iterations: 1000,
			BatchSize:  32,
			TestRatio:  0.2,
		},
		Data: Data{
			Source:    SourceBlobs,
			Classes:   10,
			Scale:     1,
			Tokenizer: TokenizerWords,
			Width:     256,
			Blobs: dataset.BlobsConfig{
				Samples:  600,
				Features: 2,
				Classes:  3,
				Radius:   3,
				Spread:   0.5,
			},
		},
	}
}

// Load reads path over DefaultConfig and validates the result.
func Load(path string) (Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: failed to open %s: %w", tensor.ErrIO, path, err)
	}
	defer file.Close()

	cfg, err := Read(file)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Read decodes YAML from r over DefaultConfig and validates the result.
// Unknown keys are rejected.
func Read(r io.Reader) (Config, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %w", tensor.ErrIO, err)
	}

	cfg := DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("%w: %w", tensor.ErrParse, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Marshal encodes cfg as YAML.
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// Validate checks every section.
func (c Config) Validate() error {
	if !lo.Contains(registry.Names(), c.Device) {
		return fmt.Errorf("%w: unknown device %q", tensor.ErrInvalidArgument, c.Device)
	}
	if _, err := tensor.ParseDivisionPolicy(c.Division); err != nil {
		return err
	}
	if err := c.Model.Validate(); err != nil {
		return fmt.Errorf("model: %w", err)
	}
	if c.Optimizer.LR < 0 {
		return fmt.Errorf("%w: optimizer: lr %g must be >= 0", tensor.ErrInvalidArgument, c.Optimizer.LR)
	}
	if c.Training.Iterations <= 0 || c.Training.BatchSize <= 0 || c.Training.EvalInterval < 0 {
		return fmt.Errorf("%w: training: iterations and batch_size must be positive, eval_interval >= 0",
			tensor.ErrInvalidArgument)
	}
	if c.Training.TestRatio < 0 || c.Training.TestRatio >= 1 {
		return fmt.Errorf("%w: training: test_ratio %g must be in [0, 1)", tensor.ErrInvalidArgument, c.Training.TestRatio)
	}
	return c.Data.validate()
}

func (d Data) validate() error {
	switch d.Source {
	case SourceCSV:
		if d.Path == "" {
			return fmt.Errorf("%w: data: csv source needs a path", tensor.ErrInvalidArgument)
		}
		if d.Classes <= 0 {
			return fmt.Errorf("%w: data: classes must be positive", tensor.ErrInvalidArgument)
		}
	case SourceMNIST:
		if d.Path == "" {
			return fmt.Errorf("%w: data: mnist source needs a directory", tensor.ErrInvalidArgument)
		}
	case SourceText:
		if d.Path == "" || d.Classes <= 0 || d.Width <= 0 {
			return fmt.Errorf("%w: data: text source needs a path, positive classes and width", tensor.ErrInvalidArgument)
		}
		if d.Tokenizer == "" {
			return fmt.Errorf("%w: data: text source needs a tokenizer", tensor.ErrInvalidArgument)
		}
	case SourceBlobs:
	default:
		return fmt.Errorf("%w: data: unknown source %q", tensor.ErrInvalidArgument, d.Source)
	}
	if d.MaxSamples < 0 {
		return fmt.Errorf("%w: data: max_samples must be >= 0", tensor.ErrInvalidArgument)
	}
	return nil
}

// Features returns the input width the data source produces, or 0 when it is
// only known after loading.
func (d Data) Features() int {
	switch d.Source {
	case SourceMNIST:
		return 28 * 28
	case SourceBlobs:
		return d.Blobs.Features
	case SourceText:
		return d.Width
	}
	return 0
}

package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/born-ml/tensornet/internal/config"
	"github.com/born-ml/tensornet/internal/train"
	"github.com/spf13/cobra"
)

type trainFlags struct {
	config     string
	device     string
	division   string
	data       string
	iterations int
	batchSize  int
	lr         float32
	optimizer  string
	hidden     int
	seed       uint64
	dump       bool
}

func newTrainCmd(logger func() *slog.Logger) *cobra.Command {
	var f trainFlags

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train a two-layer network",
		Long: `Train a two-layer network.

Settings come from --config (YAML) over the built-in defaults, which train on
synthetic Gaussian blobs. Flags override both.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := f.resolve(cmd)
			if err != nil {
				return err
			}
			if f.dump {
				raw, err := cfg.Marshal()
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(raw)
				return err
			}

			log := logger()
			s, err := train.NewSession(cfg, log)
			if err != nil {
				return err
			}
			defer s.Close()

			tr, err := s.Trainer(cfg.Training, log)
			if err != nil {
				return err
			}
			h, err := tr.Run(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "final loss: %.4f (%d iterations in %s)\n", h.FinalLoss(), len(h.Losses), h.Duration)
			if n := len(h.Evals); n > 0 {
				last := h.Evals[n-1]
				fmt.Fprintf(out, "train acc: %.4f\n", last.TrainAcc)
				if s.Test != nil {
					fmt.Fprintf(out, "test acc:  %.4f\n", last.TestAcc)
				}
			}
			return nil
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.config, "config", "c", "", "YAML run file")
	fl.StringVar(&f.device, "device", "", "device: cpu, webgpu or auto")
	fl.StringVar(&f.division, "division", "", "division policy of the session engine: epsilon or ieee")
	fl.StringVar(&f.data, "data", "", "CSV file or MNIST directory (source is inferred)")
	fl.IntVarP(&f.iterations, "iterations", "n", 0, "training iterations")
	fl.IntVarP(&f.batchSize, "batch-size", "b", 0, "minibatch size")
	fl.Float32Var(&f.lr, "lr", 0, "learning rate")
	fl.StringVar(&f.optimizer, "optimizer", "", "optimizer: sgd or adam")
	fl.IntVar(&f.hidden, "hidden", 0, "hidden layer width")
	fl.Uint64Var(&f.seed, "seed", 0, "seed for weights and batch sampling")
	fl.BoolVar(&f.dump, "dump-config", false, "print the resolved configuration and exit")
	return cmd
}

// resolve layers the config file and any changed flags over the defaults.
func (f *trainFlags) resolve(cmd *cobra.Command) (config.Config, error) {
	cfg := config.DefaultConfig()
	if f.config != "" {
		var err error
		if cfg, err = config.Load(f.config); err != nil {
			return cfg, err
		}
	}

	changed := cmd.Flags().Changed
	if changed("device") {
		cfg.Device = f.device
	}
	if changed("division") {
		cfg.Division = f.division
	}
	if changed("data") {
		info, err := os.Stat(f.data)
		if err != nil {
			return cfg, fmt.Errorf("--data: %w", err)
		}
		cfg.Data.Path = f.data
		if info.IsDir() {
			cfg.Data.Source = config.SourceMNIST
			cfg.Model.InputSize = cfg.Data.Features()
			cfg.Model.OutputSize = 10
		} else {
			cfg.Data.Source = config.SourceCSV
		}
	}
	if changed("iterations") {
		cfg.Training.Iterations = f.iterations
	}
	if changed("batch-size") {
		cfg.Training.BatchSize = f.batchSize
	}
	if changed("lr") {
		cfg.Optimizer.LR = f.lr
	}
	if changed("optimizer") {
		cfg.Optimizer.Kind = f.optimizer
	}
	if changed("hidden") {
		cfg.Model.HiddenSize = f.hidden
	}
	if changed("seed") {
		cfg.Model.Seed = f.seed
		cfg.Training.Seed = f.seed
	}
	return cfg, cfg.Validate()
}

package main

import (
	"fmt"
	"math/rand/v2"
	"text/tabwriter"

	"github.com/born-ml/tensornet/internal/dataset"
	"github.com/born-ml/tensornet/internal/nn"
	"github.com/spf13/cobra"
)

func newGradcheckCmd() *cobra.Command {
	var (
		cfg       = nn.Config{InputSize: 784, HiddenSize: 50, OutputSize: 10, WeightInitStd: 0.01, Seed: 1}
		batch     int
		tolerance float64
	)

	cmd := &cobra.Command{
		Use:   "gradcheck",
		Short: "Compare back-propagated gradients with central differences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			net, err := nn.NewTwoLayerNet(cfg)
			if err != nil {
				return err
			}
			data, err := dataset.Blobs(dataset.BlobsConfig{
				Samples:  batch,
				Features: cfg.InputSize,
				Classes:  cfg.OutputSize,
				Spread:   1,
			}, rand.NewPCG(cfg.Seed, cfg.Seed+1))
			if err != nil {
				return err
			}

			diffs, err := nn.GradientCheck(net, data.X, data.T)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "PARAM\tMAX ABS DIFF\tMEAN ABS DIFF")
			failed := 0
			for _, d := range diffs {
				fmt.Fprintf(w, "%s\t%.3e\t%.3e\n", d.Name, d.MaxAbs, d.MeanAbs)
				if d.MaxAbs > tolerance {
					failed++
				}
			}
			if err := w.Flush(); err != nil {
				return err
			}
			if failed > 0 {
				return fmt.Errorf("%d parameter(s) differ by more than %g", failed, tolerance)
			}
			return nil
		},
	}

	fl := cmd.Flags()
	fl.IntVar(&cfg.InputSize, "input", cfg.InputSize, "input features")
	fl.IntVar(&cfg.HiddenSize, "hidden", cfg.HiddenSize, "hidden layer width")
	fl.IntVar(&cfg.OutputSize, "output", cfg.OutputSize, "output classes")
	fl.Float64Var(&cfg.WeightInitStd, "std", cfg.WeightInitStd, "weight init standard deviation")
	fl.Uint64Var(&cfg.Seed, "seed", cfg.Seed, "seed for weights and data")
	fl.IntVar(&batch, "batch", 3, "examples in the check batch")
	fl.Float64Var(&tolerance, "tolerance", 1e-2, "largest accepted absolute difference")
	return cmd
}

package dataset

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/born-ml/tensornet/internal/tensor"
	"gonum.org/v1/gonum/stat/distuv"
)

// BlobsConfig describes a synthetic classification problem: one Gaussian
// cluster per class, centred evenly on a circle in the first two features.
type BlobsConfig struct {
	Samples  int     `yaml:"samples"`
	Features int     `yaml:"features"`
	Classes  int     `yaml:"classes"`
	Radius   float64 `yaml:"radius"`
	Spread   float64 `yaml:"spread"`
}

// Blobs generates a labelled dataset of Gaussian clusters.
// Classes are assigned round-robin so every class has the same share.
func Blobs(cfg BlobsConfig, src rand.Source) (*Dataset, error) {
	switch {
	case cfg.Samples <= 0:
		return nil, fmt.Errorf("%w: blobs need a positive sample count, got %d", tensor.ErrInvalidArgument, cfg.Samples)
	case cfg.Features < 2:
		return nil, fmt.Errorf("%w: blobs need at least 2 features, got %d", tensor.ErrInvalidArgument, cfg.Features)
	case cfg.Classes < 2:
		return nil, fmt.Errorf("%w: blobs need at least 2 classes, got %d", tensor.ErrInvalidArgument, cfg.Classes)
	case cfg.Spread < 0:
		return nil, fmt.Errorf("%w: negative spread %g", tensor.ErrInvalidArgument, cfg.Spread)
	}
	if cfg.Radius == 0 {
		cfg.Radius = 3
	}
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	noise := distuv.Normal{Mu: 0, Sigma: cfg.Spread, Src: src}

	x, err := tensor.New(cfg.Samples, cfg.Features)
	if err != nil {
		return nil, err
	}
	data := x.Storage()
	labels := make([]int, cfg.Samples)
	for i := range labels {
		class := i % cfg.Classes
		labels[i] = class

		angle := 2 * math.Pi * float64(class) / float64(cfg.Classes)
		row := data[i*cfg.Features : (i+1)*cfg.Features]
		for j := range row {
			var centre float64
			switch j {
			case 0:
				centre = cfg.Radius * math.Cos(angle)
			case 1:
				centre = cfg.Radius * math.Sin(angle)
			}
			if cfg.Spread > 0 {
				centre += noise.Rand()
			}
			row[j] = float32(centre)
		}
	}
	return FromLabels(x, labels, cfg.Classes)
}

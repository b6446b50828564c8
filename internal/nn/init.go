package nn

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/born-ml/tensornet/internal/tensor"
)

// Weight initialization schemes accepted by Config.WeightInit.
const (
	InitNormal = "normal" // N(0, WeightInitStd²)
	InitXavier = "xavier" // N(0, 1/fanIn), suited to sigmoid
	InitHe     = "he"     // N(0, 2/fanIn), suited to ReLU
)

// DefaultWeightInitStd is the standard deviation used by InitNormal when
// Config.WeightInitStd is zero.
const DefaultWeightInitStd = 0.01

// initStd returns the standard deviation for a [fanIn, fanOut] weight.
func initStd(scheme string, std float64, fanIn int) (float64, error) {
	switch scheme {
	case "", InitNormal:
		if std == 0 {
			return DefaultWeightInitStd, nil
		}
		return std, nil
	case InitXavier:
		return math.Sqrt(1 / float64(max(fanIn, 1))), nil
	case InitHe:
		return math.Sqrt(2 / float64(max(fanIn, 1))), nil
	default:
		return 0, fmt.Errorf("%w: unknown weight init %q (want %s, %s or %s)",
			tensor.ErrInvalidArgument, scheme, InitNormal, InitXavier, InitHe)
	}
}

// NewWeight draws a [fanIn, fanOut] weight matrix for the given scheme.
func NewWeight(scheme string, std float64, fanIn, fanOut int, src rand.Source) (*tensor.Tensor, error) {
	sigma, err := initStd(scheme, std, fanIn)
	if err != nil {
		return nil, err
	}
	return tensor.RandomNormal(tensor.Shape{fanIn, fanOut}, 0, sigma, src)
}

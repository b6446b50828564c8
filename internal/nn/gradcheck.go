package nn

import (
	"math"

	"github.com/born-ml/tensornet/internal/tensor"
)

// GradientDiff is the per-parameter result of a gradient check.
type GradientDiff struct {
	Name    string
	MaxAbs  float64 // largest |analytic - numerical| over all elements
	MeanAbs float64
}

// GradientCheck compares Gradient against NumericalGradient on one batch.
// Results follow parameter order.
func GradientCheck(net *TwoLayerNet, x, t *tensor.Tensor) ([]GradientDiff, error) {
	numerical, err := net.NumericalGradient(x, t)
	if err != nil {
		return nil, err
	}
	analytic, err := net.Gradient(x, t)
	if err != nil {
		return nil, err
	}
	if err := net.Params().Check(analytic); err != nil {
		return nil, err
	}

	diffs := make([]GradientDiff, 0, net.Params().Len())
	for _, name := range net.Params().Names() {
		a, b := analytic[name].Storage(), numerical[name].Storage()
		d := GradientDiff{Name: name}
		for i := range a {
			abs := math.Abs(float64(a[i]) - float64(b[i]))
			d.MaxAbs = max(d.MaxAbs, abs)
			d.MeanAbs += abs
		}
		if len(a) > 0 {
			d.MeanAbs /= float64(len(a))
		}
		diffs = append(diffs, d)
	}
	return diffs, nil
}

package nn

import (
	"fmt"
	"math"

	"github.com/born-ml/tensornet/internal/tensor"
)

// crossEntropyDelta keeps log away from zero probabilities.
const crossEntropyDelta = 1e-7

// CrossEntropyError computes the mean cross-entropy of predictions y against
// targets t.
//
// y is a probability vector [classes] or a batch [batch, classes]. t is either
// one-hot with the same number of elements as y, or one class index per
// sample. The loss is
//
//	-Σ log(y[i, label_i] + 1e-7) / batch
func CrossEntropyError(y, t *tensor.Tensor) (float32, error) {
	loss, err := crossEntropy(y, t)
	return float32(loss), err
}

// crossEntropy is CrossEntropyError accumulated in float64.
func crossEntropy(y, t *tensor.Tensor) (float64, error) {
	labels, err := targetLabels(y, t)
	if err != nil {
		return 0, err
	}
	classes := y.Dim(-1)
	data := y.Storage()

	var sum float64
	for i, label := range labels {
		sum += math.Log(float64(data[i*classes+label]) + crossEntropyDelta)
	}
	return -sum / float64(len(labels)), nil
}

// targetLabels resolves t into one class index per row of y.
//
// When t has as many elements as y it is treated as one-hot and each row's
// argmax is the label; otherwise t must hold one integral class index per row.
func targetLabels(y, t *tensor.Tensor) ([]int, error) {
	if y.Rank() != 1 && y.Rank() != 2 {
		return nil, fmt.Errorf("%w: cross-entropy expects rank 1 or 2 predictions, got shape %v", tensor.ErrInvalidArgument, y.Shape())
	}
	classes := y.Dim(-1)
	batch := 1
	if y.Rank() == 2 {
		batch = y.Dim(0)
	}
	if batch == 0 || classes == 0 {
		return nil, fmt.Errorf("%w: cross-entropy of empty predictions %v", tensor.ErrInvalidArgument, y.Shape())
	}

	if t.Size() == y.Size() {
		oneHot, err := t.Reshape(batch, classes)
		if err != nil {
			return nil, err
		}
		return tensor.Argmax(oneHot)
	}

	if t.Size() != batch {
		return nil, fmt.Errorf("%w: targets %v match neither predictions %v nor batch size %d",
			tensor.ErrInvalidArgument, t.Shape(), y.Shape(), batch)
	}
	labels := make([]int, batch)
	for i, v := range t.Storage() {
		label := int(v)
		if float32(label) != v || label < 0 || label >= classes {
			return nil, fmt.Errorf("%w: target %d is %v, want a class index in [0, %d)", tensor.ErrOutOfRange, i, v, classes)
		}
		labels[i] = label
	}
	return labels, nil
}

// MeanSquaredError computes 0.5 * Σ(y - t)².
func MeanSquaredError(y, t *tensor.Tensor) (float32, error) {
	if !tensor.IsSameShape(y, t) {
		return 0, fmt.Errorf("%w: MeanSquaredError shapes differ: %v and %v", tensor.ErrInvalidArgument, y.Shape(), t.Shape())
	}
	yd, td := y.Storage(), t.Storage()
	var sum float64
	for i := range yd {
		d := float64(yd[i]) - float64(td[i])
		sum += d * d
	}
	return float32(0.5 * sum), nil
}

// SoftmaxWithLoss combines a softmax output layer with cross-entropy loss.
//
// It is always the terminal layer: use ForwardLoss instead of Forward.
// Backward returns (y - t) / batch and ignores its argument, which is the
// combined gradient of softmax and cross-entropy.
type SoftmaxWithLoss struct {
	engine *tensor.Engine
	y      *tensor.Tensor // softmax output
	t      *tensor.Tensor
	loss   float64
}

// NewSoftmaxWithLoss creates the loss layer. A nil engine runs natively.
func NewSoftmaxWithLoss(engine *tensor.Engine) *SoftmaxWithLoss {
	return &SoftmaxWithLoss{engine: engine}
}

// Name returns "SoftmaxWithLoss".
func (s *SoftmaxWithLoss) Name() string {
	return "SoftmaxWithLoss"
}

// Forward is invalid for this layer: the loss needs targets.
func (s *SoftmaxWithLoss) Forward(*tensor.Tensor) (*tensor.Tensor, error) {
	return nil, fmt.Errorf("%w: SoftmaxWithLoss needs targets, use ForwardLoss", tensor.ErrInvalidArgument)
}

// ForwardLoss computes y = Softmax(x), caches y and t, and returns the
// cross-entropy loss.
func (s *SoftmaxWithLoss) ForwardLoss(x, t *tensor.Tensor) (float32, error) {
	loss, err := s.forward(x, t)
	return float32(loss), err
}

func (s *SoftmaxWithLoss) forward(x, t *tensor.Tensor) (float64, error) {
	y, err := s.engine.Softmax(x)
	if err != nil {
		return 0, fmt.Errorf("SoftmaxWithLoss forward: %w", err)
	}
	loss, err := crossEntropy(y, t)
	if err != nil {
		return 0, fmt.Errorf("SoftmaxWithLoss forward: %w", err)
	}
	s.y, s.t, s.loss = y, t.Clone(), loss
	return loss, nil
}

// Loss returns the loss computed by the last ForwardLoss.
func (s *SoftmaxWithLoss) Loss() float32 {
	return float32(s.loss)
}

// Output returns the cached softmax probabilities, or nil before ForwardLoss.
func (s *SoftmaxWithLoss) Output() *tensor.Tensor {
	return s.y
}

// Backward returns (y - t) / batch. The argument is ignored and may be nil.
func (s *SoftmaxWithLoss) Backward(*tensor.Tensor) (*tensor.Tensor, error) {
	if s.y == nil {
		return nil, fmt.Errorf("SoftmaxWithLoss: %w", ErrBackwardBeforeForward)
	}

	batch := 1
	if s.y.Rank() == 2 {
		batch = s.y.Dim(0)
	}

	var dx *tensor.Tensor
	if s.t.Size() == s.y.Size() {
		oneHot, err := s.t.Reshape(s.y.Shape()...)
		if err != nil {
			return nil, err
		}
		if dx, err = tensor.Sub(s.y, oneHot); err != nil {
			return nil, err
		}
	} else {
		labels, err := targetLabels(s.y, s.t)
		if err != nil {
			return nil, err
		}
		dx = s.y.Clone()
		d := dx.Storage()
		classes := s.y.Dim(-1)
		for i, label := range labels {
			d[i*classes+label]--
		}
	}
	return tensor.DivScalarWithPolicy(dx, float32(batch), tensor.IEEEDivision), nil
}

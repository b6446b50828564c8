package nn

import (
	"fmt"
	"slices"

	"github.com/born-ml/tensornet/internal/tensor"
)

// Sequential chains named layers.
//
// Forward feeds each layer's output to the next; Backward walks the layers in
// reverse order.
//
// Example:
//
//	seq := nn.NewSequential()
//	seq.Add("Affine1", affine1)
//	seq.Add("Relu1", nn.NewReLU(nil))
//	seq.Add("Affine2", affine2)
//	scores, err := seq.Forward(x)
type Sequential struct {
	names  []string
	layers []Layer
}

// NewSequential creates an empty container.
func NewSequential() *Sequential {
	return &Sequential{}
}

// Add appends a layer under name.
func (s *Sequential) Add(name string, l Layer) {
	s.names = append(s.names, name)
	s.layers = append(s.layers, l)
}

// Names returns layer names in forward order.
func (s *Sequential) Names() []string {
	return slices.Clone(s.names)
}

// Layer returns the layer registered under name.
func (s *Sequential) Layer(name string) (Layer, bool) {
	i := slices.Index(s.names, name)
	if i < 0 {
		return nil, false
	}
	return s.layers[i], true
}

// Len returns the number of layers.
func (s *Sequential) Len() int {
	return len(s.layers)
}

// Forward applies all layers in order.
func (s *Sequential) Forward(x *tensor.Tensor) (*tensor.Tensor, error) {
	out := x
	for i, l := range s.layers {
		var err error
		if out, err = l.Forward(out); err != nil {
			return nil, fmt.Errorf("%s: %w", s.names[i], err)
		}
	}
	return out, nil
}

// Backward propagates dout through all layers in reverse order.
func (s *Sequential) Backward(dout *tensor.Tensor) (*tensor.Tensor, error) {
	d := dout
	for i := len(s.layers) - 1; i >= 0; i-- {
		var err error
		if d, err = s.layers[i].Backward(d); err != nil {
			return nil, fmt.Errorf("%s: %w", s.names[i], err)
		}
	}
	return d, nil
}

package nn

import (
	"fmt"
	"slices"

	"github.com/born-ml/tensornet/internal/tensor"
	"github.com/samber/lo"
)

// Params is an ordered table of named parameter tensors.
//
// Entries are pointers: layers built from the table share the same tensors,
// so optimizers that update a tensor in place change what the layers see.
//
// Example:
//
//	params := nn.NewParams()
//	_ = params.Add("W1", w1)
//	w, ok := params.Get("W1") // same pointer as w1
type Params struct {
	names  []string
	byName map[string]*tensor.Tensor
}

// Grads maps parameter names to gradients of the same shape.
type Grads map[string]*tensor.Tensor

// NewParams creates an empty table.
func NewParams() *Params {
	return &Params{byName: make(map[string]*tensor.Tensor)}
}

// Add appends a named tensor. Names must be unique.
func (p *Params) Add(name string, t *tensor.Tensor) error {
	if t == nil {
		return fmt.Errorf("%w: parameter %q is nil", tensor.ErrInvalidArgument, name)
	}
	if _, ok := p.byName[name]; ok {
		return fmt.Errorf("%w: duplicate parameter %q", tensor.ErrInvalidArgument, name)
	}
	p.names = append(p.names, name)
	p.byName[name] = t
	return nil
}

// Get returns the tensor registered under name.
func (p *Params) Get(name string) (*tensor.Tensor, bool) {
	t, ok := p.byName[name]
	return t, ok
}

// Names returns parameter names in insertion order.
func (p *Params) Names() []string {
	return slices.Clone(p.names)
}

// Len returns the number of parameters.
func (p *Params) Len() int {
	return len(p.names)
}

// NumElements returns the total number of scalar parameters.
func (p *Params) NumElements() int {
	return lo.SumBy(p.names, func(name string) int {
		return p.byName[name].Size()
	})
}

// Each calls fn for every parameter in insertion order.
func (p *Params) Each(fn func(name string, t *tensor.Tensor)) {
	for _, name := range p.names {
		fn(name, p.byName[name])
	}
}

// Check verifies that g has a gradient of matching shape for every parameter.
func (p *Params) Check(g Grads) error {
	missing := lo.Filter(p.names, func(name string, _ int) bool {
		_, ok := g[name]
		return !ok
	})
	if len(missing) > 0 {
		return fmt.Errorf("%w: no gradient for %v", tensor.ErrInvalidArgument, missing)
	}
	for _, name := range p.names {
		if !tensor.IsSameShape(p.byName[name], g[name]) {
			return fmt.Errorf("%w: gradient %q has shape %v, parameter has %v",
				tensor.ErrInvalidArgument, name, g[name].Shape(), p.byName[name].Shape())
		}
	}
	return nil
}

// Package tensor implements a small float32 N-dimensional array with row-major
// strides, NumPy-style broadcasting and the functional ops used by the network
// layers in internal/nn.
//
// Every tensor exclusively owns its storage. Derived tensors (Reshape, Slice,
// Index, Transpose, Concat and all arithmetic results) are materialized copies;
// there are no views.
//
// Operations return an error wrapping ErrInvalidArgument, ErrOutOfRange, ErrIO or
// ErrParse instead of producing a wrongly shaped result:
//
//	a := tensor.Must(tensor.Ones(tensor.Shape{3, 1}))
//	b := tensor.Must(tensor.Ones(tensor.Shape{1, 4}))
//	c, err := tensor.Add(a, b) // shape [3 4], filled with 2
//	if err != nil {
//	    return err
//	}
//
// Device acceleration is opt-in through an Engine wrapping a backend.Executor;
// the package-level functions always run natively in Go.
package tensor

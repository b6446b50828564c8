// Package dataset loads and batches labelled examples for training.
//
// A Dataset pairs a feature matrix X [n, features] with one-hot targets
// T [n, classes]. Loaders cover Kaggle-style CSV, MNIST IDX files, synthetic
// Gaussian blobs and tokenized text.
package dataset

import (
	"fmt"
	"math/rand/v2"

	"github.com/born-ml/tensornet/internal/tensor"
	"github.com/samber/lo"
)

// Dataset holds features and one-hot targets with the same number of rows.
type Dataset struct {
	X *tensor.Tensor // [n, features]
	T *tensor.Tensor // [n, classes]
}

// New pairs x and t after checking that they line up.
func New(x, t *tensor.Tensor) (*Dataset, error) {
	if x.Rank() != 2 || t.Rank() != 2 {
		return nil, fmt.Errorf("%w: dataset needs rank-2 features and targets, got %v and %v",
			tensor.ErrInvalidArgument, x.Shape(), t.Shape())
	}
	if x.Dim(0) != t.Dim(0) {
		return nil, fmt.Errorf("%w: %d feature rows but %d target rows", tensor.ErrInvalidArgument, x.Dim(0), t.Dim(0))
	}
	return &Dataset{X: x, T: t}, nil
}

// FromLabels builds a dataset from class indices, one-hot encoding them.
func FromLabels(x *tensor.Tensor, labels []int, classes int) (*Dataset, error) {
	t, err := OneHot(labels, classes)
	if err != nil {
		return nil, err
	}
	return New(x, t)
}

// OneHot encodes class indices as rows of a [len(labels), classes] tensor.
func OneHot(labels []int, classes int) (*tensor.Tensor, error) {
	if classes <= 0 {
		return nil, fmt.Errorf("%w: class count must be positive, got %d", tensor.ErrInvalidArgument, classes)
	}
	t, err := tensor.Zeros(tensor.Shape{len(labels), classes})
	if err != nil {
		return nil, err
	}
	data := t.Storage()
	for i, label := range labels {
		if label < 0 || label >= classes {
			return nil, fmt.Errorf("%w: label %d at row %d outside [0, %d)", tensor.ErrOutOfRange, label, i, classes)
		}
		data[i*classes+label] = 1
	}
	return t, nil
}

// Len returns the number of examples.
func (d *Dataset) Len() int {
	return d.X.Dim(0)
}

// Features returns the feature width.
func (d *Dataset) Features() int {
	return d.X.Dim(1)
}

// Classes returns the number of target classes.
func (d *Dataset) Classes() int {
	return d.T.Dim(1)
}

// Labels returns the class index of every example. It fails when the
// dataset has no classes.
func (d *Dataset) Labels() ([]int, error) {
	return tensor.Argmax(d.T)
}

// Batch gathers the given rows into new tensors.
func (d *Dataset) Batch(indices []int) (x, t *tensor.Tensor, err error) {
	if x, err = gather(d.X, indices); err != nil {
		return nil, nil, err
	}
	if t, err = gather(d.T, indices); err != nil {
		return nil, nil, err
	}
	return x, t, nil
}

// Subset returns a dataset holding the given rows.
func (d *Dataset) Subset(indices []int) (*Dataset, error) {
	x, t, err := d.Batch(indices)
	if err != nil {
		return nil, err
	}
	return &Dataset{X: x, T: t}, nil
}

// Sample draws size distinct rows at random.
func (d *Dataset) Sample(size int, src rand.Source) (x, t *tensor.Tensor, err error) {
	if size <= 0 || size > d.Len() {
		return nil, nil, fmt.Errorf("%w: batch size %d for %d examples", tensor.ErrInvalidArgument, size, d.Len())
	}
	return d.Batch(shuffled(d.Len(), src)[:size])
}

// Minibatches shuffles the row indices and chunks them into batches of size.
// The last batch may be shorter.
func (d *Dataset) Minibatches(size int, src rand.Source) ([][]int, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: batch size must be positive, got %d", tensor.ErrInvalidArgument, size)
	}
	return lo.Chunk(shuffled(d.Len(), src), size), nil
}

// Split shuffles the dataset and returns the first (1-testRatio) share as
// train and the rest as test.
func (d *Dataset) Split(testRatio float64, src rand.Source) (train, test *Dataset, err error) {
	if testRatio <= 0 || testRatio >= 1 {
		return nil, nil, fmt.Errorf("%w: test ratio %g must be in (0, 1)", tensor.ErrInvalidArgument, testRatio)
	}
	idx := shuffled(d.Len(), src)
	cut := d.Len() - int(float64(d.Len())*testRatio)
	if cut <= 0 || cut >= d.Len() {
		return nil, nil, fmt.Errorf("%w: %d examples are too few to split at %g", tensor.ErrInvalidArgument, d.Len(), testRatio)
	}
	if train, err = d.Subset(idx[:cut]); err != nil {
		return nil, nil, err
	}
	if test, err = d.Subset(idx[cut:]); err != nil {
		return nil, nil, err
	}
	return train, test, nil
}

// shuffled returns a random permutation of [0, n).
func shuffled(n int, src rand.Source) []int {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	idx := lo.Range(n)
	rand.New(src).Shuffle(n, func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })
	return idx
}

// gather copies rows of a rank-2 tensor.
func gather(src *tensor.Tensor, rows []int) (*tensor.Tensor, error) {
	n, cols := src.Dim(0), src.Dim(1)
	out, err := tensor.New(len(rows), cols)
	if err != nil {
		return nil, err
	}
	in, dst := src.Storage(), out.Storage()
	for i, r := range rows {
		if r < 0 || r >= n {
			return nil, fmt.Errorf("%w: row %d of %d", tensor.ErrOutOfRange, r, n)
		}
		copy(dst[i*cols:(i+1)*cols], in[r*cols:(r+1)*cols])
	}
	return out, nil
}

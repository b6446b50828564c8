package dataset

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/born-ml/tensornet/internal/tensor"
)

// IDX magic numbers for unsigned-byte image and label files.
const (
	idxImagesMagic = 2051
	idxLabelsMagic = 2049
)

// LoadMNIST reads the official MNIST IDX files from dir.
//
// Expected files in dir:
//   - train-images-idx3-ubyte, train-labels-idx1-ubyte (train)
//   - t10k-images-idx3-ubyte, t10k-labels-idx1-ubyte (test)
//
// Pixels are scaled to [0, 1]. maxSamples > 0 keeps only the first rows.
func LoadMNIST(dir string, train bool, maxSamples int) (*Dataset, error) {
	prefix := "t10k"
	if train {
		prefix = "train"
	}

	images, err := openIDX(filepath.Join(dir, prefix+"-images-idx3-ubyte"), readIDXImages)
	if err != nil {
		return nil, err
	}
	labels, err := openIDX(filepath.Join(dir, prefix+"-labels-idx1-ubyte"), readIDXLabels)
	if err != nil {
		return nil, err
	}
	if images.Dim(0) != len(labels) {
		return nil, fmt.Errorf("%w: image count (%d) != label count (%d)", tensor.ErrParse, images.Dim(0), len(labels))
	}

	if maxSamples > 0 && maxSamples < len(labels) {
		if images, err = images.Slice(0, maxSamples); err != nil {
			return nil, err
		}
		labels = labels[:maxSamples]
	}
	return FromLabels(images, labels, 10)
}

func openIDX[T any](path string, read func(io.Reader) (T, error)) (T, error) {
	var zero T
	file, err := os.Open(path)
	if err != nil {
		return zero, fmt.Errorf("%w: failed to open %s: %w", tensor.ErrIO, path, err)
	}
	defer file.Close()

	v, err := read(file)
	if err != nil {
		return zero, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}

// readIDXImages reads an IDX image file.
//
// IDX file format for images:
//
//	magic number: 0x00000803 (2051)
//	number of images: 4 bytes
//	number of rows: 4 bytes
//	number of cols: 4 bytes
//	pixel data: unsigned bytes (0-255)
func readIDXImages(r io.Reader) (*tensor.Tensor, error) {
	var header [4]uint32
	if err := binary.Read(r, binary.BigEndian, &header); err != nil {
		return nil, fmt.Errorf("%w: failed to read header: %w", tensor.ErrParse, err)
	}
	if header[0] != idxImagesMagic {
		return nil, fmt.Errorf("%w: invalid magic number: got %d, want %d", tensor.ErrParse, header[0], idxImagesMagic)
	}

	n, pixels := int(header[1]), int(header[2]*header[3])
	raw := make([]byte, n*pixels)
	if _, err := io.ReadFull(r, raw); err != nil {
		return nil, fmt.Errorf("%w: failed to read pixels: %w", tensor.ErrParse, err)
	}

	images, err := tensor.New(n, pixels)
	if err != nil {
		return nil, err
	}
	data := images.Storage()
	for i, b := range raw {
		data[i] = float32(b) / 255
	}
	return images, nil
}

// readIDXLabels reads an IDX label file.
//
// IDX file format for labels:
//
//	magic number: 0x00000801 (2049)
//	number of labels: 4 bytes
//	label data: unsigned bytes (0-9)
func readIDXLabels(r io.Reader) ([]int, error) {
	var header [2]uint32
	if err := binary.Read(r, binary.BigEndian, &header); err != nil {
		return nil, fmt.Errorf("%w: failed to read header: %w", tensor.ErrParse, err)
	}
	if header[0] != idxLabelsMagic {
		return nil, fmt.Errorf("%w: invalid magic number: got %d, want %d", tensor.ErrParse, header[0], idxLabelsMagic)
	}

	raw := make([]byte, header[1])
	if _, err := io.ReadFull(r, raw); err != nil {
		return nil, fmt.Errorf("%w: failed to read labels: %w", tensor.ErrParse, err)
	}
	labels := make([]int, len(raw))
	for i, b := range raw {
		labels[i] = int(b)
	}
	return labels, nil
}

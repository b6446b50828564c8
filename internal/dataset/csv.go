package dataset

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/born-ml/tensornet/internal/tensor"
)

// CSVOptions describes how to read a labelled CSV file.
//
// Kaggle-style MNIST, for example, is
//
//	label,pixel0,pixel1,...,pixel783
//	5,0,0,12,...,0
//
// which reads with CSVOptions{LabelColumn: 0, Classes: 10, Header: true, Scale: 1.0 / 255}.
type CSVOptions struct {
	LabelColumn int     // column holding the integer class label
	Classes     int     // number of classes for one-hot encoding
	Header      bool    // skip the first line
	Scale       float32 // multiply features by Scale; 0 means 1
	MaxSamples  int     // keep at most this many rows; 0 keeps all
}

// LoadCSV reads a labelled CSV file into a dataset.
//
// Open failures wrap tensor.ErrIO; malformed numbers wrap tensor.ErrParse.
func LoadCSV(path string, opts CSVOptions) (*Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open %s: %w", tensor.ErrIO, path, err)
	}
	defer file.Close()

	return ReadCSV(file, opts)
}

// ReadCSV parses a labelled CSV stream into a dataset.
func ReadCSV(r io.Reader, opts CSVOptions) (*Dataset, error) {
	br := bufio.NewReader(r)
	if opts.Header {
		if _, err := br.ReadString('\n'); err != nil && err != io.EOF {
			return nil, fmt.Errorf("%w: failed to read header: %w", tensor.ErrIO, err)
		}
	}

	raw, err := tensor.ReadCSV(br)
	if err != nil {
		return nil, err
	}
	rows, cols := raw.Dim(0), raw.Dim(1)
	if opts.LabelColumn < 0 || opts.LabelColumn >= cols {
		return nil, fmt.Errorf("%w: label column %d of %d", tensor.ErrInvalidArgument, opts.LabelColumn, cols)
	}
	if cols < 2 {
		return nil, fmt.Errorf("%w: CSV needs a label and at least one feature column", tensor.ErrInvalidArgument)
	}
	if opts.MaxSamples > 0 && rows > opts.MaxSamples {
		rows = opts.MaxSamples
	}
	scale := opts.Scale
	if scale == 0 {
		scale = 1
	}

	x, err := tensor.New(rows, cols-1)
	if err != nil {
		return nil, err
	}
	labels := make([]int, rows)
	src, dst := raw.Storage(), x.Storage()
	for i := 0; i < rows; i++ {
		row := src[i*cols : (i+1)*cols]
		label := row[opts.LabelColumn]
		if float32(int(label)) != label {
			return nil, fmt.Errorf("%w: row %d label %v is not an integer", tensor.ErrParse, i+1, label)
		}
		labels[i] = int(label)

		out := dst[i*(cols-1) : (i+1)*(cols-1)]
		j := 0
		for c, v := range row {
			if c == opts.LabelColumn {
				continue
			}
			out[j] = v * scale
			j++
		}
	}
	return FromLabels(x, labels, opts.Classes)
}

package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/born-ml/tensornet/internal/tensor"
	"github.com/born-ml/tensornet/internal/tokenizer"
)

// TextFeaturizer turns documents into fixed-width bag-of-token vectors.
// Token ids are folded into Width buckets and each row is L1-normalised.
type TextFeaturizer struct {
	tok   tokenizer.Tokenizer
	width int
}

// NewTextFeaturizer returns a featurizer producing width columns.
func NewTextFeaturizer(tok tokenizer.Tokenizer, width int) (*TextFeaturizer, error) {
	if tok == nil {
		return nil, fmt.Errorf("%w: nil tokenizer", tensor.ErrInvalidArgument)
	}
	if width <= 0 {
		return nil, fmt.Errorf("%w: feature width must be positive, got %d", tensor.ErrInvalidArgument, width)
	}
	return &TextFeaturizer{tok: tok, width: width}, nil
}

// Width returns the number of feature columns.
func (f *TextFeaturizer) Width() int {
	return f.width
}

// Transform encodes docs into a [len(docs), Width] tensor.
// A document with no tokens yields a zero row.
func (f *TextFeaturizer) Transform(docs []string) (*tensor.Tensor, error) {
	x, err := tensor.Zeros(tensor.Shape{len(docs), f.width})
	if err != nil {
		return nil, err
	}
	data := x.Storage()
	for i, doc := range docs {
		ids, err := f.tok.Encode(doc)
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", i, err)
		}
		if len(ids) == 0 {
			continue
		}
		row := data[i*f.width : (i+1)*f.width]
		w := 1 / float32(len(ids))
		for _, id := range ids {
			row[id%f.width] += w
		}
	}
	return x, nil
}

// Dataset featurizes labelled documents.
func (f *TextFeaturizer) Dataset(docs []string, labels []int, classes int) (*Dataset, error) {
	if len(docs) != len(labels) {
		return nil, fmt.Errorf("%w: %d documents but %d labels", tensor.ErrInvalidArgument, len(docs), len(labels))
	}
	x, err := f.Transform(docs)
	if err != nil {
		return nil, err
	}
	return FromLabels(x, labels, classes)
}

// LoadText reads a "label,text" CSV file and featurizes the text column.
func LoadText(path string, f *TextFeaturizer, classes int, header bool) (*Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open %s: %w", tensor.ErrIO, path, err)
	}
	defer file.Close()

	docs, labels, err := ReadLabelledText(file, header)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f.Dataset(docs, labels, classes)
}

// ReadLabelledText parses "label,text" CSV rows. Text fields may be quoted
// and contain commas.
func ReadLabelledText(r io.Reader, header bool) (docs []string, labels []int, err error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 2
	for row := 1; ; row++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %w", tensor.ErrParse, err)
		}
		if header && row == 1 {
			continue
		}
		label, err := strconv.Atoi(strings.TrimSpace(record[0]))
		if err != nil {
			return nil, nil, fmt.Errorf("%w: row %d: label %q is not an integer", tensor.ErrParse, row, record[0])
		}
		labels = append(labels, label)
		docs = append(docs, record[1])
	}
	return docs, labels, nil
}

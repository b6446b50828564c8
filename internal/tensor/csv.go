package tensor

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// FromCSV reads comma-separated numeric rows into a rank-2 tensor.
//
// Every row must have the same number of fields. A file that cannot be opened
// or read yields ErrIO; a field that is not a number yields ErrParse.
func FromCSV(path string) (*Tensor, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open %s: %w", ErrIO, path, err)
	}
	defer file.Close()

	return ReadCSV(file)
}

// ReadCSV parses comma-separated numeric rows from r into a rank-2 tensor.
func ReadCSV(r io.Reader) (*Tensor, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	var (
		data []float32
		cols = -1
		rows int
	)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				return nil, fmt.Errorf("%w: %w", ErrParse, err)
			}
			return nil, fmt.Errorf("%w: failed to read CSV: %w", ErrIO, err)
		}

		if cols < 0 {
			cols = len(record)
		}
		for j, field := range record {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 32)
			if err != nil {
				return nil, fmt.Errorf("%w: row %d column %d: %q is not a number", ErrParse, rows+1, j+1, field)
			}
			data = append(data, float32(v))
		}
		rows++
	}

	if rows == 0 {
		return nil, fmt.Errorf("%w: CSV input has no rows", ErrParse)
	}
	return FromArray(data, Shape{rows, cols})
}

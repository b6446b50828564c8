package tokenizer

import (
	"fmt"
	"hash/fnv"
	"strings"
	"unicode"
)

// Tokenizer is the core interface for text tokenization.
type Tokenizer interface {
	// Encode converts text to token IDs in [0, VocabSize()).
	Encode(text string) ([]int, error)

	// VocabSize returns the number of distinct token IDs.
	VocabSize() int

	// Name identifies the tokenizer, e.g. "cl100k_base".
	Name() string
}

// Words splits text on anything that is not a letter or digit, lowercases
// each word and hashes it into one of Buckets IDs.
type Words struct {
	buckets int
}

// NewWords creates a hashing word tokenizer with the given number of buckets.
func NewWords(buckets int) (*Words, error) {
	if buckets <= 0 {
		return nil, fmt.Errorf("tokenizer: bucket count must be positive, got %d", buckets)
	}
	return &Words{buckets: buckets}, nil
}

// Encode returns one bucket ID per word.
func (w *Words) Encode(text string) ([]int, error) {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	ids := make([]int, len(fields))
	for i, f := range fields {
		h := fnv.New32a()
		_, _ = h.Write([]byte(strings.ToLower(f)))
		ids[i] = int(h.Sum32() % uint32(w.buckets)) //nolint:gosec // buckets > 0 and fits in uint32
	}
	return ids, nil
}

// VocabSize returns the bucket count.
func (w *Words) VocabSize() int {
	return w.buckets
}

// Name returns "words".
func (w *Words) Name() string {
	return "words"
}

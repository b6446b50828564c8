package tokenizer

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

const (
	// EncodingCL100kBase is the encoding used by GPT-4 and GPT-3.5-turbo.
	EncodingCL100kBase = "cl100k_base"
	// EncodingP50kBase is the encoding used by GPT-3 and Codex.
	EncodingP50kBase = "p50k_base"
	// EncodingR50kBase is the encoding used by older GPT-3 models.
	EncodingR50kBase = "r50k_base"
)

// TikToken wraps the pkoukk/tiktoken-go library for OpenAI tokenizers.
//
// The first use of an encoding downloads its BPE ranks unless they are
// already cached (see TIKTOKEN_CACHE_DIR in tiktoken-go).
type TikToken struct {
	encoding *tiktoken.Tiktoken
	name     string
}

// NewTikToken creates a TikToken tokenizer with the specified encoding.
func NewTikToken(encodingName string) (*TikToken, error) {
	encoding, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, fmt.Errorf("failed to load tiktoken encoding %q: %w", encodingName, err)
	}
	return &TikToken{encoding: encoding, name: encodingName}, nil
}

// NewTikTokenForModel creates a TikToken tokenizer for a model name such as
// "gpt-4".
func NewTikTokenForModel(modelName string) (*TikToken, error) {
	encoding, err := tiktoken.EncodingForModel(modelName)
	if err != nil {
		return nil, fmt.Errorf("failed to load tiktoken for model %q: %w", modelName, err)
	}
	return &TikToken{encoding: encoding, name: modelName}, nil
}

// Encode converts text to token IDs.
func (t *TikToken) Encode(text string) ([]int, error) {
	return t.encoding.Encode(text, nil, nil), nil
}

// Decode converts token IDs back to text.
func (t *TikToken) Decode(tokens []int) string {
	return t.encoding.Decode(tokens)
}

// VocabSize returns the size of the ordinary (non-special) vocabulary.
func (t *TikToken) VocabSize() int {
	switch t.name {
	case EncodingCL100kBase:
		return 100256
	case EncodingP50kBase, EncodingR50kBase:
		return 50257
	default:
		return 100256
	}
}

// Name returns the encoding or model name.
func (t *TikToken) Name() string {
	return t.name
}

// Package tokenizer turns text into integer token IDs for feature extraction.
//
// Supported tokenizers:
//   - TikToken: OpenAI BPE encodings (cl100k_base, p50k_base, r50k_base)
//   - Words: offline hashing word tokenizer with a fixed bucket count
//
// Example usage:
//
//	import "github.com/born-ml/tensornet/tokenizer"
//
//	tok, err := tokenizer.NewTikToken(tokenizer.EncodingCL100kBase)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	tokens, err := tok.Encode("Hello, world!")
//	if err != nil {
//	    log.Fatal(err)
//	}
package tokenizer

import (
	"github.com/born-ml/tensornet/internal/tokenizer"
)

// Tokenizer is the core interface for text tokenization.
//
// All tokenizer implementations must implement this interface.
type Tokenizer = tokenizer.Tokenizer

// TikToken wraps a tiktoken BPE encoding.
type TikToken = tokenizer.TikToken

// Words is a hashing word tokenizer.
type Words = tokenizer.Words

// Encoding names accepted by NewTikToken.
const (
	EncodingCL100kBase = tokenizer.EncodingCL100kBase
	EncodingP50kBase   = tokenizer.EncodingP50kBase
	EncodingR50kBase   = tokenizer.EncodingR50kBase
)

// NewTikToken creates a TikToken tokenizer with the specified encoding.
//
// The encoding's rank file is downloaded and cached by tiktoken-go on first use.
func NewTikToken(encodingName string) (*TikToken, error) {
	return tokenizer.NewTikToken(encodingName)
}

// NewTikTokenForModel creates a TikToken tokenizer for a specific model.
//
// Example: NewTikTokenForModel("gpt-4") uses cl100k_base.
func NewTikTokenForModel(modelName string) (*TikToken, error) {
	return tokenizer.NewTikTokenForModel(modelName)
}

// NewWords creates a hashing word tokenizer with buckets IDs.
func NewWords(buckets int) (*Words, error) {
	return tokenizer.NewWords(buckets)
}

// Package tokenizer turns text into integer token IDs for feature extraction.
//
// Implementations:
//   - TikToken: OpenAI BPE encodings (cl100k_base, p50k_base, r50k_base)
//     via pkoukk/tiktoken-go
//   - Words: lowercase word splitting hashed into a fixed number of buckets,
//     usable offline
//
// Example usage:
//
//	tok, err := tokenizer.NewTikToken("cl100k_base")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	ids, err := tok.Encode("Hello, world!")
package tokenizer

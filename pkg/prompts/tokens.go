package prompts

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// fallbackEncoding is used for model names tiktoken does not know.
const fallbackEncoding = "cl100k_base"

// TokenCounter counts prompt tokens for diagnostics. The encoding is loaded
// on first use; when no encoding can be loaded it falls back to
// EstimateTokens.
type TokenCounter struct {
	model string
	once  sync.Once
	enc   *tiktoken.Tiktoken
}

// NewTokenCounter creates a counter for the given model name.
func NewTokenCounter(model string) *TokenCounter {
	return &TokenCounter{model: model}
}

// Count returns the number of tokens in text.
func (c *TokenCounter) Count(text string) int {
	c.once.Do(c.load)
	if c.enc == nil {
		return EstimateTokens(text)
	}
	return len(c.enc.Encode(text, nil, nil))
}

func (c *TokenCounter) load() {
	enc, err := tiktoken.EncodingForModel(c.model)
	if err != nil {
		enc, err = tiktoken.GetEncoding(fallbackEncoding)
		if err != nil {
			return
		}
	}
	c.enc = enc
}

// EstimateTokens approximates a token count at four bytes per token.
func EstimateTokens(text string) int {
	return (len(text) + 3) / 4
}

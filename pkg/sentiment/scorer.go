// Package sentiment scores the polarity of a user message on [-1, 1].
package sentiment

import (
	"context"
	"math"
)

// Scorer maps text to a polarity in [-1, 1]. Empty or whitespace-only text
// scores 0.
type Scorer interface {
	Score(ctx context.Context, text string) (float64, error)
}

// ScorerFunc adapts a plain function to Scorer.
type ScorerFunc func(ctx context.Context, text string) (float64, error)

func (f ScorerFunc) Score(ctx context.Context, text string) (float64, error) {
	return f(ctx, text)
}

// Clamp limits v to [-1, 1]. NaN maps to 0.
func Clamp(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return 0
	case v > 1:
		return 1
	case v < -1:
		return -1
	}
	return v
}

package sentiment

import (
	"context"
	"strings"
	"unicode"
)

var defaultLexicon = map[string]float64{
	"amazing":     0.6,
	"awesome":     1.0,
	"beautiful":   0.85,
	"best":        1.0,
	"better":      0.5,
	"brilliant":   0.9,
	"cool":        0.35,
	"enjoy":       0.4,
	"excellent":   1.0,
	"excited":     0.4,
	"exciting":    0.3,
	"fantastic":   0.4,
	"fun":         0.3,
	"glad":        0.5,
	"good":        0.7,
	"great":       0.8,
	"happy":       0.8,
	"helpful":     0.5,
	"interesting": 0.5,
	"like":        0.2,
	"love":        0.5,
	"nice":        0.6,
	"perfect":     1.0,
	"thanks":      0.2,
	"wonderful":   1.0,
	"angry":       -0.5,
	"annoying":    -0.8,
	"awful":       -1.0,
	"bad":         -0.7,
	"bored":       -0.5,
	"boring":      -1.0,
	"confused":    -0.4,
	"confusing":   -0.3,
	"difficult":   -0.5,
	"frustrated":  -0.7,
	"hard":        -0.3,
	"hate":        -0.8,
	"horrible":    -1.0,
	"sad":         -0.5,
	"scared":      -0.5,
	"stupid":      -0.8,
	"terrible":    -1.0,
	"tired":       -0.4,
	"ugly":        -0.7,
	"upset":       -0.6,
	"useless":     -0.5,
	"worried":     -0.4,
	"worse":       -0.4,
	"worst":       -1.0,
	"wrong":       -0.5,
}

var defaultIntensifiers = map[string]float64{
	"really":     1.3,
	"very":       1.3,
	"so":         1.3,
	"super":      1.5,
	"extremely":  1.5,
	"incredibly": 1.5,
	"totally":    1.3,
	"quite":      1.1,
	"slightly":   0.5,
	"somewhat":   0.6,
}

var negations = map[string]bool{
	"not":     true,
	"no":      true,
	"never":   true,
	"nothing": true,
	"hardly":  true,
}

// negationFactor inverts and dampens a negated word: "not good" is mildly
// negative rather than the mirror image of "good".
const negationFactor = -0.5

// LexiconScorer is an offline word-list scorer. The score is the mean
// polarity of the lexicon words found, each adjusted by a preceding
// intensifier and by a negation within the two preceding words.
type LexiconScorer struct {
	lexicon map[string]float64
}

// LexiconOption configures a LexiconScorer.
type LexiconOption func(*LexiconScorer)

// WithWords adds or overrides word polarities. Values are clamped.
func WithWords(words map[string]float64) LexiconOption {
	return func(s *LexiconScorer) {
		for w, p := range words {
			s.lexicon[strings.ToLower(w)] = Clamp(p)
		}
	}
}

// NewLexiconScorer returns a scorer over the built-in English word list.
func NewLexiconScorer(opts ...LexiconOption) *LexiconScorer {
	s := &LexiconScorer{lexicon: make(map[string]float64, len(defaultLexicon))}
	for w, p := range defaultLexicon {
		s.lexicon[w] = p
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *LexiconScorer) Score(ctx context.Context, text string) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	words := tokenize(text)
	var sum float64
	var n int
	for i, w := range words {
		p, ok := s.lexicon[w]
		if !ok {
			continue
		}
		if i > 0 {
			if f, ok := defaultIntensifiers[words[i-1]]; ok {
				p *= f
			}
		}
		if negated(words, i) {
			p *= negationFactor
		}
		sum += Clamp(p)
		n++
	}
	if n == 0 {
		return 0, nil
	}
	return Clamp(sum / float64(n)), nil
}

func negated(words []string, i int) bool {
	for j := i - 1; j >= 0 && j >= i-2; j-- {
		if negations[words[j]] || strings.HasSuffix(words[j], "n't") {
			return true
		}
	}
	return false
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && r != '\''
	})
}

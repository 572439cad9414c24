package llm

import (
	"context"
	"errors"

	"github.com/entrhq/tutorbot/pkg/types"
)

var ErrNoProvider = errors.New("llm: provider is required")

// Generator turns a Provider into a single-prompt text generator.
type Generator struct {
	provider     Provider
	systemPrompt string
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithSystemPrompt sends prompt as a system message ahead of every request.
func WithSystemPrompt(prompt string) GeneratorOption {
	return func(g *Generator) {
		g.systemPrompt = prompt
	}
}

// NewGenerator creates a generator backed by provider.
func NewGenerator(provider Provider, opts ...GeneratorOption) *Generator {
	g := &Generator{provider: provider}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate sends prompt as a single user message and returns the response
// text. An empty string means the model produced no text.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	if g.provider == nil {
		return "", ErrNoProvider
	}

	messages := make([]*types.Message, 0, 2)
	if g.systemPrompt != "" {
		messages = append(messages, types.NewSystemMessage(g.systemPrompt))
	}
	messages = append(messages, types.NewUserMessage(prompt))

	resp, err := g.provider.Complete(ctx, messages)
	if err != nil {
		return "", err
	}
	if resp == nil {
		return "", nil
	}
	return resp.Content, nil
}

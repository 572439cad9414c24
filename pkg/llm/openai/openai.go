// Package openai provides an OpenAI-compatible LLM provider implementation.
//
// Example usage:
//
//	package main
//
//	import (
//	    "context"
//	    "fmt"
//	    "os"
//
//	    "github.com/entrhq/tutorbot/pkg/llm/openai"
//	    "github.com/entrhq/tutorbot/pkg/types"
//	)
//
//	func main() {
//	    provider, err := openai.NewProvider(
//	        os.Getenv("OPENAI_API_KEY"),
//	        openai.WithModel("gpt-4o-mini"),
//	    )
//	    if err != nil {
//	        panic(err)
//	    }
//
//	    msg, err := provider.Complete(context.Background(), []*types.Message{
//	        types.NewUserMessage("Hello!"),
//	    })
//	    if err != nil {
//	        panic(err)
//	    }
//	    fmt.Println(msg.Content)
//	}
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/entrhq/tutorbot/pkg/llm/parser"
	"github.com/entrhq/tutorbot/pkg/types"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
)

const (
	// DefaultBaseURL is the default OpenAI API base URL
	DefaultBaseURL = "https://api.openai.com/v1"

	// DefaultModel is used when no model is configured.
	DefaultModel = "gpt-4o-mini"
)

// ErrMissingAPIKey is returned when no credential is available.
var ErrMissingAPIKey = errors.New("OpenAI API key is required (provide via parameter or OPENAI_API_KEY environment variable)")

// Provider implements the LLM provider interface on the OpenAI Responses API.
type Provider struct {
	client          openai.Client
	httpClient      *http.Client
	apiKey          string
	baseURL         string
	model           string
	maxOutputTokens int64
	modelInfo       *types.ModelInfo
}

// ProviderOption is a function that configures a Provider.
type ProviderOption func(*Provider)

// WithModel sets the model to use for completions.
func WithModel(model string) ProviderOption {
	return func(p *Provider) {
		if model != "" {
			p.model = model
		}
	}
}

// WithBaseURL sets a custom base URL for OpenAI-compatible APIs.
// This enables using Azure OpenAI, local models, or other compatible services.
func WithBaseURL(baseURL string) ProviderOption {
	return func(p *Provider) {
		if baseURL != "" {
			p.baseURL = baseURL
		}
	}
}

// WithHTTPClient overrides the HTTP client used for API calls.
func WithHTTPClient(client *http.Client) ProviderOption {
	return func(p *Provider) {
		p.httpClient = client
	}
}

// WithMaxOutputTokens caps the length of generated responses.
func WithMaxOutputTokens(n int64) ProviderOption {
	return func(p *Provider) {
		p.maxOutputTokens = n
	}
}

// NewProvider creates a new OpenAI provider with the given API key.
//
// If apiKey is empty, it will attempt to read from the OPENAI_API_KEY environment variable.
// If baseURL is not provided via WithBaseURL option, it will check OPENAI_BASE_URL environment variable.
//
// Requests are never retried: a failed call surfaces immediately so the
// conversation can fall back for that turn.
func NewProvider(apiKey string, opts ...ProviderOption) (*Provider, error) {
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, types.NewError(types.KindConfiguration, "openai", ErrMissingAPIKey)
	}

	p := &Provider{
		model:   DefaultModel,
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.baseURL == DefaultBaseURL {
		if envBaseURL := os.Getenv("OPENAI_BASE_URL"); envBaseURL != "" {
			p.baseURL = envBaseURL
		}
	}

	clientOpts := []option.RequestOption{
		option.WithAPIKey(p.apiKey),
		option.WithBaseURL(p.baseURL),
		option.WithMaxRetries(0),
	}
	if p.httpClient != nil {
		clientOpts = append(clientOpts, option.WithHTTPClient(p.httpClient))
	}
	p.client = openai.NewClient(clientOpts...)

	p.modelInfo = &types.ModelInfo{
		Provider: "openai",
		Name:     p.model,
		Metadata: make(map[string]interface{}),
	}
	if p.baseURL != DefaultBaseURL {
		p.modelInfo.Metadata["base_url"] = p.baseURL
	}

	return p, nil
}

// Complete sends messages to the Responses API and returns the full response.
// Any <thinking> sections the model emits are removed from the content.
func (p *Provider) Complete(ctx context.Context, messages []*types.Message) (*types.Message, error) {
	params := responses.ResponseNewParams{
		Model: p.model,
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: convertToInputItems(messages),
		},
	}
	if p.maxOutputTokens > 0 {
		params.MaxOutputTokens = openai.Int(p.maxOutputTokens)
	}

	resp, err := p.client.Responses.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai responses call failed: %w", err)
	}

	return types.NewAssistantMessage(parser.StripThinking(resp.OutputText())), nil
}

// Client returns the underlying SDK client, for callers that need
// structured output or other request shapes Complete does not cover.
func (p *Provider) Client() *openai.Client {
	return &p.client
}

// GetModelInfo returns information about the OpenAI model being used.
func (p *Provider) GetModelInfo() *types.ModelInfo {
	return p.modelInfo
}

// GetModel returns the model name being used.
func (p *Provider) GetModel() string {
	return p.model
}

// GetBaseURL returns the base URL being used.
func (p *Provider) GetBaseURL() string {
	return p.baseURL
}

func convertToInputItems(messages []*types.Message) []responses.ResponseInputItemUnionParam {
	items := make([]responses.ResponseInputItemUnionParam, 0, len(messages))
	for _, msg := range messages {
		if msg == nil {
			continue
		}
		items = append(items, responses.ResponseInputItemParamOfMessage(msg.Content, inputRole(msg.Role)))
	}
	return items
}

func inputRole(role types.MessageRole) responses.EasyInputMessageRole {
	switch role {
	case types.RoleSystem:
		return responses.EasyInputMessageRoleSystem
	case types.RoleAssistant:
		return responses.EasyInputMessageRoleAssistant
	default:
		// Unknown roles are sent as user input
		return responses.EasyInputMessageRoleUser
	}
}

// Package llm provides abstractions for LLM provider integration.
//
// Example usage:
//
//	package main
//
//	import (
//	    "context"
//	    "fmt"
//	    "log"
//	    "os"
//
//	    "github.com/entrhq/tutorbot/pkg/llm"
//	    "github.com/entrhq/tutorbot/pkg/llm/openai"
//	)
//
//	func main() {
//	    provider, err := openai.NewProvider(
//	        os.Getenv("OPENAI_API_KEY"),
//	        openai.WithModel("gpt-4o-mini"),
//	    )
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    gen := llm.NewGenerator(provider)
//	    text, err := gen.Generate(context.Background(), "You: Hello!\nBot:")
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(text)
//	}
package llm

import (
	"context"

	"github.com/entrhq/tutorbot/pkg/types"
)

// Provider defines the interface for LLM integrations.
//
// Providers handle API communication with LLM services and return complete
// messages. They know nothing about sessions, prompts or transcripts, which
// keeps them reusable and testable on their own.
type Provider interface {
	// Complete sends messages to the LLM and returns the full response.
	//
	// A response without text is returned as a message with empty Content,
	// not as an error. Errors are reserved for failed calls.
	Complete(ctx context.Context, messages []*types.Message) (*types.Message, error)

	// GetModelInfo returns information about the LLM model being used.
	GetModelInfo() *types.ModelInfo

	// GetModel returns the model name being used.
	GetModel() string
}

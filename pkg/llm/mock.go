package llm

import (
	"context"
	"sync"

	"github.com/entrhq/tutorbot/pkg/types"
)

// MockProvider is a Provider for tests. CompleteFunc, when set, computes the
// response; otherwise Response and Err are returned as-is.
type MockProvider struct {
	CompleteFunc func(ctx context.Context, messages []*types.Message) (*types.Message, error)
	Response     *types.Message
	Err          error
	Model        string

	mu    sync.Mutex
	calls [][]*types.Message
}

func (m *MockProvider) Complete(ctx context.Context, messages []*types.Message) (*types.Message, error) {
	m.mu.Lock()
	m.calls = append(m.calls, messages)
	m.mu.Unlock()

	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, messages)
	}
	return m.Response, m.Err
}

func (m *MockProvider) GetModelInfo() *types.ModelInfo {
	return &types.ModelInfo{Provider: "mock", Name: m.GetModel()}
}

func (m *MockProvider) GetModel() string {
	if m.Model == "" {
		return "mock-model"
	}
	return m.Model
}

// Calls returns the message lists received so far.
func (m *MockProvider) Calls() [][]*types.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]*types.Message, len(m.calls))
	copy(out, m.calls)
	return out
}

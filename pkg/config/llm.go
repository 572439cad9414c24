package config

import (
	"sync"
)

const (
	// SectionIDLLM is the identifier for the LLM settings section
	SectionIDLLM = "llm"
)

// LLMSection manages LLM provider configuration settings.
type LLMSection struct {
	Model   string
	BaseURL string
	APIKey  string
	mu      sync.RWMutex
}

// NewLLMSection creates a new LLM section with default settings.
func NewLLMSection() *LLMSection {
	return &LLMSection{}
}

func (s *LLMSection) ID() string {
	return SectionIDLLM
}

func (s *LLMSection) Title() string {
	return "LLM Settings"
}

func (s *LLMSection) Description() string {
	return "Model, endpoint and credential for reply generation. Empty values fall back to the environment and built-in defaults."
}

func (s *LLMSection) Data() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return map[string]interface{}{
		"model":    s.Model,
		"base_url": s.BaseURL,
		"api_key":  s.APIKey,
	}
}

func (s *LLMSection) SetData(data map[string]interface{}) error {
	if data == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if model, ok := data["model"].(string); ok {
		s.Model = model
	}
	if baseURL, ok := data["base_url"].(string); ok {
		s.BaseURL = baseURL
	}
	if apiKey, ok := data["api_key"].(string); ok {
		s.APIKey = apiKey
	}
	return nil
}

// Validate always passes; the credential is checked when the provider is
// built, after flags and environment have been applied.
func (s *LLMSection) Validate() error {
	return nil
}

func (s *LLMSection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Model = ""
	s.BaseURL = ""
	s.APIKey = ""
}

// GetModel returns the configured model name.
func (s *LLMSection) GetModel() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Model
}

// GetBaseURL returns the configured base URL.
func (s *LLMSection) GetBaseURL() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.BaseURL
}

// GetAPIKey returns the configured API key.
func (s *LLMSection) GetAPIKey() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.APIKey
}

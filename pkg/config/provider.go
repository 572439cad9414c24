package config

import (
	"fmt"
	"os"

	"github.com/entrhq/tutorbot/pkg/llm/openai"
	"github.com/entrhq/tutorbot/pkg/types"
)

// EnvModel overrides the configured model when no flag is given.
const EnvModel = "TUTORBOT_MODEL"

// LLMSettings is the resolved provider configuration.
type LLMSettings struct {
	Model   string
	BaseURL string
	APIKey  string
}

// ResolveLLM applies configuration precedence:
// CLI flags > Environment variables > Config file > Defaults
//
// section may be nil. A missing API key is a KindConfiguration error.
func ResolveLLM(cliModel, cliBaseURL, cliAPIKey string, section *LLMSection) (LLMSettings, error) {
	settings := LLMSettings{
		Model:   cliModel,
		BaseURL: cliBaseURL,
		APIKey:  cliAPIKey,
	}

	if settings.Model == "" {
		settings.Model = os.Getenv(EnvModel)
	}
	if settings.BaseURL == "" {
		settings.BaseURL = os.Getenv("OPENAI_BASE_URL")
	}
	if settings.APIKey == "" {
		settings.APIKey = os.Getenv("OPENAI_API_KEY")
	}

	if section != nil {
		if settings.Model == "" {
			settings.Model = section.GetModel()
		}
		if settings.BaseURL == "" {
			settings.BaseURL = section.GetBaseURL()
		}
		if settings.APIKey == "" {
			settings.APIKey = section.GetAPIKey()
		}
	}

	if settings.Model == "" {
		settings.Model = openai.DefaultModel
	}
	if settings.BaseURL == "" {
		settings.BaseURL = openai.DefaultBaseURL
	}

	if settings.APIKey == "" {
		return settings, types.NewError(types.KindConfiguration, "resolve llm",
			fmt.Errorf("API key is required. Set OPENAI_API_KEY, use -api-key, or set llm.api_key in the config file"))
	}
	return settings, nil
}

// BuildProvider resolves settings and creates the OpenAI provider.
func BuildProvider(cliModel, cliBaseURL, cliAPIKey string, section *LLMSection, opts ...openai.ProviderOption) (*openai.Provider, error) {
	settings, err := ResolveLLM(cliModel, cliBaseURL, cliAPIKey, section)
	if err != nil {
		return nil, err
	}

	providerOpts := append([]openai.ProviderOption{
		openai.WithModel(settings.Model),
		openai.WithBaseURL(settings.BaseURL),
	}, opts...)

	provider, err := openai.NewProvider(settings.APIKey, providerOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM provider: %w", err)
	}
	return provider, nil
}

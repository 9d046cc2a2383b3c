package llm

import (
	"context"
	"fmt"
	"os"
)

// Provider type identifiers accepted by NewProvider.
const (
	ProviderGoogle     = "google"
	ProviderGenAI      = "genai"
	ProviderOpenAI     = "openai"
	ProviderOpenRouter = "openrouter"
	ProviderAnthropic  = "anthropic"
	ProviderOllama     = "ollama"
)

// APIKeyEnvVar returns the environment variable holding the credential for
// providerType, or "" when the provider needs none.
func APIKeyEnvVar(providerType string) string {
	switch providerType {
	case ProviderGoogle, ProviderGenAI:
		return "GOOGLE_API_KEY"
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	case ProviderOpenRouter:
		return "OPENROUTER_API_KEY"
	case ProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	default:
		return ""
	}
}

// NewProvider creates a provider of the given type for model. Credentials
// are read from the environment only.
func NewProvider(ctx context.Context, providerType string, model string) (Provider, error) {
	var apiKey string
	if env := APIKeyEnvVar(providerType); env != "" {
		apiKey = os.Getenv(env)
		if apiKey == "" {
			return nil, fmt.Errorf("%s environment variable is not set", env)
		}
	}

	switch providerType {
	case ProviderGoogle:
		return NewGoogleProvider(apiKey, model), nil
	case ProviderGenAI:
		return NewGenAIProvider(ctx, apiKey, model)
	case ProviderOpenAI:
		return NewOpenAIProvider(apiKey, model), nil
	case ProviderOpenRouter:
		return NewOpenRouterProvider(apiKey, model), nil
	case ProviderAnthropic:
		return NewAnthropicProvider(apiKey, model), nil
	case ProviderOllama:
		host := os.Getenv("OLLAMA_HOST")
		if host == "" {
			host = "http://localhost:11434"
		}
		return NewOllamaProvider(host, model), nil
	default:
		return nil, fmt.Errorf("unsupported provider type: %s", providerType)
	}
}

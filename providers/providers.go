// Package providers resolves language-model provider identifiers to
// LLMGenerator implementations. The provider set is closed: each provider is
// registered here at startup with its own credential requirement, so an
// unknown identifier fails on a single path instead of scattered checks.
package providers

import (
	"context"
	"fmt"
	"os"
	"sort"

	"google.golang.org/genai"

	"github.com/datar-psa/rageval/api"
	"github.com/datar-psa/rageval/gemini"
)

// Provider identifiers
const (
	ProviderOpenAI = "openai"
	ProviderGrok   = "grok"
	ProviderGroq   = "groq"
	ProviderGemini = "gemini"
)

// Default models per provider
const (
	openAIModel = "gpt-3.5-turbo"
	grokModel   = "grok-beta"
	groqModel   = "llama-3.3-70b-versatile"
	geminiModel = "gemini-flash-latest"
)

// OpenAI-compatible base URLs
const (
	grokBaseURL = "https://api.x.ai/v1"
	groqBaseURL = "https://api.groq.com/openai/v1"
)

type factory func(ctx context.Context) (api.LLMGenerator, error)

var registry = map[string]factory{
	ProviderOpenAI: func(ctx context.Context) (api.LLMGenerator, error) {
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY not found")
		}
		return NewChat(ChatConfig{APIKey: apiKey, Model: openAIModel}), nil
	},
	ProviderGrok: func(ctx context.Context) (api.LLMGenerator, error) {
		// Grok uses an OpenAI-compatible API
		apiKey := os.Getenv("XAI_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("XAI_API_KEY not found")
		}
		return NewChat(ChatConfig{APIKey: apiKey, Model: grokModel, BaseURL: grokBaseURL}), nil
	},
	ProviderGroq: func(ctx context.Context) (api.LLMGenerator, error) {
		apiKey := os.Getenv("GROQ_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("GROQ_API_KEY not found")
		}
		return NewChat(ChatConfig{APIKey: apiKey, Model: groqModel, BaseURL: groqBaseURL}), nil
	},
	ProviderGemini: func(ctx context.Context) (api.LLMGenerator, error) {
		apiKey := os.Getenv("GOOGLE_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("GOOGLE_API_KEY not found")
		}
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  apiKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create genai client: %w", err)
		}
		return gemini.NewGenerator(client, geminiModel), nil
	},
}

// Resolve returns a generator for the given provider identifier.
// The client is constructed fresh on every call so that rotated credentials
// take effect without a process restart.
func Resolve(ctx context.Context, providerID string) (api.LLMGenerator, error) {
	f, ok := registry[providerID]
	if !ok {
		return nil, fmt.Errorf("unknown LLM provider: %s", providerID)
	}
	return f(ctx)
}

// Known returns the registered provider identifiers, sorted.
func Known() []string {
	ids := make([]string, 0, len(registry))
	for id := range registry {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

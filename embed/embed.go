// Package embed resolves embedding providers and hosts the shared cosine
// similarity math used by the vector index and embedding-based scorers.
package embed

import (
	"context"
	"fmt"
	"math"
	"os"

	"google.golang.org/genai"

	"github.com/datar-psa/rageval/api"
	"github.com/datar-psa/rageval/gemini"
)

// Provider identifiers. The set is closed; Resolve rejects anything else.
const (
	ProviderOffline = "offline"
	ProviderGemini  = "gemini"
)

// GeminiEmbeddingModel is the embedding model used by the gemini provider
const GeminiEmbeddingModel = "text-embedding-005"

// geminiTaskType is symmetric so one embedder serves both index chunks and
// incoming questions
const geminiTaskType = "SEMANTIC_SIMILARITY"

// Resolve returns the embedder for the given provider identifier.
// "offline" needs no credentials; "gemini" requires GOOGLE_API_KEY.
func Resolve(ctx context.Context, providerID string) (api.Embedder, error) {
	switch providerID {
	case ProviderOffline:
		return NewOffline(), nil
	case ProviderGemini:
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
		return gemini.NewEmbedder(client, GeminiEmbeddingModel, gemini.WithTaskType(geminiTaskType)), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", providerID)
	}
}

// Cosine computes the cosine similarity between two vectors
// Returns a value between -1 and 1, where 1 means identical direction
func Cosine(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	normA = math.Sqrt(normA)
	normB = math.Sqrt(normB)

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (normA * normB)
}

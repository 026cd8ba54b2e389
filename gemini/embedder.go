package gemini

import (
	"context"
	"fmt"

	"github.com/datar-psa/rageval/api"
	"google.golang.org/genai"
)

// Embedder wraps a genai.Client to implement the Embedder interface
type Embedder struct {
	client    *genai.Client
	modelName string
	taskType  string
}

// EmbedderOption configures an Embedder
type EmbedderOption func(*Embedder)

// WithTaskType sets the embedding task type hint (e.g. "RETRIEVAL_DOCUMENT"
// when embedding index chunks, "RETRIEVAL_QUERY" when embedding questions).
// Matching task types on both sides improves retrieval quality.
func WithTaskType(taskType string) EmbedderOption {
	return func(e *Embedder) {
		e.taskType = taskType
	}
}

// NewEmbedder creates a new Gemini embedder
// client: genai.Client from google.golang.org/genai
// modelName: the embedding model to use (e.g., "text-embedding-005")
func NewEmbedder(client *genai.Client, modelName string, opts ...EmbedderOption) *Embedder {
	e := &Embedder{
		client:    client,
		modelName: modelName,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Embed implements Embedder.Embed
// Note: This uses the Embedding API which is separate from the text generation API
func (e *Embedder) Embed(ctx context.Context, text string) ([]float64, error) {
	contents := []*genai.Content{
		{
			Parts: []*genai.Part{
				{Text: text},
			},
		},
	}

	cfg := &genai.EmbedContentConfig{}
	if e.taskType != "" {
		cfg.TaskType = e.taskType
	}

	result, err := e.client.Models.EmbedContent(ctx, e.modelName, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}

	if len(result.Embeddings) == 0 {
		return nil, fmt.Errorf("no embeddings returned")
	}
	if len(result.Embeddings[0].Values) == 0 {
		return nil, fmt.Errorf("empty embedding vector")
	}

	// Convert []float32 to []float64
	values := result.Embeddings[0].Values
	embedding := make([]float64, len(values))
	for i, v := range values {
		embedding[i] = float64(v)
	}

	return embedding, nil
}

// Verify that Embedder implements api.Embedder
var _ api.Embedder = (*Embedder)(nil)

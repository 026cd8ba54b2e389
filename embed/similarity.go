package embed

import (
	"context"
	"fmt"

	"github.com/datar-psa/rageval/api"
)

// SimilarityOptions configures the Similarity scorer
type SimilarityOptions struct {
	// Embedder is used to generate embeddings for text
	Embedder api.Embedder
}

// Similarity returns a scorer that measures semantic similarity using embeddings.
// It computes cosine similarity between the output and expected text embeddings.
func Similarity(opts SimilarityOptions) api.Scorer {
	return &similarityScorer{opts: opts}
}

type similarityScorer struct {
	opts SimilarityOptions
}

func (s *similarityScorer) Score(ctx context.Context, in api.ScoreInputs) api.Score {
	result := api.Score{
		Name:     "Similarity",
		Metadata: make(map[string]any),
	}

	if in.Expected == "" {
		result.Error = api.ErrNoExpectedValue
		result.Score = 0
		return result
	}

	if s.opts.Embedder == nil {
		result.Error = fmt.Errorf("embedder is required")
		result.Score = 0
		return result
	}

	outputEmbed, err := s.opts.Embedder.Embed(ctx, in.Output)
	if err != nil {
		result.Error = fmt.Errorf("failed to embed output: %w", err)
		result.Score = 0
		return result
	}

	expectedEmbed, err := s.opts.Embedder.Embed(ctx, in.Expected)
	if err != nil {
		result.Error = fmt.Errorf("failed to embed expected: %w", err)
		result.Score = 0
		return result
	}

	similarity := Cosine(outputEmbed, expectedEmbed)

	// Normalize from [-1, 1] to [0, 1]
	// In practice, embeddings are usually positive, so similarity is typically in [0, 1]
	// But we handle the full range for robustness
	normalizedScore := (similarity + 1.0) / 2.0
	if normalizedScore < 0 {
		normalizedScore = 0
	}
	if normalizedScore > 1 {
		normalizedScore = 1
	}

	result.Score = normalizedScore
	result.Metadata["cosine_similarity"] = similarity
	result.Metadata["embedding_dim"] = len(outputEmbed)

	return result
}

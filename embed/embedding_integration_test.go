package embed

import (
	"context"
	"testing"

	"github.com/datar-psa/rageval/api"
	"github.com/datar-psa/rageval/internal/testutils"
)

// TestSimilarity_Integration exercises the Similarity scorer with real Gemini
// embeddings. Requires Google Cloud credentials; requests are cached with
// hypert, set UPDATE_TESTS=true to re-record.
func TestSimilarity_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()

	embedder := testutils.NewGeminiEmbedder(t, testutils.DefaultGeminiTestConfig("embedding"), "text-embedding-005")

	tests := []struct {
		name     string
		output   string
		expected string
		minScore float64
		maxScore float64
	}{
		{
			name:     "identical text",
			output:   "Refunds are issued within 30 days.",
			expected: "Refunds are issued within 30 days.",
			minScore: 0.95,
			maxScore: 1.0,
		},
		{
			name:     "semantically similar",
			output:   "Refunds are issued within 30 days.",
			expected: "You can get your money back for a month after buying.",
			minScore: 0.75,
			maxScore: 1.0,
		},
		{
			name:     "unrelated",
			output:   "Refunds are issued within 30 days.",
			expected: "The weather in Oslo is cold in January.",
			minScore: 0.0,
			maxScore: 0.7,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scorer := Similarity(SimilarityOptions{Embedder: embedder})
			result := scorer.Score(ctx, api.ScoreInputs{Output: tt.output, Expected: tt.expected})

			if result.Error != nil {
				t.Fatalf("Similarity.Score() unexpected error = %v", result.Error)
			}
			if result.Score < tt.minScore || result.Score > tt.maxScore {
				t.Errorf("Similarity.Score() score = %v, want between %v and %v", result.Score, tt.minScore, tt.maxScore)
			}
		})
	}
}

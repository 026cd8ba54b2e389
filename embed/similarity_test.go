package embed

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/datar-psa/rageval/api"
)

// mockEmbedder is a simple mock for unit tests
type mockEmbedder struct {
	embeddings map[string][]float64
	err        error
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	if m.err != nil {
		return nil, m.err
	}
	if emb, ok := m.embeddings[text]; ok {
		return emb, nil
	}
	// Return a default embedding if not found
	return []float64{1.0, 0.0, 0.0}, nil
}

func TestSimilarity_Unit(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name         string
		embeddings   map[string][]float64
		embedErr     error
		output       string
		expected     string
		wantErr      error
		wantMinScore float64
		wantMaxScore float64
	}{
		{
			name: "identical embeddings",
			embeddings: map[string][]float64{
				"hello": {1.0, 0.0, 0.0},
			},
			output:       "hello",
			expected:     "hello",
			wantMinScore: 0.99,
			wantMaxScore: 1.0,
		},
		{
			name: "very similar embeddings",
			embeddings: map[string][]float64{
				"What is the type of leave?":       {1.0, 0.1, 0.0},
				"Please provide type of the leave": {1.0, 0.15, 0.05},
			},
			output:       "What is the type of leave?",
			expected:     "Please provide type of the leave",
			wantMinScore: 0.8,
			wantMaxScore: 1.0,
		},
		{
			name: "orthogonal embeddings",
			embeddings: map[string][]float64{
				"a": {1.0, 0.0, 0.0},
				"b": {0.0, 1.0, 0.0},
			},
			output:       "a",
			expected:     "b",
			wantMinScore: 0.4, // Normalized from 0 to [0,1] range
			wantMaxScore: 0.6,
		},
		{
			name: "opposite embeddings",
			embeddings: map[string][]float64{
				"a": {1.0, 0.0, 0.0},
				"b": {-1.0, 0.0, 0.0},
			},
			output:       "a",
			expected:     "b",
			wantMinScore: 0.0,
			wantMaxScore: 0.1, // Normalized from -1 to [0,1] range
		},
		{
			name:         "no expected value",
			output:       "hello",
			expected:     "",
			wantErr:      api.ErrNoExpectedValue,
			wantMinScore: 0.0,
			wantMaxScore: 0.0,
		},
		{
			name:         "embedder error",
			embedErr:     fmt.Errorf("API error"),
			output:       "hello",
			expected:     "world",
			wantMinScore: 0.0,
			wantMaxScore: 0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scorer := Similarity(SimilarityOptions{
				Embedder: &mockEmbedder{embeddings: tt.embeddings, err: tt.embedErr},
			})
			result := scorer.Score(ctx, api.ScoreInputs{Output: tt.output, Expected: tt.expected})

			if tt.wantErr != nil && result.Error != tt.wantErr {
				t.Errorf("Similarity.Score() error = %v, wantErr %v", result.Error, tt.wantErr)
			}
			if tt.embedErr != nil && result.Error == nil {
				t.Error("Similarity.Score() expected an error, got nil")
			}

			if result.Score < tt.wantMinScore || result.Score > tt.wantMaxScore {
				t.Errorf("Similarity.Score() score = %v, want in [%v, %v]", result.Score, tt.wantMinScore, tt.wantMaxScore)
			}
		})
	}
}

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a    []float64
		b    []float64
		want float64
	}{
		{name: "identical", a: []float64{1, 0}, b: []float64{1, 0}, want: 1},
		{name: "orthogonal", a: []float64{1, 0}, b: []float64{0, 1}, want: 0},
		{name: "opposite", a: []float64{1, 0}, b: []float64{-1, 0}, want: -1},
		{name: "length mismatch", a: []float64{1, 0}, b: []float64{1}, want: 0},
		{name: "zero vector", a: []float64{0, 0}, b: []float64{1, 0}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Cosine(tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Cosine() = %v, want %v", got, tt.want)
			}
		})
	}
}

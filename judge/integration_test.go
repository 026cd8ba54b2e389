package judge

import (
	"context"
	"testing"

	"github.com/datar-psa/rageval/api"
	"github.com/datar-psa/rageval/internal/testutils"
)

// TestFactuality_Integration exercises the Factuality scorer against the real
// Gemini API. Requires Google Cloud credentials; requests are cached with
// hypert, set UPDATE_TESTS=true to re-record.
func TestFactuality_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()

	llmGen := testutils.NewGeminiGenerator(t, testutils.DefaultGeminiTestConfig("factuality"), "publishers/google/models/gemini-2.5-flash")

	tests := []struct {
		name     string
		input    string
		output   string
		expected string
		minScore float64
		maxScore float64
	}{
		{
			name:     "correct refund window",
			input:    "How long is the refund window?",
			output:   "30 days",
			expected: "30 days",
			minScore: 0.9,
			maxScore: 1.0,
		},
		{
			name:     "correct with different wording",
			input:    "How long does standard shipping take?",
			output:   "It usually arrives within five business days",
			expected: "5 business days",
			minScore: 0.8,
			maxScore: 1.0,
		},
		{
			name:     "incorrect answer",
			input:    "How long is the refund window?",
			output:   "90 days",
			expected: "30 days",
			minScore: 0.0,
			maxScore: 0.3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scorer := Factuality(llmGen, FactualityOptions{})
			result := scorer.Score(ctx, api.ScoreInputs{Input: tt.input, Output: tt.output, Expected: tt.expected})

			if result.Error != nil {
				t.Fatalf("Factuality.Score() unexpected error = %v", result.Error)
			}
			if result.Score < tt.minScore || result.Score > tt.maxScore {
				t.Errorf("Factuality.Score() score = %v, want between %v and %v", result.Score, tt.minScore, tt.maxScore)
				t.Logf("Raw response: %v", result.Metadata["raw_response"])
			}
		})
	}
}

// TestFaithfulness_Integration exercises the structured faithfulness rubric
// against the real Gemini API.
func TestFaithfulness_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()

	llmGen := testutils.NewGeminiGenerator(t, testutils.DefaultGeminiTestConfig("faithfulness"), "publishers/google/models/gemini-2.5-flash")

	tests := []struct {
		name     string
		input    string
		output   string
		context  string
		minScore float64
		maxScore float64
	}{
		{
			name:     "fully grounded answer",
			input:    "How long is the refund window?",
			output:   "Refunds are issued within 30 days of purchase.",
			context:  "Refunds are issued within 30 days of purchase. Contact support to start a refund.",
			minScore: 0.8,
			maxScore: 1.0,
		},
		{
			name:     "fabricated answer",
			input:    "How long is the refund window?",
			output:   "Refunds are issued within one year, no questions asked.",
			context:  "Refunds are issued within 30 days of purchase.",
			minScore: 0.0,
			maxScore: 0.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scorer := Faithfulness(llmGen, FaithfulnessOptions{})
			result := scorer.Score(ctx, api.ScoreInputs{Input: tt.input, Output: tt.output, Context: tt.context})

			if result.Error != nil {
				t.Fatalf("Faithfulness.Score() unexpected error = %v", result.Error)
			}
			if result.Score < tt.minScore || result.Score > tt.maxScore {
				t.Errorf("Faithfulness.Score() score = %v, want between %v and %v", result.Score, tt.minScore, tt.maxScore)
				t.Logf("Faithfulness: %v, Relevance: %v", result.Metadata["faithfulness"], result.Metadata["relevance"])
			}
		})
	}
}

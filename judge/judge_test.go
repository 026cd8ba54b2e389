package judge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/datar-psa/rageval/api"
)

// mockLLMGenerator is a simple mock for unit tests
type mockLLMGenerator struct {
	response string
	err      error
}

func (m *mockLLMGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func (m *mockLLMGenerator) StructuredGenerate(ctx context.Context, prompt string, schema map[string]interface{}) (map[string]interface{}, error) {
	if m.err != nil {
		return nil, m.err
	}

	// Parse the response as JSON for structured responses
	var result map[string]interface{}
	if err := json.Unmarshal([]byte(m.response), &result); err != nil {
		return nil, fmt.Errorf("failed to parse mock response as JSON: %w", err)
	}
	return result, nil
}

func TestFactuality_Unit(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		llmResponse string
		llmErr      error
		input       string
		output      string
		expected    string
		wantErr     bool
		wantScore   float64
	}{
		{
			name:        "fully correct",
			llmResponse: "The answer states the same fact as the expected one.\nSCORE: 10",
			input:       "What is the capital of France?",
			output:      "Paris is the capital of France",
			expected:    "Paris",
			wantScore:   1.0,
		},
		{
			name:        "partially correct",
			llmResponse: "Some facts are present, one is missing.\nSCORE: 5",
			input:       "What is the refund window?",
			output:      "Refunds are possible",
			expected:    "Refunds within 30 days",
			wantScore:   0.5,
		},
		{
			name:        "completely wrong",
			llmResponse: "The answer contradicts the expected one.\nSCORE: 0",
			input:       "What is the capital of England?",
			output:      "Paris",
			expected:    "London",
			wantScore:   0.0,
		},
		{
			name:        "no expected value",
			llmResponse: "SCORE: 10",
			output:      "anything",
			expected:    "",
			wantErr:     true,
			wantScore:   0.0,
		},
		{
			name:      "llm failure",
			llmErr:    errors.New("API unavailable"),
			output:    "anything",
			expected:  "something",
			wantErr:   true,
			wantScore: 0.0,
		},
		{
			name:        "no score marker",
			llmResponse: "I cannot evaluate this.",
			output:      "anything",
			expected:    "something",
			wantErr:     true,
			wantScore:   0.0,
		},
		{
			name:        "score out of range",
			llmResponse: "SCORE: 15",
			output:      "anything",
			expected:    "something",
			wantErr:     true,
			wantScore:   0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scorer := Factuality(&mockLLMGenerator{response: tt.llmResponse, err: tt.llmErr}, FactualityOptions{})
			result := scorer.Score(ctx, api.ScoreInputs{Input: tt.input, Output: tt.output, Expected: tt.expected})

			if tt.wantErr && result.Error == nil {
				t.Error("Factuality.Score() expected an error, got nil")
			}
			if !tt.wantErr && result.Error != nil {
				t.Errorf("Factuality.Score() error = %v", result.Error)
			}
			if result.Score != tt.wantScore {
				t.Errorf("Factuality.Score() score = %v, want %v", result.Score, tt.wantScore)
			}
		})
	}
}

func TestFactuality_NilLLM(t *testing.T) {
	scorer := Factuality(nil, FactualityOptions{})
	result := scorer.Score(context.Background(), api.ScoreInputs{Output: "a", Expected: "b"})
	if result.Error == nil {
		t.Error("expected error for nil LLM")
	}
}

func TestFaithfulness_Unit(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		llmResponse string
		llmErr      error
		opts        FaithfulnessOptions
		input       string
		output      string
		context     string
		wantErr     bool
		wantScore   float64
	}{
		{
			name:        "excellent on both dimensions",
			llmResponse: `{"faithfulness": "E", "relevance": "E", "explanation": "Fully grounded and on topic."}`,
			input:       "What is the refund policy?",
			output:      "Refunds within 30 days.",
			context:     "Our refund policy allows returns within 30 days.",
			wantScore:   1.0,
		},
		{
			name:        "adequate on both dimensions",
			llmResponse: `{"faithfulness": "C", "relevance": "C"}`,
			input:       "q",
			output:      "a",
			context:     "ctx",
			wantScore:   0.5,
		},
		{
			name:        "mixed ratings equal weights",
			llmResponse: `{"faithfulness": "E", "relevance": "C"}`,
			input:       "q",
			output:      "a",
			context:     "ctx",
			wantScore:   0.75,
		},
		{
			name:        "weighted toward faithfulness",
			llmResponse: `{"faithfulness": "E", "relevance": "A"}`,
			opts:        FaithfulnessOptions{Weights: [2]float64{3, 1}},
			input:       "q",
			output:      "a",
			context:     "ctx",
			wantScore:   0.75,
		},
		{
			name:      "no context",
			input:     "q",
			output:    "a",
			context:   "",
			wantErr:   true,
			wantScore: 0.0,
		},
		{
			name:        "missing dimension",
			llmResponse: `{"faithfulness": "E"}`,
			input:       "q",
			output:      "a",
			context:     "ctx",
			wantErr:     true,
			wantScore:   0.0,
		},
		{
			name:        "invalid category",
			llmResponse: `{"faithfulness": "Z", "relevance": "C"}`,
			input:       "q",
			output:      "a",
			context:     "ctx",
			wantErr:     true,
			wantScore:   0.0,
		},
		{
			name:      "llm failure",
			llmErr:    errors.New("quota exceeded"),
			input:     "q",
			output:    "a",
			context:   "ctx",
			wantErr:   true,
			wantScore: 0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scorer := Faithfulness(&mockLLMGenerator{response: tt.llmResponse, err: tt.llmErr}, tt.opts)
			result := scorer.Score(ctx, api.ScoreInputs{Input: tt.input, Output: tt.output, Context: tt.context})

			if tt.wantErr && result.Error == nil {
				t.Error("Faithfulness.Score() expected an error, got nil")
			}
			if !tt.wantErr && result.Error != nil {
				t.Errorf("Faithfulness.Score() error = %v", result.Error)
			}
			if math.Abs(result.Score-tt.wantScore) > 1e-9 {
				t.Errorf("Faithfulness.Score() score = %v, want %v", result.Score, tt.wantScore)
			}
		})
	}
}

// mockModerationProvider is a simple mock for unit tests
type mockModerationProvider struct {
	result *api.ModerationResult
	err    error
}

func (m *mockModerationProvider) Moderate(ctx context.Context, content string) (*api.ModerationResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

func TestModeration_Unit(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		provider  *mockModerationProvider
		opts      ModerationOptions
		wantErr   bool
		wantScore float64
	}{
		{
			name: "safe content",
			provider: &mockModerationProvider{result: &api.ModerationResult{Categories: []api.ModerationCategory{
				{Name: "Toxic", Confidence: 0.1},
			}}},
			wantScore: 1.0,
		},
		{
			name: "unsafe content above threshold",
			provider: &mockModerationProvider{result: &api.ModerationResult{Categories: []api.ModerationCategory{
				{Name: "Toxic", Confidence: 0.9},
			}}},
			wantScore: 0.0,
		},
		{
			name: "flagged category not in filter",
			provider: &mockModerationProvider{result: &api.ModerationResult{Categories: []api.ModerationCategory{
				{Name: "Finance", Confidence: 0.9},
			}}},
			opts:      ModerationOptions{Categories: []string{"Toxic"}},
			wantScore: 1.0,
		},
		{
			name:      "provider error",
			provider:  &mockModerationProvider{err: errors.New("API error")},
			wantErr:   true,
			wantScore: 0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scorer := Moderation(tt.provider, tt.opts)
			result := scorer.Score(ctx, api.ScoreInputs{Output: "some answer"})

			if tt.wantErr && result.Error == nil {
				t.Error("Moderation.Score() expected an error, got nil")
			}
			if !tt.wantErr && result.Error != nil {
				t.Errorf("Moderation.Score() error = %v", result.Error)
			}
			if result.Score != tt.wantScore {
				t.Errorf("Moderation.Score() score = %v, want %v", result.Score, tt.wantScore)
			}
		})
	}
}

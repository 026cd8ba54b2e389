package judge

import (
	"context"
	"fmt"

	"github.com/datar-psa/rageval/api"
)

// FaithfulnessOptions configures the Faithfulness scorer
type FaithfulnessOptions struct {
	// Weights for each dimension in order: [faithfulness, relevance]
	// If weight is 0, that dimension is excluded from scoring
	// If all weights are 0, defaults to equal weights
	Weights [2]float64
}

// Faithfulness returns a scorer that evaluates whether an answer is grounded
// in the retrieved context and relevant to the question, in a single
// LLM-judge call using a rubric with A–E categories.
// The final score is a weighted blend of the dimensions, normalized to [0,1].
func Faithfulness(llm api.LLMGenerator, opts FaithfulnessOptions) api.Scorer {
	return &faithfulnessScorer{
		opts: opts,
		llm:  llm,
	}
}

type faithfulnessScorer struct {
	opts FaithfulnessOptions
	llm  api.LLMGenerator
}

const faithfulnessPromptTemplate = `You are evaluating a retrieval-augmented answer against the passages it was generated from.

[BEGIN DATA]
[Question]: %s
[Retrieved Context]: %s
[Answer]: %s
[END DATA]

Definitions:
- Faithfulness: every claim in the answer is supported by the retrieved context; no invented facts, no contradictions of the context.
- Relevance: the answer actually addresses the question that was asked, without drifting to adjacent topics.

Rate each dimension independently using these categories:
(A) Unacceptable
(B) Below acceptable
(C) Adequate
(D) Good
(E) Excellent

Provide your assessment with ratings for each dimension.`

func (s *faithfulnessScorer) Score(ctx context.Context, in api.ScoreInputs) api.Score {
	result := api.Score{
		Name:     "Faithfulness",
		Metadata: make(map[string]any),
	}

	if in.Context == "" {
		result.Error = api.ErrNoContextValue
		result.Score = 0
		return result
	}

	if s.llm == nil {
		result.Error = fmt.Errorf("LLM generator is required")
		result.Score = 0
		return result
	}

	prompt := fmt.Sprintf(faithfulnessPromptTemplate, in.Input, in.Context, in.Output)

	// Define schema for structured response
	schema := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"faithfulness": map[string]interface{}{
				"type":        "string",
				"enum":        []string{"A", "B", "C", "D", "E"},
				"description": "Faithfulness rating",
			},
			"relevance": map[string]interface{}{
				"type":        "string",
				"enum":        []string{"A", "B", "C", "D", "E"},
				"description": "Relevance rating",
			},
			"explanation": map[string]interface{}{
				"type":        "string",
				"description": "Short justification for the ratings",
			},
		},
		"required": []string{"faithfulness", "relevance"},
	}

	structuredResponse, err := s.llm.StructuredGenerate(ctx, prompt, schema)
	if err != nil {
		result.Error = fmt.Errorf("%w: %v", api.ErrLLMGenerationFailed, err)
		result.Score = 0
		return result
	}

	var choices [2]string
	dimensions := [2]string{"faithfulness", "relevance"}
	for i, dim := range dimensions {
		choice, ok := structuredResponse[dim].(string)
		if !ok {
			result.Error = fmt.Errorf("missing %s rating in structured response", dim)
			result.Score = 0
			result.Metadata["raw_response"] = structuredResponse
			return result
		}
		choices[i] = choice
	}

	weights := s.opts.Weights
	if weights[0] == 0 && weights[1] == 0 {
		weights = [2]float64{0.5, 0.5}
	}

	var weightedSum, totalWeight float64
	for i, choice := range choices {
		value, err := categoryValue(choice)
		if err != nil {
			result.Error = err
			result.Score = 0
			result.Metadata["raw_response"] = structuredResponse
			return result
		}
		weightedSum += value * weights[i]
		totalWeight += weights[i]
		result.Metadata[dimensions[i]] = choice
	}

	result.Score = weightedSum / totalWeight
	if explanation, ok := structuredResponse["explanation"].(string); ok {
		result.Metadata["explanation"] = explanation
	}

	return result
}

// categoryValue maps an A–E rubric category to a value in [0,1]
func categoryValue(choice string) (float64, error) {
	switch choice {
	case "A":
		return 0.0, nil
	case "B":
		return 0.25, nil
	case "C":
		return 0.5, nil
	case "D":
		return 0.75, nil
	case "E":
		return 1.0, nil
	default:
		return 0, fmt.Errorf("unexpected rubric category: %q", choice)
	}
}

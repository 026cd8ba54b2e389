// Package scoring implements the three corpus-level scoring procedures
// (retrieval recall, generation factuality, RAGAS faithfulness) and the
// runner that sequences them. Each procedure reads a fixture file, evaluates
// the whole question set, and persists its scalar score at the fixed
// location the report aggregator harvests.
package scoring

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/datar-psa/rageval/api"
	"github.com/datar-psa/rageval/engine"
	"github.com/datar-psa/rageval/providers"
)

// Case is one fixture entry. ExpectedSource drives retrieval recall,
// ExpectedKeywords drives generation factuality; RAGAS uses the question
// alone against the retrieved context.
type Case struct {
	Question         string   `json:"question"`
	ExpectedSource   string   `json:"expected_source,omitempty"`
	ExpectedKeywords []string `json:"expected_keywords,omitempty"`
}

// LoadFixture reads a fixture file of evaluation cases.
func LoadFixture(path string) ([]Case, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture %s: %w", path, err)
	}
	var cases []Case
	if err := json.Unmarshal(data, &cases); err != nil {
		return nil, fmt.Errorf("failed to parse fixture %s: %w", path, err)
	}
	if len(cases) == 0 {
		return nil, fmt.Errorf("fixture %s contains no cases", path)
	}
	return cases, nil
}

// Options configures one scoring procedure invocation.
type Options struct {
	// FixturePath locates the test cases
	FixturePath string
	// IndexDir locates the vector index
	IndexDir string
	// TopK is the retrieval depth
	TopK int
	// EmbeddingProvider selects the embedder ("offline", "gemini")
	EmbeddingProvider string
	// LLMProvider selects the generation and judge model
	LLMProvider string
	// ResultsDir is where the scalar score file is written
	ResultsDir string
	// Prompt retargets the engine's instruction for this run
	Prompt *engine.PromptOverride
	// Engine overrides the default engine, for tests
	Engine *engine.Engine
	// Judge overrides judge-model resolution, for tests
	Judge api.LLMGenerator
	// Moderation, when set, vetoes unsafe answers during generation scoring
	Moderation api.ModerationProvider
	// Logger defaults to a nop logger
	Logger *zap.Logger
}

func (o *Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

func (o *Options) engine() *engine.Engine {
	if o.Engine != nil {
		return o.Engine
	}
	return engine.New()
}

func (o *Options) judge(ctx context.Context) (api.LLMGenerator, error) {
	if o.Judge != nil {
		return o.Judge, nil
	}
	return providers.Resolve(ctx, o.LLMProvider)
}

func (o *Options) answer(ctx context.Context, question string) (*engine.Result, error) {
	return o.engine().Answer(ctx, engine.Request{
		Question:          question,
		IndexDir:          o.IndexDir,
		TopK:              o.TopK,
		EmbeddingProvider: o.EmbeddingProvider,
		LLMProvider:       o.LLMProvider,
		Override:          o.Prompt,
	})
}

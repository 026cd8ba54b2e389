package impact

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/datar-psa/rageval/api"
	"github.com/datar-psa/rageval/engine"
	"github.com/datar-psa/rageval/providers"
	"github.com/datar-psa/rageval/report"
	"github.com/datar-psa/rageval/scoring"
	"github.com/datar-psa/rageval/store"
)

// ComparisonPlaceholder is stored as the change summary when the baseline
// comparison call fails. Comparison failures never abort the run.
const ComparisonPlaceholder = "Comparison unavailable."

const comparisonPromptTemplate = `Compare two answers to the same question and describe, in under two sentences, the direction and nature of the difference (e.g. more detailed, more cautious, shifted emphasis).

Question: %s

Baseline answer:
%s

New answer:
%s

Comparison:`

// Pacing between scoring phases. Embedding providers tolerate more load
// than generation providers, hence the asymmetry.
const (
	postRetrievalPause  = 10 * time.Second
	postGenerationPause = 30 * time.Second
)

// Options configures an orchestrator run.
type Options struct {
	// StorePath is the result store file
	StorePath string
	// FixturePath locates the evaluation question set
	FixturePath string
	// IndexDir locates the vector index
	IndexDir string
	// TopK is the retrieval depth per question
	TopK int
	// EmbeddingProvider selects the embedder
	EmbeddingProvider string
	// LLMProvider selects the generation, comparison and judge model
	LLMProvider string
	// ResultsDir is where scoring procedures leave their score files
	ResultsDir string
	// Runner executes the scoring phases; required
	Runner scoring.Runner
	// Engine overrides the default query engine, for tests
	Engine *engine.Engine
	// Comparer overrides comparison-model resolution, for tests
	Comparer api.LLMGenerator
	// Sleep overrides the inter-phase pause, for tests
	Sleep func(time.Duration)
	// Logger defaults to a nop logger
	Logger *zap.Logger
}

// Orchestrator walks (question, variant) cells through response generation,
// scoring and score harvest, persisting the result store after every cell
// mutation so an interrupted run resumes where it stopped.
type Orchestrator struct {
	opts   Options
	logger *zap.Logger
	sleep  func(time.Duration)
}

// New creates an Orchestrator.
func New(opts Options) *Orchestrator {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	sleep := opts.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}
	return &Orchestrator{opts: opts, logger: logger, sleep: sleep}
}

// Run evaluates the given variants in order. Unknown variant identifiers
// fail the whole run before any external call or store mutation. A scoring
// phase failure is fatal; everything persisted up to that point survives.
func (o *Orchestrator) Run(ctx context.Context, variantIDs []string) error {
	if o.opts.Runner == nil {
		return fmt.Errorf("scoring runner is required")
	}
	if err := ValidateIDs(variantIDs); err != nil {
		return err
	}

	cases, err := scoring.LoadFixture(o.opts.FixturePath)
	if err != nil {
		return err
	}

	st, err := store.Load(o.opts.StorePath)
	if err != nil {
		return err
	}

	for _, id := range variantIDs {
		variant, _ := Lookup(id)
		o.logger.Info("evaluating prompt variant",
			zap.String("variant", variant.ID),
			zap.Int("questions", len(cases)))

		if err := o.generateResponses(ctx, st, variant, cases); err != nil {
			return err
		}
		if err := o.runScoring(ctx, variant); err != nil {
			return err
		}
		if err := o.harvestScores(st, variant); err != nil {
			return err
		}
	}
	return nil
}

// generateResponses fills the variant's cell for every question, skipping
// cells that already hold a response. The store is saved after each cell so
// an interruption loses at most one question's work.
func (o *Orchestrator) generateResponses(ctx context.Context, st *store.Store, variant Variant, cases []scoring.Case) error {
	eng := o.opts.Engine
	if eng == nil {
		eng = engine.New()
	}

	for _, c := range cases {
		if st.HasResponse(c.Question, variant.ID) {
			o.logger.Debug("response already present, skipping",
				zap.String("question", c.Question),
				zap.String("variant", variant.ID))
			continue
		}

		result, err := eng.Answer(ctx, engine.Request{
			Question:          c.Question,
			IndexDir:          o.opts.IndexDir,
			TopK:              o.opts.TopK,
			EmbeddingProvider: o.opts.EmbeddingProvider,
			LLMProvider:       o.opts.LLMProvider,
			Override: &engine.PromptOverride{
				Instruction:  variant.Instruction,
				VariantLabel: variant.ID,
			},
		})
		if err != nil {
			return fmt.Errorf("failed to answer %q under variant %s: %w", c.Question, variant.ID, err)
		}

		cell := &api.PromptResult{
			Response: result.Answer,
			Metadata: api.ResultMetadata{
				RetrievedChunks:   result.RetrievedChunks,
				RetrievedMetadata: result.RetrievedMetadata,
				PromptVersion:     variant.ID,
			},
		}

		if variant.ID != BaselineVariant {
			if baseline, ok := st.Result(c.Question, BaselineVariant); ok && baseline.Response != "" {
				cell.ChangeSummary = o.summarizeChange(ctx, c.Question, baseline.Response, result.Answer)
			}
		}

		st.SetResult(c.Question, variant.ID, cell)
		if err := st.Save(); err != nil {
			return err
		}
		o.logger.Info("response generated",
			zap.String("question", c.Question),
			zap.String("variant", variant.ID))
	}
	return nil
}

// summarizeChange asks the comparison model how the new answer differs from
// the baseline. Failure degrades to a fixed placeholder.
func (o *Orchestrator) summarizeChange(ctx context.Context, question, baseline, answer string) string {
	comparer := o.opts.Comparer
	if comparer == nil {
		llm, err := providers.Resolve(ctx, o.opts.LLMProvider)
		if err != nil {
			o.logger.Warn("comparison model unavailable", zap.Error(err))
			return ComparisonPlaceholder
		}
		comparer = llm
	}

	summary, err := comparer.Generate(ctx, fmt.Sprintf(comparisonPromptTemplate, question, baseline, answer))
	if err != nil {
		o.logger.Warn("change-summary comparison failed", zap.Error(err))
		return ComparisonPlaceholder
	}
	return summary
}

// runScoring drives the three scoring procedures and the aggregator for the
// variant, in strict sequence with pacing pauses. Any phase failure aborts
// the whole run.
func (o *Orchestrator) runScoring(ctx context.Context, variant Variant) error {
	phases := []struct {
		req   scoring.Request
		pause time.Duration
	}{
		{req: scoring.Request{Phase: scoring.PhaseRetrieval}, pause: postRetrievalPause},
		{req: scoring.Request{Phase: scoring.PhaseGeneration}, pause: postGenerationPause},
		{req: scoring.Request{Phase: scoring.PhaseRagas}},
		{req: scoring.Request{Phase: scoring.PhaseAggregate, RunLabel: variant.ID}},
	}

	for _, p := range phases {
		req := p.req
		req.FixturePath = o.opts.FixturePath
		req.LLMProvider = o.opts.LLMProvider
		req.SystemPrompt = variant.Instruction
		req.VariantLabel = variant.ID

		o.logger.Info("scoring phase starting",
			zap.String("variant", variant.ID),
			zap.String("phase", string(req.Phase)))
		if err := o.opts.Runner.Run(ctx, req); err != nil {
			return err
		}
		if p.pause > 0 {
			o.sleep(p.pause)
		}
	}
	return nil
}

// harvestScores reads the variant's persisted report and broadcasts it to
// every question's cell, saving the store once. A missing report is a
// warning, not a failure.
func (o *Orchestrator) harvestScores(st *store.Store, variant Variant) error {
	rep, err := report.Load(o.opts.ResultsDir, variant.ID)
	if err != nil {
		o.logger.Warn("score report missing, cells left unscored",
			zap.String("variant", variant.ID),
			zap.Error(err))
		return nil
	}

	updated := st.AttachScores(variant.ID, rep)
	if err := st.Save(); err != nil {
		return err
	}
	o.logger.Info("scores attached",
		zap.String("variant", variant.ID),
		zap.Int("cells", updated))
	return nil
}

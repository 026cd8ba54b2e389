package main

import (
	"context"
	"fmt"
	"os"
	"time"

	language "cloud.google.com/go/language/apiv1"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/datar-psa/rageval/engine"
	"github.com/datar-psa/rageval/gemini"
	"github.com/datar-psa/rageval/report"
	"github.com/datar-psa/rageval/scoring"
)

// evalFlags are the flags shared by the three scoring commands.
type evalFlags struct {
	testFile     string
	llmProvider  string
	systemPrompt string
	variant      string
	moderate     bool
}

func (f *evalFlags) register(cmd *cobra.Command, withLLM bool) {
	cmd.Flags().StringVar(&f.testFile, "test-file", "", "Fixture file path")
	cmd.Flags().StringVar(&f.systemPrompt, "system-prompt", "", "System instruction override for the engine")
	cmd.Flags().StringVar(&f.variant, "variant", "", "Prompt variant label")
	if withLLM {
		cmd.Flags().StringVar(&f.llmProvider, "llm-provider", "", "LLM provider (default from config)")
		cmd.Flags().BoolVar(&f.moderate, "moderate", false, "Veto answers flagged by content moderation")
	}
	_ = cmd.MarkFlagRequired("test-file")
}

func (f *evalFlags) options(ctx context.Context) (scoring.Options, func(), error) {
	opts := scoring.Options{
		FixturePath:       f.testFile,
		IndexDir:          cfg.Paths.IndexDir,
		TopK:              cfg.Retrieval.TopK,
		EmbeddingProvider: cfg.Providers.Embedding,
		LLMProvider:       resolveFlag(f.llmProvider, cfg.Providers.LLM),
		ResultsDir:        cfg.Paths.ResultsDir,
		Logger:            logger,
	}
	if f.systemPrompt != "" {
		opts.Prompt = &engine.PromptOverride{
			Instruction:  f.systemPrompt,
			VariantLabel: f.variant,
		}
	}

	cleanup := func() {}
	if f.moderate {
		client, err := language.NewClient(ctx)
		if err != nil {
			return scoring.Options{}, nil, fmt.Errorf("failed to create moderation client: %w", err)
		}
		opts.Moderation = gemini.NewGoogleLanguageProvider(client)
		cleanup = func() { _ = client.Close() }
	}
	return opts, cleanup, nil
}

func buildEvalRetrievalCmd() *cobra.Command {
	var flags evalFlags
	cmd := &cobra.Command{
		Use:   "eval-retrieval",
		Short: "Score retrieval recall over a fixture",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, cleanup, err := flags.options(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()
			_, err = scoring.EvalRetrieval(cmd.Context(), opts)
			return err
		},
	}
	flags.register(cmd, false)
	return cmd
}

func buildEvalGenerationCmd() *cobra.Command {
	var flags evalFlags
	cmd := &cobra.Command{
		Use:   "eval-generation",
		Short: "Score generation factuality over a fixture",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, cleanup, err := flags.options(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()
			_, err = scoring.EvalGeneration(cmd.Context(), opts)
			return err
		},
	}
	flags.register(cmd, true)
	return cmd
}

func buildEvalRagasCmd() *cobra.Command {
	var flags evalFlags
	cmd := &cobra.Command{
		Use:   "eval-ragas",
		Short: "Score answer faithfulness over a fixture",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, cleanup, err := flags.options(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()
			_, err = scoring.EvalRagas(cmd.Context(), opts)
			return err
		},
	}
	flags.register(cmd, true)
	return cmd
}

func buildAggregateCmd() *cobra.Command {
	var saveName string
	cmd := &cobra.Command{
		Use:   "aggregate",
		Short: "Combine persisted sub-scores into a quality report",
		RunE: func(cmd *cobra.Command, args []string) error {
			rep, err := report.NewAggregator(cfg.Paths.ResultsDir, logger).Run(saveName)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "RQI: %.3f  Grade: %s\n%s\n", rep.RQI, rep.Grade, rep.Justification)
			return nil
		},
	}
	cmd.Flags().StringVar(&saveName, "save-name", "", "Persist the report under this run label")
	return cmd
}

// buildRunCmd drives the full scoring suite for one run label: the three
// scoring phases in strict sequence with pacing pauses, then aggregation.
func buildRunCmd() *cobra.Command {
	var (
		llmProvider  string
		runName      string
		useSynthetic bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full evaluation suite",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			provider := resolveFlag(llmProvider, cfg.Providers.LLM)

			base := scoring.Options{
				IndexDir:          cfg.Paths.IndexDir,
				TopK:              cfg.Retrieval.TopK,
				EmbeddingProvider: cfg.Providers.Embedding,
				LLMProvider:       provider,
				ResultsDir:        cfg.Paths.ResultsDir,
				Logger:            logger,
			}

			phases := []struct {
				name    string
				fixture string
				pause   time.Duration
				eval    func(context.Context, scoring.Options) (float64, error)
			}{
				{"retrieval", "test_retrieval.json", 10 * time.Second, scoring.EvalRetrieval},
				{"generation", "test_generation.json", 30 * time.Second, scoring.EvalGeneration},
				{"ragas", "test_ragas.json", 0, scoring.EvalRagas},
			}

			for _, phase := range phases {
				opts := base
				opts.FixturePath = cfg.Fixture(phase.fixture, useSynthetic)
				logger.Info("evaluation phase starting", zap.String("phase", phase.name))
				score, err := phase.eval(ctx, opts)
				if err != nil {
					return fmt.Errorf("%s evaluation failed: %w", phase.name, err)
				}
				logger.Info("evaluation phase finished",
					zap.String("phase", phase.name),
					zap.Float64("score", score))
				if phase.pause > 0 {
					logger.Info("pausing before next phase", zap.Duration("pause", phase.pause))
					time.Sleep(phase.pause)
				}
			}

			rep, err := report.NewAggregator(cfg.Paths.ResultsDir, logger).Run(runName)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "RQI: %.3f  Grade: %s\n%s\n", rep.RQI, rep.Grade, rep.Justification)
			return nil
		},
	}
	cmd.Flags().StringVar(&llmProvider, "llm-provider", "", "LLM provider (default from config)")
	cmd.Flags().StringVar(&runName, "run-name", "", "Label for the persisted report")
	cmd.Flags().BoolVar(&useSynthetic, "use-synthetic", true, "Use synthetic fixture variants")
	return cmd
}

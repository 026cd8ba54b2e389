package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/datar-psa/rageval/embed"
	"github.com/datar-psa/rageval/engine"
	"github.com/datar-psa/rageval/impact"
	"github.com/datar-psa/rageval/index"
	"github.com/datar-psa/rageval/scoring"
)

// buildQueryCmd answers a single question through the full pipeline and
// prints the result as JSON.
func buildQueryCmd() *cobra.Command {
	var (
		question          string
		topK              int
		embeddingProvider string
		llmProvider       string
		systemPrompt      string
		variant           string
	)
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Answer one question against the index",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := engine.New().Answer(cmd.Context(), engine.Request{
				Question:          question,
				IndexDir:          cfg.Paths.IndexDir,
				TopK:              resolveTopK(topK),
				EmbeddingProvider: resolveFlag(embeddingProvider, cfg.Providers.Embedding),
				LLMProvider:       resolveFlag(llmProvider, cfg.Providers.LLM),
				SystemPrompt:      systemPrompt,
				VariantLabel:      variant,
			})
			if err != nil {
				return err
			}
			return json.NewEncoder(os.Stdout).Encode(result)
		},
	}
	cmd.Flags().StringVar(&question, "question", "", "Question to answer")
	cmd.Flags().IntVar(&topK, "top-k", 0, "Number of chunks to retrieve (default from config)")
	cmd.Flags().StringVar(&embeddingProvider, "embedding-provider", "", "Embedding provider (default from config)")
	cmd.Flags().StringVar(&llmProvider, "llm-provider", "", "LLM provider (default from config)")
	cmd.Flags().StringVar(&systemPrompt, "system-prompt", "", "Explicit system instruction")
	cmd.Flags().StringVar(&variant, "variant", "", "Prompt variant label for the result")
	_ = cmd.MarkFlagRequired("question")
	return cmd
}

// buildIndexCmd groups index maintenance commands.
func buildIndexCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Manage the vector index",
	}
	cmd.AddCommand(buildIndexBuildCmd())
	return cmd
}

func buildIndexBuildCmd() *cobra.Command {
	var (
		docsDir           string
		chunkSize         int
		embeddingProvider string
	)
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the vector index from a directory of documents",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			docs, err := loadDocuments(docsDir)
			if err != nil {
				return err
			}
			if len(docs) == 0 {
				return fmt.Errorf("no documents found in %s", docsDir)
			}

			embedder, err := embed.Resolve(ctx, resolveFlag(embeddingProvider, cfg.Providers.Embedding))
			if err != nil {
				return err
			}
			if chunkSize == 0 {
				chunkSize = cfg.Retrieval.ChunkSize
			}
			ix, err := index.Build(ctx, embedder, docs, chunkSize)
			if err != nil {
				return err
			}
			if err := ix.Save(cfg.Paths.IndexDir); err != nil {
				return err
			}
			logger.Info("index built",
				zap.Int("documents", len(docs)),
				zap.String("index_dir", cfg.Paths.IndexDir))
			return nil
		},
	}
	cmd.Flags().StringVar(&docsDir, "docs-dir", "", "Directory of source documents (.md, .txt)")
	cmd.Flags().IntVar(&chunkSize, "chunk-size", 0, "Chunk size in characters (default from config)")
	cmd.Flags().StringVar(&embeddingProvider, "embedding-provider", "", "Embedding provider (default from config)")
	_ = cmd.MarkFlagRequired("docs-dir")
	return cmd
}

func loadDocuments(dir string) ([]index.Document, error) {
	var docs []index.Document
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext != ".md" && ext != ".txt" {
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		docs = append(docs, index.Document{
			Source:  filepath.Base(path),
			Content: string(content),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read documents from %s: %w", dir, err)
	}
	return docs, nil
}

// buildImpactCmd runs the prompt-version impact orchestrator.
func buildImpactCmd() *cobra.Command {
	var (
		llmProvider  string
		variantList  string
		testFile     string
		useSynthetic bool
		inProcess    bool
	)
	cmd := &cobra.Command{
		Use:   "impact",
		Short: "Evaluate prompt variants and persist per-question impact analysis",
		RunE: func(cmd *cobra.Command, args []string) error {
			provider := resolveFlag(llmProvider, cfg.Providers.LLM)
			fixturePath := cfg.Fixture(testFile, useSynthetic)

			var runner scoring.Runner
			if inProcess {
				runner = &scoring.Sequential{Base: scoring.Options{
					IndexDir:          cfg.Paths.IndexDir,
					TopK:              cfg.Retrieval.TopK,
					EmbeddingProvider: cfg.Providers.Embedding,
					LLMProvider:       provider,
					ResultsDir:        cfg.Paths.ResultsDir,
					Logger:            logger,
				}}
			} else {
				runner = &scoring.ExecRunner{ConfigPath: configPath, Logger: logger}
			}

			variantIDs := impact.VariantIDs()
			if variantList != "" {
				variantIDs = strings.Split(variantList, ",")
			}

			orchestrator := impact.New(impact.Options{
				StorePath:         cfg.Paths.StorePath,
				FixturePath:       fixturePath,
				IndexDir:          cfg.Paths.IndexDir,
				TopK:              cfg.Retrieval.TopK,
				EmbeddingProvider: cfg.Providers.Embedding,
				LLMProvider:       provider,
				ResultsDir:        cfg.Paths.ResultsDir,
				Runner:            runner,
				Logger:            logger,
			})
			return orchestrator.Run(cmd.Context(), variantIDs)
		},
	}
	cmd.Flags().StringVar(&llmProvider, "llm-provider", "", "LLM provider (default from config)")
	cmd.Flags().StringVar(&variantList, "variants", "", "Comma-separated variant list (default: all)")
	cmd.Flags().StringVar(&testFile, "test-file", "test_cases.json", "Fixture file name under the data directory")
	cmd.Flags().BoolVar(&useSynthetic, "use-synthetic", true, "Use the synthetic fixture variant")
	cmd.Flags().BoolVar(&inProcess, "in-process", false, "Run scoring phases in-process instead of as subprocesses")
	return cmd
}

func resolveFlag(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}

func resolveTopK(topK int) int {
	if topK > 0 {
		return topK
	}
	return cfg.Retrieval.TopK
}

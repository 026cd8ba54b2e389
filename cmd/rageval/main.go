// Package main provides the rageval CLI: a retrieval-augmented generation
// evaluation pipeline with prompt-version impact analysis.
//
// Basic usage:
//
//	rageval index build --docs-dir data/docs
//	rageval query --question "How long do refunds take?" --llm-provider groq
//	rageval run --llm-provider groq --run-name groq_v1
//	rageval impact --llm-provider groq --variants baseline,v1,v2
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/datar-psa/rageval/config"
)

var (
	configPath string
	logger     *zap.Logger
	cfg        *config.Config
)

func main() {
	rootCmd := buildRootCmd()
	if err := rootCmd.Execute(); err != nil {
		if logger != nil {
			logger.Error("command failed", zap.Error(err))
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func buildRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "rageval",
		Short:        "RAG evaluation pipeline with prompt-version impact analysis",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load(configPath)
			if err != nil {
				return err
			}
			logger, err = buildLogger(cfg.Logging.Level)
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (defaults apply when omitted)")

	rootCmd.AddCommand(
		buildQueryCmd(),
		buildIndexCmd(),
		buildEvalRetrievalCmd(),
		buildEvalGenerationCmd(),
		buildEvalRagasCmd(),
		buildAggregateCmd(),
		buildRunCmd(),
		buildImpactCmd(),
	)
	return rootCmd
}

func buildLogger(level string) (*zap.Logger, error) {
	zapLevel, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(zapLevel)
	zapCfg.OutputPaths = []string{"stderr"}
	return zapCfg.Build()
}

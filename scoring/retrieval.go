package scoring

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/datar-psa/rageval/embed"
	"github.com/datar-psa/rageval/index"
	"github.com/datar-psa/rageval/report"
)

// EvalRetrieval measures recall@k: the fraction of fixture cases whose
// expected source document appears among the top-k retrieved chunks. The
// score is persisted to the retrieval score file and returned.
func EvalRetrieval(ctx context.Context, opts Options) (float64, error) {
	logger := opts.logger()

	cases, err := LoadFixture(opts.FixturePath)
	if err != nil {
		return 0, err
	}

	embedder, err := embed.Resolve(ctx, opts.EmbeddingProvider)
	if err != nil {
		return 0, err
	}
	ix, err := index.Load(opts.IndexDir, embedder)
	if err != nil {
		return 0, err
	}

	hits := 0
	for _, c := range cases {
		results, err := ix.Query(ctx, c.Question, opts.TopK)
		if err != nil {
			return 0, err
		}

		hit := false
		for _, r := range results {
			source, _ := r.Metadata["source"].(string)
			if c.ExpectedSource != "" && source == c.ExpectedSource {
				hit = true
				break
			}
			// Fall back to keyword presence when the case names no source
			if c.ExpectedSource == "" {
				for _, keyword := range c.ExpectedKeywords {
					if strings.Contains(strings.ToLower(r.Content), strings.ToLower(keyword)) {
						hit = true
						break
					}
				}
			}
			if hit {
				break
			}
		}
		if hit {
			hits++
		}
		logger.Debug("retrieval case evaluated",
			zap.String("question", c.Question),
			zap.Bool("hit", hit))
	}

	score := float64(hits) / float64(len(cases))
	logger.Info("retrieval recall computed",
		zap.Int("hits", hits),
		zap.Int("cases", len(cases)),
		zap.Float64("score", score))

	if err := report.WriteScore(opts.ResultsDir, report.RetrievalScoreFile, report.RetrievalScoreField, score); err != nil {
		return 0, err
	}
	return score, nil
}

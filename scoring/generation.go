package scoring

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/datar-psa/rageval/api"
	"github.com/datar-psa/rageval/heuristic"
	"github.com/datar-psa/rageval/judge"
	"github.com/datar-psa/rageval/report"
)

// EvalGeneration measures factuality: for every fixture case the engine
// generates an answer and the score is the fraction of mandated keywords it
// contains. When a moderation provider is configured, an answer flagged as
// unsafe scores zero regardless of keyword coverage. The mean over all
// cases is persisted to the generation score file and returned.
func EvalGeneration(ctx context.Context, opts Options) (float64, error) {
	logger := opts.logger()

	cases, err := LoadFixture(opts.FixturePath)
	if err != nil {
		return 0, err
	}

	keywordScorer := heuristic.KeywordCoverage(heuristic.KeywordCoverageOptions{})
	var moderationScorer api.Scorer
	if opts.Moderation != nil {
		moderationScorer = judge.Moderation(opts.Moderation, judge.ModerationOptions{})
	}

	var total float64
	for _, c := range cases {
		result, err := opts.answer(ctx, c.Question)
		if err != nil {
			return 0, err
		}

		score := keywordScorer.Score(ctx, api.ScoreInputs{
			Output:   result.Answer,
			Expected: strings.Join(c.ExpectedKeywords, ","),
		})
		if score.Error != nil {
			return 0, score.Error
		}
		caseScore := score.Score

		if moderationScorer != nil {
			safety := moderationScorer.Score(ctx, api.ScoreInputs{Output: result.Answer})
			if safety.Error != nil {
				return 0, safety.Error
			}
			if safety.Score == 0 {
				logger.Warn("answer flagged by moderation, scoring 0",
					zap.String("question", c.Question))
				caseScore = 0
			}
		}

		total += caseScore
		logger.Debug("generation case evaluated",
			zap.String("question", c.Question),
			zap.Float64("score", caseScore))
	}

	score := total / float64(len(cases))
	logger.Info("generation factuality computed",
		zap.Int("cases", len(cases)),
		zap.Float64("score", score))

	if err := report.WriteScore(opts.ResultsDir, report.GenerationScoreFile, report.GenerationScoreField, score); err != nil {
		return 0, err
	}
	return score, nil
}

package scoring

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/datar-psa/rageval/api"
	"github.com/datar-psa/rageval/judge"
	"github.com/datar-psa/rageval/report"
)

// EvalRagas measures reasoning quality: for every fixture case the engine
// generates an answer, and a judge model rates its faithfulness to the
// retrieved context and its relevance to the question. The mean over all
// cases is persisted to the RAGAS score file and returned.
func EvalRagas(ctx context.Context, opts Options) (float64, error) {
	logger := opts.logger()

	cases, err := LoadFixture(opts.FixturePath)
	if err != nil {
		return 0, err
	}

	judgeLLM, err := opts.judge(ctx)
	if err != nil {
		return 0, err
	}
	scorer := judge.Faithfulness(judgeLLM, judge.FaithfulnessOptions{})

	var total float64
	for _, c := range cases {
		result, err := opts.answer(ctx, c.Question)
		if err != nil {
			return 0, err
		}

		score := scorer.Score(ctx, api.ScoreInputs{
			Input:   c.Question,
			Output:  result.Answer,
			Context: strings.Join(result.RetrievedChunks, "\n\n"),
		})
		if score.Error != nil {
			return 0, score.Error
		}

		total += score.Score
		logger.Debug("ragas case evaluated",
			zap.String("question", c.Question),
			zap.Float64("score", score.Score))
	}

	score := total / float64(len(cases))
	logger.Info("ragas faithfulness computed",
		zap.Int("cases", len(cases)),
		zap.Float64("score", score))

	if err := report.WriteScore(opts.ResultsDir, report.RagasScoreFile, report.RagasScoreField, score); err != nil {
		return 0, err
	}
	return score, nil
}

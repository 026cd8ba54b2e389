package heuristic

import (
	"context"
	"strings"

	"github.com/datar-psa/rageval/api"
)

// KeywordCoverageOptions configures the KeywordCoverage scorer
type KeywordCoverageOptions struct {
	// CaseSensitive determines if keyword matching respects case
	CaseSensitive bool
	// Separator splits the Expected field into keywords (default ",")
	Separator string
}

// KeywordCoverage returns a scorer that checks how many mandated keywords
// appear in the output. Keywords are carried in ScoreInputs.Expected as a
// separator-delimited list; the score is the fraction found.
func KeywordCoverage(opts KeywordCoverageOptions) api.Scorer {
	return &keywordCoverageScorer{opts: opts}
}

type keywordCoverageScorer struct {
	opts KeywordCoverageOptions
}

func (s *keywordCoverageScorer) Score(ctx context.Context, in api.ScoreInputs) api.Score {
	result := api.Score{
		Name:     "KeywordCoverage",
		Metadata: make(map[string]any),
	}

	separator := s.opts.Separator
	if separator == "" {
		separator = ","
	}

	var keywords []string
	for _, k := range strings.Split(in.Expected, separator) {
		if k = strings.TrimSpace(k); k != "" {
			keywords = append(keywords, k)
		}
	}

	if len(keywords) == 0 {
		result.Error = api.ErrNoExpectedValue
		result.Score = 0
		return result
	}

	output := in.Output
	if !s.opts.CaseSensitive {
		output = strings.ToLower(output)
	}

	var matched, missing []string
	for _, keyword := range keywords {
		needle := keyword
		if !s.opts.CaseSensitive {
			needle = strings.ToLower(needle)
		}
		if strings.Contains(output, needle) {
			matched = append(matched, keyword)
		} else {
			missing = append(missing, keyword)
		}
	}

	result.Score = float64(len(matched)) / float64(len(keywords))
	result.Metadata["matched_keywords"] = matched
	result.Metadata["missing_keywords"] = missing
	result.Metadata["keyword_count"] = len(keywords)
	result.Metadata["case_sensitive"] = s.opts.CaseSensitive

	return result
}

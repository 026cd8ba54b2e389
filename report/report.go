// Package report computes the RAG Quality Index (RQI): a weighted composite
// of the retrieval, generation and RAGAS sub-scores, with a letter grade and
// a qualitative justification. Sub-scores are harvested from the score files
// the scoring procedures persist; a missing file counts as zero with a
// warning rather than failing the report.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/datar-psa/rageval/api"
)

// Sub-score weights
const (
	WeightRetrieval  = 0.4
	WeightGeneration = 0.3
	WeightRagas      = 0.3
)

// Score file names and their numeric fields, the whole contract between the
// aggregator and the scoring procedures
const (
	RetrievalScoreFile  = "retrieval_score.json"
	GenerationScoreFile = "generation_score.json"
	RagasScoreFile      = "ragas_score.json"

	RetrievalScoreField  = "retrieval_score"
	GenerationScoreField = "generation_score"
	RagasScoreField      = "ragas_score"
)

// Grade maps an RQI value to its letter grade by inclusive lower bounds.
func Grade(rqi float64) string {
	switch {
	case rqi >= 0.9:
		return "A+"
	case rqi >= 0.8:
		return "A"
	case rqi >= 0.7:
		return "B"
	case rqi >= 0.6:
		return "C"
	case rqi >= 0.5:
		return "D"
	default:
		return "F"
	}
}

// Justification derives qualitative findings from the sub-scores. The
// single-metric rules are evaluated independently; the compound
// retrieval-vs-reasoning rule runs after them and is additive.
func Justification(retrieval, generation, ragas float64) string {
	var findings []string

	// Retrieval analysis
	if retrieval < 0.6 {
		findings = append(findings, "Retrieval is the bottleneck. The system struggled to find relevant documents, which suggests the embedding model may not understand the domain-specific terms in the queries.")
	} else {
		findings = append(findings, "Retrieval is healthy. The system is consistently finding the right context.")
	}

	// Generation analysis
	if generation < 0.6 {
		findings = append(findings, "Factuality is low. The LLM missed mandated keywords. It might be hallucinating or summarizing too aggressively, missing key details.")
	} else if generation > 0.8 {
		findings = append(findings, "Factuality is high. The LLM is accurately including the required keywords and numbers.")
	}

	// RAGAS analysis
	if ragas < 0.6 {
		findings = append(findings, "Reasoning (RAGAS) is poor. While the system might find keywords, answers were judged unfaithful or irrelevant on the complex questions.")
	} else if ragas > 0.8 {
		findings = append(findings, "Reasoning is strong. The system handles complex queries well and produces faithful answers.")
	}

	// Combined paradox
	if retrieval > 0.8 && ragas < 0.5 {
		findings = append(findings, "The 'RAG Paradox' is detected: good retrieval but bad reasoning. The LLM has the data but fails to synthesize it correctly. Try a smarter model.")
	}

	return strings.Join(findings, "\n")
}

// Aggregate combines the three sub-scores into a full ScoreReport.
// runLabel becomes the report's model name; empty means "default".
func Aggregate(retrieval, generation, ragas float64, runLabel string) api.ScoreReport {
	modelName := runLabel
	if modelName == "" {
		modelName = "default"
	}

	rqi := retrieval*WeightRetrieval + generation*WeightGeneration + ragas*WeightRagas

	return api.ScoreReport{
		ModelName:     modelName,
		Retrieval:     retrieval,
		Generation:    generation,
		Ragas:         ragas,
		RQI:           rqi,
		Grade:         Grade(rqi),
		Justification: Justification(retrieval, generation, ragas),
	}
}

// Aggregator reads persisted sub-scores and produces reports.
type Aggregator struct {
	resultsDir string
	logger     *zap.Logger
}

// NewAggregator creates an Aggregator over the given results directory.
// A nil logger falls back to zap.NewNop.
func NewAggregator(resultsDir string, logger *zap.Logger) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{resultsDir: resultsDir, logger: logger}
}

// LoadMetric reads one numeric field from a score file. A missing or
// unreadable file yields 0 with a warning; aggregation always proceeds.
func (a *Aggregator) LoadMetric(fileName, field string) float64 {
	path := filepath.Join(a.resultsDir, fileName)

	data, err := os.ReadFile(path)
	if err != nil {
		a.logger.Warn("score source not found, treating as 0",
			zap.String("file", path),
			zap.Error(err))
		return 0
	}

	var payload map[string]float64
	if err := json.Unmarshal(data, &payload); err != nil {
		a.logger.Warn("score source unreadable, treating as 0",
			zap.String("file", path),
			zap.Error(err))
		return 0
	}

	return payload[field]
}

// Run loads the three persisted sub-scores, aggregates them and, when
// runLabel is non-empty, persists the full report keyed by that label.
func (a *Aggregator) Run(runLabel string) (api.ScoreReport, error) {
	retrieval := a.LoadMetric(RetrievalScoreFile, RetrievalScoreField)
	generation := a.LoadMetric(GenerationScoreFile, GenerationScoreField)
	ragas := a.LoadMetric(RagasScoreFile, RagasScoreField)

	rep := Aggregate(retrieval, generation, ragas, runLabel)

	if runLabel != "" {
		if err := Save(a.resultsDir, runLabel, rep); err != nil {
			return rep, err
		}
		a.logger.Info("report saved",
			zap.String("path", Path(a.resultsDir, runLabel)),
			zap.Float64("rqi", rep.RQI),
			zap.String("grade", rep.Grade))
	}

	return rep, nil
}

// Path returns the per-run report file location.
func Path(resultsDir, runLabel string) string {
	return filepath.Join(resultsDir, fmt.Sprintf("report_%s.json", runLabel))
}

// Save persists a report keyed by run label.
func Save(resultsDir, runLabel string, rep api.ScoreReport) error {
	if err := os.MkdirAll(resultsDir, 0o755); err != nil {
		return fmt.Errorf("failed to create results dir: %w", err)
	}
	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if err := os.WriteFile(Path(resultsDir, runLabel), data, 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// Load reads a previously saved report for a run label.
func Load(resultsDir, runLabel string) (api.ScoreReport, error) {
	var rep api.ScoreReport
	data, err := os.ReadFile(Path(resultsDir, runLabel))
	if err != nil {
		return rep, fmt.Errorf("failed to read report for %s: %w", runLabel, err)
	}
	if err := json.Unmarshal(data, &rep); err != nil {
		return rep, fmt.Errorf("failed to parse report for %s: %w", runLabel, err)
	}
	return rep, nil
}

// WriteScore persists one scorer's scalar result in the fixed score-file
// format the aggregator harvests.
func WriteScore(resultsDir, fileName, field string, value float64) error {
	if err := os.MkdirAll(resultsDir, 0o755); err != nil {
		return fmt.Errorf("failed to create results dir: %w", err)
	}
	data, err := json.MarshalIndent(map[string]float64{field: value}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode score: %w", err)
	}
	if err := os.WriteFile(filepath.Join(resultsDir, fileName), data, 0o644); err != nil {
		return fmt.Errorf("failed to write score: %w", err)
	}
	return nil
}

// Package store persists prompt-impact results as one JSON document keyed
// by question text. The document is read-modify-written wholesale: the
// orchestrator is the only writer, and saving after every cell mutation is
// what makes interrupted runs resumable.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/datar-psa/rageval/api"
)

// Store is the in-memory view of the result document.
type Store struct {
	path    string
	records map[string]*api.QuestionRecord
}

// Load reads the store at path, or starts an empty one if the file does not
// exist yet. Any other read or parse failure is an error.
func Load(path string) (*Store, error) {
	s := &Store{
		path:    path,
		records: make(map[string]*api.QuestionRecord),
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read result store: %w", err)
	}

	if err := json.Unmarshal(data, &s.records); err != nil {
		return nil, fmt.Errorf("failed to parse result store: %w", err)
	}
	return s, nil
}

// Save writes the whole document. The write goes through a temp file and
// rename so an interruption never leaves a half-written store behind.
func (s *Store) Save() error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create store dir: %w", err)
		}
	}

	data, err := json.MarshalIndent(s.records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result store: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write result store: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace result store: %w", err)
	}
	return nil
}

// Result returns the cell for (question, variant), if present.
func (s *Store) Result(question, variant string) (*api.PromptResult, bool) {
	record, ok := s.records[question]
	if !ok {
		return nil, false
	}
	result, ok := record.PromptResults[variant]
	return result, ok
}

// HasResponse reports whether the (question, variant) cell already holds a
// generated response. This is the orchestrator's skip signal.
func (s *Store) HasResponse(question, variant string) bool {
	result, ok := s.Result(question, variant)
	return ok && result.Response != ""
}

// SetResult stores the cell for (question, variant), creating the question
// record if needed.
func (s *Store) SetResult(question, variant string, result *api.PromptResult) {
	record, ok := s.records[question]
	if !ok {
		record = &api.QuestionRecord{
			Question:      question,
			PromptResults: make(map[string]*api.PromptResult),
		}
		s.records[question] = record
	}
	record.PromptResults[variant] = result
}

// AttachScores sets an identical copy of the report on every question's cell
// for the given variant and returns how many cells were updated. Questions
// without a cell for the variant are left untouched.
func (s *Store) AttachScores(variant string, rep api.ScoreReport) int {
	updated := 0
	for _, record := range s.records {
		result, ok := record.PromptResults[variant]
		if !ok {
			continue
		}
		scores := rep
		result.Scores = &scores
		updated++
	}
	return updated
}

// Questions returns the stored question texts, sorted for stable iteration.
func (s *Store) Questions() []string {
	questions := make([]string, 0, len(s.records))
	for q := range s.records {
		questions = append(questions, q)
	}
	sort.Strings(questions)
	return questions
}

// Len returns the number of stored questions.
func (s *Store) Len() int {
	return len(s.records)
}

// Path returns the backing file location.
func (s *Store) Path() string {
	return s.path
}

package api

import "context"

// LLMGenerator is an interface for generating text using an LLM
// This interface must be implemented by library consumers
// A Gemini implementation is provided in the gemini subpackage,
// OpenAI-compatible implementations in the providers subpackage
type LLMGenerator interface {
	// Generate generates text based on the provided prompt
	// Returns the generated text or an error
	Generate(ctx context.Context, prompt string) (string, error)

	// StructuredGenerate generates structured data based on the provided prompt and JSON schema
	// schema must be a valid JSON schema (map[string]interface{})
	// Returns the generated data as a map[string]interface{} or an error
	StructuredGenerate(ctx context.Context, prompt string, schema map[string]interface{}) (map[string]interface{}, error)
}

// Embedder generates vector embeddings for text
type Embedder interface {
	// Embed generates an embedding vector for the given text
	// Returns a normalized vector (length = 1) suitable for cosine similarity
	Embed(ctx context.Context, text string) ([]float64, error)
}

// SearchResult is one passage returned by a vector index query,
// ordered by descending similarity to the query text
type SearchResult struct {
	// Content is the raw chunk text
	Content string `json:"content"`
	// Metadata carries provenance (source document, chunk position, ...)
	Metadata map[string]any `json:"metadata"`
	// Similarity is the cosine similarity between query and chunk, in [-1, 1]
	Similarity float64 `json:"similarity"`
}

// VectorIndex answers nearest-neighbour queries over an embedded corpus
type VectorIndex interface {
	// Query returns up to k passages most similar to text
	Query(ctx context.Context, text string, k int) ([]SearchResult, error)
}

// ModerationCategory represents a safety category with confidence score
type ModerationCategory struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
}

// ModerationResult represents the result of content moderation
type ModerationResult struct {
	Categories []ModerationCategory `json:"categories"`
}

// ModerationProvider is an interface for content moderation
// A Google Cloud Natural Language implementation is provided in the gemini subpackage
type ModerationProvider interface {
	// Moderate analyzes content for safety and returns moderation results
	// Returns the moderation result or an error
	Moderate(ctx context.Context, content string) (*ModerationResult, error)
}

// Score represents the result of an evaluation
type Score struct {
	// Name identifies the scorer that produced this result
	Name string
	// Score is a value between 0 and 1, where 1 is the best possible score
	Score float64
	// Metadata contains additional information about the scoring process
	Metadata map[string]any
	// Error contains any error that occurred during scoring
	Error error
}

// ScoreInputs carries inputs for scoring across different scorers.
//
// Fields usage conventions:
// - Output:   the actual output produced by the model (required for most scorers)
// - Expected: the reference/expected output (optional depending on scorer)
// - Input:    the original prompt/context/question given to the model (optional)
// - Context:  the retrieved passages the output was grounded on (RAG scorers)
type ScoreInputs struct {
	Output   string
	Expected string
	Input    string
	Context  string
}

// Scorer evaluates the quality of an output
type Scorer interface {
	// Score evaluates the output and returns a score
	// in: container for output/expected/input depending on scorer needs
	Score(ctx context.Context, in ScoreInputs) Score
}

// ResultMetadata records how a response was produced: which passages were
// retrieved, their provenance, and the prompt variant in effect
type ResultMetadata struct {
	RetrievedChunks   []string         `json:"retrieved_chunks"`
	RetrievedMetadata []map[string]any `json:"retrieved_metadata"`
	PromptVersion     string           `json:"prompt_version"`
}

// PromptResult is the per-(question, variant) cell of the result store.
// Once Response is set the cell is never regenerated; ChangeSummary appears
// only on non-baseline cells whose baseline response already existed, and
// Scores only after the variant's scoring pass completed.
type PromptResult struct {
	Response      string         `json:"response"`
	Metadata      ResultMetadata `json:"metadata"`
	ChangeSummary string         `json:"change_summary,omitempty"`
	Scores        *ScoreReport   `json:"scores,omitempty"`
}

// QuestionRecord groups every variant's result for one evaluation question.
// The question text itself is the stable store key.
type QuestionRecord struct {
	Question      string                   `json:"question"`
	PromptResults map[string]*PromptResult `json:"prompt_results"`
}

// ScoreReport is the corpus-level quality report for one run.
// RQI is the weighted composite of the three sub-scores; Grade is derived
// from RQI by fixed thresholds.
type ScoreReport struct {
	ModelName     string  `json:"model_name"`
	Retrieval     float64 `json:"retrieval"`
	Generation    float64 `json:"generation"`
	Ragas         float64 `json:"ragas"`
	RQI           float64 `json:"rqi"`
	Grade         string  `json:"grade"`
	Justification string  `json:"justification,omitempty"`
}

// Package engine answers questions over a vector index with a language
// model. It is deliberately stateless: the embedder, index and LLM client
// are re-resolved on every call so that credential or prompt changes made
// between calls take effect without restarting the process.
package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/datar-psa/rageval/api"
	"github.com/datar-psa/rageval/embed"
	"github.com/datar-psa/rageval/index"
	"github.com/datar-psa/rageval/providers"
	"github.com/datar-psa/rageval/retry"
)

// DefaultVariantLabel tags results produced without an explicit prompt variant
const DefaultVariantLabel = "prompt_v0"

// DefaultTopK is the retrieval depth when the request does not set one
const DefaultTopK = 3

// IndexUnavailableError reports that the vector index or its embedder could
// not be loaded. It is returned to the caller, not panicked.
type IndexUnavailableError struct {
	Cause error
}

func (e *IndexUnavailableError) Error() string {
	return fmt.Sprintf("failed to load index/embeddings: %v", e.Cause)
}

func (e *IndexUnavailableError) Unwrap() error { return e.Cause }

// LLMUnavailableError reports that the language-model client could not be
// resolved (unknown provider or missing credential).
type LLMUnavailableError struct {
	Cause error
}

func (e *LLMUnavailableError) Error() string {
	return fmt.Sprintf("failed to initialize LLM: %v", e.Cause)
}

func (e *LLMUnavailableError) Unwrap() error { return e.Cause }

// PromptOverride retargets the engine's instruction without changing the
// call signature. It is consulted only when Request.SystemPrompt is empty;
// an explicit argument always wins.
type PromptOverride struct {
	// Instruction is the system-role instruction text
	Instruction string
	// VariantLabel tags results produced under this instruction
	VariantLabel string
}

// Request carries one question through retrieval and generation
type Request struct {
	Question          string
	IndexDir          string
	TopK              int
	EmbeddingProvider string
	LLMProvider       string
	// SystemPrompt, when set, is used verbatim as the system-role instruction
	SystemPrompt string
	// VariantLabel tags the result; defaults to DefaultVariantLabel
	VariantLabel string
	// Override is the threaded replacement for ambient prompt state
	Override *PromptOverride
}

// Result is the answer plus the evidence it was generated from
type Result struct {
	Query             string           `json:"query"`
	Answer            string           `json:"answer"`
	RetrievedChunks   []string         `json:"retrieved_chunks"`
	RetrievedMetadata []map[string]any `json:"retrieved_metadata"`
	VariantLabel      string           `json:"prompt_version"`
}

const defaultTemplate = `Answer the question based only on the following context:
%s

Question: %s
`

const systemHumanTemplate = `%s

Answer the question based only on the following context:
%s

Question: %s`

// Engine executes retrieval-augmented generation. Construct with New.
type Engine struct {
	retryPolicy     *retry.Policy
	resolveLLM      func(ctx context.Context, providerID string) (api.LLMGenerator, error)
	resolveEmbedder func(ctx context.Context, providerID string) (api.Embedder, error)
	loadIndex       func(dir string, embedder api.Embedder) (api.VectorIndex, error)
}

// Option configures an Engine
type Option func(*Engine)

// WithRetryPolicy replaces the rate-limit retry policy
func WithRetryPolicy(p *retry.Policy) Option {
	return func(e *Engine) {
		e.retryPolicy = p
	}
}

// WithLLMResolver replaces the language-model resolver, for tests
func WithLLMResolver(resolve func(ctx context.Context, providerID string) (api.LLMGenerator, error)) Option {
	return func(e *Engine) {
		e.resolveLLM = resolve
	}
}

// WithEmbedderResolver replaces the embedder resolver, for tests
func WithEmbedderResolver(resolve func(ctx context.Context, providerID string) (api.Embedder, error)) Option {
	return func(e *Engine) {
		e.resolveEmbedder = resolve
	}
}

// WithIndexLoader replaces the index loader, for tests
func WithIndexLoader(load func(dir string, embedder api.Embedder) (api.VectorIndex, error)) Option {
	return func(e *Engine) {
		e.loadIndex = load
	}
}

// New creates an Engine wired to the real provider registries.
func New(opts ...Option) *Engine {
	e := &Engine{
		retryPolicy:     retry.New(),
		resolveLLM:      providers.Resolve,
		resolveEmbedder: embed.Resolve,
		loadIndex: func(dir string, embedder api.Embedder) (api.VectorIndex, error) {
			return index.Load(dir, embedder)
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Answer retrieves supporting passages for the question, composes the
// effective instruction and invokes the language model through the retry
// policy. Index and LLM resolution failures come back as typed errors;
// generation failures (including exhausted retries) propagate as-is.
func (e *Engine) Answer(ctx context.Context, req Request) (*Result, error) {
	topK := req.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}

	// 1. Load embeddings & index
	embedder, err := e.resolveEmbedder(ctx, req.EmbeddingProvider)
	if err != nil {
		return nil, &IndexUnavailableError{Cause: err}
	}
	ix, err := e.loadIndex(req.IndexDir, embedder)
	if err != nil {
		return nil, &IndexUnavailableError{Cause: err}
	}

	// 2. Setup LLM
	llm, err := e.resolveLLM(ctx, req.LLMProvider)
	if err != nil {
		return nil, &LLMUnavailableError{Cause: err}
	}

	// 3. Resolve the effective instruction
	systemPrompt := req.SystemPrompt
	variantLabel := req.VariantLabel
	if systemPrompt == "" && req.Override != nil {
		systemPrompt = req.Override.Instruction
		if req.Override.VariantLabel != "" {
			variantLabel = req.Override.VariantLabel
		}
	}
	if variantLabel == "" {
		variantLabel = DefaultVariantLabel
	}

	// 4. Retrieve and generate
	results, err := ix.Query(ctx, req.Question, topK)
	if err != nil {
		return nil, fmt.Errorf("retrieval failed: %w", err)
	}

	chunks := make([]string, 0, len(results))
	metadata := make([]map[string]any, 0, len(results))
	for _, r := range results {
		chunks = append(chunks, r.Content)
		metadata = append(metadata, r.Metadata)
	}
	contextText := strings.Join(chunks, "\n\n")

	var prompt string
	if systemPrompt != "" {
		prompt = fmt.Sprintf(systemHumanTemplate, systemPrompt, contextText, req.Question)
	} else {
		prompt = fmt.Sprintf(defaultTemplate, contextText, req.Question)
	}

	answer, err := e.retryPolicy.Do(ctx, func(ctx context.Context) (string, error) {
		return llm.Generate(ctx, prompt)
	})
	if err != nil {
		return nil, err
	}

	return &Result{
		Query:             req.Question,
		Answer:            answer,
		RetrievedChunks:   chunks,
		RetrievedMetadata: metadata,
		VariantLabel:      variantLabel,
	}, nil
}

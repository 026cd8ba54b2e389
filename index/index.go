// Package index is a flat-file vector index over embedded text chunks.
// It persists as a single JSON document and answers nearest-neighbour
// queries by brute-force cosine similarity, which is plenty for evaluation
// corpora of a few hundred chunks.
package index

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/datar-psa/rageval/api"
	"github.com/datar-psa/rageval/embed"
)

// FileName is the index document inside the index directory
const FileName = "index.json"

// DefaultChunkSize is the target chunk length in characters
const DefaultChunkSize = 800

// Document is one source text to be chunked and embedded
type Document struct {
	// Source identifies where the text came from (file name, URL, ...)
	Source string
	// Content is the full document text
	Content string
}

type chunkRecord struct {
	ID       string         `json:"id"`
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata"`
	Vector   []float64      `json:"vector"`
}

type indexFile struct {
	Chunks []chunkRecord `json:"chunks"`
}

// Index holds embedded chunks and the embedder that produced them.
// The same embedder must be used for indexing and querying.
type Index struct {
	embedder api.Embedder
	chunks   []chunkRecord
}

// Load opens a previously built index at dir and binds it to embedder.
func Load(dir string, embedder api.Embedder) (*Index, error) {
	data, err := os.ReadFile(filepath.Join(dir, FileName))
	if err != nil {
		return nil, fmt.Errorf("failed to read index at %s: %w", dir, err)
	}

	var file indexFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse index at %s: %w", dir, err)
	}

	return &Index{embedder: embedder, chunks: file.Chunks}, nil
}

// Build chunks the documents, embeds every chunk and returns a queryable index.
func Build(ctx context.Context, embedder api.Embedder, docs []Document, chunkSize int) (*Index, error) {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	ix := &Index{embedder: embedder}
	for _, doc := range docs {
		for i, chunk := range splitChunks(doc.Content, chunkSize) {
			vector, err := embedder.Embed(ctx, chunk)
			if err != nil {
				return nil, fmt.Errorf("failed to embed chunk %d of %s: %w", i, doc.Source, err)
			}
			ix.chunks = append(ix.chunks, chunkRecord{
				ID:      uuid.NewString(),
				Content: chunk,
				Metadata: map[string]any{
					"source": doc.Source,
					"chunk":  i,
				},
				Vector: vector,
			})
		}
	}
	return ix, nil
}

// Save writes the index document under dir, creating the directory if needed.
func (ix *Index) Save(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create index dir: %w", err)
	}

	data, err := json.MarshalIndent(indexFile{Chunks: ix.chunks}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode index: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, FileName), data, 0o644); err != nil {
		return fmt.Errorf("failed to write index: %w", err)
	}
	return nil
}

// Query implements api.VectorIndex. It returns up to k chunks ordered by
// descending cosine similarity to text.
func (ix *Index) Query(ctx context.Context, text string, k int) ([]api.SearchResult, error) {
	if len(ix.chunks) == 0 {
		return nil, nil
	}

	queryVec, err := ix.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	results := make([]api.SearchResult, 0, len(ix.chunks))
	for _, chunk := range ix.chunks {
		results = append(results, api.SearchResult{
			Content:    chunk.Content,
			Metadata:   chunk.Metadata,
			Similarity: embed.Cosine(queryVec, chunk.Vector),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})

	if k > 0 && len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// Len returns the number of indexed chunks
func (ix *Index) Len() int {
	return len(ix.chunks)
}

// splitChunks splits text on paragraph boundaries, merging paragraphs until
// the target size is reached. A single oversized paragraph stays whole.
func splitChunks(text string, chunkSize int) []string {
	var chunks []string
	var current strings.Builder

	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if current.Len() > 0 && current.Len()+len(para) > chunkSize {
			chunks = append(chunks, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(para)
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}

// Verify that Index implements VectorIndex
var _ api.VectorIndex = (*Index)(nil)

package embed

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"
)

// OfflineDimensions is the vector size of the offline embedder
const OfflineDimensions = 256

// Offline is a deterministic, credential-free embedder built on token
// feature hashing. It is not a semantic model; it exists so the index and
// the full pipeline can run and be tested without any remote provider.
type Offline struct {
	dimensions int
}

// NewOffline creates an offline embedder with the default dimensionality.
func NewOffline() *Offline {
	return &Offline{dimensions: OfflineDimensions}
}

// Embed implements Embedder.Embed. The returned vector is L2-normalized.
func (o *Offline) Embed(ctx context.Context, text string) ([]float64, error) {
	vec := make([]float64, o.dimensions)

	for _, token := range tokenize(text) {
		h := fnv.New32a()
		h.Write([]byte(token))
		bucket := int(h.Sum32()) % o.dimensions
		if bucket < 0 {
			bucket += o.dimensions
		}
		// Sign hash decorrelates colliding tokens
		if h.Sum32()%2 == 0 {
			vec[bucket]++
		} else {
			vec[bucket]--
		}
	}

	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range vec {
			vec[i] /= norm
		}
	}

	return vec, nil
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

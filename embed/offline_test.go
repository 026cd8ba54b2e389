package embed

import (
	"context"
	"math"
	"testing"
)

func TestOffline_Deterministic(t *testing.T) {
	ctx := context.Background()
	o := NewOffline()

	a, err := o.Embed(ctx, "What is the refund policy?")
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	b, err := o.Embed(ctx, "What is the refund policy?")
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}

	if len(a) != OfflineDimensions {
		t.Errorf("len = %d, want %d", len(a), OfflineDimensions)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("embeddings differ at %d: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestOffline_Normalized(t *testing.T) {
	ctx := context.Background()
	o := NewOffline()

	vec, err := o.Embed(ctx, "Shipping takes three to five business days.")
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}

	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	if math.Abs(math.Sqrt(norm)-1.0) > 1e-9 {
		t.Errorf("norm = %v, want 1.0", math.Sqrt(norm))
	}
}

func TestOffline_SharedVocabularyScoresHigher(t *testing.T) {
	ctx := context.Background()
	o := NewOffline()

	query, _ := o.Embed(ctx, "refund policy for damaged items")
	related, _ := o.Embed(ctx, "our refund policy covers damaged items within 30 days")
	unrelated, _ := o.Embed(ctx, "the warehouse opens at seven in the morning")

	if Cosine(query, related) <= Cosine(query, unrelated) {
		t.Errorf("related similarity %v not greater than unrelated %v",
			Cosine(query, related), Cosine(query, unrelated))
	}
}

func TestOffline_EmptyText(t *testing.T) {
	ctx := context.Background()
	o := NewOffline()

	vec, err := o.Embed(ctx, "")
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	for _, v := range vec {
		if v != 0 {
			t.Fatalf("empty text should embed to zero vector, got %v", v)
		}
	}
}

func TestResolve_UnknownProvider(t *testing.T) {
	_, err := Resolve(context.Background(), "word2vec")
	if err == nil {
		t.Fatal("Resolve() expected error for unknown provider")
	}
}

func TestResolve_Offline(t *testing.T) {
	e, err := Resolve(context.Background(), ProviderOffline)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if e == nil {
		t.Fatal("Resolve() returned nil embedder")
	}
}

// Package impact runs a fixed set of prompt variants over an evaluation
// question set, diffs each variant's answers against the baseline, scores
// every variant through the scoring pipeline, and persists everything
// incrementally to a single result store.
package impact

import (
	"fmt"
	"strings"
)

// BaselineVariant is the variant all other variants are diffed against.
const BaselineVariant = "baseline"

// Variant pairs a prompt-version identifier with its system instruction.
type Variant struct {
	ID          string
	Instruction string
}

// variants is the closed prompt-version set. The orchestrator rejects any
// identifier outside it before doing any work.
var variants = []Variant{
	{
		ID: BaselineVariant,
		Instruction: "You are a helpful assistant for a retrieval-augmented question answering system. " +
			"Answer the question using the provided context.",
	},
	{
		ID: "v1",
		Instruction: "You are a precise assistant. Answer strictly from the provided context. " +
			"If the context does not contain the answer, say you do not know. Do not speculate.",
	},
	{
		ID: "v2",
		Instruction: "You are a concise assistant. Answer the question from the provided context " +
			"in at most two sentences, citing the key fact verbatim where possible.",
	},
	{
		ID: "v3",
		Instruction: "You are a thorough assistant. Answer the question from the provided context, " +
			"then briefly mention any related details from the context the user may also need.",
	},
	{
		ID: "v4",
		Instruction: "You are a step-by-step assistant. Reason through the provided context before " +
			"answering, and state the final answer in the last sentence.",
	},
}

// Variants returns the closed variant set in its canonical order.
func Variants() []Variant {
	out := make([]Variant, len(variants))
	copy(out, variants)
	return out
}

// Lookup returns the variant for the given identifier.
func Lookup(id string) (Variant, bool) {
	for _, v := range variants {
		if v.ID == id {
			return v, true
		}
	}
	return Variant{}, false
}

// VariantIDs returns the identifiers of the closed set in canonical order.
func VariantIDs() []string {
	ids := make([]string, len(variants))
	for i, v := range variants {
		ids[i] = v.ID
	}
	return ids
}

// ValidateIDs checks a caller-supplied variant list against the closed set,
// reporting every unknown identifier at once.
func ValidateIDs(ids []string) error {
	var unknown []string
	for _, id := range ids {
		if _, ok := Lookup(id); !ok {
			unknown = append(unknown, id)
		}
	}
	if len(unknown) > 0 {
		return fmt.Errorf("unknown prompt variants: %s (known: %s)",
			strings.Join(unknown, ", "), strings.Join(VariantIDs(), ", "))
	}
	return nil
}

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rageval.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Retrieval.TopK != 3 {
		t.Errorf("top_k = %d, want 3", cfg.Retrieval.TopK)
	}
	if cfg.Providers.Embedding != "offline" {
		t.Errorf("embedding = %q, want offline", cfg.Providers.Embedding)
	}
	if cfg.Paths.ResultsDir != "results" {
		t.Errorf("results_dir = %q, want results", cfg.Paths.ResultsDir)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
paths:
  results_dir: out
retrieval:
  top_k: 5
providers:
  llm: groq
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Retrieval.TopK != 5 {
		t.Errorf("top_k = %d, want 5", cfg.Retrieval.TopK)
	}
	if cfg.Paths.ResultsDir != "out" {
		t.Errorf("results_dir = %q, want out", cfg.Paths.ResultsDir)
	}
	// Untouched sections keep their defaults
	if cfg.Providers.Embedding != "offline" {
		t.Errorf("embedding = %q, want offline", cfg.Providers.Embedding)
	}
	if cfg.Providers.LLM != "groq" {
		t.Errorf("llm = %q, want groq", cfg.Providers.LLM)
	}
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("RAGEVAL_TEST_DATA", "/srv/eval-data")
	path := writeConfig(t, `
paths:
  data_dir: ${RAGEVAL_TEST_DATA}
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Paths.DataDir != "/srv/eval-data" {
		t.Errorf("data_dir = %q, want /srv/eval-data", cfg.Paths.DataDir)
	}
}

func TestLoad_InvalidTopK(t *testing.T) {
	path := writeConfig(t, `
retrieval:
  top_k: -1
`)
	if _, err := Load(path); err == nil {
		t.Error("expected error for negative top_k")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestFixture(t *testing.T) {
	cfg := Default()
	tests := []struct {
		name      string
		synthetic bool
		want      string
	}{
		{"test_cases.json", false, filepath.Join("data", "test_cases.json")},
		{"test_cases.json", true, filepath.Join("data", "test_cases_synthetic.json")},
		{"test_retrieval.json", true, filepath.Join("data", "test_retrieval_synthetic.json")},
	}
	for _, tt := range tests {
		if got := cfg.Fixture(tt.name, tt.synthetic); got != tt.want {
			t.Errorf("Fixture(%q, %v) = %q, want %q", tt.name, tt.synthetic, got, tt.want)
		}
	}
}

// Package config loads the pipeline configuration file. All fields have
// working defaults so the CLI runs without a config file at all.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// SyntheticSuffix marks fixture files generated synthetically rather than
// hand-written. Fixture resolution appends it before the extension.
const SyntheticSuffix = "_synthetic"

// Config is the pipeline configuration.
type Config struct {
	Paths     PathsConfig     `yaml:"paths"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Providers ProvidersConfig `yaml:"providers"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type PathsConfig struct {
	// DataDir holds fixtures and source documents
	DataDir string `yaml:"data_dir"`
	// IndexDir holds the persisted vector index
	IndexDir string `yaml:"index_dir"`
	// ResultsDir receives score files and reports
	ResultsDir string `yaml:"results_dir"`
	// StorePath is the prompt-impact result store file
	StorePath string `yaml:"store_path"`
}

type RetrievalConfig struct {
	TopK      int `yaml:"top_k"`
	ChunkSize int `yaml:"chunk_size"`
}

type ProvidersConfig struct {
	Embedding string `yaml:"embedding"`
	LLM       string `yaml:"llm"`
}

type LoggingConfig struct {
	// Level is a zap level name: debug, info, warn, error
	Level string `yaml:"level"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			DataDir:    "data",
			IndexDir:   filepath.Join("data", "index"),
			ResultsDir: "results",
			StorePath:  filepath.Join("data", "prompt_versions", "prompt_impact_analysis.json"),
		},
		Retrieval: RetrievalConfig{
			TopK: 3,
		},
		Providers: ProvidersConfig{
			Embedding: "offline",
			LLM:       "openai",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads a YAML config file over the defaults. Environment variable
// references in the file are expanded before parsing. An empty path returns
// the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if cfg.Retrieval.TopK <= 0 {
		return nil, fmt.Errorf("retrieval.top_k must be positive, got %d", cfg.Retrieval.TopK)
	}
	return cfg, nil
}

// Fixture resolves a fixture file name under the data directory, inserting
// the synthetic suffix before the extension when requested:
// Fixture("test_cases.json", true) → <data_dir>/test_cases_synthetic.json.
func (c *Config) Fixture(name string, synthetic bool) string {
	if synthetic {
		ext := filepath.Ext(name)
		name = name[:len(name)-len(ext)] + SyntheticSuffix + ext
	}
	return filepath.Join(c.Paths.DataDir, name)
}

package rageval

import "github.com/datar-psa/rageval/api"

var (
	// ErrNoExpectedValue is returned when an expected value is required but not provided
	ErrNoExpectedValue = api.ErrNoExpectedValue
	// ErrNoContextValue is returned when retrieved context is required but not provided
	ErrNoContextValue = api.ErrNoContextValue
	// ErrLLMGenerationFailed is returned when LLM generation fails
	ErrLLMGenerationFailed = api.ErrLLMGenerationFailed
)

package llm

import "context"

// Generator is the generation capability used by attack synthesis, LLM-backed
// enhancement techniques, and the response evaluator's judge. Implementations
// wrap a concrete model provider; the scanner never talks to a provider SDK
// directly.
type Generator interface {
	// Name returns the provider name (e.g., "openai", "anthropic", "mock").
	Name() string

	// Generate sends a generation request and returns the full completion.
	// This is a blocking call; cancellation is honored via ctx.
	Generate(ctx context.Context, req GenerationRequest) (*Completion, error)
}

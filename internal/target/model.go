package target

import (
	"context"

	"github.com/crucible-sec/crucible/internal/llm"
)

// ModelTarget probes a raw chat model directly through a Generator, with an
// optional system prompt standing in for the application's instructions.
type ModelTarget struct {
	gen          llm.Generator
	systemPrompt string
}

// NewModelTarget creates a target backed by a model provider.
func NewModelTarget(gen llm.Generator, systemPrompt string) *ModelTarget {
	return &ModelTarget{gen: gen, systemPrompt: systemPrompt}
}

// Name identifies the target by its provider name.
func (t *ModelTarget) Name() string {
	return "model:" + t.gen.Name()
}

// Respond sends the input as a user message and returns the completion.
func (t *ModelTarget) Respond(ctx context.Context, input string) (string, error) {
	messages := make([]llm.Message, 0, 2)
	if t.systemPrompt != "" {
		messages = append(messages, llm.NewSystemMessage(t.systemPrompt))
	}
	messages = append(messages, llm.NewUserMessage(input))

	completion, err := t.gen.Generate(ctx, llm.GenerationRequest{Messages: messages})
	if err != nil {
		return "", err
	}
	return completion.Content, nil
}

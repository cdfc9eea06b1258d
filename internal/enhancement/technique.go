package enhancement

import (
	"context"

	"github.com/crucible-sec/crucible/internal/attack"
	"github.com/crucible-sec/crucible/internal/llm"
)

// Technique transforms a baseline attack into a more sophisticated or
// evasive one. Techniques are data-described strategies: the enhancer
// dispatches through this interface, never on technique identity.
type Technique interface {
	// Name returns the technique identifier.
	Name() string

	// MultiTurn reports whether the technique drives a staged conversation
	// with the target instead of producing a single attack string.
	MultiTurn() bool

	// Enhance transforms the baseline attack string. For multi-turn
	// techniques this produces the opening turn.
	Enhance(ctx context.Context, gen llm.Generator, baseline string) (string, error)
}

// MultiTurnTechnique computes follow-up turns from the running transcript.
// Prior target responses feed back into the technique; this is the one place
// enhancement and invocation interleave.
type MultiTurnTechnique interface {
	Technique

	// NextTurn returns the next input to send given the conversation so
	// far, or done=true when the technique has finished escalating.
	NextTurn(ctx context.Context, gen llm.Generator, baseline string, transcript attack.Transcript) (next string, done bool, err error)
}

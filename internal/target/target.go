package target

import (
	"context"
	"time"

	"github.com/crucible-sec/crucible/internal/types"
)

// Target is the LLM application under test, reduced to a single capability:
// given input text, produce output text. Implementations map transport
// failures and timeouts to errors; the invoker records them, it never
// raises them into the scan.
type Target interface {
	// Name identifies the target in logs and reports.
	Name() string

	// Respond sends input text to the target and returns its output text.
	Respond(ctx context.Context, input string) (string, error)
}

// Func adapts a plain function to the Target interface.
type Func func(ctx context.Context, input string) (string, error)

// Name returns the fixed name for function targets.
func (f Func) Name() string { return "func" }

// Respond invokes the wrapped function.
func (f Func) Respond(ctx context.Context, input string) (string, error) {
	return f(ctx, input)
}

// Response records the target's answer to one attack turn. Created exactly
// once per attack (or per turn for multi-turn attacks, linked by attack ID
// and turn index).
type Response struct {
	AttackID  types.ID      `json:"attack_id"`
	TurnIndex int           `json:"turn_index"`
	Output    string        `json:"response_text"`
	Latency   time.Duration `json:"latency"`

	// Err is set when invocation failed irrecoverably. A failed response
	// excludes the attack from evaluation but the attack stays in the scan
	// result with the error recorded.
	Err string `json:"error,omitempty"`
}

// Failed reports whether the invocation failed.
func (r Response) Failed() bool {
	return r.Err != ""
}

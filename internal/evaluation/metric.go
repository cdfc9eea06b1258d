package evaluation

import (
	"context"

	"github.com/crucible-sec/crucible/internal/attack"
	"github.com/crucible-sec/crucible/internal/llm"
	"github.com/crucible-sec/crucible/internal/types"
	"github.com/crucible-sec/crucible/internal/vulnerability"
)

// Context carries the scan context a metric may use when scoring.
type Context struct {
	Category        vulnerability.Category
	Purpose         string
	AllowedEntities []string

	// Transcript holds the full conversation for multi-turn attacks; the
	// score applies to the final turn's response with the transcript as
	// context.
	Transcript attack.Transcript
}

// Metric scores one (attack input, target output) pair. Score semantics:
// 1 = the target resisted or refused the exploit, 0 = the target was
// compromised; intermediate scores grade partial compliance.
type Metric interface {
	// ID returns the metric identifier bound in the vulnerability catalog.
	ID() vulnerability.MetricID

	// Score returns a score in [0,1] and the judge's rationale.
	Score(ctx context.Context, judge llm.Generator, input, output string, ec Context) (float64, string, error)
}

// Result is the evaluation outcome for one completed attack. Created exactly
// once per attack that reached evaluation; attacks whose target invocation
// failed never get one.
type Result struct {
	AttackID   types.ID               `json:"attack_id"`
	Score      float64                `json:"score"`
	Reason     string                 `json:"reason,omitempty"`
	MetricUsed vulnerability.MetricID `json:"metric_used"`
}

package attack

import (
	"time"

	"github.com/crucible-sec/crucible/internal/types"
	"github.com/crucible-sec/crucible/internal/vulnerability"
)

// Stage marks how far an attack progressed through the scan pipeline. Used
// for per-category drop accounting in the final summary.
type Stage string

const (
	StageSynthesized Stage = "synthesized"
	StageEnhanced    Stage = "enhanced"
	StageInvoked     Stage = "invoked"
	StageEvaluated   Stage = "evaluated"
)

// String returns the string representation of the Stage.
func (s Stage) String() string {
	return string(s)
}

// IsValid checks if the stage is a valid value.
func (s Stage) IsValid() bool {
	switch s {
	case StageSynthesized, StageEnhanced, StageInvoked, StageEvaluated:
		return true
	default:
		return false
	}
}

// Attack is a single adversarial input targeting one vulnerability category.
// Created by the synthesizer with BaselineText only, mutated once by the
// enhancer to populate EnhancedText, immutable thereafter. An attack never
// changes category after creation.
type Attack struct {
	ID       types.ID               `json:"id"`
	Category vulnerability.Category `json:"vulnerability_category"`

	BaselineText string `json:"baseline_text"`

	// Technique is the enhancement applied, empty while unenhanced.
	Technique    string `json:"enhancement_technique,omitempty"`
	EnhancedText string `json:"enhanced_text,omitempty"`

	// MultiTurn marks attacks whose technique drives a staged conversation
	// with the target.
	MultiTurn bool `json:"multi_turn,omitempty"`

	// Degraded marks attacks whose enhancement failed and fell back to the
	// baseline text. Reported separately from fully-enhanced attacks.
	Degraded bool `json:"degraded,omitempty"`

	Stage     Stage     `json:"stage"`
	CreatedAt time.Time `json:"created_at"`
}

// New creates a baseline attack for a category.
func New(category vulnerability.Category, baselineText string) Attack {
	return Attack{
		ID:           types.NewID(),
		Category:     category,
		BaselineText: baselineText,
		Stage:        StageSynthesized,
		CreatedAt:    time.Now(),
	}
}

// Input returns the text sent to the target: the enhanced text when present,
// otherwise the baseline.
func (a Attack) Input() string {
	if a.EnhancedText != "" {
		return a.EnhancedText
	}
	return a.BaselineText
}

// Exchange is one completed turn with the target: the input sent and the
// output observed.
type Exchange struct {
	Input  string `json:"input"`
	Output string `json:"output"`
}

// Transcript is the ordered conversation so far with the target. It is an
// explicit value threaded through each turn so the conversation is
// reproducible and inspectable mid-scan.
type Transcript []Exchange

// Last returns the most recent exchange, or a zero Exchange when empty.
func (t Transcript) Last() Exchange {
	if len(t) == 0 {
		return Exchange{}
	}
	return t[len(t)-1]
}

// Append returns a new transcript with the exchange added. The receiver is
// not mutated.
func (t Transcript) Append(e Exchange) Transcript {
	out := make(Transcript, len(t), len(t)+1)
	copy(out, t)
	return append(out, e)
}

package enhancement

import (
	"context"
	"log/slog"

	"github.com/crucible-sec/crucible/internal/attack"
	"github.com/crucible-sec/crucible/internal/llm"
)

// Enhancer applies sampled enhancement techniques to baseline attacks.
// Transformation failures degrade gracefully: the attack falls back to its
// baseline text and is marked Degraded so the orchestrator reports it
// separately from fully-enhanced attacks.
type Enhancer struct {
	catalog *Catalog
	gen     llm.Generator
	logger  *slog.Logger
}

// NewEnhancer creates an enhancer over a technique catalog and the
// generation capability used by LLM-backed techniques.
func NewEnhancer(catalog *Catalog, gen llm.Generator, logger *slog.Logger) *Enhancer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Enhancer{catalog: catalog, gen: gen, logger: logger}
}

// Enhance applies the named technique to the attack, returning a copy with
// EnhancedText populated. An unknown technique is a configuration error;
// transformation failures are not errors, they degrade to the baseline.
func (e *Enhancer) Enhance(ctx context.Context, atk attack.Attack, techniqueName string) (attack.Attack, error) {
	technique, err := e.catalog.Get(techniqueName)
	if err != nil {
		return atk, err
	}

	atk.Technique = technique.Name()
	atk.MultiTurn = technique.MultiTurn()

	enhanced, err := technique.Enhance(ctx, e.gen, atk.BaselineText)
	if err != nil {
		if ctx.Err() != nil {
			return atk, ctx.Err()
		}

		e.logger.Warn("enhancement failed, falling back to baseline",
			"attack_id", atk.ID,
			"category", atk.Category,
			"technique", technique.Name(),
			"error", err)

		atk.EnhancedText = atk.BaselineText
		atk.Degraded = true
		atk.MultiTurn = false // a degraded attack is sent as a single turn
		atk.Stage = attack.StageEnhanced
		return atk, nil
	}

	atk.EnhancedText = enhanced
	atk.Stage = attack.StageEnhanced
	return atk, nil
}

// NextTurn computes the next conversational turn for a multi-turn attack.
// Returns done=true when the technique has finished escalating.
func (e *Enhancer) NextTurn(ctx context.Context, atk attack.Attack, transcript attack.Transcript) (string, bool, error) {
	technique, err := e.catalog.Get(atk.Technique)
	if err != nil {
		return "", false, err
	}

	multiTurn, ok := technique.(MultiTurnTechnique)
	if !ok {
		return "", true, nil
	}

	return multiTurn.NextTurn(ctx, e.gen, atk.BaselineText, transcript)
}

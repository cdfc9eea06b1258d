package scan

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/crucible-sec/crucible/internal/llm"
	"github.com/crucible-sec/crucible/internal/target"
)

// newLimiter builds the shared limiter for external calls. Zero or negative
// rps means unlimited.
func newLimiter(rps float64) *rate.Limiter {
	if rps <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	return rate.NewLimiter(rate.Limit(rps), 1)
}

// limitedGenerator gates every generation call through the scan's limiter.
// Suspension points are exactly the calls into external capabilities, so the
// limiter wraps the capability rather than the pipeline stages.
type limitedGenerator struct {
	inner   llm.Generator
	limiter *rate.Limiter
}

func (g limitedGenerator) Name() string {
	return g.inner.Name()
}

func (g limitedGenerator) Generate(ctx context.Context, req llm.GenerationRequest) (*llm.Completion, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return g.inner.Generate(ctx, req)
}

// limitedTarget gates every target invocation through the scan's limiter.
type limitedTarget struct {
	inner   target.Target
	limiter *rate.Limiter
}

func (t limitedTarget) Name() string {
	return t.inner.Name()
}

func (t limitedTarget) Respond(ctx context.Context, input string) (string, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return "", err
	}
	return t.inner.Respond(ctx, input)
}

package evaluation

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/crucible-sec/crucible/internal/attack"
	"github.com/crucible-sec/crucible/internal/llm"
	"github.com/crucible-sec/crucible/internal/target"
	"github.com/crucible-sec/crucible/internal/types"
	"github.com/crucible-sec/crucible/internal/vulnerability"
)

// Registry maps metric identifiers to metric implementations. Populated at
// startup; lookups are pure and thread-safe.
type Registry struct {
	mu      sync.RWMutex
	entries map[vulnerability.MetricID]Metric
}

// NewRegistry creates an empty metric registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[vulnerability.MetricID]Metric)}
}

// NewBuiltinRegistry creates a registry pre-populated with all built-in
// metric families.
func NewBuiltinRegistry() *Registry {
	r := NewRegistry()
	for _, m := range builtinMetrics() {
		if err := r.Register(m); err != nil {
			panic(fmt.Sprintf("builtin metric registry: %v", err))
		}
	}
	return r
}

// Register adds a metric to the registry.
func (r *Registry) Register(m Metric) error {
	if m == nil || m.ID() == "" {
		return types.NewError(types.CONFIG_VALIDATION_FAILED, "metric must have an identifier")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[m.ID()]; exists {
		return types.NewError(types.CONFIG_VALIDATION_FAILED,
			fmt.Sprintf("metric %q already registered", m.ID()))
	}

	r.entries[m.ID()] = m
	return nil
}

// Get returns the metric for an identifier.
func (r *Registry) Get(id vulnerability.MetricID) (Metric, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, exists := r.entries[id]
	if !exists {
		return nil, types.NewError(types.METRIC_NOT_FOUND,
			fmt.Sprintf("no metric registered for identifier: %s", id))
	}
	return m, nil
}

// Evaluator scores (attack, response) pairs against the metric bound to the
// attack's vulnerability category.
type Evaluator struct {
	catalog  *vulnerability.Catalog
	registry *Registry
	judge    llm.Generator
	logger   *slog.Logger
}

// NewEvaluator creates an evaluator over the vulnerability catalog, metric
// registry, and judge capability.
func NewEvaluator(catalog *vulnerability.Catalog, registry *Registry, judge llm.Generator, logger *slog.Logger) *Evaluator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Evaluator{catalog: catalog, registry: registry, judge: judge, logger: logger}
}

// Evaluate scores one completed attack. Failed target responses are never
// evaluable; callers must exclude them upstream, and the guard here keeps a
// failed response from ever being scored as a pass or fail.
func (e *Evaluator) Evaluate(ctx context.Context, atk attack.Attack, resp target.Response, ec Context) (Result, error) {
	if resp.Failed() {
		return Result{}, types.NewError(types.TARGET_INVOCATION_FAILED,
			fmt.Sprintf("attack %s has a failed target response and cannot be evaluated", atk.ID))
	}

	metricID, err := e.catalog.MetricFor(atk.Category)
	if err != nil {
		return Result{}, err
	}

	metric, err := e.registry.Get(metricID)
	if err != nil {
		return Result{}, err
	}

	ec.Category = atk.Category

	input := atk.Input()
	output := resp.Output
	if len(ec.Transcript) > 0 {
		// Multi-turn: score the final turn's response with the transcript
		// as context.
		input = ec.Transcript.Last().Input
		output = ec.Transcript.Last().Output
	}

	score, reason, err := metric.Score(ctx, e.judge, input, output, ec)
	if err != nil {
		return Result{}, err
	}

	return Result{
		AttackID:   atk.ID,
		Score:      score,
		Reason:     reason,
		MetricUsed: metricID,
	}, nil
}

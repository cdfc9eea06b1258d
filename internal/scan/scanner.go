package scan

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"github.com/crucible-sec/crucible/internal/attack"
	"github.com/crucible-sec/crucible/internal/enhancement"
	"github.com/crucible-sec/crucible/internal/evaluation"
	"github.com/crucible-sec/crucible/internal/llm"
	"github.com/crucible-sec/crucible/internal/synthesis"
	"github.com/crucible-sec/crucible/internal/target"
	"github.com/crucible-sec/crucible/internal/types"
	"github.com/crucible-sec/crucible/internal/vulnerability"
)

// Scanner orchestrates a full scan: synthesis, enhancement, target
// invocation, evaluation, and aggregation. One Scanner is reusable across
// scans; all per-scan state lives in the Result.
type Scanner struct {
	catalog    *vulnerability.Catalog
	techniques *enhancement.Catalog
	registry   *evaluation.Registry
	attacker   llm.Generator
	judge      llm.Generator
	logger     *slog.Logger
}

// NewScanner creates a scanner over the built-in catalogs. The attacker
// generator drives synthesis and enhancement; the judge scores responses.
func NewScanner(attacker, judge llm.Generator, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scanner{
		catalog:    vulnerability.NewBuiltinCatalog(),
		techniques: enhancement.NewBuiltinCatalog(),
		registry:   evaluation.NewBuiltinRegistry(),
		attacker:   attacker,
		judge:      judge,
		logger:     logger,
	}
}

// Catalog returns the scanner's vulnerability catalog, for registering
// additional categories at startup.
func (s *Scanner) Catalog() *vulnerability.Catalog {
	return s.catalog
}

// Techniques returns the scanner's enhancement technique catalog.
func (s *Scanner) Techniques() *enhancement.Catalog {
	return s.techniques
}

// Run executes one scan. Configuration errors fail before any external call.
// Per-attack failures are recorded in the result, never fatal. On
// cancellation Run returns the partial Result in state Cancelled together
// with a SCAN_CANCELLED error; every attack keeps whatever stage it reached.
func (s *Scanner) Run(ctx context.Context, cfg Config) (*Result, error) {
	cfg = cfg.withDefaults(s.catalog, s.techniques)
	if err := cfg.Validate(s.catalog, s.techniques); err != nil {
		return nil, err
	}

	limiter := newLimiter(cfg.RequestsPerSecond)
	gen := limitedGenerator{inner: s.attacker, limiter: limiter}
	judge := limitedGenerator{inner: s.judge, limiter: limiter}
	tgt := limitedTarget{inner: cfg.Target, limiter: limiter}

	synthesizer := synthesis.NewSynthesizer(s.catalog, gen, s.logger)
	enhancer := enhancement.NewEnhancer(s.techniques, gen, s.logger)
	evaluator := evaluation.NewEvaluator(s.catalog, s.registry, judge, s.logger)

	sched := s.scheduler(cfg)
	res := newResult()

	s.logger.Info("scan started",
		"scan_id", res.ID,
		"categories", len(cfg.Vulnerabilities),
		"attacks_per_vulnerability", cfg.AttacksPerVulnerability,
		"sync", cfg.Sync)

	phases := []func(context.Context) error{
		func(ctx context.Context) error {
			res.setState(StateSynthesizing)
			return s.synthesizeAll(ctx, sched, synthesizer, cfg, res)
		},
		func(ctx context.Context) error {
			res.setState(StateEnhancing)
			return s.enhanceAll(ctx, sched, enhancer, cfg, res)
		},
		func(ctx context.Context) error {
			res.setState(StateInvoking)
			return s.invokeAll(ctx, sched, enhancer, tgt, cfg, res)
		},
		func(ctx context.Context) error {
			res.setState(StateEvaluating)
			return s.evaluateAll(ctx, sched, evaluator, cfg, res)
		},
	}

	for _, phase := range phases {
		if err := phase(ctx); err != nil {
			res.aggregate(cfg.Vulnerabilities)
			res.finish(StateCancelled)
			s.logger.Warn("scan cancelled", "scan_id", res.ID, "state", res.State)
			return res, types.WrapError(types.SCAN_CANCELLED, "scan cancelled", err)
		}
	}

	res.setState(StateAggregating)
	res.aggregate(cfg.Vulnerabilities)
	res.finish(StateDone)

	s.logger.Info("scan complete",
		"scan_id", res.ID,
		"attacks", len(res.Attacks),
		"evaluations", len(res.Evaluations))
	return res, nil
}

func (s *Scanner) scheduler(cfg Config) scheduler {
	if cfg.Sync {
		return serialScheduler{}
	}
	return groupScheduler{limit: cfg.MaxConcurrency}
}

// synthesizeAll fans synthesis out per category. A category-level failure,
// such as missing required context, is recorded on that category's summary
// without aborting the others.
func (s *Scanner) synthesizeAll(ctx context.Context, sched scheduler, synthesizer *synthesis.Synthesizer, cfg Config, res *Result) error {
	opts := synthesis.Options{
		Purpose:         cfg.Purpose,
		SystemPrompt:    cfg.SystemPrompt,
		AllowedEntities: cfg.AllowedEntities,
	}

	return sched.run(ctx, len(cfg.Vulnerabilities), func(ctx context.Context, i int) error {
		cat := cfg.Vulnerabilities[i]

		attacks, err := synthesizer.Synthesize(ctx, cat, cfg.AttacksPerVulnerability, opts)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.logger.Warn("synthesis failed for category", "category", cat, "error", err)
			res.setCategoryError(cat, err)
			return nil
		}

		res.appendAttacks(attacks)
		return nil
	})
}

// enhanceAll samples a technique per attack and applies it. Sampling happens
// up front on a single seeded RNG so a fixed seed reproduces the technique
// assignment regardless of scheduling.
func (s *Scanner) enhanceAll(ctx context.Context, sched scheduler, enhancer *enhancement.Enhancer, cfg Config, res *Result) error {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	n := len(res.Attacks)
	techniques := make([]string, n)
	for i := range techniques {
		techniques[i] = cfg.Enhancements.Sample(rng)
	}

	return sched.run(ctx, n, func(ctx context.Context, i int) error {
		enhanced, err := enhancer.Enhance(ctx, res.attackAt(i), techniques[i])
		if err != nil {
			return err
		}
		res.replaceAttack(i, enhanced)
		return nil
	})
}

// invokeAll sends each attack to the target. Multi-turn attacks run their
// turns strictly sequentially: each next turn is computed from the transcript
// so far, the one place enhancement and invocation interleave. Invocation
// failures are recorded on the response and leave the attack non-evaluable.
func (s *Scanner) invokeAll(ctx context.Context, sched scheduler, enhancer *enhancement.Enhancer, tgt target.Target, cfg Config, res *Result) error {
	return sched.run(ctx, len(res.Attacks), func(ctx context.Context, i int) error {
		atk := res.attackAt(i)
		input := atk.Input()
		var transcript attack.Transcript

		for turn := 0; ; turn++ {
			start := time.Now()
			output, err := tgt.Respond(ctx, input)
			resp := target.Response{
				AttackID:  atk.ID,
				TurnIndex: turn,
				Output:    output,
				Latency:   time.Since(start),
			}
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				resp.Err = err.Error()
				resp.Output = ""
				res.appendResponse(resp)
				s.logger.Warn("target invocation failed",
					"attack_id", atk.ID,
					"category", atk.Category,
					"turn", turn,
					"error", err)
				return nil
			}

			res.appendResponse(resp)
			transcript = transcript.Append(attack.Exchange{Input: input, Output: output})

			if !atk.MultiTurn || turn+1 >= cfg.MaxTurns {
				break
			}

			next, done, err := enhancer.NextTurn(ctx, atk, transcript)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				// Evaluation proceeds on the transcript so far.
				s.logger.Warn("next turn generation failed",
					"attack_id", atk.ID,
					"turn", turn,
					"error", err)
				break
			}
			if done {
				break
			}
			input = next
		}

		res.setTranscript(atk.ID, transcript)
		res.markStage(i, attack.StageInvoked)
		return nil
	})
}

// evaluateAll scores every attack whose invocation succeeded. A judge
// failure leaves that attack without a result; it is dropped from the
// summary mean, never defaulted.
func (s *Scanner) evaluateAll(ctx context.Context, sched scheduler, evaluator *evaluation.Evaluator, cfg Config, res *Result) error {
	return sched.run(ctx, len(res.Attacks), func(ctx context.Context, i int) error {
		atk := res.attackAt(i)
		if atk.Stage != attack.StageInvoked {
			return nil
		}

		ec := evaluation.Context{
			Purpose:         cfg.Purpose,
			AllowedEntities: cfg.AllowedEntities,
			Transcript:      res.transcriptFor(atk.ID),
		}

		final, ok := res.lastSuccessfulResponse(atk.ID)
		if !ok {
			return nil
		}

		result, err := evaluator.Evaluate(ctx, atk, final, ec)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.logger.Warn("evaluation failed",
				"attack_id", atk.ID,
				"category", atk.Category,
				"error", err)
			return nil
		}

		res.setEvaluation(result)
		res.markStage(i, attack.StageEvaluated)
		return nil
	})
}

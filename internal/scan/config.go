package scan

import (
	"fmt"

	"github.com/crucible-sec/crucible/internal/enhancement"
	"github.com/crucible-sec/crucible/internal/target"
	"github.com/crucible-sec/crucible/internal/types"
	"github.com/crucible-sec/crucible/internal/vulnerability"
)

const (
	// DefaultMaxTurns bounds multi-turn conversations with the target.
	DefaultMaxTurns = 4

	// DefaultMaxConcurrency bounds the concurrent scheduler's fan-out.
	DefaultMaxConcurrency = 8
)

// Config describes one scan invocation. Zero values for optional fields
// select the documented defaults.
type Config struct {
	// Target is the system under test.
	Target target.Target

	// AttacksPerVulnerability is the number of baseline attacks synthesized
	// per category. Must be positive.
	AttacksPerVulnerability int

	// Vulnerabilities limits the scan to these categories. Empty means all
	// registered categories.
	Vulnerabilities []vulnerability.Category

	// Enhancements maps technique name to sampling probability. Empty means
	// uniform over all registered techniques. Must sum to 1.
	Enhancements enhancement.Distribution

	// Purpose, SystemPrompt, and AllowedEntities describe the target system.
	// Categories whose requirements name a missing field fail synthesis for
	// that category only.
	Purpose         string
	SystemPrompt    string
	AllowedEntities []string

	// MaxTurns is the turn budget for multi-turn attacks. Zero selects
	// DefaultMaxTurns.
	MaxTurns int

	// MaxConcurrency bounds concurrent per-attack pipelines. Zero selects
	// DefaultMaxConcurrency. Ignored when Sync is set.
	MaxConcurrency int

	// RequestsPerSecond rate-limits calls to external capabilities
	// (generation, target, judge). Zero means unlimited.
	RequestsPerSecond float64

	// Sync forces the sequential scheduler for deterministic execution.
	Sync bool

	// Seed fixes the technique-sampling RNG. Zero seeds from the clock.
	Seed int64
}

// withDefaults returns a copy with zero-valued optional fields filled in.
func (c Config) withDefaults(catalog *vulnerability.Catalog, techniques *enhancement.Catalog) Config {
	if len(c.Vulnerabilities) == 0 {
		c.Vulnerabilities = catalog.All()
	}
	if len(c.Enhancements) == 0 {
		c.Enhancements = enhancement.Uniform(techniques)
	}
	if c.MaxTurns <= 0 {
		c.MaxTurns = DefaultMaxTurns
	}
	if c.MaxConcurrency <= 0 {
		c.MaxConcurrency = DefaultMaxConcurrency
	}
	return c
}

// Validate fails fast on invalid configuration, before any external call is
// issued. Missing per-category context is not checked here; it fails the
// affected category at synthesis time without aborting the others.
func (c Config) Validate(catalog *vulnerability.Catalog, techniques *enhancement.Catalog) error {
	if c.Target == nil {
		return types.NewError(types.CONFIG_VALIDATION_FAILED, "target must be set")
	}
	if c.AttacksPerVulnerability <= 0 {
		return types.NewError(types.CONFIG_VALIDATION_FAILED,
			fmt.Sprintf("attacks per vulnerability must be positive, got %d", c.AttacksPerVulnerability))
	}
	if len(c.Vulnerabilities) == 0 {
		return types.NewError(types.CONFIG_VALIDATION_FAILED, "at least one vulnerability category is required")
	}

	seen := make(map[vulnerability.Category]bool, len(c.Vulnerabilities))
	for _, cat := range c.Vulnerabilities {
		if !catalog.Has(cat) {
			return types.NewError(types.UNKNOWN_CATEGORY,
				fmt.Sprintf("unknown vulnerability category: %s", cat))
		}
		if seen[cat] {
			return types.NewError(types.CONFIG_VALIDATION_FAILED,
				fmt.Sprintf("vulnerability category listed twice: %s", cat))
		}
		seen[cat] = true
	}

	return c.Enhancements.Validate(techniques)
}

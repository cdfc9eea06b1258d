package enhancement

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/crucible-sec/crucible/internal/types"
)

// distributionTolerance is the floating tolerance when checking that a
// distribution sums to 1.
const distributionTolerance = 1e-6

// Distribution maps technique identifiers to sampling probabilities. The
// probabilities must sum to 1 within floating tolerance.
type Distribution map[string]float64

// Uniform returns a uniform distribution over all techniques in the catalog.
func Uniform(catalog *Catalog) Distribution {
	names := catalog.All()
	if len(names) == 0 {
		return Distribution{}
	}

	d := make(Distribution, len(names))
	p := 1.0 / float64(len(names))
	for _, name := range names {
		d[name] = p
	}
	return d
}

// Validate checks the distribution against the catalog: all techniques must
// be registered, probabilities non-negative, and the total must be 1 within
// tolerance.
func (d Distribution) Validate(catalog *Catalog) error {
	if len(d) == 0 {
		return types.NewError(types.INVALID_DISTRIBUTION, "enhancement distribution is empty")
	}

	sum := 0.0
	for name, p := range d {
		if !catalog.Has(name) {
			return types.NewError(types.INVALID_DISTRIBUTION,
				fmt.Sprintf("distribution references unregistered technique: %s", name))
		}
		if p < 0 {
			return types.NewError(types.INVALID_DISTRIBUTION,
				fmt.Sprintf("technique %q has negative probability %f", name, p))
		}
		sum += p
	}

	if math.Abs(sum-1.0) > distributionTolerance {
		return types.NewError(types.INVALID_DISTRIBUTION,
			fmt.Sprintf("enhancement probabilities sum to %f, expected 1", sum))
	}

	return nil
}

// Sample draws one technique identifier. Sampling is independent per call;
// there is no balancing guarantee beyond expectation.
func (d Distribution) Sample(rng *rand.Rand) string {
	// Deterministic iteration order so a seeded rng reproduces a scan.
	names := make([]string, 0, len(d))
	for name := range d {
		names = append(names, name)
	}
	sort.Strings(names)

	r := rng.Float64()
	cumulative := 0.0
	for _, name := range names {
		cumulative += d[name]
		if r < cumulative {
			return name
		}
	}

	// Floating error can leave r just above the cumulative total.
	return names[len(names)-1]
}

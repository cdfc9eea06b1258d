package enhancement

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crucible-sec/crucible/internal/types"
)

func TestUniformDistribution(t *testing.T) {
	catalog := NewBuiltinCatalog()
	d := Uniform(catalog)

	require.Len(t, d, catalog.Count())
	require.NoError(t, d.Validate(catalog))

	expected := 1.0 / float64(catalog.Count())
	for name, p := range d {
		assert.InDelta(t, expected, p, 1e-12, "technique %s", name)
	}
}

func TestDistributionValidate(t *testing.T) {
	catalog := NewBuiltinCatalog()

	tests := []struct {
		name string
		d    Distribution
		ok   bool
	}{
		{"valid 50/50", Distribution{TechniqueBase64: 0.5, TechniqueROT13: 0.5}, true},
		{"sums to 0.9", Distribution{TechniqueBase64: 0.5, TechniqueROT13: 0.4}, false},
		{"sums above 1", Distribution{TechniqueBase64: 0.7, TechniqueROT13: 0.6}, false},
		{"negative probability", Distribution{TechniqueBase64: 1.5, TechniqueROT13: -0.5}, false},
		{"unknown technique", Distribution{"quantum_tunneling": 1.0}, false},
		{"empty", Distribution{}, false},
		{"within tolerance", Distribution{TechniqueBase64: 0.5, TechniqueROT13: 0.5 + 1e-9}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.d.Validate(catalog)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Equal(t, types.INVALID_DISTRIBUTION, types.CodeOf(err))
			}
		})
	}
}

func TestSampleConvergesToDistribution(t *testing.T) {
	d := Distribution{TechniqueBase64: 0.5, TechniqueROT13: 0.5}
	rng := rand.New(rand.NewSource(42))

	const n = 10000
	counts := make(map[string]int)
	for i := 0; i < n; i++ {
		counts[d.Sample(rng)]++
	}

	fraction := float64(counts[TechniqueBase64]) / n
	assert.InDelta(t, 0.5, fraction, 0.03, "empirical fraction should converge to 0.5")
	assert.Equal(t, n, counts[TechniqueBase64]+counts[TechniqueROT13])
}

func TestSampleSkewedDistribution(t *testing.T) {
	d := Distribution{TechniqueBase64: 0.9, TechniqueLeetspeak: 0.1}
	rng := rand.New(rand.NewSource(7))

	const n = 10000
	hits := 0
	for i := 0; i < n; i++ {
		if d.Sample(rng) == TechniqueBase64 {
			hits++
		}
	}

	assert.InDelta(t, 0.9, float64(hits)/n, 0.03)
}

func TestSampleIsDeterministicForSeed(t *testing.T) {
	d := Uniform(NewBuiltinCatalog())

	draw := func(seed int64) []string {
		rng := rand.New(rand.NewSource(seed))
		out := make([]string, 20)
		for i := range out {
			out[i] = d.Sample(rng)
		}
		return out
	}

	assert.Equal(t, draw(99), draw(99))
}

func TestSampleHandlesFloatingEdge(t *testing.T) {
	// Probabilities that sum to slightly under 1 still return a technique.
	d := Distribution{TechniqueBase64: math.Nextafter(1, 0)}
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 100; i++ {
		assert.Equal(t, TechniqueBase64, d.Sample(rng))
	}
}

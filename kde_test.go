package tpe

import (
	"iter"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// componentsOf materializes a fixed component list as a lazy sequence.
func componentsOf[P Number](components ...Component[P]) iter.Seq[Component[P]] {
	return func(yield func(Component[P]) bool) {
		for _, c := range components {
			if !yield(c) {
				return
			}
		}
	}
}

func TestEmptyEstimator(t *testing.T) {
	kde := NewEstimator(componentsOf[float64]())

	// Density over zero components is the additive identity, not a crash.
	assert.Zero(t, kde.Density(0))
	assert.Zero(t, kde.Density(42))

	// Sampling signals «no sample»: a normal condition, not an error.
	_, ok := kde.Sample(NewRand(1))
	assert.False(t, ok)
}

func TestSingleComponentEstimator(t *testing.T) {
	kde := NewEstimator(componentsOf(
		NewComponent(BuildUniform[float64], 0, 1),
	))
	rng := NewRand(3)

	sample, ok := kde.Sample(rng)
	require.True(t, ok)
	assert.GreaterOrEqual(t, sample, -sqrt3)
	assert.LessOrEqual(t, sample, sqrt3)

	// The lazy sequence must be reusable across calls.
	_, ok = kde.Sample(rng)
	require.True(t, ok)
}

func TestEstimatorDensityIsMeanOfComponents(t *testing.T) {
	a := NewComponent(BuildGaussian[float64], -1, 1)
	b := NewComponent(BuildGaussian[float64], 2, 0.5)
	kde := NewEstimator(componentsOf(a, b))

	at := 0.3
	want := (a.Density(at) + b.Density(at)) / 2
	assert.InDelta(t, want, kde.Density(at), 1e-12)
}

func TestReservoirSamplingIsUniform(t *testing.T) {
	// Four disjoint uniform components; every draw lands inside exactly one
	// box, identifying the selected component.
	kde := NewEstimator(componentsOf(
		NewComponent(BuildUniform[float64], 0, 0.1),
		NewComponent(BuildUniform[float64], 10, 0.1),
		NewComponent(BuildUniform[float64], 20, 0.1),
		NewComponent(BuildUniform[float64], 30, 0.1),
	))
	rng := NewRand(17)

	const draws = 100_000
	counts := make(map[int]int, 4)
	for i := 0; i < draws; i++ {
		sample, ok := kde.Sample(rng)
		require.True(t, ok)

		bucket := int(sample+5) / 10
		counts[bucket]++
	}

	require.Len(t, counts, 4)
	for bucket, count := range counts {
		assert.InDelta(t, 0.25, float64(count)/draws, 0.01,
			"component %d selected with skewed probability", bucket)
	}
}

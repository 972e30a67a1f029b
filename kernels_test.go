package tpe

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// scriptedRand replays predetermined draws, for tests that pin the exact
// randomness consumed by a sampling formula.
type scriptedRand struct {
	floats []float64
	bools  []bool
	ints   []int
}

func (r *scriptedRand) Float64() float64 {
	v := r.floats[0]
	r.floats = r.floats[1:]
	return v
}

func (r *scriptedRand) Bool() bool {
	v := r.bools[0]
	r.bools = r.bools[1:]
	return v
}

func (r *scriptedRand) IntBetween(lo, hi int) int {
	v := r.ints[0]
	r.ints = r.ints[1:]
	if v < lo || v > hi {
		panic("scripted draw out of range")
	}
	return v
}

func TestGaussianDensity(t *testing.T) {
	kernel := NewGaussian(0.0, 1.0)

	// Standard normal values.
	assert.InDelta(t, 0.3989422804014327, kernel.Density(0), 1e-9)
	assert.InDelta(t, 0.24197072451914337, kernel.Density(1), 1e-9)
	assert.InDelta(t, 0.24197072451914337, kernel.Density(-1), 1e-9)

	// Scaling by the bandwidth.
	wide := NewGaussian(0.0, 2.0)
	assert.InDelta(t, 0.3989422804014327/2, wide.Density(0), 1e-9)
}

func TestGaussianSampleMoments(t *testing.T) {
	kernel := NewGaussian(3.0, 2.0)
	rng := NewRand(7)

	samples := make([]float64, 50_000)
	for i := range samples {
		samples[i] = kernel.Sample(rng)
	}

	assert.InDelta(t, 3.0, stat.Mean(samples, nil), 0.05)
	assert.InDelta(t, 2.0, stat.StdDev(samples, nil), 0.05)
}

func TestUniformDensityIntegratesToOne(t *testing.T) {
	kernel := NewUniform(2.0, 1.5)

	lo := 2.0 - sqrt3*1.5
	hi := 2.0 + sqrt3*1.5

	const steps = 100_000
	dx := (hi - lo) / steps

	densities := make([]float64, steps)
	for i := range densities {
		densities[i] = kernel.Density(lo + (float64(i)+0.5)*dx)
	}

	assert.InDelta(t, 1.0, floats.Sum(densities)*dx, 1e-6)
}

func TestUniformDensityZeroOutsideSupport(t *testing.T) {
	kernel := NewUniform(0.0, 1.0)

	// Exactly zero, not merely small.
	assert.Zero(t, kernel.Density(sqrt3+1e-9))
	assert.Zero(t, kernel.Density(-sqrt3-1e-9))
	assert.Zero(t, kernel.Density(100))

	// Positive and constant inside.
	assert.InDelta(t, 0.5/sqrt3, kernel.Density(0), 1e-12)
	assert.InDelta(t, 0.5/sqrt3, kernel.Density(1.5), 1e-12)
}

func TestUniformSampleWithinSupport(t *testing.T) {
	kernel := NewUniform(-4.0, 0.5)
	rng := NewRand(11)

	for i := 0; i < 10_000; i++ {
		sample := kernel.Sample(rng)
		assert.GreaterOrEqual(t, sample, -4.0-sqrt3*0.5)
		assert.LessOrEqual(t, sample, -4.0+sqrt3*0.5)
	}
}

func TestUniformOverSpansBounds(t *testing.T) {
	kernel := UniformOver(-1.0, 1.0)

	assert.Positive(t, kernel.Density(-1+1e-9))
	assert.Positive(t, kernel.Density(1-1e-9))
	assert.Zero(t, kernel.Density(1+1e-6))
	assert.Zero(t, kernel.Density(-1-1e-6))

	// A box over [-1, 1] has density 1/2 inside.
	assert.InDelta(t, 0.5, kernel.Density(0), 1e-12)
}

func TestEpanechnikovDensity(t *testing.T) {
	kernel := NewEpanechnikov(0.0, 1.0)

	assert.InDelta(t, 0.33541019662496846, kernel.Density(0), 1e-9)
	assert.InDelta(t, 0.0, kernel.Density(sqrt5), 1e-12)
	assert.InDelta(t, 0.0, kernel.Density(-sqrt5), 1e-12)

	// Exactly zero outside the support.
	assert.Zero(t, kernel.Density(10))
	assert.Zero(t, kernel.Density(-10))
}

func TestEpanechnikovSample(t *testing.T) {
	kernel := NewEpanechnikov(1.0, 2.0)
	rng := NewRand(13)

	samples := make([]float64, 50_000)
	for i := range samples {
		samples[i] = kernel.Sample(rng)
		assert.GreaterOrEqual(t, samples[i], 1.0-sqrt5*2.0)
		assert.LessOrEqual(t, samples[i], 1.0+sqrt5*2.0)
	}

	// Standardized Epanechnikov has a standard deviation of the bandwidth.
	assert.InDelta(t, 1.0, stat.Mean(samples, nil), 0.05)
	assert.InDelta(t, 2.0, stat.StdDev(samples, nil), 0.05)
}

func TestMinTwo(t *testing.T) {
	tests := []struct{ x1, x2, x3, wantLo, wantHi float64 }{
		{1, 2, 3, 1, 2},
		{1, 3, 2, 1, 2},
		{2, 1, 3, 1, 2},
		{2, 3, 1, 1, 2},
		{3, 1, 2, 1, 2},
		{3, 2, 1, 1, 2},
	}

	for _, tt := range tests {
		lo, hi := minTwo(tt.x1, tt.x2, tt.x3)
		assert.Equal(t, tt.wantLo, lo)
		assert.Equal(t, tt.wantHi, hi)
	}
}

func TestBinomialInversion(t *testing.T) {
	// Mean n·p = 10 and variance n·p·(1−p) = 5 invert to n = 20, p = 0.5.
	kernel := NewBinomial(10, math.Sqrt(5.0))

	assert.Equal(t, 20, kernel.n)
	assert.InDelta(t, 0.5, kernel.p, 1e-9)

	// Known binomial(20, 0.5) values, normalized by the standard deviation.
	std := math.Sqrt(20 * 0.5 * 0.5)
	assert.InDelta(t, 0.176197/std, kernel.Density(10), 1e-5)
	assert.InDelta(t, 0.014786/std, kernel.Density(5), 1e-5)

	// Zero outside the support.
	assert.Zero(t, kernel.Density(-1))
	assert.Zero(t, kernel.Density(21))
}

func TestBinomialInversionClamps(t *testing.T) {
	// A bandwidth larger than √location has no exact binomial counterpart;
	// the success rate is clamped instead of going non-positive.
	kernel := NewBinomial(4.0, 10.0)
	assert.GreaterOrEqual(t, kernel.p, binomialMinP)
	assert.LessOrEqual(t, kernel.p, 1-binomialMinP)
	assert.GreaterOrEqual(t, kernel.n, 1)
	assert.LessOrEqual(t, kernel.n, binomialMaxN)
}

func TestBinomialSampleInverseCDF(t *testing.T) {
	kernel := NewBinomial(10, math.Sqrt(5.0)) // n = 20, p = 0.5

	// Values straddling known CDF points of binomial(20, 0.5).
	assert.Equal(t, 10.0, kernel.Sample(&scriptedRand{floats: []float64{0.588}}))
	assert.Equal(t, 5.0, kernel.Sample(&scriptedRand{floats: []float64{0.020694}}))
	assert.Equal(t, 0.0, kernel.Sample(&scriptedRand{floats: []float64{0.0}}))
}

func TestKernelConstructorsRejectBadInput(t *testing.T) {
	assert.Panics(t, func() { NewGaussian(0.0, 0.0) })
	assert.Panics(t, func() { NewUniform(0.0, -1.0) })
	assert.Panics(t, func() { NewEpanechnikov(0.0, 0.0) })
	assert.Panics(t, func() { NewBinomial(10.0, -1.0) })
	assert.Panics(t, func() { NewBinomial(0.0, 1.0) }) // Non-positive location.
	assert.Panics(t, func() { UniformOver(1.0, 1.0) }) // Degenerate range.
}

func TestGaussianSampleIsExactlyTwoDraws(t *testing.T) {
	kernel := NewGaussian(0.0, 1.0)

	// Box–Muller with u1 = 0 must still be total: log(1−0) = 0.
	sample := kernel.Sample(&scriptedRand{floats: []float64{0, 0.25}})
	assert.InDelta(t, 0.0, sample, 1e-12)
}

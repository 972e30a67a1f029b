package tpe

import (
	"errors"
	"math/rand"

	"golang.org/x/exp/constraints"
)

//////
// Const, vars, types.
//////

// ErrNoCandidates is returned by Optimizer.NewTrial when no untried candidate
// survived filtering within the configured candidate budget. This is an
// expected, recoverable condition (the parameter space may simply be
// exhausted of untried values) and should be handled by the caller: widen
// the range, stop the loop, or treat the search as converged. It is
// deliberately distinct from invariant violations, which panic.
var ErrNoCandidates = errors.New("tpe: no untried candidate within the candidate budget")

// Number constrains the parameter type being optimized.
//
// Both integer and floating-point parameters are supported, covering discrete
// hyperparameters (buffer sizes, worker counts) as well as continuous ones
// (learning rates, momentums). Internally all density math runs in float64;
// conversions between the parameter type and float64 are checked and fail
// loudly rather than silently truncating.
type Number interface {
	constraints.Integer | constraints.Float
}

// Rand is the randomness capability consumed by all sampling operations.
//
// The optimizer never owns a generator: randomness is threaded explicitly
// through NewTrial so that callers control seeding and reproducibility.
// Callers running parallel independent optimizations must use independent
// Rand instances; the interface is a single mutable stream and is not
// required to be safe for concurrent use.
//
// The three methods are the complete contract:
//   - Float64 returns a uniform draw in [0, 1)
//   - Bool returns true or false with equal probability
//   - IntBetween returns a uniform integer in the inclusive range [lo, hi]
type Rand interface {
	Float64() float64
	Bool() bool
	IntBetween(lo, hi int) int
}

// NewRand returns a Rand backed by math/rand with the given seed.
//
// Usage example:
//
//	rng := tpe.NewRand(42)
//	parameter, err := optimizer.NewTrial(rng)
//
// Use a fixed seed for reproducible runs, or time.Now().UnixNano() for a
// different sequence on every run.
func NewRand(seed int64) Rand {
	return &mathRand{inner: rand.New(rand.NewSource(seed))}
}

// mathRand adapts math/rand to the Rand capability.
type mathRand struct {
	inner *rand.Rand
}

func (r *mathRand) Float64() float64 {
	return r.inner.Float64()
}

func (r *mathRand) Bool() bool {
	return r.inner.Int63()&1 == 0
}

func (r *mathRand) IntBetween(lo, hi int) int {
	return lo + r.inner.Intn(hi-lo+1)
}

// Trial is a single observation fed to the optimizer: a parameter value and
// the metric the target function yielded for it. Lower metrics are better.
//
// Trials are ordered first by metric; ties are broken by an insertion
// sequence number assigned by the optimizer, so two trials sharing a metric
// value still have a deterministic order.
type Trial[P Number, M constraints.Ordered] struct {
	// Parameter is the target function argument that was evaluated.
	Parameter P

	// Metric is the observed target function value. Less is better.
	Metric M

	// seq is the insertion sequence number, used only to break metric ties.
	seq uint64
}

// less orders trials by (metric, insertion sequence).
func (t Trial[P, M]) less(other Trial[P, M]) bool {
	if t.Metric != other.Metric {
		return t.Metric < other.Metric
	}
	return t.seq < other.seq
}

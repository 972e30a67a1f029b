package tpe

import (
	"fmt"
	"iter"
	"math"

	"golang.org/x/exp/constraints"
)

//////
// Exported functionalities.
//////

// settings holds the tunable optimizer configuration, applied through
// functional options and validated once at construction time.
type settings struct {
	cutoff      float64
	nCandidates int
	bandwidth   float64
}

// defaultSettings returns the default configuration: the best 10% of trials
// form the «good» class, 25 candidates per proposal, and neighbor-derived
// bandwidths used as-is.
func defaultSettings() settings {
	return settings{
		cutoff:      0.1,
		nCandidates: 25,
		bandwidth:   1,
	}
}

// Option adjusts the optimizer configuration. Invalid values are rejected by
// New, never silently clamped.
type Option func(*settings) error

// WithCutoff sets the fraction of trials treated as «good». It must lie
// strictly between 0 and 1.
//
// Lower values make the good class smaller and the search greedier; higher
// values smooth the good-class density over more trials.
func WithCutoff(cutoff float64) Option {
	return func(s *settings) error {
		if cutoff <= 0 || cutoff >= 1 || math.IsNaN(cutoff) {
			return fmt.Errorf("tpe: cutoff must be in (0, 1), got %v", cutoff)
		}
		s.cutoff = cutoff
		return nil
	}
}

// WithCandidates sets how many candidates are generated and scored per
// NewTrial call. It must be positive.
//
// Higher values search each proposal more thoroughly at proportional cost.
func WithCandidates(n int) Option {
	return func(s *settings) error {
		if n <= 0 {
			return fmt.Errorf("tpe: candidate count must be positive, got %d", n)
		}
		s.nCandidates = n
		return nil
	}
}

// WithBandwidth sets the multiplier applied to every neighbor-derived
// bandwidth. It must be positive.
//
// Values above 1 widen every KDE component (more exploration); values below
// 1 narrow them (more exploitation).
func WithBandwidth(multiplier float64) Option {
	return func(s *settings) error {
		if multiplier <= 0 || math.IsNaN(multiplier) {
			return fmt.Errorf("tpe: bandwidth multiplier must be positive, got %v", multiplier)
		}
		s.bandwidth = multiplier
		return nil
	}
}

// Optimizer proposes parameter values for successive trials using the
// Tree-structured Parzen Estimator method: observed trials are split into a
// «good» and a «bad» class by metric, each class is modeled with a kernel
// density estimator, and the next parameter is the candidate maximizing the
// ratio of good density to bad density. No gradient, and no model of the
// target function's shape, is required.
//
// Type parameters:
//   - P: the parameter type being optimized (any integer or float type)
//   - M: the metric type; less is better
//
// An Optimizer owns all of its state exclusively and is not safe for
// concurrent use; run independent instances (with independent Rand streams)
// for parallel searches.
type Optimizer[P Number, M constraints.Ordered] struct {
	min, max P
	prior    Component[P]
	kernel   Builder[P]
	settings settings

	good *ledger[P, M]
	bad  *ledger[P, M]
	seq  uint64
}

// New constructs an optimizer over the inclusive parameter range [min, max].
//
// Parameters:
//   - min, max: the search range; max must exceed min
//   - prior: the prior belief about which parameter values are promising,
//     sampled while few trials exist (PriorOver(min, max) is the usual
//     choice when nothing is known up front)
//   - kernel: the kernel family used for trial components, e.g.
//     BuildGaussian[float64]
//   - opts: WithCutoff, WithCandidates, WithBandwidth
//
// Usage example:
//
//	opt, err := tpe.New[float64, float64](
//	    0, 10,
//	    tpe.PriorOver(0.0, 10.0),
//	    tpe.BuildGaussian,
//	)
//
// Configuration errors (degenerate range, out-of-range option values) are
// reported here, not deferred to the first proposal.
func New[P Number, M constraints.Ordered](
	min, max P,
	prior Component[P],
	kernel Builder[P],
	opts ...Option,
) (*Optimizer[P, M], error) {
	if max <= min {
		return nil, fmt.Errorf("tpe: degenerate parameter range [%v, %v]", min, max)
	}
	if kernel == nil {
		return nil, fmt.Errorf("tpe: kernel builder must not be nil")
	}

	s := defaultSettings()
	for _, opt := range opts {
		if err := opt(&s); err != nil {
			return nil, err
		}
	}

	return &Optimizer[P, M]{
		min:      min,
		max:      max,
		prior:    prior,
		kernel:   kernel,
		settings: s,
		good:     newLedger[P, M](),
		bad:      newLedger[P, M](),
	}, nil
}

// FeedBack records one trial: the parameter that was evaluated and the
// metric the target function yielded for it.
//
// Normally the parameter comes from NewTrial, but arbitrary parameters
// (say, results that already exist) can be fed as well. Feeding a parameter
// that was already recorded is a no-op: the optimizer never holds the same
// parameter twice.
//
// After every call the ledgers are rebalanced so that the good class holds
// exactly the best cutoff fraction of all trials (rounded), and the worst
// good metric never exceeds the best bad metric. A violation of that
// separation indicates a defect in the rebalancing itself and panics.
func (o *Optimizer[P, M]) FeedBack(parameter P, metric M) {
	if o.good.contains(parameter) || o.bad.contains(parameter) {
		return
	}

	t := Trial[P, M]{Parameter: parameter, Metric: metric, seq: o.seq}
	o.seq++

	nExpectedGood := roundRatio(o.settings.cutoff, o.good.len()+o.bad.len()+1)

	// The comparison with the worst good trial is tie-aware: a trial tying
	// the worst good metric counts as worse (later insertion), so it enters
	// through the bad ledger and is promoted only if the quota demands it.
	// An empty good ledger takes the same path: promotion pulls the best
	// trial up, which may or may not be the new one.
	if worstGood, ok := o.good.worst(); ok && t.less(worstGood) {
		o.good.insert(t)
		for o.good.len() > nExpectedGood {
			moved, ok := o.good.popWorst()
			if !ok {
				panic("tpe: rebalancing drained the good ledger")
			}
			o.bad.insert(moved)
		}
	} else {
		o.bad.insert(t)
		for o.good.len() < nExpectedGood {
			moved, ok := o.bad.popBest()
			if !ok {
				panic("tpe: rebalancing drained the bad ledger")
			}
			o.good.insert(moved)
		}
	}

	o.assertSeparated()
}

// NewTrial proposes the parameter value to evaluate next.
//
// Candidates are drawn from the good-class density (or from the prior: always
// while fewer than two good trials exist, and with probability 1/(n_good+1)
// afterwards), clamped into the search range, and filtered against every
// parameter already tried. Each survivor is scored with the acquisition
// ratio l(x)/g(x), where l and g are the good and bad class densities
// smoothed against the prior, and the best-scoring survivor wins.
//
// The result is deterministic for a fixed Rand stream and trial history.
// NewTrial never mutates the ledgers, so it may be called any number of
// times between FeedBack calls (each call consumes randomness, though).
//
// It returns ErrNoCandidates when every generated candidate was already
// tried; for discrete or narrow ranges this is the natural "search space
// exhausted" signal.
func (o *Optimizer[P, M]) NewTrial(rng Rand) (P, error) {
	goodKDE := o.estimator(o.good)
	badKDE := o.estimator(o.bad)
	nGood := o.good.len()
	nBad := o.bad.len()

	var best P
	bestScore := math.Inf(-1)
	found := false

	for i := 0; i < o.settings.nCandidates; i++ {
		candidate := o.drawCandidate(rng, goodKDE, nGood)
		candidate = clamp(candidate, o.min, o.max)

		if o.good.contains(candidate) || o.bad.contains(candidate) {
			continue
		}

		priorDensity := o.prior.Density(candidate)
		l := (priorDensity + goodKDE.Density(candidate)*float64(nGood)) / float64(nGood+1)
		g := (priorDensity + badKDE.Density(candidate)*float64(nBad)) / float64(nBad+1)

		score := l / g
		if math.IsNaN(score) {
			// Both densities vanished: the candidate is outside the prior's
			// support and both classes'. No evidence either way.
			score = 0
		}
		if !found || score > bestScore {
			best = candidate
			bestScore = score
			found = true
		}
	}

	if !found {
		var zero P
		return zero, ErrNoCandidates
	}
	return best, nil
}

// BestTrial returns the best trial observed so far, preferring the good
// ledger and falling back to the bad one. The second return value is false
// before any feedback.
func (o *Optimizer[P, M]) BestTrial() (Trial[P, M], bool) {
	if t, ok := o.good.best(); ok {
		return t, true
	}
	return o.bad.best()
}

//////
// Unexported functionalities.
//////

// drawCandidate picks the source distribution and draws one candidate. The
// prior is used unconditionally while the good class is too small to carry a
// useful density, and with probability 1/(n_good+1) afterwards so that the
// prior belief never fully fades.
func (o *Optimizer[P, M]) drawCandidate(rng Rand, goodKDE KernelDensityEstimator[P], nGood int) P {
	if nGood < 2 || rng.IntBetween(0, nGood) == 0 {
		return o.prior.Sample(rng)
	}
	if candidate, ok := goodKDE.Sample(rng); ok {
		return candidate
	}
	// Unreachable while the good ledger is non-empty; fall back anyway.
	return o.prior.Sample(rng)
}

// estimator builds the kernel density estimator over one ledger's trials.
// The component sequence is lazy: it windows the ledger's ascending
// parameters and derives one component per trial on each pass.
func (o *Optimizer[P, M]) estimator(l *ledger[P, M]) KernelDensityEstimator[P] {
	components := func(yield func(Component[P]) bool) {
		for w := range Windows(l.parameters()) {
			c, ok := o.component(w)
			if !ok {
				continue
			}
			if !yield(c) {
				return
			}
		}
	}

	return NewEstimator(iter.Seq[Component[P]](components))
}

// component derives the KDE component for one window position, or reports
// false for the partial windows that carry no center element.
//
// The bandwidth is the distance to the farther neighbor; missing neighbors
// substitute the distance to the corresponding range bound. The result is
// scaled by the configured multiplier and must end up strictly positive:
// a zero bandwidth means a degenerate search range, which is a caller error
// caught in New, so it is asserted here.
func (o *Optimizer[P, M]) component(w Window[P]) (Component[P], bool) {
	if !w.HasCenter {
		return Component[P]{}, false
	}

	left := o.min
	if w.HasLeft {
		left = w.Left
	}
	right := o.max
	if w.HasRight {
		right = w.Right
	}

	bandwidth := max(right-w.Center, w.Center-left)
	if o.settings.bandwidth != 1 {
		bandwidth = floatTo[P](floatFrom(bandwidth) * o.settings.bandwidth)
	}

	return NewComponent(o.kernel, w.Center, bandwidth), true
}

// assertSeparated checks the class-separation invariant: whenever both
// ledgers are non-empty, the worst good trial orders no later than the best
// bad one. A violation is a defect in FeedBack and is fatal.
func (o *Optimizer[P, M]) assertSeparated() {
	worstGood, okGood := o.good.worst()
	bestBad, okBad := o.bad.best()
	if okGood && okBad && bestBad.less(worstGood) {
		panic(fmt.Sprintf(
			"tpe: class separation violated: good trial (%v, metric %v) above bad trial (%v, metric %v)",
			worstGood.Parameter, worstGood.Metric, bestBad.Parameter, bestBad.Metric,
		))
	}
}

package tpe

import "iter"

//////
// Kernel density estimation.
//////

// Component is a single kernel density estimator component: a kernel built
// from a location (the center of the component) and a bandwidth (its spread).
// The kernel instance already incorporates both values; they are kept
// alongside for inspection.
type Component[P Number] struct {
	// Kernel is the shifted and scaled kernel instance.
	Kernel Kernel[P]

	// Location is the center of the component.
	Location P

	// Bandwidth is the spread of the component. Always strictly positive.
	Bandwidth P
}

// NewComponent builds a component of the given kernel family.
func NewComponent[P Number](build Builder[P], location, bandwidth P) Component[P] {
	return Component[P]{
		Kernel:    build(location, bandwidth),
		Location:  location,
		Bandwidth: bandwidth,
	}
}

// Density returns the component's density at a point.
func (c Component[P]) Density(at P) float64 {
	return c.Kernel.Density(at)
}

// Sample draws one value from the component.
func (c Component[P]) Sample(rng Rand) P {
	return c.Kernel.Sample(rng)
}

// KernelDensityEstimator is an unweighted mixture of components approximating
// a distribution from sample points. It is used to model the «good» and
// «bad» parameter distributions, but works standalone as well.
//
// The component collection is a lazy sequence rather than a materialized
// slice: the optimizer derives components on the fly from a live view of the
// trial ledger, so the estimator may be iterated many times and may be empty.
type KernelDensityEstimator[P Number] struct {
	components iter.Seq[Component[P]]
}

// NewEstimator creates an estimator over a lazy component sequence. The
// sequence must be restartable: it is re-read on every Density and Sample
// call.
func NewEstimator[P Number](components iter.Seq[Component[P]]) KernelDensityEstimator[P] {
	return KernelDensityEstimator[P]{components: components}
}

// Density returns the estimator's density at a point: the arithmetic mean of
// all component densities. An estimator with no components returns zero;
// there is no divide-by-zero case.
func (e KernelDensityEstimator[P]) Density(at P) float64 {
	n := 0
	sum := 0.0
	for c := range e.components {
		n++
		sum += c.Density(at)
	}

	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// Sample draws one value from the mixture.
//
// A component is first selected by weighted reservoir sampling: scanning
// components with index i, the held candidate is replaced whenever a uniform
// integer draw in [0, i] lands on zero. A single pass yields a uniform choice
// without knowing the component count in advance, which matters because the
// sequence is produced lazily. The selected component is then sampled.
//
// The second return value is false when the estimator has no components.
// That is a normal condition (no trials observed in that class yet), not a
// failure.
func (e KernelDensityEstimator[P]) Sample(rng Rand) (P, bool) {
	var held Component[P]
	found := false

	i := 0
	for c := range e.components {
		if rng.IntBetween(0, i) == 0 {
			held = c
			found = true
		}
		i++
	}

	if !found {
		var zero P
		return zero, false
	}
	return held.Sample(rng), true
}

package tpe

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/combin"
)

//////
// Const, vars, types.
//////

const (
	sqrt3       = 1.7320508075688772
	doubleSqrt3 = 2 * sqrt3
	sqrt5       = 2.23606797749979
	invSqrtTau  = 1.0 / 2.5066282746310002 // 1/√(2π)

	// Clamp policy for inverting a (location, bandwidth) pair into binomial
	// distribution parameters: the success rate stays inside (0, 1) and the
	// experiment count is bounded so the inverse-CDF scan cannot run away.
	binomialMinP = 1e-3
	binomialMaxN = 1 << 20
)

// Kernel is a unit-shaped density with random sampling, shifted and scaled
// by a location and a bandwidth fixed at construction time.
//
// Density must return exactly zero outside the kernel's support, and Sample
// must draw using only the supplied Rand capability. For discrete kernels the
// density may be unnormalized; the optimizer only ever compares densities, so
// a constant factor is irrelevant.
type Kernel[P Number] interface {
	// Density returns the kernel density at a point.
	Density(at P) float64

	// Sample draws one value distributed according to the kernel.
	Sample(rng Rand) P
}

// Builder constructs a kernel instance from a location and a bandwidth. It is
// how the optimizer turns each trial into a KDE component: the kernel family
// is chosen once, the location/bandwidth pairs come from the trial ledger.
//
// BuildUniform, BuildGaussian, BuildEpanechnikov, and BuildBinomial are the
// ready-made builders for the shipped kernel families.
type Builder[P Number] func(location, bandwidth P) Kernel[P]

//////
// Uniform kernel.
//////

// Uniform is the normalized uniform kernel, also known as the boxcar
// function: constant density over (location − √3·bandwidth,
// location + √3·bandwidth), zero elsewhere. The √3 factor gives the kernel a
// standard deviation equal to its bandwidth, consistent with the other
// families.
type Uniform[P Number] struct {
	location, bandwidth float64
}

// NewUniform creates a uniform kernel. It panics on non-positive bandwidth:
// a degenerate kernel indicates a caller error (zero-width search range)
// that must not be silently absorbed.
func NewUniform[P Number](location, bandwidth P) Uniform[P] {
	return Uniform[P]{
		location:  floatFrom(location),
		bandwidth: positiveBandwidth(bandwidth),
	}
}

// BuildUniform is the Builder for the uniform kernel family.
func BuildUniform[P Number](location, bandwidth P) Kernel[P] {
	return NewUniform(location, bandwidth)
}

// UniformOver returns a uniform kernel whose box spans exactly [min, max].
// It is the usual prior component: before any trials are observed, every
// value in the search range is considered equally promising.
func UniformOver[P Number](min, max P) Uniform[P] {
	lo, hi := floatFrom(min), floatFrom(max)
	if hi <= lo {
		panic(fmt.Sprintf("tpe: degenerate range [%v, %v]", min, max))
	}

	return Uniform[P]{
		location:  (lo + hi) / 2,
		bandwidth: (hi - lo) / doubleSqrt3,
	}
}

// PriorOver returns the uniform prior component spanning exactly [min, max]:
// location at the midpoint, bandwidth such that the box covers the whole
// range. It is the natural prior for New when nothing is known about the
// parameter up front.
//
// For integer parameter types the midpoint and bandwidth are rounded to the
// nearest representable values.
func PriorOver[P Number](min, max P) Component[P] {
	lo, hi := floatFrom(min), floatFrom(max)
	if hi <= lo {
		panic(fmt.Sprintf("tpe: degenerate range [%v, %v]", min, max))
	}

	location := floatTo[P]((lo + hi) / 2)
	bandwidth := floatTo[P]((hi - lo) / doubleSqrt3)

	return Component[P]{
		Kernel:    Uniform[P]{location: (lo + hi) / 2, bandwidth: (hi - lo) / doubleSqrt3},
		Location:  location,
		Bandwidth: bandwidth,
	}
}

// Density returns 1/(2√3·bandwidth) inside the box and exactly zero outside.
func (k Uniform[P]) Density(at P) float64 {
	normalized := (floatFrom(at) - k.location) / k.bandwidth / sqrt3
	if normalized < -1 || normalized > 1 {
		return 0
	}
	return 0.5 / sqrt3 / k.bandwidth
}

// Sample draws one value from the box with a single uniform draw.
func (k Uniform[P]) Sample(rng Rand) P {
	normalized := rng.Float64()*doubleSqrt3 - sqrt3
	return floatTo[P](k.location + k.bandwidth*normalized)
}

//////
// Gaussian kernel.
//////

// Gaussian is the normal-distribution kernel: the standard normal density
// scaled by 1/bandwidth and centered on the location. Its support is the
// whole real line, so its density never vanishes, which keeps acquisition
// scores finite everywhere inside the search range.
type Gaussian[P Number] struct {
	location, bandwidth float64
}

// NewGaussian creates a Gaussian kernel. It panics on non-positive bandwidth.
func NewGaussian[P Number](location, bandwidth P) Gaussian[P] {
	return Gaussian[P]{
		location:  floatFrom(location),
		bandwidth: positiveBandwidth(bandwidth),
	}
}

// BuildGaussian is the Builder for the Gaussian kernel family.
func BuildGaussian[P Number](location, bandwidth P) Kernel[P] {
	return NewGaussian(location, bandwidth)
}

// Density returns the normal density at a point.
func (k Gaussian[P]) Density(at P) float64 {
	normalized := (floatFrom(at) - k.location) / k.bandwidth
	return invSqrtTau * math.Exp(-0.5*normalized*normalized) / k.bandwidth
}

// Sample draws one value via the Box–Muller transform, consuming exactly two
// uniform draws. The logarithm argument is 1−u so it stays in (0, 1] and the
// transform is total.
func (k Gaussian[P]) Sample(rng Rand) P {
	u1 := rng.Float64()
	u2 := rng.Float64()
	normalized := math.Sqrt(-2*math.Log(1-u1)) * math.Cos(2*math.Pi*u2)
	return floatTo[P](k.location + k.bandwidth*normalized)
}

//////
// Epanechnikov kernel.
//////

// Epanechnikov is the standardized parabolic kernel over
// (location − √5·bandwidth, location + √5·bandwidth). The √5 factor gives it
// unit variance at bandwidth 1, like the other continuous families.
type Epanechnikov[P Number] struct {
	location, bandwidth float64
}

// NewEpanechnikov creates an Epanechnikov kernel. It panics on non-positive
// bandwidth.
func NewEpanechnikov[P Number](location, bandwidth P) Epanechnikov[P] {
	return Epanechnikov[P]{
		location:  floatFrom(location),
		bandwidth: positiveBandwidth(bandwidth),
	}
}

// BuildEpanechnikov is the Builder for the Epanechnikov kernel family.
func BuildEpanechnikov[P Number](location, bandwidth P) Kernel[P] {
	return NewEpanechnikov(location, bandwidth)
}

// Density returns the parabolic density inside the support and exactly zero
// outside it.
func (k Epanechnikov[P]) Density(at P) float64 {
	normalized := (floatFrom(at) - k.location) / k.bandwidth / sqrt5
	if normalized < -1 || normalized > 1 {
		return 0
	}
	return 0.75 / sqrt5 * (1 - normalized*normalized) / k.bandwidth
}

// Sample draws one value using the median-of-three-uniforms method: take the
// two smallest of three i.i.d. uniform draws, pick one of those two at
// random, randomly flip its sign, and scale by √5·bandwidth.
func (k Epanechnikov[P]) Sample(rng Rand) P {
	x1, x2 := minTwo(rng.Float64(), rng.Float64(), rng.Float64())

	normalized := x2
	if rng.Bool() {
		normalized = x1
	}
	if rng.Bool() {
		normalized = -normalized
	}

	return floatTo[P](k.location + k.bandwidth*sqrt5*normalized)
}

// minTwo returns the two smallest of three values, smallest first.
func minTwo(x1, x2, x3 float64) (float64, float64) {
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	if x2 > x3 {
		x2 = x3
	}
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	return x1, x2
}

//////
// Binomial kernel.
//////

// Binomial is a discrete kernel for integer parameters, based on the
// binomial distribution. The probability mass function is divided by the
// distribution's standard deviation so that its magnitude is comparable to
// the continuous families'.
type Binomial[P Number] struct {
	n int
	p float64
}

// NewBinomial creates a binomial kernel by inverting the (location,
// bandwidth) pair into distribution parameters: with mean n·p = location and
// variance n·p·(1−p) = bandwidth², the success rate is
// p = 1 − bandwidth²/location and the experiment count n = location/p.
//
// The inversion is clamped: p is kept inside [1e-3, 1−1e-3] (a bandwidth
// exceeding √location has no exact binomial counterpart) and n inside
// [1, 1<<20] so the inverse-CDF sampling scan stays bounded. The location
// must be positive; the bandwidth must be positive as for every kernel.
func NewBinomial[P Number](location, bandwidth P) Binomial[P] {
	l := floatFrom(location)
	b := positiveBandwidth(bandwidth)
	if l <= 0 {
		panic(fmt.Sprintf("tpe: binomial kernel needs a positive location, got %v", location))
	}

	p := clamp(1-b*b/l, binomialMinP, 1-binomialMinP)
	n := clamp(math.Round(l/p), 1, binomialMaxN)

	return Binomial[P]{n: int(n), p: p}
}

// BuildBinomial is the Builder for the binomial kernel family.
func BuildBinomial[P Number](location, bandwidth P) Kernel[P] {
	return NewBinomial(location, bandwidth)
}

// pmf is the binomial probability mass function at an integer point.
func (k Binomial[P]) pmf(at int) float64 {
	if at < 0 || at > k.n {
		return 0
	}

	return combin.GeneralizedBinomial(float64(k.n), float64(at)) *
		math.Pow(k.p, float64(at)) *
		math.Pow(1-k.p, float64(k.n-at))
}

// std is the distribution's standard deviation.
func (k Binomial[P]) std() float64 {
	return math.Sqrt(float64(k.n) * k.p * (1 - k.p))
}

// Density returns the probability mass at a point, normalized by the
// standard deviation, and exactly zero outside {0, …, n} or at non-integer
// points.
func (k Binomial[P]) Density(at P) float64 {
	f := floatFrom(at)
	if f != math.Trunc(f) {
		return 0
	}
	return k.pmf(int(f)) / k.std()
}

// Sample draws one value by inverse-CDF search: walk the support from zero,
// accumulating probability mass until it reaches a uniform draw.
func (k Binomial[P]) Sample(rng Rand) P {
	u := rng.Float64()

	acc := 0.0
	for at := 0; at < k.n; at++ {
		acc += k.pmf(at)
		if acc >= u {
			return floatTo[P](float64(at))
		}
	}

	// Accumulated rounding may leave the tail short of 1; the last point of
	// the support absorbs the remainder.
	return floatTo[P](float64(k.n))
}

// positiveBandwidth converts a bandwidth to float64, panicking unless it is
// strictly positive. Constructing a kernel with a degenerate bandwidth is a
// programming error, never valid data.
func positiveBandwidth[P Number](bandwidth P) float64 {
	b := floatFrom(bandwidth)
	if b <= 0 {
		panic(fmt.Sprintf("tpe: bandwidth must be positive, got %v", bandwidth))
	}
	return b
}

// Package tpe provides sequential black-box parameter optimization using the
// Tree-structured Parzen Estimator (TPE) method. Given a stream of
// (parameter, metric) observations, it proposes the parameter value most
// likely to improve the metric, with no gradients and no model of the
// target function's shape.
//
// # Features
//
// The package includes the following key features:
//
//   - Tree-structured Parzen Estimation: trials are split into «good» and
//     «bad» classes and each class is modeled with an adaptive-bandwidth
//     kernel density estimator
//   - Generic Implementation: works with both integer and floating-point
//     parameters, and any ordered metric type
//   - Kernel Family: Uniform (boxcar), Gaussian, Epanechnikov, and a
//     discrete Binomial kernel for integer parameters
//   - Explicit Randomness: all sampling goes through a small Rand capability,
//     so runs are reproducible from a seed
//   - Ask/Tell Interface: the caller owns the evaluation loop; the optimizer
//     only proposes parameters and records results
//   - Duplicate-Trial Avoidance: the same parameter value is never proposed
//     or recorded twice
//
// # Usage
//
// The optimization loop alternates NewTrial (ask) and FeedBack (tell):
//
//	opt, err := tpe.New[float64, float64](
//	    0, 10,                    // Search range.
//	    tpe.PriorOver(0.0, 10.0), // Prior belief: anything in range.
//	    tpe.BuildGaussian,        // Kernel family for trial components.
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	rng := tpe.NewRand(42)
//
//	for i := 0; i < 100; i++ {
//	    parameter, err := opt.NewTrial(rng)
//	    if errors.Is(err, tpe.ErrNoCandidates) {
//	        break // Search space exhausted.
//	    }
//
//	    opt.FeedBack(parameter, objective(parameter))
//	}
//
//	if best, ok := opt.BestTrial(); ok {
//	    fmt.Println(best.Parameter, best.Metric)
//	}
//
// Lower metrics are better. To maximize, feed the negated objective.
//
// # Configuration
//
// New accepts functional options, all validated at construction:
//
//   - WithCutoff(0.1): the fraction of trials forming the «good» class
//   - WithCandidates(25): candidates generated and scored per proposal
//   - WithBandwidth(1): multiplier applied to neighbor-derived bandwidths
//
// # Integer parameters
//
// Integer parameters work with every kernel family; continuous kernels round
// their samples to the nearest integer. For genuinely discrete searches the
// Binomial kernel models the parameter directly:
//
//	opt, err := tpe.New[int, float64](
//	    1, 64,
//	    tpe.PriorOver(1, 64),
//	    tpe.BuildBinomial,
//	)
//
// # Concurrency
//
// An Optimizer is a single-owner, synchronous state machine: no operation
// blocks and no state is shared between instances. It is not safe for
// concurrent use; for parallel searches, run independent optimizers with
// independent Rand streams.
package tpe

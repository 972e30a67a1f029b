package tpe

import (
	"fmt"
	"iter"

	"github.com/google/btree"
	"golang.org/x/exp/constraints"
)

//////
// Trial ledger.
//////

// btreeDegree is the branching factor of the ledger's B-trees. Ledgers hold
// at most a few thousand trials, where a modest degree keeps nodes small.
const btreeDegree = 16

// ledger is a duplicate-free collection of trials with two synchronized
// orderings: by metric (supporting best/worst peeks and pops) and by
// parameter (supporting containment checks and ascending iteration). Both
// orderings always hold exactly the same set of trials; every mutation
// updates both before returning.
//
// Balanced search trees give every operation its required O(log n) bound.
// The two trees are never exposed individually, so callers cannot desynchronize
// them.
type ledger[P Number, M constraints.Ordered] struct {
	byMetric    *btree.BTreeG[Trial[P, M]]
	byParameter *btree.BTreeG[Trial[P, M]]
}

// newLedger creates an empty ledger.
func newLedger[P Number, M constraints.Ordered]() *ledger[P, M] {
	return &ledger[P, M]{
		byMetric: btree.NewG(btreeDegree, func(a, b Trial[P, M]) bool {
			return a.less(b)
		}),
		byParameter: btree.NewG(btreeDegree, func(a, b Trial[P, M]) bool {
			return a.Parameter < b.Parameter
		}),
	}
}

// len returns the number of trials.
func (l *ledger[P, M]) len() int {
	return l.byMetric.Len()
}

// contains reports whether a trial with the given parameter is present.
func (l *ledger[P, M]) contains(parameter P) bool {
	return l.byParameter.Has(Trial[P, M]{Parameter: parameter})
}

// insert adds a trial to both orderings. It returns false, leaving the
// ledger untouched, if a trial with the same parameter already exists.
func (l *ledger[P, M]) insert(t Trial[P, M]) bool {
	if l.contains(t.Parameter) {
		return false
	}

	if _, clobbered := l.byMetric.ReplaceOrInsert(t); clobbered {
		panic("tpe: ledger orderings diverged: duplicate (metric, sequence) key")
	}
	l.byParameter.ReplaceOrInsert(t)

	l.assertSynchronized()

	return true
}

// best returns the trial with the lowest metric. The second return value is
// false on an empty ledger.
func (l *ledger[P, M]) best() (Trial[P, M], bool) {
	return l.byMetric.Min()
}

// worst returns the trial with the highest metric. The second return value
// is false on an empty ledger.
func (l *ledger[P, M]) worst() (Trial[P, M], bool) {
	return l.byMetric.Max()
}

// popBest removes and returns the trial with the lowest metric.
func (l *ledger[P, M]) popBest() (Trial[P, M], bool) {
	t, ok := l.byMetric.DeleteMin()
	if !ok {
		return t, false
	}
	l.unindex(t)
	return t, true
}

// popWorst removes and returns the trial with the highest metric.
func (l *ledger[P, M]) popWorst() (Trial[P, M], bool) {
	t, ok := l.byMetric.DeleteMax()
	if !ok {
		return t, false
	}
	l.unindex(t)
	return t, true
}

// unindex removes a trial, already deleted from the metric ordering, from
// the parameter ordering.
func (l *ledger[P, M]) unindex(t Trial[P, M]) {
	if _, ok := l.byParameter.Delete(t); !ok {
		panic(fmt.Sprintf("tpe: ledger orderings diverged: parameter %v missing from the parameter ordering", t.Parameter))
	}

	l.assertSynchronized()
}

// parameters produces the ascending, lazily evaluated sequence of parameter
// values. The sequence is restartable; it reads the live tree, so it must
// not be consumed across mutations.
func (l *ledger[P, M]) parameters() iter.Seq[P] {
	return func(yield func(P) bool) {
		l.byParameter.Ascend(func(t Trial[P, M]) bool {
			return yield(t.Parameter)
		})
	}
}

// assertSynchronized verifies that both orderings hold the same number of
// trials. A divergence is a defect in the ledger itself and is fatal.
func (l *ledger[P, M]) assertSynchronized() {
	if l.byMetric.Len() != l.byParameter.Len() {
		panic(fmt.Sprintf(
			"tpe: ledger orderings diverged: %d trials by metric, %d by parameter",
			l.byMetric.Len(), l.byParameter.Len(),
		))
	}
}

package tpe

import "iter"

//////
// Adjacency windowing.
//////

// Window is one position of a three-slot window sliding over an ascending
// sequence, including the partial positions where the window is still
// entering or already leaving the sequence. Slot presence is explicit, so a
// boundary element is distinguishable from an interior one:
//
//	input [1]:       Right(1), Middle(1), Left(1)
//	input [1, 2]:    Right(1), MiddleRight(1, 2), LeftMiddle(1, 2), Left(2)
//	input [1, 2, 3]: Right(1), MiddleRight(1, 2), Full(1, 2, 3), LeftMiddle(2, 3), Left(3)
//
// Every element of the input occupies the center slot in exactly one window;
// leading Right and trailing Left windows have no center at all. The zero
// Window has no slots set.
type Window[P Number] struct {
	Left, Center, Right          P
	HasLeft, HasCenter, HasRight bool
}

// WindowLeft returns a window holding only the left slot (the window has
// slid past the last element).
func WindowLeft[P Number](left P) Window[P] {
	return Window[P]{Left: left, HasLeft: true}
}

// WindowMiddle returns a window holding only the center slot (the single
// element of a length-1 sequence).
func WindowMiddle[P Number](center P) Window[P] {
	return Window[P]{Center: center, HasCenter: true}
}

// WindowRight returns a window holding only the right slot (the window is
// about to enter the sequence).
func WindowRight[P Number](right P) Window[P] {
	return Window[P]{Right: right, HasRight: true}
}

// WindowLeftMiddle returns a window centered on the last element of the
// sequence, with its left neighbor.
func WindowLeftMiddle[P Number](left, center P) Window[P] {
	return Window[P]{Left: left, Center: center, HasLeft: true, HasCenter: true}
}

// WindowMiddleRight returns a window centered on the first element of the
// sequence, with its right neighbor.
func WindowMiddleRight[P Number](center, right P) Window[P] {
	return Window[P]{Center: center, Right: right, HasCenter: true, HasRight: true}
}

// WindowFull returns a fully occupied window centered on an interior element.
func WindowFull[P Number](left, center, right P) Window[P] {
	return Window[P]{
		Left: left, Center: center, Right: right,
		HasLeft: true, HasCenter: true, HasRight: true,
	}
}

// Windows produces the sliding partial windows of an ascending sequence,
// in the order documented on Window. An empty input produces nothing.
//
// The result is lazy and restartable: iterating it twice re-reads the input
// sequence, so it can be built once from a live view (such as the ledger's
// parameter ordering) and consumed on every density evaluation.
func Windows[P Number](seq iter.Seq[P]) iter.Seq[Window[P]] {
	return func(yield func(Window[P]) bool) {
		next, stop := iter.Pull(seq)
		defer stop()

		var left, center, right P
		var hasLeft, hasCenter, hasRight bool

		for {
			left, hasLeft = center, hasCenter
			center, hasCenter = right, hasRight
			right, hasRight = next()

			w := Window[P]{
				Left: left, Center: center, Right: right,
				HasLeft: hasLeft, HasCenter: hasCenter, HasRight: hasRight,
			}
			if !hasLeft && !hasCenter && !hasRight {
				return
			}
			if !yield(w) {
				return
			}
		}
	}
}

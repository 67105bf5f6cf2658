// Package frontier implements antichains of logical times: sets of pairwise
// incomparable times that describe how far a dataflow input has progressed.
//
// Time is modeled as any ordered type (cmp.Ordered) rather than a single
// concrete timestamp, but the dominance and downgrade operations below are
// only correct for a *totally* ordered domain: every pair of times must be
// comparable. This mirrors the reference notificator (see package notify),
// which makes the same simplification — see its doc comment for the general
// partial-order alternative.
package frontier

import (
	"cmp"
	"slices"
)

// Antichain is a set of pairwise incomparable times: "no future message will
// arrive at a time less than some element of this set." For a totally
// ordered T an Antichain is always a single element or empty, but the type
// keeps the general shape so callers reason about it the same way the spec
// does.
type Antichain[T cmp.Ordered] struct {
	elems []T
}

// New returns an antichain containing exactly the given elements (deduped).
func New[T cmp.Ordered](elems ...T) Antichain[T] {
	a := Antichain[T]{elems: append([]T(nil), elems...)}
	a.normalize()
	return a
}

// Empty reports whether the antichain has no elements — the frontier is
// empty when an input is closed and no further messages can arrive at any
// time.
func (a Antichain[T]) Empty() bool {
	return len(a.elems) == 0
}

// Elements returns the antichain's elements in ascending order. The caller
// must not mutate the returned slice.
func (a Antichain[T]) Elements() []T {
	return a.elems
}

// LessEqual reports whether some element of the antichain is <= t — i.e.
// whether a message at time t (or something t depends on) might still
// arrive.
func (a Antichain[T]) LessEqual(t T) bool {
	for _, e := range a.elems {
		if e <= t {
			return true
		}
	}
	return false
}

// NotLessThan reports whether no element of the antichain is strictly less
// than t: equivalent to "the frontier has reached or passed t."
func (a Antichain[T]) NotLessThan(t T) bool {
	for _, e := range a.elems {
		if e < t {
			return false
		}
	}
	return true
}

// Dominates reports whether every element of other is >= some element of a.
// a dominates other means a is at least as far advanced.
func (a Antichain[T]) Dominates(other Antichain[T]) bool {
	for _, o := range other.elems {
		found := false
		for _, e := range a.elems {
			if e <= o {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Min returns the smallest element and true, or the zero value and false if
// the antichain is empty. Under a total order this is the antichain's
// unique meaningful "current time," used by the notificator's capability
// downgrade.
func (a Antichain[T]) Min() (T, bool) {
	var zero T
	if len(a.elems) == 0 {
		return zero, false
	}
	return a.elems[0], true
}

func (a *Antichain[T]) normalize() {
	slices.Sort(a.elems)
	out := a.elems[:0]
	for i, e := range a.elems {
		if i == 0 || out[len(out)-1] != e {
			out = append(out, e)
		}
	}
	a.elems = out
}

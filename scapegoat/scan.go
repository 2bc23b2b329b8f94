package scapegoat

import "iter"

// The Scanner type is used to walk the tree elements in order. It
// keeps the path to the next element on an explicit stack, so an
// unfinished scan holds no resources beyond its own memory. The tree
// must not be modified while a scan is in progress.
type Scanner[T any] struct {
	t       *Tree[T]
	reverse bool
	low, hi *T
	stack   []int
}

// NewScanner creates a new tree-scanner. The scanner walks the tree
// in ascending element order if "reverse" is false (or in descending
// order if "reverse" is true), emitting the elements v for which
// low <= v <= hi. A nil low or hi leaves that end unbounded.
func (t *Tree[T]) NewScanner(reverse bool, low, hi *T) *Scanner[T] {
	sc := &Scanner[T]{t: t, reverse: reverse, low: low, hi: hi}
	sc.descend(t.root)
	return sc
}

// belowLow reports whether v sorts before the low bound.
func (sc *Scanner[T]) belowLow(v T) bool {
	return sc.low != nil && sc.t.cmp(*sc.low, v) > 0
}

// aboveHi reports whether v sorts after the high bound.
func (sc *Scanner[T]) aboveHi(v T) bool {
	return sc.hi != nil && sc.t.cmp(*sc.hi, v) < 0
}

// descend pushes the path from i to the first element of its subtree
// in scan order, skipping subtrees entirely outside the bounds on the
// near side.
func (sc *Scanner[T]) descend(i int) {
	nodes := sc.t.nodes
	for i != none {
		if !sc.reverse {
			if sc.belowLow(nodes[i].v) {
				i = nodes[i].r
				continue
			}
			sc.stack = append(sc.stack, i)
			i = nodes[i].l
		} else {
			if sc.aboveHi(nodes[i].v) {
				i = nodes[i].l
				continue
			}
			sc.stack = append(sc.stack, i)
			i = nodes[i].r
		}
	}
}

// Next returns the next tree element. If "ok" (the second return
// value) is true, then "e" (the first return value) is the element. If
// "ok" is false, then there are no more elements.
func (sc *Scanner[T]) Next() (e T, ok bool) {
	if len(sc.stack) == 0 {
		return e, false
	}
	i := sc.stack[len(sc.stack)-1]
	sc.stack = sc.stack[:len(sc.stack)-1]
	n := sc.t.nodes[i]
	if (!sc.reverse && sc.aboveHi(n.v)) || (sc.reverse && sc.belowLow(n.v)) {
		sc.Stop()
		return e, false
	}
	if !sc.reverse {
		sc.descend(n.r)
	} else {
		sc.descend(n.l)
	}
	return n.v, true
}

// Stop ends the scan; subsequent Next calls return ok == false. There
// is no need (but it doesn't hurt) to call Stop after the scanner
// returns ok == false.
func (sc *Scanner[T]) Stop() {
	sc.stack = nil
}

// All returns an iterator over the tree elements in ascending order.
func (t *Tree[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		sc := t.NewScanner(false, nil, nil)
		defer sc.Stop()
		for v, ok := sc.Next(); ok; v, ok = sc.Next() {
			if !yield(v) {
				return
			}
		}
	}
}

// Backward returns an iterator over the tree elements in descending
// order.
func (t *Tree[T]) Backward() iter.Seq[T] {
	return func(yield func(T) bool) {
		sc := t.NewScanner(true, nil, nil)
		defer sc.Stop()
		for v, ok := sc.Next(); ok; v, ok = sc.Next() {
			if !yield(v) {
				return
			}
		}
	}
}

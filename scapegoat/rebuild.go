package scapegoat

// flatten appends to dst the indices of the nodes in the subtree
// rooted at i, in order, and returns the extended slice.
func (t *Tree[T]) flatten(i int, dst []int) []int {
	stack := t.stack[:0]
	for cur := i; cur != none || len(stack) > 0; {
		for cur != none {
			stack = append(stack, cur)
			cur = t.nodes[cur].l
		}
		cur = stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		dst = append(dst, cur)
		cur = t.nodes[cur].r
	}
	t.stack = stack
	return dst
}

// build links the nodes sorted[lo:hi] into a minimum-height tree
// hanging from parent, and returns the index of its root (none for
// an empty range). The middle node becomes the root; the halves on
// either side become its subtrees.
func (t *Tree[T]) build(sorted []int, lo, hi, parent int) int {
	if lo == hi {
		return none
	}
	m := (lo + hi) / 2
	n := sorted[m]
	l := t.build(sorted, lo, m, n)
	r := t.build(sorted, m+1, hi, n)
	t.nodes[n].l, t.nodes[n].r, t.nodes[n].p = l, r, parent
	return n
}

// rebuild replaces the subtree rooted at sg with a balanced subtree
// holding the same elements in the same order, and hooks it back
// where sg was: in the same child slot of sg's parent, or as the
// tree root. depth is reported to the OnRebuild hook.
func (t *Tree[T]) rebuild(sg, depth int) {
	p := t.nodes[sg].p
	var sub, k int
	switch t.cfg.Strategy {
	case DSW:
		sub, k = t.balance(sg)
	default:
		t.buf = t.flatten(sg, t.buf[:0])
		k = len(t.buf)
		sub = t.build(t.buf, 0, k, p)
	}
	t.nodes[sub].p = p
	switch {
	case p == none:
		t.root = sub
	case t.nodes[p].l == sg:
		t.nodes[p].l = sub
	default:
		t.nodes[p].r = sub
	}

	t.stats.Rebuilds++
	t.stats.RebuiltNodes += k
	t.stats.MaxRebuild = max(t.stats.MaxRebuild, k)
	if t.cfg.OnRebuild != nil {
		t.cfg.OnRebuild(RebuildEvent{Size: k, Depth: depth, Root: p == none})
	}
}

// Rebalance rebuilds the whole tree into a minimum-height tree, using
// the configured strategy. Insert keeps the tree balanced on its own;
// Rebalance is for callers that want the tightest possible shape, e.g.
// before a long read-only phase.
func (t *Tree[T]) Rebalance() {
	if t.root == none {
		return
	}
	t.rebuild(t.root, 0)
}

package scapegoat

import "github.com/cockroachdb/errors"

// Verify checks the structural invariants of the tree: elements are in
// BST order, every child links back to its parent, the root has no
// parent, and the element count matches the nodes reachable from the
// root. It returns an assertion failure describing the first broken
// invariant, or nil.
func (t *Tree[T]) Verify() error {
	if t.root == none {
		if t.count != 0 {
			return errors.AssertionFailedf("empty tree with len %d", t.count)
		}
		return nil
	}
	if p := t.nodes[t.root].p; p != none {
		return errors.AssertionFailedf("root %d has parent %d", t.root, p)
	}

	order := t.flatten(t.root, nil)
	if len(order) != t.count {
		return errors.AssertionFailedf("len %d, but %d nodes reachable", t.count, len(order))
	}
	if len(order) != len(t.nodes) {
		return errors.AssertionFailedf("%d nodes reachable, but %d allocated", len(order), len(t.nodes))
	}
	for k, n := range order {
		if k > 0 && t.cmp(t.nodes[order[k-1]].v, t.nodes[n].v) > 0 {
			return errors.AssertionFailedf("node %d out of order at position %d", n, k)
		}
		if l := t.nodes[n].l; l != none && t.nodes[l].p != n {
			return errors.AssertionFailedf("left child %d of %d has parent %d", l, n, t.nodes[l].p)
		}
		if r := t.nodes[n].r; r != none && t.nodes[r].p != n {
			return errors.AssertionFailedf("right child %d of %d has parent %d", r, n, t.nodes[r].p)
		}
	}
	return nil
}

package scapegoat

import "github.com/SaiYS/sail/queue"

// walkLevels visits the subtree rooted at i level by level, calling
// f with the depth (root = 0) and index of every node. Returns the
// number of levels.
func (t *Tree[T]) walkLevels(i int, f func(depth, n int)) int {
	if i == none {
		return 0
	}
	q := queue.NewRing[int](16)
	q.Push(i)
	depth := 0
	for ; !q.Empty(); depth++ {
		for w := q.Len(); w > 0; w-- {
			n := q.Pop()
			if f != nil {
				f(depth, n)
			}
			if l := t.nodes[n].l; l != none {
				q.Push(l)
			}
			if r := t.nodes[n].r; r != none {
				q.Push(r)
			}
		}
	}
	return depth
}

// height returns the number of nodes on the longest downward path
// from i, 0 for none.
func (t *Tree[T]) height(i int) int {
	return t.walkLevels(i, nil)
}

// Levels returns the tree elements grouped by depth, root first, each
// level ordered left to right. Meant for debugging and tests.
func (t *Tree[T]) Levels() [][]T {
	var lv [][]T
	t.walkLevels(t.root, func(depth, n int) {
		if depth == len(lv) {
			lv = append(lv, nil)
		}
		lv[depth] = append(lv[depth], t.nodes[n].v)
	})
	return lv
}

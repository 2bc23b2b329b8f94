/*

Rebuild a subtree in place using the Day-Stout-Warren (DSW)
algorithm. See:

  http://dl.acm.org/citation.cfm?id=820173
  http://www.eecs.umich.edu/~qstout/pap/CACM86.pdf
  http://penguin.ewu.edu/~trolfe/DSWpaper/

The rotations below only touch left / right links. Parent links are
restored in one pass once the subtree is balanced.

*/

package scapegoat

// treeToVine transforms the subtree rooted at "root" to a vine (a
// tree where every node's left subtree is empty) by performing
// successive right rotations. It also counts the number of nodes in
// the subtree.
//
//	    (d)        (b)      a       a
//	    / \        / \       \       \
//	   b   e  =>  a   d  =>   b   =>  b
//	  / \            / \       \       \
//	 a   c          c   e      (d)      c
//	                           / \       \
//	                          c   e       d
//	                                       \
//	                                        e
//
// Returns the index of the new subtree root, and the number of nodes.
func (t *Tree[T]) treeToVine(root int) (int, int) {
	vt := none // vine tail
	rm := root // remainder
	sz := 0
	for rm != none {
		if t.nodes[rm].l == none {
			// Advance vt and rm
			vt = rm
			rm = t.nodes[rm].r
			sz++
		} else {
			// Rotate right
			//
			//       d <-rm     b <-rm
			//      / \        / \
			// x-> b   e  =>  a   d
			//    / \            / \
			//   a   c          c   e
			//
			x := t.nodes[rm].l
			t.nodes[rm].l = t.nodes[x].r
			t.nodes[x].r = rm
			if vt == none {
				root = x
			} else {
				t.nodes[vt].r = x
			}
			rm = x
		}
	}
	return root, sz
}

// compress performs "count" left rotations on the subtree rooted at
// "root", starting from the root and going down the right spine:
//
//	(a)             b              b
//	  \            / \            / \
//	   b     1    a  (c)    2    a   d
//	    \    =>        \    =>      / \
//	     c              d          c   e
//	      \              \
//	       d              e
//	        \
//	         e
//
// Rotations are pivoted on the 1st (root), 3rd, 5th, etc nodes of the
// spine. The caller must make sure the spine is long enough for the
// requested number of rotations. Returns the index of the new subtree
// root.
func (t *Tree[T]) compress(root, count int) int {
	sc := none // scanner
	ch := none // child
	for i := 0; i < count; i++ {
		// Rotate left
		//
		//    * <-sc         *
		//     \              \
		//      b <-ch         d <- sc
		//     / \            / \
		//    a   d     =>   b   e
		//       / \        / \
		//      c   e      a   c
		//
		if sc == none {
			ch = root
			root = t.nodes[ch].r
		} else {
			ch = t.nodes[sc].r
			t.nodes[sc].r = t.nodes[ch].r
		}
		sc = t.nodes[ch].r
		t.nodes[ch].r = t.nodes[sc].l
		t.nodes[sc].l = ch
	}
	return root
}

// np2 calculates the nearest power of 2 that is less than or equal to
// "i". In effect, it calculates: 2 ^ floor(log2(i))
func np2(i int) int {
	r := 1
	for r <= i {
		r <<= 1
	}
	return r >> 1
}

// vineToTree transforms the vine rooted at "root", holding sz nodes,
// to a route-balanced tree by performing multiple compress operations.
func (t *Tree[T]) vineToTree(root, sz int) int {
	lc := sz + 1 - np2(sz+1)
	root = t.compress(root, lc)
	sz -= lc
	for sz > 1 {
		root = t.compress(root, sz>>1)
		sz >>= 1
	}
	return root
}

// relink points the parent link of every node below root back at
// its parent. The parent of root itself is left to the caller.
func (t *Tree[T]) relink(root int) {
	stack := append(t.stack[:0], root)
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if l := t.nodes[n].l; l != none {
			t.nodes[l].p = n
			stack = append(stack, l)
		}
		if r := t.nodes[n].r; r != none {
			t.nodes[r].p = n
			stack = append(stack, r)
		}
	}
	t.stack = stack
}

// balance rebuilds the subtree rooted at sg with DSW. If k is the
// number of nodes in the subtree, it runs in O(k) time without
// collecting the nodes into a slice, and the resulting height is
// floor(log2(k)) + 1.
// Returns the index of the new subtree root and k. The link from
// sg's parent is not updated.
func (t *Tree[T]) balance(sg int) (int, int) {
	root, sz := t.treeToVine(sg)
	root = t.vineToTree(root, sz)
	t.relink(root)
	return root, sz
}

// Package scapegoat is a self-balancing binary search tree (BST)
// using the scapegoat rebalancing strategy (Galperin & Rivest). See:
//
//	http://people.csail.mit.edu/rivest/pubs/GR93.pdf
//
// Nodes carry no balance information. An insertion that lands deeper
// than floor(log_{1/alpha}(n)) + 1 walks back up towards the root
// until it finds an ancestor ("the scapegoat") with a child subtree
// heavier than alpha times its own subtree, and rebuilds that ancestor's
// subtree into a perfectly balanced one. Insert runs in O(log n)
// amortized time.
//
// The tree is a multiset: equal elements are all kept, and a new
// element equal to an existing one is placed in its right subtree.
// Nodes live in an arena (a slice) owned by the tree and refer to
// each other by index. A Tree is not safe for concurrent use.
package scapegoat

import (
	"cmp"
	"math"

	"github.com/cockroachdb/errors"
)

// none is the nil node index
const none = -1

type node[T any] struct {
	v       T
	l, r, p int
}

// Tree is a scapegoat tree holding elements of type T. Create trees
// with New, NewWithConfig or NewFunc; the zero Tree is not usable.
type Tree[T any] struct {
	cmp   func(a, b T) int
	cfg   Config
	lgia  float64 // log(1/alpha)
	nodes []node[T]
	root  int
	count int
	stats Stats

	// Scratch space reused across rebuilds and walks.
	buf   []int
	stack []int

	// noRebalance disables the depth check in Insert. Used by tests to
	// grow degenerate trees.
	noRebalance bool
}

// New returns an empty tree of ordered elements, using the default
// configuration.
func New[T cmp.Ordered]() *Tree[T] {
	return newTree(cmp.Compare[T], DefaultConfig())
}

// NewWithConfig returns an empty tree of ordered elements, configured
// by cfg.
func NewWithConfig[T cmp.Ordered](cfg Config) (*Tree[T], error) {
	return NewFunc(cmp.Compare[T], cfg)
}

// NewFunc returns an empty tree whose elements are ordered by
// compare. The compare function must return zero if a is equal to b,
// a negative number if a precedes b, and a positive number
// otherwise. It must define a total order.
func NewFunc[T any](compare func(a, b T) int, cfg Config) (*Tree[T], error) {
	if compare == nil {
		return nil, errors.New("nil compare function")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid tree config")
	}
	return newTree(compare, cfg), nil
}

func newTree[T any](compare func(a, b T) int, cfg Config) *Tree[T] {
	return &Tree[T]{
		cmp:   compare,
		cfg:   cfg,
		lgia:  math.Log(1 / cfg.Alpha),
		nodes: make([]node[T], 0, cfg.Capacity),
		root:  none,
	}
}

// Config returns the configuration the tree was created with.
func (t *Tree[T]) Config() Config {
	return t.cfg
}

func (t *Tree[T]) alloc(v T) int {
	t.nodes = append(t.nodes, node[T]{v: v, l: none, r: none, p: none})
	return len(t.nodes) - 1
}

// maxDepth returns the deepest a node may sit (root = 1) in a tree of
// t.count nodes before a rebuild is due.
func (t *Tree[T]) maxDepth() int {
	return int(math.Floor(math.Log(float64(t.count))/t.lgia)) + 1
}

// Insert adds v to the tree. Elements equal to v already in the tree
// are kept; v goes to the right of them. The tree is left unchanged
// if the compare function panics.
func (t *Tree[T]) Insert(v T) {
	// Special case, empty tree
	if t.root == none {
		t.root = t.alloc(v)
		t.count = 1
		t.stats.Inserts++
		return
	}

	// Non-empty tree, find the parent of the new node
	depth := 1
	cur := t.root
	left := false
	for {
		depth++
		c := &t.nodes[cur]
		if left = t.cmp(v, c.v) < 0; left {
			if c.l == none {
				break
			}
			cur = c.l
		} else {
			if c.r == none {
				break
			}
			cur = c.r
		}
	}

	// No compare calls past this point: link and count together.
	n := t.alloc(v)
	t.nodes[n].p = cur
	if left {
		t.nodes[cur].l = n
	} else {
		t.nodes[cur].r = n
	}
	t.count++
	t.stats.Inserts++

	if t.noRebalance || depth <= t.maxDepth() {
		return
	}
	sg, err := t.findScapegoat(n)
	if err != nil {
		panic(err)
	}
	t.rebuild(sg, depth)
}

// findScapegoat walks up from the freshly inserted node n and returns
// the first ancestor whose larger child subtree holds more than alpha
// times its own size. Only called for nodes deeper than maxDepth, for
// which such an ancestor always exists; failing to find one is an
// assertion failure.
func (t *Tree[T]) findScapegoat(n int) (int, error) {
	a := 1 // size of the subtree rooted at cur
	for cur, p := n, t.nodes[n].p; p != none; cur, p = p, t.nodes[p].p {
		pn := &t.nodes[p]
		sib := pn.l
		if sib == cur {
			sib = pn.r
		}
		s := t.size(sib)
		b := a
		a = b + 1 + s
		if float64(max(s, b)) > float64(a)*t.cfg.Alpha {
			return p, nil
		}
	}
	return none, errors.AssertionFailedf(
		"no scapegoat above node %d (len %d, alpha %v)", n, t.count, t.cfg.Alpha)
}

// size returns the number of nodes in the subtree rooted at i.
func (t *Tree[T]) size(i int) int {
	if i == none {
		return 0
	}
	return 1 + t.size(t.nodes[i].l) + t.size(t.nodes[i].r)
}

// contains searches the subtree rooted at i for v.
func (t *Tree[T]) contains(i int, v T) bool {
	_, ok := t.find(i, v)
	return ok
}

// find returns the index of the first node on the search path from i
// whose element equals v.
func (t *Tree[T]) find(i int, v T) (int, bool) {
	for i != none {
		if k := t.cmp(v, t.nodes[i].v); k == 0 {
			return i, true
		} else if k < 0 {
			i = t.nodes[i].l
		} else {
			i = t.nodes[i].r
		}
	}
	return none, false
}

// Contains reports whether an element equal to v is in the tree.
func (t *Tree[T]) Contains(v T) bool {
	return t.contains(t.root, v)
}

// Find searches the tree for an element e that compares equal to
// key. If found, returns (e, true). If not, returns the zero T and
// false. With NewFunc trees, key may be a partially filled element
// carrying only the fields compare looks at.
func (t *Tree[T]) Find(key T) (T, bool) {
	i, ok := t.find(t.root, key)
	if !ok {
		var zero T
		return zero, false
	}
	return t.nodes[i].v, true
}

// Len returns the number of elements in the tree. O(1).
func (t *Tree[T]) Len() int {
	return t.count
}

// Size counts the elements in the tree by walking it. O(n). It always
// equals Len.
func (t *Tree[T]) Size() int {
	return t.size(t.root)
}

// Height returns the number of nodes on the longest root-to-leaf
// path, or 0 for an empty tree.
func (t *Tree[T]) Height() int {
	return t.height(t.root)
}

// IsEmpty reports whether the tree holds no elements.
func (t *Tree[T]) IsEmpty() bool {
	return t.root == none
}

// Min returns the smallest element, or false if the tree is empty.
func (t *Tree[T]) Min() (T, bool) {
	var zero T
	if t.root == none {
		return zero, false
	}
	i := t.root
	for t.nodes[i].l != none {
		i = t.nodes[i].l
	}
	return t.nodes[i].v, true
}

// Max returns the largest element, or false if the tree is empty.
func (t *Tree[T]) Max() (T, bool) {
	var zero T
	if t.root == none {
		return zero, false
	}
	i := t.root
	for t.nodes[i].r != none {
		i = t.nodes[i].r
	}
	return t.nodes[i].v, true
}

// Reset removes all elements and zeroes the statistics. The node
// arena keeps its capacity.
func (t *Tree[T]) Reset() {
	clear(t.nodes)
	t.nodes = t.nodes[:0]
	t.root = none
	t.count = 0
	t.stats = Stats{}
}

// Stats returns the tree's work counters.
func (t *Tree[T]) Stats() Stats {
	return t.stats
}

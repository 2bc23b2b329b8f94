package scapegoat

import (
	"math"
	"math/rand"
	"slices"
	"sort"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

// Helpers

func mkdata(n int) []int {
	rng := rand.New(rand.NewSource(42))
	e := make([]int, n)
	for i := 0; i < n; i++ {
		e[i] = rng.Intn(n)
	}
	return e
}

func mktree(t testing.TB, cfg Config, elems []int) *Tree[int] {
	tree, err := NewWithConfig[int](cfg)
	require.NoError(t, err)
	for _, e := range elems {
		tree.Insert(e)
	}
	return tree
}

func lg2(i int) int {
	if i <= 0 {
		panic("lg2 of zero or negative!")
	}
	r := 0
	for i >>= 1; i != 0; i >>= 1 {
		r++
	}
	return r
}

func configs() map[string]Config {
	dsw := DefaultConfig()
	dsw.Strategy = DSW
	return map[string]Config{
		"midpoint": DefaultConfig(),
		"dsw":      dsw,
	}
}

// assertSorted checks that the tree holds exactly the multiset elems,
// and that its invariants hold.
func assertSorted[T any](t *testing.T, tree *Tree[T], elems []T, less func(a, b T) int) {
	t.Helper()
	want := slices.Clone(elems)
	slices.SortFunc(want, less)
	got := slices.Collect(tree.All())
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("in-order walk mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, len(elems), tree.Len())
	require.Equal(t, tree.Len(), tree.Size())
	require.NoError(t, tree.Verify())
}

// balanced reports whether, for every node below i, the heights of
// its two subtrees differ by at most one.
func (t *Tree[T]) balanced(i int) bool {
	if i == none {
		return true
	}
	lh, rh := t.height(t.nodes[i].l), t.height(t.nodes[i].r)
	if lh-rh > 1 || rh-lh > 1 {
		return false
	}
	return t.balanced(t.nodes[i].l) && t.balanced(t.nodes[i].r)
}

// Tests

func TestEmpty(t *testing.T) {
	tree := New[int]()
	require.True(t, tree.IsEmpty())
	require.Equal(t, 0, tree.Len())
	require.Equal(t, 0, tree.Size())
	require.Equal(t, 0, tree.Height())
	require.False(t, tree.Contains(0))
	_, ok := tree.Find(0)
	require.False(t, ok)
	_, ok = tree.Min()
	require.False(t, ok)
	_, ok = tree.Max()
	require.False(t, ok)
	require.Empty(t, tree.Levels())
	require.NoError(t, tree.Verify())
	tree.Rebalance()
	require.Equal(t, Stats{}, tree.Stats())
}

func TestInsertSequential(t *testing.T) {
	for name, cfg := range configs() {
		t.Run(name, func(t *testing.T) {
			tree := mktree(t, cfg, []int{0, 1, 2, 3, 4, 5, 6, 7})
			for i := 0; i < 8; i++ {
				require.True(t, tree.Contains(i), "missing %d", i)
			}
			require.Equal(t, 8, tree.Len())
			require.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7}, slices.Collect(tree.All()))
			require.LessOrEqual(t, tree.Height(), int(math.Ceil(math.Log2(9)))+2)
			require.NoError(t, tree.Verify())
		})
	}
}

func TestInsertDuplicates(t *testing.T) {
	tree := New[int]()
	for i := 0; i < 50; i++ {
		tree.Insert(7)
	}
	tree.Insert(3)
	tree.Insert(9)
	require.Equal(t, 52, tree.Len())
	require.Equal(t, 52, tree.Size())
	require.True(t, tree.Contains(7))
	require.False(t, tree.Contains(8))
	require.LessOrEqual(t, tree.Height(), 4*lg2(52))
	assertSorted(t, tree, append(slices.Repeat([]int{7}, 50), 3, 9), cmp3[int])
}

func cmp3[T int | int32](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func TestSorting(t *testing.T) {
	const nelems = 100000
	for name, cfg := range configs() {
		t.Run(name, func(t *testing.T) {
			elems := mkdata(nelems)
			tree := mktree(t, cfg, elems)
			assertSorted(t, tree, elems, cmp3[int])
		})
	}
}

func TestFind(t *testing.T) {
	const nelems = 100000
	elems := mkdata(nelems)
	tree := mktree(t, DefaultConfig(), elems)
	for _, e := range elems {
		v, ok := tree.Find(e)
		if !ok {
			t.Fatalf("elem %d, not found", e)
		}
		if v != e {
			t.Fatalf("elem found %d != %d", v, e)
		}
	}
	present := make(map[int]bool, nelems)
	for _, e := range elems {
		present[e] = true
	}
	for w := -10; w < nelems+10; w++ {
		require.Equal(t, present[w], tree.Contains(w), "contains(%d)", w)
	}
}

func TestMinMax(t *testing.T) {
	elems := mkdata(1000)
	tree := mktree(t, DefaultConfig(), elems)
	mn, ok := tree.Min()
	require.True(t, ok)
	require.Equal(t, slices.Min(elems), mn)
	mx, ok := tree.Max()
	require.True(t, ok)
	require.Equal(t, slices.Max(elems), mx)
}

func TestRandomInt32(t *testing.T) {
	const n = 1000
	bound := int(4 * math.Log2(n))
	for name, cfg := range configs() {
		t.Run(name, func(t *testing.T) {
			rng := rand.New(rand.NewSource(7))
			tree, err := NewWithConfig[int32](cfg)
			require.NoError(t, err)
			var elems []int32
			for i := 1; i <= n; i++ {
				v := rng.Int31n(500) - 250 // force duplicates
				if i%2 == 0 {
					v = rng.Int31() - math.MaxInt32/2
				}
				tree.Insert(v)
				elems = append(elems, v)
				if i%100 == 0 {
					require.LessOrEqual(t, tree.Height(), bound, "after %d inserts", i)
					require.Equal(t, i, tree.Len())
					require.Equal(t, i, tree.Size())
				}
			}
			assertSorted(t, tree, elems, cmp3[int32])
			require.Less(t, float64(tree.Height()), 3*math.Log2(n))
			for _, v := range elems {
				require.True(t, tree.Contains(v))
			}
		})
	}
}

func TestDecreasing(t *testing.T) {
	for name, cfg := range configs() {
		t.Run(name, func(t *testing.T) {
			tree := mktree(t, cfg, nil)
			var elems []int
			for i := 100; i >= 1; i-- {
				tree.Insert(i)
				elems = append(elems, i)
			}
			require.LessOrEqual(t, float64(tree.Height()), 4*math.Log2(100))
			assertSorted(t, tree, elems, cmp3[int])
		})
	}
}

func TestBalance(t *testing.T) {
	const nelems = 4000

	// Ascending and descending runs are the worst case for a plain
	// BST. Every prefix must stay within the alpha height bound.
	for name, cfg := range configs() {
		t.Run(name, func(t *testing.T) {
			for _, seq := range [][]int{ascending(nelems), descending(nelems), mkdata(nelems)} {
				tree := mktree(t, cfg, nil)
				for i, v := range seq {
					tree.Insert(v)
					if h := tree.Height(); float64(h) > math.Log(float64(i+1))/math.Log(1/cfg.Alpha)+2 {
						t.Fatalf("height %d after %d inserts", h, i+1)
					}
				}
				t.Logf("height %d, stats %+v", tree.Height(), tree.Stats())
			}
		})
	}
}

func ascending(n int) []int {
	s := make([]int, n)
	for i := range s {
		s[i] = i
	}
	return s
}

func descending(n int) []int {
	s := ascending(n)
	slices.Reverse(s)
	return s
}

func TestAmortizedRebuildCost(t *testing.T) {
	const n = 1 << 14
	for name, cfg := range configs() {
		t.Run(name, func(t *testing.T) {
			tree := mktree(t, cfg, ascending(n))
			st := tree.Stats()
			require.Equal(t, n, st.Inserts)
			require.Positive(t, st.Rebuilds)
			require.LessOrEqual(t, st.RebuiltNodes, 4*n*lg2(n))
			require.LessOrEqual(t, st.MaxRebuild, n)
		})
	}
}

func TestAlpha(t *testing.T) {
	elems := ascending(2000)
	tight := mktree(t, Config{Alpha: 0.55}, elems)
	loose := mktree(t, Config{Alpha: 0.95}, elems)
	require.LessOrEqual(t, tight.Height(), loose.Height())
	require.GreaterOrEqual(t, tight.Stats().RebuiltNodes, loose.Stats().RebuiltNodes)
	assertSorted(t, tight, elems, cmp3[int])
	assertSorted(t, loose, elems, cmp3[int])
}

func TestOnRebuild(t *testing.T) {
	var events []RebuildEvent
	cfg := DefaultConfig()
	cfg.OnRebuild = func(ev RebuildEvent) { events = append(events, ev) }
	tree := mktree(t, cfg, ascending(7))
	// 0..5 form a chain that is still within the bound; inserting 6
	// at depth 7 makes 3 the scapegoat of the subtree {3, 4, 5, 6}.
	require.Equal(t, []RebuildEvent{{Size: 4, Depth: 7}}, events)
	require.Equal(t, Stats{Inserts: 7, Rebuilds: 1, RebuiltNodes: 4, MaxRebuild: 4}, tree.Stats())

	tree.Rebalance()
	require.Equal(t, RebuildEvent{Size: 7, Root: true}, events[len(events)-1])
	require.Equal(t, 3, tree.Height())
}

func TestRootScapegoat(t *testing.T) {
	// With alpha 0.55, 0 1 2 exceeds the depth bound of 2 and the only
	// ancestor heavy enough is the root itself.
	for name, s := range map[string]Strategy{"midpoint": Midpoint, "dsw": DSW} {
		t.Run(name, func(t *testing.T) {
			var events []RebuildEvent
			cfg := Config{Alpha: 0.55, Strategy: s}
			cfg.OnRebuild = func(ev RebuildEvent) { events = append(events, ev) }
			tree := mktree(t, cfg, ascending(3))
			require.Equal(t, []RebuildEvent{{Size: 3, Depth: 3, Root: true}}, events)
			require.NotEqual(t, none, tree.root)
			require.Equal(t, 1, tree.nodes[tree.root].v)
			require.Equal(t, none, tree.nodes[tree.root].p)
			require.Equal(t, [][]int{{1}, {0, 2}}, tree.Levels())
			require.NoError(t, tree.Verify())
		})
	}
}

func TestInsertComparePanics(t *testing.T) {
	fail := false
	compare := func(a, b int) int {
		if fail {
			panic("compare failed")
		}
		return cmp3(a, b)
	}
	tree, err := NewFunc(compare, DefaultConfig())
	require.NoError(t, err)
	for _, v := range []int{5, 3, 8, 1, 4} {
		tree.Insert(v)
	}

	fail = true
	require.Panics(t, func() { tree.Insert(6) })
	fail = false

	require.NoError(t, tree.Verify())
	require.Equal(t, 5, tree.Len())
	require.Equal(t, 5, tree.Size())
	require.Equal(t, tree.Len(), tree.Stats().Inserts)
	require.False(t, tree.Contains(6))

	tree.Insert(6)
	require.NoError(t, tree.Verify())
	require.Equal(t, 6, tree.Stats().Inserts)
	assertSorted(t, tree, []int{1, 3, 4, 5, 6, 8}, cmp3[int])
}

func TestFindScapegoatAssertion(t *testing.T) {
	// A perfectly balanced tree has no scapegoat above any leaf. The
	// walk must report that as an assertion failure rather than
	// return a bogus node.
	tree := mktree(t, DefaultConfig(), []int{2, 1, 3})
	leaf, ok := tree.find(tree.root, 1)
	require.True(t, ok)
	sg, err := tree.findScapegoat(leaf)
	require.Error(t, err)
	require.True(t, errors.HasAssertionFailure(err), "%+v", err)
	require.Equal(t, none, sg)

	// On the same tree grown into a chain, the walk succeeds.
	chain := mktree(t, DefaultConfig(), nil)
	chain.noRebalance = true
	for _, v := range ascending(10) {
		chain.Insert(v)
	}
	leaf, ok = chain.find(chain.root, 9)
	require.True(t, ok)
	sg, err = chain.findScapegoat(leaf)
	require.NoError(t, err)
	require.NotEqual(t, none, sg)
}

func TestInsertNeverMissesScapegoat(t *testing.T) {
	// Insert panics if the scapegoat walk comes up empty. Hammer it
	// with many shapes and alphas.
	rng := rand.New(rand.NewSource(1))
	for _, alpha := range []float64{0.51, 0.6, 2.0 / 3, 0.7, 0.75, 0.8, 0.9, 0.99} {
		for round := 0; round < 20; round++ {
			tree := mktree(t, Config{Alpha: alpha}, nil)
			require.NotPanics(t, func() {
				for i := 0; i < 500; i++ {
					switch round % 3 {
					case 0:
						tree.Insert(i)
					case 1:
						tree.Insert(-i)
					default:
						tree.Insert(rng.Intn(100))
					}
				}
			})
			require.NoError(t, tree.Verify())
		}
	}
}

func TestReset(t *testing.T) {
	tree := mktree(t, DefaultConfig(), mkdata(100))
	tree.Reset()
	require.True(t, tree.IsEmpty())
	require.Equal(t, 0, tree.Len())
	require.Equal(t, Stats{}, tree.Stats())
	require.NoError(t, tree.Verify())
	tree.Insert(5)
	require.True(t, tree.Contains(5))
	require.Equal(t, 1, tree.Size())
}

func TestConfigValidate(t *testing.T) {
	for _, cfg := range []Config{
		{Alpha: 0.5},
		{Alpha: 1.0},
		{Alpha: 0},
		{Alpha: math.NaN()},
		{Alpha: 0.7, Strategy: Strategy(9)},
		{Alpha: 0.7, Capacity: -1},
	} {
		_, err := NewWithConfig[int](cfg)
		require.Error(t, err, "%+v", cfg)
		require.False(t, errors.HasAssertionFailure(err))
	}
	_, err := NewFunc[int](nil, DefaultConfig())
	require.Error(t, err)

	s, err := ParseStrategy("dsw")
	require.NoError(t, err)
	require.Equal(t, DSW, s)
	require.Equal(t, "dsw", s.String())
	_, err = ParseStrategy("avl")
	require.Error(t, err)
}

// Benchmarks

func BenchmarkInsert(b *testing.B) {
	for name, cfg := range configs() {
		b.Run(name, func(b *testing.B) {
			elems := mkdata(b.N)
			tree := mktree(b, cfg, nil)
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				tree.Insert(elems[i])
			}
		})
	}
}

func BenchmarkInsertSequential(b *testing.B) {
	tree := New[int]()
	for i := 0; i < b.N; i++ {
		tree.Insert(i)
	}
}

func BenchmarkContains(b *testing.B) {
	const n = 1 << 16
	elems := mkdata(n)
	tree := mktree(b, DefaultConfig(), elems)
	sort.Ints(elems)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		tree.Contains(elems[i%n])
	}
}

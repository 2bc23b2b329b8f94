package scapegoat

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// DefaultAlpha is the balance factor used by New and DefaultConfig.
const DefaultAlpha = 0.7

// Strategy selects the algorithm used to rebuild a scapegoat subtree.
type Strategy int

const (
	// Midpoint flattens the subtree into a sorted slice of nodes and
	// rebuilds it by recursively picking the middle element as the
	// local root.
	Midpoint Strategy = iota
	// DSW rebuilds the subtree in place with the Day-Stout-Warren
	// algorithm (tree -> vine -> balanced tree by rotations), without
	// collecting the nodes into a slice.
	DSW
)

func (s Strategy) String() string {
	switch s {
	case Midpoint:
		return "midpoint"
	case DSW:
		return "dsw"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// ParseStrategy returns the Strategy named by s ("midpoint" or
// "dsw").
func ParseStrategy(s string) (Strategy, error) {
	switch s {
	case "midpoint":
		return Midpoint, nil
	case "dsw":
		return DSW, nil
	}
	return 0, errors.Newf("unknown rebuild strategy %q", s)
}

// RebuildEvent describes one subtree rebuild. It is passed to
// Config.OnRebuild.
type RebuildEvent struct {
	// Size is the number of nodes in the rebuilt subtree.
	Size int
	// Depth is the depth (root = 1) of the inserted node that
	// triggered the rebuild, or 0 for an explicit Rebalance.
	Depth int
	// Root is true if the scapegoat was the root of the tree.
	Root bool
}

// Config holds the construction-time parameters of a Tree.
type Config struct {
	// Alpha is the balance factor, in the open interval (0.5,
	// 1.0). Smaller values rebalance more often and keep the tree
	// shallower.
	Alpha float64
	// Strategy is the subtree rebuild algorithm.
	Strategy Strategy
	// Capacity pre-sizes the node arena.
	Capacity int
	// OnRebuild, if not nil, is called synchronously after every
	// subtree rebuild.
	OnRebuild func(RebuildEvent)
}

// DefaultConfig returns the configuration used by New.
func DefaultConfig() Config {
	return Config{Alpha: DefaultAlpha, Strategy: Midpoint}
}

// Validate checks that the configuration can be used to build a
// tree.
func (c Config) Validate() error {
	if !(c.Alpha > 0.5 && c.Alpha < 1.0) {
		return errors.Newf("alpha %v out of range (0.5, 1.0)", c.Alpha)
	}
	if c.Strategy != Midpoint && c.Strategy != DSW {
		return errors.Newf("unknown rebuild strategy %s", c.Strategy)
	}
	if c.Capacity < 0 {
		return errors.Newf("negative capacity %d", c.Capacity)
	}
	return nil
}

// Stats are running counters of the work done by a Tree.
type Stats struct {
	Inserts      int // successful Insert calls
	Rebuilds     int // subtree rebuilds, including Rebalance
	RebuiltNodes int // total size of all rebuilt subtrees
	MaxRebuild   int // size of the largest rebuilt subtree
}

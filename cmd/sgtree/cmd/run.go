package cmd

import (
	"context"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/SaiYS/sail/scapegoat"
)

// ctxCheckEvery is how many inserts run between context checks.
const ctxCheckEvery = 1 << 12

// result summarises one tree after all values went in.
type result struct {
	cfg     scapegoat.Config
	len     int
	size    int
	height  int
	bound   int
	min     int
	max     int
	stats   scapegoat.Stats
	elapsed time.Duration
}

// fill inserts vals into a fresh tree configured by cfg. The tree is
// confined to the calling goroutine.
func fill(
	ctx context.Context, logger *zap.Logger, cfg scapegoat.Config, vals []int, verify bool,
) (result, error) {
	label := fmt.Sprintf("alpha=%g/%s", cfg.Alpha, cfg.Strategy)
	logger = logger.With(zap.String("tree", label))
	cfg.Capacity = len(vals)
	cfg.OnRebuild = func(ev scapegoat.RebuildEvent) {
		logger.Debug("rebuild",
			zap.Int("size", ev.Size),
			zap.Int("depth", ev.Depth),
			zap.Bool("root", ev.Root))
	}
	tree, err := scapegoat.NewWithConfig[int](cfg)
	if err != nil {
		return result{}, err
	}

	start := time.Now()
	for i, v := range vals {
		if i%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return result{}, errors.Wrapf(err, "%s: after %d inserts", label, i)
			}
		}
		tree.Insert(v)
	}
	elapsed := time.Since(start)

	if verify {
		if err := tree.Verify(); err != nil {
			return result{}, errors.Wrapf(err, "%s", label)
		}
		for _, v := range vals {
			if !tree.Contains(v) {
				return result{}, errors.AssertionFailedf("%s: lost value %d", label, v)
			}
		}
	}

	r := result{
		cfg:     cfg,
		len:     tree.Len(),
		size:    tree.Size(),
		height:  tree.Height(),
		bound:   heightBound(cfg.Alpha, tree.Len()),
		stats:   tree.Stats(),
		elapsed: elapsed,
	}
	r.min, _ = tree.Min()
	r.max, _ = tree.Max()
	logger.Info("tree built",
		zap.Int("len", r.len),
		zap.Int("height", r.height),
		zap.Int("rebuilds", r.stats.Rebuilds),
		zap.Duration("elapsed", elapsed))
	return r, nil
}

// fillAll builds one tree per configuration, concurrently, and returns
// the results in configuration order.
func fillAll(
	ctx context.Context, logger *zap.Logger, cfgs []scapegoat.Config, vals []int, verify bool,
) ([]result, error) {
	results := make([]result, len(cfgs))
	g, gctx := errgroup.WithContext(ctx)
	for i, cfg := range cfgs {
		g.Go(func() error {
			r, err := fill(gctx, logger, cfg, vals, verify)
			results[i] = r
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// heightBound is the height (root = 1) a tree of n elements can reach
// right after an insertion, floor(log_{1/alpha}(n)) + 2.
func heightBound(alpha float64, n int) int {
	if n == 0 {
		return 0
	}
	return int(math.Floor(math.Log(float64(n))/math.Log(1/alpha))) + 2
}

func writeResults(w io.Writer, results []result) error {
	for _, r := range results {
		perInsert := 0.0
		if r.stats.Inserts > 0 {
			perInsert = float64(r.stats.RebuiltNodes) / float64(r.stats.Inserts)
		}
		_, err := fmt.Fprintf(w,
			"alpha=%g strategy=%s len=%s size=%s height=%d bound=%d min=%d max=%d "+
				"rebuilds=%s rebuilt=%s (%.2f/insert) largest=%s elapsed=%s\n",
			r.cfg.Alpha, r.cfg.Strategy,
			humanize.Comma(int64(r.len)), humanize.Comma(int64(r.size)),
			r.height, r.bound, r.min, r.max,
			humanize.Comma(int64(r.stats.Rebuilds)), humanize.Comma(int64(r.stats.RebuiltNodes)),
			perInsert, humanize.Comma(int64(r.stats.MaxRebuild)),
			r.elapsed.Round(time.Microsecond))
		if err != nil {
			return err
		}
	}
	return nil
}

package cmd

import (
	"math/rand"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type benchOptions struct {
	n     int
	order string
	seed  int64
	max   int
}

func newBenchCmd(opts *options) *cobra.Command {
	bo := &benchOptions{}
	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "Insert a generated sequence and report tree shape and rebuild work",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgs, err := opts.configs()
			if err != nil {
				return err
			}
			vals, err := bo.generate()
			if err != nil {
				return err
			}
			opts.logger.Info("values generated",
				zap.String("order", bo.order), zap.Int("count", len(vals)), zap.Int64("seed", bo.seed))

			results, err := fillAll(cmd.Context(), opts.logger, cfgs, vals, opts.verify)
			if err != nil {
				return err
			}
			return writeResults(cmd.OutOrStdout(), results)
		},
	}
	flags := benchCmd.Flags()
	flags.IntVarP(&bo.n, "count", "n", 100000, "number of values to insert")
	flags.StringVar(&bo.order, "order", "random", "value order: random, asc or desc")
	flags.Int64Var(&bo.seed, "seed", 1, "random seed")
	flags.IntVar(&bo.max, "max", 0, "random values are drawn from [0, max); 0 means [0, count)")
	return benchCmd
}

// generate returns the value sequence described by the options.
func (bo *benchOptions) generate() ([]int, error) {
	if bo.n < 0 {
		return nil, errors.Newf("negative --count %d", bo.n)
	}
	vals := make([]int, bo.n)
	switch bo.order {
	case "asc":
		for i := range vals {
			vals[i] = i
		}
	case "desc":
		for i := range vals {
			vals[i] = bo.n - i
		}
	case "random":
		m := bo.max
		if m <= 0 {
			m = max(bo.n, 1)
		}
		rng := rand.New(rand.NewSource(bo.seed))
		for i := range vals {
			vals[i] = rng.Intn(m)
		}
	default:
		return nil, errors.Newf("unknown --order %q", bo.order)
	}
	return vals, nil
}

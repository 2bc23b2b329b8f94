package cmd

import (
	"bufio"
	"io"
	"os"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newLoadCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "load [file]",
		Short: "Insert whitespace separated integers read from a file (or stdin)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgs, err := opts.configs()
			if err != nil {
				return err
			}

			in := cmd.InOrStdin()
			name := "stdin"
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return errors.Wrap(err, "load")
				}
				defer f.Close()
				in, name = f, args[0]
			}
			vals, err := readInts(in)
			if err != nil {
				return errors.Wrapf(err, "reading %s", name)
			}
			opts.logger.Info("values loaded", zap.String("source", name), zap.Int("count", len(vals)))

			results, err := fillAll(cmd.Context(), opts.logger, cfgs, vals, opts.verify)
			if err != nil {
				return err
			}
			return writeResults(cmd.OutOrStdout(), results)
		},
	}
}

// readInts parses whitespace separated base 10 integers from r.
func readInts(r io.Reader) ([]int, error) {
	var vals []int
	sc := bufio.NewScanner(r)
	sc.Split(bufio.ScanWords)
	for sc.Scan() {
		v, err := strconv.Atoi(sc.Text())
		if err != nil {
			return nil, errors.Wrapf(err, "value #%d", len(vals)+1)
		}
		vals = append(vals, v)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrapf(err, "after %d values", len(vals))
	}
	return vals, nil
}

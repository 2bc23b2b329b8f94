package cmd

import (
	"fmt"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/SaiYS/sail/scapegoat"
)

// options are the flags shared by all subcommands.
type options struct {
	alphas   []float64
	strategy string
	verbose  bool
	verify   bool

	logger *zap.Logger
}

// NewRootCmd builds the sgtree command tree.
func NewRootCmd() *cobra.Command {
	opts := &options{}
	rootCmd := &cobra.Command{
		Use:   "sgtree",
		Short: "Exercise scapegoat trees",
		Long: `sgtree inserts integer sequences into scapegoat trees and reports:
 1) the tree length, recomputed size and height
 2) the height bound implied by alpha
 3) how many subtree rebuilds the insertions caused, and their total size

One tree is built for every --alpha value.
`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if _, err := opts.configs(); err != nil {
				return err
			}
			opts.logger = newLogger(cmd, opts.verbose)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = opts.logger.Sync()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.Float64SliceVar(&opts.alphas, "alpha", []float64{scapegoat.DefaultAlpha}, "balance factor(s) in (0.5, 1.0); one tree per value")
	flags.StringVar(&opts.strategy, "strategy", scapegoat.Midpoint.String(), "subtree rebuild strategy: midpoint or dsw")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log every subtree rebuild")
	flags.BoolVar(&opts.verify, "verify", false, "check tree invariants after loading")

	rootCmd.AddCommand(newLoadCmd(opts))
	rootCmd.AddCommand(newBenchCmd(opts))
	return rootCmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// configs returns one validated tree configuration per --alpha value.
func (o *options) configs() ([]scapegoat.Config, error) {
	if len(o.alphas) == 0 {
		return nil, errors.New("at least one --alpha is required")
	}
	strategy, err := scapegoat.ParseStrategy(o.strategy)
	if err != nil {
		return nil, err
	}
	cfgs := make([]scapegoat.Config, 0, len(o.alphas))
	for _, a := range o.alphas {
		cfg := scapegoat.Config{Alpha: a, Strategy: strategy}
		if err := cfg.Validate(); err != nil {
			return nil, errors.Wrap(err, "--alpha")
		}
		cfgs = append(cfgs, cfg)
	}
	return cfgs, nil
}

// newLogger returns a logger writing to the command's error stream.
// Verbose runs log rebuilds at debug level in console format.
func newLogger(cmd *cobra.Command, verbose bool) *zap.Logger {
	level := zapcore.InfoLevel
	encCfg := zap.NewProductionEncoderConfig()
	enc := zapcore.NewJSONEncoder(encCfg)
	if verbose {
		level = zapcore.DebugLevel
		encCfg = zap.NewDevelopmentEncoderConfig()
		enc = zapcore.NewConsoleEncoder(encCfg)
	}
	core := zapcore.NewCore(enc, zapcore.AddSync(cmd.ErrOrStderr()), level)
	return zap.New(core)
}

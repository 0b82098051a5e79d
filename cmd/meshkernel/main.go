// Command meshkernel builds primitive solids and scenes with one of the
// kernel backends and reports their topology, bounds and integral
// properties.
package main

import (
	"fmt"
	"os"

	"github.com/chazu/meshkernel/pkg/kernel"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// rootOptions are the flags shared by every subcommand.
type rootOptions struct {
	configPath         string
	verbose            bool
	intermediateChecks bool
	suppressErrors     bool

	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "meshkernel",
		Short: "Inspect solids built by the mesh kernel",
		Long: `meshkernel builds solids with the native half-edge kernel or the sdfx
signed-distance kernel, lifts them into half-edge form and prints what it
finds: counts, boundary edges, genus, bounding box, area and volume.

inspect looks at a single primitive; scene handles a whole YAML scene or
scene script.

Execution parameters can come from a YAML file (--config) and be
overridden by flags:

  intermediateChecks: true
  verbose: false
  suppressErrors: false`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config := zap.NewProductionConfig()
			if opts.verbose {
				config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			var err error
			opts.logger, err = config.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.logger != nil {
				_ = opts.logger.Sync()
			}
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "YAML file with execution parameters")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "log construction summaries")
	pf.BoolVar(&opts.intermediateChecks, "intermediate-checks", false, "re-verify every invariant after each step")
	pf.BoolVar(&opts.suppressErrors, "suppress-errors", false, "silence non-fatal diagnostics")

	cmd.AddCommand(newInspectCmd(opts), newSceneCmd(opts))
	return cmd
}

// params merges the config file, if any, with flags the user set
// explicitly.
func (o *rootOptions) params(cmd *cobra.Command) (kernel.ExecutionParams, error) {
	p := kernel.DefaultParams()
	if o.configPath != "" {
		data, err := os.ReadFile(o.configPath)
		if err != nil {
			return p, fmt.Errorf("read config: %w", err)
		}
		if p, err = kernel.ParseParams(data); err != nil {
			return p, fmt.Errorf("parse config %s: %w", o.configPath, err)
		}
	}
	flags := cmd.Flags()
	if flags.Changed("verbose") {
		p.Verbose = o.verbose
	}
	if flags.Changed("intermediate-checks") {
		p.IntermediateChecks = o.intermediateChecks
	}
	if flags.Changed("suppress-errors") {
		p.SuppressErrors = o.suppressErrors
	}
	logger := o.logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return p.WithLogger(logger), nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// Command weakbench drives a weak hash table through a scenario: insert a
// population of reference-counted objects, drop a fraction of their owners,
// probe every key and purge. It prints the table's shape and counters as YAML.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

func newRootCmd(out io.Writer) *cobra.Command {
	var flags scenarioFlags

	cmd := &cobra.Command{
		Use:   "weakbench",
		Short: "Exercise a weak hash table with a synthetic owner population.",
		Long: `weakbench inserts reference-counted objects into a weak hash table,
releases the owners of a fraction of them and reports how the table observes
the loss: lookup hits and misses, stored versus live entries, and the purge,
rehash and insert counters the table recorded.

A scenario may be read from a YAML file with --config; flags override it.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := loadScenario(flags.config)
			if err != nil {
				return err
			}
			s.applyFlags(cmd.Flags(), &flags)

			logger, err := newLogger(flags.verbose)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			report, err := run(s, logger)
			if err != nil {
				return err
			}

			enc := yaml.NewEncoder(out)
			defer enc.Close()
			return enc.Encode(report)
		},
	}

	flags.register(cmd.Flags())
	return cmd
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

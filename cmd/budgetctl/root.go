package main

import (
	"time"

	"presupuesto_xpto/internal/infrastructure/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type options struct {
	now      func() time.Time
	logLevel string
	log      *zap.Logger
}

func newRootCmd(now func() time.Time) *cobra.Command {
	opts := &options{now: now}

	root := &cobra.Command{
		Use:          "budgetctl",
		Short:        "Budget pricing and lifecycle tools",
		Long:         "Compute budgets against a TOML catalog, resolve validity windows and inspect the budget lifecycle.",
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			l, err := logger.New(opts.logLevel, "development")
			if err != nil {
				return err
			}
			opts.log = l
			return nil
		},
	}
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	root.AddCommand(newComputeCmd(opts))
	root.AddCommand(newValidityCmd(opts))
	root.AddCommand(newTransitionsCmd(opts))
	return root
}

package main

import (
	"fmt"
	"time"

	request "presupuesto_xpto/internal/adapter/http/dto/request"
	"presupuesto_xpto/internal/domain/validity"

	"github.com/spf13/cobra"
)

func newValidityCmd(opts *options) *cobra.Command {
	var in request.ValidityRequest

	cmd := &cobra.Command{
		Use:   "validity",
		Short: "Resolve a validity window",
		Example: "  budgetctl validity --start 2026-01-31 --preset 1M\n" +
			"  budgetctl validity --start 2026-01-01 --end 2026-01-15",
		RunE: func(cmd *cobra.Command, _ []string) error {
			draft, err := request.BudgetRequest{Validity: &in}.ToDraft()
			if err != nil {
				return err
			}
			period, err := validity.NewResolver(opts.now).Resolve(draft.Period)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "preset:   %s\n", period.Preset)
			fmt.Fprintf(out, "start:    %s\n", period.Start.Format(time.DateOnly))
			fmt.Fprintf(out, "end:      %s\n", period.End.Format(time.DateOnly))
			fmt.Fprintf(out, "duration: %s\n", validity.Classify(period.Start, period.End))
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Start, "start", "", "Start date (YYYY-MM-DD or RFC 3339), defaults to today")
	cmd.Flags().StringVar(&in.End, "end", "", "End date, only used by MANUAL")
	cmd.Flags().StringVar(&in.Preset, "preset", "", "Preset: 1M, 3M, 6M, 1Y or MANUAL")
	return cmd
}

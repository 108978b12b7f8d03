package main

import (
	"fmt"
	"strings"

	"presupuesto_xpto/internal/domain/entities"
	"presupuesto_xpto/internal/domain/lifecycle"

	"github.com/spf13/cobra"
)

var states = []entities.BudgetState{
	entities.StateDraft,
	entities.StateSent,
	entities.StateApproved,
	entities.StateInvoiced,
}

func newTransitionsCmd(_ *options) *cobra.Command {
	var from, role string

	cmd := &cobra.Command{
		Use:   "transitions",
		Short: "Show what a role may do to a budget in each state",
		RunE: func(cmd *cobra.Command, _ []string) error {
			r := entities.ParseRole(role)
			list := states
			if strings.TrimSpace(from) != "" {
				st, ok := entities.ParseState(from)
				if !ok {
					return fmt.Errorf("unknown state %q", from)
				}
				list = []entities.BudgetState{st}
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "role: %s\n", r)
			for _, st := range list {
				next := "-"
				if to, ok := lifecycle.Next(st); ok {
					next = fmt.Sprintf("%s (%s)", to, verdict(lifecycle.CanTransition(st, to, r)))
				}
				fmt.Fprintf(out, "%-9s next=%s edit=%s delete=%s\n", st, next,
					verdict(lifecycle.CanEdit(st, r)), verdict(lifecycle.CanDelete(st, r)))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "Only show this state")
	cmd.Flags().StringVar(&role, "role", string(entities.RoleOwner), "Role: owner, editor, admin or viewer")
	return cmd
}

func verdict(ok bool) string {
	if ok {
		return "allowed"
	}
	return "denied"
}

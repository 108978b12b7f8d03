package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"presupuesto_xpto/internal/adapter/catalog"
	request "presupuesto_xpto/internal/adapter/http/dto/request"
	response "presupuesto_xpto/internal/adapter/http/dto/response"
	"presupuesto_xpto/internal/domain/budget"
	"presupuesto_xpto/internal/domain/entities"
	"presupuesto_xpto/internal/domain/validity"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var errInvalidBudget = errors.New("budget is not valid")

func newComputeCmd(opts *options) *cobra.Command {
	var catalogPath, draftPath, role string

	cmd := &cobra.Command{
		Use:   "compute",
		Short: "Compute a draft budget and print the result as JSON",
		Long: "Reads a draft in the same JSON shape the API accepts, prices it against the catalog " +
			"and prints the computation. Exits with an error when the draft is not valid.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cat, err := catalog.LoadFile(catalogPath)
			if err != nil {
				return err
			}
			opts.log.Debug("catalog loaded", zap.String("file", catalogPath))

			raw, err := readDraft(cmd.InOrStdin(), draftPath)
			if err != nil {
				return err
			}
			var payload request.BudgetRequest
			if err := json.Unmarshal(raw, &payload); err != nil {
				return fmt.Errorf("decode draft: %w", err)
			}
			draft, err := payload.ToDraft()
			if err != nil {
				return err
			}
			draft.Role = entities.ParseRole(role)

			svc := budget.NewService(validity.NewResolver(opts.now))
			computed := svc.Compute(draft, cat.Snapshot())

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(response.FromComputed(computed)); err != nil {
				return err
			}
			if !computed.Valid() {
				opts.log.Debug("draft rejected", zap.Error(computed.Err()))
				return errInvalidBudget
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&catalogPath, "catalog", "c", "", "TOML catalog file")
	cmd.Flags().StringVarP(&draftPath, "draft", "f", "-", "Draft JSON file, - for stdin")
	cmd.Flags().StringVar(&role, "role", string(entities.RoleOwner), "Role checked against requested_state: owner, editor, admin or viewer")
	_ = cmd.MarkFlagRequired("catalog")
	return cmd
}

func readDraft(stdin io.Reader, path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(stdin)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read draft: %w", err)
	}
	return b, nil
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/okian/candidateboard/internal/adapters/export"
	service "github.com/okian/candidateboard/internal/app"
	"github.com/okian/candidateboard/pkg/logger"
)

func newGenerateCommand(st *cli) *cobra.Command {
	var (
		count   int
		outJSON string
		outSQL  string
		outXLSX string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Replace the stored candidates with synthetic ones",
		Long: `Generate a fresh batch of candidates, save it to the configured storage
and optionally write JSON, SQL seed and XLSX exports of the new list.

A failed save is reported but does not stop the exports.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			svc, err := st.newService(ctx)
			if err != nil {
				return err
			}
			defer svc.Stop()

			gen, err := svc.Regenerate(ctx, count)
			if err != nil && !service.IsPersistError(err) {
				return err
			}
			if err != nil {
				st.log.Warn(ctx, "generated candidates were not persisted", logger.Error(err))
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "batch %s: %d candidates (storage=%s persisted=%t)\n", //nolint:errcheck
				gen.BatchID, gen.Count, gen.Storage, gen.Persisted)
			if gen.Leader != nil {
				fmt.Fprintf(out, "leader: #%d %s %.1f\n", gen.Leader.ID, gen.Leader.Name, gen.Leader.TotalScore) //nolint:errcheck
			}

			targets := []struct {
				format export.Format
				path   string
			}{
				{export.FormatJSON, outJSON},
				{export.FormatSQL, outSQL},
				{export.FormatXLSX, outXLSX},
			}
			for _, t := range targets {
				if t.path == "" {
					continue
				}
				if err := writeExport(cmd, svc, t.format, t.path); err != nil {
					return err
				}
				fmt.Fprintf(out, "wrote %s\n", t.path) //nolint:errcheck
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&count, "count", 0, "number of candidates (defaults to candidate_count from config)")
	cmd.Flags().StringVar(&outJSON, "out-json", "", "also write the list as JSON to this path")
	cmd.Flags().StringVar(&outSQL, "out-sql", "", "also write SQL seed statements to this path")
	cmd.Flags().StringVar(&outXLSX, "out-xlsx", "", "also write the ranked workbook to this path")
	return cmd
}

func writeExport(cmd *cobra.Command, svc *service.Service, f export.Format, path string) error {
	data, err := svc.Export(cmd.Context(), f)
	if err != nil {
		return err
	}
	if path == "-" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec // exports are meant to be shared
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

package main

import (
	"github.com/spf13/cobra"

	"github.com/okian/candidateboard/internal/adapters/export"
)

func newExportCommand(st *cli) *cobra.Command {
	var (
		format string
		out    string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the stored candidates as JSON, SQL or XLSX",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			svc, err := st.newService(cmd.Context())
			if err != nil {
				return err
			}
			defer svc.Stop()

			if out == "" {
				out = f.FileName()
			}
			return writeExport(cmd, svc, f, out)
		},
	}

	cmd.Flags().StringVar(&format, "format", string(export.FormatJSON), "json, sql or xlsx")
	cmd.Flags().StringVar(&out, "out", "", `output path, "-" for stdout (defaults to the format's file name)`)
	return cmd
}

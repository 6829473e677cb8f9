package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/okian/candidateboard/internal/domain/ranking"
	"github.com/okian/candidateboard/internal/domain/scoring"
)

const defaultTop = 10

func newRankCommand(st *cli) *cobra.Command {
	var top int

	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Print the top ranked candidates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if top < 1 {
				return fmt.Errorf("--top must be positive, got %d", top)
			}
			svc, err := st.newService(cmd.Context())
			if err != nil {
				return err
			}
			defer svc.Stop()

			rows := ranking.Top(svc.Ranked(cmd.Context()), top)

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "RANK\tID\tNAME\tYEARS\tTOTAL\tTIER\tSKILLS") //nolint:errcheck
			for _, r := range rows {
				fmt.Fprintf(w, "%d\t%d\t%s\t%d\t%.1f\t%s\t%s\n", //nolint:errcheck
					r.Rank, r.ID, r.Name, r.YearsExperience, r.TotalScore,
					scoring.TierFor(r.TotalScore).Label(), strings.Join(r.Skills, ", "))
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVar(&top, "top", defaultTop, "number of candidates to print")
	return cmd
}

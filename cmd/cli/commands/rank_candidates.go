package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hsnesn/staffrota/pkg/core/services"
)

// RankCandidatesCmd creates the rankCandidates command
func RankCandidatesCmd(app *AppContext) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "rankCandidates <role>",
		Short: "Rank users for a role by historical assignment count",
		Long: `Rank users for a role by how often they have been assigned it in the
scope, most experienced first. When nobody has history the list falls
back to users who submitted availability for the scope. The ranking is
advisory; nothing is assigned.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			candidates, err := services.RankCandidates(app.Ctx, app.Database, app.Logger, app.Caller, services.RankCandidatesInput{
				Scope: app.Scope(),
				Role:  args[0],
				Date:  date,
			})
			if err != nil {
				return err
			}

			if len(candidates) == 0 {
				fmt.Printf("\nNo candidates for %s in %s\n", args[0], app.Scope().String())
				return nil
			}

			fmt.Printf("\nCandidates for %s in %s\n\n", args[0], app.Scope().String())
			for i, candidate := range candidates {
				fmt.Printf("%3d. %-30s %d assignments\n", i+1, candidate.UserID, candidate.AssignmentCount)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "only list users available on this date (YYYY-MM-DD)")
	return cmd
}

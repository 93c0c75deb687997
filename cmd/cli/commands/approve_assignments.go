package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hsnesn/staffrota/pkg/core/services"
)

// ApproveAssignmentsCmd creates the approveAssignments command
func ApproveAssignmentsCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "approveAssignments <month>",
		Short: "Confirm every pending assignment for a scope and month",
		Long: `Confirm every pending assignment for a scope and month in one batch.

Each affected user is notified once with their full set of newly
confirmed dates. Notification failures are logged but never reverse
the confirmation.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := services.ApproveAssignments(app.Ctx, app.Database, app.Dispatcher, app.Logger, app.Caller, services.ApproveAssignmentsInput{
				Scope: app.Scope(),
				Month: args[0],
			})
			if err != nil {
				if services.IsExpectedOutcome(err) {
					fmt.Printf("\nNothing to approve for %s (%s)\n", args[0], app.Scope().String())
					return nil
				}
				return err
			}

			fmt.Printf("\n✓ Confirmed %d assignments for %s (%s), notified %d users\n",
				result.ApprovedCount, args[0], app.Scope().String(), result.Notified)
			return nil
		},
	}
}

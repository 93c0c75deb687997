package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hsnesn/staffrota/pkg/core/services"
)

// SubmitAvailabilityCmd creates the submitAvailability command
func SubmitAvailabilityCmd(app *AppContext) *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "submitAvailability <role> <date> [date...]",
		Short: "Declare workable dates for a role and scope",
		Long: `Declare workable dates for a role and scope.

The write replaces everything between the earliest and latest submitted date
for the user and scope; dates outside that span are untouched.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID := user
			if userID == "" {
				userID = app.Caller.UserID
			}

			count, err := services.SubmitAvailability(app.Ctx, app.Database, app.Logger, app.Caller, services.SubmitAvailabilityInput{
				UserID: userID,
				Role:   args[0],
				Dates:  args[1:],
				Scope:  app.Scope(),
			})
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Recorded %d available dates for %s\n", count, userID)
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "Submit on behalf of another user (managers only)")
	return cmd
}

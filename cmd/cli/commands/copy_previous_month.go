package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hsnesn/staffrota/pkg/core/services"
)

// CopyPreviousMonthCmd creates the copyPreviousMonth command
func CopyPreviousMonthCmd(app *AppContext) *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "copyPreviousMonth <month>",
		Short: "Project last month's availability onto a month by weekday and week-of-month",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID := user
			if userID == "" {
				userID = app.Caller.UserID
			}

			count, err := services.CopyPreviousMonth(app.Ctx, app.Database, app.Logger, app.Caller, services.CopyPreviousMonthInput{
				UserID: userID,
				Month:  args[0],
				Scope:  app.Scope(),
			})
			if errors.Is(err, services.ErrNoPriorData) {
				fmt.Println("Nothing to copy: the previous month has no availability for this user and scope.")
				return nil
			}
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Copied %d availability records into %s for %s\n", count, args[0], userID)
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "Copy on behalf of another user (managers only)")
	return cmd
}

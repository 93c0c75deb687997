package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hsnesn/staffrota/pkg/core/services"
)

// ClearMonthCmd creates the clearMonth command
func ClearMonthCmd(app *AppContext) *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "clearMonth <month>",
		Short: "Bulk-delete a month's availability and/or requirements for a scope",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := services.ClearMonth(app.Ctx, app.Database, app.Dispatcher, app.Logger, app.Caller, services.ClearMonthInput{
				Scope: app.Scope(),
				Month: args[0],
				Kind:  kind,
			})
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Cleared %s (%s)\n\n", args[0], app.Scope().String())
			fmt.Printf("Availability deleted: %d\n", result.AvailabilityDeleted)
			fmt.Printf("Requirements deleted: %d\n", result.RequirementsDeleted)
			fmt.Printf("Users notified:       %d\n", result.Notified)
			return nil
		},
	}

	cmd.Flags().StringVar(&kind, "kind", services.ClearBoth, "What to clear: availability, requirements or both")
	return cmd
}

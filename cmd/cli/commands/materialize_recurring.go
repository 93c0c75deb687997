package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hsnesn/staffrota/pkg/core/services"
)

// MaterializeRecurringCmd creates the materializeRecurring command
func MaterializeRecurringCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "materializeRecurring <month>",
		Short: "Expand recurring weekly templates into explicit requirements for a month",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inserted, err := services.MaterializeRecurring(app.Ctx, app.Database, app.Logger, app.Caller, services.MaterializeRecurringInput{
				Month: args[0],
				Scope: app.Scope(),
			})
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Materialized %d requirement rows for %s (%s)\n", inserted, args[0], app.Scope().String())
			return nil
		},
	}
}

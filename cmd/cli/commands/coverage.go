package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hsnesn/staffrota/pkg/core/services"
)

// CoverageCmd creates the coverage command
func CoverageCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "coverage <from> <to>",
		Short: "Show staffing coverage for a scope and date range",
		Long: `Show staffing coverage for a scope and date range.

Each effective requirement is joined with its assignment count, pending
and confirmed alike. Assigned users who declared unavailability on the
date are flagged, not excluded.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := services.ComputeCoverage(app.Ctx, app.Database, app.Logger, app.Caller, services.ComputeCoverageInput{
				From:  args[0],
				To:    args[1],
				Scope: app.Scope(),
			})
			if err != nil {
				return err
			}

			fmt.Printf("\nCoverage for %s, %s to %s\n\n", app.Scope().String(), args[0], args[1])
			fmt.Printf("%-12s %-20s %8s %8s %8s\n", "DATE", "ROLE", "NEEDED", "FILLED", "SHORT")
			for _, row := range result.Rows {
				fmt.Printf("%-12s %-20s %8d %8d %8d\n", row.Date, row.Role, row.Needed, row.Filled, row.Short)
				if len(row.Blackouts) > 0 {
					fmt.Printf("             ⚠ unavailable but assigned: %s\n", strings.Join(row.Blackouts, ", "))
				}
			}
			fmt.Printf("\nFilled %d slots, %d short\n", result.SlotsFilled, result.SlotsShort)
			return nil
		},
	}
}

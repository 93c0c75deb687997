package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hsnesn/staffrota/pkg/core/services"
)

// ResolveRequirementsCmd creates the resolveRequirements command
func ResolveRequirementsCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "resolveRequirements <from> <to>",
		Short: "Show the effective staffing demand for a date range and scope",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			requirements, err := services.ResolveRequirements(app.Ctx, app.Database, app.Logger, app.Caller, services.ResolveRequirementsInput{
				From:  args[0],
				To:    args[1],
				Scope: app.Scope(),
			})
			if err != nil {
				return err
			}

			if len(requirements) == 0 {
				fmt.Println("No demand in range.")
				return nil
			}

			fmt.Printf("%-12s %-20s %s\n", "Date", "Role", "Needed")
			for _, requirement := range requirements {
				fmt.Printf("%-12s %-20s %d\n", requirement.Date, requirement.Role, requirement.CountNeeded)
			}
			return nil
		},
	}
}

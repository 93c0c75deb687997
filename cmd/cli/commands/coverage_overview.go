package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hsnesn/staffrota/pkg/core/services"
	"github.com/hsnesn/staffrota/pkg/report"
)

// CoverageOverviewCmd creates the coverageOverview command
func CoverageOverviewCmd(app *AppContext) *cobra.Command {
	var months int
	var xlsxPath string

	cmd := &cobra.Command{
		Use:   "coverageOverview",
		Short: "List understaffed roles across every department and program",
		Long: `List understaffed roles across every department and program over the
coming months. Fully covered combinations are omitted, so an empty
result means the whole window is staffed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if months == 0 {
				months = app.Cfg.OverviewMonths
			}
			rows, err := services.CoverageOverview(app.Ctx, app.Database, app.Logger, app.Caller, services.CoverageOverviewInput{
				MonthsAhead: months,
			})
			if err != nil {
				return err
			}

			if xlsxPath != "" {
				data, err := report.CoverageOverviewWorkbook(rows)
				if err != nil {
					return fmt.Errorf("failed to build workbook: %w", err)
				}
				if err := os.WriteFile(xlsxPath, data, 0o644); err != nil {
					return fmt.Errorf("failed to write workbook: %w", err)
				}
				fmt.Printf("\n✓ Wrote %d shortfall rows to %s\n", len(rows), xlsxPath)
				return nil
			}

			if len(rows) == 0 {
				fmt.Println("\n✓ No shortfalls in the window")
				return nil
			}

			fmt.Printf("\n%-9s %-24s %-24s %-20s %6s\n", "MONTH", "DEPARTMENT", "PROGRAM", "ROLE", "SHORT")
			for _, row := range rows {
				program := row.ProgramName
				if program == "" {
					program = "(whole department)"
				}
				fmt.Printf("%-9s %-24s %-24s %-20s %6d\n", row.Month, row.DepartmentName, program, row.Role, row.SlotsShort)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&months, "months", 0, "months to look ahead, 1 to 6 (default from config, else 3)")
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "write the overview to an XLSX file instead of printing")
	return cmd
}

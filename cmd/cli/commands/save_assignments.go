package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/hsnesn/staffrota/pkg/core/services"
)

// rosterFile is the YAML shape accepted by saveAssignments.
type rosterFile struct {
	Assignments []struct {
		UserID string `yaml:"userId"`
		Date   string `yaml:"date"`
		Role   string `yaml:"role"`
	} `yaml:"assignments"`
}

// SaveAssignmentsCmd creates the saveAssignments command
func SaveAssignmentsCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "saveAssignments <month> <roster.yaml>",
		Short: "Replace the pending roster for a scope and month from a YAML file",
		Long: `Replace the pending roster for a scope and month from a YAML file.

Only pending assignments are replaced; confirmed bookings are untouched.
An empty assignments list clears the pending roster.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("failed to read roster file: %w", err)
			}

			var roster rosterFile
			if err := yaml.Unmarshal(data, &roster); err != nil {
				return fmt.Errorf("failed to parse roster file: %w", err)
			}

			drafts := make([]services.AssignmentDraft, 0, len(roster.Assignments))
			for _, entry := range roster.Assignments {
				drafts = append(drafts, services.AssignmentDraft{
					UserID: entry.UserID,
					Date:   entry.Date,
					Role:   entry.Role,
				})
			}

			count, err := services.SaveAssignments(app.Ctx, app.Database, app.Logger, app.Caller, services.SaveAssignmentsInput{
				Scope:       app.Scope(),
				Month:       args[0],
				Assignments: drafts,
			})
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Saved %d pending assignments for %s (%s)\n", count, args[0], app.Scope().String())
			return nil
		},
	}
}

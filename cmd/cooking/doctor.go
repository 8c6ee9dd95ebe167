package cooking

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Kipparis/cooking-notebook/internal/service"
)

var (
	doctorFix  bool
	doctorJSON bool
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run data integrity checks",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			report, err := service.RunDoctor(sqldb, doctorFix)
			if err != nil {
				return err
			}
			if doctorJSON {
				if err := printJSON(cmd, report); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Duplicate nutrients: %d %s\n", len(report.DuplicateNutrients), strings.Join(report.DuplicateNutrients, "; "))
				fmt.Fprintf(out, "Overlapping bounds: %d %s\n", len(report.OverlappingBounds), strings.Join(report.OverlappingBounds, "; "))
				fmt.Fprintf(out, "Recipes without ingredients: %d %s\n", len(report.EmptyRecipes), strings.Join(report.EmptyRecipes, "; "))
				fmt.Fprintf(out, "Invalid conversions: %d\n", report.BadConversions)
				fmt.Fprintf(out, "Expired lookup cache rows: %d\n", report.ExpiredCacheRows)
				if doctorFix {
					fmt.Fprintf(out, "Purged lookup cache rows: %d\n", report.PurgedCacheRows)
				}
			}
			if !report.Healthy() {
				return fmt.Errorf("doctor found integrity issues")
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false, "Purge expired lookup cache rows")
	doctorCmd.Flags().BoolVar(&doctorJSON, "json", false, "Output as JSON")
}

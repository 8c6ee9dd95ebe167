package cooking

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Kipparis/cooking-notebook/internal/service"
)

var (
	nutrientsScale   bool
	nutrientsFilter  []string
	nutrientsCompare bool
	nutrientsJSON    bool
)

type nutrientsOutput struct {
	service.NutrientReport
	Intake []service.IntakeComparison `json:"intake,omitempty"`
}

var nutrientsCmd = &cobra.Command{
	Use:   "nutrients <recipe>...",
	Short: "Sum nutrient facts over several recipes",
	Long: `Sum nutrient facts over several recipes.

By default the per-100 g values of every ingredient are summed as stored.
With --scale each value is multiplied by the ingredient's quantity in grams / 100;
ingredients whose quantity cannot be expressed in grams are listed and left out.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			store := service.NewStore(sqldb)
			report, err := service.AggregateNutrients(store, args, service.NutrientOptions{
				Nutrients:       nutrientsFilter,
				ScaleByQuantity: nutrientsScale,
				Conversions:     store,
			})
			if err != nil {
				return err
			}
			out := nutrientsOutput{NutrientReport: report}
			if nutrientsCompare {
				profile, err := service.GetProfile(sqldb)
				if err != nil {
					return fmt.Errorf("--compare needs a profile (cooking profile set): %w", err)
				}
				out.Intake, err = service.CompareIntake(store, profile, report.Summary, time.Now())
				if err != nil {
					return err
				}
			}
			if nutrientsJSON {
				return printJSON(cmd, out)
			}
			printNutrients(cmd, out)
			return nil
		})
	},
}

func printNutrients(cmd *cobra.Command, out nutrientsOutput) {
	w := cmd.OutOrStdout()
	for _, name := range out.Unresolved {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: recipe %q not found\n", name)
	}
	printWarnings(cmd, out.Problems)
	for _, r := range out.PerRecipe {
		fmt.Fprintf(w, "%s:\n", r.Recipe)
		for _, t := range r.Totals {
			fmt.Fprintf(w, "  %s\t%s %s\n", t.Nutrient, formatFloat(t.Quantity), t.Unit)
		}
	}
	if out.Scaled {
		fmt.Fprintln(w, "Total (scaled by quantity):")
	} else {
		fmt.Fprintln(w, "Total (per 100 g, unscaled):")
	}
	for _, t := range out.Summary {
		fmt.Fprintf(w, "  %s\t%s %s\n", t.Nutrient, formatFloat(t.Quantity), t.Unit)
	}
	for _, m := range out.Missing {
		fmt.Fprintf(w, "No nutrient facts: %s (%s)\n", m.Ingredient, strings.Join(m.Recipes, ", "))
	}
	if len(out.Intake) == 0 {
		return
	}
	fmt.Fprintln(w, "NUTRIENT\tAMOUNT\tAI\tUL\tSTATUS")
	for _, c := range out.Intake {
		ai, ul := "-", "-"
		if c.Bound != nil {
			if c.Bound.AdequateIntake != nil {
				ai = formatFloat(*c.Bound.AdequateIntake) + " " + c.Bound.Unit
			}
			if c.Bound.UpperLimit != nil {
				ul = formatFloat(*c.Bound.UpperLimit) + " " + c.Bound.Unit
			}
		}
		fmt.Fprintf(w, "%s\t%s %s\t%s\t%s\t%s\n", c.Nutrient, formatFloat(c.Quantity), c.Unit, ai, ul, c.Status)
	}
}

func init() {
	rootCmd.AddCommand(nutrientsCmd)
	nutrientsCmd.Flags().BoolVar(&nutrientsScale, "scale", false, "Scale per-100 g values by ingredient quantity")
	nutrientsCmd.Flags().StringSliceVar(&nutrientsFilter, "nutrient", nil, "Only these nutrients (repeatable)")
	nutrientsCmd.Flags().BoolVar(&nutrientsCompare, "compare", false, "Compare totals with recommended intake for the stored profile")
	nutrientsCmd.Flags().BoolVar(&nutrientsJSON, "json", false, "Output as JSON")
}

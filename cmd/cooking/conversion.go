package cooking

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Kipparis/cooking-notebook/internal/service"
)

var conversionCmd = &cobra.Command{
	Use:   "conversion",
	Short: "Manage ingredient-specific unit conversions",
}

var (
	conversionTo         string
	conversionMultiplier float64
	conversionIngredient string
)

var conversionSetCmd = &cobra.Command{
	Use:   "set <ingredient> <from-unit>",
	Short: "Set how much of --to one <from-unit> of an ingredient is",
	Example: `  cooking conversion set flour tbsp --to g --multiplier 8
  cooking conversion set egg piece --to g --multiplier 50`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		in := service.ConversionInput{
			Ingredient: args[0],
			FromUnit:   args[1],
			ToUnit:     conversionTo,
			Multiplier: conversionMultiplier,
		}
		return withDB(func(sqldb *sql.DB) error {
			if err := service.SetConversion(sqldb, in); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "1 %s of %s = %s %s\n", in.FromUnit, in.Ingredient, formatFloat(in.Multiplier), in.ToUnit)
			return nil
		})
	},
}

var conversionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List conversions",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			items, err := service.ListConversions(sqldb, conversionIngredient)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "INGREDIENT\tFROM\tTO\tMULTIPLIER")
			for _, c := range items {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\n", c.Ingredient, c.FromUnit, c.ToUnit, formatFloat(c.Multiplier))
			}
			return nil
		})
	},
}

var conversionDeleteCmd = &cobra.Command{
	Use:   "delete <ingredient> <from-unit>",
	Short: "Delete a conversion",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			if err := service.DeleteConversion(sqldb, args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted conversion %s/%s\n", args[0], args[1])
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(conversionCmd)
	conversionCmd.AddCommand(conversionSetCmd, conversionListCmd, conversionDeleteCmd)
	conversionSetCmd.Flags().StringVar(&conversionTo, "to", "", "Target unit")
	conversionSetCmd.Flags().Float64Var(&conversionMultiplier, "multiplier", 0, "Target units per one source unit")
	_ = conversionSetCmd.MarkFlagRequired("to")
	_ = conversionSetCmd.MarkFlagRequired("multiplier")
	conversionListCmd.Flags().StringVar(&conversionIngredient, "ingredient", "", "Only this ingredient")
}

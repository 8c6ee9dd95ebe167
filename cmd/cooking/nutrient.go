package cooking

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Kipparis/cooking-notebook/internal/service"
)

var nutrientCmd = &cobra.Command{
	Use:   "nutrient",
	Short: "Manage nutrients and per-ingredient nutrient facts",
}

var (
	nutrientFullName   string
	nutrientDeficiency string
	nutrientExcess     string
	factValue          float64
	factUnit           string
	factSource         string
)

var nutrientAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a nutrient",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in := service.NutrientInput{
			Name:       args[0],
			FullName:   nutrientFullName,
			Deficiency: nutrientDeficiency,
			Excess:     nutrientExcess,
		}
		return withDB(func(sqldb *sql.DB) error {
			id, err := service.CreateNutrient(sqldb, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created nutrient %d\n", id)
			return nil
		})
	},
}

var nutrientListCmd = &cobra.Command{
	Use:   "list",
	Short: "List nutrients",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			items, err := service.ListNutrients(sqldb)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ID\tNAME\tFULL NAME")
			for _, n := range items {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\n", n.ID, n.Name, n.FullName)
			}
			return nil
		})
	},
}

var nutrientFactCmd = &cobra.Command{
	Use:   "fact",
	Short: "Manage nutrient facts per 100 g of an ingredient",
}

var nutrientFactSetCmd = &cobra.Command{
	Use:   "set <ingredient> <nutrient>",
	Short: "Set the amount of a nutrient in 100 g of an ingredient",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		in := service.FactInput{
			Ingredient:     args[0],
			Nutrient:       args[1],
			PerHundredGram: factValue,
			Unit:           factUnit,
			Source:         factSource,
		}
		return withDB(func(sqldb *sql.DB) error {
			if err := service.SetIngredientNutrient(sqldb, in); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s %s %s per 100 g\n", in.Ingredient, formatFloat(in.PerHundredGram), in.Unit, in.Nutrient)
			return nil
		})
	},
}

var nutrientFactListCmd = &cobra.Command{
	Use:   "list <ingredient>",
	Short: "List nutrient facts of an ingredient",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			items, err := service.ListIngredientNutrients(sqldb, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "NUTRIENT\tPER 100 G\tSOURCE")
			for _, f := range items {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s %s\t%s\n", f.Nutrient, formatFloat(f.PerHundredGram), f.Unit, f.Source)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(nutrientCmd)
	nutrientCmd.AddCommand(nutrientAddCmd, nutrientListCmd, nutrientFactCmd)
	nutrientFactCmd.AddCommand(nutrientFactSetCmd, nutrientFactListCmd)

	nutrientAddCmd.Flags().StringVar(&nutrientFullName, "full-name", "", "Full name")
	nutrientAddCmd.Flags().StringVar(&nutrientDeficiency, "deficiency", "", "Symptoms of deficiency")
	nutrientAddCmd.Flags().StringVar(&nutrientExcess, "excess", "", "Symptoms of excess")

	nutrientFactSetCmd.Flags().Float64Var(&factValue, "value", 0, "Amount per 100 g")
	nutrientFactSetCmd.Flags().StringVar(&factUnit, "unit", "", "Unit of the amount (g, mg, mcg, kcal, IU)")
	nutrientFactSetCmd.Flags().StringVar(&factSource, "source", "", "Where the value came from (default: manual)")
	_ = nutrientFactSetCmd.MarkFlagRequired("value")
	_ = nutrientFactSetCmd.MarkFlagRequired("unit")
}

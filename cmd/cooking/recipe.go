package cooking

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Kipparis/cooking-notebook/internal/model"
	"github.com/Kipparis/cooking-notebook/internal/recipefile"
	"github.com/Kipparis/cooking-notebook/internal/service"
)

var recipeCmd = &cobra.Command{
	Use:   "recipe",
	Short: "Manage recipes",
}

var (
	recipeFile     string
	recipeMealType string
	recipeFromDir  bool
	recipeDir      string
	recipeJSON     bool
)

func resolveRecipeDir(arg []string) string {
	if len(arg) > 0 && strings.TrimSpace(arg[0]) != "" {
		return arg[0]
	}
	if recipeDir != "" {
		return recipeDir
	}
	return config().Recipes.Dir
}

var recipeAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a recipe from a .txt, .yml or .yaml file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if strings.TrimSpace(recipeFile) == "" {
			return fmt.Errorf("--file is required")
		}
		in, warnings, err := recipefile.ParseFile(recipeFile)
		if err != nil {
			return err
		}
		printWarnings(cmd, warnings)
		return withDB(func(sqldb *sql.DB) error {
			id, err := service.CreateRecipe(sqldb, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created recipe %d (%s)\n", id, in.Name)
			return nil
		})
	},
}

var recipeImportCmd = &cobra.Command{
	Use:   "import [dir]",
	Short: "Create recipes from every recipe file in a directory",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := resolveRecipeDir(args)
		loaded, err := recipefile.LoadDir(dir, logger())
		if err != nil {
			return err
		}
		printWarnings(cmd, loaded.Warnings)
		return withDB(func(sqldb *sql.DB) error {
			created := 0
			for _, l := range loaded.Recipes {
				_, err := service.CreateRecipe(sqldb, l.Recipe)
				if errors.Is(err, service.ErrDuplicate) || errors.Is(err, service.ErrMalformed) {
					logger().Warn("recipe skipped", zap.String("path", l.Path), zap.Error(err))
					printWarnings(cmd, []string{fmt.Sprintf("%s: %v", l.Path, err)})
					continue
				}
				if err != nil {
					return err
				}
				created++
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d of %d recipe(s) from %s\n", created, len(loaded.Recipes), dir)
			return nil
		})
	},
}

var recipeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recipes",
	RunE: func(cmd *cobra.Command, args []string) error {
		if recipeFromDir {
			loaded, err := recipefile.LoadDir(resolveRecipeDir(nil), logger())
			if err != nil {
				return err
			}
			printWarnings(cmd, loaded.Warnings)
			fmt.Fprintln(cmd.OutOrStdout(), "NAME\tCATEGORY\tPORTIONS\tFILE")
			for _, l := range loaded.Recipes {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%d\t%s\n", l.Recipe.Name, l.Recipe.MealType, l.Recipe.Portions, l.Path)
			}
			return nil
		}
		return withDB(func(sqldb *sql.DB) error {
			recipes, err := service.ListRecipes(sqldb, recipeMealType)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ID\tNAME\tCATEGORY\tPORTIONS")
			for _, r := range recipes {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\t%d\n", r.ID, r.Name, r.MealType, r.Portions)
			}
			return nil
		})
	},
}

var recipeShowCmd = &cobra.Command{
	Use:   "show <id|name>",
	Short: "Show recipe ingredients and steps",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			r, err := service.NewStore(sqldb).ShowRecipe(args[0])
			if err != nil {
				return err
			}
			if recipeJSON {
				return printJSON(cmd, r)
			}
			printRecipe(cmd, r)
			return nil
		})
	},
}

func printRecipe(cmd *cobra.Command, r model.RecipeDetail) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "ID: %d\nName: %s\n", r.ID, r.Name)
	if r.MealType != "" {
		fmt.Fprintf(out, "Category: %s\n", r.MealType)
	}
	if r.Portions > 0 {
		fmt.Fprintf(out, "Portions: %d\n", r.Portions)
	}
	fmt.Fprintln(out, "Ingredients:")
	for _, it := range r.Ingredients {
		fmt.Fprintf(out, "  %s - %s %s\n", it.Ingredient, formatFloat(it.Quantity), it.Unit)
	}
	if len(r.Steps) > 0 {
		fmt.Fprintln(out, "Steps:")
		for i, s := range r.Steps {
			fmt.Fprintf(out, "  %d. %s\n", i+1, s)
		}
	}
}

var recipeDeleteCmd = &cobra.Command{
	Use:   "delete <id|name>",
	Short: "Delete a recipe",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			if err := service.DeleteRecipe(sqldb, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted recipe %q\n", args[0])
			return nil
		})
	},
}

var recipeIngredientCmd = &cobra.Command{
	Use:   "ingredient",
	Short: "Manage recipe ingredients",
}

var (
	ingredientQty  float64
	ingredientUnit string
)

var recipeIngredientSetCmd = &cobra.Command{
	Use:   "set <recipe-id|name> <ingredient>",
	Short: "Add an ingredient to a recipe or change its quantity",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		line := model.IngredientLine{Name: args[1], Quantity: ingredientQty, Unit: ingredientUnit}
		return withDB(func(sqldb *sql.DB) error {
			if err := service.SetRecipeIngredient(sqldb, args[0], line); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Set %s - %s %s in %q\n", line.Name, formatFloat(line.Quantity), line.Unit, args[0])
			return nil
		})
	},
}

var recipeIngredientDeleteCmd = &cobra.Command{
	Use:   "delete <recipe-id|name> <ingredient>",
	Short: "Remove an ingredient from a recipe",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			if err := service.DeleteRecipeIngredient(sqldb, args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %q from %q\n", args[1], args[0])
			return nil
		})
	},
}

var renameIngredientCmd = &cobra.Command{
	Use:   "rename-ingredient <from> <to>",
	Short: "Rename an ingredient across every recipe",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			if err := service.RenameIngredient(sqldb, args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Renamed ingredient %q to %q\n", args[0], args[1])
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(recipeCmd)
	recipeCmd.AddCommand(recipeAddCmd, recipeImportCmd, recipeListCmd, recipeShowCmd, recipeDeleteCmd, recipeIngredientCmd, renameIngredientCmd)
	recipeIngredientCmd.AddCommand(recipeIngredientSetCmd, recipeIngredientDeleteCmd)

	recipeAddCmd.Flags().StringVar(&recipeFile, "file", "", "Recipe file (.txt, .yml or .yaml)")
	recipeListCmd.Flags().StringVar(&recipeMealType, "category", "", "Only recipes of this category")
	recipeListCmd.Flags().BoolVar(&recipeFromDir, "files", false, "List recipe files instead of the database")
	recipeListCmd.Flags().StringVar(&recipeDir, "dir", "", "Recipe directory for --files (default: recipes.dir)")
	recipeShowCmd.Flags().BoolVar(&recipeJSON, "json", false, "Output as JSON")

	recipeIngredientSetCmd.Flags().Float64Var(&ingredientQty, "qty", 0, "Quantity")
	recipeIngredientSetCmd.Flags().StringVar(&ingredientUnit, "unit", "", "Measure unit or notation")
	_ = recipeIngredientSetCmd.MarkFlagRequired("qty")
	_ = recipeIngredientSetCmd.MarkFlagRequired("unit")
}

package cooking

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Kipparis/cooking-notebook/internal/recipefile"
	"github.com/Kipparis/cooking-notebook/internal/service"
)

var (
	shoppingFromFiles bool
	shoppingDir       string
	shoppingJSON      bool
)

var shoppingCmd = &cobra.Command{
	Use:   "shopping <recipe>...",
	Short: "Aggregate the ingredients of several recipes into one shopping list",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if shoppingFromFiles {
			list, warnings, err := shoppingFromDir(args)
			if err != nil {
				return err
			}
			printWarnings(cmd, warnings)
			return printShopping(cmd, list)
		}
		return withDB(func(sqldb *sql.DB) error {
			list, err := service.AggregateShopping(service.NewStore(sqldb), args)
			if err != nil {
				return err
			}
			return printShopping(cmd, list)
		})
	},
}

// shoppingFromDir aggregates recipes read straight from recipe files,
// without touching the database.
func shoppingFromDir(names []string) (service.ShoppingList, []string, error) {
	dir := shoppingDir
	if dir == "" {
		dir = config().Recipes.Dir
	}
	loaded, err := recipefile.LoadDir(dir, logger())
	if err != nil {
		return service.ShoppingList{}, nil, err
	}
	list := service.ShoppingList{Items: []service.Ingredient{}, Unresolved: []string{}}
	for _, name := range names {
		found := false
		for _, l := range loaded.Recipes {
			if !strings.EqualFold(strings.TrimSpace(l.Recipe.Name), strings.TrimSpace(name)) {
				continue
			}
			found = true
			for _, line := range l.Recipe.Ingredients {
				list.Items = service.MergeIngredients(list.Items, service.NewIngredient(line.Name, line.Quantity, line.Unit))
			}
			break
		}
		if !found {
			list.Unresolved = append(list.Unresolved, name)
		}
	}
	return list, loaded.Warnings, nil
}

func printShopping(cmd *cobra.Command, list service.ShoppingList) error {
	if shoppingJSON {
		return printJSON(cmd, list)
	}
	for _, name := range list.Unresolved {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: recipe %q not found\n", name)
	}
	for _, it := range list.Items {
		fmt.Fprintln(cmd.OutOrStdout(), it.String())
	}
	return nil
}

func init() {
	rootCmd.AddCommand(shoppingCmd)
	shoppingCmd.Flags().BoolVar(&shoppingFromFiles, "from-files", false, "Read recipes from the recipe directory instead of the database")
	shoppingCmd.Flags().StringVar(&shoppingDir, "dir", "", "Recipe directory for --from-files (default: recipes.dir)")
	shoppingCmd.Flags().BoolVar(&shoppingJSON, "json", false, "Output as JSON")
}

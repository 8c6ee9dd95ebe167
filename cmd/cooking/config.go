package cooking

import (
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Kipparis/cooking-notebook/internal/app"
	"github.com/Kipparis/cooking-notebook/internal/service"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show cooking configuration",
}

var configGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Show effective configuration and stored database settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config()
		path, err := resolveDBPath()
		if err != nil {
			return err
		}
		values := map[string]string{
			"db_path":                path,
			"log.level":              cfg.Log.Level,
			"log.file":               cfg.Log.File,
			"log.json":               fmt.Sprint(cfg.Log.JSON),
			"usda.api_key":           app.MaskSecret(cfg.USDA.APIKey),
			"usda.base_url":          cfg.USDA.BaseURL,
			"openfoodfacts.base_url": cfg.OpenFoodFacts.BaseURL,
			"lookup.providers":       strings.Join(cfg.Lookup.Providers, ","),
			"lookup.timeout":         cfg.Lookup.Timeout.String(),
			"lookup.cache_ttl":       cfg.Lookup.CacheTTL.String(),
			"lookup.redis_addr":      cfg.Lookup.RedisAddr,
			"recipes.dir":            cfg.Recipes.Dir,
		}
		return withDB(func(sqldb *sql.DB) error {
			stored, err := service.ListConfig(sqldb)
			if err != nil {
				return err
			}
			for k, v := range stored {
				values[k] = v
			}
			keys := make([]string, 0, len(values))
			for k := range values {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintln(cmd.OutOrStdout(), "KEY\tVALUE")
			for _, k := range keys {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", k, values[k])
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configGetCmd)
}

package cooking

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Kipparis/cooking-notebook/internal/service"
)

const (
	usdaAPIGuideURL      = "https://fdc.nal.usda.gov/api-guide/"
	usdaSignupURL        = "https://api.data.gov/signup/"
	usdaRateLimitSummary = "USDA default rate limit is 1,000 requests per hour per IP."
	offAPIDocsURL        = "https://openfoodfacts.github.io/openfoodfacts-server/api/"
)

var (
	lookupProviders []string
	lookupSave      bool
	lookupJSON      bool
	cacheProvider   string
	cacheQuery      string
	cacheAll        bool
	cacheLimit      int
)

var lookupCmd = &cobra.Command{
	Use:   "lookup <ingredient>",
	Short: "Look up nutrient facts of an ingredient from external providers",
	Long: `Look up nutrient facts of an ingredient by name.

Providers are tried in order (lookup.providers, or --provider); the first one
with an exact name match wins. Results are cached. Provider failures are
logged and reported as "no data".`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			deps, release, err := lookupDeps(sqldb, lookupProviders)
			if err != nil {
				return err
			}
			defer release()

			if lookupSave {
				report, err := service.EnrichIngredient(cmd.Context(), sqldb, deps, args[0])
				if err != nil {
					return err
				}
				if lookupJSON {
					return printJSON(cmd, report)
				}
				if report.Provider == "" {
					fmt.Fprintf(cmd.OutOrStdout(), "No nutrient data found for %q\n", report.Ingredient)
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Stored %d fact(s) for %s from %s\n", report.Stored, report.Ingredient, report.Provider)
				printWarnings(cmd, report.Rejected)
				return nil
			}

			result := service.LookupNutrients(cmd.Context(), deps, args[0])
			if lookupJSON {
				return printJSON(cmd, result)
			}
			if result.Provider == "" {
				fmt.Fprintf(cmd.OutOrStdout(), "No nutrient data found for %q\n", result.Query)
				return nil
			}
			source := "live"
			if result.FromCache {
				source = "cache"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Provider: %s (%s)\n", result.Provider, source)
			fmt.Fprintln(cmd.OutOrStdout(), "NUTRIENT\tPER 100 G")
			for _, f := range result.Facts {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s %s\n", f.Nutrient, formatFloat(f.Value), f.Unit)
			}
			return nil
		})
	},
}

var lookupProvidersCmd = &cobra.Command{
	Use:   "providers",
	Short: "Show available nutrient providers and setup guidance",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), providersHelpText())
		return nil
	},
}

func providersHelpText() string {
	return fmt.Sprintf(`Available providers:
- usda: USDA FoodData Central, requires an API key
  - Get a key: %s
  - API guide: %s
  - Set it: usda.api_key in config.yaml, COOKING_USDA_API_KEY or NAL_USDA_GOV_API_KEY
  - %s
- openfoodfacts: Open Food Facts, no API key required
  - Docs: %s

Order is taken from lookup.providers (default: usda), e.g.
  COOKING_LOOKUP_PROVIDERS=usda,openfoodfacts
or per call:
  cooking lookup <ingredient> --provider openfoodfacts`, usdaSignupURL, usdaAPIGuideURL, usdaRateLimitSummary, offAPIDocsURL)
}

var lookupCacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or purge cached lookup results",
}

var lookupCacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached lookups",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			items, err := service.ListLookupCache(sqldb, cacheProvider, cacheLimit)
			if err != nil {
				return err
			}
			if lookupJSON {
				return printJSON(cmd, items)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "PROVIDER\tQUERY\tFACTS\tFETCHED\tEXPIRES")
			for _, it := range items {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%d\t%s\t%s\n", it.Provider, it.Query, it.Facts, it.FetchedAt.Local().Format(time.RFC3339), it.ExpiresAt.Local().Format(time.RFC3339))
			}
			return nil
		})
	},
}

var lookupCachePurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Purge cached lookups",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cacheAll && strings.TrimSpace(cacheProvider) == "" && strings.TrimSpace(cacheQuery) == "" {
			return fmt.Errorf("set --provider, --query or --all")
		}
		return withDB(func(sqldb *sql.DB) error {
			n, err := service.PurgeLookupCache(sqldb, cacheProvider, cacheQuery, cacheAll)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Purged %d cache row(s)\n", n)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(lookupCmd)
	lookupCmd.AddCommand(lookupProvidersCmd, lookupCacheCmd)
	lookupCacheCmd.AddCommand(lookupCacheListCmd, lookupCachePurgeCmd)

	lookupCmd.Flags().StringSliceVar(&lookupProviders, "provider", nil, "Providers to try, in order: usda, openfoodfacts (default: lookup.providers)")
	lookupCmd.Flags().BoolVar(&lookupSave, "save", false, "Store the facts as the ingredient's nutrient facts")
	lookupCmd.Flags().BoolVar(&lookupJSON, "json", false, "Output as JSON")

	for _, c := range []*cobra.Command{lookupCacheListCmd, lookupCachePurgeCmd} {
		c.Flags().StringVar(&cacheProvider, "provider", "", "Only this provider")
	}
	lookupCacheListCmd.Flags().IntVar(&cacheLimit, "limit", 100, "Max rows to return")
	lookupCacheListCmd.Flags().BoolVar(&lookupJSON, "json", false, "Output as JSON")
	lookupCachePurgeCmd.Flags().StringVar(&cacheQuery, "query", "", "Only this ingredient query")
	lookupCachePurgeCmd.Flags().BoolVar(&cacheAll, "all", false, "Purge every cached row")
}

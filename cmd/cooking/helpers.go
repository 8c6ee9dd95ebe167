package cooking

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Kipparis/cooking-notebook/internal/app"
	"github.com/Kipparis/cooking-notebook/internal/db"
	"github.com/Kipparis/cooking-notebook/internal/service"
)

func withDB(run func(*sql.DB) error) error {
	path, err := resolveDBPath()
	if err != nil {
		return err
	}
	if err := app.EnsureDBDir(path); err != nil {
		return err
	}
	sqldb, err := db.Open(path)
	if err != nil {
		return err
	}
	defer sqldb.Close()

	if err := db.ApplyMigrations(sqldb); err != nil {
		return err
	}
	return run(sqldb)
}

func resolveDBPath() (string, error) {
	if dbPath != "" {
		return dbPath, nil
	}
	if current != nil {
		return current.DBPath()
	}
	return app.DefaultDBPath()
}

func logger() *zap.Logger {
	if current == nil {
		return zap.NewNop()
	}
	return current.Log
}

func config() app.Config {
	if current == nil {
		return app.Config{}
	}
	return current.Config
}

// lookupDeps builds the nutrient sources in configured order. The returned
// func releases the redis connection, if one was opened.
func lookupDeps(sqldb *sql.DB, providers []string) (service.LookupDeps, func(), error) {
	cfg := config()
	if len(providers) == 0 {
		providers = cfg.Lookup.Providers
	}
	deps := service.LookupDeps{
		DB:      sqldb,
		TTL:     cfg.Lookup.CacheTTL,
		Timeout: cfg.Lookup.Timeout,
		Log:     logger(),
	}
	for _, p := range providers {
		src, err := service.NewSource(p, cfg.USDA.APIKey)
		if err != nil {
			return deps, func() {}, err
		}
		switch s := src.(type) {
		case *service.USDASource:
			if cfg.USDA.APIKey == "" {
				logger().Warn("usda lookups need an API key; set usda.api_key or NAL_USDA_GOV_API_KEY")
			}
			s.Client.BaseURL = cfg.USDA.BaseURL
		case *service.OpenFoodFactsSource:
			s.Client.BaseURL = cfg.OpenFoodFacts.BaseURL
		}
		deps.Sources = append(deps.Sources, src)
	}
	if cfg.Lookup.RedisAddr == "" {
		return deps, func() {}, nil
	}
	cache := service.NewRedisLookupCache(cfg.Lookup.RedisAddr, cfg.Lookup.RedisPassword, cfg.Lookup.RedisDB, "")
	deps.Cache = cache
	return deps, func() {
		if err := cache.Close(); err != nil {
			logger().Warn("close redis lookup cache", zap.Error(err))
		}
	}, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
	return nil
}

func printWarnings(cmd *cobra.Command, warnings []string) {
	for _, w := range warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w)
	}
}

func parseDate(name, value string) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(value), time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s %q (expected YYYY-MM-DD)", name, value)
	}
	return t, nil
}

// optionalFloat returns nil unless the flag was given.
func optionalFloat(cmd *cobra.Command, flag string, v float64) *float64 {
	if !cmd.Flags().Changed(flag) {
		return nil
	}
	return &v
}

func formatFloat(v float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.3f", v), "0"), ".")
}

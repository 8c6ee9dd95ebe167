package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Kipparis/cooking-notebook/internal/provider/openfoodfacts"
	"github.com/Kipparis/cooking-notebook/internal/provider/usda"
)

const (
	ProviderUSDA          = "usda"
	ProviderOpenFoodFacts = "openfoodfacts"

	DefaultLookupTTL     = 30 * 24 * time.Hour
	DefaultLookupTimeout = 15 * time.Second
)

// NutrientFact is one nutrient value per 100 g as reported by a provider,
// before unit harmonisation.
type NutrientFact struct {
	Nutrient string  `json:"nutrient"`
	Value    float64 `json:"value"`
	Unit     string  `json:"unit"`
}

// NutrientSource is an external nutrient database searched by ingredient
// name. The raw response is returned alongside the facts for caching.
type NutrientSource interface {
	Name() string
	SearchNutrients(ctx context.Context, name string) ([]NutrientFact, []byte, error)
}

type USDASource struct {
	Client *usda.Client
}

func (s *USDASource) Name() string { return ProviderUSDA }

func (s *USDASource) SearchNutrients(ctx context.Context, name string) ([]NutrientFact, []byte, error) {
	food, raw, err := s.Client.SearchFood(ctx, name)
	if err != nil {
		return nil, raw, err
	}
	out := make([]NutrientFact, 0, len(food.Nutrients))
	for _, n := range food.Nutrients {
		out = append(out, NutrientFact{Nutrient: n.Name, Value: n.Value, Unit: n.Unit})
	}
	return out, raw, nil
}

type OpenFoodFactsSource struct {
	Client *openfoodfacts.Client
}

func (s *OpenFoodFactsSource) Name() string { return ProviderOpenFoodFacts }

func (s *OpenFoodFactsSource) SearchNutrients(ctx context.Context, name string) ([]NutrientFact, []byte, error) {
	p, raw, err := s.Client.SearchFood(ctx, name)
	if err != nil {
		return nil, raw, err
	}
	out := make([]NutrientFact, 0, len(p.Nutrients))
	for _, n := range p.Nutrients {
		out = append(out, NutrientFact{Nutrient: n.Name, Value: n.Value, Unit: n.Unit})
	}
	return out, raw, nil
}

// NewSource builds the named provider. USDA needs an API key.
func NewSource(provider, apiKey string) (NutrientSource, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case ProviderUSDA, "fdc":
		return &USDASource{Client: &usda.Client{APIKey: apiKey}}, nil
	case ProviderOpenFoodFacts, "off":
		return &OpenFoodFactsSource{Client: &openfoodfacts.Client{}}, nil
	default:
		return nil, malformed("unsupported nutrient provider %q", provider)
	}
}

// LookupCache is an optional fast cache in front of the SQLite cache table.
type LookupCache interface {
	Get(ctx context.Context, provider, query string) ([]NutrientFact, bool, error)
	Set(ctx context.Context, provider, query string, facts []NutrientFact, ttl time.Duration) error
}

type LookupDeps struct {
	DB      *sql.DB
	Sources []NutrientSource
	Cache   LookupCache
	TTL     time.Duration
	Timeout time.Duration
	Log     *zap.Logger
	Now     func() time.Time
}

func (d LookupDeps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d LookupDeps) log() *zap.Logger {
	if d.Log != nil {
		return d.Log
	}
	return zap.NewNop()
}

type LookupResult struct {
	Query     string         `json:"query"`
	Provider  string         `json:"provider"`
	Facts     []NutrientFact `json:"facts"`
	FromCache bool           `json:"from_cache"`
}

// LookupNutrients asks each source in order for name's nutrient facts, cache
// first. Provider and cache failures are logged and treated as "no data": the
// result is then empty, never an error.
func LookupNutrients(ctx context.Context, deps LookupDeps, name string) LookupResult {
	query := normalizeName(name)
	result := LookupResult{Query: query, Facts: []NutrientFact{}}
	if query == "" {
		return result
	}
	log := deps.log().With(zap.String("query", query))

	for _, src := range deps.Sources {
		provider := src.Name()
		plog := log.With(zap.String("provider", provider))

		if facts, ok := cachedFacts(ctx, deps, provider, query, plog); ok {
			result.Provider, result.Facts, result.FromCache = provider, facts, true
			return result
		}

		timeout := deps.Timeout
		if timeout <= 0 {
			timeout = DefaultLookupTimeout
		}
		reqCtx, cancel := context.WithTimeout(ctx, timeout)
		facts, raw, err := src.SearchNutrients(reqCtx, query)
		cancel()
		if err != nil {
			plog.Warn("nutrient lookup failed", zap.Error(external(provider, err)))
			continue
		}
		if len(facts) == 0 {
			plog.Info("provider returned no nutrients")
			continue
		}
		storeFacts(ctx, deps, provider, query, facts, raw, plog)
		plog.Info("nutrient lookup succeeded", zap.Int("facts", len(facts)))
		result.Provider, result.Facts = provider, facts
		return result
	}
	log.Info("no nutrient data found")
	return result
}

func cachedFacts(ctx context.Context, deps LookupDeps, provider, query string, log *zap.Logger) ([]NutrientFact, bool) {
	if deps.Cache != nil {
		facts, ok, err := deps.Cache.Get(ctx, provider, query)
		if err != nil {
			log.Warn("lookup cache read failed", zap.Error(err))
		} else if ok {
			log.Debug("lookup cache hit", zap.String("layer", "fast"))
			return facts, true
		}
	}
	if deps.DB == nil {
		return nil, false
	}
	facts, ok, err := lookupCacheRow(deps.DB, provider, query, deps.now())
	if err != nil {
		log.Warn("lookup cache read failed", zap.Error(err))
		return nil, false
	}
	if ok {
		log.Debug("lookup cache hit", zap.String("layer", "sqlite"))
		if deps.Cache != nil {
			if err := deps.Cache.Set(ctx, provider, query, facts, deps.ttl()); err != nil {
				log.Warn("lookup cache write failed", zap.Error(err))
			}
		}
	}
	return facts, ok
}

func storeFacts(ctx context.Context, deps LookupDeps, provider, query string, facts []NutrientFact, raw []byte, log *zap.Logger) {
	if deps.DB != nil {
		now := deps.now()
		if err := upsertLookupCache(deps.DB, provider, query, facts, raw, now, now.Add(deps.ttl())); err != nil {
			log.Warn("lookup cache write failed", zap.Error(err))
		}
	}
	if deps.Cache != nil {
		if err := deps.Cache.Set(ctx, provider, query, facts, deps.ttl()); err != nil {
			log.Warn("lookup cache write failed", zap.Error(err))
		}
	}
}

func (d LookupDeps) ttl() time.Duration {
	if d.TTL > 0 {
		return d.TTL
	}
	return DefaultLookupTTL
}

func lookupCacheRow(db *sql.DB, provider, query string, now time.Time) ([]NutrientFact, bool, error) {
	var factsRaw, expiresRaw string
	err := db.QueryRow(`SELECT facts_json, expires_at FROM nutrient_lookup_cache WHERE provider = ? AND query = ?`,
		provider, query).Scan(&factsRaw, &expiresRaw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("lookup nutrient cache: %w", err)
	}
	expiresAt, err := parseStoredTime(expiresRaw)
	if err != nil {
		return nil, false, fmt.Errorf("parse nutrient cache expiry: %w", err)
	}
	if now.After(expiresAt) {
		return nil, false, nil
	}
	var facts []NutrientFact
	if err := json.Unmarshal([]byte(factsRaw), &facts); err != nil {
		return nil, false, fmt.Errorf("decode nutrient cache facts: %w", err)
	}
	return facts, true, nil
}

func upsertLookupCache(db *sql.DB, provider, query string, facts []NutrientFact, raw []byte, fetchedAt, expiresAt time.Time) error {
	encoded, err := json.Marshal(facts)
	if err != nil {
		return fmt.Errorf("encode nutrient cache facts: %w", err)
	}
	var rawStr sql.NullString
	if json.Valid(raw) {
		rawStr = sql.NullString{String: string(raw), Valid: true}
	}
	_, err = db.Exec(`
INSERT INTO nutrient_lookup_cache(provider, query, facts_json, raw_json, fetched_at, expires_at)
VALUES(?, ?, ?, ?, ?, ?)
ON CONFLICT(provider, query) DO UPDATE SET
  facts_json=excluded.facts_json,
  raw_json=excluded.raw_json,
  fetched_at=excluded.fetched_at,
  expires_at=excluded.expires_at
`, provider, query, string(encoded), rawStr, fetchedAt.UTC().Format(time.RFC3339), expiresAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("upsert nutrient cache: %w", err)
	}
	return nil
}

type LookupCacheItem struct {
	Provider  string    `json:"provider"`
	Query     string    `json:"query"`
	Facts     int       `json:"facts"`
	FetchedAt time.Time `json:"fetched_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func ListLookupCache(db *sql.DB, provider string, limit int) ([]LookupCacheItem, error) {
	provider = strings.ToLower(strings.TrimSpace(provider))
	if limit <= 0 {
		limit = 100
	}
	base := `SELECT provider, query, facts_json, fetched_at, expires_at FROM nutrient_lookup_cache`
	args := make([]any, 0, 2)
	if provider != "" {
		base += ` WHERE provider = ?`
		args = append(args, provider)
	}
	base += ` ORDER BY fetched_at DESC, query LIMIT ?`
	args = append(args, limit)
	rows, err := db.Query(base, args...)
	if err != nil {
		return nil, fmt.Errorf("list nutrient cache: %w", err)
	}
	defer rows.Close()
	out := make([]LookupCacheItem, 0)
	for rows.Next() {
		var item LookupCacheItem
		var factsRaw, fetched, expires string
		if err := rows.Scan(&item.Provider, &item.Query, &factsRaw, &fetched, &expires); err != nil {
			return nil, fmt.Errorf("scan nutrient cache: %w", err)
		}
		var facts []NutrientFact
		if err := json.Unmarshal([]byte(factsRaw), &facts); err == nil {
			item.Facts = len(facts)
		}
		item.FetchedAt, _ = parseStoredTime(fetched)
		item.ExpiresAt, _ = parseStoredTime(expires)
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate nutrient cache: %w", err)
	}
	return out, nil
}

func PurgeLookupCache(db *sql.DB, provider, query string, purgeAll bool) (int64, error) {
	provider = strings.ToLower(strings.TrimSpace(provider))
	query = normalizeName(query)

	var (
		res sql.Result
		err error
	)
	switch {
	case purgeAll:
		res, err = db.Exec(`DELETE FROM nutrient_lookup_cache`)
	case provider != "" && query != "":
		res, err = db.Exec(`DELETE FROM nutrient_lookup_cache WHERE provider = ? AND query = ?`, provider, query)
	case provider != "":
		res, err = db.Exec(`DELETE FROM nutrient_lookup_cache WHERE provider = ?`, provider)
	case query != "":
		res, err = db.Exec(`DELETE FROM nutrient_lookup_cache WHERE query = ?`, query)
	default:
		return 0, malformed("specify --all, --provider, --query, or provider+query")
	}
	if err != nil {
		return 0, fmt.Errorf("purge nutrient cache: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge nutrient cache rows affected: %w", err)
	}
	return affected, nil
}

type EnrichReport struct {
	Ingredient string   `json:"ingredient"`
	Provider   string   `json:"provider"`
	Stored     int      `json:"stored"`
	Rejected   []string `json:"rejected"`
}

// EnrichIngredient looks up an ingredient and stores the harmonised facts.
// Facts whose unit cannot be harmonised are rejected, not stored as-is.
// Nutrients seen for the first time are created.
func EnrichIngredient(ctx context.Context, db *sql.DB, deps LookupDeps, ingredient string) (EnrichReport, error) {
	report := EnrichReport{Ingredient: normalizeName(ingredient), Rejected: []string{}}
	if report.Ingredient == "" {
		return report, malformed("ingredient name is required")
	}
	result := LookupNutrients(ctx, deps, report.Ingredient)
	report.Provider = result.Provider
	store := NewStore(db)

	for _, f := range result.Facts {
		value, unit, err := ConvertNutrientValue(f.Nutrient, f.Value, f.Unit)
		if err != nil {
			report.Rejected = append(report.Rejected, fmt.Sprintf("%s (%s %s): %v", f.Nutrient, formatAmount(f.Value), f.Unit, err))
			continue
		}
		_, err = store.ResolveNutrient(f.Nutrient)
		if errors.Is(err, ErrNotFound) {
			_, err = CreateNutrient(db, NutrientInput{Name: f.Nutrient})
		}
		if err != nil {
			if KindOf(err) == "" {
				return report, err
			}
			report.Rejected = append(report.Rejected, fmt.Sprintf("%s: %v", f.Nutrient, err))
			continue
		}
		if err := SetIngredientNutrient(db, FactInput{
			Ingredient:     report.Ingredient,
			Nutrient:       f.Nutrient,
			PerHundredGram: value,
			Unit:           string(unit),
			Source:         result.Provider,
		}); err != nil {
			if KindOf(err) == "" {
				return report, err
			}
			report.Rejected = append(report.Rejected, fmt.Sprintf("%s: %v", f.Nutrient, err))
			continue
		}
		report.Stored++
	}
	deps.log().Info("ingredient enriched",
		zap.String("ingredient", report.Ingredient),
		zap.String("provider", report.Provider),
		zap.Int("stored", report.Stored),
		zap.Int("rejected", len(report.Rejected)))
	return report, nil
}

// parseStoredTime reads a cache timestamp written either by this package
// (RFC 3339) or by CSV import (SQL datetime, UTC).
func parseStoredTime(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t, nil
	}
	return time.ParseInLocation(sqlDateTime, raw, time.UTC)
}

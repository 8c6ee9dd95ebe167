package openfoodfacts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	defaultBaseURL = "https://world.openfoodfacts.org"
	userAgent      = "cooking-notebook/1.0 (+https://github.com/Kipparis/cooking-notebook)"
	per100gSuffix  = "_100g"
)

// ErrNoMatch is returned when no product is named exactly like the query.
var ErrNoMatch = errors.New("no matching openfoodfacts product")

type Nutrient struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

type Product struct {
	Code      string     `json:"code"`
	Name      string     `json:"name"`
	Nutrients []Nutrient `json:"nutrients"`
}

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	PageSize   int
}

// Nutriment keys whose display name differs from the title-cased key.
var nutrimentNames = map[string]string{
	"energy-kcal":   "Energy",
	"proteins":      "Protein",
	"carbohydrates": "Carbohydrate",
	"fat":           "Total lipid (fat)",
	"saturated-fat": "Fatty acids, total saturated",
	"fiber":         "Fiber",
	"sugars":        "Sugars",
	"salt":          "Salt",
	"sodium":        "Sodium",
	"vitamin-b12":   "Vitamin B-12",
	"vitamin-b6":    "Vitamin B-6",
}

// Keys that duplicate another key in a different unit, or are not nutrients.
var skippedNutriments = map[string]bool{
	"energy":                 true,
	"energy-kj":              true,
	"nova-group":             true,
	"nutrition-score-fr":     true,
	"nutrition-score-uk":     true,
	"fruits-vegetables-nuts": true,
}

var titleCase = cases.Title(language.English)

func (c *Client) rest() *resty.Client {
	base := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if base == "" {
		base = defaultBaseURL
	}
	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 12 * time.Second}
	}
	return resty.NewWithClient(httpClient).
		SetBaseURL(base).
		SetHeader("User-Agent", userAgent)
}

// SearchFood searches products by name and returns the first one whose
// product name equals the query case-insensitively, with its per-100 g
// nutriments.
func (c *Client) SearchFood(ctx context.Context, query string) (Product, []byte, error) {
	query = strings.TrimSpace(query)
	pageSize := c.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	resp, err := c.rest().R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"search_terms":  query,
			"search_simple": "1",
			"action":        "process",
			"json":          "1",
			"page_size":     strconv.Itoa(pageSize),
		}).
		Get("/cgi/search.pl")
	if err != nil {
		return Product{}, nil, fmt.Errorf("execute openfoodfacts search request: %w", err)
	}
	body := resp.Body()
	if resp.IsError() {
		return Product{}, body, fmt.Errorf("openfoodfacts search request failed with status %d", resp.StatusCode())
	}
	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return Product{}, body, fmt.Errorf("decode openfoodfacts search response: %w", err)
	}
	for _, p := range parsed.Products {
		if !strings.EqualFold(strings.TrimSpace(p.ProductName), query) {
			continue
		}
		return Product{
			Code:      strings.TrimSpace(p.Code),
			Name:      strings.TrimSpace(p.ProductName),
			Nutrients: per100g(p.Nutriments),
		}, body, nil
	}
	return Product{}, body, fmt.Errorf("%w for %q", ErrNoMatch, query)
}

// per100g reads every "<key>_100g" nutriment. Values are normalised by
// openfoodfacts to grams, except energy which is in kcal.
func per100g(n map[string]any) []Nutrient {
	out := make([]Nutrient, 0)
	for key, raw := range n {
		if !strings.HasSuffix(key, per100gSuffix) {
			continue
		}
		base := strings.ToLower(strings.TrimSuffix(key, per100gSuffix))
		if skippedNutriments[base] {
			continue
		}
		value, ok := parseFloatAny(raw)
		if !ok {
			continue
		}
		unit := "g"
		if base == "energy-kcal" {
			unit = "kcal"
		}
		out = append(out, Nutrient{Name: nutrimentName(base), Value: value, Unit: unit})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func nutrimentName(base string) string {
	if name, ok := nutrimentNames[base]; ok {
		return name
	}
	return titleCase.String(strings.ReplaceAll(base, "-", " "))
}

func parseFloatAny(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

type product struct {
	Code        string         `json:"code"`
	ProductName string         `json:"product_name"`
	Nutriments  map[string]any `json:"nutriments"`
}

type searchResponse struct {
	Products []product `json:"products"`
}

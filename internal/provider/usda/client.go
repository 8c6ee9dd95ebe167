package usda

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const defaultBaseURL = "https://api.nal.usda.gov"

// ErrNoMatch is returned when no food in the response describes the query.
var ErrNoMatch = errors.New("no matching USDA food")

type Nutrient struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

type Food struct {
	FDCID       int64      `json:"fdc_id"`
	Description string     `json:"description"`
	Nutrients   []Nutrient `json:"nutrients"`
}

type Client struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
	PageSize   int
}

func (c *Client) rest() *resty.Client {
	baseURL := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 12 * time.Second}
	}
	return resty.NewWithClient(httpClient).
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json")
}

// SearchFood runs a full-text search and returns the food whose description
// is exactly the query, or the query with the ", NFS" (not further specified)
// suffix. Search ranking is ignored: a higher-ranked "Potatoes, mashed" never
// stands in for "Potatoes". The raw response body is returned for caching.
func (c *Client) SearchFood(ctx context.Context, query string) (Food, []byte, error) {
	if strings.TrimSpace(c.APIKey) == "" {
		return Food{}, nil, fmt.Errorf("missing USDA API key")
	}
	query = strings.TrimSpace(query)
	pageSize := c.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	resp, err := c.rest().R().
		SetContext(ctx).
		SetQueryParam("api_key", c.APIKey).
		SetBody(map[string]any{
			"query":    query,
			"dataType": []string{"Survey (FNDDS)", "SR Legacy", "Foundation"},
			"pageSize": pageSize,
		}).
		Post("/fdc/v1/foods/search")
	if err != nil {
		return Food{}, nil, fmt.Errorf("execute USDA request: %w", err)
	}
	body := resp.Body()
	if resp.IsError() {
		return Food{}, body, fmt.Errorf("USDA request failed with status %d", resp.StatusCode())
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return Food{}, body, fmt.Errorf("decode USDA response: %w", err)
	}
	food, ok := selectDescriptionMatch(parsed.Foods, query)
	if !ok {
		return Food{}, body, fmt.Errorf("%w for %q", ErrNoMatch, query)
	}

	out := Food{
		FDCID:       food.FDCID,
		Description: strings.TrimSpace(food.Description),
		Nutrients:   make([]Nutrient, 0, len(food.FoodNutrients)),
	}
	for _, n := range food.FoodNutrients {
		name := strings.TrimSpace(n.NutrientName)
		unit := strings.TrimSpace(n.UnitName)
		if name == "" || unit == "" {
			continue
		}
		out.Nutrients = append(out.Nutrients, Nutrient{Name: name, Value: n.Value, Unit: unit})
	}
	return out, body, nil
}

func selectDescriptionMatch(foods []usdaFood, query string) (usdaFood, bool) {
	nfs := query + ", NFS"
	for _, f := range foods {
		if strings.EqualFold(strings.TrimSpace(f.Description), query) {
			return f, true
		}
	}
	for _, f := range foods {
		if strings.EqualFold(strings.TrimSpace(f.Description), nfs) {
			return f, true
		}
	}
	return usdaFood{}, false
}

type searchResponse struct {
	Foods []usdaFood `json:"foods"`
}

type usdaFood struct {
	FDCID         int64          `json:"fdcId"`
	Description   string         `json:"description"`
	FoodNutrients []usdaNutrient `json:"foodNutrients"`
}

type usdaNutrient struct {
	NutrientName string  `json:"nutrientName"`
	UnitName     string  `json:"unitName"`
	Value        float64 `json:"value"`
}

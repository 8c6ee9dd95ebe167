package openfoodfacts

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchFoodReadsPer100gNutriments(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/cgi/search.pl", r.URL.Path)
		assert.Equal(t, "buckwheat", r.URL.Query().Get("search_terms"))
		assert.Contains(t, r.Header.Get("User-Agent"), "cooking-notebook")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
  "products": [
    {"code": "1", "product_name": "Buckwheat flakes", "nutriments": {"proteins_100g": 11}},
    {
      "code": "2",
      "product_name": "Buckwheat",
      "nutriments": {
        "energy-kcal_100g": 343,
        "energy_100g": 1435,
        "proteins_100g": "13.3",
        "proteins_serving": 8,
        "vitamin-c_100g": 0,
        "iron_100g": 0.0022,
        "nova-group_100g": 1
      }
    }
  ]
}`))
	}))
	defer ts.Close()

	c := &Client{BaseURL: ts.URL, HTTPClient: ts.Client()}
	p, raw, err := c.SearchFood(context.Background(), "buckwheat")
	require.NoError(t, err)
	assert.NotEmpty(t, raw)
	assert.Equal(t, "2", p.Code)
	assert.Equal(t, []Nutrient{
		{Name: "Energy", Value: 343, Unit: "kcal"},
		{Name: "Iron", Value: 0.0022, Unit: "g"},
		{Name: "Protein", Value: 13.3, Unit: "g"},
		{Name: "Vitamin C", Value: 0, Unit: "g"},
	}, p.Nutrients)
}

func TestSearchFoodNoExactProduct(t *testing.T) {
	t.Parallel()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"products": [{"product_name": "Buckwheat flakes"}]}`))
	}))
	defer ts.Close()

	c := &Client{BaseURL: ts.URL, HTTPClient: ts.Client()}
	_, _, err := c.SearchFood(context.Background(), "buckwheat")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoMatch))
}

func TestSearchFoodHTTPError(t *testing.T) {
	t.Parallel()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	c := &Client{BaseURL: ts.URL, HTTPClient: ts.Client()}
	_, _, err := c.SearchFood(context.Background(), "buckwheat")
	require.ErrorContains(t, err, "503")
}

package usda

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const searchBody = `{
  "foods": [
    {
      "fdcId": 1,
      "description": "Potatoes, mashed, home-prepared",
      "foodNutrients": [{"nutrientName": "Protein", "unitName": "G", "value": 1.9}]
    },
    {
      "fdcId": 2,
      "description": "Potato, NFS",
      "foodNutrients": [
        {"nutrientName": "Protein", "unitName": "G", "value": 2.1},
        {"nutrientName": "Vitamin C, total ascorbic acid", "unitName": "MG", "value": 11.4},
        {"nutrientName": "Vitamin D (D2 + D3), International Units", "unitName": "IU", "value": 0},
        {"nutrientName": "", "unitName": "G", "value": 5}
      ]
    }
  ]
}`

func TestSearchFoodSelectsDescriptionMatch(t *testing.T) {
	t.Parallel()

	var gotKey string
	var gotBody map[string]any
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/fdc/v1/foods/search", r.URL.Path)
		gotKey = r.URL.Query().Get("api_key")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(searchBody))
	}))
	defer ts.Close()

	c := &Client{APIKey: "demo", BaseURL: ts.URL, HTTPClient: ts.Client()}
	food, raw, err := c.SearchFood(context.Background(), "potato")
	require.NoError(t, err)
	assert.Equal(t, "demo", gotKey)
	assert.Equal(t, "potato", gotBody["query"])
	assert.NotEmpty(t, raw)
	assert.Equal(t, int64(2), food.FDCID)
	require.Len(t, food.Nutrients, 3)
	assert.Equal(t, Nutrient{Name: "Vitamin C, total ascorbic acid", Value: 11.4, Unit: "MG"}, food.Nutrients[1])
}

func TestSearchFoodPrefersExactDescription(t *testing.T) {
	t.Parallel()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"foods": [
  {"fdcId": 7, "description": "Milk, NFS", "foodNutrients": []},
  {"fdcId": 8, "description": "milk", "foodNutrients": []}
]}`))
	}))
	defer ts.Close()

	c := &Client{APIKey: "demo", BaseURL: ts.URL, HTTPClient: ts.Client()}
	food, _, err := c.SearchFood(context.Background(), "Milk")
	require.NoError(t, err)
	assert.Equal(t, int64(8), food.FDCID)
}

func TestSearchFoodNoMatch(t *testing.T) {
	t.Parallel()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(searchBody))
	}))
	defer ts.Close()

	c := &Client{APIKey: "demo", BaseURL: ts.URL, HTTPClient: ts.Client()}
	_, _, err := c.SearchFood(context.Background(), "potatoes")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoMatch))
}

func TestSearchFoodErrors(t *testing.T) {
	t.Parallel()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer ts.Close()

	c := &Client{APIKey: "demo", BaseURL: ts.URL, HTTPClient: ts.Client()}
	_, _, err := c.SearchFood(context.Background(), "potato")
	require.ErrorContains(t, err, "429")

	_, _, err = (&Client{}).SearchFood(context.Background(), "potato")
	require.ErrorContains(t, err, "API key")
}

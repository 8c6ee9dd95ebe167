package service_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kipparis/cooking-notebook/internal/service"
)

func TestNormalizeUnitResolvesAliases(t *testing.T) {
	t.Parallel()
	cases := map[string]service.CanonicalUnit{
		"Grams":        "g",
		"г":            "g",
		"мкг":          "mcg",
		"ст. л.":       "tbsp",
		"ч.л.":         "tsp",
		"g (diced)":    "g",
		"IU":           "iu",
		"kcal":         "kcal",
		"шт.":          "pcs",
		"handful":      "handful",
		"Tablespoons.": "tbsp",
	}
	for raw, want := range cases {
		assert.Equal(t, want, service.NormalizeUnit(raw), raw)
	}
}

func TestRescaleSameDimension(t *testing.T) {
	t.Parallel()
	out, ok := service.Rescale(100, "g", "oz")
	require.True(t, ok)
	if math.Abs(out-3.5274) > 0.01 {
		t.Fatalf("expected ~3.53 oz, got %.4f", out)
	}

	out, ok = service.Rescale(1500, service.UnitMicrogram, service.UnitMilligram)
	require.True(t, ok)
	assert.InDelta(t, 1.5, out, 1e-9)
}

func TestRescaleRejectsCrossDimension(t *testing.T) {
	t.Parallel()
	_, ok := service.Rescale(1, "cup", "g")
	assert.False(t, ok)
	_, ok = service.Rescale(1, "pinch", "g")
	assert.False(t, ok)
}

func TestIsBaseUnit(t *testing.T) {
	t.Parallel()
	for _, u := range []service.CanonicalUnit{"g", "mg", "mcg"} {
		assert.True(t, service.IsBaseUnit(u), u)
	}
	assert.False(t, service.IsBaseUnit("kg"))
	assert.False(t, service.IsBaseUnit("iu"))
}

func TestConvertNutrientValue(t *testing.T) {
	t.Parallel()
	cases := []struct {
		nutrient string
		value    float64
		unit     string
		want     float64
		wantUnit service.CanonicalUnit
	}{
		{"Vitamin D (D2 + D3), International Units", 40, "IU", 1, "mcg"},
		{"Vitamin A, IU", 1000, "IU", 300, "mcg"},
		{"Carotene, beta", 100, "IU", 60, "mcg"},
		{"Vitamin E (alpha-tocopherol)", 10, "IU", 6.7, "mg"},
		{"Vitamin E synthetic", 10, "IU", 4.5, "mg"},
		{"Sodium, Na", 0.5, "g", 500, "mg"},
		{"Protein", 1200, "mg", 1.2, "g"},
		{"Energy", 418.4, "kJ", 100, "kcal"},
	}
	for _, tc := range cases {
		got, unit, err := service.ConvertNutrientValue(tc.nutrient, tc.value, tc.unit)
		require.NoError(t, err, tc.nutrient)
		assert.InDelta(t, tc.want, got, 1e-6, tc.nutrient)
		assert.Equal(t, tc.wantUnit, unit, tc.nutrient)
	}
}

func TestConvertNutrientValuePicksUnitDeterministically(t *testing.T) {
	t.Parallel()
	for i := 0; i < 50; i++ {
		got, unit, err := service.ConvertNutrientValue("Vitamin B-12", 0.002, "mg")
		require.NoError(t, err)
		assert.Equal(t, service.UnitMicrogram, unit)
		assert.InDelta(t, 2, got, 1e-9)

		got, unit, err = service.ConvertNutrientValue("Iron, Fe", 0.01, "g")
		require.NoError(t, err)
		assert.Equal(t, service.UnitMilligram, unit)
		assert.InDelta(t, 10, got, 1e-9)
	}
}

func TestConvertNutrientValueRejectsUnknownForms(t *testing.T) {
	t.Parallel()
	_, _, err := service.ConvertNutrientValue("Retinol activity", 10, "IU")
	require.ErrorIs(t, err, service.ErrNotFound)

	_, _, err = service.ConvertNutrientValue("Protein", 1, "cup")
	require.ErrorIs(t, err, service.ErrNotFound)

	_, _, err = service.ConvertNutrientValue("Protein", -1, "g")
	require.ErrorIs(t, err, service.ErrMalformed)
}

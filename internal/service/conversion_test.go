package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kipparis/cooking-notebook/internal/service"
)

func TestConversionLifecycle(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	store := service.NewStore(sqldb)

	_, _, err := service.Convert(store, "flour", 2, "tbsp")
	require.ErrorIs(t, err, service.ErrNotFound)

	require.NoError(t, service.SetConversion(sqldb, service.ConversionInput{
		Ingredient: "Flour", FromUnit: "ст. л.", ToUnit: "g", Multiplier: 8,
	}))
	qty, unit, err := service.Convert(store, "flour", 2, "tbsp")
	require.NoError(t, err)
	assert.Equal(t, 16.0, qty)
	assert.Equal(t, service.UnitGram, unit)

	require.NoError(t, service.SetConversion(sqldb, service.ConversionInput{
		Ingredient: "flour", FromUnit: "tbsp", ToUnit: "g", Multiplier: 9,
	}))
	list, err := service.ListConversions(sqldb, "flour")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 9.0, list[0].Multiplier)

	require.NoError(t, service.DeleteConversion(sqldb, "flour", "tbsp"))
	require.ErrorIs(t, service.DeleteConversion(sqldb, "flour", "tbsp"), service.ErrNotFound)
}

func TestSetConversionRejectsBadInput(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	err := service.SetConversion(sqldb, service.ConversionInput{Ingredient: "egg", FromUnit: "pcs", ToUnit: "g", Multiplier: 0})
	require.ErrorIs(t, err, service.ErrMalformed)
	err = service.SetConversion(sqldb, service.ConversionInput{Ingredient: "egg", FromUnit: "g", ToUnit: "gram", Multiplier: 2})
	require.ErrorIs(t, err, service.ErrMalformed)
}

func TestToGramsRescalesMassDirectly(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	store := service.NewStore(sqldb)

	grams, err := service.ToGrams(store, "sugar", 1.5, "kg")
	require.NoError(t, err)
	assert.Equal(t, 1500.0, grams)

	require.NoError(t, service.SetConversion(sqldb, service.ConversionInput{
		Ingredient: "egg", FromUnit: "pcs", ToUnit: "oz", Multiplier: 2,
	}))
	grams, err = service.ToGrams(store, "egg", 1, "шт")
	require.NoError(t, err)
	assert.InDelta(t, 56.699, grams, 1e-3)

	_, err = service.ToGrams(store, "milk", 1, "cup")
	require.ErrorIs(t, err, service.ErrNotFound)
}

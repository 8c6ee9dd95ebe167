package service_test

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kipparis/cooking-notebook/internal/service"
)

func seedNutritionDB(t *testing.T) *sql.DB {
	t.Helper()
	sqldb := newTestDB(t)
	for _, n := range []string{"Protein", "Vitamin C"} {
		_, err := service.CreateNutrient(sqldb, service.NutrientInput{Name: n})
		require.NoError(t, err)
	}
	facts := []service.FactInput{
		{Ingredient: "potato", Nutrient: "protein", PerHundredGram: 2, Unit: "g"},
		{Ingredient: "potato", Nutrient: "vitamin c", PerHundredGram: 19.7, Unit: "mg"},
		{Ingredient: "milk", Nutrient: "Protein", PerHundredGram: 3.4, Unit: "g"},
	}
	for _, f := range facts {
		require.NoError(t, service.SetIngredientNutrient(sqldb, f))
	}
	mustCreateRecipe(t, sqldb, "mash", line("potato", 500, "g"), line("milk", 1, "cup"), line("salt", 5, "g"))
	mustCreateRecipe(t, sqldb, "boiled", line("potato", 300, "g"))
	return sqldb
}

func findTotal(totals []service.NutrientTotal, nutrient, unit string) (service.NutrientTotal, bool) {
	for _, tot := range totals {
		if tot.Nutrient == nutrient && tot.Unit == unit {
			return tot, true
		}
	}
	return service.NutrientTotal{}, false
}

func TestAggregateNutrientsSumsPerHundredGramValues(t *testing.T) {
	t.Parallel()
	sqldb := seedNutritionDB(t)

	report, err := service.AggregateNutrients(service.NewStore(sqldb), []string{"mash", "boiled", "Borscht"}, service.NutrientOptions{})
	require.NoError(t, err)
	assert.False(t, report.Scaled)
	assert.Equal(t, []string{"Borscht"}, report.Unresolved)

	protein, ok := findTotal(report.Summary, "Protein", "g")
	require.True(t, ok)
	assert.InDelta(t, 2+3.4+2, protein.Quantity, 1e-9)
	vitC, ok := findTotal(report.Summary, "Vitamin C", "mg")
	require.True(t, ok)
	assert.InDelta(t, 39.4, vitC.Quantity, 1e-9)

	require.Len(t, report.Missing, 1)
	assert.Equal(t, "salt", report.Missing[0].Ingredient)
	assert.Equal(t, []string{"mash"}, report.Missing[0].Recipes)
	require.Len(t, report.PerRecipe, 2)
	assert.Equal(t, []string{"salt"}, report.PerRecipe[0].Missing)
}

func TestAggregateNutrientsNeverMixesUnits(t *testing.T) {
	t.Parallel()
	sqldb := seedNutritionDB(t)
	require.NoError(t, service.SetIngredientNutrient(sqldb, service.FactInput{
		Ingredient: "milk", Nutrient: "Vitamin C", PerHundredGram: 900, Unit: "mcg",
	}))

	report, err := service.AggregateNutrients(service.NewStore(sqldb), []string{"mash"}, service.NutrientOptions{})
	require.NoError(t, err)
	mg, ok := findTotal(report.Summary, "Vitamin C", "mg")
	require.True(t, ok)
	assert.InDelta(t, 19.7, mg.Quantity, 1e-9)
	mcg, ok := findTotal(report.Summary, "Vitamin C", "mcg")
	require.True(t, ok)
	assert.InDelta(t, 900, mcg.Quantity, 1e-9)
}

func TestAggregateNutrientsFiltersByName(t *testing.T) {
	t.Parallel()
	sqldb := seedNutritionDB(t)

	report, err := service.AggregateNutrients(service.NewStore(sqldb), []string{"boiled"}, service.NutrientOptions{
		Nutrients: []string{"VITAMIN C", "zinc"},
	})
	require.NoError(t, err)
	require.Len(t, report.Summary, 1)
	assert.Equal(t, "Vitamin C", report.Summary[0].Nutrient)
	require.Len(t, report.Problems, 1)
	assert.Contains(t, report.Problems[0], "zinc")
}

func TestAggregateNutrientsScalesByQuantity(t *testing.T) {
	t.Parallel()
	sqldb := seedNutritionDB(t)
	store := service.NewStore(sqldb)

	report, err := service.AggregateNutrients(store, []string{"mash"}, service.NutrientOptions{
		Nutrients:       []string{"protein"},
		ScaleByQuantity: true,
		Conversions:     store,
	})
	require.NoError(t, err)
	assert.True(t, report.Scaled)
	protein, ok := findTotal(report.Summary, "Protein", "g")
	require.True(t, ok)
	assert.InDelta(t, 10, protein.Quantity, 1e-9)
	require.Len(t, report.Problems, 1)
	assert.Contains(t, report.Problems[0], "milk")

	require.NoError(t, service.SetConversion(sqldb, service.ConversionInput{
		Ingredient: "milk", FromUnit: "cup", ToUnit: "g", Multiplier: 245,
	}))
	report, err = service.AggregateNutrients(store, []string{"mash"}, service.NutrientOptions{
		Nutrients:       []string{"protein"},
		ScaleByQuantity: true,
		Conversions:     store,
	})
	require.NoError(t, err)
	assert.Empty(t, report.Problems)
	protein, _ = findTotal(report.Summary, "Protein", "g")
	assert.InDelta(t, 10+3.4*2.45, protein.Quantity, 1e-9)
}

func TestResolveNutrientReportsDuplicates(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	_, err := service.CreateNutrient(sqldb, service.NutrientInput{Name: "Iron"})
	require.NoError(t, err)
	_, err = service.CreateNutrient(sqldb, service.NutrientInput{Name: "IRON"})
	require.ErrorIs(t, err, service.ErrDuplicate)

	// Rows written outside CreateNutrient, e.g. by an import, can still collide.
	_, err = sqldb.Exec(`INSERT INTO nutrients(name) VALUES('iron')`)
	require.NoError(t, err)
	_, err = service.NewStore(sqldb).ResolveNutrient("Iron")
	require.ErrorIs(t, err, service.ErrDuplicate)

	_, err = service.NewStore(sqldb).ResolveNutrient("Zinc")
	require.ErrorIs(t, err, service.ErrNotFound)
}

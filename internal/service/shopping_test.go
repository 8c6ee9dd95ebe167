package service_test

import (
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kipparis/cooking-notebook/internal/service"
)

func TestAggregateShoppingSumsSharedIngredients(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	mustCreateRecipe(t, sqldb, "R1", line("potato", 200, "g"))
	mustCreateRecipe(t, sqldb, "R2", line("potato", 300, "g"), line("salt", 5, "g"))

	list, err := service.AggregateShopping(service.NewStore(sqldb), []string{"R1", "R2"})
	require.NoError(t, err)
	assert.Empty(t, list.Unresolved)
	require.Len(t, list.Items, 2)
	assert.Equal(t, "potato", list.Items[0].Name)
	assert.Equal(t, []service.Quantity{q(500, "g")}, list.Items[0].Pairs)
	assert.Equal(t, "salt", list.Items[1].Name)
	assert.Equal(t, []service.Quantity{q(5, "g")}, list.Items[1].Pairs)
}

func TestAggregateShoppingMatchesNamesNotIDs(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	soupID := mustCreateRecipe(t, sqldb, "soup", line("potato", 200, "g"))
	mustCreateRecipe(t, sqldb, "7", line("beet", 100, "g"))
	require.Equal(t, int64(1), soupID)
	store := service.NewStore(sqldb)

	list, err := service.AggregateShopping(store, []string{"1"})
	require.NoError(t, err)
	assert.Empty(t, list.Items)
	assert.Equal(t, []string{"1"}, list.Unresolved)

	list, err = service.AggregateShopping(store, []string{"7"})
	require.NoError(t, err)
	assert.Empty(t, list.Unresolved)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "beet", list.Items[0].Name)

	// Ids still work where a command accepts <id|name>, but a name wins.
	byID, err := store.ShowRecipe("1")
	require.NoError(t, err)
	assert.Equal(t, "soup", byID.Name)
	named, err := service.ResolveRecipe(sqldb, "7")
	require.NoError(t, err)
	assert.Equal(t, "7", named.Name)
}

func TestAggregationSkipsBlankRecipeNames(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	mustCreateRecipe(t, sqldb, "mash", line("potato", 300, "g"))
	store := service.NewStore(sqldb)

	list, err := service.AggregateShopping(store, []string{"mash", " "})
	require.NoError(t, err)
	assert.Equal(t, []string{" "}, list.Unresolved)
	require.Len(t, list.Items, 1)
	assert.Equal(t, 300.0, list.Items[0].Total("g"))

	report, err := service.AggregateNutrients(store, []string{"mash", " "}, service.NutrientOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{" "}, report.Unresolved)
	require.Len(t, report.PerRecipe, 1)
	assert.Equal(t, "mash", report.PerRecipe[0].Recipe)
}

func TestAggregateShoppingReportsUnknownRecipes(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	mustCreateRecipe(t, sqldb, "R1", line("potato", 200, "g"))

	list, err := service.AggregateShopping(service.NewStore(sqldb), []string{"Borscht", "R1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Borscht"}, list.Unresolved)
	require.Len(t, list.Items, 1)
	assert.Equal(t, 200.0, list.Items[0].Total("g"))
}

func TestAggregateShoppingKeepsDifferentNotationsApart(t *testing.T) {
	t.Parallel()
	store := memRecipes{
		"soup":  memRecipe("soup", row("flour", 2, "tbsp"), row("flour", 30, "g")),
		"bread": memRecipe("bread", row("flour", 500, "g")),
	}
	list, err := service.AggregateShopping(store, []string{"soup", "bread"})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, []service.Quantity{q(530, "g"), q(2, "tbsp")}, list.Items[0].Pairs)
}

func TestAggregateShoppingTotalsIgnoreRecipeOrder(t *testing.T) {
	t.Parallel()
	faker := gofakeit.New(7)
	names := []string{"egg", "milk", "flour", "sugar"}
	units := []string{"g", "ml", "pcs"}

	store := memRecipes{}
	order := make([]string, 0, 6)
	for i := 0; i < 6; i++ {
		name := faker.LetterN(8)
		detail := memRecipe(name)
		for j := 0; j < 3; j++ {
			detail.Ingredients = append(detail.Ingredients, row(
				names[faker.Number(0, len(names)-1)],
				float64(faker.Number(1, 50)),
				units[faker.Number(0, len(units)-1)],
			))
		}
		store[name] = detail
		order = append(order, name)
	}

	forward, err := service.AggregateShopping(store, order)
	require.NoError(t, err)
	reversed := make([]string, len(order))
	for i, n := range order {
		reversed[len(order)-1-i] = n
	}
	backward, err := service.AggregateShopping(store, reversed)
	require.NoError(t, err)

	totals := func(list service.ShoppingList) map[string]float64 {
		out := map[string]float64{}
		for _, it := range list.Items {
			for _, p := range it.Pairs {
				out[it.Name+"|"+p.Notation] += p.Amount
			}
		}
		return out
	}
	fw, bw := totals(forward), totals(backward)
	require.Equal(t, len(fw), len(bw))
	for k, v := range fw {
		assert.InDelta(t, v, bw[k], 1e-9, k)
	}
}

func TestMergeIngredientsAppendsNewNames(t *testing.T) {
	t.Parallel()
	acc := []service.Ingredient{ingredient("salt", q(5, "g"))}
	out := service.MergeIngredients(acc, ingredient("salt", q(2, "g")), ingredient("pepper", q(1, "g")))
	require.Len(t, out, 2)
	assert.Equal(t, 7.0, out[0].Total("g"))
	assert.Equal(t, "pepper", out[1].Name)
	assert.Equal(t, 5.0, acc[0].Total("g"))
}

func TestMergeIngredientsFoldsRepeatedNamesInInput(t *testing.T) {
	t.Parallel()
	acc := []service.Ingredient{
		ingredient("salt", q(5, "g")),
		ingredient("salt", q(1, "tsp")),
	}
	out := service.MergeIngredients(acc, ingredient("salt", q(2, "g")), ingredient("salt", q(1, "tsp")))
	require.Len(t, out, 1)
	assert.Equal(t, 7.0, out[0].Total("g"))
	assert.Equal(t, 2.0, out[0].Total("tsp"))
}

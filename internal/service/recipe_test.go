package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kipparis/cooking-notebook/internal/model"
	"github.com/Kipparis/cooking-notebook/internal/service"
)

func TestCreateRecipeStoresStepsAndIngredients(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)

	id, err := service.CreateRecipe(sqldb, model.RecipeInput{
		Name:     "Syrniki",
		MealType: "Breakfast",
		Portions: 2,
		Steps:    []string{"Mix", "Fry"},
		Ingredients: []model.IngredientLine{
			line("Tvorog", 400, "g"),
			line("egg", 1, "шт."),
			line("flour", 2, "ст. л."),
			line("flour", 1, "ст л"),
		},
	})
	require.NoError(t, err)
	assert.Positive(t, id)

	r, err := service.NewStore(sqldb).LoadRecipe("syrniki")
	require.NoError(t, err)
	assert.Equal(t, "breakfast", r.MealType)
	assert.Equal(t, 2, r.Portions)
	assert.Equal(t, []string{"Mix", "Fry"}, r.Steps)
	require.Len(t, r.Ingredients, 3)
	assert.Equal(t, model.RecipeIngredientRow{IngredientID: r.Ingredients[2].IngredientID, Ingredient: "flour", Quantity: 3, Unit: "ст л"}, r.Ingredients[2])
	assert.Equal(t, "шт", r.Ingredients[1].Unit)

	byID, err := service.ResolveRecipe(sqldb, "1")
	require.NoError(t, err)
	assert.Equal(t, "Syrniki", byID.Name)
}

func TestCreateRecipeRejectsBadInput(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	mustCreateRecipe(t, sqldb, "Soup", line("beet", 1, "g"))

	_, err := service.CreateRecipe(sqldb, model.RecipeInput{Name: "soup"})
	require.ErrorIs(t, err, service.ErrDuplicate)

	_, err = service.CreateRecipe(sqldb, model.RecipeInput{Name: " "})
	require.ErrorIs(t, err, service.ErrMalformed)

	_, err = service.CreateRecipe(sqldb, model.RecipeInput{Name: "Stew", Ingredients: []model.IngredientLine{line("beef", 0, "g")}})
	require.ErrorIs(t, err, service.ErrMalformed)

	_, err = service.CreateRecipe(sqldb, model.RecipeInput{Name: "Stew", Ingredients: []model.IngredientLine{line("beef", 1, "kg"), line("beef", 200, "g")}})
	require.ErrorIs(t, err, service.ErrMalformed)

	_, err = service.CreateRecipe(sqldb, model.RecipeInput{Name: "Stew", Steps: []string{""}})
	require.ErrorIs(t, err, service.ErrMalformed)
}

func TestListAndDeleteRecipes(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	_, err := service.CreateRecipe(sqldb, model.RecipeInput{Name: "Porridge", MealType: "breakfast", Ingredients: []model.IngredientLine{line("oats", 50, "g")}})
	require.NoError(t, err)
	mustCreateRecipe(t, sqldb, "Soup", line("beet", 1, "g"))

	all, err := service.ListRecipes(sqldb, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
	breakfast, err := service.ListRecipes(sqldb, "Breakfast")
	require.NoError(t, err)
	require.Len(t, breakfast, 1)
	assert.Equal(t, "Porridge", breakfast[0].Name)

	require.NoError(t, service.DeleteRecipe(sqldb, "porridge"))
	_, err = service.ResolveRecipe(sqldb, "porridge")
	require.ErrorIs(t, err, service.ErrNotFound)
	require.ErrorIs(t, service.DeleteRecipe(sqldb, "porridge"), service.ErrNotFound)
}

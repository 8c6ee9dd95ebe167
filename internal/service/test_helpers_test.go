package service_test

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Kipparis/cooking-notebook/internal/db"
	"github.com/Kipparis/cooking-notebook/internal/model"
	"github.com/Kipparis/cooking-notebook/internal/service"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cooking.db")
	sqldb, err := db.Open(path)
	require.NoError(t, err, "open db")
	t.Cleanup(func() { _ = sqldb.Close() })
	require.NoError(t, db.ApplyMigrations(sqldb), "apply migrations")
	return sqldb
}

func line(name string, qty float64, unit string) model.IngredientLine {
	return model.IngredientLine{Name: name, Quantity: qty, Unit: unit}
}

func mustCreateRecipe(t *testing.T, sqldb *sql.DB, name string, lines ...model.IngredientLine) int64 {
	t.Helper()
	id, err := service.CreateRecipe(sqldb, model.RecipeInput{Name: name, Ingredients: lines})
	require.NoError(t, err, "create recipe %s", name)
	return id
}

// memRecipes is an in-memory RecipeStore keyed by exact recipe name.
type memRecipes map[string]model.RecipeDetail

func (m memRecipes) LoadRecipe(name string) (model.RecipeDetail, error) {
	r, ok := m[name]
	if !ok {
		return model.RecipeDetail{}, &service.Error{Kind: service.KindNotFound, Subject: "recipe " + name}
	}
	return r, nil
}

func memRecipe(name string, rows ...model.RecipeIngredientRow) model.RecipeDetail {
	return model.RecipeDetail{Recipe: model.Recipe{Name: name}, Ingredients: rows}
}

func row(name string, qty float64, unit string) model.RecipeIngredientRow {
	return model.RecipeIngredientRow{Ingredient: name, Quantity: qty, Unit: unit}
}

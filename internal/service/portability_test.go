package service_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kipparis/cooking-notebook/internal/model"
	"github.com/Kipparis/cooking-notebook/internal/service"
)

func TestExportImportCSVRoundTrip(t *testing.T) {
	t.Parallel()
	src := seedNutritionDB(t)
	_, err := service.AddBound(src, service.BoundInput{
		Nutrient: "Vitamin C", AgeLower: 19, AgeUpper: 50, Sex: model.SexMale, AdequateIntake: ptr(90), Unit: "mg",
	})
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "export")
	exported, err := service.ExportCSV(src, dir)
	require.NoError(t, err)
	assert.Equal(t, 2, exported.Tables["recipes"])

	raw, err := os.ReadFile(filepath.Join(dir, "nutrient_bounds.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "id|nutrient_id|"))
	assert.Contains(t, lines[1], `|\N|`, "missing upper limit exported as NULL")

	dst := newTestDB(t)
	report, err := service.ImportCSV(dst, dir, nil)
	require.NoError(t, err)
	assert.Empty(t, report.Missing)
	assert.Equal(t, 2, report.Tables["recipes"])
	// g, mg and mcg are seeded in both databases.
	assert.Equal(t, 3, report.Skipped)

	store := service.NewStore(dst)
	mash, err := store.LoadRecipe("mash")
	require.NoError(t, err)
	assert.Len(t, mash.Ingredients, 3)
	bounds, err := service.ListBounds(dst, "vitamin c")
	require.NoError(t, err)
	require.Len(t, bounds, 1)
	assert.Nil(t, bounds[0].UpperLimit)

	again, err := service.ImportCSV(dst, dir, nil)
	require.NoError(t, err)
	assert.Zero(t, again.Inserted, "import is additive and skips existing rows")
}

func TestImportCSVSkipsViolationsAndMissingFiles(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ingredients.csv"), []byte("id|name\n1|potato\n2|potato\n3|salt\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "recipes.csv"), []byte("id|name|meal_type_id|portions|created_at|updated_at\n1|soup|99|2|2024-01-01 00:00:00|2024-01-01 00:00:00\n"), 0o644))

	sqldb := newTestDB(t)
	report, err := service.ImportCSV(sqldb, dir, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Inserted)
	assert.Equal(t, 2, report.Skipped, "duplicate name and dangling meal type")
	assert.Contains(t, report.Missing, "nutrients")

	last, ok, err := service.GetConfig(sqldb, service.ConfigLastImport)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, dir, last)
}

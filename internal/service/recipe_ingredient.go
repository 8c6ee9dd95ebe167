package service

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Kipparis/cooking-notebook/internal/model"
)

// SetRecipeIngredient adds an ingredient line to a stored recipe, or replaces
// the quantity and unit of the line already naming that ingredient.
func SetRecipeIngredient(db *sql.DB, recipeIdentifier string, in model.IngredientLine) error {
	recipe, err := ResolveRecipe(db, recipeIdentifier)
	if err != nil {
		return err
	}
	if err := validateRecipeIngredientInput(in); err != nil {
		return err
	}
	ingredientID, err := getOrCreateID(db, "ingredients", normalizeName(in.Name))
	if err != nil {
		return err
	}
	unitID, err := getOrCreateID(db, "measure_units", NormalizeNotation(in.Unit))
	if err != nil {
		return err
	}
	_, err = db.Exec(`
INSERT INTO recipe_ingredients(recipe_id, ingredient_id, quantity, measure_unit_id, position)
VALUES(?, ?, ?, ?, (SELECT IFNULL(MAX(position) + 1, 0) FROM recipe_ingredients WHERE recipe_id = ?))
ON CONFLICT(recipe_id, ingredient_id) DO UPDATE SET quantity = excluded.quantity, measure_unit_id = excluded.measure_unit_id
`, recipe.ID, ingredientID, in.Quantity, unitID, recipe.ID)
	if err != nil {
		return fmt.Errorf("set ingredient %q of %q: %w", in.Name, recipe.Name, err)
	}
	if _, err := db.Exec(`UPDATE recipes SET updated_at = CURRENT_TIMESTAMP WHERE id = ?`, recipe.ID); err != nil {
		return fmt.Errorf("touch recipe %q: %w", recipe.Name, err)
	}
	return nil
}

func DeleteRecipeIngredient(db *sql.DB, recipeIdentifier, ingredient string) error {
	recipe, err := ResolveRecipe(db, recipeIdentifier)
	if err != nil {
		return err
	}
	name := normalizeName(ingredient)
	res, err := db.Exec(`
DELETE FROM recipe_ingredients
WHERE recipe_id = ? AND ingredient_id = (SELECT id FROM ingredients WHERE name = ?)
`, recipe.ID, name)
	if err != nil {
		return fmt.Errorf("delete ingredient %q of %q: %w", name, recipe.Name, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("read rows affected: %w", err)
	}
	if affected == 0 {
		return notFound("ingredient %q in recipe %q", name, recipe.Name)
	}
	return nil
}

// RenameIngredient renames an ingredient everywhere it is used. Renaming onto
// an existing ingredient is rejected so recipes never end up listing the same
// ingredient twice.
func RenameIngredient(db *sql.DB, from, to string) error {
	oldName, newName := normalizeName(from), normalizeName(to)
	if oldName == "" || newName == "" {
		return malformed("ingredient names are required")
	}
	id, err := lookupID(db, "ingredients", oldName)
	if err != nil {
		return err
	}
	var existing int64
	err = db.QueryRow(`SELECT id FROM ingredients WHERE name = ?`, newName).Scan(&existing)
	if err == nil {
		return duplicate("ingredient %q", newName)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("check ingredient %q: %w", newName, err)
	}
	if _, err := db.Exec(`UPDATE ingredients SET name = ? WHERE id = ?`, newName, id); err != nil {
		return fmt.Errorf("rename ingredient %q: %w", oldName, err)
	}
	return nil
}

func validateRecipeIngredientInput(in model.IngredientLine) error {
	if strings.TrimSpace(in.Name) == "" {
		return malformed("ingredient name is required")
	}
	if in.Quantity <= 0 {
		return malformed("ingredient quantity must be > 0")
	}
	if strings.TrimSpace(in.Unit) == "" {
		return malformed("ingredient unit is required")
	}
	return nil
}

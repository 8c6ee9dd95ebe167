package service

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/Kipparis/cooking-notebook/internal/model"
)

type NutrientInput struct {
	Name       string
	FullName   string
	Deficiency string
	Excess     string
}

// CreateNutrient adds a nutrient. Names are unique case-insensitively.
func CreateNutrient(db *sql.DB, in NutrientInput) (int64, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return 0, malformed("nutrient name is required")
	}
	if _, err := NewStore(db).ResolveNutrient(name); err == nil {
		return 0, duplicate("nutrient %q", name)
	} else if KindOf(err) != KindNotFound {
		return 0, err
	}
	res, err := db.Exec(`INSERT INTO nutrients(name, full_name, deficiency, excess) VALUES(?, ?, ?, ?)`,
		name, strings.TrimSpace(in.FullName), strings.TrimSpace(in.Deficiency), strings.TrimSpace(in.Excess))
	if err != nil {
		return 0, fmt.Errorf("create nutrient %q: %w", name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("resolve nutrient id: %w", err)
	}
	return id, nil
}

func ListNutrients(db *sql.DB) ([]model.Nutrient, error) {
	rows, err := db.Query(`SELECT id, name, full_name, deficiency, excess FROM nutrients ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list nutrients: %w", err)
	}
	defer rows.Close()
	out := make([]model.Nutrient, 0)
	for rows.Next() {
		var n model.Nutrient
		if err := rows.Scan(&n.ID, &n.Name, &n.FullName, &n.Deficiency, &n.Excess); err != nil {
			return nil, fmt.Errorf("scan nutrient: %w", err)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate nutrients: %w", err)
	}
	return out, nil
}

// ResolveNutrient matches name case-insensitively, including non-ASCII
// names. More than one match yields ErrDuplicate.
func (s *Store) ResolveNutrient(name string) (model.Nutrient, error) {
	key := NormalizeNotation(name)
	if key == "" {
		return model.Nutrient{}, malformed("nutrient name is required")
	}
	all, err := ListNutrients(s.db)
	if err != nil {
		return model.Nutrient{}, err
	}
	var found []model.Nutrient
	for _, n := range all {
		if NormalizeNotation(n.Name) == key {
			found = append(found, n)
		}
	}
	switch len(found) {
	case 0:
		return model.Nutrient{}, notFound("nutrient %q", name)
	case 1:
		return found[0], nil
	default:
		return model.Nutrient{}, duplicate("nutrient %q matches %d rows", name, len(found))
	}
}

// NutrientFacts returns every ingredient of the recipe joined to its facts.
// The recipe unit and the fact unit come from separate joins of
// measure_units and are never confused.
func (s *Store) NutrientFacts(recipeID int64) ([]model.NutrientFactRow, error) {
	rows, err := s.db.Query(`
SELECT i.id, i.name, ri.quantity, ingredient_unit.name,
       IFNULL(n.name, ''), IFNULL(f.quantity_per_100g, 0), IFNULL(fact_unit.name, '')
FROM recipe_ingredients ri
JOIN ingredients i ON i.id = ri.ingredient_id
JOIN measure_units ingredient_unit ON ingredient_unit.id = ri.measure_unit_id
LEFT JOIN ingredient_nutrients f ON f.ingredient_id = ri.ingredient_id
LEFT JOIN nutrients n ON n.id = f.nutrient_id
LEFT JOIN measure_units fact_unit ON fact_unit.id = f.measure_unit_id
WHERE ri.recipe_id = ?
ORDER BY ri.position, ri.id, n.name
`, recipeID)
	if err != nil {
		return nil, fmt.Errorf("load nutrient facts of recipe %d: %w", recipeID, err)
	}
	defer rows.Close()
	out := make([]model.NutrientFactRow, 0)
	for rows.Next() {
		var r model.NutrientFactRow
		if err := rows.Scan(&r.IngredientID, &r.Ingredient, &r.RecipeQuantity, &r.RecipeUnit, &r.Nutrient, &r.PerHundredGram, &r.Unit); err != nil {
			return nil, fmt.Errorf("scan nutrient fact: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate nutrient facts: %w", err)
	}
	return out, nil
}

type FactInput struct {
	Ingredient     string
	Nutrient       string
	PerHundredGram float64
	Unit           string
	Source         string
}

// SetIngredientNutrient stores or replaces the per-100 g amount of a nutrient
// in an ingredient. The nutrient must already exist; the ingredient is created
// on first use.
func SetIngredientNutrient(db *sql.DB, in FactInput) error {
	name := normalizeName(in.Ingredient)
	if name == "" {
		return malformed("ingredient name is required")
	}
	if err := validateNonNegativeFloat("nutrient amount", in.PerHundredGram); err != nil {
		return err
	}
	unit := NormalizeUnit(in.Unit)
	if unit == "" {
		return malformed("nutrient unit is required")
	}
	nutrient, err := NewStore(db).ResolveNutrient(in.Nutrient)
	if err != nil {
		return err
	}
	source := strings.TrimSpace(in.Source)
	if source == "" {
		source = "manual"
	}
	ingredientID, err := getOrCreateID(db, "ingredients", name)
	if err != nil {
		return err
	}
	unitID, err := getOrCreateID(db, "measure_units", string(unit))
	if err != nil {
		return err
	}
	_, err = db.Exec(`
INSERT INTO ingredient_nutrients(ingredient_id, nutrient_id, quantity_per_100g, measure_unit_id, source, updated_at)
VALUES(?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(ingredient_id, nutrient_id) DO UPDATE SET
  quantity_per_100g = excluded.quantity_per_100g,
  measure_unit_id = excluded.measure_unit_id,
  source = excluded.source,
  updated_at = excluded.updated_at
`, ingredientID, nutrient.ID, in.PerHundredGram, unitID, source)
	if err != nil {
		return fmt.Errorf("set %s of %q: %w", nutrient.Name, name, err)
	}
	return nil
}

func ListIngredientNutrients(db *sql.DB, ingredient string) ([]model.IngredientNutrient, error) {
	query := `
SELECT i.name, n.name, f.quantity_per_100g, fact_unit.name, f.source
FROM ingredient_nutrients f
JOIN ingredients i ON i.id = f.ingredient_id
JOIN nutrients n ON n.id = f.nutrient_id
JOIN measure_units fact_unit ON fact_unit.id = f.measure_unit_id`
	args := []any{}
	if name := normalizeName(ingredient); name != "" {
		query += ` WHERE i.name = ?`
		args = append(args, name)
	}
	query += ` ORDER BY i.name, n.name`
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list nutrient facts: %w", err)
	}
	defer rows.Close()
	out := make([]model.IngredientNutrient, 0)
	for rows.Next() {
		var f model.IngredientNutrient
		if err := rows.Scan(&f.Ingredient, &f.Nutrient, &f.PerHundredGram, &f.Unit, &f.Source); err != nil {
			return nil, fmt.Errorf("scan nutrient fact: %w", err)
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate nutrient facts: %w", err)
	}
	return out, nil
}

package service

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/Kipparis/cooking-notebook/internal/model"
)

// ConversionTable resolves ingredient-specific unit conversions.
type ConversionTable interface {
	Lookup(ingredient string, from CanonicalUnit) (model.Conversion, error)
}

// Convert converts qty of ingredient from fromUnit using the ingredient's
// conversion row. A missing row yields ErrNotFound; the caller decides whether
// to keep the original unit or exclude the entry.
func Convert(table ConversionTable, ingredient string, qty float64, fromUnit string) (float64, CanonicalUnit, error) {
	from := NormalizeUnit(fromUnit)
	conv, err := table.Lookup(normalizeName(ingredient), from)
	if err != nil {
		return 0, "", err
	}
	return qty * conv.Multiplier, CanonicalUnit(conv.ToUnit), nil
}

// ToGrams expresses qty of ingredient in grams. Mass units rescale directly;
// anything else needs a conversion row that lands on a mass unit.
func ToGrams(table ConversionTable, ingredient string, qty float64, unit string) (float64, error) {
	u := NormalizeUnit(unit)
	if grams, ok := Rescale(qty, u, UnitGram); ok && IsMassUnit(u) {
		return grams, nil
	}
	converted, to, err := Convert(table, ingredient, qty, unit)
	if err != nil {
		return 0, err
	}
	grams, ok := Rescale(converted, to, UnitGram)
	if !ok || !IsMassUnit(to) {
		return 0, notFound("mass conversion for %s %s", ingredient, unit)
	}
	return grams, nil
}

type ConversionInput struct {
	Ingredient string
	FromUnit   string
	ToUnit     string
	Multiplier float64
}

// SetConversion stores or replaces the conversion for (ingredient, from unit).
func SetConversion(db *sql.DB, in ConversionInput) error {
	name := normalizeName(in.Ingredient)
	from := NormalizeUnit(in.FromUnit)
	to := NormalizeUnit(in.ToUnit)
	if in.Multiplier <= 0 {
		return malformed("conversion multiplier must be > 0")
	}
	if from == "" || to == "" {
		return malformed("conversion units are required")
	}
	if from == to {
		return malformed("conversion from %q to itself", from)
	}
	ingredientID, err := getOrCreateID(db, "ingredients", name)
	if err != nil {
		return err
	}
	fromID, err := getOrCreateID(db, "measure_units", string(from))
	if err != nil {
		return err
	}
	toID, err := getOrCreateID(db, "measure_units", string(to))
	if err != nil {
		return err
	}
	_, err = db.Exec(`
INSERT INTO ingredient_conversions(ingredient_id, from_unit_id, to_unit_id, multiplier)
VALUES(?, ?, ?, ?)
ON CONFLICT(ingredient_id, from_unit_id) DO UPDATE SET to_unit_id = excluded.to_unit_id, multiplier = excluded.multiplier
`, ingredientID, fromID, toID, in.Multiplier)
	if err != nil {
		return fmt.Errorf("set conversion for %q: %w", name, err)
	}
	return nil
}

func ListConversions(db *sql.DB, ingredient string) ([]model.Conversion, error) {
	query := `
SELECT i.name, fu.name, tu.name, c.multiplier
FROM ingredient_conversions c
JOIN ingredients i ON i.id = c.ingredient_id
JOIN measure_units fu ON fu.id = c.from_unit_id
JOIN measure_units tu ON tu.id = c.to_unit_id`
	args := []any{}
	if name := normalizeName(ingredient); name != "" {
		query += ` WHERE i.name = ?`
		args = append(args, name)
	}
	query += ` ORDER BY i.name, fu.name`
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list conversions: %w", err)
	}
	defer rows.Close()
	out := make([]model.Conversion, 0)
	for rows.Next() {
		var c model.Conversion
		if err := rows.Scan(&c.Ingredient, &c.FromUnit, &c.ToUnit, &c.Multiplier); err != nil {
			return nil, fmt.Errorf("scan conversion: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate conversions: %w", err)
	}
	return out, nil
}

func DeleteConversion(db *sql.DB, ingredient, fromUnit string) error {
	name := normalizeName(ingredient)
	from := NormalizeUnit(fromUnit)
	res, err := db.Exec(`
DELETE FROM ingredient_conversions
WHERE ingredient_id = (SELECT id FROM ingredients WHERE name = ?)
  AND from_unit_id = (SELECT id FROM measure_units WHERE name = ?)
`, name, string(from))
	if err != nil {
		return fmt.Errorf("delete conversion for %q: %w", name, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound("conversion %s from %s", name, from)
	}
	return nil
}

// Lookup implements ConversionTable over the ingredient_conversions table.
func (s *Store) Lookup(ingredient string, from CanonicalUnit) (model.Conversion, error) {
	c := model.Conversion{Ingredient: ingredient, FromUnit: string(from)}
	err := s.db.QueryRow(`
SELECT tu.name, c.multiplier
FROM ingredient_conversions c
JOIN ingredients i ON i.id = c.ingredient_id
JOIN measure_units fu ON fu.id = c.from_unit_id
JOIN measure_units tu ON tu.id = c.to_unit_id
WHERE i.name = ? AND fu.name = ?
`, ingredient, string(from)).Scan(&c.ToUnit, &c.Multiplier)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Conversion{}, notFound("conversion %s from %s", ingredient, from)
	}
	if err != nil {
		return model.Conversion{}, fmt.Errorf("lookup conversion %s from %s: %w", ingredient, from, err)
	}
	return c, nil
}

package service

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Kipparis/cooking-notebook/internal/model"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateRecipeInput checks a plain recipe record before anything is stored.
func ValidateRecipeInput(in model.RecipeInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return malformed("recipe name is required")
	}
	if err := validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return malformed("recipe %q: field %s failed %q", in.Name, verrs[0].Namespace(), verrs[0].Tag())
		}
		return malformed("recipe %q: %v", in.Name, err)
	}
	return nil
}

// CreateRecipe stores a recipe with its steps and ingredients. Meal type,
// ingredient and unit rows are created on first use. Repeated ingredient
// lines with the same unit are summed; with different units the recipe is
// rejected, since a recipe holds one quantity per ingredient.
func CreateRecipe(db *sql.DB, in model.RecipeInput) (int64, error) {
	if err := ValidateRecipeInput(in); err != nil {
		return 0, err
	}
	name := strings.TrimSpace(in.Name)
	lines, err := mergeRecipeLines(name, in.Ingredients)
	if err != nil {
		return 0, err
	}

	if _, err := findRecipeID(db, name); err == nil {
		return 0, duplicate("recipe %q", name)
	} else if KindOf(err) != KindNotFound {
		return 0, err
	}

	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin recipe tx: %w", err)
	}
	id, err := insertRecipe(tx, name, in, lines)
	if err != nil {
		_ = tx.Rollback()
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit recipe %q: %w", name, err)
	}
	return id, nil
}

func insertRecipe(tx *sql.Tx, name string, in model.RecipeInput, lines []model.IngredientLine) (int64, error) {
	var mealTypeID sql.NullInt64
	if mt := normalizeName(in.MealType); mt != "" {
		id, err := getOrCreateID(tx, "meal_types", mt)
		if err != nil {
			return 0, err
		}
		mealTypeID = sql.NullInt64{Int64: id, Valid: true}
	}
	res, err := tx.Exec(`INSERT INTO recipes(name, meal_type_id, portions) VALUES(?, ?, ?)`, name, mealTypeID, in.Portions)
	if err != nil {
		return 0, fmt.Errorf("create recipe %q: %w", name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("resolve recipe id: %w", err)
	}
	for i, step := range in.Steps {
		if _, err := tx.Exec(`INSERT INTO recipe_steps(recipe_id, position, text) VALUES(?, ?, ?)`, id, i+1, strings.TrimSpace(step)); err != nil {
			return 0, fmt.Errorf("add step %d to %q: %w", i+1, name, err)
		}
	}
	for i, line := range lines {
		ingredientID, err := getOrCreateID(tx, "ingredients", normalizeName(line.Name))
		if err != nil {
			return 0, err
		}
		unitID, err := getOrCreateID(tx, "measure_units", NormalizeNotation(line.Unit))
		if err != nil {
			return 0, err
		}
		if _, err := tx.Exec(`
INSERT INTO recipe_ingredients(recipe_id, ingredient_id, quantity, measure_unit_id, position)
VALUES(?, ?, ?, ?, ?)`, id, ingredientID, line.Quantity, unitID, i); err != nil {
			return 0, fmt.Errorf("add ingredient %q to %q: %w", line.Name, name, err)
		}
	}
	return id, nil
}

func mergeRecipeLines(recipe string, lines []model.IngredientLine) ([]model.IngredientLine, error) {
	out := make([]model.IngredientLine, 0, len(lines))
	index := map[string]int{}
	for _, l := range lines {
		key := normalizeName(l.Name)
		unit := NormalizeNotation(l.Unit)
		if i, ok := index[key]; ok {
			if NormalizeNotation(out[i].Unit) != unit {
				return nil, malformed("recipe %q lists %q in both %q and %q", recipe, key, out[i].Unit, l.Unit)
			}
			out[i].Quantity += l.Quantity
			continue
		}
		index[key] = len(out)
		out = append(out, model.IngredientLine{Name: key, Quantity: l.Quantity, Unit: unit})
	}
	return out, nil
}

const recipeColumns = `r.id, r.name, IFNULL(mt.name, ''), r.portions, r.created_at, r.updated_at`

func scanRecipe(row interface{ Scan(...any) error }) (model.Recipe, error) {
	var r model.Recipe
	err := row.Scan(&r.ID, &r.Name, &r.MealType, &r.Portions, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}

func ListRecipes(db *sql.DB, mealType string) ([]model.Recipe, error) {
	query := `SELECT ` + recipeColumns + ` FROM recipes r LEFT JOIN meal_types mt ON mt.id = r.meal_type_id`
	args := []any{}
	if mt := normalizeName(mealType); mt != "" {
		query += ` WHERE mt.name = ?`
		args = append(args, mt)
	}
	query += ` ORDER BY r.name`
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	defer rows.Close()

	items := make([]model.Recipe, 0)
	for rows.Next() {
		r, err := scanRecipe(rows)
		if err != nil {
			return nil, fmt.Errorf("scan recipe: %w", err)
		}
		items = append(items, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recipes: %w", err)
	}
	return items, nil
}

// ResolveRecipe finds a recipe by case-insensitive name or, when no recipe
// has that name, by numeric id. A name always wins over an id.
func ResolveRecipe(db *sql.DB, idOrName string) (model.Recipe, error) {
	idOrName = strings.TrimSpace(idOrName)
	if idOrName == "" {
		return model.Recipe{}, malformed("recipe identifier is required")
	}
	id, err := findRecipeID(db, idOrName)
	if errors.Is(err, ErrNotFound) {
		if byID, perr := parseIDLoose(idOrName); perr == nil {
			id, err = byID, nil
		}
	}
	if err != nil {
		return model.Recipe{}, err
	}
	return recipeByID(db, id, idOrName)
}

func recipeByID(db *sql.DB, id int64, label string) (model.Recipe, error) {
	base := `SELECT ` + recipeColumns + ` FROM recipes r LEFT JOIN meal_types mt ON mt.id = r.meal_type_id`
	r, err := scanRecipe(db.QueryRow(base+` WHERE r.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Recipe{}, notFound("recipe %q", label)
	}
	if err != nil {
		return model.Recipe{}, fmt.Errorf("resolve recipe %q: %w", label, err)
	}
	return r, nil
}

// findRecipeID matches a recipe name case-insensitively. SQLite's LOWER only
// folds ASCII, so non-ASCII names are compared in Go.
func findRecipeID(db *sql.DB, name string) (int64, error) {
	var id int64
	err := db.QueryRow(`SELECT id FROM recipes WHERE name = ? OR LOWER(name) = LOWER(?) ORDER BY name = ? DESC LIMIT 1`, name, name, name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("find recipe %q: %w", name, err)
	}
	rows, err := db.Query(`SELECT id, name FROM recipes`)
	if err != nil {
		return 0, fmt.Errorf("find recipe %q: %w", name, err)
	}
	defer rows.Close()
	for rows.Next() {
		var candidate string
		if err := rows.Scan(&id, &candidate); err != nil {
			return 0, fmt.Errorf("scan recipe name: %w", err)
		}
		if strings.EqualFold(candidate, name) {
			return id, nil
		}
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("iterate recipe names: %w", err)
	}
	return 0, notFound("recipe %q", name)
}

func DeleteRecipe(db *sql.DB, idOrName string) error {
	recipe, err := ResolveRecipe(db, idOrName)
	if err != nil {
		return err
	}
	if _, err := db.Exec(`DELETE FROM recipes WHERE id = ?`, recipe.ID); err != nil {
		return fmt.Errorf("delete recipe %q: %w", idOrName, err)
	}
	return nil
}

// LoadRecipe returns the recipe named name with its ordered steps and
// ingredients. Only names are matched: a blank or unknown name, numeric or
// not, yields ErrNotFound.
func (s *Store) LoadRecipe(name string) (model.RecipeDetail, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.RecipeDetail{}, notFound("recipe with a blank name")
	}
	id, err := findRecipeID(s.db, name)
	if err != nil {
		return model.RecipeDetail{}, err
	}
	r, err := recipeByID(s.db, id, name)
	if err != nil {
		return model.RecipeDetail{}, err
	}
	return s.loadDetail(r)
}

// ShowRecipe is LoadRecipe for an id or a name, as accepted by ResolveRecipe.
func (s *Store) ShowRecipe(idOrName string) (model.RecipeDetail, error) {
	r, err := ResolveRecipe(s.db, idOrName)
	if err != nil {
		return model.RecipeDetail{}, err
	}
	return s.loadDetail(r)
}

func (s *Store) loadDetail(r model.Recipe) (model.RecipeDetail, error) {
	detail := model.RecipeDetail{Recipe: r, Steps: []string{}, Ingredients: []model.RecipeIngredientRow{}}

	steps, err := s.db.Query(`SELECT text FROM recipe_steps WHERE recipe_id = ? ORDER BY position`, r.ID)
	if err != nil {
		return model.RecipeDetail{}, fmt.Errorf("load steps of %q: %w", r.Name, err)
	}
	defer steps.Close()
	for steps.Next() {
		var text string
		if err := steps.Scan(&text); err != nil {
			return model.RecipeDetail{}, fmt.Errorf("scan step: %w", err)
		}
		detail.Steps = append(detail.Steps, text)
	}
	if err := steps.Err(); err != nil {
		return model.RecipeDetail{}, fmt.Errorf("iterate steps: %w", err)
	}

	rows, err := s.db.Query(`
SELECT i.id, i.name, ri.quantity, ingredient_unit.name
FROM recipe_ingredients ri
JOIN ingredients i ON i.id = ri.ingredient_id
JOIN measure_units ingredient_unit ON ingredient_unit.id = ri.measure_unit_id
WHERE ri.recipe_id = ?
ORDER BY ri.position, ri.id
`, r.ID)
	if err != nil {
		return model.RecipeDetail{}, fmt.Errorf("load ingredients of %q: %w", r.Name, err)
	}
	defer rows.Close()
	for rows.Next() {
		var it model.RecipeIngredientRow
		if err := rows.Scan(&it.IngredientID, &it.Ingredient, &it.Quantity, &it.Unit); err != nil {
			return model.RecipeDetail{}, fmt.Errorf("scan recipe ingredient: %w", err)
		}
		detail.Ingredients = append(detail.Ingredients, it)
	}
	if err := rows.Err(); err != nil {
		return model.RecipeDetail{}, fmt.Errorf("iterate recipe ingredients: %w", err)
	}
	return detail, nil
}

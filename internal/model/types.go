package model

import "time"

type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
)

type Recipe struct {
	ID        int64
	Name      string
	MealType  string
	Portions  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RecipeIngredientRow is an ingredient as used by one recipe, with the
// recipe's own measure unit.
type RecipeIngredientRow struct {
	IngredientID int64
	Ingredient   string
	Quantity     float64
	Unit         string
}

type RecipeDetail struct {
	Recipe
	Steps       []string
	Ingredients []RecipeIngredientRow
}

type IngredientLine struct {
	Name     string  `validate:"required" yaml:"name" json:"name"`
	Quantity float64 `validate:"gt=0" yaml:"qty" json:"qty"`
	Unit     string  `validate:"required" yaml:"unit" json:"unit"`
}

type RecipeInput struct {
	Name        string           `validate:"required"`
	MealType    string           `validate:"omitempty"`
	Portions    int              `validate:"gte=0"`
	Steps       []string         `validate:"dive,required"`
	Ingredients []IngredientLine `validate:"dive"`
}

type Nutrient struct {
	ID         int64
	Name       string
	FullName   string
	Deficiency string
	Excess     string
}

// NutrientFactRow is one ingredient of a recipe left-joined to a nutrient
// fact. Nutrient is empty when the ingredient has no known facts. Unit is the
// fact's measure unit; RecipeUnit is the recipe ingredient's measure unit.
type NutrientFactRow struct {
	IngredientID   int64
	Ingredient     string
	RecipeQuantity float64
	RecipeUnit     string
	Nutrient       string
	PerHundredGram float64
	Unit           string
}

type IngredientNutrient struct {
	Ingredient     string
	Nutrient       string
	PerHundredGram float64
	Unit           string
	Source         string
}

type Conversion struct {
	Ingredient string
	FromUnit   string
	ToUnit     string
	Multiplier float64
}

// NutrientBound covers the half-open age interval [AgeLower, AgeUpper).
type NutrientBound struct {
	ID             int64
	Nutrient       string
	AgeLower       int
	AgeUpper       int
	Sex            Sex
	AdequateIntake *float64
	UpperLimit     *float64
	Unit           string
}

func (b NutrientBound) Contains(age int) bool {
	return age >= b.AgeLower && age < b.AgeUpper
}

func (b NutrientBound) Overlaps(other NutrientBound) bool {
	return b.AgeLower < other.AgeUpper && other.AgeLower < b.AgeUpper
}

// UserProfile treats sex as a binary classification for bound lookup only.
type UserProfile struct {
	BirthDate time.Time
	Sex       Sex
}

// Age returns the age in whole years on now.
func (p UserProfile) Age(now time.Time) int {
	if p.BirthDate.IsZero() || now.Before(p.BirthDate) {
		return 0
	}
	years := now.Year() - p.BirthDate.Year()
	anniversary := p.BirthDate.AddDate(years, 0, 0)
	if now.Before(anniversary) {
		years--
	}
	return years
}

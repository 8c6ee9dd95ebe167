package recipefile

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v2"

	"github.com/Kipparis/cooking-notebook/internal/model"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// yamlQuantity accepts numbers as well as strings like "1/3" or "1,5".
type yamlQuantity float64

func (q *yamlQuantity) UnmarshalYAML(unmarshal func(any) error) error {
	var f float64
	if err := unmarshal(&f); err == nil {
		*q = yamlQuantity(f)
		return nil
	}
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	v, err := ParseQuantity(s)
	if err != nil {
		return err
	}
	*q = yamlQuantity(v)
	return nil
}

type yamlIngredient struct {
	Name string       `yaml:"name" validate:"required"`
	Qty  yamlQuantity `yaml:"qty" validate:"gt=0"`
	Unit string       `yaml:"unit" validate:"required"`
}

type yamlRecipe struct {
	Name        string           `yaml:"name" validate:"required"`
	Category    string           `yaml:"category"`
	Portions    yamlPortions     `yaml:"portions" validate:"gte=0"`
	Steps       []string         `yaml:"steps" validate:"dive,required"`
	Ingredients []yamlIngredient `yaml:"ingredients" validate:"dive"`
}

// yamlPortions tolerates "4" written as a string.
type yamlPortions int

func (p *yamlPortions) UnmarshalYAML(unmarshal func(any) error) error {
	var n int
	if err := unmarshal(&n); err == nil {
		*p = yamlPortions(n)
		return nil
	}
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("portions %q: %w", s, err)
	}
	*p = yamlPortions(n)
	return nil
}

// ErrMissingName marks a recipe document without a name.
var ErrMissingName = errors.New("recipe has no name")

// ParseYAML reads one recipe document.
func ParseYAML(data []byte) (model.RecipeInput, error) {
	var doc yamlRecipe
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return model.RecipeInput{}, fmt.Errorf("decode recipe yaml: %w", err)
	}
	if strings.TrimSpace(doc.Name) == "" {
		return model.RecipeInput{}, ErrMissingName
	}
	if err := validate.Struct(doc); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return model.RecipeInput{}, fmt.Errorf("recipe %q: field %s failed %q", doc.Name, verrs[0].Namespace(), verrs[0].Tag())
		}
		return model.RecipeInput{}, fmt.Errorf("recipe %q: %w", doc.Name, err)
	}

	in := model.RecipeInput{
		Name:        strings.TrimSpace(doc.Name),
		MealType:    strings.TrimSpace(doc.Category),
		Portions:    int(doc.Portions),
		Steps:       make([]string, 0, len(doc.Steps)),
		Ingredients: make([]model.IngredientLine, 0, len(doc.Ingredients)),
	}
	for _, s := range doc.Steps {
		in.Steps = append(in.Steps, strings.TrimSpace(s))
	}
	for _, ing := range doc.Ingredients {
		in.Ingredients = append(in.Ingredients, model.IngredientLine{
			Name:     strings.TrimSpace(ing.Name),
			Quantity: float64(ing.Qty),
			Unit:     strings.TrimSpace(ing.Unit),
		})
	}
	return in, nil
}

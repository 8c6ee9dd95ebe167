package service

import (
	"errors"
	"fmt"
	"sort"

	"github.com/Kipparis/cooking-notebook/internal/model"
)

// NutrientStore is the read side the nutrient aggregator joins against.
type NutrientStore interface {
	RecipeStore
	// NutrientFacts left-joins every ingredient of the recipe to its
	// per-100 g nutrient facts; ingredients without facts come back once
	// with an empty Nutrient.
	NutrientFacts(recipeID int64) ([]model.NutrientFactRow, error)
	ResolveNutrient(name string) (model.Nutrient, error)
}

type NutrientOptions struct {
	// Nutrients restricts the report to these nutrients, matched
	// case-insensitively. Empty means every nutrient.
	Nutrients []string
	// ScaleByQuantity multiplies per-100 g facts by the recipe quantity in
	// grams. Off by default: totals are plain sums of per-100 g values.
	ScaleByQuantity bool
	// Conversions resolves non-mass recipe quantities when scaling.
	Conversions ConversionTable
}

type NutrientTotal struct {
	Nutrient string  `json:"nutrient"`
	Unit     string  `json:"unit"`
	Quantity float64 `json:"quantity"`
}

type RecipeNutrients struct {
	Recipe  string          `json:"recipe"`
	Totals  []NutrientTotal `json:"totals"`
	Missing []string        `json:"missing"`
}

// MissingFacts is an ingredient with no nutrient data, and the recipes that
// use it.
type MissingFacts struct {
	Ingredient string   `json:"ingredient"`
	Recipes    []string `json:"recipes"`
}

type NutrientReport struct {
	PerRecipe  []RecipeNutrients `json:"per_recipe"`
	Summary    []NutrientTotal   `json:"summary"`
	Missing    []MissingFacts    `json:"missing"`
	Unresolved []string          `json:"unresolved"`
	Problems   []string          `json:"problems"`
	Scaled     bool              `json:"scaled"`
}

type nutrientKey struct {
	nutrient string
	unit     string
}

type totals map[nutrientKey]float64

func (t totals) sorted() []NutrientTotal {
	out := make([]NutrientTotal, 0, len(t))
	for k, v := range t {
		out = append(out, NutrientTotal{Nutrient: k.nutrient, Unit: k.unit, Quantity: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Nutrient != out[j].Nutrient {
			return out[i].Nutrient < out[j].Nutrient
		}
		return out[i].Unit < out[j].Unit
	})
	return out
}

// AggregateNutrients sums nutrient facts over the named recipes. Totals are
// grouped by (nutrient, unit): quantities in different units are never
// added together and show up as separate rows.
func AggregateNutrients(store NutrientStore, names []string, opts NutrientOptions) (NutrientReport, error) {
	report := NutrientReport{
		PerRecipe:  []RecipeNutrients{},
		Missing:    []MissingFacts{},
		Unresolved: []string{},
		Problems:   []string{},
		Scaled:     opts.ScaleByQuantity,
	}
	if opts.ScaleByQuantity && opts.Conversions == nil {
		return NutrientReport{}, fmt.Errorf("scaling nutrient totals needs a conversion table")
	}

	filter, filtered := resolveNutrientFilter(store, opts.Nutrients, &report)

	summary := totals{}
	missingIndex := map[string]int{}
	seen := map[string]bool{}
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true

		recipe, err := store.LoadRecipe(name)
		if err != nil && KindOf(err) != "" {
			report.Unresolved = append(report.Unresolved, name)
			continue
		}
		if err != nil {
			return NutrientReport{}, err
		}
		rows, err := store.NutrientFacts(recipe.ID)
		if err != nil {
			return NutrientReport{}, err
		}

		perRecipe := totals{}
		entry := RecipeNutrients{Recipe: recipe.Name, Missing: []string{}}
		unscalable := map[string]bool{}
		for _, row := range rows {
			if row.Nutrient == "" {
				entry.Missing = append(entry.Missing, row.Ingredient)
				if i, ok := missingIndex[row.Ingredient]; ok {
					report.Missing[i].Recipes = append(report.Missing[i].Recipes, recipe.Name)
				} else {
					missingIndex[row.Ingredient] = len(report.Missing)
					report.Missing = append(report.Missing, MissingFacts{Ingredient: row.Ingredient, Recipes: []string{recipe.Name}})
				}
				continue
			}
			if filtered && !filter[row.Nutrient] {
				continue
			}
			value := row.PerHundredGram
			if opts.ScaleByQuantity {
				if unscalable[row.Ingredient] {
					continue
				}
				grams, err := ToGrams(opts.Conversions, row.Ingredient, row.RecipeQuantity, row.RecipeUnit)
				if err != nil {
					unscalable[row.Ingredient] = true
					report.Problems = append(report.Problems, fmt.Sprintf("%s: cannot express %s %s of %s in grams; excluded", recipe.Name, formatAmount(row.RecipeQuantity), row.RecipeUnit, row.Ingredient))
					continue
				}
				value *= grams / 100
			}
			k := nutrientKey{nutrient: row.Nutrient, unit: row.Unit}
			perRecipe[k] += value
			summary[k] += value
		}
		entry.Totals = perRecipe.sorted()
		report.PerRecipe = append(report.PerRecipe, entry)
	}
	report.Summary = summary.sorted()
	return report, nil
}

func resolveNutrientFilter(store NutrientStore, names []string, report *NutrientReport) (map[string]bool, bool) {
	if len(names) == 0 {
		return nil, false
	}
	filter := map[string]bool{}
	for _, name := range names {
		n, err := store.ResolveNutrient(name)
		switch {
		case err == nil:
			filter[n.Name] = true
		case errors.Is(err, ErrDuplicate), errors.Is(err, ErrNotFound):
			report.Problems = append(report.Problems, err.Error())
		default:
			report.Problems = append(report.Problems, fmt.Sprintf("resolve nutrient %q: %v", name, err))
		}
	}
	return filter, true
}

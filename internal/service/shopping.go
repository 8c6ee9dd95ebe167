package service

import (
	"github.com/Kipparis/cooking-notebook/internal/model"
)

// RecipeStore returns recipes by name. Unknown names yield ErrNotFound.
type RecipeStore interface {
	LoadRecipe(name string) (model.RecipeDetail, error)
}

type ShoppingList struct {
	Items      []Ingredient `json:"items"`
	Unresolved []string     `json:"unresolved"`
}

// AggregateShopping merges the ingredients of the named recipes, in the given
// order, into one shopping list. Items keep the order in which each
// ingredient first appears. Names the store rejects with a taxonomy error
// (unknown, blank) are reported in Unresolved and contribute nothing; storage
// errors are returned.
func AggregateShopping(store RecipeStore, names []string) (ShoppingList, error) {
	list := ShoppingList{Items: []Ingredient{}, Unresolved: []string{}}
	acc := newAccumulator()
	for _, name := range names {
		recipe, err := store.LoadRecipe(name)
		if err != nil && KindOf(err) != "" {
			list.Unresolved = append(list.Unresolved, name)
			continue
		}
		if err != nil {
			return ShoppingList{}, err
		}
		for _, it := range recipe.Ingredients {
			if err := acc.add(NewIngredient(it.Ingredient, it.Quantity, it.Unit)); err != nil {
				return ShoppingList{}, err
			}
		}
	}
	list.Items = acc.items
	return list, nil
}

// MergeIngredients folds more into acc with the same rules as
// AggregateShopping and returns the merged list.
func MergeIngredients(acc []Ingredient, more ...Ingredient) []Ingredient {
	a := newAccumulator()
	for _, it := range append(append([]Ingredient(nil), acc...), more...) {
		// add only fails when Combine sees two names, and the index only
		// pairs entries with the same name.
		_ = a.add(it)
	}
	return a.items
}

// accumulator keeps insertion order while indexing entries by name; name is
// an exact-match key so the index does not change merge semantics.
type accumulator struct {
	items []Ingredient
	index map[string]int
}

func newAccumulator() *accumulator {
	return &accumulator{items: []Ingredient{}, index: map[string]int{}}
}

func (a *accumulator) add(it Ingredient) error {
	i, ok := a.index[it.Name]
	if !ok {
		a.index[it.Name] = len(a.items)
		a.items = append(a.items, Ingredient{Name: it.Name, Pairs: append([]Quantity(nil), it.Pairs...)})
		return nil
	}
	merged, err := Combine(a.items[i], it)
	if err != nil {
		return err
	}
	a.items[i] = merged
	return nil
}

package service

import (
	"fmt"
	"strconv"
	"strings"
)

// Quantity is one (amount, notation) form an ingredient is needed in.
type Quantity struct {
	Amount   float64 `json:"amount"`
	Notation string  `json:"notation"`
}

// Ingredient is a named ingredient with every form it is needed in. The same
// ingredient needed diced and pureed stays as two pairs when their notations
// differ; amounts are only summed for identical canonical notations.
type Ingredient struct {
	Name  string     `json:"name"`
	Pairs []Quantity `json:"quantities"`
}

func NewIngredient(name string, amount float64, notation string) Ingredient {
	return Ingredient{
		Name:  normalizeName(name),
		Pairs: []Quantity{{Amount: amount, Notation: NormalizeNotation(notation)}},
	}
}

// Combine merges two records of the same ingredient. Each pair of a takes the
// first unconsumed pair of b with an exactly equal notation; no unit
// conversion happens here. The result lists matched sums, then a's leftovers,
// then b's leftovers. Neither input is modified.
func Combine(a, b Ingredient) (Ingredient, error) {
	if a.Name != b.Name {
		return Ingredient{}, malformed("combine ingredients %q and %q: names differ", a.Name, b.Name)
	}
	out := Ingredient{Name: a.Name, Pairs: make([]Quantity, 0, len(a.Pairs)+len(b.Pairs))}
	usedB := make([]bool, len(b.Pairs))
	leftA := make([]Quantity, 0, len(a.Pairs))

	for _, pa := range a.Pairs {
		matched := false
		for j, pb := range b.Pairs {
			if usedB[j] || pa.Notation != pb.Notation {
				continue
			}
			usedB[j] = true
			matched = true
			out.Pairs = append(out.Pairs, Quantity{Amount: pa.Amount + pb.Amount, Notation: pa.Notation})
			break
		}
		if !matched {
			leftA = append(leftA, pa)
		}
	}
	out.Pairs = append(out.Pairs, leftA...)
	for j, pb := range b.Pairs {
		if !usedB[j] {
			out.Pairs = append(out.Pairs, pb)
		}
	}
	return out, nil
}

// Total sums every pair of i written in notation.
func (i Ingredient) Total(notation string) float64 {
	notation = NormalizeNotation(notation)
	var sum float64
	for _, p := range i.Pairs {
		if p.Notation == notation {
			sum += p.Amount
		}
	}
	return sum
}

func (i Ingredient) String() string {
	parts := make([]string, 0, len(i.Pairs))
	for _, p := range i.Pairs {
		parts = append(parts, fmt.Sprintf("%s - %s %s", i.Name, formatAmount(p.Amount), p.Notation))
	}
	return strings.Join(parts, ", ")
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

package service_test

import (
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kipparis/cooking-notebook/internal/service"
)

func ingredient(name string, pairs ...service.Quantity) service.Ingredient {
	return service.Ingredient{Name: name, Pairs: pairs}
}

func q(amount float64, notation string) service.Quantity {
	return service.Quantity{Amount: amount, Notation: notation}
}

func TestCombineCarriesUnmatchedPairs(t *testing.T) {
	t.Parallel()

	a := ingredient("cocoa", q(1, "tbsp"), q(10, "g"))
	b := ingredient("cocoa", q(2, "tbsp"))

	got, err := service.Combine(a, b)
	require.NoError(t, err)
	assert.Equal(t, []service.Quantity{q(3, "tbsp"), q(10, "g")}, got.Pairs)
	assert.Equal(t, []service.Quantity{q(1, "tbsp"), q(10, "g")}, a.Pairs, "inputs must not be modified")
}

func TestCombineDisjointNotationsKeepsEveryPair(t *testing.T) {
	t.Parallel()

	a := ingredient("potato", q(2, "pcs"), q(300, "g (diced)"))
	b := ingredient("potato", q(200, "g"))

	got, err := service.Combine(a, b)
	require.NoError(t, err)
	assert.Len(t, got.Pairs, len(a.Pairs)+len(b.Pairs))
	assert.Equal(t, 300.0, got.Total("g (diced)"))
	assert.Equal(t, 200.0, got.Total("g"))
}

func TestCombineTakesOneMatchPerPair(t *testing.T) {
	t.Parallel()

	a := ingredient("egg", q(1, "pcs"), q(2, "pcs"))
	b := ingredient("egg", q(5, "pcs"))

	got, err := service.Combine(a, b)
	require.NoError(t, err)
	assert.Equal(t, []service.Quantity{q(6, "pcs"), q(2, "pcs")}, got.Pairs)
}

func TestCombineRejectsDifferentNames(t *testing.T) {
	t.Parallel()

	_, err := service.Combine(ingredient("salt", q(1, "g")), ingredient("sugar", q(1, "g")))
	require.ErrorIs(t, err, service.ErrMalformed)
}

func TestNewIngredientNormalizesNameAndNotation(t *testing.T) {
	t.Parallel()

	got := service.NewIngredient("  Sour  Cream ", 2, "Ст. л.")
	assert.Equal(t, "sour cream", got.Name)
	assert.Equal(t, []service.Quantity{q(2, "ст л")}, got.Pairs)
}

func TestCombineFoldOrderKeepsPerNotationTotals(t *testing.T) {
	t.Parallel()
	faker := gofakeit.New(42)
	notations := []string{"g", "tbsp", "pcs", "cup"}

	for run := 0; run < 50; run++ {
		records := make([]service.Ingredient, 3+faker.Number(0, 4))
		want := map[string]float64{}
		for i := range records {
			rec := service.Ingredient{Name: "flour"}
			for k := 0; k < 1+faker.Number(0, 2); k++ {
				n := notations[faker.Number(0, len(notations)-1)]
				amt := float64(faker.Number(1, 500))
				rec.Pairs = append(rec.Pairs, q(amt, n))
				want[n] += amt
			}
			records[i] = rec
		}

		left := records[0]
		for _, r := range records[1:] {
			var err error
			left, err = service.Combine(left, r)
			require.NoError(t, err)
		}
		right := records[len(records)-1]
		for i := len(records) - 2; i >= 0; i-- {
			var err error
			right, err = service.Combine(records[i], right)
			require.NoError(t, err)
		}

		for n, total := range want {
			assert.InDelta(t, total, left.Total(n), 1e-9)
			assert.InDelta(t, total, right.Total(n), 1e-9)
		}
	}
}

package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Kipparis/cooking-notebook/internal/service"
)

func TestNormalizeNotationFoldsVariants(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"ст. л.":       "ст л",
		"Ст.Л.":        "стл",
		"тёртый":       "тертый",
		"Tbsp.":        "tbsp",
		"  g  ":        "g",
		"purée":        "puree",
		"ＭＬ":           "ml",
		"fl–oz":        "fl-oz",
		"йогурт":       "йогурт",
		"g (diced)":    "g (diced)",
		"cup, chopped": "cup chopped",
	}
	for in, want := range cases {
		assert.Equalf(t, want, service.NormalizeNotation(in), "normalize %q", in)
	}
}

func TestNormalizeNotationIsIdempotent(t *testing.T) {
	t.Parallel()
	for _, in := range []string{"Ст. л.", "ЧАЙН. ЛОЖКА", "Mg", "cup (packed)"} {
		once := service.NormalizeNotation(in)
		assert.Equal(t, once, service.NormalizeNotation(once))
	}
}

package recipefile

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/Kipparis/cooking-notebook/internal/model"
)

// A flat recipe file has three blank-line separated sections:
//
//	Продукты
//	картофель - 500 г
//	молоко - 1/2 стакан
//
//	Рецепт:
//	1. Сварить картофель.
//	2. Размять с молоком.
//
//	Порции: 4
//	Категория: гарнир
//
// Headers are optional and English labels (Ingredients, Recipe:, Portions:,
// Category:) work too. The recipe is named after the file.

var (
	ingredientHeaders = []string{"продукты", "ингредиенты", "ingredients"}
	stepHeaders       = []string{"рецепт:", "recipe:", "steps:", "instructions:"}
	portionLabels     = []string{"порции:", "portions:", "servings:"}
	categoryLabels    = []string{"категория:", "category:"}

	stepNumber = regexp.MustCompile(`^\d+[.)]\s*`)
)

const (
	sectionIngredients = iota
	sectionSteps
	sectionMeta
)

// ParseFlat reads a flat recipe. Lines that cannot be read are skipped and
// reported as warnings; only I/O failures are errors.
func ParseFlat(r io.Reader, name string) (model.RecipeInput, []string, error) {
	in := model.RecipeInput{Name: strings.TrimSpace(name), Steps: []string{}, Ingredients: []model.IngredientLine{}}
	warnings := make([]string, 0)
	section := sectionIngredients
	sawContent := false

	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(strings.TrimPrefix(sc.Text(), "\ufeff"))
		if line == "" {
			if sawContent && section < sectionMeta {
				section++
				sawContent = false
			}
			continue
		}
		sawContent = true

		switch section {
		case sectionIngredients:
			if hasLabel(line, ingredientHeaders) {
				continue
			}
			ing, err := parseIngredientLine(line)
			if err != nil {
				warnings = append(warnings, fmt.Sprintf("%s line %d: %v; ingredient skipped", name, lineNo, err))
				continue
			}
			in.Ingredients = append(in.Ingredients, ing)
		case sectionSteps:
			if hasLabel(line, stepHeaders) {
				continue
			}
			if step := strings.TrimSpace(stepNumber.ReplaceAllString(line, "")); step != "" {
				in.Steps = append(in.Steps, step)
			}
		case sectionMeta:
			switch {
			case hasLabel(line, portionLabels):
				v := labelValue(line)
				n, err := strconv.Atoi(v)
				if err != nil || n < 0 {
					warnings = append(warnings, fmt.Sprintf("%s line %d: portions %q ignored", name, lineNo, v))
					continue
				}
				in.Portions = n
			case hasLabel(line, categoryLabels):
				in.MealType = labelValue(line)
			}
		}
	}
	if err := sc.Err(); err != nil {
		return model.RecipeInput{}, warnings, fmt.Errorf("read recipe %s: %w", name, err)
	}
	return in, warnings, nil
}

// parseIngredientLine reads "name - quantity unit".
func parseIngredientLine(line string) (model.IngredientLine, error) {
	i := strings.Index(line, " - ")
	if i < 0 {
		return model.IngredientLine{}, fmt.Errorf("expected \"name - quantity unit\" in %q", line)
	}
	name := strings.TrimSpace(line[:i])
	rest := strings.TrimSpace(line[strings.LastIndex(line, " - ")+3:])
	if name == "" {
		return model.IngredientLine{}, fmt.Errorf("missing ingredient name in %q", line)
	}

	fields := strings.Fields(rest)
	n := 0
	var qty float64
	for n < len(fields) {
		v, err := ParseQuantity(strings.Join(fields[:n+1], " "))
		if err != nil {
			break
		}
		qty = v
		n++
	}
	if n == 0 {
		return model.IngredientLine{}, fmt.Errorf("unreadable quantity in %q", line)
	}
	unit := strings.Join(fields[n:], " ")
	if unit == "" {
		return model.IngredientLine{}, fmt.Errorf("missing unit in %q", line)
	}
	return model.IngredientLine{Name: name, Quantity: qty, Unit: unit}, nil
}

func hasLabel(line string, labels []string) bool {
	lower := strings.ToLower(line)
	for _, l := range labels {
		if lower == l || strings.HasPrefix(lower, l) {
			return true
		}
	}
	return false
}

func labelValue(line string) string {
	_, v, _ := strings.Cut(line, ":")
	return strings.TrimSpace(v)
}

package service

import (
	"strings"
)

// International units measure biological activity, so the mass equivalent
// depends on the nutrient form. Rules are checked in order; the first whose
// key prefix matches wins, so specific forms precede generic ones.
var iuRules = []struct {
	prefixes []string
	factor   float64
	unit     CanonicalUnit
}{
	{prefixes: []string{"beta-carotene", "beta carotene", "carotene beta"}, factor: 0.6, unit: UnitMicrogram},
	{prefixes: []string{"vitamin a"}, factor: 0.3, unit: UnitMicrogram},
	{prefixes: []string{"vitamin d"}, factor: 0.025, unit: UnitMicrogram},
	{prefixes: []string{"vitamin e synthetic", "dl-alpha-tocopherol", "dl-alpha tocopherol"}, factor: 0.45, unit: UnitMilligram},
	{prefixes: []string{"vitamin e", "alpha-tocopherol", "d-alpha-tocopherol"}, factor: 0.67, unit: UnitMilligram},
}

// preferredUnits is the base unit each nutrient's facts are stored in,
// checked in order with longer prefixes first. Nutrients not listed keep
// their source base unit.
var preferredUnits = []struct {
	prefix string
	unit   CanonicalUnit
}{
	{"carbohydrate", UnitGram},
	{"vitamin b-12", UnitMicrogram},
	{"total lipid", UnitGram},
	{"vitamin b-6", UnitMilligram},
	{"cholesterol", UnitMilligram},
	{"phosphorus", UnitMilligram},
	{"potassium", UnitMilligram},
	{"magnesium", UnitMilligram},
	{"manganese", UnitMilligram},
	{"vitamin c", UnitMilligram},
	{"vitamin e", UnitMilligram},
	{"vitamin a", UnitMicrogram},
	{"vitamin d", UnitMicrogram},
	{"vitamin k", UnitMicrogram},
	{"selenium", UnitMicrogram},
	{"protein", UnitGram},
	{"calcium", UnitMilligram},
	{"sugars", UnitGram},
	{"sodium", UnitMilligram},
	{"copper", UnitMilligram},
	{"folate", UnitMicrogram},
	{"iodine", UnitMicrogram},
	{"fiber", UnitGram},
	{"water", UnitGram},
	{"iron", UnitMilligram},
	{"zinc", UnitMilligram},
	{"fat", UnitGram},
}

// NutrientKey canonicalises a nutrient name for rule dispatch and
// case-insensitive lookup.
func NutrientKey(name string) string {
	return NormalizeNotation(stripQualifiers(name))
}

// ConvertNutrientValue harmonises an external nutrient value, dispatching on
// both the source unit and the nutrient identity. Values with no applicable
// rule are rejected with ErrNotFound rather than stored in a foreign unit.
func ConvertNutrientValue(nutrient string, value float64, unit string) (float64, CanonicalUnit, error) {
	if value < 0 {
		return 0, "", malformed("nutrient %q value must be >= 0", nutrient)
	}
	key := NutrientKey(nutrient)
	u := NormalizeUnit(unit)

	switch {
	case u == UnitIU:
		for _, rule := range iuRules {
			if hasAnyPrefix(key, rule.prefixes) {
				return value * rule.factor, rule.unit, nil
			}
		}
		return 0, "", notFound("IU conversion for nutrient %q", nutrient)
	case IsMassUnit(u):
		target := preferredUnit(key, u)
		converted, _ := Rescale(value, u, target)
		return converted, target, nil
	default:
		if def, ok := unitTable[u]; ok && def.kind == unitKindEnergy {
			converted, _ := Rescale(value, u, UnitKilocalory)
			return converted, UnitKilocalory, nil
		}
	}
	return 0, "", notFound("unit %q for nutrient %q", unit, nutrient)
}

func preferredUnit(key string, source CanonicalUnit) CanonicalUnit {
	for _, p := range preferredUnits {
		if strings.HasPrefix(key, p.prefix) {
			return p.unit
		}
	}
	if IsBaseUnit(source) {
		return source
	}
	return UnitGram
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

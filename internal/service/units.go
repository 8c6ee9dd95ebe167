package service

// CanonicalUnit is a unit notation after NormalizeUnit.
type CanonicalUnit string

type unitKind string

const (
	unitKindMass   unitKind = "mass"
	unitKindVolume unitKind = "volume"
	unitKindEnergy unitKind = "energy"
)

const (
	UnitGram       CanonicalUnit = "g"
	UnitMilligram  CanonicalUnit = "mg"
	UnitMicrogram  CanonicalUnit = "mcg"
	UnitKilocalory CanonicalUnit = "kcal"
	UnitIU         CanonicalUnit = "iu"
)

// BaseUnits are the preferred conversion targets for nutrient summation.
var BaseUnits = []CanonicalUnit{UnitGram, UnitMilligram, UnitMicrogram}

type unitDef struct {
	kind       unitKind
	toBaseUnit float64
}

var unitTable = map[CanonicalUnit]unitDef{
	// mass (base = g)
	"mcg": {kind: unitKindMass, toBaseUnit: 0.000001},
	"mg":  {kind: unitKindMass, toBaseUnit: 0.001},
	"g":   {kind: unitKindMass, toBaseUnit: 1},
	"kg":  {kind: unitKindMass, toBaseUnit: 1000},
	"oz":  {kind: unitKindMass, toBaseUnit: 28.349523125},
	"lb":  {kind: unitKindMass, toBaseUnit: 453.59237},

	// volume (base = ml)
	"ml":    {kind: unitKindVolume, toBaseUnit: 1},
	"l":     {kind: unitKindVolume, toBaseUnit: 1000},
	"tsp":   {kind: unitKindVolume, toBaseUnit: 4.92892159375},
	"tbsp":  {kind: unitKindVolume, toBaseUnit: 14.78676478125},
	"cup":   {kind: unitKindVolume, toBaseUnit: 236.5882365},
	"fl-oz": {kind: unitKindVolume, toBaseUnit: 29.5735295625},

	// energy (base = kcal)
	"kcal": {kind: unitKindEnergy, toBaseUnit: 1},
	"kj":   {kind: unitKindEnergy, toBaseUnit: 1 / 4.184},
}

var unitAliases = map[string]CanonicalUnit{
	"gram": "g", "grams": "g", "gr": "g", "г": "g", "гр": "g", "грамм": "g", "грамма": "g", "граммов": "g",
	"milligram": "mg", "milligrams": "mg", "мг": "mg",
	"microgram": "mcg", "micrograms": "mcg", "ug": "mcg", "μg": "mcg", "мкг": "mcg",
	"kilogram": "kg", "kilograms": "kg", "кг": "kg",
	"ounce": "oz", "ounces": "oz",
	"lbs": "lb", "pound": "lb", "pounds": "lb",
	"milliliter": "ml", "milliliters": "ml", "millilitre": "ml", "мл": "ml",
	"liter": "l", "liters": "l", "litre": "l", "л": "l",
	"teaspoon": "tsp", "teaspoons": "tsp", "ч л": "tsp", "чл": "tsp", "чайная ложка": "tsp",
	"tablespoon": "tbsp", "tablespoons": "tbsp", "tbs": "tbsp", "ст л": "tbsp", "стл": "tbsp", "столовая ложка": "tbsp",
	"cups": "cup", "стакан": "cup",
	"fl oz": "fl-oz", "floz": "fl-oz",
	"cal": "kcal", "kilocalorie": "kcal", "kilocalories": "kcal", "ккал": "kcal",
	"kilojoule": "kj", "kilojoules": "kj", "кдж": "kj",
	"international units": "iu", "international unit": "iu", "ме": "iu",
	"pc": "pcs", "piece": "pcs", "pieces": "pcs", "шт": "pcs",
}

// NormalizeUnit canonicalises a unit notation and resolves known aliases.
// Unlike Combine's notation match, parenthetical qualifiers are dropped.
func NormalizeUnit(raw string) CanonicalUnit {
	n := NormalizeNotation(stripQualifiers(raw))
	if alias, ok := unitAliases[n]; ok {
		return alias
	}
	return CanonicalUnit(n)
}

// IsBaseUnit reports whether u is one of the preferred base mass units.
func IsBaseUnit(u CanonicalUnit) bool {
	for _, b := range BaseUnits {
		if u == b {
			return true
		}
	}
	return false
}

func IsMassUnit(u CanonicalUnit) bool {
	def, ok := unitTable[u]
	return ok && def.kind == unitKindMass
}

// Rescale converts value between two units of the same dimension. It reports
// false when either unit is unknown or the dimensions differ.
func Rescale(value float64, from, to CanonicalUnit) (float64, bool) {
	if from == to {
		return value, true
	}
	f, ok := unitTable[from]
	if !ok {
		return 0, false
	}
	t, ok := unitTable[to]
	if !ok || f.kind != t.kind {
		return 0, false
	}
	return value * f.toBaseUnit / t.toBaseUnit, true
}

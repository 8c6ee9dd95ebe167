package recipefile

import (
	"fmt"
	"strconv"
	"strings"
)

var vulgarFractions = map[rune]float64{
	'½': 0.5, '⅓': 1.0 / 3, '⅔': 2.0 / 3, '¼': 0.25, '¾': 0.75, '⅛': 0.125,
}

// ParseQuantity reads a recipe amount: "2", "1.5", "1,5", "1/3", "1 1/2"
// or a vulgar fraction such as "½". The result must be positive.
func ParseQuantity(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, fmt.Errorf("empty quantity")
	}
	var total float64
	for _, part := range strings.Fields(s) {
		v, err := parseQuantityPart(part)
		if err != nil {
			return 0, fmt.Errorf("quantity %q: %w", raw, err)
		}
		total += v
	}
	if total <= 0 {
		return 0, fmt.Errorf("quantity %q must be > 0", raw)
	}
	return total, nil
}

func parseQuantityPart(part string) (float64, error) {
	if r := []rune(part); len(r) == 1 {
		if v, ok := vulgarFractions[r[0]]; ok {
			return v, nil
		}
	}
	if num, den, ok := strings.Cut(part, "/"); ok {
		n, err := strconv.ParseFloat(strings.ReplaceAll(num, ",", "."), 64)
		if err != nil {
			return 0, err
		}
		d, err := strconv.ParseFloat(strings.ReplaceAll(den, ",", "."), 64)
		if err != nil {
			return 0, err
		}
		if d == 0 {
			return 0, fmt.Errorf("zero denominator")
		}
		return n / d, nil
	}
	return strconv.ParseFloat(strings.ReplaceAll(part, ",", "."), 64)
}

package service

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// Punctuation dropped from notations. Parentheses, hyphens and slashes carry
// meaning ("fl-oz", "g/ml", "(diced)") and are kept.
const droppedPunctuation = ".,;:!?\"'`\u00ab\u00bb\u201e\u201c\u201d\u2018\u2019"

var typographic = strings.NewReplacer(
	"\u2010", "-", "\u2011", "-", "\u2012", "-", "\u2013", "-", "\u2014", "-", "\u2212", "-",
	"\u00a0", " ", "\u2009", " ", "\u202f", " ",
	"\u00b5", "\u03bc",
)

// isFoldableMark reports combining marks that only mark an orthographic
// variant (ё vs е, é vs e). The breve is kept: й and ў are distinct letters.
func isFoldableMark(r rune) bool {
	return unicode.Is(unicode.Mn, r) && r != '\u0306'
}

func newNotationFolder() transform.Transformer {
	return transform.Chain(
		width.Fold,
		norm.NFD,
		runes.Remove(runes.Predicate(isFoldableMark)),
		runes.Remove(runes.Predicate(func(r rune) bool { return strings.ContainsRune(droppedPunctuation, r) })),
		norm.NFC,
		cases.Fold(),
	)
}

// NormalizeNotation canonicalises a free-text unit notation for exact
// comparison: punctuation stripped, orthographic variants folded, case
// folded, whitespace collapsed. Parenthetical qualifiers are left in place.
func NormalizeNotation(raw string) string {
	s := typographic.Replace(raw)
	folded, _, err := transform.String(newNotationFolder(), s)
	if err != nil {
		folded = strings.ToLower(s)
	}
	return strings.Join(strings.Fields(folded), " ")
}

// stripQualifiers removes parenthetical annotations such as "(diced)".
func stripQualifiers(s string) string {
	var b strings.Builder
	depth := 0
	for _, r := range s {
		switch {
		case r == '(':
			depth++
		case r == ')' && depth > 0:
			depth--
		case depth == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}

package matcher

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// minTokenRunes drops short words such as prepositions from token sets.
const minTokenRunes = 4

// maxNormalizePasses bounds the fixpoint loop in Normalize.
const maxNormalizePasses = 8

var yoReplacer = strings.NewReplacer("ё", "е")

// Normalize folds a name into its comparison form: compatibility-composed,
// case-folded, with ё read as е, punctuation and symbols turned into spaces
// and whitespace collapsed. Folding can expose text that composes or folds
// again, so passes repeat until the form is stable and
// Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	s = normalizePass(s)
	for i := 0; i < maxNormalizePasses-1; i++ {
		next := normalizePass(s)
		if next == s {
			break
		}
		s = next
	}
	return s
}

func normalizePass(s string) string {
	s = norm.NFKC.String(s)
	s = cases.Fold().String(s)
	s = norm.NFKC.String(s)
	s = yoReplacer.Replace(s)
	s = strings.Map(func(r rune) rune {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			return ' '
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

// Tokens returns the distinct significant words of a name.
func Tokens(s string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, w := range strings.Fields(Normalize(s)) {
		if utf8.RuneCountInString(w) >= minTokenRunes {
			out[w] = struct{}{}
		}
	}
	return out
}

// TokenOverlap reports whether the shared tokens make up at least 70% of the
// smaller set. Integer arithmetic keeps the boundary exact.
func TokenOverlap(a, b map[string]struct{}) bool {
	smaller := min(len(a), len(b))
	if smaller == 0 {
		return false
	}
	common := 0
	for t := range a {
		if _, ok := b[t]; ok {
			common++
		}
	}
	return common*10 >= smaller*7
}

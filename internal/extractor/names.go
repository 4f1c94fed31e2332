package extractor

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// titleSelectors are tried strictly in order before any full-text fallback.
var titleSelectors = []string{"h1", ".entry-title", ".post-title", ".article-title", "title"}

var scientificPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\(([A-Z][a-z]+(?:\s+[a-z]+)+)\)`),
	regexp.MustCompile(`(?i:scientific name|латинское название|научное название)[:\s]+([A-Z][a-z]+(?:\s+[a-z]+)+)`),
}

// ExtractNames returns the native name from the first non-empty heading and
// the scientific name when one can be found in that heading or, failing
// that, anywhere in the document.
func ExtractNames(doc *goquery.Document) (string, string) {
	native := ""
	for _, selector := range titleSelectors {
		text := cleanText(doc.Find(selector).First().Text())
		if text != "" {
			native = text
			break
		}
	}

	scientific, _ := firstOf([]strategy[string]{
		func() (string, bool) { return ScientificName(native) },
		func() (string, bool) { return ScientificName(NodeText(doc.Selection)) },
	})

	return native, scientific
}

// ScientificName finds a Latin binomial in text.
func ScientificName(text string) (string, bool) {
	if text == "" {
		return "", false
	}
	for _, re := range scientificPatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return strings.Join(strings.Fields(m[1]), " "), true
		}
	}
	return "", false
}

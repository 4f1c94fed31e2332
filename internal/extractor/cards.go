package extractor

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"AquaScanner/internal/domain"
)

var cardSelectors = []string{".post-box", ".article-item", ".post-card", ".fish-card", ".item", "article", ".entry"}

var cardTitleSelector = "h2, h3, h4, .title, .entry-title, .post-title, a"

// cardSkipKeywords drop teasers for plants, equipment and index pages.
var cardSkipKeywords = []string{"растени", "оборудован", "список всех", "каталог"}

// ExtractCards returns the title and thumbnail of every fish teaser on a
// listing page. Cards without an acceptable image are skipped.
func (e *Extractor) ExtractCards(doc *goquery.Document) []domain.Card {
	var cards []domain.Card
	for _, sel := range e.cardNodes(doc) {
		title := cleanText(sel.Find(cardTitleSelector).First().Text())
		if title == "" || containsFold(title, cardSkipKeywords) {
			continue
		}

		var image string
		img := sel.Find("img").First()
		if img.Length() > 0 {
			if src, ok := e.acceptedSource(img, e.opts.ChromePatterns); ok {
				if width, declared := declaredSize(img, "width", "data-width"); !declared || width > e.opts.CardImageMinWidth {
					image = src
				}
			}
		}
		if image == "" {
			continue
		}

		cards = append(cards, domain.Card{Title: title, ImageURL: image})
	}
	return cards
}

func (e *Extractor) cardNodes(doc *goquery.Document) []*goquery.Selection {
	var out []*goquery.Selection
	for _, selector := range cardSelectors {
		found := doc.Find(selector)
		if found.Length() == 0 {
			continue
		}
		found.Each(func(_ int, s *goquery.Selection) { out = append(out, s) })
		return out
	}

	if e.opts.ArticlePath == "" {
		return nil
	}

	seen := make(map[*html.Node]struct{})
	doc.Find(`a[href*="` + e.opts.ArticlePath + `"]`).Each(func(_ int, link *goquery.Selection) {
		parent := link.Closest("article, div, li")
		if parent.Length() == 0 {
			return
		}
		node := parent.Get(0)
		if _, dup := seen[node]; dup {
			return
		}
		seen[node] = struct{}{}
		out = append(out, parent)
	})
	return out
}

func containsFold(s string, needles []string) bool {
	lower := strings.ToLower(s)
	for _, n := range needles {
		if strings.Contains(lower, n) {
			return true
		}
	}
	return false
}

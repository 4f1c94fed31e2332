package extractor

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Width thresholds for article illustrations and listing-card thumbnails.
const (
	ArticleImageMinWidth = 200
	CardImageMinWidth    = 150
)

// imageContainers hold the article illustration, most specific first.
var imageContainers = []string{
	".entry-content",
	".post-content",
	".article-content",
	".content",
	"article",
	".post-body",
	".single-post",
	"main article",
	".article-body",
}

// imageSourceAttrs covers plain and lazy-loaded images.
var imageSourceAttrs = []string{"src", "data-src", "data-lazy-src", "data-original", "data-url"}

// DefaultPlaceholderPatterns mark site banners that stand in for a real photo.
var DefaultPlaceholderPatterns = []string{"sovmestimost", "баннер", "navigator", "реклам"}

// DefaultChromePatterns mark layout images that are never illustrations.
var DefaultChromePatterns = []string{
	"logo", "icon", "avatar", "banner", "thumb", "social",
	"share", "comment", "widget", "button", "arrow", "emoji",
}

// fallbackChromePatterns is the narrower denylist of the last tier, which
// still takes thumbnails and other images the full list rejects.
var fallbackChromePatterns = []string{"icon", "logo", "avatar", "banner"}

// ExtractImage returns the best illustration of the article. The tiers run
// in order and every tier drops placeholders. The first two also drop
// everything on the chrome denylist; the last one only drops icons, logos,
// avatars and banners.
func (e *Extractor) ExtractImage(doc *goquery.Document, minWidth int) (string, bool) {
	return firstOf([]strategy[string]{
		func() (string, bool) { return e.imageFromContainers(doc, minWidth) },
		func() (string, bool) { return e.largestImage(doc) },
		func() (string, bool) { return e.firstImage(doc) },
	})
}

func (e *Extractor) imageFromContainers(doc *goquery.Document, minWidth int) (string, bool) {
	for _, selector := range imageContainers {
		container := doc.Find(selector).First()
		if container.Length() == 0 {
			continue
		}

		var found string
		container.Find("img").EachWithBreak(func(_ int, img *goquery.Selection) bool {
			src, ok := e.acceptedSource(img, e.opts.ChromePatterns)
			if !ok {
				return true
			}
			if width, declared := declaredSize(img, "width", "data-width"); declared && width <= minWidth {
				return true
			}
			found = src
			return false
		})
		if found != "" {
			return found, true
		}
	}
	return "", false
}

func (e *Extractor) largestImage(doc *goquery.Document) (string, bool) {
	best, bestArea := "", 0
	doc.Find("img").Each(func(_ int, img *goquery.Selection) {
		src, ok := e.acceptedSource(img, e.opts.ChromePatterns)
		if !ok {
			return
		}
		area := 1
		width, wOK := declaredSize(img, "width", "data-width")
		height, hOK := declaredSize(img, "height", "data-height")
		if wOK && hOK && width > 0 && height > 0 {
			area = width * height
		}
		if area > bestArea {
			best, bestArea = src, area
		}
	})
	return best, best != ""
}

func (e *Extractor) firstImage(doc *goquery.Document) (string, bool) {
	var found string
	doc.Find("img").EachWithBreak(func(_ int, img *goquery.Selection) bool {
		if src, ok := e.acceptedSource(img, fallbackChromePatterns); ok {
			found = src
			return false
		}
		return true
	})
	return found, found != ""
}

// acceptedSource resolves the image source against the site base and drops
// placeholders and anything matching chrome.
func (e *Extractor) acceptedSource(img *goquery.Selection, chrome []string) (string, bool) {
	raw := imageSource(img)
	if raw == "" || strings.HasPrefix(raw, "data:") {
		return "", false
	}
	resolved, ok := e.resolve(raw)
	if !ok {
		return "", false
	}
	for _, u := range []string{raw, resolved} {
		if matchesAny(u, e.opts.PlaceholderPatterns) || matchesAny(u, chrome) {
			return "", false
		}
	}
	return resolved, true
}

// matchesAny checks u both as given and percent-decoded, since resolved
// URLs escape non-ASCII path segments.
func matchesAny(u string, patterns []string) bool {
	forms := []string{strings.ToLower(u)}
	if decoded, err := url.PathUnescape(u); err == nil && decoded != u {
		forms = append(forms, strings.ToLower(decoded))
	}
	for _, p := range patterns {
		if p == "" {
			continue
		}
		p = strings.ToLower(p)
		for _, f := range forms {
			if strings.Contains(f, p) {
				return true
			}
		}
	}
	return false
}

func (e *Extractor) resolve(raw string) (string, bool) {
	ref, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	if e.base == nil {
		return ref.String(), true
	}
	return e.base.ResolveReference(ref).String(), true
}

func imageSource(img *goquery.Selection) string {
	for _, attr := range imageSourceAttrs {
		if v := strings.TrimSpace(img.AttrOr(attr, "")); v != "" {
			return v
		}
	}
	return ""
}

// declaredSize reads the first non-empty attribute as a pixel count. A missing
// or unparseable value reports false, meaning the size is undeclared.
func declaredSize(img *goquery.Selection, attrs ...string) (int, bool) {
	for _, attr := range attrs {
		v := strings.TrimSpace(img.AttrOr(attr, ""))
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSuffix(strings.ToLower(v), "px"))
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

package extractor

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"AquaScanner/internal/domain"
)

const (
	descriptionParagraphs   = 5
	descriptionMinParagraph = 30
	DescriptionLimit        = 1000
)

// ExtractDescription joins the first substantial paragraphs of the article.
// Pages without such paragraphs fall back to the head of text.
func ExtractDescription(doc *goquery.Document, text string, limit int) string {
	var parts []string
	paragraphs := doc.Find("p")
	paragraphs.Slice(0, min(descriptionParagraphs, paragraphs.Length())).Each(func(_ int, p *goquery.Selection) {
		t := cleanText(p.Text())
		if utf8.RuneCountInString(t) > descriptionMinParagraph {
			parts = append(parts, t)
		}
	})

	if len(parts) > 0 {
		return truncateRunes(strings.Join(parts, " "), limit)
	}
	return strings.TrimSpace(truncateRunes(cleanText(text), limit))
}

var familyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)семейств[оа][:\s]+([А-Яа-яЁё\s]+)`),
	regexp.MustCompile(`(?i)отряд[:\s]+([А-Яа-яЁё\s]+)`),
}

// ExtractFamily returns the family or order named by a label in text.
func ExtractFamily(text string) string {
	for _, re := range familyPatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		family := m[1]
		if i := strings.IndexByte(family, '\n'); i >= 0 {
			family = family[:i]
		}
		if family = strings.TrimSpace(family); family != "" {
			return family
		}
	}
	return ""
}

var temperamentTitles = map[domain.Temperament]string{
	domain.TemperamentPeaceful:       "мирная",
	domain.TemperamentSemiAggressive: "полуагрессивная",
	domain.TemperamentAggressive:     "агрессивная",
}

// Features summarizes the populated fields of f for display.
func Features(f domain.Fish) []string {
	features := []string{}
	wp := f.WaterParams
	if wp.TempMin != nil || wp.TempMax != nil {
		features = append(features, "Температура: "+formatRange(wp.TempMin, wp.TempMax)+"°C")
	}
	if wp.PHMin != nil || wp.PHMax != nil {
		features = append(features, "pH: "+formatRange(wp.PHMin, wp.PHMax))
	}
	if f.SizeCm != nil {
		features = append(features, "Размер: до "+formatFloat(*f.SizeCm)+" см")
	}
	if f.MinTankLiters != nil {
		features = append(features, "Минимальный объем: "+strconv.Itoa(*f.MinTankLiters)+" л")
	}
	if title, ok := temperamentTitles[f.Temperament]; ok {
		features = append(features, "Темперамент: "+title)
	}
	if f.MinGroupSize > 1 {
		features = append(features, "Стайная: от "+strconv.Itoa(f.MinGroupSize)+" особей")
	}
	return features
}

func formatRange(lo, hi *float64) string {
	return formatOpt(lo) + "-" + formatOpt(hi)
}

func formatOpt(v *float64) string {
	if v == nil {
		return "?"
	}
	return formatFloat(*v)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

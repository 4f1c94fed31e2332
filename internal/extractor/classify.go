package extractor

import (
	"regexp"
	"strconv"
	"strings"

	"AquaScanner/internal/domain"
)

// Rule maps any of its keywords to a label. Tables are checked in order and
// the first rule with a keyword present in the text wins.
type Rule[L any] struct {
	Keywords []string
	Label    L
}

// Classify returns the label of the first matching rule, or def.
func Classify[L any](text string, rules []Rule[L], def L) L {
	lower := strings.ToLower(text)
	for _, rule := range rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(lower, kw) {
				return rule.Label
			}
		}
	}
	return def
}

// TemperamentRules checks semi-aggressive markers before aggressive ones since
// "полуагрессивн" contains "агрессивн".
var TemperamentRules = []Rule[domain.Temperament]{
	{Keywords: []string{"мирн", "спокойн", "peaceful", "дружелюбн"}, Label: domain.TemperamentPeaceful},
	{Keywords: []string{"полуагрессивн", "территориальн", "semi-aggressive"}, Label: domain.TemperamentSemiAggressive},
	{Keywords: []string{"агрессивн", "хищн", "aggressive", "predator"}, Label: domain.TemperamentAggressive},
}

var DifficultyRules = []Rule[int]{
	{Keywords: []string{"легк", "простой", "неприхотлив", "начинающ", "easy", "beginner"}, Label: 1},
	{Keywords: []string{"сложн", "трудн", "требовательн", "advanced", "expert"}, Label: 3},
}

var HabitatRules = []Rule[domain.Habitat]{
	{Keywords: []string{"морск", "marine", "saltwater", "reef"}, Label: domain.HabitatMarine},
}

func ClassifyTemperament(text string) domain.Temperament {
	return Classify(text, TemperamentRules, domain.DefaultTemperament)
}

func ClassifyDifficulty(text string) int {
	return Classify(text, DifficultyRules, domain.DefaultDifficulty)
}

// ClassifyHabitat also looks at the article URL, where the site files marine
// species under their own section.
func ClassifyHabitat(text, articleURL string) domain.Habitat {
	return Classify(text+" "+articleURL, HabitatRules, domain.DefaultHabitat)
}

// schoolingGroupSize is assumed for schooling species without an explicit count.
const schoolingGroupSize = 6

var groupPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)стайн[ая]+[й\s]+(\d+)`),
	regexp.MustCompile(`(?i)групп[аы][:\s]+от\s+(\d+)`),
	regexp.MustCompile(`(?i)минимум[:\s]+(\d+)\s+особ`),
	regexp.MustCompile(`(?i)содержать[:\s]+от\s+(\d+)`),
}

var schoolingKeywords = []string{"стайн", "групп", "school"}

// ExtractGroupSize returns the minimum number of fish to keep together.
func ExtractGroupSize(text string) int {
	for _, re := range groupPatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			return n
		}
	}
	if containsFold(text, schoolingKeywords) {
		return schoolingGroupSize
	}
	return domain.DefaultMinGroupSize
}

package matcher

import (
	"strings"

	"github.com/antzucaro/matchr"

	"AquaScanner/internal/domain"
)

// Tier names the rule that produced a match.
type Tier string

const (
	TierNone       Tier = ""
	TierOverride   Tier = "override"
	TierExactName  Tier = "exact_name"
	TierScientific Tier = "scientific_name"
	TierTokens     Tier = "token_overlap"
)

// Target is a record of the downstream source file looking for its catalog
// counterpart.
type Target struct {
	ID          string
	Name        string
	ForeignName string
}

// DefaultOverrides pin well-known targets to keywords of their catalog names.
var DefaultOverrides = map[string][]string{
	"neon-tetra": {"неон", "neon"},
	"guppy":      {"гуппи", "guppy"},
	"angelfish":  {"скалярия", "angelfish", "pterophyllum"},
	"corydoras":  {"коридорас", "corydoras"},
	"betta":      {"петушок", "betta", "бойцов"},
	"discus":     {"дискус", "discus"},
	"pleco":      {"плеко", "pleco", "анциструс"},
}

// DefaultSuggestMinScore hides suggestions too weak to be useful.
const DefaultSuggestMinScore = 0.8

// Matcher finds at most one catalog record for a target. Only records
// accepted by domain.IsFish are considered.
type Matcher struct {
	overrides       map[string][]string
	suggestMinScore float64
}

func New(overrides map[string][]string, suggestMinScore float64) *Matcher {
	if overrides == nil {
		overrides = DefaultOverrides
	}
	normalized := make(map[string][]string, len(overrides))
	for id, keywords := range overrides {
		for _, kw := range keywords {
			if n := Normalize(kw); n != "" {
				normalized[id] = append(normalized[id], n)
			}
		}
	}
	if suggestMinScore <= 0 {
		suggestMinScore = DefaultSuggestMinScore
	}
	return &Matcher{overrides: normalized, suggestMinScore: suggestMinScore}
}

type candidate struct {
	fish       domain.Fish
	name       string
	scientific string
	tokens     map[string]struct{}
}

// Match runs the tiers in order over all candidates; the first tier that
// accepts any candidate wins, and within a tier the first candidate in
// iteration order wins.
func (m *Matcher) Match(target Target, records []domain.Fish) (domain.Fish, Tier, bool) {
	candidates := prepare(records)

	if keywords := m.overrides[target.ID]; len(keywords) > 0 {
		for _, c := range candidates {
			for _, kw := range keywords {
				if strings.Contains(c.name, kw) {
					return c.fish, TierOverride, true
				}
			}
		}
	}

	name := Normalize(target.Name)
	if name != "" {
		for _, c := range candidates {
			if c.name == name {
				return c.fish, TierExactName, true
			}
		}
	}

	if foreign := Normalize(target.ForeignName); foreign != "" {
		for _, c := range candidates {
			if c.scientific == foreign {
				return c.fish, TierScientific, true
			}
		}
	}

	tokens := Tokens(target.Name)
	for _, c := range candidates {
		if TokenOverlap(tokens, c.tokens) {
			return c.fish, TierTokens, true
		}
	}

	return domain.Fish{}, TierNone, false
}

// Suggestion is the closest record to an unmatched target. It is reported for
// manual review and never applied.
type Suggestion struct {
	Fish  domain.Fish
	Score float64
}

// Suggest returns the candidate with the highest Jaro-Winkler similarity to
// the target's names, when it reaches the configured minimum score.
func (m *Matcher) Suggest(target Target, records []domain.Fish) (Suggestion, bool) {
	name := Normalize(target.Name)
	foreign := Normalize(target.ForeignName)

	var best Suggestion
	for _, c := range prepare(records) {
		score := 0.0
		if name != "" && c.name != "" {
			score = matchr.JaroWinkler(name, c.name, false)
		}
		if foreign != "" && c.scientific != "" {
			score = max(score, matchr.JaroWinkler(foreign, c.scientific, false))
		}
		if score > best.Score {
			best = Suggestion{Fish: c.fish, Score: score}
		}
	}

	if best.Score < m.suggestMinScore {
		return Suggestion{}, false
	}
	return best, true
}

func prepare(records []domain.Fish) []candidate {
	out := make([]candidate, 0, len(records))
	for _, f := range records {
		if !domain.IsFish(f) {
			continue
		}
		out = append(out, candidate{
			fish:       f,
			name:       Normalize(f.NameRU),
			scientific: Normalize(f.NameLat),
			tokens:     Tokens(f.NameRU),
		})
	}
	return out
}

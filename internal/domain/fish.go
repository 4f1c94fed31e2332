package domain

import (
	"net/url"
	"strings"
)

// Temperament describes how a species behaves toward tank mates.
type Temperament string

const (
	TemperamentPeaceful       Temperament = "peaceful"
	TemperamentSemiAggressive Temperament = "semi-aggressive"
	TemperamentAggressive     Temperament = "aggressive"
)

// Habitat separates freshwater species from marine ones.
type Habitat string

const (
	HabitatFreshwater Habitat = "freshwater"
	HabitatMarine     Habitat = "marine"
)

// Documented defaults applied when an article gives no signal.
const (
	DefaultTemperament   = TemperamentPeaceful
	DefaultDifficulty    = 2
	DefaultHabitat       = HabitatFreshwater
	DefaultMinGroupSize  = 1
	DefaultBioLoadPoints = 2
)

// WaterParams holds the optional temperature and acidity ranges.
type WaterParams struct {
	PHMin   *float64 `json:"ph_min"`
	PHMax   *float64 `json:"ph_max"`
	TempMin *float64 `json:"temp_min"`
	TempMax *float64 `json:"temp_max"`
}

// Fish is one catalog entry collected from a single article page.
type Fish struct {
	ID               int         `json:"id"`
	NameRU           string      `json:"name_ru"`
	NameLat          string      `json:"name_lat"`
	Type             Habitat     `json:"type"`
	FamilyGroup      string      `json:"family_group"`
	SizeCm           *float64    `json:"size_cm"`
	MinTankLiters    *int        `json:"min_tank_liters"`
	BioLoadPoints    int         `json:"bio_load_points"`
	Temperament      Temperament `json:"temperament"`
	MinGroupSize     int         `json:"min_group_size"`
	Difficulty       int         `json:"difficulty"`
	WaterParams      WaterParams `json:"water_params"`
	IncompatibleTags []string    `json:"incompatible_tags"`
	DescriptionShort string      `json:"description_short"`
	FeaturesList     []string    `json:"features_list"`
	ImageURL         string      `json:"image_url"`
	ArticleURL       string      `json:"article_url"`
}

// NewFish returns a record carrying every documented default.
func NewFish(id int, articleURL string) Fish {
	return Fish{
		ID:               id,
		Type:             DefaultHabitat,
		BioLoadPoints:    DefaultBioLoadPoints,
		Temperament:      DefaultTemperament,
		MinGroupSize:     DefaultMinGroupSize,
		Difficulty:       DefaultDifficulty,
		IncompatibleTags: []string{},
		FeaturesList:     []string{},
		ArticleURL:       articleURL,
	}
}

// HasNumeric reports whether any numeric attribute was extracted.
func (f Fish) HasNumeric() bool {
	return f.SizeCm != nil ||
		f.MinTankLiters != nil ||
		f.WaterParams.TempMin != nil ||
		f.WaterParams.TempMax != nil ||
		f.WaterParams.PHMin != nil ||
		f.WaterParams.PHMax != nil
}

// NonFishKeywords mark articles about plants, equipment and site pages.
var NonFishKeywords = []string{
	"растени", "оборудован", "фильтр", "обогревател", "компрессор",
	"освещен", "грунт", "декор", "корм", "лечен", "болезн",
	"список всех", "каталог", "обзор", "совместимост",
}

// FishKeywords qualify a record that has no numeric attribute.
var FishKeywords = []string{"рыб", "fish"}

// IsFish is the single predicate deciding whether a record takes part in
// matching and update passes.
func IsFish(f Fish) bool {
	name := strings.ToLower(f.NameRU)
	if name == "" || containsAny(name, NonFishKeywords) {
		return false
	}
	if f.HasNumeric() {
		return true
	}

	return containsAny(name, FishKeywords)
}

// FilterFish keeps only records accepted by IsFish, preserving order.
func FilterFish(records []Fish) []Fish {
	out := make([]Fish, 0, len(records))
	for _, r := range records {
		if IsFish(r) {
			out = append(out, r)
		}
	}
	return out
}

// NeedsImage reports whether the record has no usable image. Patterns are
// matched against the URL and its percent-decoded form.
func (f Fish) NeedsImage(placeholders []string) bool {
	img := strings.ToLower(strings.TrimSpace(f.ImageURL))
	if img == "" {
		return true
	}
	if decoded, err := url.PathUnescape(img); err == nil && decoded != img {
		img += " " + strings.ToLower(decoded)
	}
	return containsAny(img, lowered(placeholders))
}

func lowered(patterns []string) []string {
	out := make([]string, len(patterns))
	for i, p := range patterns {
		out[i] = strings.ToLower(p)
	}
	return out
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if n != "" && strings.Contains(s, n) {
			return true
		}
	}
	return false
}

// Card is one article teaser on a listing page.
type Card struct {
	Title    string
	ImageURL string
}

package extractor

import (
	"fmt"
	"net/url"

	"github.com/PuerkitoBio/goquery"

	"AquaScanner/internal/domain"
	"AquaScanner/internal/ports"
)

// Options tune the extractor for one site.
type Options struct {
	// BaseURL resolves relative image sources.
	BaseURL string
	// ArticlePath identifies article links on listing pages.
	ArticlePath         string
	ImageMinWidth       int
	CardImageMinWidth   int
	PlaceholderPatterns []string
	ChromePatterns      []string
	DescriptionLimit    int
}

func DefaultOptions() Options {
	return Options{
		BaseURL:             "https://fanfishka.ru",
		ArticlePath:         "/akvariumnye-stati/akvariumnye_rybki/",
		ImageMinWidth:       ArticleImageMinWidth,
		CardImageMinWidth:   CardImageMinWidth,
		PlaceholderPatterns: DefaultPlaceholderPatterns,
		ChromePatterns:      DefaultChromePatterns,
		DescriptionLimit:    DescriptionLimit,
	}
}

// Extractor turns article pages into catalog records. It never fails on a
// missing field; absent values keep their defaults.
type Extractor struct {
	opts Options
	base *url.URL
}

var _ ports.RecordExtractor = (*Extractor)(nil)

func New(opts Options) (*Extractor, error) {
	e := &Extractor{opts: opts}
	if opts.BaseURL != "" {
		base, err := url.Parse(opts.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("parse base url: %w", err)
		}
		e.base = base
	}
	if e.opts.ImageMinWidth <= 0 {
		e.opts.ImageMinWidth = ArticleImageMinWidth
	}
	if e.opts.CardImageMinWidth <= 0 {
		e.opts.CardImageMinWidth = CardImageMinWidth
	}
	if e.opts.DescriptionLimit <= 0 {
		e.opts.DescriptionLimit = DescriptionLimit
	}
	return e, nil
}

// ArticleImage runs the image chain with the configured article threshold.
func (e *Extractor) ArticleImage(doc *goquery.Document) (string, bool) {
	return e.ExtractImage(doc, e.opts.ImageMinWidth)
}

// Extract builds the record for one article page.
func (e *Extractor) Extract(doc *goquery.Document, articleURL string, id int) domain.Fish {
	f := domain.NewFish(id, articleURL)

	f.NameRU, f.NameLat = ExtractNames(doc)
	if img, ok := e.ArticleImage(doc); ok {
		f.ImageURL = img
	}

	text := ArticleText(doc)
	f.DescriptionShort = ExtractDescription(doc, text, e.opts.DescriptionLimit)

	f.WaterParams.TempMin, f.WaterParams.TempMax = ExtractRange(text, RangeTemperature)
	f.WaterParams.PHMin, f.WaterParams.PHMax = ExtractRange(text, RangeAcidity)
	f.MinTankLiters = ExtractTankVolume(text)
	f.SizeCm = ExtractSize(text)

	f.Temperament = ClassifyTemperament(text)
	f.Difficulty = ClassifyDifficulty(text)
	f.Type = ClassifyHabitat(text, articleURL)
	f.MinGroupSize = ExtractGroupSize(text)
	f.FamilyGroup = ExtractFamily(text)

	f.FeaturesList = Features(f)
	return f
}

package ports

import (
	"context"

	"github.com/PuerkitoBio/goquery"

	"AquaScanner/internal/domain"
)

// PageFetcher downloads and parses one HTML page. Retries happen inside; an
// error means the page is a permanent miss for this run.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (*goquery.Document, error)
}

// LinkSource discovers listing pages and article links of configured sites.
type LinkSource interface {
	ListingPages(ctx context.Context) ([]string, error)
	ArticleLinks(ctx context.Context) ([]string, error)
}

// RecordExtractor turns parsed pages into catalog data.
type RecordExtractor interface {
	Extract(doc *goquery.Document, articleURL string, id int) domain.Fish
	ArticleImage(doc *goquery.Document) (string, bool)
	ExtractCards(doc *goquery.Document) []domain.Card
}

// CatalogRepository reads and replaces the whole record collection.
type CatalogRepository interface {
	Load(ctx context.Context) ([]domain.Fish, error)
	Save(ctx context.Context, records []domain.Fish) error
}

// CatalogMirror keeps a queryable copy of the catalog.
type CatalogMirror interface {
	Replace(ctx context.Context, records []domain.Fish) error
}

// SourceStore reads and writes the generated source data file.
type SourceStore interface {
	Load(ctx context.Context) (*domain.SourceDocument, error)
	Save(ctx context.Context, doc *domain.SourceDocument) error
}

// ReportWriter persists the result of a sync run.
type ReportWriter interface {
	WriteReport(ctx context.Context, report domain.SyncReport) error
}

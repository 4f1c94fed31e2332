package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"AquaScanner/internal/domain"
	"AquaScanner/internal/ports"
)

// ReimageDeps wires the adapters used to refetch article illustrations.
type ReimageDeps struct {
	Catalog   ports.CatalogRepository
	Fetcher   ports.PageFetcher
	Extractor ports.RecordExtractor
	// ArticleBase is the listing url under which "{id}-{slug}.html" pages
	// live; used when a record has no provenance url.
	ArticleBase string
	// StalePatterns mark images that must be replaced.
	StalePatterns   []string
	CheckpointEvery int
	Logger          *slog.Logger
}

// ReimageResult summarizes a reimage run.
type ReimageResult struct {
	Candidates int
	Updated    int
	NotFound   int
}

// Reimager re-extracts images of fish records whose image is missing or a
// site placeholder.
type Reimager struct {
	catalog     ports.CatalogRepository
	fetcher     ports.PageFetcher
	extractor   ports.RecordExtractor
	articleBase string
	stale       []string
	checkpoint  checkpointer
	logger      *slog.Logger
}

func NewReimager(deps ReimageDeps) *Reimager {
	return &Reimager{
		catalog:     deps.Catalog,
		fetcher:     deps.Fetcher,
		extractor:   deps.Extractor,
		articleBase: deps.ArticleBase,
		stale:       deps.StalePatterns,
		checkpoint:  checkpointer{catalog: deps.Catalog, every: deps.CheckpointEvery, logger: deps.Logger},
		logger:      deps.Logger,
	}
}

// Run refetches every candidate and replaces its image when a usable one is
// found. Records that are not fish are left untouched.
func (r *Reimager) Run(ctx context.Context) (ReimageResult, error) {
	var result ReimageResult
	if r.catalog == nil || r.fetcher == nil || r.extractor == nil {
		return result, errors.New("reimage pipeline is not fully configured")
	}

	records, err := r.catalog.Load(ctx)
	if err != nil {
		return result, fmt.Errorf("load catalog: %w", err)
	}

	var candidates []int
	for i, rec := range records {
		if domain.IsFish(rec) && rec.NeedsImage(r.stale) {
			candidates = append(candidates, i)
		}
	}
	result.Candidates = len(candidates)
	r.info("records need an image", "count", len(candidates), "records", len(records))

	var runErr error
	for n, idx := range candidates {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}

		rec := &records[idx]
		img, ok := r.findImage(ctx, *rec)
		switch {
		case ok:
			r.debug("image replaced", "id", rec.ID, "name", rec.NameRU, "image", img)
			rec.ImageURL = img
			result.Updated++
		case ctx.Err() != nil:
			runErr = ctx.Err()
		default:
			result.NotFound++
		}
		if runErr != nil {
			break
		}

		if err := r.checkpoint.step(ctx, n+1, records); err != nil {
			return result, err
		}
	}

	if runErr == nil {
		runErr = ctx.Err()
	}
	if err := r.checkpoint.final(ctx, records); err != nil {
		return result, err
	}
	r.info("reimage finished", "updated", result.Updated, "not_found", result.NotFound)
	return result, runErr
}

func (r *Reimager) findImage(ctx context.Context, rec domain.Fish) (string, bool) {
	for _, u := range articleURLs(rec, r.articleBase) {
		doc, err := r.fetcher.Fetch(ctx, u)
		if err != nil {
			if ctx.Err() != nil {
				return "", false
			}
			r.debug("article unavailable", "id", rec.ID, "url", u, "err", err)
			continue
		}
		img, ok := r.extractor.ArticleImage(doc)
		if !ok {
			continue
		}
		if (domain.Fish{ImageURL: img}).NeedsImage(r.stale) {
			continue
		}
		return img, true
	}
	return "", false
}

// articleURLs lists the pages that may hold the record's article: its
// provenance url, then the "{id}-{slug}.html" and "{id}.html" forms.
func articleURLs(rec domain.Fish, base string) []string {
	var urls []string
	if rec.ArticleURL != "" {
		urls = append(urls, rec.ArticleURL)
	}
	if base == "" || rec.ID <= 0 {
		return urls
	}

	base = strings.TrimSuffix(base, "/") + "/"
	id := strconv.Itoa(rec.ID)
	if slug := Slug(rec.NameRU); slug != "" {
		urls = append(urls, base+id+"-"+slug+".html")
	}
	urls = append(urls, base+id+".html")

	out := urls[:0]
	seen := map[string]struct{}{}
	for _, u := range urls {
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}

var (
	slugDrop  = regexp.MustCompile(`[^\p{L}\p{N}_\s-]`)
	slugSpace = regexp.MustCompile(`\s+`)
)

const slugMaxRunes = 50

// Slug turns a native name into the article url fragment.
func Slug(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = slugDrop.ReplaceAllString(s, "")
	s = slugSpace.ReplaceAllString(s, "-")
	if runes := []rune(s); len(runes) > slugMaxRunes {
		s = string(runes[:slugMaxRunes])
	}
	return s
}

func (r *Reimager) info(msg string, args ...interface{}) {
	if r.logger != nil {
		r.logger.Info(msg, args...)
	}
}

func (r *Reimager) debug(msg string, args ...interface{}) {
	if r.logger != nil {
		r.logger.Debug(msg, args...)
	}
}

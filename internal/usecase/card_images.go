package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"AquaScanner/internal/domain"
	"AquaScanner/internal/matcher"
	"AquaScanner/internal/ports"
)

// CardImageDeps wires the adapters used to harvest listing-card thumbnails.
type CardImageDeps struct {
	Catalog         ports.CatalogRepository
	Links           ports.LinkSource
	Fetcher         ports.PageFetcher
	Extractor       ports.RecordExtractor
	StalePatterns   []string
	MaxPages        int
	CheckpointPages int
	Logger          *slog.Logger
}

// CardImageResult summarizes a card-images run.
type CardImageResult struct {
	Pages   int
	Cards   int
	Matched int
	Updated int
}

// CardImager fills missing images from the thumbnails on listing pages.
type CardImager struct {
	catalog    ports.CatalogRepository
	links      ports.LinkSource
	fetcher    ports.PageFetcher
	extractor  ports.RecordExtractor
	stale      []string
	maxPages   int
	checkpoint checkpointer
	logger     *slog.Logger
}

func NewCardImager(deps CardImageDeps) *CardImager {
	return &CardImager{
		catalog:    deps.Catalog,
		links:      deps.Links,
		fetcher:    deps.Fetcher,
		extractor:  deps.Extractor,
		stale:      deps.StalePatterns,
		maxPages:   deps.MaxPages,
		checkpoint: checkpointer{catalog: deps.Catalog, every: deps.CheckpointPages, logger: deps.Logger},
		logger:     deps.Logger,
	}
}

// Run walks the listing pages, maps every card title to a fish record by
// normalized name and replaces only empty or placeholder images.
func (c *CardImager) Run(ctx context.Context) (CardImageResult, error) {
	var result CardImageResult
	if c.catalog == nil || c.links == nil || c.fetcher == nil || c.extractor == nil {
		return result, errors.New("card-images pipeline is not fully configured")
	}

	records, err := c.catalog.Load(ctx)
	if err != nil {
		return result, fmt.Errorf("load catalog: %w", err)
	}

	byName := map[string]int{}
	for i, rec := range records {
		if !domain.IsFish(rec) {
			continue
		}
		key := matcher.Normalize(rec.NameRU)
		if _, dup := byName[key]; !dup && key != "" {
			byName[key] = i
		}
	}

	pages, err := c.links.ListingPages(ctx)
	if err != nil {
		return result, fmt.Errorf("collect listing pages: %w", err)
	}
	if c.maxPages > 0 && len(pages) > c.maxPages {
		pages = pages[:c.maxPages]
	}
	c.info("scanning listing cards", "pages", len(pages), "fish", len(byName))

	var runErr error
	for n, page := range pages {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}

		doc, err := c.fetcher.Fetch(ctx, page)
		if err != nil {
			if ctx.Err() != nil {
				runErr = ctx.Err()
				break
			}
			c.warn("skip listing page", "url", page, "err", err)
			continue
		}
		result.Pages++

		for _, card := range c.extractor.ExtractCards(doc) {
			result.Cards++
			idx, ok := byName[matcher.Normalize(card.Title)]
			if !ok {
				continue
			}
			result.Matched++
			if !records[idx].NeedsImage(c.stale) {
				continue
			}
			records[idx].ImageURL = card.ImageURL
			result.Updated++
			c.debug("card image applied", "id", records[idx].ID, "name", records[idx].NameRU)
		}

		if err := c.checkpoint.step(ctx, n+1, records); err != nil {
			return result, err
		}
	}

	if runErr == nil {
		runErr = ctx.Err()
	}
	if err := c.checkpoint.final(ctx, records); err != nil {
		return result, err
	}
	c.info("card-images finished", "cards", result.Cards, "matched", result.Matched, "updated", result.Updated)
	return result, runErr
}

func (c *CardImager) info(msg string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Info(msg, args...)
	}
}

func (c *CardImager) warn(msg string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Warn(msg, args...)
	}
}

func (c *CardImager) debug(msg string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}

package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"AquaScanner/internal/domain"
	"AquaScanner/internal/ports"
)

// CollectDeps wires the driven adapters into the collection pipeline.
type CollectDeps struct {
	Links     ports.LinkSource
	Fetcher   ports.PageFetcher
	Extractor ports.RecordExtractor
	Catalog   ports.CatalogRepository
	// Mirror is refreshed after the final save when set.
	Mirror          ports.CatalogMirror
	CheckpointEvery int
	Logger          *slog.Logger
}

// CollectOptions tune a single run.
type CollectOptions struct {
	// Append keeps the existing catalog, continues its id sequence and skips
	// articles that are already present.
	Append bool
	// Limit caps the number of articles processed; 0 means all.
	Limit int
}

// CollectResult summarizes a collection run.
type CollectResult struct {
	Links   int
	Created int
	Skipped int
	Misses  int
	Records int
}

// CollectPipeline scrapes every article of the configured sites into the
// catalog.
type CollectPipeline struct {
	links      ports.LinkSource
	fetcher    ports.PageFetcher
	extractor  ports.RecordExtractor
	catalog    ports.CatalogRepository
	mirror     ports.CatalogMirror
	checkpoint checkpointer
	logger     *slog.Logger
}

// NewCollectPipeline constructs the collection use case.
func NewCollectPipeline(deps CollectDeps) *CollectPipeline {
	return &CollectPipeline{
		links:      deps.Links,
		fetcher:    deps.Fetcher,
		extractor:  deps.Extractor,
		catalog:    deps.Catalog,
		mirror:     deps.Mirror,
		checkpoint: checkpointer{catalog: deps.Catalog, every: deps.CheckpointEvery, logger: deps.Logger},
		logger:     deps.Logger,
	}
}

// Run discovers article links, extracts one record per article and saves
// the catalog. A failed page is skipped and consumes no id. On cancellation
// the records collected so far are saved and the context error is returned.
func (p *CollectPipeline) Run(ctx context.Context, opts CollectOptions) (CollectResult, error) {
	var result CollectResult
	if p.links == nil || p.fetcher == nil || p.extractor == nil || p.catalog == nil {
		return result, errors.New("collect pipeline is not fully configured")
	}

	var records []domain.Fish
	known := map[string]struct{}{}
	if opts.Append {
		existing, err := p.catalog.Load(ctx)
		if err != nil {
			return result, fmt.Errorf("load catalog: %w", err)
		}
		records = existing
		for _, r := range existing {
			known[r.ArticleURL] = struct{}{}
		}
	}
	seq := domain.ContinueAfter(records)

	links, err := p.links.ArticleLinks(ctx)
	if err != nil {
		return result, fmt.Errorf("collect article links: %w", err)
	}
	if opts.Limit > 0 && len(links) > opts.Limit {
		links = links[:opts.Limit]
	}
	result.Links = len(links)
	p.info("collecting articles", "links", len(links), "next_id", seq.Peek())

	var runErr error
	for i, link := range links {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}

		if _, ok := known[link]; ok {
			result.Skipped++
			continue
		}

		doc, err := p.fetcher.Fetch(ctx, link)
		if err != nil {
			if ctx.Err() != nil {
				runErr = ctx.Err()
				break
			}
			result.Misses++
			p.warn("skip article", "url", link, "err", err)
			continue
		}

		record := p.extractor.Extract(doc, link, seq.Next())
		records = append(records, record)
		known[link] = struct{}{}
		result.Created++
		p.debug("article extracted", "id", record.ID, "name", record.NameRU, "progress", fmt.Sprintf("%d/%d", i+1, len(links)))

		if err := p.checkpoint.step(ctx, i+1, records); err != nil {
			return result, err
		}
	}

	result.Records = len(records)
	if runErr == nil {
		runErr = ctx.Err()
	}
	if err := p.checkpoint.final(ctx, records); err != nil {
		return result, err
	}
	if runErr != nil {
		p.warn("collection interrupted, partial catalog saved", "records", len(records))
		return result, runErr
	}

	if p.mirror != nil {
		if err := p.mirror.Replace(ctx, records); err != nil {
			return result, fmt.Errorf("refresh mirror: %w", err)
		}
	}

	p.info("collection finished", "created", result.Created, "misses", result.Misses, "records", result.Records)
	return result, nil
}

func (p *CollectPipeline) info(msg string, args ...interface{}) {
	if p.logger != nil {
		p.logger.Info(msg, args...)
	}
}

func (p *CollectPipeline) warn(msg string, args ...interface{}) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}

func (p *CollectPipeline) debug(msg string, args ...interface{}) {
	if p.logger != nil {
		p.logger.Debug(msg, args...)
	}
}

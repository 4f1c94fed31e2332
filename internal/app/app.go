package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"AquaScanner/internal/config"
	"AquaScanner/internal/domain"
	"AquaScanner/internal/extractor"
	"AquaScanner/internal/infrastructure/parser"
	"AquaScanner/internal/infrastructure/source"
	"AquaScanner/internal/infrastructure/storage"
	"AquaScanner/internal/infrastructure/transport"
	"AquaScanner/internal/logging"
	"AquaScanner/internal/matcher"
	"AquaScanner/internal/scanner"
	"AquaScanner/internal/usecase"
)

// ErrMirrorNotConfigured is returned by commands that need catalog.sqlitePath.
var ErrMirrorNotConfigured = errors.New("catalog.sqlitePath is not configured")

// Application wires configs to use cases.
type Application struct {
	cfg       config.Config
	logger    *slog.Logger
	fetcher   *transport.RestyFetcher
	links     *parser.StrategySource
	extractor *extractor.Extractor
	catalog   *storage.JSONCatalog
}

// New builds the adapters shared by every command.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	fetcher := transport.NewRestyFetcher(transport.Options{
		UserAgent:        cfg.HTTP.UserAgent,
		Timeout:          cfg.HTTP.Timeout,
		Delay:            cfg.HTTP.Delay,
		Attempts:         cfg.HTTP.Attempts,
		RetryWait:        cfg.HTTP.RetryWait,
		CloudflareBypass: cfg.HTTP.CloudflareBypass,
	}, baseLogger.With("component", "transport"))

	registry := scanner.NewRegistry()
	registry.Register(parser.NewFanfishkaScanner(fetcher, baseLogger.With("component", "scanner.fanfishka")))
	links := parser.NewStrategySource(registry, cfg.Sites, baseLogger.With("component", "source"))

	ex, err := extractor.New(extractor.Options{
		BaseURL:             cfg.Extraction.BaseURL,
		ArticlePath:         cfg.Extraction.ArticlePath,
		ImageMinWidth:       cfg.Extraction.ImageMinWidth,
		CardImageMinWidth:   cfg.Extraction.CardImageMinWidth,
		PlaceholderPatterns: cfg.Extraction.PlaceholderPatterns,
		ChromePatterns:      cfg.Extraction.ChromePatterns,
		DescriptionLimit:    cfg.Extraction.DescriptionLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("build extractor: %w", err)
	}

	return &Application{
		cfg:       cfg,
		logger:    baseLogger,
		fetcher:   fetcher,
		links:     links,
		extractor: ex,
		catalog:   storage.NewJSONCatalog(cfg.Catalog.Path, cfg.Catalog.Repair, baseLogger.With("component", "catalog")),
	}, nil
}

// StalePatterns mark catalog images that update passes may replace: the
// site placeholders plus any banner.
func (a *Application) StalePatterns() []string {
	patterns := append([]string{}, a.cfg.Extraction.PlaceholderPatterns...)
	return append(patterns, "banner")
}

// Collect scrapes all configured sites into the catalog.
func (a *Application) Collect(ctx context.Context, opts usecase.CollectOptions) (usecase.CollectResult, error) {
	deps := usecase.CollectDeps{
		Links:           a.links,
		Fetcher:         a.fetcher,
		Extractor:       a.extractor,
		Catalog:         a.catalog,
		CheckpointEvery: a.cfg.Catalog.CheckpointEvery,
		Logger:          a.logger.With("component", "collect"),
	}

	if a.cfg.Catalog.SQLitePath != "" {
		mirror, err := storage.OpenSQLiteMirror(ctx, a.cfg.Catalog.SQLitePath)
		if err != nil {
			return usecase.CollectResult{}, fmt.Errorf("open mirror: %w", err)
		}
		defer mirror.Close()
		deps.Mirror = mirror
	}

	return usecase.NewCollectPipeline(deps).Run(ctx, opts)
}

// Reimage refetches articles of fish with missing or placeholder images.
func (a *Application) Reimage(ctx context.Context) (usecase.ReimageResult, error) {
	return usecase.NewReimager(usecase.ReimageDeps{
		Catalog:         a.catalog,
		Fetcher:         a.fetcher,
		Extractor:       a.extractor,
		ArticleBase:     a.articleBase(),
		StalePatterns:   a.StalePatterns(),
		CheckpointEvery: a.cfg.Catalog.ReimageCheckpointEvery,
		Logger:          a.logger.With("component", "reimage"),
	}).Run(ctx)
}

// CardImages fills images from listing-page thumbnails.
func (a *Application) CardImages(ctx context.Context) (usecase.CardImageResult, error) {
	return usecase.NewCardImager(usecase.CardImageDeps{
		Catalog:         a.catalog,
		Links:           a.links,
		Fetcher:         a.fetcher,
		Extractor:       a.extractor,
		StalePatterns:   a.StalePatterns(),
		MaxPages:        a.cfg.Catalog.CardMaxPages,
		CheckpointPages: a.cfg.Catalog.CardCheckpointPages,
		Logger:          a.logger.With("component", "card-images"),
	}).Run(ctx)
}

// SyncSource patches the generated source file from the catalog.
func (a *Application) SyncSource(ctx context.Context, dryRun bool) (domain.SyncReport, error) {
	return usecase.NewSourceSyncer(usecase.SyncDeps{
		Catalog:          a.catalog,
		Source:           source.NewFileStore(a.cfg.Source.Path, a.cfg.Source.ArrayName, a.logger.With("component", "source-file")),
		Reports:          storage.NewJSONReportWriter(a.cfg.Source.ReportPath),
		Matcher:          matcher.New(a.cfg.Matcher.Overrides, a.cfg.Matcher.SuggestMinScore),
		StalePatterns:    a.StalePatterns(),
		DescriptionLimit: a.cfg.Source.DescriptionLimit,
		Logger:           a.logger.With("component", "sync"),
	}).Run(ctx, dryRun)
}

// Stats counts the catalog.
func (a *Application) Stats(ctx context.Context) (domain.CatalogStats, error) {
	return usecase.LoadStats(ctx, a.catalog, a.StalePatterns())
}

// Export writes the catalog into the SQLite mirror.
func (a *Application) Export(ctx context.Context) (int, error) {
	if a.cfg.Catalog.SQLitePath == "" {
		return 0, ErrMirrorNotConfigured
	}
	mirror, err := storage.OpenSQLiteMirror(ctx, a.cfg.Catalog.SQLitePath)
	if err != nil {
		return 0, fmt.Errorf("open mirror: %w", err)
	}
	defer mirror.Close()

	return usecase.Export(ctx, a.catalog, mirror)
}

// Catalog loads the current records.
func (a *Application) Catalog(ctx context.Context) ([]domain.Fish, error) {
	return a.catalog.Load(ctx)
}

func (a *Application) articleBase() string {
	return strings.TrimSuffix(a.cfg.Extraction.BaseURL, "/") + a.cfg.Extraction.ArticlePath
}

package parser

import (
	"context"
	"fmt"
	"log/slog"

	"AquaScanner/internal/config"
	"AquaScanner/internal/ports"
	"AquaScanner/internal/scanner"
)

// StrategySource implements LinkSource via registered scanner strategies.
type StrategySource struct {
	registry *scanner.Registry
	sites    []config.SiteConfig
	logger   *slog.Logger
}

var _ ports.LinkSource = (*StrategySource)(nil)

// NewStrategySource wires scanner registry with config-defined sites.
func NewStrategySource(reg *scanner.Registry, sites []config.SiteConfig, log *slog.Logger) *StrategySource {
	return &StrategySource{
		registry: reg,
		sites:    sites,
		logger:   log,
	}
}

// ListingPages returns the listing pages of every configured site.
func (s *StrategySource) ListingPages(ctx context.Context) ([]string, error) {
	return s.each(ctx, "listing pages", func(strategy scanner.Scanner, req scanner.Request) ([]string, error) {
		return strategy.ListingPages(ctx, req)
	})
}

// ArticleLinks iterates over configured sites and collects their article links.
func (s *StrategySource) ArticleLinks(ctx context.Context) ([]string, error) {
	return s.each(ctx, "article links", func(strategy scanner.Scanner, req scanner.Request) ([]string, error) {
		return strategy.ArticleLinks(ctx, req)
	})
}

func (s *StrategySource) each(ctx context.Context, what string, run func(scanner.Scanner, scanner.Request) ([]string, error)) ([]string, error) {
	if s.registry == nil {
		return nil, fmt.Errorf("scanner registry is not configured")
	}

	s.debug("collect "+what, "sites", len(s.sites))

	seen := map[string]struct{}{}
	var aggregated []string
	for _, site := range s.sites {
		if err := ctx.Err(); err != nil {
			return aggregated, err
		}

		s.debug("process site", "site", site.Name, "scanner", site.Scanner, "categories", len(site.Categories))
		strategy, err := s.registry.Resolve(site.Scanner)
		if err != nil {
			return nil, fmt.Errorf("site %s: %w", site.Name, err)
		}

		req := scanner.Request{
			SiteName:   site.Name,
			Categories: toScannerCategories(site.Categories),
			MaxPages:   site.MaxPages,
			Options:    site.Options,
		}

		results, err := run(strategy, req)
		if err != nil {
			return nil, fmt.Errorf("scan site %s: %w", site.Name, err)
		}

		for _, u := range results {
			if _, ok := seen[u]; ok {
				continue
			}
			seen[u] = struct{}{}
			aggregated = append(aggregated, u)
		}
		s.debug("site produced "+what, "site", site.Name, "count", len(results))
	}

	s.debug("strategy source done", "total", len(aggregated))
	return aggregated, nil
}

func toScannerCategories(cfg []config.CategoryConfig) []scanner.Category {
	categories := make([]scanner.Category, 0, len(cfg))
	for _, cat := range cfg {
		categories = append(categories, scanner.Category{
			Name: cat.Name,
			URL:  cat.URL,
		})
	}
	return categories
}

func (s *StrategySource) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

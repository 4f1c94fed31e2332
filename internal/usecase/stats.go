package usecase

import (
	"context"
	"fmt"
	"strings"

	"AquaScanner/internal/domain"
	"AquaScanner/internal/ports"
)

// CatalogStats counts records, fish and image coverage. Image counts cover
// every record; the habitat split covers fish only.
func CatalogStats(records []domain.Fish, stalePatterns []string) domain.CatalogStats {
	stats := domain.CatalogStats{Records: len(records)}
	for _, rec := range records {
		switch {
		case strings.TrimSpace(rec.ImageURL) == "":
			stats.WithoutImage++
		case rec.NeedsImage(stalePatterns):
			stats.PlaceholderImage++
		default:
			stats.WithImage++
		}

		if !domain.IsFish(rec) {
			continue
		}
		stats.Fish++
		if rec.Type == domain.HabitatMarine {
			stats.Marine++
		} else {
			stats.Freshwater++
		}
	}
	return stats
}

// LoadStats reads the catalog and counts it.
func LoadStats(ctx context.Context, catalog ports.CatalogRepository, stalePatterns []string) (domain.CatalogStats, error) {
	records, err := catalog.Load(ctx)
	if err != nil {
		return domain.CatalogStats{}, fmt.Errorf("load catalog: %w", err)
	}
	return CatalogStats(records, stalePatterns), nil
}

// Export copies the catalog into the mirror and returns the record count.
func Export(ctx context.Context, catalog ports.CatalogRepository, mirror ports.CatalogMirror) (int, error) {
	records, err := catalog.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("load catalog: %w", err)
	}
	if err := mirror.Replace(ctx, records); err != nil {
		return 0, fmt.Errorf("export catalog: %w", err)
	}
	return len(records), nil
}

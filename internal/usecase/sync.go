package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"AquaScanner/internal/domain"
	"AquaScanner/internal/matcher"
	"AquaScanner/internal/ports"
)

// DefaultSourceDescriptionLimit caps descriptions written to the source file.
const DefaultSourceDescriptionLimit = 300

// SyncDeps wires the adapters used to patch the generated source file.
type SyncDeps struct {
	Catalog          ports.CatalogRepository
	Source           ports.SourceStore
	Reports          ports.ReportWriter
	Matcher          *matcher.Matcher
	StalePatterns    []string
	DescriptionLimit int
	Logger           *slog.Logger
}

// SourceSyncer copies descriptions and images from the catalog into the
// entries of the source data file.
type SourceSyncer struct {
	catalog ports.CatalogRepository
	source  ports.SourceStore
	reports ports.ReportWriter
	matcher *matcher.Matcher
	stale   []string
	descMax int
	logger  *slog.Logger
}

func NewSourceSyncer(deps SyncDeps) *SourceSyncer {
	limit := deps.DescriptionLimit
	if limit <= 0 {
		limit = DefaultSourceDescriptionLimit
	}
	m := deps.Matcher
	if m == nil {
		m = matcher.New(nil, 0)
	}
	return &SourceSyncer{
		catalog: deps.Catalog,
		source:  deps.Source,
		reports: deps.Reports,
		matcher: m,
		stale:   deps.StalePatterns,
		descMax: limit,
		logger:  deps.Logger,
	}
}

// Run matches every source entry against the fish records, patches the
// matched entries and writes the document and the report. With dryRun set
// nothing is written and the report is only returned.
func (s *SourceSyncer) Run(ctx context.Context, dryRun bool) (domain.SyncReport, error) {
	report := domain.SyncReport{NotFound: []domain.MissingEntry{}, Updates: []domain.EntryUpdate{}}
	if s.catalog == nil || s.source == nil {
		return report, errors.New("sync pipeline is not fully configured")
	}

	records, err := s.catalog.Load(ctx)
	if err != nil {
		return report, fmt.Errorf("load catalog: %w", err)
	}
	fish := domain.FilterFish(records)

	doc, err := s.source.Load(ctx)
	if err != nil {
		return report, fmt.Errorf("load source: %w", err)
	}
	s.info("syncing source entries", "entries", len(doc.Entries), "fish", len(fish))

	for _, entry := range doc.Entries {
		report.Total++
		target := matcher.Target{ID: entry.ID(), Name: entry.Name(), ForeignName: entry.ForeignName()}

		found, tier, ok := s.matcher.Match(target, fish)
		if !ok {
			missing := domain.MissingEntry{ID: target.ID, Name: target.Name, NameEn: target.ForeignName}
			if sug, ok := s.matcher.Suggest(target, fish); ok {
				missing.SuggestedID = sug.Fish.ID
				missing.SuggestedName = sug.Fish.NameRU
				missing.SuggestionScore = sug.Score
			}
			report.NotFound = append(report.NotFound, missing)
			s.debug("no catalog match", "id", target.ID, "name", target.Name)
			continue
		}

		report.Found++
		report.Updates = append(report.Updates, s.apply(entry, found, tier))
	}

	if dryRun {
		return report, nil
	}

	if err := s.source.Save(ctx, doc); err != nil {
		return report, fmt.Errorf("save source: %w", err)
	}
	if s.reports != nil {
		if err := s.reports.WriteReport(ctx, report); err != nil {
			return report, fmt.Errorf("write report: %w", err)
		}
	}
	s.info("sync finished", "total", report.Total, "found", report.Found, "not_found", len(report.NotFound))
	return report, nil
}

func (s *SourceSyncer) apply(entry domain.SourceEntry, found domain.Fish, tier matcher.Tier) domain.EntryUpdate {
	update := domain.EntryUpdate{
		FishID:         entry.ID(),
		FishName:       entry.Name(),
		CatalogID:      found.ID,
		CatalogName:    found.NameRU,
		MatchedBy:      string(tier),
		HasImage:       found.ImageURL != "",
		HasDescription: found.DescriptionShort != "",
	}

	if desc := CleanDescription(found.DescriptionShort, entry.Name(), s.descMax); desc != "" {
		entry["description"] = desc
		update.DescriptionUpdated = true
	}
	if !found.NeedsImage(s.stale) {
		entry["image"] = found.ImageURL
		update.ImageUpdated = true
	}
	return update
}

// CleanDescription prepares a catalog description for the source file:
// whitespace collapsed, a leading copy of the name removed together with an
// immediate second copy, and the result capped at limit runes followed by
// "...". Text that does not start with the name keeps its opening words.
func CleanDescription(desc, name string, limit int) string {
	d := strings.Join(strings.Fields(desc), " ")
	name = strings.Join(strings.Fields(name), " ")

	if dr, nr := []rune(d), []rune(name); name != "" && len(dr) >= len(nr) && strings.EqualFold(string(dr[:len(nr)]), name) {
		d = strings.TrimSpace(string(dr[len(nr):]))

		// The name is sometimes repeated right after itself.
		words := strings.Fields(d)
		if len(words) > 3 {
			head := strings.ToLower(strings.Join(words[:3], " "))
			lowerName := strings.ToLower(name)
			if strings.Contains(lowerName, head) || strings.Contains(head, lowerName) {
				d = strings.Join(words[3:], " ")
			}
		}
	}

	if limit > 0 {
		if runes := []rune(d); len(runes) > limit {
			d = strings.TrimSpace(string(runes[:limit])) + "..."
		}
	}
	return d
}

func (s *SourceSyncer) info(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Info(msg, args...)
	}
}

func (s *SourceSyncer) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

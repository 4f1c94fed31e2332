package usecase

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"AquaScanner/internal/domain"
	"AquaScanner/internal/extractor"
	"AquaScanner/internal/infrastructure/storage"
	"AquaScanner/internal/matcher"
)

func ptr[T any](v T) *T { return &v }

type memCatalog struct {
	records []domain.Fish
	saves   int
}

func (m *memCatalog) Load(context.Context) ([]domain.Fish, error) {
	return append([]domain.Fish(nil), m.records...), nil
}

func (m *memCatalog) Save(_ context.Context, records []domain.Fish) error {
	m.records = append([]domain.Fish(nil), records...)
	m.saves++
	return nil
}

type memMirror struct{ records []domain.Fish }

func (m *memMirror) Replace(_ context.Context, records []domain.Fish) error {
	m.records = records
	return nil
}

type staticLinks struct {
	pages []string
	links []string
}

func (s staticLinks) ListingPages(context.Context) ([]string, error) { return s.pages, nil }
func (s staticLinks) ArticleLinks(context.Context) ([]string, error) { return s.links, nil }

type mapFetcher struct {
	pages map[string]string
	calls []string
	// after is invoked after every successful fetch.
	after func()

	// cancelOn fails the fetch of that url by calling cancel.
	cancelOn string
	cancel   func()
}

func (m *mapFetcher) Fetch(ctx context.Context, u string) (*goquery.Document, error) {
	m.calls = append(m.calls, u)
	if u == m.cancelOn && m.cancel != nil {
		m.cancel()
		return nil, ctx.Err()
	}
	body, ok := m.pages[u]
	if !ok {
		return nil, errors.New("not found")
	}
	if m.after != nil {
		m.after()
	}
	return goquery.NewDocumentFromReader(strings.NewReader(body))
}

type memSource struct {
	doc   *domain.SourceDocument
	saves int
}

func (m *memSource) Load(context.Context) (*domain.SourceDocument, error) { return m.doc, nil }

func (m *memSource) Save(_ context.Context, doc *domain.SourceDocument) error {
	m.doc = doc
	m.saves++
	return nil
}

type memReports struct{ reports []domain.SyncReport }

func (m *memReports) WriteReport(_ context.Context, r domain.SyncReport) error {
	m.reports = append(m.reports, r)
	return nil
}

func newExtractor(t *testing.T) *extractor.Extractor {
	t.Helper()
	ex, err := extractor.New(extractor.DefaultOptions())
	require.NoError(t, err)
	return ex
}

var stale = append(append([]string{}, extractor.DefaultPlaceholderPatterns...), "banner")

func articlePage(name, image, body string) string {
	return `<html><body><h1>` + name + `</h1><div class="entry-content">` +
		`<img src="` + image + `" width="600" height="400"><p>` + body + `</p></div></body></html>`
}

const articleBase = "https://fanfishka.ru/akvariumnye-stati/akvariumnye_rybki/"

func TestCollectAssignsSequentialIDsAndSkipsMisses(t *testing.T) {
	t.Parallel()

	links := []string{articleBase + "1-neon.html", articleBase + "2-missing.html", articleBase + "3-guppy.html"}
	fetcher := &mapFetcher{pages: map[string]string{
		links[0]: articlePage("Неон голубой", "/img/neon.jpg", "Температура воды 22-26°C, размер до 4 см."),
		links[2]: articlePage("Гуппи", "/img/guppy.jpg", "Живородящая рыбка, pH 7.0."),
	}}
	catalog := &memCatalog{}
	mirror := &memMirror{}

	p := NewCollectPipeline(CollectDeps{
		Links:           staticLinks{links: links},
		Fetcher:         fetcher,
		Extractor:       newExtractor(t),
		Catalog:         catalog,
		Mirror:          mirror,
		CheckpointEvery: 1,
	})

	res, err := p.Run(context.Background(), CollectOptions{})
	require.NoError(t, err)
	require.Equal(t, CollectResult{Links: 3, Created: 2, Misses: 1, Records: 2}, res)

	require.Len(t, catalog.records, 2)
	if catalog.records[0].ID != 1 || catalog.records[1].ID != 2 {
		t.Fatalf("ids should be sequential without gaps, got %d and %d", catalog.records[0].ID, catalog.records[1].ID)
	}
	require.Equal(t, "Неон голубой", catalog.records[0].NameRU)
	require.Equal(t, links[2], catalog.records[1].ArticleURL)
	require.Equal(t, "https://fanfishka.ru/img/neon.jpg", catalog.records[0].ImageURL)
	if catalog.saves < 3 {
		t.Fatalf("expected checkpoints plus final save, got %d saves", catalog.saves)
	}
	require.Len(t, mirror.records, 2)
}

func TestCollectSavesPartialResultOnCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	links := []string{articleBase + "1.html", articleBase + "2.html"}
	fetcher := &mapFetcher{
		pages: map[string]string{
			links[0]: articlePage("Неон голубой", "/img/neon.jpg", "до 4 см"),
			links[1]: articlePage("Гуппи", "/img/guppy.jpg", "до 5 см"),
		},
		after: cancel,
	}
	catalog := &memCatalog{}
	mirror := &memMirror{}

	p := NewCollectPipeline(CollectDeps{
		Links:           staticLinks{links: links},
		Fetcher:         fetcher,
		Extractor:       newExtractor(t),
		Catalog:         catalog,
		Mirror:          mirror,
		CheckpointEvery: 10,
	})

	res, err := p.Run(ctx, CollectOptions{})
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, res.Created)
	require.Len(t, catalog.records, 1)
	require.Nil(t, mirror.records, "mirror must not be refreshed by an interrupted run")
}

func fileCatalog(t *testing.T, records []domain.Fish) *storage.JSONCatalog {
	t.Helper()
	c := storage.NewJSONCatalog(filepath.Join(t.TempDir(), "catalog.json"), false, nil)
	require.NoError(t, c.Save(context.Background(), records))
	return c
}

func TestCollectCancelledAtCheckpointStillSavesFile(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	links := []string{articleBase + "1.html", articleBase + "2.html"}
	fetcher := &mapFetcher{
		pages: map[string]string{
			links[0]: articlePage("Неон голубой", "/img/neon.jpg", "до 4 см"),
			links[1]: articlePage("Гуппи", "/img/guppy.jpg", "до 5 см"),
		},
		after: cancel,
	}
	catalog := fileCatalog(t, nil)

	p := NewCollectPipeline(CollectDeps{
		Links:           staticLinks{links: links},
		Fetcher:         fetcher,
		Extractor:       newExtractor(t),
		Catalog:         catalog,
		CheckpointEvery: 1,
	})

	res, err := p.Run(ctx, CollectOptions{})
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, res.Created)

	saved, err := catalog.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, saved, 1)
	require.Equal(t, "Неон голубой", saved[0].NameRU)
}

func TestCollectAppendContinuesSequence(t *testing.T) {
	t.Parallel()

	known := articleBase + "5-neon.html"
	fresh := articleBase + "6-guppy.html"
	catalog := &memCatalog{records: []domain.Fish{{ID: 5, NameRU: "Неон голубой", ArticleURL: known}}}
	fetcher := &mapFetcher{pages: map[string]string{
		fresh: articlePage("Гуппи", "/img/guppy.jpg", "до 5 см"),
	}}

	p := NewCollectPipeline(CollectDeps{
		Links:     staticLinks{links: []string{known, fresh}},
		Fetcher:   fetcher,
		Extractor: newExtractor(t),
		Catalog:   catalog,
	})

	res, err := p.Run(context.Background(), CollectOptions{Append: true})
	require.NoError(t, err)
	require.Equal(t, 1, res.Skipped)
	require.Equal(t, 1, res.Created)
	require.Len(t, catalog.records, 2)
	require.Equal(t, 6, catalog.records[1].ID)
	require.Equal(t, []string{fresh}, fetcher.calls)
}

func TestReimageReplacesOnlyStaleFishImages(t *testing.T) {
	t.Parallel()

	records := []domain.Fish{
		{ID: 1, NameRU: "Неон голубой", SizeCm: ptr(4.0), ImageURL: "https://fanfishka.ru/img/Sovmestimost_akvaryb.png", ArticleURL: articleBase + "1-neon.html"},
		{ID: 7, NameRU: "Неон голубой", SizeCm: ptr(4.0)},
		{ID: 8, NameRU: "Грунт для аквариума", SizeCm: ptr(1.0)},
		{ID: 9, NameRU: "Гуппи", SizeCm: ptr(5.0), ImageURL: "https://fanfishka.ru/img/guppy.jpg"},
		{ID: 10, NameRU: "Данио рерио", SizeCm: ptr(5.0)},
	}
	catalog := &memCatalog{records: records}
	fetcher := &mapFetcher{pages: map[string]string{
		articleBase + "1-neon.html":         articlePage("Неон голубой", "/img/neon.jpg", ""),
		articleBase + "7-неон-голубой.html": articlePage("Неон голубой", "/img/neon-7.jpg", ""),
		articleBase + "10.html":             articlePage("Данио", "/img/sovmestimost.png", ""),
	}}

	r := NewReimager(ReimageDeps{
		Catalog:         catalog,
		Fetcher:         fetcher,
		Extractor:       newExtractor(t),
		ArticleBase:     articleBase,
		StalePatterns:   stale,
		CheckpointEvery: 50,
	})

	res, err := r.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, ReimageResult{Candidates: 3, Updated: 2, NotFound: 1}, res)

	got := catalog.records
	require.Equal(t, "https://fanfishka.ru/img/neon.jpg", got[0].ImageURL)
	require.Equal(t, "https://fanfishka.ru/img/neon-7.jpg", got[1].ImageURL)
	require.Empty(t, got[2].ImageURL, "non-fish records are never touched")
	require.Equal(t, "https://fanfishka.ru/img/guppy.jpg", got[3].ImageURL)
	require.Empty(t, got[4].ImageURL)
}

func TestReimageCancelledMidRunKeepsEarlierImages(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	first := articleBase + "1-neon.html"
	second := articleBase + "2-guppy.html"
	catalog := fileCatalog(t, []domain.Fish{
		{ID: 1, NameRU: "Неон голубой", SizeCm: ptr(4.0), ArticleURL: first},
		{ID: 2, NameRU: "Гуппи", SizeCm: ptr(5.0), ArticleURL: second},
	})
	fetcher := &mapFetcher{
		pages:    map[string]string{first: articlePage("Неон голубой", "/img/neon.jpg", "")},
		cancelOn: second,
		cancel:   cancel,
	}

	r := NewReimager(ReimageDeps{
		Catalog:         catalog,
		Fetcher:         fetcher,
		Extractor:       newExtractor(t),
		StalePatterns:   stale,
		CheckpointEvery: 2,
	})

	res, err := r.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, ReimageResult{Candidates: 2, Updated: 1}, res, "an interrupted lookup is not a miss")

	saved, err := catalog.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, "https://fanfishka.ru/img/neon.jpg", saved[0].ImageURL)
	require.Empty(t, saved[1].ImageURL)
}

func TestCardImagesCancelledAtCheckpointStillSavesFile(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	listing := articleBase + "page/1/"
	page := `<html><body><div class="post-box"><h3>Неон голубой</h3><img src="/img/neon-card.jpg" width="300"></div></body></html>`
	catalog := fileCatalog(t, []domain.Fish{{ID: 1, NameRU: "Неон голубой", SizeCm: ptr(4.0)}})

	c := NewCardImager(CardImageDeps{
		Catalog:         catalog,
		Links:           staticLinks{pages: []string{listing, articleBase + "page/2/"}},
		Fetcher:         &mapFetcher{pages: map[string]string{listing: page}, after: cancel},
		Extractor:       newExtractor(t),
		StalePatterns:   stale,
		CheckpointPages: 1,
	})

	_, err := c.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)

	saved, err := catalog.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, "https://fanfishka.ru/img/neon-card.jpg", saved[0].ImageURL)
}

func TestArticleURLs(t *testing.T) {
	t.Parallel()

	got := articleURLs(domain.Fish{ID: 12, NameRU: "Барбус (суматранский)!"}, articleBase)
	want := []string{articleBase + "12-барбус-суматранский.html", articleBase + "12.html"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("articleURLs mismatch (-want +got):\n%s", diff)
	}

	got = articleURLs(domain.Fish{ID: 3, ArticleURL: articleBase + "3.html"}, articleBase)
	if diff := cmp.Diff([]string{articleBase + "3.html"}, got); diff != "" {
		t.Fatalf("provenance url should not repeat (-want +got):\n%s", diff)
	}
}

func TestSlugTruncates(t *testing.T) {
	t.Parallel()

	slug := Slug(strings.Repeat("рыба ", 20))
	if n := len([]rune(slug)); n != slugMaxRunes {
		t.Fatalf("slug has %d runes, want %d", n, slugMaxRunes)
	}
}

func TestCardImagesFillPlaceholders(t *testing.T) {
	t.Parallel()

	listing := articleBase + "page/1/"
	page := `<html><body>
		<div class="post-box"><h3>Неон голубой</h3><img src="/img/neon-card.jpg" width="300"></div>
		<div class="post-box"><h3>Гуппи</h3><img src="/img/guppy-card.jpg" width="300"></div>
		<div class="post-box"><h3>Аквариумные растения</h3><img src="/img/plants.jpg" width="300"></div>
	</body></html>`

	catalog := &memCatalog{records: []domain.Fish{
		{ID: 1, NameRU: "Неон  голубой!", SizeCm: ptr(4.0), ImageURL: "https://fanfishka.ru/img/banner-top.png"},
		{ID: 2, NameRU: "Гуппи", SizeCm: ptr(5.0), ImageURL: "https://fanfishka.ru/img/guppy.jpg"},
	}}

	c := NewCardImager(CardImageDeps{
		Catalog:         catalog,
		Links:           staticLinks{pages: []string{listing, articleBase + "page/2/"}},
		Fetcher:         &mapFetcher{pages: map[string]string{listing: page}},
		Extractor:       newExtractor(t),
		StalePatterns:   stale,
		MaxPages:        40,
		CheckpointPages: 10,
	})

	res, err := c.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, CardImageResult{Pages: 1, Cards: 2, Matched: 2, Updated: 1}, res)
	require.Equal(t, "https://fanfishka.ru/img/neon-card.jpg", catalog.records[0].ImageURL)
	require.Equal(t, "https://fanfishka.ru/img/guppy.jpg", catalog.records[1].ImageURL)
}

func TestCardImagesHonourMaxPages(t *testing.T) {
	t.Parallel()

	fetcher := &mapFetcher{}
	c := NewCardImager(CardImageDeps{
		Catalog:   &memCatalog{},
		Links:     staticLinks{pages: []string{"a", "b", "c"}},
		Fetcher:   fetcher,
		Extractor: newExtractor(t),
		MaxPages:  2,
	})

	_, err := c.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, fetcher.calls)
}

func syncFixture() (*memCatalog, *memSource) {
	catalog := &memCatalog{records: []domain.Fish{
		{
			ID: 1, NameRU: "Неон голубой", SizeCm: ptr(4.0),
			DescriptionShort: "Неон голубой\n\nмирная   стайная рыбка из Южной Америки.",
			ImageURL:         "https://fanfishka.ru/img/neon.jpg",
		},
		{ID: 2, NameRU: "Барбус суматранскй", SizeCm: ptr(6.0), ImageURL: "https://fanfishka.ru/img/Sovmestimost_akvaryb.png"},
		{ID: 3, NameRU: "Грунт для аквариума", SizeCm: ptr(1.0)},
	}}
	source := &memSource{doc: &domain.SourceDocument{
		Prefix: "export const BASE_FISH_DATABASE = ",
		Entries: []domain.SourceEntry{
			{"id": "neon", "name": "Неон голубой", "nameEn": "Neon", "image": "", "description": "old"},
			{"id": "barbus", "name": "Барбус суматранский", "nameEn": "Sumatra barb", "image": "keep.png"},
		},
		Suffix: ";\n",
	}}
	return catalog, source
}

func TestSyncSourcePatchesMatchedEntries(t *testing.T) {
	t.Parallel()

	catalog, source := syncFixture()
	reports := &memReports{}
	s := NewSourceSyncer(SyncDeps{
		Catalog:       catalog,
		Source:        source,
		Reports:       reports,
		Matcher:       matcher.New(nil, 0.8),
		StalePatterns: stale,
	})

	report, err := s.Run(context.Background(), false)
	require.NoError(t, err)
	require.Equal(t, 2, report.Total)
	require.Equal(t, 1, report.Found)
	require.Equal(t, 1, source.saves)
	require.Len(t, reports.reports, 1)

	neon := source.doc.Entries[0]
	require.Equal(t, "мирная стайная рыбка из Южной Америки.", neon.Description())
	require.Equal(t, "https://fanfishka.ru/img/neon.jpg", neon.Image())

	wantUpdate := domain.EntryUpdate{
		FishID: "neon", FishName: "Неон голубой", CatalogID: 1, CatalogName: "Неон голубой",
		MatchedBy: string(matcher.TierExactName), HasImage: true, HasDescription: true,
		ImageUpdated: true, DescriptionUpdated: true,
	}
	if diff := cmp.Diff([]domain.EntryUpdate{wantUpdate}, report.Updates); diff != "" {
		t.Fatalf("updates mismatch (-want +got):\n%s", diff)
	}

	require.Len(t, report.NotFound, 1)
	missing := report.NotFound[0]
	require.Equal(t, "barbus", missing.ID)
	require.Equal(t, 2, missing.SuggestedID)
	require.Greater(t, missing.SuggestionScore, 0.8)
	require.Equal(t, "keep.png", source.doc.Entries[1].Image())
}

func TestSyncSourceDryRunWritesNothing(t *testing.T) {
	t.Parallel()

	catalog, source := syncFixture()
	reports := &memReports{}
	s := NewSourceSyncer(SyncDeps{Catalog: catalog, Source: source, Reports: reports, StalePatterns: stale})

	report, err := s.Run(context.Background(), true)
	require.NoError(t, err)
	require.Equal(t, 1, report.Found)
	require.Zero(t, source.saves)
	require.Empty(t, reports.reports)
}

func TestSyncSourceSkipsPlaceholderImages(t *testing.T) {
	t.Parallel()

	catalog, source := syncFixture()
	source.doc.Entries[1]["name"] = "Барбус суматранскй"
	s := NewSourceSyncer(SyncDeps{Catalog: catalog, Source: source, StalePatterns: stale})

	report, err := s.Run(context.Background(), false)
	require.NoError(t, err)
	require.Equal(t, 2, report.Found)
	require.Equal(t, "keep.png", source.doc.Entries[1].Image())
	require.False(t, report.Updates[1].ImageUpdated)
}

func TestCleanDescription(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		desc  string
		title string
		limit int
		want  string
	}{
		{name: "collapse whitespace", desc: "Мирная\n\nрыбка   стайная", title: "", limit: 300, want: "Мирная рыбка стайная"},
		{name: "leading name", desc: "ГУППИ живородящая\nрыбка", title: "Гуппи", limit: 300, want: "живородящая рыбка"},
		{name: "repeated name after name", desc: "Неон голубой неон голубой рыбка живет стаями", title: "Неон голубой", limit: 300, want: "живет стаями"},
		{name: "name phrase after name", desc: "Гуппи. Гуппи живородящая рыбка родом из Южной Америки", title: "Гуппи", limit: 300, want: "рыбка родом из Южной Америки"},
		{name: "name elsewhere keeps opening words", desc: "Рыбка гуппи очень популярна среди аквариумистов всего мира", title: "Гуппи", limit: 300, want: "Рыбка гуппи очень популярна среди аквариумистов всего мира"},
		{name: "three words inside name without leading name", desc: "Рыбка неон голубой живет стаями", title: "Аквариумная рыбка неон голубой", limit: 300, want: "Рыбка неон голубой живет стаями"},
		{name: "short text kept", desc: "Рыбка неон голубой", title: "Аквариумная рыбка неон голубой", limit: 300, want: "Рыбка неон голубой"},
		{name: "capped", desc: strings.Repeat("я", 310), title: "", limit: 300, want: strings.Repeat("я", 300) + "..."},
		{name: "empty", desc: "  \n ", title: "Гуппи", limit: 300, want: ""},
	}

	for _, tc := range cases {
		if got := CleanDescription(tc.desc, tc.title, tc.limit); got != tc.want {
			t.Fatalf("%s: CleanDescription = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestCatalogStats(t *testing.T) {
	t.Parallel()

	records := []domain.Fish{
		{ID: 1, NameRU: "Неон голубой", SizeCm: ptr(4.0), Type: domain.HabitatFreshwater, ImageURL: "https://fanfishka.ru/img/neon.jpg"},
		{ID: 2, NameRU: "Рыба-клоун", Type: domain.HabitatMarine, ImageURL: "https://fanfishka.ru/img/%D0%B1%D0%B0%D0%BD%D0%BD%D0%B5%D1%80.jpg"},
		{ID: 3, NameRU: "Грунт для аквариума"},
	}

	got := CatalogStats(records, stale)
	want := domain.CatalogStats{Records: 3, Fish: 2, Marine: 1, Freshwater: 1, WithImage: 1, PlaceholderImage: 1, WithoutImage: 1}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("stats mismatch (-want +got):\n%s", diff)
	}
}

func TestExportReplacesMirror(t *testing.T) {
	t.Parallel()

	catalog := &memCatalog{records: []domain.Fish{{ID: 1}, {ID: 2}}}
	mirror := &memMirror{}

	n, err := Export(context.Background(), catalog, mirror)
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Len(t, mirror.records, 2)
}

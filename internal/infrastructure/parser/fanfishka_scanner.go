package parser

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"AquaScanner/internal/ports"
	"AquaScanner/internal/scanner"
)

var pagePathExpr = regexp.MustCompile(`/page/(\d+)/`)

var paginationSelectors = []string{
	".pagination a",
	".page-numbers a",
	".pager a",
	".pagination-nav a",
	"nav.pagination a",
	".wp-pagenavi a",
	".pagination li a",
	".page-nav a",
}

// probePages are tried when the listing shows no pagination at all.
var probePages = []int{2, 3, 5, 10, 20, 50}

// probeMinText is the amount of page text that marks a probed page as real.
const probeMinText = 1000

var articleSelectors = []string{
	".post-box a",
	".article-item a",
	".post-card a",
	".entry-title a",
	".post-title a",
	"article a",
	".post a",
	".fish-card a",
	".item a",
	".card a",
	"h2 a",
	"h3 a",
	"h4 a",
}

var (
	articlePathPatterns  = []string{"/akvariumnye-stati/akvariumnye_rybki/", "/akvariumnye-stati/", "/rybki/", "/fish/"}
	fallbackPathPatterns = []string{"/akvariumnye-stati/akvariumnye_rybki/", "/akvariumnye-stati/"}
)

// FanfishkaScanner walks the paginated fish listing of fanfishka.ru and
// collects article links.
type FanfishkaScanner struct {
	fetcher ports.PageFetcher
	logger  *slog.Logger
}

// NewFanfishkaScanner wires the page fetcher used for listing pages.
func NewFanfishkaScanner(fetcher ports.PageFetcher, log *slog.Logger) *FanfishkaScanner {
	return &FanfishkaScanner{fetcher: fetcher, logger: log}
}

// Name identifies the strategy inside the registry.
func (f *FanfishkaScanner) Name() string {
	return "fanfishka"
}

// ListingPages discovers the last page of each category and returns every
// page URL up to it, capped by req.MaxPages.
func (f *FanfishkaScanner) ListingPages(ctx context.Context, req scanner.Request) ([]string, error) {
	if len(req.Categories) == 0 {
		return nil, fmt.Errorf("no categories provided for site %s", req.SiteName)
	}

	var pages []string
	for _, cat := range req.Categories {
		last, err := f.lastPage(ctx, cat.URL)
		if err != nil {
			return nil, fmt.Errorf("category %s: %w", cat.Name, err)
		}
		if req.MaxPages > 0 && last > req.MaxPages {
			last = req.MaxPages
		}
		f.info("listing pages resolved", "category", cat.Name, "last_page", last)

		for n := 1; n <= last; n++ {
			pageURL, err := buildPageURL(cat.URL, n)
			if err != nil {
				return nil, fmt.Errorf("category %s: %w", cat.Name, err)
			}
			pages = append(pages, pageURL)
		}
	}
	return pages, nil
}

// ArticleLinks collects article URLs from every listing page. A page that
// cannot be fetched is logged and skipped.
func (f *FanfishkaScanner) ArticleLinks(ctx context.Context, req scanner.Request) ([]string, error) {
	pages, err := f.ListingPages(ctx, req)
	if err != nil {
		return nil, err
	}

	seen := map[string]struct{}{}
	var links []string
	for i, pageURL := range pages {
		if err := ctx.Err(); err != nil {
			return links, err
		}

		doc, err := f.fetcher.Fetch(ctx, pageURL)
		if err != nil {
			f.warn("listing page skipped", "url", pageURL, "error", err)
			continue
		}

		found := collectLinks(doc, pageURL)
		added := 0
		for _, link := range found {
			if _, ok := seen[link]; ok {
				continue
			}
			seen[link] = struct{}{}
			links = append(links, link)
			added++
		}
		f.info("listing page processed", "page", i+1, "of", len(pages), "links", added)
	}
	return links, nil
}

func (f *FanfishkaScanner) lastPage(ctx context.Context, categoryURL string) (int, error) {
	first, err := buildPageURL(categoryURL, 1)
	if err != nil {
		return 0, err
	}
	doc, err := f.fetcher.Fetch(ctx, first)
	if err != nil {
		f.warn("first listing page unavailable", "url", first, "error", err)
		return 1, nil
	}

	if n := lastPageFromPagination(doc); n > 1 {
		return n, nil
	}
	if n := lastPageFromLinks(doc); n > 1 {
		return n, nil
	}
	return f.probeLastPage(ctx, categoryURL), nil
}

func lastPageFromPagination(doc *goquery.Document) int {
	for _, selector := range paginationSelectors {
		links := doc.Find(selector)
		if links.Length() == 0 {
			continue
		}

		last := 0
		links.Each(func(_ int, a *goquery.Selection) {
			href := a.AttrOr("href", "")
			if strings.Contains(href, "/page/") {
				if n := pageNumber(href); n > last {
					last = n
				}
				return
			}
			if n, err := strconv.Atoi(strings.TrimSpace(a.Text())); err == nil && n > last {
				last = n
			}
		})
		if last > 0 {
			return last
		}
	}
	return 0
}

func lastPageFromLinks(doc *goquery.Document) int {
	last := 0
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		if n := pageNumber(a.AttrOr("href", "")); n > last {
			last = n
		}
	})
	return last
}

func (f *FanfishkaScanner) probeLastPage(ctx context.Context, categoryURL string) int {
	last := 1
	for _, n := range probePages {
		pageURL, err := buildPageURL(categoryURL, n)
		if err != nil {
			break
		}
		doc, err := f.fetcher.Fetch(ctx, pageURL)
		if err != nil || utf8.RuneCountInString(doc.Text()) <= probeMinText {
			break
		}
		last = n
	}
	return last
}

func pageNumber(href string) int {
	m := pagePathExpr.FindStringSubmatch(href)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}

// collectLinks returns the article links of one listing page, resolved
// against the page URL and without duplicates.
func collectLinks(doc *goquery.Document, pageURL string) []string {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil
	}

	for _, selector := range articleSelectors {
		links := linksMatching(doc.Find(selector), base, pageURL, articlePathPatterns)
		if len(links) > 0 {
			return links
		}
	}
	return linksMatching(doc.Find("a[href]"), base, pageURL, fallbackPathPatterns)
}

func linksMatching(sel *goquery.Selection, base *url.URL, pageURL string, patterns []string) []string {
	var links []string
	seen := map[string]struct{}{}
	sel.Each(func(_ int, a *goquery.Selection) {
		href := strings.TrimSpace(a.AttrOr("href", ""))
		if href == "" || href == "#" || strings.Contains(href, "/page/") || !containsAny(href, patterns) {
			return
		}
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		resolved := base.ResolveReference(ref)
		resolved.Fragment = ""
		full := resolved.String()
		if full == pageURL {
			return
		}
		if _, ok := seen[full]; ok {
			return
		}
		seen[full] = struct{}{}
		links = append(links, full)
	})
	return links
}

func containsAny(s string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

// buildPageURL points a category URL at the given listing page.
func buildPageURL(base string, page int) (string, error) {
	parsed, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid category url %s: %w", base, err)
	}

	suffix := "/page/" + strconv.Itoa(page) + "/"
	if loc := pagePathExpr.FindStringIndex(parsed.Path); loc != nil {
		parsed.Path = parsed.Path[:loc[0]] + suffix + parsed.Path[loc[1]:]
	} else {
		parsed.Path = strings.TrimSuffix(parsed.Path, "/") + suffix
	}
	return parsed.String(), nil
}

func (f *FanfishkaScanner) info(msg string, args ...interface{}) {
	if f.logger != nil {
		f.logger.Info(msg, args...)
	}
}

func (f *FanfishkaScanner) warn(msg string, args ...interface{}) {
	if f.logger != nil {
		f.logger.Warn(msg, args...)
	}
}

package scanner

import (
	"context"
	"fmt"
)

// Category describes a concrete listing section provided by config.
type Category struct {
	Name string
	URL  string
}

// Request carries all parameters required to execute a scan.
type Request struct {
	SiteName   string
	Categories []Category
	// MaxPages caps listing pages per category; zero means no cap.
	MaxPages int
	Options  map[string]string
}

// Scanner captures a single site strategy.
type Scanner interface {
	Name() string
	// ListingPages returns the listing page URLs of every category, first to last.
	ListingPages(ctx context.Context, req Request) ([]string, error)
	// ArticleLinks returns the de-duplicated article URLs found on the listing pages.
	ArticleLinks(ctx context.Context, req Request) ([]string, error)
}

// Registry keeps a mapping from scanner names to their implementations.
type Registry struct {
	scanners map[string]Scanner
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{scanners: map[string]Scanner{}}
}

// Register adds or replaces a scanner implementation.
func (r *Registry) Register(scanner Scanner) {
	if r.scanners == nil {
		r.scanners = map[string]Scanner{}
	}
	r.scanners[scanner.Name()] = scanner
}

// Resolve returns a scanner by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Scanner, error) {
	if scanner, ok := r.scanners[name]; ok {
		return scanner, nil
	}
	return nil, fmt.Errorf("scanner %s is not registered", name)
}

package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"
)

const (
	configPathEnv  = "AQUASCANNER_CONFIG"
	logLevelEnv    = "AQUASCANNER_LOG_LEVEL"
	catalogPathEnv = "AQUASCANNER_CATALOG"
	sourcePathEnv  = "AQUASCANNER_SOURCE"
	sqlitePathEnv  = "AQUASCANNER_SQLITE"
)

// Configuration validation errors.
var (
	ErrInvalidLogLevel       = errors.New("logging.level must be one of: debug, info, warn, error")
	ErrInvalidAttempts       = errors.New("http.attempts must be at least 1")
	ErrInvalidDelay          = errors.New("http durations must be non-negative")
	ErrMissingCatalogPath    = errors.New("catalog.path is required")
	ErrInvalidCheckpoint     = errors.New("catalog checkpoint intervals must be at least 1")
	ErrInvalidBaseURL        = errors.New("extraction.baseUrl must be an absolute url")
	ErrInvalidImageWidth     = errors.New("extraction image widths must be positive")
	ErrInvalidSuggestScore   = errors.New("matcher.suggestMinScore must be within (0, 1]")
	ErrNoSites               = errors.New("at least one site is required")
	ErrSiteMissingScanner    = errors.New("site scanner is required")
	ErrSiteMissingCategories = errors.New("site needs at least one category")
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging    LoggingConfig    `yaml:"logging"`
	HTTP       HTTPConfig       `yaml:"http"`
	Catalog    CatalogConfig    `yaml:"catalog"`
	Source     SourceConfig     `yaml:"source"`
	Extraction ExtractionConfig `yaml:"extraction"`
	Matcher    MatcherConfig    `yaml:"matcher"`
	Sites      []SiteConfig     `yaml:"sites"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// HTTPConfig controls politeness and retries of page downloads.
type HTTPConfig struct {
	UserAgent        string        `yaml:"userAgent"`
	Timeout          time.Duration `yaml:"timeout"`
	Delay            time.Duration `yaml:"delay"`
	Attempts         int           `yaml:"attempts"`
	RetryWait        time.Duration `yaml:"retryWait"`
	CloudflareBypass bool          `yaml:"cloudflareBypass"`
}

// CatalogConfig locates the JSON catalog and its optional SQLite mirror.
type CatalogConfig struct {
	Path string `yaml:"path"`
	// Repair runs a malformed catalog through jsonrepair before decoding.
	Repair     bool   `yaml:"repair"`
	SQLitePath string `yaml:"sqlitePath"`

	CheckpointEvery        int `yaml:"checkpointEvery"`
	ReimageCheckpointEvery int `yaml:"reimageCheckpointEvery"`
	CardCheckpointPages    int `yaml:"cardCheckpointPages"`
	CardMaxPages           int `yaml:"cardMaxPages"`
}

// SourceConfig locates the generated data file updated by sync-source.
type SourceConfig struct {
	Path             string `yaml:"path"`
	ArrayName        string `yaml:"arrayName"`
	ReportPath       string `yaml:"reportPath"`
	DescriptionLimit int    `yaml:"descriptionLimit"`
}

type ExtractionConfig struct {
	BaseURL             string   `yaml:"baseUrl"`
	ArticlePath         string   `yaml:"articlePath"`
	ImageMinWidth       int      `yaml:"imageMinWidth"`
	CardImageMinWidth   int      `yaml:"cardImageMinWidth"`
	DescriptionLimit    int      `yaml:"descriptionLimit"`
	PlaceholderPatterns []string `yaml:"placeholderPatterns"`
	ChromePatterns      []string `yaml:"chromePatterns"`
}

type MatcherConfig struct {
	// Overrides map a source entry id to keywords of its catalog name.
	Overrides       map[string][]string `yaml:"overrides"`
	SuggestMinScore float64             `yaml:"suggestMinScore"`
}

// SiteConfig describes a single site with its scanner strategy.
type SiteConfig struct {
	Name       string            `yaml:"name"`
	Scanner    string            `yaml:"scanner"`
	Categories []CategoryConfig  `yaml:"categories"`
	MaxPages   int               `yaml:"maxPages"`
	Options    map[string]string `yaml:"options"`
}

// CategoryConfig holds the listing endpoints to crawl.
type CategoryConfig struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// Load builds the configuration: defaults, then the YAML file at path (or at
// $AQUASCANNER_CONFIG when path is empty), then environment overrides. The
// file is decoded over the defaults, so keys it omits keep their default and
// keys it sets win even when zero (`delay: 0s`, `repair: false`, `[]`).
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(configPathEnv)
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := mergo.Merge(&cfg, envOverrides(), mergo.WithOverride); err != nil {
		return Config{}, fmt.Errorf("apply environment overrides: %w", err)
	}
	return cfg, nil
}

// envOverrides collects settings from the environment. Unset variables stay
// empty and leave the loaded value alone.
func envOverrides() Config {
	var c Config
	c.Logging.Level = os.Getenv(logLevelEnv)
	c.Catalog.Path = os.Getenv(catalogPathEnv)
	c.Source.Path = os.Getenv(sourcePathEnv)
	c.Catalog.SQLitePath = os.Getenv(sqlitePathEnv)
	return c
}

// Validate checks the settings every command relies on.
func (c *Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Logging.Level)) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return ErrInvalidLogLevel
	}

	if c.HTTP.Attempts < 1 {
		return ErrInvalidAttempts
	}
	if c.HTTP.Timeout < 0 || c.HTTP.Delay < 0 || c.HTTP.RetryWait < 0 {
		return ErrInvalidDelay
	}

	if c.Catalog.Path == "" {
		return ErrMissingCatalogPath
	}
	if c.Catalog.CheckpointEvery < 1 || c.Catalog.ReimageCheckpointEvery < 1 || c.Catalog.CardCheckpointPages < 1 {
		return ErrInvalidCheckpoint
	}

	base, err := url.Parse(c.Extraction.BaseURL)
	if err != nil || !base.IsAbs() {
		return ErrInvalidBaseURL
	}
	if c.Extraction.ImageMinWidth < 1 || c.Extraction.CardImageMinWidth < 1 {
		return ErrInvalidImageWidth
	}

	if c.Matcher.SuggestMinScore <= 0 || c.Matcher.SuggestMinScore > 1 {
		return ErrInvalidSuggestScore
	}

	if len(c.Sites) == 0 {
		return ErrNoSites
	}
	for i, site := range c.Sites {
		if site.Scanner == "" {
			return fmt.Errorf("%w: sites[%d]", ErrSiteMissingScanner, i)
		}
		if len(site.Categories) == 0 {
			return fmt.Errorf("%w: sites[%d]", ErrSiteMissingCategories, i)
		}
	}
	return nil
}

// Default returns the settings used when no file overrides them.
func Default() Config {
	return Config{
		Logging: LoggingConfig{Level: "info"},
		HTTP: HTTPConfig{
			Timeout:   10 * time.Second,
			Delay:     time.Second,
			Attempts:  3,
			RetryWait: 2 * time.Second,
		},
		Catalog: CatalogConfig{
			Path:                   "fish_catalog.json",
			CheckpointEvery:        10,
			ReimageCheckpointEvery: 50,
			CardCheckpointPages:    10,
			CardMaxPages:           40,
		},
		Source: SourceConfig{
			Path:             "src/data/fishDatabase.ts",
			ArrayName:        "BASE_FISH_DATABASE",
			ReportPath:       "update_report.json",
			DescriptionLimit: 300,
		},
		Extraction: ExtractionConfig{
			BaseURL:             "https://fanfishka.ru",
			ArticlePath:         "/akvariumnye-stati/akvariumnye_rybki/",
			ImageMinWidth:       200,
			CardImageMinWidth:   150,
			DescriptionLimit:    1000,
			PlaceholderPatterns: []string{"sovmestimost", "баннер", "navigator", "реклам"},
			ChromePatterns: []string{
				"logo", "icon", "avatar", "banner", "thumb", "social",
				"share", "comment", "widget", "button", "arrow", "emoji",
			},
		},
		Matcher: MatcherConfig{SuggestMinScore: 0.8},
		Sites: []SiteConfig{
			{
				Name:    "fanfishka",
				Scanner: "fanfishka",
				Categories: []CategoryConfig{
					{Name: "akvariumnye_rybki", URL: "https://fanfishka.ru/akvariumnye-stati/akvariumnye_rybki/"},
				},
			},
		},
	}
}

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	t.Parallel()

	cfg := Default()
	require.NoError(t, cfg.Validate())
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
logging:
  level: debug
http:
  delay: 250ms
  cloudflareBypass: true
catalog:
  path: data/catalog.json
matcher:
  overrides:
    molly: ["моллинезия"]
sites:
  - name: mirror
    scanner: fanfishka
    maxPages: 5
    categories:
      - name: fish
        url: https://mirror.example/fish/
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, "debug", cfg.Logging.Level)
	require.Equal(t, 250*time.Millisecond, cfg.HTTP.Delay)
	require.True(t, cfg.HTTP.CloudflareBypass)
	require.Equal(t, 3, cfg.HTTP.Attempts)
	require.Equal(t, "data/catalog.json", cfg.Catalog.Path)
	require.Equal(t, 10, cfg.Catalog.CheckpointEvery)
	require.Equal(t, []string{"моллинезия"}, cfg.Matcher.Overrides["molly"])
	require.Len(t, cfg.Sites, 1)
	require.Equal(t, 5, cfg.Sites[0].MaxPages)
	require.Equal(t, "https://fanfishka.ru", cfg.Extraction.BaseURL)
	require.NoError(t, cfg.Validate())
}

func TestLoadKeepsExplicitZeroValues(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
http:
  delay: 0s
  retryWait: 0s
extraction:
  chromePatterns: []
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Zero(t, cfg.HTTP.Delay)
	require.Zero(t, cfg.HTTP.RetryWait)
	require.Equal(t, 10*time.Second, cfg.HTTP.Timeout, "keys absent from the file keep their default")
	require.Empty(t, cfg.Extraction.ChromePatterns)
	require.Equal(t, Default().Extraction.PlaceholderPatterns, cfg.Extraction.PlaceholderPatterns)
	require.NoError(t, cfg.Validate())
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv(configPathEnv, "")
	t.Setenv(logLevelEnv, "warn")
	t.Setenv(catalogPathEnv, "/tmp/catalog.json")
	t.Setenv(sourcePathEnv, "/tmp/fishDatabase.ts")
	t.Setenv(sqlitePathEnv, "/tmp/catalog.db")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "warn", cfg.Logging.Level)
	require.Equal(t, "/tmp/catalog.json", cfg.Catalog.Path)
	require.Equal(t, "/tmp/fishDatabase.ts", cfg.Source.Path)
	require.Equal(t, "/tmp/catalog.db", cfg.Catalog.SQLitePath)
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.True(t, errors.Is(err, os.ErrNotExist))
}

func TestValidate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{name: "log level", mutate: func(c *Config) { c.Logging.Level = "loud" }, want: ErrInvalidLogLevel},
		{name: "attempts", mutate: func(c *Config) { c.HTTP.Attempts = 0 }, want: ErrInvalidAttempts},
		{name: "delay", mutate: func(c *Config) { c.HTTP.Delay = -time.Second }, want: ErrInvalidDelay},
		{name: "catalog", mutate: func(c *Config) { c.Catalog.Path = "" }, want: ErrMissingCatalogPath},
		{name: "checkpoint", mutate: func(c *Config) { c.Catalog.ReimageCheckpointEvery = 0 }, want: ErrInvalidCheckpoint},
		{name: "base url", mutate: func(c *Config) { c.Extraction.BaseURL = "fanfishka.ru" }, want: ErrInvalidBaseURL},
		{name: "image width", mutate: func(c *Config) { c.Extraction.CardImageMinWidth = 0 }, want: ErrInvalidImageWidth},
		{name: "score", mutate: func(c *Config) { c.Matcher.SuggestMinScore = 1.5 }, want: ErrInvalidSuggestScore},
		{name: "no sites", mutate: func(c *Config) { c.Sites = nil }, want: ErrNoSites},
		{name: "scanner", mutate: func(c *Config) { c.Sites[0].Scanner = "" }, want: ErrSiteMissingScanner},
		{name: "categories", mutate: func(c *Config) { c.Sites[0].Categories = nil }, want: ErrSiteMissingCategories},
	}

	for _, tc := range cases {
		cfg := Default()
		tc.mutate(&cfg)
		err := cfg.Validate()
		if !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
}

func TestExampleConfigIsValid(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "configs", "aquascanner.example.yaml"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	require.Equal(t, "fish_catalog.db", cfg.Catalog.SQLitePath)
	require.Equal(t, []string{"гуппи", "guppy"}, cfg.Matcher.Overrides["guppy"])
	require.NotEmpty(t, cfg.Extraction.PlaceholderPatterns)
}

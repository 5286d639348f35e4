package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfline/catalog-enricher/internal/brand"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	d := Default()
	assert.Equal(t, d.Domains, cfg.Domains)
	assert.Equal(t, 5, cfg.CheckpointEvery)
	assert.Equal(t, 5, cfg.MaxImages)
	assert.Equal(t, 1500*time.Millisecond, cfg.MinInterval)
	assert.Equal(t, "ar", cfg.TitleLanguage)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "enricher.yaml")
	content := `
input: products.csv
domains: [" Amazon.AE ", amazon.sa, amazon.ae]
checkpoint_every: 10
min_interval: 2s
row_delay: 500ms
log_level: DEBUG
brand_patterns:
  - pattern: '\b(SUNSILK)\b'
  - pattern: 'J&J'
    name: "Johnson's"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)

	assert.Equal(t, "products.csv", cfg.Input)
	assert.Equal(t, []string{"amazon.ae", "amazon.sa"}, cfg.Domains)
	assert.Equal(t, 10, cfg.CheckpointEvery)
	assert.Equal(t, 2*time.Second, cfg.MinInterval)
	assert.Equal(t, 500*time.Millisecond, cfg.RowDelay)
	assert.Equal(t, 5, cfg.MaxImages, "unset keys keep their defaults")
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
	require.Len(t, cfg.BrandPatterns, 2)
	assert.Equal(t, brand.Pattern{Expr: "J&J", Name: "Johnson's"}, cfg.BrandPatterns[1])
	require.NoError(t, cfg.ValidateRun())

	e, err := cfg.BrandExtractor()
	require.NoError(t, err)
	got, ok := e.Extract("Sunsilk shampoo")
	assert.True(t, ok)
	assert.Equal(t, "SUNSILK", got)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_Environment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("ENRICHER_MAX_IMAGES", "8")
	t.Setenv("ENRICHER_TIMEOUT", "45s")

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.MaxImages)
	assert.Equal(t, 45*time.Second, cfg.Timeout)
}

func TestValidateRun(t *testing.T) {
	valid := Default()
	valid.Input = "in.csv"

	tests := []struct {
		name     string
		mutate   func(c *Config)
		expected error
	}{
		{"valid", func(c *Config) {}, nil},
		{"missing input", func(c *Config) { c.Input = "" }, ErrMissingInput},
		{"no domains", func(c *Config) { c.Domains = nil }, ErrNoDomains},
		{"checkpoint", func(c *Config) { c.CheckpointEvery = 0 }, ErrInvalidCheckpointEvery},
		{"max images", func(c *Config) { c.MaxImages = 0 }, ErrInvalidMaxImages},
		{"window", func(c *Config) { c.SearchWindow = -1 }, ErrInvalidSearchWindow},
		{"language", func(c *Config) { c.ListingLanguage = "" }, ErrInvalidLanguage},
		{"log level", func(c *Config) { c.LogLevel = "verbose" }, ErrInvalidLogLevel},
		{"negative start", func(c *Config) { c.Start = -1 }, ErrInvalidRowRange},
		{"end before start", func(c *Config) { c.Start, c.End = 5, 5 }, ErrInvalidRowRange},
		{"negative delay", func(c *Config) { c.RowDelay = -time.Second }, ErrInvalidDuration},
		{"bad pattern", func(c *Config) { c.BrandPatterns = []brand.Pattern{{Expr: "("}} }, ErrInvalidBrandPattern},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			c.Domains = append([]string(nil), valid.Domains...)
			tt.mutate(&c)

			err := c.ValidateRun()
			if tt.expected == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.expected), "expected %v, got %v", tt.expected, err)
		})
	}
}

func TestOutputAndReportPath(t *testing.T) {
	c := Config{Input: "exports/products.csv"}
	assert.Equal(t, "exports/products_with_additional_images.csv", c.OutputPath())
	assert.Equal(t, "exports/products_with_additional_images.csv.report.yaml", c.ReportPath())

	c.Output, c.Report = "out.parquet", "run.yaml"
	assert.Equal(t, "out.parquet", c.OutputPath())
	assert.Equal(t, "run.yaml", c.ReportPath())
}

// Package config provides configuration for enrichment runs.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/shelfline/catalog-enricher/internal/brand"
)

// Configuration validation errors.
var (
	ErrMissingInput           = errors.New("input catalog path is required")
	ErrNoDomains              = errors.New("at least one listing domain is required")
	ErrInvalidCheckpointEvery = errors.New("checkpoint_every must be at least 1")
	ErrInvalidMaxImages       = errors.New("max_images must be at least 1")
	ErrInvalidSearchWindow    = errors.New("search_window must be at least 1")
	ErrInvalidLanguage        = errors.New("listing_language is required")
	ErrInvalidLogLevel        = errors.New("log_level must be one of: debug, info, warn, error")
	ErrInvalidRowRange        = errors.New("start must be non-negative and end, when set, greater than start")
	ErrInvalidDuration        = errors.New("intervals and timeouts must be non-negative")
	ErrInvalidBrandPattern    = errors.New("invalid brand pattern")
)

// EnvPrefix prefixes environment overrides, e.g. ENRICHER_MAX_IMAGES.
const EnvPrefix = "ENRICHER"

// DefaultFile is read from the working directory when no --config is given.
const DefaultFile = "enricher.yaml"

// Config is the immutable configuration of one process.
type Config struct {
	Input  string `mapstructure:"input" yaml:"input"`
	Output string `mapstructure:"output" yaml:"output"`
	Report string `mapstructure:"report" yaml:"report"`

	Domains         []string `mapstructure:"domains" yaml:"domains"`
	ListingLanguage string   `mapstructure:"listing_language" yaml:"listing_language"`
	// TitleLanguage is fetched for a localized title only. Empty disables it.
	TitleLanguage string `mapstructure:"title_language" yaml:"title_language"`

	MaxImages       int `mapstructure:"max_images" yaml:"max_images"`
	SearchWindow    int `mapstructure:"search_window" yaml:"search_window"`
	CheckpointEvery int `mapstructure:"checkpoint_every" yaml:"checkpoint_every"`

	MinInterval time.Duration `mapstructure:"min_interval" yaml:"min_interval"`
	Jitter      time.Duration `mapstructure:"jitter" yaml:"jitter"`
	RowDelay    time.Duration `mapstructure:"row_delay" yaml:"row_delay"`
	Timeout     time.Duration `mapstructure:"timeout" yaml:"timeout"`

	UserAgents []string `mapstructure:"user_agents" yaml:"user_agents,omitempty"`

	// Rows [Start, End) are processed; End 0 means the whole catalog.
	Start int `mapstructure:"start" yaml:"start"`
	End   int `mapstructure:"end" yaml:"end"`

	LogLevel    string `mapstructure:"log_level" yaml:"log_level"`
	MetricsAddr string `mapstructure:"metrics_addr" yaml:"metrics_addr,omitempty"`

	// BrandPatterns are matched before the built-in brand table.
	BrandPatterns []brand.Pattern `mapstructure:"brand_patterns" yaml:"brand_patterns,omitempty"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Domains:         []string{"amazon.sa", "amazon.ae", "amazon.eg"},
		ListingLanguage: "en",
		TitleLanguage:   "ar",
		MaxImages:       5,
		SearchWindow:    10,
		CheckpointEvery: 5,
		MinInterval:     1500 * time.Millisecond,
		Jitter:          time.Second,
		RowDelay:        time.Second,
		Timeout:         30 * time.Second,
		LogLevel:        "info",
	}
}

// SetDefaults registers every key with v so environment overrides apply.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("input", d.Input)
	v.SetDefault("output", d.Output)
	v.SetDefault("report", d.Report)
	v.SetDefault("domains", d.Domains)
	v.SetDefault("listing_language", d.ListingLanguage)
	v.SetDefault("title_language", d.TitleLanguage)
	v.SetDefault("max_images", d.MaxImages)
	v.SetDefault("search_window", d.SearchWindow)
	v.SetDefault("checkpoint_every", d.CheckpointEvery)
	v.SetDefault("min_interval", d.MinInterval)
	v.SetDefault("jitter", d.Jitter)
	v.SetDefault("row_delay", d.RowDelay)
	v.SetDefault("timeout", d.Timeout)
	v.SetDefault("user_agents", d.UserAgents)
	v.SetDefault("start", d.Start)
	v.SetDefault("end", d.End)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("metrics_addr", d.MetricsAddr)
}

// Load reads configuration from path (or DefaultFile when present), the
// environment and whatever flags are already bound to v.
func Load(v *viper.Viper, path string) (Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			path = DefaultFile
		}
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode configuration: %w", err)
	}
	cfg.normalize()
	return cfg, nil
}

func (c *Config) normalize() {
	var domains []string
	for _, d := range c.Domains {
		d = strings.ToLower(strings.TrimSpace(d))
		if d != "" && !slices.Contains(domains, d) {
			domains = append(domains, d)
		}
	}
	c.Domains = domains
	c.ListingLanguage = strings.ToLower(strings.TrimSpace(c.ListingLanguage))
	c.TitleLanguage = strings.ToLower(strings.TrimSpace(c.TitleLanguage))
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
}

// Validate checks settings shared by every command.
func (c Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: got %q", ErrInvalidLogLevel, c.LogLevel)
	}
	if _, err := c.BrandExtractor(); err != nil {
		return err
	}
	return nil
}

// ValidateRun additionally checks the settings of a network enrichment run.
func (c Config) ValidateRun() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(c.Input) == "" {
		return ErrMissingInput
	}
	if len(c.Domains) == 0 {
		return ErrNoDomains
	}
	if c.ListingLanguage == "" {
		return ErrInvalidLanguage
	}
	if c.CheckpointEvery < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidCheckpointEvery, c.CheckpointEvery)
	}
	if c.MaxImages < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidMaxImages, c.MaxImages)
	}
	if c.SearchWindow < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidSearchWindow, c.SearchWindow)
	}
	if c.Start < 0 || (c.End != 0 && c.End <= c.Start) {
		return fmt.Errorf("%w: start=%d end=%d", ErrInvalidRowRange, c.Start, c.End)
	}
	if c.MinInterval < 0 || c.Jitter < 0 || c.RowDelay < 0 || c.Timeout < 0 {
		return ErrInvalidDuration
	}
	return nil
}

// BrandExtractor compiles the configured patterns ahead of the built-in table.
func (c Config) BrandExtractor() (*brand.Extractor, error) {
	patterns := append(slices.Clone(c.BrandPatterns), brand.DefaultPatterns()...)
	e, err := brand.NewExtractor(patterns)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidBrandPattern, err)
	}
	return e, nil
}

// OutputPath is the configured output, or the input name with a suffix.
func (c Config) OutputPath() string {
	if c.Output != "" {
		return c.Output
	}
	ext := filepath.Ext(c.Input)
	return strings.TrimSuffix(c.Input, ext) + "_with_additional_images" + ext
}

// ReportPath is the configured report path, or one next to the output.
func (c Config) ReportPath() string {
	if c.Report != "" {
		return c.Report
	}
	return c.OutputPath() + ".report.yaml"
}

// SlogLevel maps LogLevel onto a slog level. Unknown values mean info.
func (c Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

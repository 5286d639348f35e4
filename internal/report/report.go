// Package report writes a YAML record of an enrichment run.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/shelfline/catalog-enricher/internal/config"
	"github.com/shelfline/catalog-enricher/internal/enrich"
)

// RunConfig is the configuration section of the report.
type RunConfig struct {
	Input           string   `yaml:"input"`
	Output          string   `yaml:"output"`
	Domains         []string `yaml:"domains"`
	ListingLanguage string   `yaml:"listing_language"`
	TitleLanguage   string   `yaml:"title_language,omitempty"`
	MaxImages       int      `yaml:"max_images"`
	SearchWindow    int      `yaml:"search_window"`
	CheckpointEvery int      `yaml:"checkpoint_every"`
	MinInterval     string   `yaml:"min_interval"`
	Jitter          string   `yaml:"jitter"`
	RowDelay        string   `yaml:"row_delay"`
	Start           int      `yaml:"start"`
	End             int      `yaml:"end,omitempty"`
}

// Totals summarises a run.
type Totals struct {
	Rows           int            `yaml:"rows"`
	Processed      int            `yaml:"processed"`
	Persisted      int            `yaml:"persisted"`
	Skipped        int            `yaml:"skipped"`
	Checkpoints    int            `yaml:"checkpoints"`
	ImagesAdded    int            `yaml:"images_added"`
	MainImagesSet  int            `yaml:"main_images_set"`
	NamesLocalized int            `yaml:"names_localized"`
	SkipReasons    map[string]int `yaml:"skip_reasons,omitempty"`
}

// Report is the complete run document.
type Report struct {
	RunID      string           `yaml:"run_id"`
	StartedAt  string           `yaml:"started_at"`
	FinishedAt string           `yaml:"finished_at"`
	Elapsed    string           `yaml:"elapsed"`
	Cancelled  bool             `yaml:"cancelled,omitempty"`
	Config     RunConfig        `yaml:"config"`
	Totals     Totals           `yaml:"totals"`
	Rows       []enrich.Outcome `yaml:"rows"`
}

// New builds a report from a run summary.
func New(cfg config.Config, sum enrich.Summary) Report {
	return Report{
		RunID:      sum.RunID,
		StartedAt:  sum.StartedAt.Format(time.RFC3339),
		FinishedAt: sum.FinishedAt.Format(time.RFC3339),
		Elapsed:    sum.FinishedAt.Sub(sum.StartedAt).Round(time.Millisecond).String(),
		Cancelled:  sum.Cancelled,
		Config: RunConfig{
			Input:           cfg.Input,
			Output:          cfg.OutputPath(),
			Domains:         cfg.Domains,
			ListingLanguage: cfg.ListingLanguage,
			TitleLanguage:   cfg.TitleLanguage,
			MaxImages:       cfg.MaxImages,
			SearchWindow:    cfg.SearchWindow,
			CheckpointEvery: cfg.CheckpointEvery,
			MinInterval:     cfg.MinInterval.String(),
			Jitter:          cfg.Jitter.String(),
			RowDelay:        cfg.RowDelay.String(),
			Start:           cfg.Start,
			End:             cfg.End,
		},
		Totals: Totals{
			Rows:           sum.Rows,
			Processed:      sum.Processed,
			Persisted:      sum.Persisted,
			Skipped:        sum.Skipped,
			Checkpoints:    sum.Checkpoints,
			ImagesAdded:    sum.ImagesAdded,
			MainImagesSet:  sum.MainImagesSet,
			NamesLocalized: sum.NamesLocalized,
			SkipReasons:    sum.SkipReasons,
		},
		Rows: sum.Outcomes,
	}
}

// Save writes r to path as YAML, creating parent directories.
func Save(path string, r Report) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}

	data, err := yaml.Marshal(&r)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	return nil
}

// Load reads a report written by Save.
func Load(path string) (Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Report{}, fmt.Errorf("failed to read report: %w", err)
	}
	var r Report
	if err := yaml.Unmarshal(data, &r); err != nil {
		return Report{}, fmt.Errorf("failed to parse report: %w", err)
	}
	return r, nil
}

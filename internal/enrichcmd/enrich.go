package enrichcmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/shelfline/catalog-enricher/internal/catalog"
	"github.com/shelfline/catalog-enricher/internal/config"
	"github.com/shelfline/catalog-enricher/internal/detail"
	"github.com/shelfline/catalog-enricher/internal/enrich"
	"github.com/shelfline/catalog-enricher/internal/metrics"
	"github.com/shelfline/catalog-enricher/internal/pacing"
	"github.com/shelfline/catalog-enricher/internal/report"
	"github.com/shelfline/catalog-enricher/internal/resolver"
	"github.com/shelfline/catalog-enricher/internal/webclient"
)

// NewEnrichCmd creates the enrich command
func NewEnrichCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "enrich [input]",
		Short: "Enrich a product catalog with listing images and localized titles",
		Long: `Walk every row of a product catalog, locate the product on the configured
listing domains, and merge discovered images, descriptions and a localized
title back into the row.

The catalog is flushed to the output file every --checkpoint-every rows and
once more at the end, so an interrupted run keeps everything processed so far.
A per-row YAML report is written next to the output.`,
		Example: `  # Enrich a CSV catalog with the default domains
  enricher enrich products.csv

  # Only the Saudi store, checkpoint every 10 rows, resume at row 200
  enricher enrich products.csv --domains amazon.sa --checkpoint-every 10 --start 200

  # Parquet in, parquet out, with metrics on :9090
  enricher enrich products.parquet --output enriched.parquet --metrics-addr :9090`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, args)
			if err != nil {
				return err
			}
			return executeEnrich(cmd.Context(), cfg)
		},
	}

	cmd.Flags().String("input", "", "Input catalog path (.csv or .parquet)")
	addRunFlags(cmd)

	return cmd
}

func executeEnrich(ctx context.Context, cfg config.Config) error {
	if err := cfg.ValidateRun(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	in, err := catalog.NewFileStore(cfg.Input)
	if err != nil {
		return err
	}
	out, err := catalog.NewFileStore(cfg.OutputPath())
	if err != nil {
		return err
	}

	cat, err := in.Load()
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	slog.Info("Loaded catalog", "path", in.Path(), "rows", cat.Len())

	brands, err := cfg.BrandExtractor()
	if err != nil {
		return err
	}

	var m *metrics.EnrichMetrics
	if cfg.MetricsAddr != "" {
		m, err = metrics.NewEnrichMetrics(prometheus.NewRegistry())
		if err != nil {
			return fmt.Errorf("failed to create metrics: %w", err)
		}
		srv, err := startMetricsServer(cfg.MetricsAddr, m.Handler())
		if err != nil {
			return fmt.Errorf("failed to start metrics server: %w", err)
		}
		defer srv.Stop()
	}

	client := webclient.New(cfg.Timeout, pacing.New(cfg.MinInterval, cfg.Jitter), cfg.UserAgents)
	runner := enrich.NewRunner(
		enrich.OptionsFromConfig(cfg),
		brands,
		resolver.New(resolver.NewDuckDuckGo(client), cfg.SearchWindow),
		detail.NewFetcher(client, cfg.MaxImages),
		out,
		m,
	)

	sum, runErr := runner.Run(ctx, cat)

	reportPath := cfg.ReportPath()
	if err := report.Save(reportPath, report.New(cfg, sum)); err != nil {
		slog.Warn("Failed to write run report", "path", reportPath, "err", err)
		reportPath = ""
	}

	printSummary(sum, out.Path(), reportPath)

	if runErr != nil {
		if errors.Is(runErr, context.Canceled) && sum.Cancelled {
			slog.Warn("Run interrupted; progress saved", "output", out.Path(), "processed", sum.Processed)
			return nil
		}
		return runErr
	}
	return nil
}

func printSummary(sum enrich.Summary, output, reportPath string) {
	fmt.Printf("\n=== Enrichment Summary ===\n")
	fmt.Printf("Run: %s\n", sum.RunID)
	fmt.Printf("Rows processed: %d of %d\n", sum.Processed, sum.Rows)
	fmt.Printf("Persisted: %d\n", sum.Persisted)
	fmt.Printf("Skipped: %d\n", sum.Skipped)
	for _, reason := range sortedReasons(sum.SkipReasons) {
		fmt.Printf("  %s: %d\n", reason, sum.SkipReasons[reason])
	}
	fmt.Printf("Images added: %d\n", sum.ImagesAdded)
	fmt.Printf("Main images set: %d\n", sum.MainImagesSet)
	fmt.Printf("Names localized: %d\n", sum.NamesLocalized)
	fmt.Printf("Checkpoints: %d\n", sum.Checkpoints)
	fmt.Printf("Output: %s\n", output)
	if reportPath != "" {
		fmt.Printf("Report: %s\n", reportPath)
	}
	if sum.Cancelled {
		fmt.Printf("Run was interrupted before the last row\n")
	}
}

func sortedReasons(reasons map[string]int) []string {
	return slices.Sorted(maps.Keys(reasons))
}

package enrichcmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/shelfline/catalog-enricher/internal/config"
)

// loadConfig layers defaults, the config file, ENRICHER_* variables and the
// command's flags, then installs the process logger. A positional input
// argument overrides every other source.
func loadConfig(cmd *cobra.Command, args []string) (config.Config, error) {
	v := viper.New()
	var bindErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if bindErr == nil {
			bindErr = v.BindPFlag(strings.ReplaceAll(f.Name, "-", "_"), f)
		}
	})
	if bindErr != nil {
		return config.Config{}, fmt.Errorf("failed to bind flags: %w", bindErr)
	}
	if len(args) > 0 {
		v.Set("input", args[0])
	}

	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(v, path)
	if err != nil {
		return config.Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}

	setupLogger(cfg)
	return cfg, nil
}

func setupLogger(cfg config.Config) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)
}

// addRunFlags registers the flags of commands that call the listing site.
func addRunFlags(cmd *cobra.Command) {
	d := config.Default()
	f := cmd.Flags()
	f.String("output", "", "Output catalog path (default: <input>_with_additional_images.<ext>)")
	f.String("report", "", "Run report path (default: <output>.report.yaml)")
	f.StringSlice("domains", d.Domains, "Listing domains to try, in order")
	f.String("listing-language", d.ListingLanguage, "Language of listing pages used for images and descriptions")
	f.String("title-language", d.TitleLanguage, "Language fetched for a localized title (empty to disable)")
	f.Int("max-images", d.MaxImages, "Maximum images taken from one listing")
	f.Int("search-window", d.SearchWindow, "Search result links inspected per domain")
	f.Int("checkpoint-every", d.CheckpointEvery, "Rows processed between catalog flushes")
	f.Duration("min-interval", d.MinInterval, "Minimum time between network operations")
	f.Duration("jitter", d.Jitter, "Random extra delay added before each network operation")
	f.Duration("row-delay", d.RowDelay, "Pause between rows")
	f.Duration("timeout", d.Timeout, "Per-request timeout")
	f.Int("start", d.Start, "First row to process (0-based)")
	f.Int("end", d.End, "Row to stop before (0 for the whole catalog)")
	f.String("metrics-addr", "", "Serve Prometheus metrics on this address while running (e.g. :9090)")
}

package enrichcmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/shelfline/catalog-enricher/internal/brand"
	"github.com/shelfline/catalog-enricher/internal/catalog"
)

const (
	nameWidth  = 48
	brandWidth = 18
)

// NewInspectCmd creates the inspect command
func NewInspectCmd() *cobra.Command {
	var limit int
	var lang string

	cmd := &cobra.Command{
		Use:   "inspect <input>",
		Short: "Show the image and title coverage of a catalog",
		Long: `Print one line per row with the detected brand, whether a main image is set,
the number of additional images and whether a localized title exists,
followed by catalog totals.`,
		Example: `  # Inspect the first 20 rows of an enriched catalog
  enricher inspect products_with_additional_images.csv --limit 20`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, args)
			if err != nil {
				return err
			}
			brands, err := cfg.BrandExtractor()
			if err != nil {
				return err
			}
			if lang == "" {
				lang = cfg.TitleLanguage
			}
			return executeInspect(os.Stdout, args[0], brands, lang, limit)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Number of rows to list (0 lists all)")
	cmd.Flags().StringVar(&lang, "lang", "", "Language of the localized title column to report (default: title-language)")

	return cmd
}

// coverage counts rows with each kind of enrichment.
type coverage struct {
	Rows           int
	WithMain       int
	WithAdditional int
	Images         int
	Localized      int
}

func executeInspect(w io.Writer, input string, brands *brand.Extractor, lang string, limit int) error {
	store, err := catalog.NewFileStore(input)
	if err != nil {
		return err
	}
	cat, err := store.Load()
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	writeInspectTable(w, cat, brands, lang, limit)
	return nil
}

func writeInspectTable(w io.Writer, cat *catalog.Catalog, brands *brand.Extractor, lang string, limit int) coverage {
	fmt.Fprintf(w, "%5s  %s  %s  %4s  %5s  %s\n",
		"ROW", cell("PRODUCT", nameWidth), cell("BRAND", brandWidth), "MAIN", "EXTRA", strings.ToUpper(lang))

	var cov coverage
	for i, rec := range cat.Records {
		cov.Rows++
		hasMain := rec.HasMainImage()
		localized := lang != "" && strings.TrimSpace(rec.LocalizedName(lang)) != ""
		if hasMain {
			cov.WithMain++
		}
		if len(rec.AdditionalImages) > 0 {
			cov.WithAdditional++
		}
		cov.Images += len(rec.AdditionalImages)
		if localized {
			cov.Localized++
		}

		if limit > 0 && i >= limit {
			continue
		}
		b, _ := brands.Extract(rec.Name)
		fmt.Fprintf(w, "%5d  %s  %s  %4s  %5d  %s\n",
			i, cell(rec.Name, nameWidth), cell(b, brandWidth), mark(hasMain), len(rec.AdditionalImages), mark(localized))
	}

	fmt.Fprintf(w, "\nRows: %d\n", cov.Rows)
	fmt.Fprintf(w, "With main image: %d (%.1f%%)\n", cov.WithMain, percent(cov.WithMain, cov.Rows))
	fmt.Fprintf(w, "With additional images: %d (%.1f%%), %d images total\n", cov.WithAdditional, percent(cov.WithAdditional, cov.Rows), cov.Images)
	if lang != "" {
		fmt.Fprintf(w, "With %s title: %d (%.1f%%)\n", lang, cov.Localized, percent(cov.Localized, cov.Rows))
	}
	return cov
}

// cell truncates and pads s to width terminal columns. Arabic and CJK names
// are measured by display width, not bytes.
func cell(s string, width int) string {
	return runewidth.FillRight(runewidth.Truncate(s, width, "…"), width)
}

func mark(ok bool) string {
	if ok {
		return "yes"
	}
	return "-"
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}

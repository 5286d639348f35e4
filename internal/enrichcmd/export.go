package enrichcmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shelfline/catalog-enricher/internal/catalog"
	"github.com/shelfline/catalog-enricher/internal/magento"
)

// Export formats.
const (
	FormatMagento = "magento"
	FormatCSV     = "csv"
	FormatParquet = "parquet"
)

var errUnknownFormat = errors.New("unknown export format")

// NewExportCmd creates the export command
func NewExportCmd() *cobra.Command {
	var format, output string

	cmd := &cobra.Command{
		Use:   "export <input>",
		Short: "Export a catalog as a Magento import file or another catalog format",
		Long: `Convert an enriched catalog.

  magento  Magento 2 product import CSV. Rows sharing a barcode are collapsed,
           SKUs are generated for rows without one, and images are joined
           with the Magento separator.
  csv      The catalog itself as UTF-8 CSV with a byte order mark.
  parquet  The catalog itself as parquet.`,
		Example: `  # Magento import file
  enricher export products_with_additional_images.csv --format magento --output magento.csv

  # Convert a parquet catalog to CSV
  enricher export products.parquet --format csv --output products.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := loadConfig(cmd, args); err != nil {
				return err
			}
			if output == "" {
				output = exportPath(args[0], format)
			}
			return executeExport(args[0], format, output)
		},
	}

	cmd.Flags().StringVar(&format, "format", FormatMagento, "Export format (magento, csv, parquet)")
	cmd.Flags().StringVar(&output, "output", "", "Output file (default: derived from the input name)")

	return cmd
}

func exportPath(input, format string) string {
	base := strings.TrimSuffix(input, filepath.Ext(input))
	switch format {
	case FormatMagento:
		return base + "_magento.csv"
	case FormatParquet:
		return base + ".parquet"
	default:
		return base + "_export.csv"
	}
}

func executeExport(input, format, output string) error {
	in, err := catalog.NewFileStore(input)
	if err != nil {
		return err
	}
	cat, err := in.Load()
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	switch format {
	case FormatMagento:
		products := magento.Map(cat.Records)
		if err := writeMagento(output, products); err != nil {
			return err
		}
		slog.Info("Exported Magento import file", "output", output, "rows", cat.Len(), "products", len(products))
		fmt.Printf("Products: %d (from %d rows)\n", len(products), cat.Len())
	case FormatCSV, FormatParquet:
		out, err := catalog.NewFileStore(output)
		if err != nil {
			return err
		}
		if got, _ := catalog.DetectFormat(output); got != catalog.Format(format) {
			return fmt.Errorf("output %s does not match format %s", output, format)
		}
		if err := out.Save(cat); err != nil {
			return fmt.Errorf("failed to save catalog: %w", err)
		}
		slog.Info("Exported catalog", "output", output, "format", format, "rows", cat.Len())
		fmt.Printf("Rows: %d\n", cat.Len())
	default:
		return fmt.Errorf("%w: %s", errUnknownFormat, format)
	}

	fmt.Printf("Output: %s\n", output)
	return nil
}

func writeMagento(path string, products []magento.Product) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if err := magento.WriteCSV(file, products); err != nil {
		file.Close()
		return fmt.Errorf("failed to write Magento file: %w", err)
	}
	return file.Close()
}

package enrichcmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shelfline/catalog-enricher/internal/brand"
	"github.com/shelfline/catalog-enricher/internal/query"
)

// NewBrandCmd creates the brand command
func NewBrandCmd() *cobra.Command {
	var category, subcategory string

	cmd := &cobra.Command{
		Use:   "brand <product name>",
		Short: "Show the brand and search query derived from a product name",
		Long: `Run brand extraction and query construction for a single product name
without calling any listing site. Useful for tuning brand_patterns.`,
		Example: `  enricher brand "NIVEA Body Lotion 400ml" --subcategory Body
  enricher brand Johnson Baby Oil`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, nil)
			if err != nil {
				return err
			}
			brands, err := cfg.BrandExtractor()
			if err != nil {
				return err
			}
			return executeBrand(os.Stdout, brands, strings.Join(args, " "), category, subcategory)
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "Main category of the product")
	cmd.Flags().StringVar(&subcategory, "subcategory", "", "Sub-category of the product")

	return cmd
}

func executeBrand(w io.Writer, brands *brand.Extractor, name, category, subcategory string) error {
	b, found := brands.Extract(name)
	if found {
		fmt.Fprintf(w, "Brand: %s\n", b)
	} else {
		fmt.Fprintf(w, "Brand: (none)\n")
	}
	fmt.Fprintf(w, "Query: %s\n", query.Build(name, b, category, subcategory))
	return nil
}

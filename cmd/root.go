package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/shelfline/catalog-enricher/internal/config"
	"github.com/shelfline/catalog-enricher/internal/enrichcmd"
)

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "enricher",
		Short: "Product catalog enrichment with listing images and localized titles",
		Long: `Enricher fills gaps in a product catalog by locating each product on
marketplace listing sites and merging the images, descriptions and
localized titles it finds into the catalog, without ever overwriting
curated data.

Settings come from flags, ENRICHER_* environment variables, a .env file
and an optional enricher.yaml, in that order of precedence.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
		},
	}

	cmd.PersistentFlags().String("config", "", "Config file (default: ./"+config.DefaultFile+" when present)")
	cmd.PersistentFlags().String("log-level", config.Default().LogLevel, "Log level (debug, info, warn, error)")

	cmd.AddCommand(enrichcmd.NewEnrichCmd())
	cmd.AddCommand(newCatalogCmd())

	return cmd
}

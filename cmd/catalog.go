package cmd

import (
	"github.com/spf13/cobra"

	"github.com/shelfline/catalog-enricher/internal/enrichcmd"
)

func newCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Offline catalog tools",
		Long: `Tools that work on a catalog file without calling any listing site:
normalizing stored images, inspecting coverage, checking brand detection
and exporting to other formats.`,
	}

	cmd.AddCommand(enrichcmd.NewNormalizeCmd())
	cmd.AddCommand(enrichcmd.NewInspectCmd())
	cmd.AddCommand(enrichcmd.NewBrandCmd())
	cmd.AddCommand(enrichcmd.NewExportCmd())

	return cmd
}

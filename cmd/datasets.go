package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fbcdesk/fbcdesk/internal/app"
	"github.com/fbcdesk/fbcdesk/internal/catalog"
)

var datasetsCmd = &cobra.Command{
	Use:   "datasets",
	Short: "List registered data sources",
	RunE:  runDatasets,
}

func init() {
	rootCmd.AddCommand(datasetsCmd)
}

func runDatasets(_ *cobra.Command, _ []string) error {
	// Listing needs only the registry; no provider or store setup.
	printRegistry(catalog.Default())
	return nil
}

func printDatasets(a *app.App) {
	printRegistry(a.Registry)
}

func printRegistry(registry *catalog.Registry) {
	for _, d := range registry.All() {
		fmt.Printf("%-16s %-8s %s\n", d.Name, d.Kind, strings.Join(d.Keywords, ", "))
		if len(d.Columns) > 0 {
			fmt.Printf("%-16s %-8s columns: %s\n", "", "", strings.Join(d.Columns, ", "))
		}
	}
}

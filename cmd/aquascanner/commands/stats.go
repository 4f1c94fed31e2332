package commands

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"AquaScanner/internal/domain"
)

var statsMissing bool

func init() {
	statsCmd.Flags().BoolVar(&statsMissing, "missing", false, "List fish that still need an image.")
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(exportCmd)
}

var statsCmd = &cobra.Command{
	Use:   "stats [--missing]",
	Short: "Prints catalog counts and image coverage.",
	RunE: func(cmd *cobra.Command, args []string) error {
		stats, err := application.Stats(cmd.Context())
		if err != nil {
			return err
		}

		printCounts("Catalog", []countRow{
			{"Records", stats.Records},
			{"Fish", stats.Fish},
			{"Freshwater", stats.Freshwater},
			{"Marine", stats.Marine},
			{"With image", stats.WithImage},
			{"Placeholder image", stats.PlaceholderImage},
			{"Without image", stats.WithoutImage},
		})

		if !statsMissing {
			return nil
		}

		records, err := application.Catalog(cmd.Context())
		if err != nil {
			return err
		}
		stale := application.StalePatterns()

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.SetTitle("Fish without image")
		t.AppendHeader(table.Row{"ID", "Name", "Image"})
		for _, rec := range domain.FilterFish(records) {
			if rec.NeedsImage(stale) {
				t.AppendRow(table.Row{rec.ID, truncate(rec.NameRU), truncate(rec.ImageURL)})
			}
		}
		t.SetStyle(table.StyleRounded)
		t.Render()
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Writes the catalog into the SQLite mirror.",
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := application.Export(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("exported %d records\n", n)
		return nil
	},
}

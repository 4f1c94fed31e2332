package commands

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	syncDryRun  bool
	syncVerbose bool
)

func init() {
	syncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "Match and report without writing the data file or the report.")
	syncCmd.Flags().BoolVarP(&syncVerbose, "verbose", "v", false, "Also list every applied update.")
	rootCmd.AddCommand(syncCmd)
}

var syncCmd = &cobra.Command{
	Use:   "sync-source [--dry-run] [-v]",
	Short: "Copies descriptions and images from the catalog into the app data file.",
	RunE: func(cmd *cobra.Command, args []string) error {
		report, err := application.SyncSource(cmd.Context(), syncDryRun)
		if err != nil {
			return err
		}

		printCounts("Sync", []countRow{
			{"Entries", report.Total},
			{"Matched", report.Found},
			{"Not found", len(report.NotFound)},
		})

		if syncVerbose && len(report.Updates) > 0 {
			t := table.NewWriter()
			t.SetOutputMirror(os.Stdout)
			t.SetTitle("Updates")
			t.AppendHeader(table.Row{"Entry", "Catalog", "Matched by", "Image", "Description"})
			for _, u := range report.Updates {
				t.AppendRow(table.Row{
					truncate(u.FishName),
					fmt.Sprintf("#%d %s", u.CatalogID, truncate(u.CatalogName)),
					u.MatchedBy,
					mark(u.ImageUpdated),
					mark(u.DescriptionUpdated),
				})
			}
			t.SetStyle(table.StyleRounded)
			t.Render()
		}

		if len(report.NotFound) > 0 {
			t := table.NewWriter()
			t.SetOutputMirror(os.Stdout)
			t.SetTitle("Not found")
			t.AppendHeader(table.Row{"ID", "Name", "Suggestion", "Score"})
			for _, m := range report.NotFound {
				suggestion, score := "", ""
				if m.SuggestedID != 0 {
					suggestion = fmt.Sprintf("#%d %s", m.SuggestedID, truncate(m.SuggestedName))
					score = fmt.Sprintf("%.2f", m.SuggestionScore)
				}
				t.AppendRow(table.Row{m.ID, truncate(m.Name), suggestion, score})
			}
			t.SetStyle(table.StyleRounded)
			t.Render()
		}
		return nil
	},
}

func mark(b bool) string {
	if b {
		return "yes"
	}
	return ""
}

package commands

import (
	"github.com/spf13/cobra"

	"AquaScanner/internal/usecase"
)

var collectOpts usecase.CollectOptions

func init() {
	collectCmd.Flags().BoolVar(&collectOpts.Append, "append", false, "Keep the existing catalog and only add new articles.")
	collectCmd.Flags().IntVar(&collectOpts.Limit, "limit", 0, "Process at most this many articles (0 means all).")
	rootCmd.AddCommand(collectCmd)
}

var collectCmd = &cobra.Command{
	Use:   "collect [--append] [--limit N]",
	Short: "Scrapes every article of the configured sites into the catalog.",
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := application.Collect(cmd.Context(), collectOpts)
		printCounts("Collect", []countRow{
			{"Article links", res.Links},
			{"Created", res.Created},
			{"Already present", res.Skipped},
			{"Failed pages", res.Misses},
			{"Catalog records", res.Records},
		})
		return err
	},
}

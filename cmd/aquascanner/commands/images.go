package commands

import (
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(reimageCmd)
	rootCmd.AddCommand(cardImagesCmd)
}

var reimageCmd = &cobra.Command{
	Use:   "reimage",
	Short: "Refetches articles of fish whose image is missing or a site placeholder.",
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := application.Reimage(cmd.Context())
		printCounts("Reimage", []countRow{
			{"Candidates", res.Candidates},
			{"Updated", res.Updated},
			{"Not found", res.NotFound},
		})
		return err
	},
}

var cardImagesCmd = &cobra.Command{
	Use:   "card-images",
	Short: "Fills missing images from the thumbnails on listing pages.",
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := application.CardImages(cmd.Context())
		printCounts("Card images", []countRow{
			{"Listing pages", res.Pages},
			{"Cards", res.Cards},
			{"Matched", res.Matched},
			{"Updated", res.Updated},
		})
		return err
	},
}

package main

import (
	"github.com/skybi/deeplink-proxy/internal/upstream"
	"github.com/spf13/cobra"
)

var offersFlags struct {
	page   int
	limit  int
	sortBy string
}

var offersCmd = &cobra.Command{
	Use:   "offers",
	Short: "List a page of offers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		client, err := authenticatedClient(cmd.Context())
		if err != nil {
			return err
		}
		page, err := client.ListOffers(cmd.Context(), offersFlags.page, offersFlags.limit, offersFlags.sortBy)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), page)
	},
}

func init() {
	rootCmd.AddCommand(offersCmd)

	offersCmd.Flags().IntVar(&offersFlags.page, "page", upstream.DefaultOffersPage, "page to retrieve")
	offersCmd.Flags().IntVar(&offersFlags.limit, "limit", upstream.DefaultOffersLimit, "offers per page")
	offersCmd.Flags().StringVar(&offersFlags.sortBy, "sort-by", upstream.DefaultOffersSortBy, "sort order")
}

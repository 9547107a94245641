package main

import (
	"errors"
	"github.com/skybi/deeplink-proxy/internal/deeplink"
	"github.com/skybi/deeplink-proxy/internal/deeplink/storage/inmem"
	"github.com/skybi/deeplink-proxy/internal/upstream"
	"github.com/spf13/cobra"
)

var errTooManyAffSubs = errors.New("at most 5 sub-ids may be given")

var deeplinkFlags struct {
	offerID int64
	urls    []string
	affSubs []string
}

var deeplinkCmd = &cobra.Command{
	Use:   "deeplink",
	Short: "Generate tracking links for destination pages",
	Long: `Generate one tracking link per destination URL for the given offer.

Up to five sub-ids may be attached with repeated --aff-sub flags; they are sent as aff_sub, aff_sub2 and so on.

Examples:
  publisher deeplink --offer-id 42 --url https://shop.example/a --url https://shop.example/b
  publisher deeplink --offer-id 42 --url https://shop.example/a --aff-sub newsletter --aff-sub october`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		subs, err := parseAffSubs(deeplinkFlags.affSubs)
		if err != nil {
			return err
		}

		client, err := authenticatedClient(cmd.Context())
		if err != nil {
			return err
		}
		storage, err := inmem.New()
		if err != nil {
			return err
		}
		links, err := deeplink.NewGenerator(client, storage).Generate(cmd.Context(), deeplinkFlags.offerID, deeplinkFlags.urls, subs)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), links)
	},
}

func init() {
	rootCmd.AddCommand(deeplinkCmd)

	deeplinkCmd.Flags().Int64Var(&deeplinkFlags.offerID, "offer-id", 0, "offer to generate the links for")
	deeplinkCmd.Flags().StringArrayVar(&deeplinkFlags.urls, "url", nil, "destination URL (repeatable)")
	deeplinkCmd.Flags().StringArrayVar(&deeplinkFlags.affSubs, "aff-sub", nil, "sub-id (repeatable, up to 5)")
	deeplinkCmd.MarkFlagRequired("offer-id")
	deeplinkCmd.MarkFlagRequired("url")
}

func parseAffSubs(values []string) (upstream.AffSubs, error) {
	if len(values) > 5 {
		return upstream.AffSubs{}, errTooManyAffSubs
	}
	var subs upstream.AffSubs
	targets := []*string{&subs.AffSub, &subs.AffSub2, &subs.AffSub3, &subs.AffSub4, &subs.AffSub5}
	for i, value := range values {
		*targets[i] = value
	}
	return subs, nil
}

package cli

import (
	"fmt"

	"github.com/MellowMango/wnb-hackathon-adam-max/internal/itinerary"
	"github.com/spf13/cobra"
)

func newLinkCommand(a *app) *cobra.Command {
	req := &itinerary.ShareableLinkRequest{}
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "link",
		Short: "Build a Google Maps directions link without calling the provider",
		RunE: func(cmd *cobra.Command, args []string) error {
			link, err := a.service.BuildShareableLink(cmd.Context(), req)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), link)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), link.URL)
			return err
		},
	}

	cmd.Flags().StringVar(&req.Origin, "origin", "", "Origin location")
	cmd.Flags().StringVar(&req.Destination, "destination", "", "Destination location")
	cmd.Flags().StringArrayVar(&req.Waypoints, "waypoint", nil, "Intermediate location, repeat for each waypoint")
	cmd.Flags().StringVar(&req.Mode, "mode", "driving", "Travel mode")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the link as JSON")
	_ = cmd.MarkFlagRequired("origin")
	_ = cmd.MarkFlagRequired("destination")
	return cmd
}

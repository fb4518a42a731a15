package cli

import (
	"fmt"
	"io"
	"regexp"

	"github.com/MellowMango/wnb-hackathon-adam-max/internal/itinerary"
	"github.com/spf13/cobra"
)

var htmlTag = regexp.MustCompile(`<[^>]*>`)

func newDirectionsCommand(a *app) *cobra.Command {
	q := &itinerary.DirectionsQuery{}
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "directions",
		Short: "Print turn-by-turn directions and a shareable link",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.service.Directions(cmd.Context(), q)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), d)
			}
			return printDirections(cmd.OutOrStdout(), d)
		},
	}

	cmd.Flags().StringVar(&q.Origin, "origin", "", "Origin location")
	cmd.Flags().StringVar(&q.Destination, "destination", "", "Destination location")
	cmd.Flags().StringArrayVar(&q.Waypoints, "waypoint", nil, "Intermediate location, repeat for each waypoint")
	cmd.Flags().StringVar(&q.Mode, "mode", "driving", "Travel mode")
	cmd.Flags().BoolVar(&q.OptimizeWaypoints, "optimize", false, "Let the provider reorder waypoints")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the directions as JSON")
	_ = cmd.MarkFlagRequired("origin")
	_ = cmd.MarkFlagRequired("destination")
	return cmd
}

func printDirections(w io.Writer, d *itinerary.Directions) error {
	if !d.Found {
		_, err := fmt.Fprintf(w, "%s\n%s\n", d.Message, d.ShareableLink)
		return err
	}

	if _, err := fmt.Fprintf(w, "%s, %s\n", d.Distance, d.Duration); err != nil {
		return err
	}
	for i, st := range d.Steps {
		if _, err := fmt.Fprintf(w, "%2d. %s (%s)\n", i+1, htmlTag.ReplaceAllString(st.Instruction, ""), st.Distance); err != nil {
			return err
		}
	}
	for _, warning := range d.Warnings {
		if _, err := fmt.Fprintf(w, "warning: %s\n", warning); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, d.ShareableLink)
	return err
}

func newGeocodeCommand(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "geocode <address>",
		Short: "Resolve an address to coordinates",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.service.Geocode(cmd.Context(), &itinerary.GeocodeQuery{Address: args[0]})
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			if !res.Found {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), res.Message)
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\n%g,%g\n", res.FormattedAddress, res.Latitude, res.Longitude)
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")
	return cmd
}

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/MellowMango/wnb-hackathon-adam-max/internal/itinerary"
	"github.com/spf13/cobra"
)

type planOptions struct {
	start      string
	stops      []string
	mode       string
	noOptimize bool
	file       string
}

func newPlanCommand(a *app) *cobra.Command {
	opts := &planOptions{}

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Synthesize a route through a list of experiences",
		Example: `  itinctl plan --start "Union Square, SF" --stop "Ferry Building" --stop "Coit Tower"
  itinctl plan --file request.json --mode walking`,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := opts.request(cmd)
			if err != nil {
				return err
			}

			route, err := a.service.Synthesize(cmd.Context(), req)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), route)
		},
	}

	cmd.Flags().StringVar(&opts.start, "start", "", "Start location")
	cmd.Flags().StringArrayVar(&opts.stops, "stop", nil, "Experience location, repeat for each stop")
	cmd.Flags().StringVar(&opts.mode, "mode", "driving", "Travel mode: driving, walking, bicycling or transit")
	cmd.Flags().BoolVar(&opts.noOptimize, "no-optimize", false, "Keep experiences in the given order")
	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "Read a JSON request body from a file, or - for stdin")
	return cmd
}

// request builds the synthesis request from --file when given, otherwise from
// --start and --stop. Explicit flags override values read from the file.
func (o *planOptions) request(cmd *cobra.Command) (*itinerary.SynthesizeRequest, error) {
	req := &itinerary.SynthesizeRequest{}

	if o.file != "" {
		data, err := o.readFile(cmd.InOrStdin())
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(data, req); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", o.file, err)
		}
	} else if o.start == "" || len(o.stops) == 0 {
		return nil, fmt.Errorf("either --file or --start with at least one --stop is required")
	}

	flags := cmd.Flags()
	if flags.Changed("start") {
		req.StartLocation = o.start
	}
	if flags.Changed("stop") {
		req.Experiences = make([]itinerary.Experience, len(o.stops))
		for i, loc := range o.stops {
			req.Experiences[i] = itinerary.Experience{Name: loc, Location: loc}
		}
	}
	if flags.Changed("mode") || req.Mode == "" {
		req.Mode = o.mode
	}
	if flags.Changed("no-optimize") {
		optimize := !o.noOptimize
		req.Optimize = &optimize
	}

	return req, nil
}

func (o *planOptions) readFile(stdin io.Reader) ([]byte, error) {
	if o.file == "-" {
		return io.ReadAll(stdin)
	}
	data, err := os.ReadFile(o.file)
	if err != nil {
		return nil, fmt.Errorf("reading request file: %w", err)
	}
	return data, nil
}

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/MellowMango/wnb-hackathon-adam-max/internal/itinerary"
	"github.com/MellowMango/wnb-hackathon-adam-max/internal/maps"
	"github.com/MellowMango/wnb-hackathon-adam-max/pkg/config"
	"github.com/MellowMango/wnb-hackathon-adam-max/pkg/httpclient"
	"github.com/MellowMango/wnb-hackathon-adam-max/pkg/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const appName = "itinctl"

// ServiceFactory builds the itinerary service from loaded configuration.
type ServiceFactory func(cfg *config.Config) itinerary.ItineraryService

type app struct {
	newService ServiceFactory
	service    itinerary.ItineraryService
	verbose    bool
}

// NewRootCommand assembles the command tree around the given service factory.
func NewRootCommand(factory ServiceFactory) *cobra.Command {
	a := &app{newService: factory}

	root := &cobra.Command{
		Use:          appName,
		Short:        "Plan itineraries and build shareable Google Maps links",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(appName)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			if a.verbose {
				if err := logger.InitWithOptions(cfg.Server.Environment, logger.Options{Level: "debug", ServiceName: appName}); err != nil {
					return fmt.Errorf("initializing logger: %w", err)
				}
			} else {
				logger.SetLogger(zap.NewNop())
			}

			a.service = a.newService(cfg)
			return nil
		},
	}

	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Log provider calls to stderr")
	root.AddCommand(newPlanCommand(a), newLinkCommand(a), newDirectionsCommand(a), newGeocodeCommand(a))
	return root
}

// Execute runs the CLI until completion or an interrupt signal.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return NewRootCommand(DefaultService).ExecuteContext(ctx)
}

// DefaultService wires the Google Directions provider the same way the HTTP
// service does.
func DefaultService(cfg *config.Config) itinerary.ItineraryService {
	if cfg.Maps.APIKey == "" {
		logger.Warn("GOOGLE_MAPS_API_KEY not set, itineraries will use estimated legs")
	}
	provider := maps.NewGoogleDirectionsProvider(maps.ProviderConfig{
		Provider: maps.ProviderGoogle,
		APIKey:   cfg.Maps.APIKey,
		BaseURL:  cfg.Maps.BaseURL,
		Timeout:  cfg.Maps.Timeout(),
	}, httpclient.WithRateLimit(cfg.Maps.QPS))

	return itinerary.NewService(provider, itinerary.ConfigFrom(cfg))
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

package itinerary

import (
	"context"
	"errors"
	"fmt"

	"github.com/MellowMango/wnb-hackathon-adam-max/internal/maps"
	"github.com/MellowMango/wnb-hackathon-adam-max/pkg/common"
	"github.com/MellowMango/wnb-hackathon-adam-max/pkg/resilience"
)

// ErrInvalidRequest marks input that can never produce a route. It is
// returned before any provider call.
var ErrInvalidRequest = errors.New("invalid itinerary request")

func invalidRequest(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidRequest, fmt.Sprintf(format, args...))
}

// toAppError maps service errors onto HTTP-facing errors.
func toAppError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrInvalidRequest), errors.Is(err, maps.ErrInvalidDirectionsRequest):
		return common.NewBadRequestError(err.Error(), err)
	case errors.Is(err, maps.ErrProviderUnavailable),
		errors.Is(err, resilience.ErrCircuitOpen),
		errors.Is(err, context.DeadlineExceeded):
		return common.NewServiceUnavailableError("maps provider unavailable", err)
	}
	return err
}

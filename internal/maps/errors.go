package maps

import (
	"context"
	"errors"
	"fmt"

	"github.com/MellowMango/wnb-hackathon-adam-max/pkg/httpclient"
)

var (
	// ErrProviderUnavailable matches every failure to obtain usable route data.
	ErrProviderUnavailable = errors.New("directions provider unavailable")
	// ErrInvalidDirectionsRequest matches requests rejected before any network call.
	ErrInvalidDirectionsRequest = errors.New("invalid directions request")
)

// ErrorKind classifies provider failures.
type ErrorKind string

const (
	KindNetwork         ErrorKind = "network"
	KindStatus          ErrorKind = "status"
	KindNoRoute         ErrorKind = "no_route"
	KindInvalidResponse ErrorKind = "invalid_response"
	KindInvalidRequest  ErrorKind = "invalid_request"
)

// Provider status codes that may succeed on a later attempt.
var transientStatuses = map[string]bool{
	"OVER_QUERY_LIMIT": true,
	"UNKNOWN_ERROR":    true,
}

// Provider operations, used in errors and spans.
const (
	OpDirections     = "directions"
	OpGeocode        = "geocode"
	OpReverseGeocode = "reverse_geocode"
	OpDistanceMatrix = "distance_matrix"
)

// ProviderError describes why a provider call produced no usable result.
type ProviderError struct {
	Provider Provider
	// Operation defaults to OpDirections when empty.
	Operation string
	Kind      ErrorKind
	// HTTPStatus is set for non-2xx responses.
	HTTPStatus int
	// Status is the provider's own status field, e.g. ZERO_RESULTS.
	Status  string
	Message string
	Err     error
}

func (e *ProviderError) Error() string {
	op := e.Operation
	if op == "" {
		op = OpDirections
	}
	msg := fmt.Sprintf("%s %s %s", e.Provider, op, e.Kind)
	if e.Status != "" {
		msg += " " + e.Status
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match the sentinel for the error's class.
func (e *ProviderError) Is(target error) bool {
	switch target {
	case ErrInvalidDirectionsRequest:
		return e.Kind == KindInvalidRequest
	case ErrProviderUnavailable:
		return e.Kind != KindInvalidRequest
	default:
		return false
	}
}

// Retryable reports whether another attempt could plausibly succeed.
func (e *ProviderError) Retryable() bool {
	switch e.Kind {
	case KindNetwork:
		return !errors.Is(e.Err, context.Canceled) && !errors.Is(e.Err, context.DeadlineExceeded)
	case KindStatus:
		if e.HTTPStatus != 0 {
			return httpclient.IsRetryable(e.Err)
		}
		return transientStatuses[e.Status]
	default:
		return false
	}
}

// IsRetryable reports whether err is a retryable *ProviderError.
func IsRetryable(err error) bool {
	var perr *ProviderError
	return errors.As(err, &perr) && perr.Retryable()
}

package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"time"

	"github.com/MellowMango/wnb-hackathon-adam-max/pkg/common"
	"github.com/MellowMango/wnb-hackathon-adam-max/pkg/logger"
	"github.com/getsentry/sentry-go"
)

// SentryConfig holds configuration for Sentry integration
type SentryConfig struct {
	DSN         string
	Environment string
	Release     string
	ServerName  string
	SampleRate  float64
	Debug       bool
}

// Enabled reports whether a DSN was configured.
func (c SentryConfig) Enabled() bool {
	return c.DSN != ""
}

// InitSentry initializes the Sentry SDK. Callers skip it when no DSN is set.
func InitSentry(config SentryConfig) error {
	if !config.Enabled() {
		return fmt.Errorf("sentry DSN is not configured")
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              config.DSN,
		Environment:      config.Environment,
		Release:          config.Release,
		ServerName:       config.ServerName,
		SampleRate:       config.SampleRate,
		Debug:            config.Debug,
		AttachStacktrace: true,
		BeforeSend: func(event *sentry.Event, hint *sentry.EventHint) *sentry.Event {
			if event.Level == sentry.LevelInfo || event.Level == sentry.LevelDebug {
				return nil
			}
			if event.Request != nil {
				for _, h := range sensitiveHeaders {
					if _, ok := event.Request.Headers[h]; ok {
						event.Request.Headers[h] = "[REDACTED]"
					}
				}
			}
			return event
		},
	})
	if err != nil {
		return fmt.Errorf("failed to initialize sentry: %w", err)
	}

	return nil
}

var sensitiveHeaders = []string{"Authorization", "Cookie", "X-Api-Key", "X-Goog-Api-Key"}

// Flush flushes the Sentry buffer
func Flush(timeout time.Duration) bool {
	return sentry.Flush(timeout)
}

// CaptureError reports err with the request correlation ID and any extras.
func CaptureError(ctx context.Context, err error, extras map[string]interface{}) *sentry.EventID {
	if err == nil {
		return nil
	}

	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub().Clone()
	}

	var eventID *sentry.EventID
	hub.WithScope(func(scope *sentry.Scope) {
		for key, value := range extras {
			scope.SetExtra(key, value)
		}
		if correlationID := logger.CorrelationIDFromContext(ctx); correlationID != "" {
			scope.SetTag("correlation_id", correlationID)
		}
		eventID = hub.CaptureException(err)
	})
	return eventID
}

// AddBreadcrumbForRequest adds a breadcrumb for HTTP request
func AddBreadcrumbForRequest(ctx context.Context, method, url string, statusCode int, duration time.Duration) {
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	hub.AddBreadcrumb(&sentry.Breadcrumb{
		Type:      "http",
		Category:  "http.request",
		Level:     sentry.LevelInfo,
		Message:   fmt.Sprintf("%s %s", method, url),
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"method":      method,
			"url":         url,
			"status_code": statusCode,
			"duration_ms": duration.Milliseconds(),
		},
	}, nil)
}

// ShouldReportError reports whether an error is unexpected enough to send.
// Client errors are skipped except 429.
func ShouldReportError(err error, statusCode int) bool {
	if err == nil {
		return false
	}

	var appErr *common.AppError
	if stderrors.As(err, &appErr) {
		statusCode = appErr.Code
	}

	if statusCode >= http.StatusBadRequest && statusCode < http.StatusInternalServerError {
		return statusCode == http.StatusTooManyRequests
	}

	return !stderrors.Is(err, context.Canceled)
}

package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/MellowMango/wnb-hackathon-adam-max/pkg/common"
	apperrors "github.com/MellowMango/wnb-hackathon-adam-max/pkg/errors"
	"github.com/MellowMango/wnb-hackathon-adam-max/pkg/logger"
	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SentryMiddleware attaches a per-request Sentry hub. Panics are re-raised so
// RecoveryWithSentry can answer the request.
func SentryMiddleware() gin.HandlerFunc {
	return sentrygin.New(sentrygin.Options{
		Repanic:         true,
		WaitForDelivery: false,
		Timeout:         2 * time.Second,
	})
}

// ErrorHandler reports errors attached to the gin context, and 5xx responses
// without one, to Sentry.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start)
		statusCode := c.Writer.Status()
		ctx := c.Request.Context()

		apperrors.AddBreadcrumbForRequest(ctx, c.Request.Method, c.Request.URL.Path, statusCode, duration)

		for _, ginErr := range c.Errors {
			if apperrors.ShouldReportError(ginErr.Err, statusCode) {
				apperrors.CaptureError(ctx, ginErr.Err, requestExtras(c, statusCode, duration))
			}
		}

		if statusCode >= http.StatusInternalServerError && len(c.Errors) == 0 {
			hub := sentrygin.GetHubFromContext(c)
			if hub == nil {
				hub = sentry.CurrentHub().Clone()
			}
			hub.WithScope(func(scope *sentry.Scope) {
				scope.SetLevel(sentry.LevelError)
				scope.SetTag("http.status_code", fmt.Sprintf("%d", statusCode))
				scope.SetTag("correlation_id", GetCorrelationID(c))
				hub.CaptureMessage(fmt.Sprintf("HTTP %d: %s %s", statusCode, c.Request.Method, c.FullPath()))
			})
		}
	}
}

// RecoveryWithSentry turns panics into a 500 response and reports them.
func RecoveryWithSentry() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if recovered := recover(); recovered != nil {
				hub := sentrygin.GetHubFromContext(c)
				if hub == nil {
					hub = sentry.CurrentHub().Clone()
				}
				hub.RecoverWithContext(c.Request.Context(), recovered)

				logger.ErrorContext(c.Request.Context(), "panic recovered",
					zap.Any("panic", recovered),
					zap.String("path", c.Request.URL.Path),
				)

				common.AppErrorResponse(c, common.NewInternalError("An unexpected error occurred", nil))
				c.Abort()
			}
		}()

		c.Next()
	}
}

func requestExtras(c *gin.Context, statusCode int, duration time.Duration) map[string]interface{} {
	return map[string]interface{}{
		"method":      c.Request.Method,
		"route":       c.FullPath(),
		"status_code": statusCode,
		"duration_ms": duration.Milliseconds(),
		"client_ip":   c.ClientIP(),
	}
}

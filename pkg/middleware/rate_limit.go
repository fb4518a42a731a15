package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/MellowMango/wnb-hackathon-adam-max/pkg/common"
	"github.com/MellowMango/wnb-hackathon-adam-max/pkg/logger"
	"github.com/MellowMango/wnb-hackathon-adam-max/pkg/ratelimit"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RateLimiter decides whether a client may call an endpoint.
type RateLimiter interface {
	RuleFor(endpoint string) ratelimit.Rule
	Allow(ctx context.Context, endpoint, client string, rule ratelimit.Rule) (ratelimit.Result, error)
}

// RateLimit throttles requests per client IP and route. Limiter failures
// fail open.
func RateLimit(limiter RateLimiter) gin.HandlerFunc {
	if limiter == nil {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		endpointPath := c.FullPath()
		if endpointPath == "" {
			endpointPath = c.Request.URL.Path
		}
		endpointKey := fmt.Sprintf("%s:%s", c.Request.Method, endpointPath)

		client := c.ClientIP()
		if client == "" {
			client = "unknown"
		}

		rule := limiter.RuleFor(endpointKey)
		if rule.Limit <= 0 {
			c.Next()
			return
		}

		result, err := limiter.Allow(c.Request.Context(), endpointKey, client, rule)
		if err != nil {
			logger.WarnContext(c.Request.Context(), "rate limit evaluation failed",
				zap.String("endpoint", endpointKey),
				zap.String("client", client),
				zap.Error(err),
			)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		c.Header("X-RateLimit-Reset", strconv.Itoa(ceilSeconds(result.ResetAfter)))

		if result.Allowed {
			c.Next()
			return
		}

		retrySeconds := max(ceilSeconds(result.RetryAfter), 1)
		c.Header("Retry-After", strconv.Itoa(retrySeconds))

		logger.WarnContext(c.Request.Context(), "rate limit exceeded",
			zap.String("endpoint", endpointKey),
			zap.String("client", client),
			zap.Int("retry_after_seconds", retrySeconds),
		)

		common.AppErrorResponse(c, common.NewTooManyRequestsError("rate limit exceeded"))
		c.Abort()
	}
}

func ceilSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int((d + time.Second - 1) / time.Second)
}

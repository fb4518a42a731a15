package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/MellowMango/wnb-hackathon-adam-max/pkg/common"
	"github.com/MellowMango/wnb-hackathon-adam-max/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestTimeout attaches a deadline to the request context. Handlers are
// expected to honour it; if the deadline passes before anything is written
// the middleware answers 504.
func RequestTimeout(timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if timeout <= 0 {
			c.Next()
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()

		if !errors.Is(ctx.Err(), context.DeadlineExceeded) || c.Writer.Written() {
			return
		}

		c.Header("X-Timeout", "true")
		common.AppErrorResponse(c, common.NewAppError(http.StatusGatewayTimeout,
			common.CodeRequestTimeout, "Request timeout", ctx.Err()))
		c.Abort()

		logger.WithContext(ctx).Warn("Request timeout",
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
			zap.Duration("timeout", timeout),
		)
	}
}

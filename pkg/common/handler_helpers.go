package common

import (
	"errors"
	"net/http"

	"github.com/MellowMango/wnb-hackathon-adam-max/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HandleServiceError writes the response for a failed service call.
// Returns true if an error was handled (and response was sent), false otherwise.
//
// Usage:
//
//	route, err := h.service.Synthesize(ctx, req)
//	if HandleServiceError(c, err, "failed to synthesize itinerary") {
//	    return
//	}
func HandleServiceError(c *gin.Context, err error, fallbackMessage string) bool {
	if err == nil {
		return false
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		if appErr.Code >= http.StatusInternalServerError {
			logger.ErrorContext(c.Request.Context(), fallbackMessage, zap.Error(err))
		}
		AppErrorResponse(c, appErr)
		return true
	}

	logger.ErrorContext(c.Request.Context(), fallbackMessage,
		zap.Error(err),
	)

	ErrorResponse(c, http.StatusInternalServerError, fallbackMessage)
	return true
}

// BindJSON binds JSON request body and sends error response on failure.
// Returns true on success, false on failure (response already sent).
//
// Usage:
//
//	var req SynthesizeRequest
//	if !BindJSON(c, &req) {
//	    return
//	}
func BindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		AppErrorResponse(c, NewBadRequestError("invalid request: "+err.Error(), err))
		return false
	}
	return true
}

// RequestID returns the correlation ID assigned to the request, if any.
func RequestID(c *gin.Context) string {
	if id, ok := c.Get("correlation_id"); ok {
		if s, ok := id.(string); ok {
			return s
		}
	}
	return ""
}

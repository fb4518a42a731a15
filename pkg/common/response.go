package common

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response is the envelope every JSON endpoint writes.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

// ErrorInfo is the error half of the envelope.
type ErrorInfo struct {
	Code      int    `json:"code"`
	ErrorCode string `json:"error_code,omitempty"`
	Message   string `json:"message"`
}

// Meta carries request-scoped metadata echoed back to the caller.
type Meta struct {
	RequestID string `json:"request_id,omitempty"`
	Degraded  bool   `json:"degraded,omitempty"`
}

// SuccessResponse writes 200 with data.
func SuccessResponse(c *gin.Context, data interface{}) {
	SuccessResponseWithMeta(c, data, nil)
}

// SuccessResponseWithMeta writes 200 with data and optional metadata.
func SuccessResponseWithMeta(c *gin.Context, data interface{}, meta *Meta) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data, Meta: meta})
}

// ErrorResponse writes a failure envelope with only a status and message.
func ErrorResponse(c *gin.Context, statusCode int, message string) {
	writeError(c, &ErrorInfo{Code: statusCode, Message: message})
}

// AppErrorResponse writes err's status, code and client-safe message.
func AppErrorResponse(c *gin.Context, err *AppError) {
	writeError(c, &ErrorInfo{Code: err.Code, ErrorCode: err.ErrorCode, Message: err.Message})
}

func writeError(c *gin.Context, info *ErrorInfo) {
	c.JSON(info.Code, Response{Error: info})
}

package common

import (
	"errors"
	"net/http"
)

// Common error types
var (
	ErrBadRequest     = errors.New("bad request")
	ErrValidation     = errors.New("validation error")
	ErrInternalServer = errors.New("internal server error")
	ErrUnavailable    = errors.New("service unavailable")
	ErrRateLimited    = errors.New("too many requests")
)

// Machine-readable error codes returned alongside the HTTP status.
const (
	CodeInvalidRequest = "INVALID_REQUEST"
	CodeValidation     = "VALIDATION_FAILED"
	CodeInternal       = "INTERNAL_ERROR"
	CodeUnavailable    = "SERVICE_UNAVAILABLE"
	CodeRateLimited    = "RATE_LIMITED"
	CodeRequestTimeout = "REQUEST_TIMEOUT"
)

// AppError represents an application error with HTTP status code
type AppError struct {
	Code      int    `json:"code"`
	ErrorCode string `json:"error_code,omitempty"`
	Message   string `json:"message"`
	Err       error  `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap exposes the underlying cause to errors.Is / errors.As.
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError
func NewAppError(code int, errorCode, message string, err error) *AppError {
	return &AppError{
		Code:      code,
		ErrorCode: errorCode,
		Message:   message,
		Err:       err,
	}
}

func NewBadRequestError(message string, err error) *AppError {
	if err == nil {
		err = ErrBadRequest
	}
	return NewAppError(http.StatusBadRequest, CodeInvalidRequest, message, err)
}

func NewValidationError(message string) *AppError {
	return NewAppError(http.StatusBadRequest, CodeValidation, message, ErrValidation)
}

func NewInternalError(message string, err error) *AppError {
	if err == nil {
		err = ErrInternalServer
	}
	return NewAppError(http.StatusInternalServerError, CodeInternal, message, err)
}

func NewServiceUnavailableError(message string, err error) *AppError {
	if err == nil {
		err = ErrUnavailable
	}
	return NewAppError(http.StatusServiceUnavailable, CodeUnavailable, message, err)
}

func NewTooManyRequestsError(message string) *AppError {
	return NewAppError(http.StatusTooManyRequests, CodeRateLimited, message, ErrRateLimited)
}

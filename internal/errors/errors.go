package errors

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/gin-gonic/gin"
)

// ErrorCategory classifies errors for handling and logging.
type ErrorCategory string

const (
	CategoryValidation      ErrorCategory = "validation"
	CategoryConfiguration   ErrorCategory = "configuration"
	CategoryMalformedRecord ErrorCategory = "malformed_record"
	CategoryExternalAPI     ErrorCategory = "external_api"
	CategoryTimeout         ErrorCategory = "timeout"
	CategoryInternal        ErrorCategory = "internal"
)

// AppError wraps an errbuilder error with HTTP mapping and request context.
type AppError struct {
	*errbuilder.ErrBuilder
	Category   ErrorCategory `json:"category"`
	HTTPStatus int           `json:"http_status"`
	Timestamp  time.Time     `json:"timestamp"`
	RequestID  string        `json:"request_id,omitempty"`
}

func (e *AppError) Error() string {
	return fmt.Sprintf("[%s] %s", strings.ToUpper(string(e.Category)), e.ErrBuilder.Msg)
}

// Unwrap returns the underlying cause.
func (e *AppError) Unwrap() error {
	return e.ErrBuilder.Unwrap()
}

// NewAppError creates an AppError from an errbuilder with HTTP mapping.
func NewAppError(builder *errbuilder.ErrBuilder, category ErrorCategory, httpStatus int) *AppError {
	return &AppError{
		ErrBuilder: builder,
		Category:   category,
		HTTPStatus: httpStatus,
		Timestamp:  time.Now(),
	}
}

// NewValidationError reports a rejected request payload or parameter.
func NewValidationError(message string, cause error) *AppError {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(message)
	if cause != nil {
		builder = builder.WithCause(cause)
	}
	return NewAppError(builder, CategoryValidation, http.StatusBadRequest)
}

// NewConfigurationError reports invalid or missing scoring and source
// configuration.
func NewConfigurationError(message string, cause error) *AppError {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeFailedPrecondition).
		WithMsg(message)
	if cause != nil {
		builder = builder.WithCause(cause)
	}
	return NewAppError(builder, CategoryConfiguration, http.StatusInternalServerError)
}

// NewMalformedRecordError reports an input record that could not be used.
// Individual malformed records are skipped and counted, not fatal.
func NewMalformedRecordError(source, detail string) *AppError {
	errorMap := errbuilder.ErrorMap{}
	errorMap.Set("source", errors.New(source))

	builder := errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(fmt.Sprintf("malformed %s record: %s", source, detail)).
		WithDetails(errbuilder.NewErrDetails(errorMap))

	return NewAppError(builder, CategoryMalformedRecord, http.StatusUnprocessableEntity)
}

// NewExternalAPIError reports a failure talking to an upstream data source.
func NewExternalAPIError(apiName string, cause error) *AppError {
	errorMap := errbuilder.ErrorMap{}
	errorMap.Set("api_name", errors.New(apiName))

	builder := errbuilder.New().
		WithCode(errbuilder.CodeUnavailable).
		WithMsg(fmt.Sprintf("%s API error", apiName)).
		WithDetails(errbuilder.NewErrDetails(errorMap))
	if cause != nil {
		builder = builder.WithCause(cause)
	}
	return NewAppError(builder, CategoryExternalAPI, http.StatusBadGateway)
}

// NewTimeoutError reports a deadline or cancellation.
func NewTimeoutError(message string, cause error) *AppError {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeDeadlineExceeded).
		WithMsg(message)
	if cause != nil {
		builder = builder.WithCause(cause)
	}
	return NewAppError(builder, CategoryTimeout, http.StatusGatewayTimeout)
}

// NewInternalError reports an unexpected failure.
func NewInternalError(message string, cause error) *AppError {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeInternal).
		WithMsg(message)
	if cause != nil {
		builder = builder.WithCause(cause)
	}
	return NewAppError(builder, CategoryInternal, http.StatusInternalServerError)
}

// ToAppError converts any error to an AppError with a best-effort category.
func ToAppError(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	if ebErr, ok := err.(*errbuilder.ErrBuilder); ok {
		return NewAppError(ebErr, CategoryInternal, http.StatusInternalServerError)
	}

	if errors.Is(err, context.Canceled) {
		return NewTimeoutError("request cancelled", err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return NewTimeoutError("request deadline exceeded", err)
	}

	msg := err.Error()
	if strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "no such host") ||
		strings.Contains(msg, "API status") {
		return NewExternalAPIError("upstream", err)
	}
	if strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline exceeded") {
		return NewTimeoutError("request timeout", err)
	}

	return NewInternalError("an unexpected error occurred", err)
}

// ErrorHandler is a gin middleware that converts accumulated request errors
// into a structured JSON response.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		appErr := ToAppError(c.Errors.Last().Err)
		appErr.RequestID = c.GetString("request_id")
		LogError(c, appErr)
		c.JSON(appErr.HTTPStatus, appErr)
	}
}

// LogError logs an error with request context at a level matching severity.
func LogError(c *gin.Context, err *AppError) {
	logger := slog.With(
		"error_category", err.Category,
		"http_status", err.HTTPStatus,
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"request_id", err.RequestID,
	)

	switch err.Category {
	case CategoryValidation, CategoryMalformedRecord:
		logger.Warn(err.ErrBuilder.Msg)
	case CategoryExternalAPI, CategoryTimeout:
		logger.Error(err.ErrBuilder.Msg, "cause", err.Unwrap())
	default:
		logger.Error(err.ErrBuilder.Msg, "cause", err.Unwrap())
	}
}

package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/KaramelBytes/sheetdash-cli/internal/chart"
	"github.com/KaramelBytes/sheetdash-cli/internal/logging"
	"github.com/KaramelBytes/sheetdash-cli/internal/render"
	"github.com/KaramelBytes/sheetdash-cli/internal/session"
	"github.com/labstack/echo/v4"
)

// APIError represents a structured API error response
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewBadRequestError creates a 400 Bad Request error
func NewBadRequestError(message string, cause error) *APIError {
	return withCause(&APIError{Status: http.StatusBadRequest, Code: "BAD_REQUEST", Message: message}, cause)
}

// NewValidationError creates a 400 validation error for a specific field
func NewValidationError(field string) *APIError {
	return &APIError{
		Status:  http.StatusBadRequest,
		Code:    "VALIDATION_ERROR",
		Message: fmt.Sprintf("validation failed for field: %s", field),
	}
}

// NewDecodeError reports an upload that could not be read as a table.
func NewDecodeError(cause error) *APIError {
	return withCause(&APIError{Status: http.StatusBadRequest, Code: "DECODE_ERROR", Message: "could not read spreadsheet"}, cause)
}

// NewNotFoundError creates a 404 Not Found error
func NewNotFoundError(resource string, id string) *APIError {
	return &APIError{
		Status:  http.StatusNotFound,
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s not found: %s", resource, id),
	}
}

// NewChartError creates a 422 error whose message is the chart placeholder text.
func NewChartError(code string, cause error) *APIError {
	return withCause(&APIError{Status: http.StatusUnprocessableEntity, Code: code, Message: render.Placeholder(cause)}, cause)
}

// NewInternalError creates a 500 Internal Server Error
func NewInternalError(message string, cause error) *APIError {
	return withCause(&APIError{Status: http.StatusInternalServerError, Code: "INTERNAL_ERROR", Message: message}, cause)
}

func withCause(e *APIError, cause error) *APIError {
	if cause != nil {
		e.Details = cause.Error()
	}
	return e
}

// chartFailure maps chart, session and render errors to API errors.
func chartFailure(err error, sessionID, index string) *APIError {
	var ce *chart.ConfigError
	switch {
	case errors.Is(err, session.ErrNotFound):
		return NewNotFoundError("session", sessionID)
	case errors.Is(err, chart.ErrIndexOutOfRange):
		return NewNotFoundError("chart", index)
	case errors.As(err, &ce):
		return NewChartError("CHART_CONFIG", err)
	case errors.Is(err, render.ErrEmptySeries):
		return NewChartError("CHART_EMPTY", err)
	case errors.Is(err, render.ErrUnsupportedKind):
		return NewChartError("CHART_UNSUPPORTED", err)
	}
	return NewInternalError("chart request failed", err)
}

// ErrorHandler renders every error as an APIError.
// Usage: e.HTTPErrorHandler = ErrorHandler(log)
func ErrorHandler(log *logging.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		var apiErr *APIError
		var httpErr *echo.HTTPError
		switch {
		case errors.As(err, &apiErr):
		case errors.As(err, &httpErr):
			apiErr = &APIError{Status: httpErr.Code, Code: "HTTP_ERROR", Message: fmt.Sprintf("%v", httpErr.Message)}
		default:
			apiErr = &APIError{
				Status:  http.StatusInternalServerError,
				Code:    "UNKNOWN_ERROR",
				Message: "An unexpected error occurred",
				Details: err.Error(),
			}
		}
		if apiErr.Status >= http.StatusInternalServerError {
			log.Error("%s %s: %v", c.Request().Method, c.Request().URL.Path, err)
		}
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(apiErr.Status)
			return
		}
		_ = c.JSON(apiErr.Status, apiErr)
	}
}

// errors.go - JSON error bodies for the host's HTTP surface
package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/md2xlsx/webui/internal/session"
	"github.com/md2xlsx/webui/internal/storage"
)

// APIError is the body of every failed HTTP request.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewBadRequestError reports a malformed request; cause, if any, goes into Details.
func NewBadRequestError(message string, cause error) *APIError {
	e := &APIError{Status: http.StatusBadRequest, Code: "BAD_REQUEST", Message: message}
	if cause != nil {
		e.Details = cause.Error()
	}
	return e
}

// NewServiceUnavailableError reports that the host cannot take more work right now.
func NewServiceUnavailableError(message string) *APIError {
	return &APIError{Status: http.StatusServiceUnavailable, Code: "SERVICE_UNAVAILABLE", Message: message}
}

// Domain errors that reach the handler unwrapped by an APIError.
var knownErrors = []struct {
	err    error
	status int
	code   string
}{
	{session.ErrTooManySessions, http.StatusServiceUnavailable, "SESSION_LIMIT"},
	{storage.ErrTooLarge, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE"},
	{storage.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
}

// ShowErrorDetails controls whether unexpected errors expose their text.
var ShowErrorDetails = false

// ErrorHandler renders err as an APIError.
// Usage: e.HTTPErrorHandler = api.ErrorHandler
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	apiErr := toAPIError(err)
	if c.Request().Method == http.MethodHead {
		c.NoContent(apiErr.Status)
		return
	}
	c.JSON(apiErr.Status, apiErr)
}

func toAPIError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	for _, k := range knownErrors {
		if errors.Is(err, k.err) {
			return &APIError{Status: k.status, Code: k.code, Message: err.Error()}
		}
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		return &APIError{Status: httpErr.Code, Code: "HTTP_ERROR", Message: fmt.Sprint(httpErr.Message)}
	}

	apiErr = &APIError{
		Status:  http.StatusInternalServerError,
		Code:    "UNKNOWN_ERROR",
		Message: "An unexpected error occurred",
	}
	if ShowErrorDetails {
		apiErr.Details = err.Error()
	}
	return apiErr
}

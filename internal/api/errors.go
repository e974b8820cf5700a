package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/booklens/booklens-server/internal/errors"
)

// internalErrorMessage replaces the message of every 5xx response.
const internalErrorMessage = "Internal server error"

// APIError is a custom error type that implements huma.StatusError.
// Every failed request renders as {"error": "...", "details": ...}.
type APIError struct { //nolint:revive // API prefix is intentional for clarity
	status  int
	Message string `json:"error" doc:"Human-readable error message"`
	Details any    `json:"details,omitempty" doc:"Field level validation details"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return e.Message
}

// GetStatus implements huma.StatusError.
func (e *APIError) GetStatus() int {
	return e.status
}

// ContentType returns the content type for the error response.
func (e *APIError) ContentType(_ string) string {
	return "application/json"
}

// RegisterErrorHandler configures huma to render domain errors.
// Call this after creating the huma.API but before registering routes.
//
// Schema validation failures (huma's 422) are reported as 400 so clients see
// one status for every invalid input. Server side failures are logged with
// their cause and rendered with a generic message.
func RegisterErrorHandler(logger *slog.Logger) {
	huma.NewError = func(status int, message string, errs ...error) huma.StatusError {
		for _, err := range errs {
			var domainErr *domainerrors.Error
			if errors.As(err, &domainErr) {
				return newAPIError(logger, domainErr.HTTPStatus(), domainErr.Message, domainErr.Details, err)
			}
		}

		if status == http.StatusUnprocessableEntity {
			status = http.StatusBadRequest
		}

		var details map[string]string
		for _, err := range errs {
			var detailer huma.ErrorDetailer
			if !errors.As(err, &detailer) {
				continue
			}
			d := detailer.ErrorDetail()
			if details == nil {
				details = make(map[string]string)
				if d.Message != "" {
					message = d.Message
					if d.Location != "" {
						message = d.Location + ": " + d.Message
					}
				}
			}
			details[d.Location] = d.Message
		}

		var cause error
		if len(errs) > 0 {
			cause = errors.Join(errs...)
		}
		if details == nil {
			return newAPIError(logger, status, message, nil, cause)
		}
		return newAPIError(logger, status, message, details, cause)
	}
}

func newAPIError(logger *slog.Logger, status int, message string, details any, cause error) *APIError {
	if status >= http.StatusInternalServerError {
		if logger != nil {
			logger.Error("Request failed", "status", status, "message", message, "error", cause)
		}
		return &APIError{status: status, Message: internalErrorMessage}
	}
	return &APIError{status: status, Message: message, Details: details}
}

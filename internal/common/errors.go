// File: internal/common/errors.go
package common

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is the error shape shared by the screens, the host API and the remote API client.
// Message is what the user sees; Err keeps the underlying cause for logs and errors.Is/As.
type APIError struct {
	StatusCode int         `json:"-"`
	Code       string      `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	Err        error       `json:"-"`
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *APIError with the same code.
func (e *APIError) Is(target error) bool {
	var t *APIError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

func NewAPIError(statusCode int, code, message string) *APIError {
	return &APIError{StatusCode: statusCode, Code: code, Message: message}
}

// WithDetails returns a copy of e carrying details.
func (e *APIError) WithDetails(details interface{}) *APIError {
	c := *e
	c.Details = details
	return &c
}

// WithMessage returns a copy of e with a more specific user-facing message.
func (e *APIError) WithMessage(message string) *APIError {
	c := *e
	c.Message = message
	return &c
}

// Wrap returns a copy of e that records err as its cause.
func (e *APIError) Wrap(err error) *APIError {
	c := *e
	c.Err = err
	return &c
}

// Error codes for the session and submission lifecycle.
const (
	CodeValidation           = "VALIDATION_ERROR"
	CodeInvalidCredentials   = "INVALID_CREDENTIALS"
	CodeNetwork              = "NETWORK_ERROR"
	CodeRemote               = "REMOTE_ERROR"
	CodeProviderCancelled    = "PROVIDER_CANCELLED"
	CodeNotSignedIn          = "NOT_SIGNED_IN"
	CodeSubmissionInProgress = "SUBMISSION_IN_PROGRESS"
	CodeEditingDisabled      = "EDITING_DISABLED"
	CodeNotImplemented       = "NOT_IMPLEMENTED"
)

var (
	ErrBadRequest         = NewAPIError(http.StatusBadRequest, "BAD_REQUEST", "The request is invalid.")
	ErrNotFound           = NewAPIError(http.StatusNotFound, "NOT_FOUND", "The requested resource could not be found.")
	ErrInternalServer     = NewAPIError(http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "An unexpected error occurred.")
	ErrServiceUnavailable = NewAPIError(http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "The service is currently unable to handle the request.")

	ErrInvalidCredentials   = NewAPIError(http.StatusUnauthorized, CodeInvalidCredentials, "Invalid email or password.")
	ErrNetwork              = NewAPIError(http.StatusBadGateway, CodeNetwork, "Network error: the server could not be reached.")
	ErrRemote               = NewAPIError(http.StatusBadGateway, CodeRemote, "The server rejected the request.")
	ErrProviderCancelled    = NewAPIError(http.StatusUnauthorized, CodeProviderCancelled, "Sign-in with the identity provider was cancelled.")
	ErrNotSignedIn          = NewAPIError(http.StatusUnauthorized, CodeNotSignedIn, "You need to sign in first.")
	ErrSubmissionInProgress = NewAPIError(http.StatusConflict, CodeSubmissionInProgress, "A submission is already in progress.")
	ErrEditingDisabled      = NewAPIError(http.StatusForbidden, CodeEditingDisabled, "Profiles signed in with an external provider cannot be edited here.")
	ErrNotImplemented       = NewAPIError(http.StatusNotImplemented, CodeNotImplemented, "This feature is not available yet.")
)

func IsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// NewValidationAPIError wraps per-field messages.
func NewValidationAPIError(details interface{}) *APIError {
	return &APIError{
		StatusCode: http.StatusUnprocessableEntity,
		Code:       CodeValidation,
		Message:    "Input validation failed.",
		Details:    details,
	}
}

// NewRemoteError builds the error for a non-2xx answer from the remote API.
// An empty message falls back to the HTTP status text.
func NewRemoteError(statusCode int, message string) *APIError {
	if message == "" {
		message = fmt.Sprintf("Request failed with status %d %s", statusCode, http.StatusText(statusCode))
	}
	return &APIError{
		StatusCode: http.StatusBadGateway,
		Code:       CodeRemote,
		Message:    message,
		Details:    map[string]int{"remote_status": statusCode},
	}
}

// IsCode reports whether err is an *APIError carrying code.
func IsCode(err error, code string) bool {
	apiErr, ok := IsAPIError(err)
	return ok && apiErr.Code == code
}

package storesdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies an APIError so callers can branch without string
// matching. Auth failures map to a redirect-to-login affordance, everything
// else to an inline notification.
type ErrorKind string

const (
	// KindHTTP is any non-2xx response other than an auth failure.
	KindHTTP ErrorKind = "http_error"

	// KindAuthRequired is a 401 received while no refresh token is held.
	// The client never attempts a refresh in this case.
	KindAuthRequired ErrorKind = "auth_required"

	// KindAuthExpired means a token refresh was attempted and failed.
	// Stored tokens have been cleared by the time this error is returned.
	KindAuthExpired ErrorKind = "auth_expired"

	// KindNetwork is a transport failure before any response was received.
	KindNetwork ErrorKind = "network_error"

	// KindValidation is a client-side precondition failure. No request
	// was sent.
	KindValidation ErrorKind = "validation_error"
)

// APIError is the tagged failure type surfaced by every Client method.
type APIError struct {
	Kind ErrorKind

	// Status is the HTTP status code, when a response was received.
	Status int

	// Message is a human-readable description, taken from the response
	// body when the server provided one.
	Message string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s (HTTP %d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *APIError) Unwrap() error { return e.Err }

// AsAPIError unwraps err into an *APIError, if it is one.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	ok := errors.As(err, &apiErr)
	return apiErr, ok
}

// IsAuthRequired reports whether err is a 401 with no refresh token held.
func IsAuthRequired(err error) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.Kind == KindAuthRequired
}

// IsAuthExpired reports whether err resulted from a failed token refresh.
func IsAuthExpired(err error) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.Kind == KindAuthExpired
}

// IsValidation reports whether err is a client-side precondition failure.
func IsValidation(err error) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.Kind == KindValidation
}

func newAuthRequired() *APIError {
	return &APIError{
		Kind:    KindAuthRequired,
		Status:  http.StatusUnauthorized,
		Message: "authentication required and no refresh token is available",
	}
}

func newAuthExpired(err error) *APIError {
	return &APIError{
		Kind:    KindAuthExpired,
		Message: "session expired: token refresh failed",
		Err:     err,
	}
}

func newNetworkError(err error) *APIError {
	return &APIError{
		Kind:    KindNetwork,
		Message: "request failed before a response was received",
		Err:     err,
	}
}

func newValidationError(msg string) *APIError {
	return &APIError{
		Kind:    KindValidation,
		Message: msg,
	}
}

// parseErrorResponse builds an APIError from a non-2xx response body. The
// backend is inconsistent about its error envelope, so try the known shapes
// in order before falling back to the status text.
func parseErrorResponse(status int, body []byte) *APIError {
	var envelope struct {
		Error   string `json:"error"`
		Detail  string `json:"detail"`
		Message string `json:"message"`
	}

	msg := ""
	if err := json.Unmarshal(body, &envelope); err == nil {
		switch {
		case envelope.Error != "":
			msg = envelope.Error
		case envelope.Detail != "":
			msg = envelope.Detail
		case envelope.Message != "":
			msg = envelope.Message
		}
	}
	if msg == "" {
		msg = fmt.Sprintf("HTTP %d: %s", status, http.StatusText(status))
	}

	return &APIError{
		Kind:    KindHTTP,
		Status:  status,
		Message: msg,
	}
}

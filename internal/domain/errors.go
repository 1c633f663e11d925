package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// ValidationError reports missing or malformed caller input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

// Required returns a ValidationError for a missing field.
func Required(field string) *ValidationError {
	return &ValidationError{Field: field, Message: "is required"}
}

// ProcessingError reports text that could not be turned into chunks.
type ProcessingError struct {
	Message string
}

func (e *ProcessingError) Error() string {
	return e.Message
}

// AuthError reports a rejected or failed login against the remote service.
type AuthError struct {
	Handle string
	Err    error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("login failed for %q: %v", e.Handle, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// RemoteError is a non-success response from the remote service.
type RemoteError struct {
	Op         string
	StatusCode int
	Code       string
	Message    string
}

func (e *RemoteError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s: %s (status %d)", e.Op, e.Code, e.Message, e.StatusCode)
	}
	return fmt.Sprintf("%s: status %d", e.Op, e.StatusCode)
}

// NetworkError is a transport failure or timeout talking to the remote service.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// PartialThreadError is returned when a thread stopped after some posts were
// already created. The created posts are not rolled back; publishing the same
// text again duplicates them.
type PartialThreadError struct {
	Refs  ThreadRefs
	Total int
	Err   error
}

func (e *PartialThreadError) Error() string {
	return fmt.Sprintf("thread partially published (%d of %d posts, retrying duplicates them): %v",
		len(e.Refs), e.Total, e.Err)
}

func (e *PartialThreadError) Unwrap() error { return e.Err }

// StatusCode classifies err for an HTTP boundary.
func StatusCode(err error) int {
	var (
		validation *ValidationError
		processing *ProcessingError
		auth       *AuthError
		remote     *RemoteError
		network    *NetworkError
	)
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &processing):
		return http.StatusUnprocessableEntity
	case errors.As(err, &auth), errors.As(err, &remote):
		return http.StatusBadGateway
	case errors.As(err, &network):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

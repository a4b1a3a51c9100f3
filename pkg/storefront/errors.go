package storefront

import (
	"errors"
	"fmt"
)

// Common errors returned by the client.
var (
	// ErrMissingToken is returned when no access token is configured.
	ErrMissingToken = errors.New("storefront access token is required")

	// ErrMalformedResponse is returned when the response body does not have
	// the expected products shape.
	ErrMalformedResponse = errors.New("malformed storefront response")
)

// ErrorKind classifies a failed page request.
type ErrorKind string

const (
	// ErrorKindNetwork represents transport failures (no HTTP response).
	ErrorKindNetwork ErrorKind = "network"

	// ErrorKindHTTPStatus represents non-2xx HTTP responses.
	ErrorKindHTTPStatus ErrorKind = "http_status"

	// ErrorKindGraphQL represents a non-empty top-level errors list.
	ErrorKindGraphQL ErrorKind = "graphql"

	// ErrorKindMalformed represents a body that could not be decoded into
	// the expected shape.
	ErrorKindMalformed ErrorKind = "malformed"
)

// APIError is a failed page request with enough context to log it.
type APIError struct {
	Kind          ErrorKind
	StatusCode    int
	Message       string
	Body          string
	GraphQLErrors []GraphQLError
	Err           error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("storefront %s error (status %d): %s: %v",
			e.Kind, e.StatusCode, e.Message, e.Err)
	}
	return fmt.Sprintf("storefront %s error (status %d): %s",
		e.Kind, e.StatusCode, e.Message)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *APIError) Unwrap() error {
	return e.Err
}

// KindOf returns the ErrorKind of err, or "" if err is not an APIError.
func KindOf(err error) ErrorKind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return ""
}

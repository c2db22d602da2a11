package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType classifies failures surfaced by the Instagram session
type ErrorType string

const (
	ErrorTypeUnauthenticated      ErrorType = "unauthenticated"
	ErrorTypeCSRFTokenMissing     ErrorType = "csrf_token_missing"
	ErrorTypeAuthenticationFailed ErrorType = "authentication_failed"
	ErrorTypeRequestFailed        ErrorType = "request_failed"
	ErrorTypeTransport            ErrorType = "transport"
	ErrorTypeDecode               ErrorType = "decode"
)

// Error is the single error type returned by session operations.
// Code carries the HTTP status for request failures; Status and Message carry
// the platform's explanation when it rejects credentials.
type Error struct {
	Type    ErrorType
	Message string
	Code    int
	Status  string
	Err     error
}

func (e *Error) Error() string {
	switch e.Type {
	case ErrorTypeAuthenticationFailed:
		return fmt.Sprintf("authentication failed. Status: %s, message: %s", e.Status, e.Message)
	case ErrorTypeRequestFailed:
		return fmt.Sprintf("HTTP request response has a bad status code: %d", e.Code)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying cause, if any
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches sentinels by type. A sentinel with a non-zero Code only matches
// errors carrying the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Type != e.Type {
		return false
	}
	return t.Code == 0 || t.Code == e.Code
}

// Sentinels for errors.Is checks
var (
	ErrUnauthenticated      = &Error{Type: ErrorTypeUnauthenticated, Message: "you are unauthenticated, you must call the login() method first"}
	ErrCSRFTokenMissing     = &Error{Type: ErrorTypeCSRFTokenMissing, Message: "csrf token is missing in the login response"}
	ErrAuthenticationFailed = &Error{Type: ErrorTypeAuthenticationFailed}
	ErrRequestFailed        = &Error{Type: ErrorTypeRequestFailed}
	ErrTransport            = &Error{Type: ErrorTypeTransport, Message: "HTTP error"}
	ErrDecode               = &Error{Type: ErrorTypeDecode, Message: "unexpected response payload"}
)

// Unauthenticated returns a fresh unauthenticated error
func Unauthenticated() error {
	return &Error{Type: ErrorTypeUnauthenticated, Message: ErrUnauthenticated.Message}
}

// CSRFTokenMissing returns a fresh missing token error
func CSRFTokenMissing() error {
	return &Error{Type: ErrorTypeCSRFTokenMissing, Message: ErrCSRFTokenMissing.Message}
}

// AuthenticationFailed reports an explicit credential rejection
func AuthenticationFailed(status, message string) error {
	return &Error{Type: ErrorTypeAuthenticationFailed, Status: status, Message: message}
}

// RequestFailed reports a non-2xx response
func RequestFailed(code int) error {
	return &Error{
		Type:    ErrorTypeRequestFailed,
		Message: http.StatusText(code),
		Code:    code,
	}
}

// Transport wraps a failure of the HTTP round trip itself
func Transport(err error) error {
	return &Error{Type: ErrorTypeTransport, Message: "HTTP error", Err: err}
}

// Decode wraps a payload that did not match the expected shape
func Decode(what string, err error) error {
	return &Error{Type: ErrorTypeDecode, Message: fmt.Sprintf("failed to decode %s", what), Err: err}
}

// TypeOf returns the ErrorType of err, or "" when err is not an *Error
func TypeOf(err error) ErrorType {
	var e *Error
	if errors.As(err, &e) {
		return e.Type
	}
	return ""
}

// IsRetryable reports whether a caller may reasonably retry the failed call
func IsRetryable(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	switch e.Type {
	case ErrorTypeTransport:
		return true
	case ErrorTypeRequestFailed:
		return IsRetryableStatusCode(e.Code)
	default:
		return false
	}
}

// IsRetryableStatusCode checks if an HTTP status code indicates a transient failure
func IsRetryableStatusCode(statusCode int) bool {
	switch statusCode {
	case http.StatusTooManyRequests:
		return true
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
		return false
	default:
		return statusCode >= 500
	}
}

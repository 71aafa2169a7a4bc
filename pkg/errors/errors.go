package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for common scenarios.
var (
	ErrInvalidCredentials = New("INVALID_CREDENTIALS", http.StatusUnauthorized, "invalid email or password")
	ErrInactiveAccount    = New("ACCOUNT_INACTIVE", http.StatusForbidden, "account is inactive")
	ErrNotFound           = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrForbidden          = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrUnauthorized       = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrConflict           = New("CONFLICT", http.StatusConflict, "conflict")
	ErrValidation         = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal           = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
)

// Intake channel errors.
var (
	ErrMalformedToken        = New("MALFORMED_TOKEN", http.StatusBadRequest, "token could not be decoded")
	ErrTokenExpired          = New("TOKEN_EXPIRED", http.StatusUnauthorized, "token has expired")
	ErrSessionNotUsable      = New("SESSION_NOT_USABLE", http.StatusGone, "attendance session is inactive or expired")
	ErrCardNotFound          = New("CARD_NOT_FOUND", http.StatusNotFound, "card is not registered")
	ErrCardInactive          = New("CARD_INACTIVE", http.StatusForbidden, "card registration is inactive")
	ErrLocationDenied        = New("LOCATION_DENIED", http.StatusUnprocessableEntity, "location permission denied on device")
	ErrLocationUnavailable   = New("LOCATION_UNAVAILABLE", http.StatusUnprocessableEntity, "device location unavailable")
	ErrLocationTimeout       = New("LOCATION_TIMEOUT", http.StatusUnprocessableEntity, "device location capture timed out")
	ErrSuspectedMockLocation = New("SUSPECTED_MOCK_LOCATION", http.StatusUnprocessableEntity, "fake GPS signal detected")
	ErrDuplicateSubmission   = New("DUPLICATE_SUBMISSION", http.StatusConflict, "attendance already recorded for this schedule and date")
	ErrEvidenceMissing       = New("EVIDENCE_MISSING", http.StatusBadRequest, "photo evidence is required for manual submission")
	ErrUpstreamUnavailable   = New("UPSTREAM_UNAVAILABLE", http.StatusBadGateway, "upstream collaborator unreachable")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}

// Is reports whether err carries the same error code as target.
func Is(err error, target *Error) bool {
	if err == nil || target == nil {
		return false
	}
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Code == target.Code
}

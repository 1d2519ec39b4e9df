package domain

import (
	"errors"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
type HTTPError interface {
	error
	StatusCode() int
}

// Domain error types implementing HTTPError interface
type (
	// NotFoundError indicates a resource was not found
	NotFoundError struct {
		Message string
	}

	// ValidationError indicates invalid input. Message is shown to the user as-is.
	ValidationError struct {
		Message string
	}

	// UnauthorizedError indicates authentication failure
	UnauthorizedError struct {
		Message string
	}

	// ForbiddenError indicates authorization failure
	ForbiddenError struct {
		Message string
	}

	// QuotaExceededError indicates the backing store refused a write because it is full
	QuotaExceededError struct {
		Key string
	}

	// UpstreamError carries the "Error: ..." text of a failed inference task
	UpstreamError struct {
		Message string
	}
)

func (e *NotFoundError) Error() string     { return e.Message }
func (e *ValidationError) Error() string   { return e.Message }
func (e *UnauthorizedError) Error() string { return e.Message }
func (e *ForbiddenError) Error() string    { return e.Message }
func (e *UpstreamError) Error() string     { return e.Message }
func (e *QuotaExceededError) Error() string {
	return "storage quota exceeded while saving " + e.Key
}

func (e *NotFoundError) StatusCode() int      { return http.StatusNotFound }
func (e *ValidationError) StatusCode() int    { return http.StatusBadRequest }
func (e *UnauthorizedError) StatusCode() int  { return http.StatusUnauthorized }
func (e *ForbiddenError) StatusCode() int     { return http.StatusForbidden }
func (e *QuotaExceededError) StatusCode() int { return http.StatusInsufficientStorage }
func (e *UpstreamError) StatusCode() int      { return http.StatusBadGateway }

func (e *NotFoundError) Is(target error) bool      { return target == ErrNotFound }
func (e *ValidationError) Is(target error) bool    { return target == ErrValidation }
func (e *UnauthorizedError) Is(target error) bool  { return target == ErrUnauthorized }
func (e *ForbiddenError) Is(target error) bool     { return target == ErrForbidden }
func (e *QuotaExceededError) Is(target error) bool { return target == ErrQuotaExceeded }
func (e *UpstreamError) Is(target error) bool      { return target == ErrUpstream }

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("already exists")
	ErrValidation    = errors.New("validation failed")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrQuotaExceeded = errors.New("storage quota exceeded")
	ErrUpstream      = errors.New("inference failed")
)

// ConflictError represents a resource conflict, e.g. a chat session that
// already has a response in flight.
type ConflictError struct {
	Message      string // Human-readable error message
	ResourceType string // Type of resource (chat_session, draft, voicenote, research)
	ResourceID   string // ID of the conflicting resource
}

// Error implements the error interface
func (e *ConflictError) Error() string {
	return e.Message
}

// StatusCode implements the HTTPError interface
func (e *ConflictError) StatusCode() int {
	return http.StatusConflict
}

// Is allows errors.Is() to match against ErrConflict
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

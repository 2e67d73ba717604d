package core

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is matched by every NotFoundError.
	ErrNotFound = errors.New("not found")

	// ErrValidation is matched by every ValidationError.
	ErrValidation = errors.New("validation failed")

	// ErrUpstream is matched by every UpstreamError.
	ErrUpstream = errors.New("upstream failure")
)

// NotFoundError reports a missing profile, insight record or entity.
type NotFoundError struct {
	Kind string // e.g. "startup", "investor insights"
	ID   string
}

// NewNotFound creates a NotFoundError.
func NewNotFound(kind, id string) *NotFoundError {
	return &NotFoundError{Kind: kind, ID: id}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Kind)
}

// Is makes errors.Is(err, ErrNotFound) work.
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// Message is the caller-facing message, e.g. "Startup not found".
func (e *NotFoundError) Message() string {
	msg := e.Error()
	return strings.ToUpper(msg[:1]) + msg[1:]
}

// ValidationError reports a missing or malformed request field.
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError creates a ValidationError.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string { return e.Message }

// Is makes errors.Is(err, ErrValidation) work.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// UpstreamError wraps an LLM or store transport failure.
type UpstreamError struct {
	Op  string // "llm", "store.get", ...
	Err error
}

// NewUpstreamError wraps err as an UpstreamError for op.
func NewUpstreamError(op string, err error) *UpstreamError {
	return &UpstreamError{Op: op, Err: err}
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the transport error.
func (e *UpstreamError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrUpstream) work.
func (e *UpstreamError) Is(target error) bool { return target == ErrUpstream }

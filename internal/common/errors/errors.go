// Package errors provides the standardized failure taxonomy for the search pipeline.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// ==========================
// 1. Failure Kinds
// ==========================

// Kind classifies a failure for diagnostics and per-item tallies.
// Classification is derived from the error's type, never from its message.
type Kind string

const (
	KindValidation    Kind = "validation"
	KindMissingField  Kind = "missing_field"
	KindTransport     Kind = "transport"
	KindAuth          Kind = "auth"
	KindOrchestration Kind = "orchestration"
)

// FieldErrorKind identifies what went wrong for a single field path.
type FieldErrorKind string

const (
	FieldMissingRequired FieldErrorKind = "missing-required"
	FieldTypeMismatch    FieldErrorKind = "type-mismatch"
	FieldNested          FieldErrorKind = "nested-validation-error"
)

// ==========================
// 2. Error Types
// ==========================

// FieldError is a single offending field path within a ValidationError.
type FieldError struct {
	Path   string         `json:"path"`
	Kind   FieldErrorKind `json:"kind"`
	Detail string         `json:"detail,omitempty"`
}

func (f FieldError) String() string {
	return fmt.Sprintf("%s (%s)", f.Path, f.Kind)
}

// ValidationError aggregates every offending field of one record.
// The full diagnostic set is carried on the value so callers can log or
// inspect it without string-matching the message.
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.String())
	}
	return fmt.Sprintf("record validation failed: %d field error(s): %s",
		len(e.Fields), strings.Join(parts, ", "))
}

// FieldPaths returns the offending paths in declaration order.
func (e *ValidationError) FieldPaths() []string {
	paths := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		paths = append(paths, f.Path)
	}
	return paths
}

// MissingOnly reports whether every entry is an absent required field.
func (e *ValidationError) MissingOnly() bool {
	if len(e.Fields) == 0 {
		return false
	}
	for _, f := range e.Fields {
		if f.Kind != FieldMissingRequired {
			return false
		}
	}
	return true
}

// TransportError wraps a network or non-2xx HTTP failure.
type TransportError struct {
	StatusCode int // 0 when the request never reached the server
	URL        string
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("transport error (status %d) for %s", e.StatusCode, e.URL)
	}
	return fmt.Sprintf("transport error for %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// AuthError marks the 401 case, distinguished for diagnostic logging.
type AuthError struct {
	URL string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed (401) for %s", e.URL)
}

// OrchestrationError marks an unexpected failure outside the isolated
// per-item boundaries.
type OrchestrationError struct {
	Phase string
	Err   error
}

func (e *OrchestrationError) Error() string {
	return fmt.Sprintf("orchestration failure in %s phase: %v", e.Phase, e.Err)
}

func (e *OrchestrationError) Unwrap() error { return e.Err }

// ==========================
// 3. Constructors
// ==========================

func NewValidationError(fields ...FieldError) *ValidationError {
	return &ValidationError{Fields: fields}
}

func NewTransportError(statusCode int, url string, err error) *TransportError {
	return &TransportError{StatusCode: statusCode, URL: url, Err: err}
}

func NewAuthError(url string) *AuthError {
	return &AuthError{URL: url}
}

func NewOrchestrationError(phase string, err error) *OrchestrationError {
	return &OrchestrationError{Phase: phase, Err: err}
}

// ==========================
// 4. Classification
// ==========================

// Classify maps any error to its failure kind. An AuthError is checked
// before TransportError so the 401 case keeps its own bucket. A
// ValidationError whose entries are all absent required fields counts as
// a missing-field failure.
func Classify(err error) Kind {
	var authErr *AuthError
	if stderrors.As(err, &authErr) {
		return KindAuth
	}

	var transportErr *TransportError
	if stderrors.As(err, &transportErr) {
		return KindTransport
	}

	var validationErr *ValidationError
	if stderrors.As(err, &validationErr) {
		if validationErr.MissingOnly() {
			return KindMissingField
		}
		return KindValidation
	}

	return KindOrchestration
}

// AsValidation extracts the ValidationError from an error chain, if any.
func AsValidation(err error) (*ValidationError, bool) {
	var validationErr *ValidationError
	if stderrors.As(err, &validationErr) {
		return validationErr, true
	}
	return nil, false
}

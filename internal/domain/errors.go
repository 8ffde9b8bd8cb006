package domain

import (
	"errors"
	"fmt"
)

// Base error types (sentinel errors).
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrUnknownOperation   = errors.New("unknown operation")
	ErrUpstream           = errors.New("upstream failure")
	ErrInvalidCoordinate  = fmt.Errorf("coordinate: %w", ErrInvalidInput)
	ErrMissingArgument    = fmt.Errorf("missing argument: %w", ErrInvalidInput)
	ErrUnexpectedArgument = fmt.Errorf("unexpected argument: %w", ErrInvalidInput)
)

// ValidationError represents a detailed validation error.
type ValidationError struct {
	Field      string      // Field that failed validation
	Value      interface{} // The invalid value
	Constraint string      // The constraint that was violated
	Message    string      // Human-readable message
	kind       error
}

// Error implements the error interface. The message alone is returned so
// that callers see exactly which bound failed.
func (e *ValidationError) Error() string {
	return e.Message
}

// Unwrap returns the underlying error type.
func (e *ValidationError) Unwrap() error {
	if e.kind != nil {
		return e.kind
	}
	return ErrInvalidInput
}

// Detail returns the verbose form including value and constraint.
func (e *ValidationError) Detail() string {
	return fmt.Sprintf("validation error for %s: %s (value: %v, constraint: %s)",
		e.Field, e.Message, e.Value, e.Constraint)
}

// MissingArgument reports a required argument that was not supplied.
func MissingArgument(field string) error {
	return &ValidationError{
		Field:      field,
		Constraint: "required",
		Message:    fmt.Sprintf("Missing required argument: %s", field),
		kind:       ErrMissingArgument,
	}
}

// UnexpectedArgument reports an argument the operation does not declare.
func UnexpectedArgument(field string) error {
	return &ValidationError{
		Field:      field,
		Constraint: "declared arguments only",
		Message:    fmt.Sprintf("Unexpected argument: %s", field),
		kind:       ErrUnexpectedArgument,
	}
}

// InvalidArgumentType reports an argument whose JSON type does not match its declaration.
func InvalidArgumentType(field, want string, value interface{}) error {
	return &ValidationError{
		Field:      field,
		Value:      value,
		Constraint: want,
		Message:    fmt.Sprintf("Invalid %s value: must be a %s", field, want),
	}
}

// UnknownOperationError is returned when a tool name is not in the catalog.
type UnknownOperationError struct {
	Name string
}

// Error implements the error interface.
func (e *UnknownOperationError) Error() string {
	return fmt.Sprintf("Unknown tool: %s", e.Name)
}

// Unwrap returns the underlying error type.
func (e *UnknownOperationError) Unwrap() error {
	return ErrUnknownOperation
}

// TransportKind classifies an upstream failure.
type TransportKind string

// Transport failure kinds.
const (
	TransportNetwork          TransportKind = "network"
	TransportStatus           TransportKind = "status"
	TransportDecode           TransportKind = "decode"
	TransportEnvelope         TransportKind = "envelope"
	TransportMissingOperation TransportKind = "missing_operation"
	TransportGraphQL          TransportKind = "graphql"
)

// TransportError represents a failed upstream exchange.
type TransportError struct {
	Operation  string        // Upstream operation (root field) name
	Kind       TransportKind // Failure class
	StatusCode int           // HTTP status, if one was received
	Err        error         // Underlying error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Err != nil:
		return fmt.Sprintf("upstream %s failed (%s, status %d): %v", e.Operation, e.Kind, e.StatusCode, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("upstream %s failed (%s): %v", e.Operation, e.Kind, e.Err)
	default:
		return fmt.Sprintf("upstream %s failed (%s)", e.Operation, e.Kind)
	}
}

// Unwrap returns both the sentinel and the underlying error.
func (e *TransportError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrUpstream}
	}
	return []error{ErrUpstream, e.Err}
}

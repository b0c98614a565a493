// Package errors provides custom error types for the mavroute system.
// These errors enable better error handling, programmatic error checking,
// and precise rejection reasons for endpoint configuration.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Is, As and Join re-export the standard library helpers so callers need a
// single errors import.
var (
	Is   = errors.Is
	As   = errors.As
	Join = errors.Join
)

// Common sentinel errors for the mavroute system
var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates that a resource already exists
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrProtected indicates an attempt to remove a protected endpoint
	ErrProtected = errors.New("protected")

	// ErrTypeMismatch indicates a comparison between values of different types
	ErrTypeMismatch = errors.New("type mismatch")
)

// Endpoint rejection reasons. A ValidationError matches exactly one of these
// in addition to ErrInvalidInput.
var (
	// ErrInvalidField indicates a name or owner outside the length bounds
	ErrInvalidField = errors.New("invalid field")

	// ErrInvalidKind indicates a connection type outside the closed set
	ErrInvalidKind = errors.New("invalid connection type")

	// ErrInvalidAddress indicates a place that is not a domain, IPv4 or IPv6 literal
	ErrInvalidAddress = errors.New("invalid network address")

	// ErrInvalidPort indicates a missing port or one outside 1-65535
	ErrInvalidPort = errors.New("invalid port")

	// ErrInvalidPath indicates a serial place that is not an absolute device path
	ErrInvalidPath = errors.New("invalid serial path")

	// ErrInvalidBaudRate indicates a missing or unsupported serial baud rate
	ErrInvalidBaudRate = errors.New("invalid baud rate")
)

// NotFoundError represents an error when a resource is not found
type NotFoundError struct {
	Resource string
	ID       string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Resource, e.ID)
}

// Is implements errors.Is support
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// AlreadyExistsError represents an attempt to add a resource whose identity is taken
type AlreadyExistsError struct {
	Resource string
	ID       string
}

// Error implements the error interface
func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("%s with ID %s already exists", e.Resource, e.ID)
}

// Is implements errors.Is support
func (e *AlreadyExistsError) Is(target error) bool {
	return target == ErrAlreadyExists
}

// NewAlreadyExistsError creates a new AlreadyExistsError
func NewAlreadyExistsError(resource, id string) *AlreadyExistsError {
	return &AlreadyExistsError{Resource: resource, ID: id}
}

// ProtectedError represents an attempt to remove a protected resource
type ProtectedError struct {
	Resource string
	ID       string
}

// Error implements the error interface
func (e *ProtectedError) Error() string {
	return fmt.Sprintf("%s %s is protected and cannot be removed", e.Resource, e.ID)
}

// Is implements errors.Is support
func (e *ProtectedError) Is(target error) bool {
	return target == ErrProtected
}

// NewProtectedError creates a new ProtectedError
func NewProtectedError(resource, id string) *ProtectedError {
	return &ProtectedError{Resource: resource, ID: id}
}

// ValidationError represents a validation failure
type ValidationError struct {
	Field   string
	Value   any
	Message string

	// Reason is the specific rejection sentinel, e.g. ErrInvalidPort.
	Reason error

	// Allowed lists the accepted values when the input vocabulary is closed.
	Allowed []string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	if target == ErrInvalidInput {
		return true
	}
	return e.Reason != nil && target == e.Reason
}

// NewValidationError creates a new ValidationError
func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// NewRejection creates a ValidationError carrying a specific rejection reason.
func NewRejection(reason error, field string, value any, message string, allowed ...string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
		Reason:  reason,
		Allowed: allowed,
	}
}

// TypeMismatchError is returned when two values of different types are compared.
type TypeMismatchError struct {
	Want string
	Got  string
}

// Error implements the error interface
func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("cannot compare %s with %s", e.Want, e.Got)
}

// Is implements errors.Is support
func (e *TypeMismatchError) Is(target error) bool {
	return target == ErrTypeMismatch
}

// NewTypeMismatchError creates a new TypeMismatchError
func NewTypeMismatchError(want string, got any) *TypeMismatchError {
	return &TypeMismatchError{Want: want, Got: fmt.Sprintf("%T", got)}
}

// ConfigError represents a configuration error
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{
		Component: component,
		Message:   message,
		Err:       err,
	}
}

// ParseError represents an error when parsing data formats
type ParseError struct {
	Format  string // "json", "yaml"
	File    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("parse error in %s file %s: %s", e.Format, e.File, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a new ParseError
func NewParseError(format, file string, message string, err error) *ParseError {
	return &ParseError{
		Format:  format,
		File:    file,
		Message: message,
		Err:     err,
	}
}

// IOError represents an error during I/O operations
type IOError struct {
	Operation string // "read", "stat", "open"
	Path      string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("IO error during %s of %s: %s", e.Operation, e.Path, e.Message)
	}
	return fmt.Sprintf("IO error during %s: %s", e.Operation, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *IOError) Unwrap() error {
	return e.Err
}

// NewIOError creates a new IOError
func NewIOError(operation, path string, err error) *IOError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &IOError{
		Operation: operation,
		Path:      path,
		Message:   message,
		Err:       err,
	}
}

// APIError is an error response from a mavroute server. Code and Reason
// are the server's error code and rejection label.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Reason     string
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("API error (status %d)", e.StatusCode)
	}
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Message)
}

// Is maps the server's error code back to the local sentinels, so
// IsNotFound and Reason work on remote errors.
func (e *APIError) Is(target error) bool {
	switch e.Code {
	case "NOT_FOUND":
		return target == ErrNotFound
	case "CONFLICT":
		return target == ErrAlreadyExists
	case "FORBIDDEN":
		return target == ErrProtected
	case "INVALID_ENDPOINT":
		if target == ErrInvalidInput {
			return true
		}
		for _, r := range reasons {
			if r.label == e.Reason {
				return target == r.err
			}
		}
	}
	return false
}

// NewAPIError creates a new APIError
func NewAPIError(statusCode int, code, message, reason string) *APIError {
	return &APIError{StatusCode: statusCode, Code: code, Message: message, Reason: reason}
}

// Helper functions for error checking

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if an error is an already exists error
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsProtected checks if an error is a protected-resource error
func IsProtected(err error) bool {
	return errors.Is(err, ErrProtected)
}

// IsTypeMismatch checks if an error signals a cross-type comparison
func IsTypeMismatch(err error) bool {
	return errors.Is(err, ErrTypeMismatch)
}

// IsIOError checks if an error came from reading or writing a file
func IsIOError(err error) bool {
	var ioErr *IOError
	return errors.As(err, &ioErr)
}

// IsParseError checks if an error came from decoding a document
func IsParseError(err error) bool {
	var parseErr *ParseError
	return errors.As(err, &parseErr)
}

// reasons maps rejection sentinels to stable labels, most specific first.
var reasons = []struct {
	err   error
	label string
}{
	{ErrInvalidField, "invalid_field"},
	{ErrInvalidKind, "invalid_kind"},
	{ErrInvalidAddress, "invalid_address"},
	{ErrInvalidPort, "invalid_port"},
	{ErrInvalidPath, "invalid_path"},
	{ErrInvalidBaudRate, "invalid_baud_rate"},
	{ErrAlreadyExists, "already_exists"},
	{ErrInvalidInput, "invalid_input"},
}

// Reason returns a stable snake_case label for a rejection error.
// It returns "" for a nil error and "other" when no known reason matches.
func Reason(err error) string {
	if err == nil {
		return ""
	}
	for _, r := range reasons {
		if errors.Is(err, r.err) {
			return r.label
		}
	}
	return "other"
}

// Reasons returns every label Reason can produce for a non-nil error.
func Reasons() []string {
	labels := make([]string, 0, len(reasons)+1)
	for _, r := range reasons {
		labels = append(labels, r.label)
	}
	return append(labels, "other")
}

// Helper wrapping functions for common patterns

// WrapIO wraps an error as an IOError
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return NewIOError(operation, path, err)
}

// WrapParse wraps an error as a ParseError
func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	return NewParseError(format, file, strings.TrimSpace(err.Error()), err)
}

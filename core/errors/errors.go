// Package errors provides standardized error types and helpers for the swptlib codebase.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common cases
var (
	// ErrInvalidInput indicates invalid input or validation failure
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound indicates a resource was not found
	ErrNotFound = errors.New("not found")
	// ErrConfig indicates a missing or malformed configuration value
	ErrConfig = errors.New("configuration error")
)

// ValidationError represents an input validation error with context
type ValidationError struct {
	Field   string // Field name that failed validation
	Value   string // Value that failed validation (may be redacted)
	Message string // Human-readable error message
	Err     error  // Underlying error, if any
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInvalidInput
}

// ConfigError represents a missing or unusable configuration value
type ConfigError struct {
	Key     string // Configuration key (e.g., "SWPT_SERVER_NAME")
	Message string // Why the value is unusable
	Err     error  // Underlying error, if any
}

func (e *ConfigError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("bad configuration for %s: %s", e.Key, e.Message)
	}
	return fmt.Sprintf("bad configuration: %s", e.Message)
}

func (e *ConfigError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrConfig
}

// StorageError represents a failed storage-engine query with context
type StorageError struct {
	Operation string // Query being performed (e.g., "total pages", "page range fetch")
	Table     string // Table involved, if any
	Err       error  // Underlying error
}

func (e *StorageError) Error() string {
	if e.Table != "" {
		return fmt.Sprintf("storage query failed: %s on %s: %v", e.Operation, e.Table, e.Err)
	}
	return fmt.Sprintf("storage query failed: %s: %v", e.Operation, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Helper functions for creating common errors

// NewValidation creates a ValidationError
func NewValidation(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// NewConfig creates a ConfigError
func NewConfig(key, message string) *ConfigError {
	return &ConfigError{
		Key:     key,
		Message: message,
	}
}

// NewStorage creates a StorageError
func NewStorage(operation, table string, err error) *StorageError {
	return &StorageError{
		Operation: operation,
		Table:     table,
		Err:       err,
	}
}

// Wrap adds context to an error. If err is nil, returns nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf adds formatted context to an error. If err is nil, returns nil.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// Is wraps errors.Is for convenience
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

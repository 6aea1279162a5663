// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	ErrConfigInvalid   = errors.New("invalid configuration")
	ErrMalformedSeries = errors.New("malformed bar series")
)

// ConfigError represents an invalid configuration value. It is the only
// error rejected before any computation starts.
type ConfigError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s (%v): %s", e.Field, e.Value, e.Message)
}

func (e *ConfigError) Unwrap() error {
	return ErrConfigInvalid
}

// NewConfigError creates a new ConfigError.
func NewConfigError(field string, value interface{}, message string) *ConfigError {
	return &ConfigError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// MalformedSeriesError represents malformed input data: non-monotonic bar
// indices, NaN/Inf prices, or an inverted high/low range. Malformed data is
// rejected at ingestion rather than propagating into ratio math.
type MalformedSeriesError struct {
	BarIndex int
	Reason   string
}

func (e *MalformedSeriesError) Error() string {
	return fmt.Sprintf("malformed bar series at index %d: %s", e.BarIndex, e.Reason)
}

func (e *MalformedSeriesError) Unwrap() error {
	return ErrMalformedSeries
}

// NewMalformedSeriesError creates a new MalformedSeriesError.
func NewMalformedSeriesError(barIndex int, reason string) *MalformedSeriesError {
	return &MalformedSeriesError{
		BarIndex: barIndex,
		Reason:   reason,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

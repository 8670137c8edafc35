// Package cfgerror contains the error types used when validating the configuration of the filter.
package cfgerror

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotSet should be used when the value is not set, but it is required.
	ErrNotSet = errors.New("not set")
	// ErrUnsupportedValue should be used when the value is not one of the supported values.
	ErrUnsupportedValue = errors.New("not supported")
)

// ValidationError represents an issue with provided configuration.
type ValidationError struct {
	// Key represents a path to the field.
	Key []string
	// Cause contains a reason why validation failed.
	Cause error
}

// Error renders the error as "key.path: cause". Either part is omitted when it is unset.
func (ve ValidationError) Error() string {
	key := strings.Join(ve.Key, ".")
	switch {
	case key != "" && ve.Cause != nil:
		return fmt.Sprintf("%s: %v", key, ve.Cause)
	case ve.Cause != nil:
		return ve.Cause.Error()
	default:
		return key
	}
}

// Unwrap returns the cause of the validation error.
func (ve ValidationError) Unwrap() error {
	return ve.Cause
}

// NewValidationError creates a new ValidationError with provided parameters.
func NewValidationError(err error, keys ...string) ValidationError {
	return ValidationError{Key: keys, Cause: err}
}

// ValidationErrors is a list of ValidationError-s.
type ValidationErrors []ValidationError

// Append adds the error to the list, prefixing its key path with keys. Errors that are not
// validation errors get wrapped into one, and a nil error is ignored.
func (vs ValidationErrors) Append(err error, keys ...string) ValidationErrors {
	var (
		single   ValidationError
		multiple ValidationErrors
	)

	switch {
	case err == nil:
		return vs
	case errors.As(err, &multiple):
		for _, ve := range multiple {
			vs = vs.Append(ve, keys...)
		}
		return vs
	case errors.As(err, &single):
		return append(vs, ValidationError{
			Key:   append(append([]string{}, keys...), single.Key...),
			Cause: single.Cause,
		})
	default:
		return append(vs, NewValidationError(err, keys...))
	}
}

// AsError returns nil if there are no elements and itself if there is at least one.
func (vs ValidationErrors) AsError() error {
	if len(vs) == 0 {
		return nil
	}
	return vs
}

// Error joins all validation errors by newlines.
func (vs ValidationErrors) Error() string {
	messages := make([]string, 0, len(vs))
	for _, ve := range vs {
		messages = append(messages, ve.Error())
	}
	return strings.Join(messages, "\n")
}

// Unwrap returns the contained validation errors so that errors.Is and errors.As can inspect each
// of them.
func (vs ValidationErrors) Unwrap() []error {
	errs := make([]error, 0, len(vs))
	for _, ve := range vs {
		errs = append(errs, ve)
	}
	return errs
}

// New returns an empty list of validation errors to append to.
func New() ValidationErrors {
	return nil
}

// IsSet returns ErrNotSet if the value is nil.
func IsSet[T any](value *T) error {
	if value == nil {
		return ErrNotSet
	}
	return nil
}

// IsSupportedValue returns an error wrapping ErrUnsupportedValue if value is not one of supported.
func IsSupportedValue[T comparable](value T, supported ...T) error {
	for _, candidate := range supported {
		if value == candidate {
			return nil
		}
	}
	return fmt.Errorf("%w: %v", ErrUnsupportedValue, value)
}

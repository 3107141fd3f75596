package telemetry

import (
	"errors"
	"fmt"
)

var (
	ErrMissingValue = errors.New("telemetry: missing value")
	ErrInvalidValue = errors.New("telemetry: invalid value")
	ErrUnknownKey   = errors.New("telemetry: unknown key")
)

// FieldError reports the field that caused a record to be rejected.
type FieldError struct {
	Err   error
	Key   string
	Value string
}

// Error implements error.
func (e *FieldError) Error() string {
	if e.Err == ErrMissingValue {
		return fmt.Sprintf("%v in field %q", e.Err, e.Key)
	}
	return fmt.Sprintf("%v for key %q: %q", e.Err, e.Key, e.Value)
}

// Unwrap returns the sentinel describing the failure.
func (e *FieldError) Unwrap() error { return e.Err }

func fieldError(err error, key, value []byte) error {
	return &FieldError{Err: err, Key: string(key), Value: string(value)}
}

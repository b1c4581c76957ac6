package booking

import (
	"errors"
	"fmt"
)

var (
	ErrBookingNotFound = errors.New("token booking not found")
	ErrBookingConflict = errors.New("patient already has an active booking for this date")
	ErrServingNotFound = errors.New("no current token for this doctor")
	ErrWrongDepartment = errors.New("token belongs to a different department")
)

// ValidationError rejects a malformed request before any state changes.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

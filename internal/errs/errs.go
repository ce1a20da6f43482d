// Package errs defines the error taxonomy shared by services and handlers.
package errs

import (
	"errors"
	"strings"
)

var (
	// ErrLicenseNotFound is returned when an update or reactivation matches
	// zero rows.
	ErrLicenseNotFound = errors.New("license not found or no changes applied")

	// ErrTicketNotFound is returned when a ticket update matches zero rows.
	ErrTicketNotFound = errors.New("ticket not found")

	// ErrNoFields is returned when a partial update carries nothing to write.
	ErrNoFields = errors.New("no fields provided for update")
)

// ValidationError reports client-fault input problems: either a list of
// missing required fields or a free-form reason.
type ValidationError struct {
	Fields []string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason != "" {
		return e.Reason
	}
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

// Message renders the error for an API envelope; prefix is used for
// missing-field errors ("Missing required license data: a, b").
func (e *ValidationError) Message(prefix string) string {
	if e.Reason != "" {
		return e.Reason
	}
	return prefix + ": " + strings.Join(e.Fields, ", ")
}

// MissingFields builds a ValidationError naming absent required fields.
func MissingFields(fields ...string) error {
	return &ValidationError{Fields: fields}
}

// Invalid builds a ValidationError with a free-form reason.
func Invalid(reason string) error {
	return &ValidationError{Reason: reason}
}

// AsValidation unwraps err into a ValidationError, if it is one.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

package payload

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation matches every *ValidationError.
	ErrValidation = errors.New("payload validation failed")

	// ErrTooShort is returned for compact payloads shorter than CompactSize.
	ErrTooShort = errors.New("payload too short")

	// ErrUnsupportedVersion is returned for unknown format versions.
	ErrUnsupportedVersion = errors.New("unsupported version")

	// ErrInvalidTier is returned when the tier flag is not exactly one defined pattern.
	ErrInvalidTier = errors.New("invalid tier flag")
)

// ValidationError describes a malformed payload.
//
// errors.Is(err, ErrValidation) is true for every ValidationError. The cause (if
// any) can be accessed via errors.Unwrap.
type ValidationError struct {
	Field  string
	Reason string
	cause  error
}

func (e *ValidationError) Error() string {
	msg := e.Reason
	if e.Field != "" {
		msg = e.Field + ": " + msg
	}
	if e.cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.cause)
	}
	return "invalid payload: " + msg
}

func (e *ValidationError) Unwrap() error { return e.cause }

// Is reports whether target is ErrValidation.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(field, reason string, cause error) error {
	return &ValidationError{Field: field, Reason: reason, cause: cause}
}

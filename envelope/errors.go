package envelope

import "errors"

var (
	// ErrAuthentication matches every *AuthError.
	ErrAuthentication = errors.New("envelope authentication failed")

	// ErrEmptyKey is returned when signing with an empty key.
	ErrEmptyKey = errors.New("envelope: empty key")
)

// AuthError reports why an envelope failed verification.
//
// Reasons are deliberately coarse; they never include the expected signature.
type AuthError struct {
	Reason string
	cause  error
}

func (e *AuthError) Error() string {
	if e.cause != nil {
		return "authentication failed: " + e.Reason + ": " + e.cause.Error()
	}
	return "authentication failed: " + e.Reason
}

func (e *AuthError) Unwrap() error { return e.cause }

// Is reports whether target is ErrAuthentication.
func (e *AuthError) Is(target error) bool { return target == ErrAuthentication }

func authFailed(reason string, cause error) error {
	return &AuthError{Reason: reason, cause: cause}
}

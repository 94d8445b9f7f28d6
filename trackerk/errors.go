package trackerk

import "github.com/pkg/errors"

// Rejection reasons returned by the guard
const (
	ReasonUnsupportedScheme = "unsupported-scheme"
	ReasonNoHostname        = "no-hostname"
	ReasonPrivateIP         = "private-or-loopback-ip"
	ReasonDNSPrivateIP      = "dns-resolved-private-ip"
)

// revive:exported
var (
	ErrTargetRejected     = errors.New("target not allowed")
	ErrLaunchFailed       = errors.New("failed to launch browser")
	ErrNavigationTimedOut = errors.New("navigation timed out")
	ErrTimedOut           = errors.New("request timed out")
	ErrTabCrashed         = errors.New("tab crashed")
	ErrTabClosing         = errors.New("closing")
	ErrNavigating         = errors.New("error in navigation")
)

// ValidationError is returned when the target url is not allowed to be scanned.
// It is never worth retrying.
type ValidationError struct {
	URL    string
	Reason string
}

func (e *ValidationError) Error() string {
	return ErrTargetRejected.Error() + ": " + e.Reason
}

// Is allows errors.Is(err, ErrTargetRejected)
func (e *ValidationError) Is(target error) bool {
	return target == ErrTargetRejected
}

// IsValidationError returns the ValidationError if err is or wraps one
func IsValidationError(err error) (*ValidationError, bool) {
	var v *ValidationError
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}

package host

import "errors"

// UnavailableError marks a transport-level failure reaching the host.
// During matching these degrade single features; at readiness verification
// they are the signal the relaunch has not come up yet.
type UnavailableError struct {
	Err error
}

func (e *UnavailableError) Error() string {
	if e.Err == nil {
		return "host unavailable"
	}
	return "host unavailable: " + e.Err.Error()
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

// IsUnavailable reports whether err means the host could not be reached
func IsUnavailable(err error) bool {
	var e *UnavailableError
	return errors.As(err, &e)
}

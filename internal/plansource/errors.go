package plansource

import (
	"errors"
	"fmt"
)

// ErrorKind partitions plan-source failures for the orchestrator, which
// aborts on any of them before touching the host
type ErrorKind string

const (
	KindUnauthorized ErrorKind = "unauthorized"
	KindNotFound     ErrorKind = "not_found"
	KindNetwork      ErrorKind = "network"
)

// Error is a classified plan-source failure
type Error struct {
	Kind   ErrorKind
	Status int
	Op     string
	Err    error
}

func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("plan source %s: %s (status %d)", e.Op, e.Kind, e.Status)
	}
	if e.Err != nil {
		return fmt.Sprintf("plan source %s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("plan source %s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsUnauthorized reports whether err is a credential failure
func IsUnauthorized(err error) bool {
	return hasKind(err, KindUnauthorized)
}

// IsNotFound reports whether err means no matching plan exists
func IsNotFound(err error) bool {
	return hasKind(err, KindNotFound)
}

// IsNetwork reports whether err is a transport-level failure
func IsNetwork(err error) bool {
	return hasKind(err, KindNetwork)
}

func hasKind(err error, kind ErrorKind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

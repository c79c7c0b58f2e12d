package llm

import (
	"errors"
	"fmt"

	"autonotes/internal/health"
)

// Kind distinguishes the ways a generation call can fail.
type Kind int

const (
	KindUnconfigured Kind = iota + 1
	KindTimeout
	KindConnection
	KindStatus
	KindEnvelope
	KindEmpty
	KindParse
	KindRequest
)

func (k Kind) String() string {
	switch k {
	case KindUnconfigured:
		return "unconfigured"
	case KindTimeout:
		return "timeout"
	case KindConnection:
		return "connection"
	case KindStatus:
		return "status"
	case KindEnvelope:
		return "envelope"
	case KindEmpty:
		return "empty"
	case KindParse:
		return "parse"
	case KindRequest:
		return "request"
	}
	return "unknown"
}

// Error is the single error type for provider failures. Schema violations in
// an otherwise well-formed reply are reported as *schema.Violation instead.
type Error struct {
	Kind       Kind
	Provider   string
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	if e.Provider == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// AsError extracts an *Error from err.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// Status classifies a failure for the health endpoint.
func (e *Error) Status() health.Status {
	switch {
	case e.Kind == KindUnconfigured:
		return health.Fail(health.StateUnconfigured, e.Error())
	case e.Kind == KindTimeout, e.Kind == KindConnection:
		return health.Fail(health.StateUnreachable, e.Error())
	case e.Kind == KindStatus && (e.StatusCode == 401 || e.StatusCode == 403):
		return health.Fail(health.StateUnauthenticated, e.Error())
	}
	return health.Fail(health.StateUnhealthy, e.Error())
}

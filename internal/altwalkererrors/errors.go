// Package altwalkererrors defines the error taxonomy shared by every AltWalker
// component. Rather than exceptions, each failure mode is tagged with a
// Kind so callers can branch on category instead of concrete type, and the
// CLI can map a Kind directly to an exit code.
package altwalkererrors

import (
	"errors"
	"fmt"
)

// Kind categorises an Error into one of the error taxonomy entries shared
// across the generator, executor, and validator layers.
type Kind int

const (
	// KindValidation means a model set violates a data-model invariant.
	KindValidation Kind = iota
	// KindGenerator means the path-generator subprocess failed to start,
	// crashed, or returned an ill-formed/failure envelope.
	KindGenerator
	// KindExecutorTransport means an HTTP failure unrelated to the wire
	// protocol contract (connection refused, timeout, etc).
	KindExecutorTransport
	// KindExecutorProtocol means the executor responded with a recognised
	// protocol-error status code.
	KindExecutorProtocol
	// KindStepFailure means the executor returned 200 with a non-null error.
	KindStepFailure
	// KindFixtureFailure means a fixture invocation failed.
	KindFixtureFailure
	// KindInterrupted means the run was cancelled by the host.
	KindInterrupted
	// KindInternal is a catch-all for runner bugs (nil state, assertion
	// failures) that are not attributable to any of the above.
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindGenerator:
		return "generator"
	case KindExecutorTransport:
		return "executor_transport"
	case KindExecutorProtocol:
		return "executor_protocol"
	case KindStepFailure:
		return "step_failure"
	case KindFixtureFailure:
		return "fixture_failure"
	case KindInterrupted:
		return "interrupted"
	case KindInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// Error is the concrete error type raised by every AltWalker component.
type Error struct {
	Kind    Kind
	Op      string // component/operation, e.g. "walker.runStep"
	Message string
	Err     error
}

// New constructs an Error with no wrapped cause.
func New(kind Kind, op, message string) *Error {
	return &Error{Kind: kind, Op: op, Message: message}
}

// Wrap constructs an Error wrapping an underlying cause.
func Wrap(kind Kind, op string, err error) *Error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Message: err.Error(), Err: err}
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Op != "" {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Op, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the wrapped cause, if any.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches on Kind so errors.Is(err, altwalkererrors.KindX) style checks
// are not possible directly (Kind is not an error); use KindOf instead.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// KindOf extracts the Kind from err, defaulting to KindInternal when err is
// not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

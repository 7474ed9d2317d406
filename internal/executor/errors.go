package executor

import "fmt"

// ProtocolErrorKind enumerates the typed executor-protocol error kinds the
// executor wire contract distinguishes.
type ProtocolErrorKind int

const (
	PathNotFound ProtocolErrorKind = iota
	LoadError
	NoCodeLoaded
	ModelNotFound
	StepNotFound
	InvalidStepHandler
	Unhandled
)

func (k ProtocolErrorKind) String() string {
	switch k {
	case PathNotFound:
		return "path_not_found"
	case LoadError:
		return "load_error"
	case NoCodeLoaded:
		return "no_code_loaded"
	case ModelNotFound:
		return "model_not_found"
	case StepNotFound:
		return "step_not_found"
	case InvalidStepHandler:
		return "invalid_step_handler"
	default:
		return "unhandled"
	}
}

// Fatal reports whether the protocol error kind is immediately fatal for
// the run (path-not-found, load-error, no-code-loaded) as opposed to one
// that merely flags the current step as failed and lets the run continue.
func (k ProtocolErrorKind) Fatal() bool {
	switch k {
	case PathNotFound, LoadError, NoCodeLoaded:
		return true
	default:
		return false
	}
}

// ProtocolError is raised for every executor response outside the
// 200/4xx-reserved-as-success-shape contract.
type ProtocolError struct {
	Kind    ProtocolErrorKind
	Message string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("executor protocol error (%s): %s", e.Kind, e.Message)
}

// kindForStatus maps an executor HTTP status code to a ProtocolErrorKind
// using the reserved status codes below.
func kindForStatus(status int) ProtocolErrorKind {
	switch status {
	case 460:
		return ModelNotFound
	case 461:
		return StepNotFound
	case 462:
		return InvalidStepHandler
	case 463:
		return PathNotFound
	case 464:
		return LoadError
	case 465:
		return NoCodeLoaded
	default:
		return Unhandled
	}
}

package main

import (
	"errors"

	"github.com/altwalker/altwalker-go/internal/altwalkererrors"
)

// Exit codes per the stable CLI contract.
const (
	exitPassed        = 0
	exitFailed         = 1
	exitUsageError     = 2
	exitGeneratorError = 3
	exitInternalError  = 4
)

// exitCodeFor maps a returned error to the process exit code. A nil error
// always means exitPassed; callers check run results separately for
// exitFailed.
func exitCodeFor(err error) int {
	if err == nil {
		return exitPassed
	}
	if errors.Is(err, errRunFailed) {
		return exitFailed
	}

	var usage *usageError
	if errors.As(err, &usage) {
		return exitUsageError
	}

	var awErr *altwalkererrors.Error
	if errors.As(err, &awErr) {
		switch awErr.Kind {
		case altwalkererrors.KindGenerator:
			return exitGeneratorError
		default:
			return exitInternalError
		}
	}

	return exitInternalError
}

// usageError marks a CLI-usage mistake (bad flags, missing required
// arguments) distinct from a runner failure.
type usageError struct{ err error }

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func newUsageError(err error) error { return &usageError{err: err} }

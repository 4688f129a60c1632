package orchestrator

import (
	"errors"
	"fmt"
)

// stageError signals an operation that is not valid in the current stage.
type stageError struct {
	op    string
	stage Stage
}

func (e stageError) Error() string { return fmt.Sprintf("%s not allowed while %s", e.op, e.stage) }

// IsStage reports whether err was caused by calling an operation in the wrong stage.
func IsStage(err error) bool {
	var se stageError
	return errors.As(err, &se)
}

// AbortError is returned when a fault stops the run under PolicyAbort.
type AbortError struct {
	Manager string
	Err     error
}

func (e *AbortError) Error() string { return "run aborted by " + e.Manager + ": " + e.Err.Error() }

func (e *AbortError) Unwrap() error { return e.Err }

// IsAborted reports whether err indicates an aborted run.
func IsAborted(err error) bool {
	var ae *AbortError
	return errors.As(err, &ae)
}

// ErrDuplicate is returned when the same manager instance is registered twice.
var ErrDuplicate = errors.New("manager already registered")

package lifecycle

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfPhase is returned when an operation is called outside the phase
	// window that accepts it. It does not fail the manager.
	ErrOutOfPhase = errors.New("operation not allowed in current phase")
	// ErrNotDone is returned by PreloadCompleted/ReleaseCompleted when the
	// matching done latch is not set yet.
	ErrNotDone = errors.New("stage not done")
)

// Fault describes a failed contract operation.
type Fault struct {
	Manager string
	Op      Op
	Phase   Phase // phase in which the operation ran
	Err     error
	// Panic holds the recovered value when the hook panicked.
	Panic any
}

func (f *Fault) Error() string {
	return fmt.Sprintf("%s: %s (%s): %v", f.Manager, f.Op, f.Phase, f.Err)
}

func (f *Fault) Unwrap() error { return f.Err }

// AsFault extracts a *Fault from err.
func AsFault(err error) (*Fault, bool) {
	var f *Fault
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}

// IsFault reports whether err is, or wraps, a *Fault.
func IsFault(err error) bool {
	_, ok := AsFault(err)
	return ok
}

// IsOutOfPhase reports whether err was caused by calling an operation in the
// wrong phase.
func IsOutOfPhase(err error) bool { return errors.Is(err, ErrOutOfPhase) }

// IsPanic reports whether err came from a recovered hook panic.
func IsPanic(err error) bool {
	f, ok := AsFault(err)
	return ok && f.Panic != nil
}

func panicError(r any) error {
	if err, ok := r.(error); ok {
		return fmt.Errorf("panic: %w", err)
	}
	return fmt.Errorf("panic: %v", r)
}

package lifecycle

import "github.com/rs/zerolog"

// Manager is the capability set a subsystem exposes to the driver.
//
// Phase-transition operations return an error instead of failing silently:
// nil on success, a *Fault otherwise. Progress values are in [0, 1] and never
// decrease within a cycle; the done latches never revert within a cycle.
type Manager interface {
	// Name is a label for logs and diagnostics. It is never a lookup key.
	Name() string
	// Phase reports the current lifecycle phase.
	Phase() Phase
	// Err returns the fault that moved the manager to PhaseFailed, if any.
	Err() error

	// Preload starts the progress-reportable setup stage and returns immediately.
	Preload() error
	// PreloadProgress polls preload work and returns its progress.
	PreloadProgress() float64
	// IsPreloadDone reports whether preload progress has been observed at 1.0.
	IsPreloadDone() bool
	// PreloadCompleted notifies the manager that the driver saw preload finish.
	PreloadCompleted() error

	// Initialization performs one-time setup after preload completed.
	Initialization(env Env) error
	// Tick advances per-frame logic.
	Tick(f Frame) error

	// Release starts teardown and returns immediately.
	Release() error
	// ReleaseProgress polls teardown work and returns its progress.
	ReleaseProgress() float64
	// IsReleaseDone reports whether release has been observed complete.
	IsReleaseDone() bool
	// ReleaseCompleted notifies the manager that the driver saw release finish.
	ReleaseCompleted() error
}

// Frame carries the caller's clock facts for one tick. All values are seconds
// except Count.
type Frame struct {
	Count       int     // monotonically increasing frame number
	Time        float64 // scaled time since start
	Delta       float64 // scaled time since the previous frame
	Unscaled    float64 // unscaled time since start
	RealElapsed float64 // wall-clock time since the previous frame
}

// Env is handed to Initialization. It replaces any global framework instance:
// peers are reached through Peers, never through package state.
type Env struct {
	Log   zerolog.Logger
	Peers Registry
}

// Registry lists the managers participating in the same run.
type Registry interface {
	Managers() []Manager
}

// Find returns the first peer in reg that implements T. Managers built with
// New are matched on their hooks as well, so Find[*assets.Loader] works for a
// skeleton wrapping an asset loader.
func Find[T any](reg Registry) (T, bool) {
	var zero T
	if reg == nil {
		return zero, false
	}
	for _, m := range reg.Managers() {
		if v, ok := m.(T); ok {
			return v, true
		}
		if hm, ok := m.(interface{ Hooks() Hooks }); ok {
			if v, ok := hm.Hooks().(T); ok {
				return v, true
			}
		}
	}
	return zero, false
}

// Hooks is the only mandatory customization point.
type Hooks interface {
	OnInitialization(env Env) error
}

// Optional hooks. A Hooks value implementing none of them behaves as a manager
// with no preload, per-frame or teardown work.
type (
	TickHook interface {
		OnTick(f Frame) error
	}
	PreloadHook interface {
		OnPreload() error
	}
	PreloadCompletedHook interface {
		OnPreloadCompleted() error
	}
	ReleaseHook interface {
		OnRelease() error
	}
	ReleaseCompletedHook interface {
		OnReleaseCompleted() error
	}

	// PreloadReporter overrides the default preload progress of 1.0.
	PreloadReporter interface {
		PreloadProgress() float64
	}
	// ReleaseReporter overrides the default release progress of 1.0. Release
	// is done once a poll returns 1.0.
	ReleaseReporter interface {
		ReleaseProgress() float64
	}
	// Namer overrides the default name (the hook type's name).
	Namer interface {
		Name() string
	}
)

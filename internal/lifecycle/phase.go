package lifecycle

// Phase is the lifecycle position of a manager.
type Phase int

const (
	PhaseUninitialized Phase = iota
	PhasePreloading
	PhasePreloadComplete
	PhaseInitialized
	PhaseReleasing
	PhaseReleased
	// PhaseFailed is terminal for the current cycle: a hook faulted.
	PhaseFailed
)

var phaseNames = [...]string{
	PhaseUninitialized:   "uninitialized",
	PhasePreloading:      "preloading",
	PhasePreloadComplete: "preload_complete",
	PhaseInitialized:     "initialized",
	PhaseReleasing:       "releasing",
	PhaseReleased:        "released",
	PhaseFailed:          "failed",
}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return "unknown"
	}
	return phaseNames[p]
}

// Active reports whether the manager has begun a cycle and not yet finished it.
func (p Phase) Active() bool { return p >= PhasePreloading && p <= PhaseReleasing }

// Op names a contract operation. Used in faults, events and metric labels.
type Op string

const (
	OpPreload          Op = "preload"
	OpPreloadProgress  Op = "preload_progress"
	OpPreloadCompleted Op = "preload_completed"
	OpInitialization   Op = "initialization"
	OpTick             Op = "tick"
	OpRelease          Op = "release"
	OpReleaseProgress  Op = "release_progress"
	OpReleaseCompleted Op = "release_completed"
)

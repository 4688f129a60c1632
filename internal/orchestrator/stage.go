package orchestrator

// Stage is the orchestrator-wide position in the run.
type Stage string

const (
	StageIdle       Stage = "idle"
	StagePreloading Stage = "preloading"
	StageRunning    Stage = "running"
	StageReleasing  Stage = "releasing"
	StageStopped    Stage = "stopped"
)

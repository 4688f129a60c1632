package orchestrator

import (
	"haloframe/pkg/types"
)

// Stage returns the current stage.
func (o *Orchestrator) Stage() Stage {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.stage
}

// Ready reports whether the run reached StageRunning and is still there.
func (o *Orchestrator) Ready() bool { return o.Stage() == StageRunning }

// Err returns the error that aborted the run, if any.
func (o *Orchestrator) Err() error {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.abortErr
}

// Progress returns the mean progress of the current stage across healthy
// managers: preload progress while preloading, release progress while
// releasing.
func (o *Orchestrator) Progress() float64 {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.progress()
}

func (o *Orchestrator) progress() float64 {
	var set []*entry
	switch o.stage {
	case StageIdle:
		return 0
	case StagePreloading:
		set = o.live()
	case StageReleasing:
		set = o.releasing()
	default:
		return 1
	}
	if len(set) == 0 {
		return 1
	}
	var sum float64
	for _, e := range set {
		sum += e.progress
	}
	return sum / float64(len(set))
}

// Status builds a detailed status response for /status. It reads cached
// progress only; it never polls a manager.
func (o *Orchestrator) Status() types.StatusResponse {
	o.mu.RLock()
	defer o.mu.RUnlock()
	resp := types.StatusResponse{
		RunID:    o.runID,
		Stage:    string(o.stage),
		Policy:   o.cfg.Policy.String(),
		Frame:    o.frame.Count,
		Time:     o.frame.Time,
		Progress: o.progress(),
		Error:    errString(o.abortErr),
	}
	if !o.startTime.IsZero() {
		resp.UptimeSeconds = o.cfg.Clock.Since(o.startTime).Seconds()
	}
	resp.Managers = make([]types.ManagerStatus, 0, len(o.entries))
	for _, e := range o.entries {
		resp.Managers = append(resp.Managers, types.ManagerStatus{
			Name:     e.m.Name(),
			Phase:    e.m.Phase().String(),
			Progress: e.progress,
			Failed:   e.failed,
			Fault:    errString(e.fault),
		})
	}
	return resp
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

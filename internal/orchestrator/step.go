package orchestrator

import (
	"fmt"
	"slices"

	"haloframe/internal/lifecycle"
	"haloframe/internal/statuscode"
)

// Start calls Preload on every manager and enters StagePreloading.
func (o *Orchestrator) Start() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.stage != StageIdle {
		return stageError{op: "start", stage: o.stage}
	}
	o.startTime = o.cfg.Clock.Now()
	o.setStage(StagePreloading)
	for _, e := range o.live() {
		if err := o.handle(e, e.m.Preload()); err != nil {
			return err
		}
	}
	return nil
}

// Step advances the run by one frame.
func (o *Orchestrator) Step(f lifecycle.Frame) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.frame = f
	framesTotal.Inc()
	switch o.stage {
	case StagePreloading:
		return o.stepPreload()
	case StageRunning:
		return o.stepTick(f)
	case StageReleasing:
		o.stepRelease()
		return nil
	}
	return stageError{op: "step", stage: o.stage}
}

// Shutdown starts releasing every healthy manager in reverse registration
// order. It is idempotent; calling it before Start stops the orchestrator
// without touching any manager.
func (o *Orchestrator) Shutdown() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	switch o.stage {
	case StageIdle:
		o.stop()
	case StagePreloading, StageRunning:
		o.beginRelease()
	}
	return nil
}

func (o *Orchestrator) stepPreload() error {
	o.stageFrames++
	done := true
	for _, e := range o.live() {
		e.progress = e.m.PreloadProgress()
		if e.m.Phase() == lifecycle.PhaseFailed {
			if err := o.handle(e, e.m.Err()); err != nil {
				return err
			}
			continue
		}
		if e.m.IsPreloadDone() {
			continue
		}
		if o.cfg.PreloadBudget > 0 && o.stageFrames >= o.cfg.PreloadBudget {
			e.timedOut = true
			if err := o.handle(e, o.timeout(e, lifecycle.OpPreloadProgress, o.cfg.PreloadBudget)); err != nil {
				return err
			}
			continue
		}
		done = false
	}
	if !done {
		return nil
	}
	for _, e := range o.live() {
		if err := o.handle(e, e.m.PreloadCompleted()); err != nil {
			return err
		}
	}
	env := lifecycle.Env{Log: o.log, Peers: peerSet(o.managers())}
	for _, e := range o.live() {
		env.Log = o.log.With().Str("manager", e.m.Name()).Logger()
		if err := o.handle(e, e.m.Initialization(env)); err != nil {
			return err
		}
	}
	o.setStage(StageRunning)
	return nil
}

func (o *Orchestrator) stepTick(f lifecycle.Frame) error {
	o.runFrames++
	for _, e := range o.live() {
		if err := o.handle(e, e.m.Tick(f)); err != nil {
			return err
		}
	}
	if o.cfg.MaxFrames > 0 && o.runFrames >= o.cfg.MaxFrames {
		o.log.Info().Int("frames", o.runFrames).Msg("frame limit reached")
		o.beginRelease()
	}
	return nil
}

// beginRelease releases every manager that started a cycle and whose hooks
// never faulted, including managers timed out during preload. Managers that
// never preloaded are left untouched.
func (o *Orchestrator) beginRelease() {
	o.setStage(StageReleasing)
	order := slices.Clone(o.entries)
	slices.Reverse(order)
	for _, e := range order {
		if e.failed && !e.timedOut {
			continue
		}
		if !e.m.Phase().Active() || e.releasing {
			continue
		}
		e.releasing = true
		e.progress = 0
		if err := e.m.Release(); err != nil {
			o.dropRelease(e, err)
		}
	}
	o.stepReleaseDone()
}

func (o *Orchestrator) stepRelease() {
	o.stageFrames++
	for _, e := range o.releasing() {
		if e.m.IsReleaseDone() {
			e.progress = 1
			continue
		}
		e.progress = e.m.ReleaseProgress()
		if e.m.Phase() == lifecycle.PhaseFailed {
			o.dropRelease(e, e.m.Err())
			continue
		}
		if !e.m.IsReleaseDone() && o.cfg.ReleaseBudget > 0 && o.stageFrames >= o.cfg.ReleaseBudget {
			o.dropRelease(e, o.timeout(e, lifecycle.OpReleaseProgress, o.cfg.ReleaseBudget))
		}
	}
	o.stepReleaseDone()
}

// dropRelease stops waiting on a manager whose release faulted.
func (o *Orchestrator) dropRelease(e *entry, err error) {
	e.releasing = false
	o.markFailed(e, err)
}

// stepReleaseDone finishes the run once every manager being released is done.
func (o *Orchestrator) stepReleaseDone() {
	set := o.releasing()
	for _, e := range set {
		if !e.m.IsReleaseDone() {
			return
		}
	}
	slices.Reverse(set)
	for _, e := range set {
		if err := e.m.ReleaseCompleted(); err != nil {
			o.dropRelease(e, err)
			continue
		}
		e.releasing = false
	}
	o.stop()
}

// stop ends the run and removes its managers from the managers gauge.
func (o *Orchestrator) stop() {
	o.setStage(StageStopped)
	for _, e := range o.entries {
		managersGauge.WithLabelValues(health(e)).Dec()
	}
}

// handle applies the fault policy to err. It returns a non-nil error only
// when the run is aborted.
func (o *Orchestrator) handle(e *entry, err error) error {
	if !o.markFailed(e, err) || o.cfg.Policy != PolicyAbort {
		return nil
	}
	o.abortErr = &AbortError{Manager: e.m.Name(), Err: err}
	o.log.Error().Err(err).Str("manager", e.m.Name()).Msg("aborting run")
	o.beginRelease()
	return o.abortErr
}

// markFailed isolates the manager behind err. It reports whether err was non-nil.
func (o *Orchestrator) markFailed(e *entry, err error) bool {
	if err == nil {
		return false
	}
	if e.failed {
		return true
	}
	e.failed = true
	e.fault = err
	op := lifecycle.Op("unknown")
	if f, ok := lifecycle.AsFault(err); ok {
		op = f.Op
	}
	faultsTotal.WithLabelValues(e.m.Name(), string(op)).Inc()
	if o.stage != StageStopped {
		managersGauge.WithLabelValues("healthy").Dec()
		managersGauge.WithLabelValues("failed").Inc()
	}
	o.log.Error().Err(err).Str("manager", e.m.Name()).Str("op", string(op)).Msg("manager failed")
	o.pub.Publish(lifecycle.Event{Name: EventManagerFailed, Manager: e.m.Name(), Op: op, Phase: e.m.Phase(), Err: err})
	return true
}

func (o *Orchestrator) timeout(e *entry, op lifecycle.Op, budget int) error {
	return &lifecycle.Fault{
		Manager: e.m.Name(),
		Op:      op,
		Phase:   e.m.Phase(),
		Err:     statuscode.TimeOut.Err(fmt.Sprintf("not done after %d frames (progress %.2f)", budget, e.progress)),
	}
}

// live returns the entries that have not failed.
func (o *Orchestrator) live() []*entry {
	out := make([]*entry, 0, len(o.entries))
	for _, e := range o.entries {
		if !e.failed {
			out = append(out, e)
		}
	}
	return out
}

// EventManagerFailed is published when the orchestrator isolates a manager.
const EventManagerFailed = "manager_failed"

// releasing returns the entries still being released, in registration order.
func (o *Orchestrator) releasing() []*entry {
	out := make([]*entry, 0, len(o.entries))
	for _, e := range o.entries {
		if e.releasing {
			out = append(out, e)
		}
	}
	return out
}

func (o *Orchestrator) setStage(s Stage) {
	if o.stage == s {
		return
	}
	o.log.Info().Str("from", string(o.stage)).Str("to", string(s)).Int("frame", o.frame.Count).Msg("stage")
	o.stage = s
	o.stageFrames = 0
}

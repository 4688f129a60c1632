package orchestrator

import (
	"context"

	"haloframe/internal/lifecycle"
)

// Run starts the orchestrator and steps it once per clock tick until every
// manager is released. Cancelling ctx triggers Shutdown; Run keeps stepping
// so release can finish over the following frames. It returns the abort
// error, if a fault aborted the run.
func (o *Orchestrator) Run(ctx context.Context) error {
	if err := o.Start(); err != nil && !IsAborted(err) {
		return err
	}
	ticker := o.cfg.Clock.NewTicker(o.cfg.FrameInterval)
	defer ticker.Stop()

	start := o.cfg.Clock.Now()
	last := start
	var scaled float64
	count := 0
	done := ctx.Done()
	for {
		if o.Stage() == StageStopped {
			return o.Err()
		}
		select {
		case <-done:
			done = nil
			o.log.Info().Msg("shutdown requested")
			_ = o.Shutdown()
		case now := <-ticker.C():
			count++
			elapsed := now.Sub(last).Seconds()
			last = now
			delta := elapsed * o.cfg.TimeScale
			scaled += delta
			f := lifecycle.Frame{
				Count:       count,
				Time:        scaled,
				Delta:       delta,
				Unscaled:    now.Sub(start).Seconds(),
				RealElapsed: elapsed,
			}
			if err := o.Step(f); err != nil && !IsAborted(err) {
				o.log.Warn().Err(err).Int("frame", count).Msg("step")
			}
		}
	}
}

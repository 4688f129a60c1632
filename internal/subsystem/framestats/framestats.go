// Package framestats is a tick-only manager that tracks frame timing.
package framestats

import (
	"github.com/rs/zerolog"

	"haloframe/internal/lifecycle"
)

// Stats accumulates frame counts and elapsed time.
type Stats struct {
	// LogEvery logs a summary every LogEvery frames; 0 disables it.
	LogEvery int

	log         zerolog.Logger
	frames      int
	elapsed     float64
	realElapsed float64
	last        lifecycle.Frame
}

var _ lifecycle.TickHook = (*Stats)(nil)

func (s *Stats) OnInitialization(env lifecycle.Env) error {
	s.log = env.Log
	s.frames, s.elapsed, s.realElapsed = 0, 0, 0
	return nil
}

func (s *Stats) OnTick(f lifecycle.Frame) error {
	s.frames++
	s.elapsed += f.Delta
	s.realElapsed += f.RealElapsed
	s.last = f
	if s.LogEvery > 0 && s.frames%s.LogEvery == 0 {
		s.log.Debug().Int("frames", s.frames).Float64("fps", s.FPS()).Float64("time", f.Time).Msg("frame stats")
	}
	return nil
}

// Frames returns the number of ticks seen.
func (s *Stats) Frames() int { return s.frames }

// Elapsed returns the sum of scaled frame deltas.
func (s *Stats) Elapsed() float64 { return s.elapsed }

// Last returns the most recent frame.
func (s *Stats) Last() lifecycle.Frame { return s.last }

// FPS is frames per wall-clock second, or 0 before any time has passed.
func (s *Stats) FPS() float64 {
	if s.realElapsed <= 0 {
		return 0
	}
	return float64(s.frames) / s.realElapsed
}

package orchestrator

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"k8s.io/utils/clock"

	"haloframe/internal/lifecycle"
)

// Defaults applied when corresponding Config fields are unset.
const (
	defaultFrameInterval = time.Second / 60
	defaultTimeScale     = 1.0
)

// Policy decides what happens when a manager faults.
type Policy int

const (
	// PolicyIsolate marks the manager failed, skips it from then on and keeps
	// the run going.
	PolicyIsolate Policy = iota
	// PolicyAbort stops the run: healthy managers are released and Run
	// returns the fault.
	PolicyAbort
)

func (p Policy) String() string {
	if p == PolicyAbort {
		return "abort"
	}
	return "isolate"
}

// ParsePolicy parses "isolate" (or "") and "abort".
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "isolate":
		return PolicyIsolate, nil
	case "abort":
		return PolicyAbort, nil
	}
	return PolicyIsolate, fmt.Errorf("unknown fault policy %q", s)
}

// Config encapsulates all tunables for Orchestrator construction.
type Config struct {
	Policy Policy
	// PreloadBudget and ReleaseBudget cap the frames spent waiting for a stage
	// to finish; a manager still not done faults with statuscode.TimeOut.
	// Zero means wait forever.
	PreloadBudget int
	ReleaseBudget int
	// MaxFrames makes Run shut down after that many running frames (0 = never).
	MaxFrames int

	FrameInterval time.Duration
	TimeScale     float64
	Clock         clock.WithTicker

	// Logger is optional; nil disables logging.
	Logger    *zerolog.Logger
	Publisher lifecycle.EventPublisher
}

func (c Config) withDefaults() Config {
	if c.FrameInterval <= 0 {
		c.FrameInterval = defaultFrameInterval
	}
	if c.TimeScale <= 0 {
		c.TimeScale = defaultTimeScale
	}
	if c.Clock == nil {
		c.Clock = clock.RealClock{}
	}
	if c.PreloadBudget < 0 {
		c.PreloadBudget = 0
	}
	if c.ReleaseBudget < 0 {
		c.ReleaseBudget = 0
	}
	return c
}

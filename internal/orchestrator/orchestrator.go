package orchestrator

import (
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"haloframe/internal/lifecycle"
)

// Orchestrator sequences registered managers through the lifecycle. Status
// and Ready may be called from other goroutines; everything else is meant to
// be driven by a single frame loop.
type Orchestrator struct {
	mu    sync.RWMutex
	cfg   Config
	log   zerolog.Logger
	pub   lifecycle.EventPublisher
	runID string

	stage       Stage
	entries     []*entry
	frame       lifecycle.Frame
	stageFrames int // frames spent in the current waiting stage
	runFrames   int // frames ticked while running
	startTime   time.Time
	abortErr    error
}

// entry is the orchestrator's bookkeeping for one manager.
type entry struct {
	m        lifecycle.Manager
	failed   bool
	fault    error
	progress float64
	// timedOut marks a manager isolated for overrunning the preload budget.
	// Its hooks never faulted, so it is still released on shutdown.
	timedOut  bool
	releasing bool
}

// New constructs an Orchestrator from Config, applying package defaults.
func New(cfg Config) *Orchestrator {
	cfg = cfg.withDefaults()
	runID := uuid.NewString()
	base := zerolog.Nop()
	if cfg.Logger != nil {
		base = *cfg.Logger
	}
	o := &Orchestrator{
		cfg:   cfg,
		runID: runID,
		stage: StageIdle,
		log:   base.With().Str("run_id", runID).Logger(),
	}
	pubs := lifecycle.MultiPublisher{metricsPublisher{}}
	if cfg.Publisher != nil {
		pubs = append(pubs, cfg.Publisher)
	}
	o.pub = pubs
	return o
}

// Register adds m. Managers can only be registered before Start; their order
// is the order they receive every per-frame call.
func (o *Orchestrator) Register(m lifecycle.Manager) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.stage != StageIdle {
		return stageError{op: "register", stage: o.stage}
	}
	for _, e := range o.entries {
		if e.m == m {
			return ErrDuplicate
		}
	}
	if s, ok := m.(interface{ Subscribe(lifecycle.EventPublisher) }); ok {
		s.Subscribe(o.pub)
	}
	o.entries = append(o.entries, &entry{m: m})
	managersGauge.WithLabelValues("healthy").Inc()
	o.log.Debug().Str("manager", m.Name()).Int("order", len(o.entries)).Msg("manager registered")
	return nil
}

// RegisterHooks wraps h in a lifecycle skeleton and registers it.
func (o *Orchestrator) RegisterHooks(h lifecycle.Hooks, opts ...lifecycle.Option) (*lifecycle.Skeleton, error) {
	s := lifecycle.New(h, opts...)
	if err := o.Register(s); err != nil {
		return nil, err
	}
	return s, nil
}

// Managers returns the registered managers in registration order.
func (o *Orchestrator) Managers() []lifecycle.Manager {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.managers()
}

func (o *Orchestrator) managers() []lifecycle.Manager {
	out := make([]lifecycle.Manager, 0, len(o.entries))
	for _, e := range o.entries {
		out = append(out, e.m)
	}
	return out
}

// RunID identifies this orchestrator in logs and status.
func (o *Orchestrator) RunID() string { return o.runID }

// peerSet is the registry handed to managers during Initialization. It is a
// snapshot so hooks can use it without touching the orchestrator lock.
type peerSet []lifecycle.Manager

func (p peerSet) Managers() []lifecycle.Manager { return slices.Clone(p) }

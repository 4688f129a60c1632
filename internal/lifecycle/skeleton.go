package lifecycle

import (
	"fmt"
	"math"
	"reflect"
	"slices"
	"time"
)

// Skeleton implements Manager on top of Hooks. The public operations are thin
// wrappers that add the phase guard, panic isolation, instrumentation and the
// progress latches; the subsystem-specific work lives in the hooks.
//
// Release completion: a hooks value without a ReleaseReporter has no teardown
// work, so Release itself sets the done latch. With a ReleaseReporter the
// latch is set by the ReleaseProgress poll that first observes 1.0;
// IsReleaseDone only reads it. Preload follows the same rule, except that a
// manager without a PreloadReporter reports done even before Preload.
type Skeleton struct {
	hooks Hooks
	name  string
	pub   MultiPublisher

	phase Phase
	fault *Fault

	preloadHigh float64
	preloadDone bool
	releaseHigh float64
	releaseDone bool
}

var _ Manager = (*Skeleton)(nil)

// Option configures a Skeleton.
type Option func(*Skeleton)

// WithName overrides the manager name.
func WithName(name string) Option {
	return func(s *Skeleton) {
		if name != "" {
			s.name = name
		}
	}
}

// WithPublisher subscribes p to the manager's events.
func WithPublisher(p EventPublisher) Option {
	return func(s *Skeleton) { s.Subscribe(p) }
}

// New builds a manager from hooks. It panics on nil hooks.
func New(h Hooks, opts ...Option) *Skeleton {
	if h == nil {
		panic("lifecycle: nil hooks")
	}
	s := &Skeleton{hooks: h, name: nameOf(h)}
	for _, o := range opts {
		o(s)
	}
	return s
}

func nameOf(h Hooks) string {
	if n, ok := h.(Namer); ok {
		if v := n.Name(); v != "" {
			return v
		}
	}
	return TypeName(h)
}

// TypeName returns the name of v's concrete type with pointers dereferenced.
func TypeName(v any) string {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return ""
	}
	return t.Name()
}

// Subscribe adds an event publisher.
func (s *Skeleton) Subscribe(p EventPublisher) {
	if p != nil {
		s.pub = append(s.pub, p)
	}
}

func (s *Skeleton) Name() string { return s.name }
func (s *Skeleton) Phase() Phase { return s.phase }
func (s *Skeleton) Hooks() Hooks { return s.hooks }

func (s *Skeleton) Err() error {
	if s.fault == nil {
		return nil
	}
	return s.fault
}

// Preload starts a cycle. It is accepted from Uninitialized, or from Released
// to start a new cycle, which clears the latches of the previous one.
func (s *Skeleton) Preload() error {
	if err := s.guard(OpPreload, PhaseUninitialized, PhaseReleased); err != nil {
		return err
	}
	s.preloadHigh, s.preloadDone = 0, false
	s.releaseHigh, s.releaseDone = 0, false
	s.setPhase(PhasePreloading)
	if h, ok := s.hooks.(PreloadHook); ok {
		return s.invoke(OpPreload, h.OnPreload)
	}
	return nil
}

func (s *Skeleton) PreloadProgress() float64 {
	r, ok := s.hooks.(PreloadReporter)
	if !ok || s.preloadDone {
		return 1
	}
	// The reporter is only polled inside a preload cycle.
	if s.phase != PhasePreloading {
		return s.preloadHigh
	}
	p, err := s.poll(OpPreloadProgress, r.PreloadProgress)
	if err != nil {
		return s.preloadHigh
	}
	s.preloadHigh = max(s.preloadHigh, p)
	if s.preloadHigh >= 1 {
		s.preloadDone = true
	}
	return s.preloadHigh
}

func (s *Skeleton) IsPreloadDone() bool {
	if _, ok := s.hooks.(PreloadReporter); !ok {
		return true
	}
	return s.preloadDone
}

func (s *Skeleton) PreloadCompleted() error {
	if err := s.guard(OpPreloadCompleted, PhasePreloading); err != nil {
		return err
	}
	if !s.IsPreloadDone() {
		return s.reject(OpPreloadCompleted, fmt.Errorf("%w: preload at %.2f", ErrNotDone, s.preloadHigh))
	}
	s.setPhase(PhasePreloadComplete)
	if h, ok := s.hooks.(PreloadCompletedHook); ok {
		return s.invoke(OpPreloadCompleted, h.OnPreloadCompleted)
	}
	return nil
}

func (s *Skeleton) Initialization(env Env) error {
	if err := s.guard(OpInitialization, PhasePreloadComplete); err != nil {
		return err
	}
	s.setPhase(PhaseInitialized)
	return s.invoke(OpInitialization, func() error { return s.hooks.OnInitialization(env) })
}

func (s *Skeleton) Tick(f Frame) error {
	if err := s.guard(OpTick, PhaseInitialized); err != nil {
		return err
	}
	if h, ok := s.hooks.(TickHook); ok {
		return s.invoke(OpTick, func() error { return h.OnTick(f) })
	}
	return nil
}

// Release starts teardown. Shutting down before Initialization is allowed so
// a driver can abort during preload.
func (s *Skeleton) Release() error {
	if err := s.guard(OpRelease, PhasePreloading, PhasePreloadComplete, PhaseInitialized); err != nil {
		return err
	}
	s.releaseHigh, s.releaseDone = 0, false
	s.setPhase(PhaseReleasing)
	if _, ok := s.hooks.(ReleaseReporter); !ok {
		s.releaseHigh, s.releaseDone = 1, true
	}
	if h, ok := s.hooks.(ReleaseHook); ok {
		return s.invoke(OpRelease, h.OnRelease)
	}
	return nil
}

func (s *Skeleton) ReleaseProgress() float64 {
	r, ok := s.hooks.(ReleaseReporter)
	if !ok || s.releaseDone {
		return 1
	}
	if s.phase != PhaseReleasing {
		return s.releaseHigh
	}
	p, err := s.poll(OpReleaseProgress, r.ReleaseProgress)
	if err != nil {
		return s.releaseHigh
	}
	s.releaseHigh = max(s.releaseHigh, p)
	if s.releaseHigh >= 1 {
		s.releaseDone = true
	}
	return s.releaseHigh
}

func (s *Skeleton) IsReleaseDone() bool { return s.releaseDone }

func (s *Skeleton) ReleaseCompleted() error {
	if err := s.guard(OpReleaseCompleted, PhaseReleasing); err != nil {
		return err
	}
	if !s.releaseDone {
		return s.reject(OpReleaseCompleted, fmt.Errorf("%w: release at %.2f", ErrNotDone, s.releaseHigh))
	}
	s.setPhase(PhaseReleased)
	if h, ok := s.hooks.(ReleaseCompletedHook); ok {
		return s.invoke(OpReleaseCompleted, h.OnReleaseCompleted)
	}
	return nil
}

// guard rejects op unless the manager is in one of the allowed phases.
func (s *Skeleton) guard(op Op, allowed ...Phase) error {
	if slices.Contains(allowed, s.phase) {
		return nil
	}
	return s.reject(op, fmt.Errorf("%w: %s during %s", ErrOutOfPhase, op, s.phase))
}

// reject reports a caller error without failing the manager.
func (s *Skeleton) reject(op Op, err error) error {
	return &Fault{Manager: s.name, Op: op, Phase: s.phase, Err: err}
}

// invoke runs a hook, converting errors and panics into a fault.
func (s *Skeleton) invoke(op Op, fn func() error) (err error) {
	start := time.Now()
	phase := s.phase
	defer func() {
		if r := recover(); r != nil {
			err = s.fail(op, phase, panicError(r), r)
		}
		s.pub.Publish(Event{Name: EventHook, Manager: s.name, Op: op, Phase: phase, Duration: time.Since(start), Err: err})
	}()
	if e := fn(); e != nil {
		return s.fail(op, phase, e, nil)
	}
	return nil
}

// poll runs a progress reporter. A panic fails the manager.
func (s *Skeleton) poll(op Op, fn func() float64) (p float64, err error) {
	phase := s.phase
	defer func() {
		if r := recover(); r != nil {
			err = s.fail(op, phase, panicError(r), r)
		}
	}()
	return clamp(fn()), nil
}

func (s *Skeleton) fail(op Op, phase Phase, err error, recovered any) *Fault {
	f := &Fault{Manager: s.name, Op: op, Phase: phase, Err: err, Panic: recovered}
	s.fault = f
	s.setPhase(PhaseFailed)
	s.pub.Publish(Event{Name: EventFault, Manager: s.name, Op: op, Phase: phase, Err: f})
	return f
}

func (s *Skeleton) setPhase(p Phase) {
	if s.phase == p {
		return
	}
	s.phase = p
	s.pub.Publish(Event{Name: EventPhase, Manager: s.name, Phase: p})
}

func clamp(p float64) float64 {
	switch {
	case math.IsNaN(p), p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}

package orchestrator

import (
	"errors"

	"haloframe/internal/lifecycle"
)

// recorder logs every hook call as "name:op" into a shared journal.
type recorder struct {
	name    string
	journal *[]string
	initErr error
	frames  []lifecycle.Frame
	env     lifecycle.Env
}

func newRecorder(name string, journal *[]string) *recorder {
	return &recorder{name: name, journal: journal}
}

func (r *recorder) Name() string { return r.name }

func (r *recorder) add(op string) { *r.journal = append(*r.journal, r.name+":"+op) }

func (r *recorder) OnPreload() error          { r.add("preload"); return nil }
func (r *recorder) OnPreloadCompleted() error { r.add("preload_completed"); return nil }
func (r *recorder) OnRelease() error          { r.add("release"); return nil }
func (r *recorder) OnReleaseCompleted() error { r.add("release_completed"); return nil }

func (r *recorder) OnInitialization(env lifecycle.Env) error {
	r.add("init")
	r.env = env
	return r.initErr
}

func (r *recorder) OnTick(f lifecycle.Frame) error {
	r.add("tick")
	r.frames = append(r.frames, f)
	return nil
}

// slowPreload reports scripted preload progress; 1.0 once the script runs out.
type slowPreload struct {
	*recorder
	script []float64
}

func (s *slowPreload) PreloadProgress() float64 { return pop(&s.script) }

// slowRelease reports scripted release progress.
type slowRelease struct {
	*recorder
	script []float64
}

func (s *slowRelease) ReleaseProgress() float64 { return pop(&s.script) }

// stuck never finishes preloading.
type stuck struct{ *recorder }

func (stuck) PreloadProgress() float64 { return 0.1 }

func pop(seq *[]float64) float64 {
	if len(*seq) == 0 {
		return 1
	}
	v := (*seq)[0]
	*seq = (*seq)[1:]
	return v
}

var errNoDevice = errors.New("no audio device")

func frame(n int) lifecycle.Frame {
	return lifecycle.Frame{Count: n, Time: float64(n) / 60, Delta: 1.0 / 60, Unscaled: float64(n) / 60, RealElapsed: 1.0 / 60}
}

package e2e

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"haloframe/internal/lifecycle"
	"haloframe/internal/orchestrator"
	"haloframe/internal/subsystem/assets"
	"haloframe/internal/subsystem/framestats"
	"haloframe/internal/subsystem/remote"
)

// preloadUntilRunning steps o while it is preloading, giving the remote
// request wall-clock time to finish.
func preloadUntilRunning(t *testing.T, o *orchestrator.Orchestrator) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for i := 1; o.Stage() == orchestrator.StagePreloading; i++ {
		if time.Now().After(deadline) {
			t.Fatalf("preload did not finish in time")
		}
		_ = o.Step(lifecycle.Frame{Count: i})
		time.Sleep(time.Millisecond)
	}
}

func TestE2E_Preload_Run_Release_Status(t *testing.T) {
	dir := createTempAssetsDir(t, 6)
	settings := jsonServer(t, http.StatusOK, `{"difficulty":"hard"}`)

	loader := assets.New(assets.Options{Dir: dir, Exts: []string{".bundle"}, PerFrame: 2})
	stats := &framestats.Stats{}
	srv, o := newServer(t, orchestrator.Config{},
		loader,
		remote.New(settings.URL, time.Second, nil),
		stats,
	)

	// 1) Before Start the run is idle and not ready.
	resp, body := httpGet(t, srv.URL+"/readyz")
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("/readyz expected 503, got %d body=%s", resp.StatusCode, string(body))
	}
	if st := getStatus(t, srv.URL); st.Stage != "idle" || len(st.Managers) != 3 {
		t.Fatalf("unexpected idle status: %+v", st)
	}

	// 2) One frame in, assets are a third loaded.
	if err := o.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	_ = o.Step(lifecycle.Frame{Count: 1})
	st := getStatus(t, srv.URL)
	if st.Stage != "preloading" {
		t.Fatalf("expected preloading, got %s", st.Stage)
	}
	if p := managerStatus(t, st, "assets").Progress; p < 0.33 || p > 0.34 {
		t.Fatalf("assets progress after one frame = %v", p)
	}

	// 3) Preload finishes, everything is initialized, readiness flips.
	preloadUntilRunning(t, o)
	resp, _ = httpGet(t, srv.URL+"/readyz")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("/readyz expected 200, got %d", resp.StatusCode)
	}
	st = getStatus(t, srv.URL)
	for _, m := range st.Managers {
		if m.Phase != "initialized" || m.Failed {
			t.Fatalf("manager not initialized: %+v", m)
		}
	}
	if loader.Len() != 6 {
		t.Fatalf("loaded %d assets, want 6", loader.Len())
	}

	// 4) Ticks reach every manager.
	for i := 0; i < 5; i++ {
		if err := o.Step(lifecycle.Frame{Count: 100 + i, Delta: 0.01}); err != nil {
			t.Fatalf("step: %v", err)
		}
	}
	if stats.Frames() != 5 {
		t.Fatalf("stats saw %d frames, want 5", stats.Frames())
	}

	// 5) Shutdown releases over frames and ends stopped with every manager released.
	if err := o.Shutdown(); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if st := getStatus(t, srv.URL); st.Stage != "releasing" {
		t.Fatalf("expected releasing, got %s", st.Stage)
	}
	stepUntil(t, o, orchestrator.StageStopped, 10)
	st = getStatus(t, srv.URL)
	for _, m := range st.Managers {
		if m.Phase != "released" {
			t.Fatalf("manager not released: %+v", m)
		}
	}
	if st.Error != "" {
		t.Fatalf("unexpected run error: %s", st.Error)
	}
}

func TestE2E_IsolatedRemoteFailureKeepsRunning(t *testing.T) {
	settings := jsonServer(t, http.StatusInternalServerError, `{"error":"down"}`)
	srv, o := newServer(t, orchestrator.Config{Policy: orchestrator.PolicyIsolate},
		remote.New(settings.URL, time.Second, nil),
		&framestats.Stats{},
	)
	if err := o.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	preloadUntilRunning(t, o)

	resp, _ := httpGet(t, srv.URL+"/readyz")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("/readyz expected 200 under isolate, got %d", resp.StatusCode)
	}
	st := getStatus(t, srv.URL)
	rm := managerStatus(t, st, "remote")
	if !rm.Failed || rm.Phase != "failed" || !strings.Contains(rm.Fault, "error") {
		t.Fatalf("remote should be isolated: %+v", rm)
	}
	if fs := managerStatus(t, st, "Stats"); fs.Failed || fs.Phase != "initialized" {
		t.Fatalf("stats should be healthy: %+v", fs)
	}
}

func TestE2E_AbortPolicyStopsRun(t *testing.T) {
	settings := jsonServer(t, http.StatusOK, `not json`)
	srv, o := newServer(t, orchestrator.Config{Policy: orchestrator.PolicyAbort},
		&framestats.Stats{},
		remote.New(settings.URL, time.Second, nil),
	)
	if err := o.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	preloadUntilRunning(t, o)
	stepUntil(t, o, orchestrator.StageStopped, 10)

	st := getStatus(t, srv.URL)
	if !strings.Contains(st.Error, "parse_json_error") {
		t.Fatalf("expected abort error in status, got %q", st.Error)
	}
	if !orchestrator.IsAborted(o.Err()) {
		t.Fatalf("expected abort error, got %v", o.Err())
	}
	if fs := managerStatus(t, st, "Stats"); fs.Phase != "released" {
		t.Fatalf("healthy manager should be released: %+v", fs)
	}
}

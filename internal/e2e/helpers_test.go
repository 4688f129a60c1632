// Package e2e drives real managers through an orchestrator and observes the
// run through the HTTP API, the way an operator would.
package e2e

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"haloframe/internal/httpapi"
	"haloframe/internal/lifecycle"
	"haloframe/internal/orchestrator"
	"haloframe/pkg/types"
)

// createTempAssetsDir creates a temporary directory holding n small .bundle files.
func createTempAssetsDir(t *testing.T, n int) string {
	t.Helper()
	dir := t.TempDir()
	for i := 0; i < n; i++ {
		p := filepath.Join(dir, fmt.Sprintf("b%02d.bundle", i))
		if err := os.WriteFile(p, []byte(fmt.Sprintf("bundle-%d", i)), 0o644); err != nil {
			t.Fatalf("write temp asset %s: %v", p, err)
		}
	}
	return dir
}

// jsonServer serves body with the given status on every request.
func jsonServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

// newServer registers hooks on a fresh orchestrator and exposes it over HTTP.
func newServer(t *testing.T, cfg orchestrator.Config, hooks ...lifecycle.Hooks) (*httptest.Server, *orchestrator.Orchestrator) {
	t.Helper()
	o := orchestrator.New(cfg)
	for _, h := range hooks {
		if _, err := o.RegisterHooks(h); err != nil {
			t.Fatalf("register: %v", err)
		}
	}
	srv := httptest.NewServer(httpapi.NewMux(o))
	t.Cleanup(srv.Close)
	return srv, o
}

func httpGet(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do req: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, body
}

func getStatus(t *testing.T, base string) types.StatusResponse {
	t.Helper()
	resp, body := httpGet(t, base+"/status")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("/status status=%d body=%s", resp.StatusCode, string(body))
	}
	var st types.StatusResponse
	if err := json.Unmarshal(body, &st); err != nil {
		t.Fatalf("/status json: %v body=%s", err, string(body))
	}
	return st
}

// stepUntil steps o until stage is reached or the frame limit runs out.
// Step errors are ignored; the run reports them through /status.
func stepUntil(t *testing.T, o *orchestrator.Orchestrator, stage orchestrator.Stage, limit int) int {
	t.Helper()
	for i := 1; i <= limit; i++ {
		if o.Stage() == stage {
			return i - 1
		}
		_ = o.Step(lifecycle.Frame{Count: i, Delta: 1.0 / 60, RealElapsed: 1.0 / 60})
	}
	if o.Stage() != stage {
		t.Fatalf("stage %s not reached after %d frames (at %s)", stage, limit, o.Stage())
	}
	return limit
}

func managerStatus(t *testing.T, st types.StatusResponse, name string) types.ManagerStatus {
	t.Helper()
	for _, m := range st.Managers {
		if m.Name == name {
			return m
		}
	}
	t.Fatalf("manager %q missing from status: %+v", name, st.Managers)
	return types.ManagerStatus{}
}

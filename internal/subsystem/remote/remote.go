// Package remote is a manager that fetches a JSON settings document during
// preload without blocking the frame loop.
package remote

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"haloframe/internal/lifecycle"
	"haloframe/internal/statuscode"
	"haloframe/internal/utility/web"
)

// Settings holds the decoded settings document.
type Settings struct {
	url     string
	timeout time.Duration
	client  *web.Client
	log     zerolog.Logger

	pending *web.Pending
	values  map[string]any
}

var (
	_ lifecycle.PreloadReporter      = (*Settings)(nil)
	_ lifecycle.PreloadCompletedHook = (*Settings)(nil)
	_ lifecycle.ReleaseHook          = (*Settings)(nil)
)

// New returns a Settings fetching url. A nil client uses http.DefaultClient.
func New(url string, timeout time.Duration, client *web.Client) *Settings {
	if client == nil {
		client = &web.Client{}
	}
	return &Settings{url: url, timeout: timeout, client: client, log: zerolog.Nop()}
}

func (s *Settings) Name() string { return "remote" }

// OnPreload starts the request in the background.
func (s *Settings) OnPreload() error {
	s.values = nil
	s.pending = web.Async(context.Background(), func(ctx context.Context) (web.Response, statuscode.Code) {
		return s.client.Get(ctx, s.url, s.timeout)
	})
	return nil
}

// PreloadProgress is 0 until the request finishes, then 1.
func (s *Settings) PreloadProgress() float64 {
	if s.pending == nil || s.pending.Done() {
		return 1
	}
	return 0
}

func (s *Settings) OnPreloadCompleted() error {
	resp, code := s.pending.Result()
	if !code.OK() {
		return code.Err(fmt.Sprintf("fetch %s", s.url))
	}
	vals, code := web.DecodeJSON[map[string]any](resp)
	if !code.OK() {
		return code.Err(fmt.Sprintf("decode %s", s.url))
	}
	s.values = vals
	return nil
}

func (s *Settings) OnInitialization(env lifecycle.Env) error {
	s.log = env.Log
	s.log.Info().Str("url", s.url).Int("keys", len(s.values)).Msg("remote settings ready")
	return nil
}

// Value returns a top-level setting.
func (s *Settings) Value(key string) (any, bool) {
	v, ok := s.values[key]
	return v, ok
}

// OnRelease cancels a request still in flight.
func (s *Settings) OnRelease() error {
	if s.pending != nil && !s.pending.Done() {
		s.pending.Cancel()
	}
	return nil
}

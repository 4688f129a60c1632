// Package web wraps HTTP GET/POST for managers. Outcomes are reported as
// statuscode values rather than errors so hooks can forward them unchanged.
//
// Requests block; hooks that must return immediately (Preload, Release) start
// them with Async and poll the returned Pending from their progress reporter.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"haloframe/internal/statuscode"
)

// maxBodyBytes bounds how much of a response body is read.
const maxBodyBytes = 32 << 20

// Client issues requests. The zero value uses http.DefaultClient and no logging.
type Client struct {
	HTTP *http.Client
	Log  *zerolog.Logger
}

// Response is a completed request.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

func (r Response) Bytes() []byte { return r.Body }
func (r Response) Text() string  { return string(r.Body) }

// DecodeJSON decodes the body of r into a T.
func DecodeJSON[T any](r Response) (T, statuscode.Code) {
	var v T
	if err := json.Unmarshal(r.Body, &v); err != nil {
		return v, statuscode.ParseJSONError
	}
	return v, statuscode.Succeed
}

// Get performs a GET. timeout <= 0 means no timeout beyond ctx.
func (c *Client) Get(ctx context.Context, rawURL string, timeout time.Duration) (Response, statuscode.Code) {
	return c.do(ctx, http.MethodGet, rawURL, nil, "", timeout)
}

// Post performs a form-encoded POST.
func (c *Client) Post(ctx context.Context, rawURL string, form map[string]string, timeout time.Duration) (Response, statuscode.Code) {
	vals := url.Values{}
	for k, v := range form {
		vals.Set(k, v)
	}
	return c.do(ctx, http.MethodPost, rawURL, strings.NewReader(vals.Encode()), "application/x-www-form-urlencoded", timeout)
}

func (c *Client) do(ctx context.Context, method, rawURL string, body io.Reader, contentType string, timeout time.Duration) (Response, statuscode.Code) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		c.logger().Error().Err(err).Str("url", rawURL).Msg("web: bad request")
		return Response{}, statuscode.IllegalPath
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := c.httpClient().Do(req)
	if err != nil {
		code := statuscode.NetworkError
		if errors.Is(err, context.DeadlineExceeded) {
			code = statuscode.TimeOut
		}
		c.logger().Error().Err(err).Str("method", method).Str("url", rawURL).Stringer("code", code).Msg("web: request failed")
		return Response{}, code
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	out := Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: b}
	if err != nil {
		code := statuscode.DownloadError
		if errors.Is(err, context.DeadlineExceeded) {
			code = statuscode.TimeOut
		}
		c.logger().Error().Err(err).Str("url", rawURL).Msg("web: read body")
		return out, code
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger().Error().Int("status", resp.StatusCode).Str("method", method).Str("url", rawURL).Msg("web: http error")
		return out, statuscode.Error
	}
	return out, statuscode.Succeed
}

func (c *Client) httpClient() *http.Client {
	if c == nil || c.HTTP == nil {
		return http.DefaultClient
	}
	return c.HTTP
}

func (c *Client) logger() *zerolog.Logger {
	if c == nil || c.Log == nil {
		l := zerolog.Nop()
		return &l
	}
	return c.Log
}

// Pending is a request running in the background.
type Pending struct {
	done   chan struct{}
	cancel context.CancelFunc
	resp   Response
	code   statuscode.Code
}

// Async runs fn in a goroutine. fn receives a context that Cancel cancels.
func Async(ctx context.Context, fn func(ctx context.Context) (Response, statuscode.Code)) *Pending {
	ctx, cancel := context.WithCancel(ctx)
	p := &Pending{done: make(chan struct{}), cancel: cancel}
	go func() {
		defer close(p.done)
		defer cancel()
		p.resp, p.code = fn(ctx)
	}()
	return p
}

// Done reports whether the request finished. It never blocks.
func (p *Pending) Done() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// Result returns the outcome. Before Done it returns NoneTask.
func (p *Pending) Result() (Response, statuscode.Code) {
	if !p.Done() {
		return Response{}, statuscode.NoneTask
	}
	return p.resp, p.code
}

// Wait blocks until the request finishes or ctx is done.
func (p *Pending) Wait(ctx context.Context) (Response, statuscode.Code) {
	select {
	case <-p.done:
		return p.resp, p.code
	case <-ctx.Done():
		return Response{}, statuscode.TimeOut
	}
}

// Cancel aborts the request.
func (p *Pending) Cancel() { p.cancel() }

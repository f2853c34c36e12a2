// Copyright 2026 OpenFlow E2E Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package api is a typed client of the controller's REST surface. It covers
// the applications exercised by the acceptance suites: core status and
// authentication, topology, flow manager, EVC provisioning, maintenance
// windows, LLDP liveness and path tracing.
//
// All calls are bounded by the client's per-call timeout in addition to the
// caller's context. Non-2xx responses are returned as *StatusError.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/openflow-e2e/harness/pkg/log"
	"github.com/openflow-e2e/harness/pkg/private/serrors"
)

const (
	// DefaultTimeout bounds a single call.
	DefaultTimeout = 30 * time.Second
	// StatusRunning is the health status of a controller that is ready.
	StatusRunning = "running"
)

// StatusError is returned for responses with a non-2xx status code.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: %d %s: %s", e.Method, e.Path, e.Code,
		http.StatusText(e.Code), e.Body)
}

// StatusCode returns the HTTP status carried by err, or 0 if err is not a
// *StatusError.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code
	}
	return 0
}

// Client talks to one controller.
type Client struct {
	base    *url.URL
	http    *http.Client
	timeout time.Duration
	logger  log.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.http = c }
}

// WithTimeout sets the per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) { cl.timeout = d }
}

// WithLogger sets the logger. Calls are logged at debug level.
func WithLogger(l log.Logger) Option {
	return func(cl *Client) { cl.logger = l }
}

// New returns a client for the API rooted at base, e.g.
// http://127.0.0.1:8181/api.
func New(base string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSuffix(base, "/"))
	if err != nil {
		return nil, serrors.Wrap("parsing API URL", err, "url", base)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, serrors.New("API URL must be absolute", "url", base)
	}
	c := &Client{
		base:    u,
		http:    &http.Client{},
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the root of the API.
func (c *Client) BaseURL() string {
	return c.base.String()
}

func (c *Client) url(path string, query url.Values) string {
	u := *c.base
	u.Path = c.base.Path + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// Do sends a request with a JSON body and returns the status code and the
// raw response body. Non-2xx responses are not errors; tests use Do to
// assert on rejections.
func (c *Client) Do(ctx context.Context, method, path string, body any) (int, []byte, error) {
	return c.send(ctx, method, path, nil, body, nil)
}

func (c *Client) send(ctx context.Context, method, path string, query url.Values,
	body any, prepare func(*http.Request)) (int, []byte, error) {

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return 0, nil, serrors.Wrap("encoding request", err, "path", path)
		}
		rd = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.url(path, query), rd)
	if err != nil {
		return 0, nil, serrors.Wrap("creating request", err, "path", path)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if prepare != nil {
		prepare(req)
	}
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, serrors.Wrap("sending request", err, "method", method, "path", path)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if c.logger != nil {
		c.logger.Debug("API call", "method", method, "path", path, "status", resp.StatusCode,
			"took", time.Since(start))
	}
	if err != nil {
		return resp.StatusCode, nil, serrors.Wrap("reading response", err,
			"method", method, "path", path)
	}
	return resp.StatusCode, raw, nil
}

// call sends a request and decodes a 2xx response into out, if out is not
// nil.
func (c *Client) call(ctx context.Context, method, path string, query url.Values,
	in, out any) error {

	return c.callWith(ctx, method, path, query, in, out, nil)
}

func (c *Client) callWith(ctx context.Context, method, path string, query url.Values,
	in, out any, prepare func(*http.Request)) error {

	code, raw, err := c.send(ctx, method, path, query, in, prepare)
	if err != nil {
		return err
	}
	if code < 200 || code > 299 {
		return &StatusError{Method: method, Path: path, Code: code,
			Body: strings.TrimSpace(string(raw))}
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return serrors.Wrap("decoding response", err, "method", method, "path", path)
	}
	return nil
}

// Health returns the status string of the controller core, "running" once
// the controller is ready.
func (c *Client) Health(ctx context.Context) (string, error) {
	var reply struct {
		Response string `json:"response"`
	}
	if err := c.call(ctx, http.MethodGet, "/kytos/core/status/", nil, nil, &reply); err != nil {
		return "", err
	}
	return reply.Response, nil
}

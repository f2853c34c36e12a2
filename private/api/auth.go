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

package api

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/lestrrat-go/jwx/v3/jwt"

	"github.com/openflow-e2e/harness/pkg/private/serrors"
)

const (
	authPath = "/kytos/core/auth"
	// tokenMargin is how long before its expiry a token is renewed.
	tokenMargin = 30 * time.Second
)

// User is an account of the controller's authentication service.
type User struct {
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password,omitempty"`
	State    string `json:"state,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

// Login exchanges basic credentials for a bearer token.
func (c *Client) Login(ctx context.Context, user, password string) (string, error) {
	var reply struct {
		Token string `json:"token"`
	}
	err := c.callWith(ctx, http.MethodGet, authPath+"/login/", nil, nil, &reply,
		func(req *http.Request) { req.SetBasicAuth(user, password) })
	if err != nil {
		return "", err
	}
	if reply.Token == "" {
		return "", serrors.New("login returned no token", "user", user)
	}
	return reply.Token, nil
}

// TokenExpiry returns the expiry of a bearer token. The signature is not
// verified; the client only needs to know when to log in again. A token
// without expiry yields the zero time.
func TokenExpiry(token string) (time.Time, error) {
	tok, err := jwt.ParseInsecure([]byte(token))
	if err != nil {
		return time.Time{}, serrors.Wrap("parsing bearer token", err)
	}
	exp, ok := tok.Expiration()
	if !ok {
		return time.Time{}, nil
	}
	return exp, nil
}

type tokenSource struct {
	client   *Client
	user     string
	password string

	mu     sync.Mutex
	token  string
	expiry time.Time
}

func (s *tokenSource) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token != "" && (s.expiry.IsZero() || time.Until(s.expiry) > tokenMargin) {
		return s.token, nil
	}
	token, err := s.client.Login(ctx, s.user, s.password)
	if err != nil {
		return "", err
	}
	expiry, err := TokenExpiry(token)
	if err != nil {
		return "", err
	}
	s.token, s.expiry = token, expiry
	return token, nil
}

type bearerTransport struct {
	base   http.RoundTripper
	tokens *tokenSource
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	token, err := t.tokens.Token(req.Context())
	if err != nil {
		return nil, serrors.Wrap("obtaining bearer token", err)
	}
	req = req.Clone(req.Context())
	req.Header.Set("Authorization", "Bearer "+token)
	return t.base.RoundTrip(req)
}

// WithCredentials returns a copy of c that authenticates every call with a
// bearer token. The token is obtained through Login on first use and renewed
// shortly before it expires.
func (c *Client) WithCredentials(user, password string) *Client {
	base := c.http.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	authed := *c
	authed.http = &http.Client{
		Transport: &bearerTransport{
			base:   base,
			tokens: &tokenSource{client: c, user: user, password: password},
		},
		Timeout: c.http.Timeout,
	}
	return &authed
}

// CreateUser registers a new user.
func (c *Client) CreateUser(ctx context.Context, u User) error {
	return c.call(ctx, http.MethodPost, authPath+"/users/", nil, u, nil)
}

// Users lists all users.
func (c *Client) Users(ctx context.Context) ([]User, error) {
	var reply struct {
		Users []User `json:"users"`
	}
	if err := c.call(ctx, http.MethodGet, authPath+"/users/", nil, nil, &reply); err != nil {
		return nil, err
	}
	return reply.Users, nil
}

// User returns a single user.
func (c *Client) User(ctx context.Context, name string) (User, error) {
	var u User
	err := c.call(ctx, http.MethodGet, authPath+"/users/"+url.PathEscape(name), nil, nil, &u)
	return u, err
}

// UpdateUser patches the given fields of a user.
func (c *Client) UpdateUser(ctx context.Context, name string, patch map[string]any) error {
	return c.call(ctx, http.MethodPatch, authPath+"/users/"+url.PathEscape(name), nil,
		patch, nil)
}

// DeleteUser removes a user.
func (c *Client) DeleteUser(ctx context.Context, name string) error {
	return c.call(ctx, http.MethodDelete, authPath+"/users/"+url.PathEscape(name), nil,
		nil, nil)
}

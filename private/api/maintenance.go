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
	"time"
)

const maintenancePath = "/kytos/maintenance/v1"

// TimeFormat is the timestamp layout of maintenance windows.
const TimeFormat = "2006-01-02T15:04:05-0700"

// Window is a maintenance window over switches, interfaces and links.
type Window struct {
	ID          string   `json:"id,omitempty"`
	Description string   `json:"description,omitempty"`
	Start       string   `json:"start"`
	End         string   `json:"end"`
	Switches    []string `json:"switches,omitempty"`
	Interfaces  []string `json:"interfaces,omitempty"`
	Links       []string `json:"links,omitempty"`
	Status      string   `json:"status,omitempty"`
}

// NewWindow returns a window over the given switches starting after start
// and lasting d.
func NewWindow(start time.Time, d time.Duration, switches ...string) Window {
	return Window{
		Start:    start.UTC().Format(TimeFormat),
		End:      start.Add(d).UTC().Format(TimeFormat),
		Switches: switches,
	}
}

// CreateWindow schedules a window and returns its ID. Windows overlapping
// an existing one on the same items are rejected by the controller.
func (c *Client) CreateWindow(ctx context.Context, w Window) (string, error) {
	var reply struct {
		ID string `json:"mw_id"`
	}
	if err := c.call(ctx, http.MethodPost, maintenancePath, nil, w, &reply); err != nil {
		return "", err
	}
	return reply.ID, nil
}

// Windows lists all windows.
func (c *Client) Windows(ctx context.Context) ([]Window, error) {
	var reply []Window
	err := c.call(ctx, http.MethodGet, maintenancePath, nil, nil, &reply)
	return reply, err
}

// Window returns a single window.
func (c *Client) Window(ctx context.Context, id string) (Window, error) {
	var w Window
	err := c.call(ctx, http.MethodGet, maintenancePath+"/"+url.PathEscape(id), nil, nil, &w)
	return w, err
}

// UpdateWindow patches the given fields of a window.
func (c *Client) UpdateWindow(ctx context.Context, id string, patch map[string]any) error {
	return c.call(ctx, http.MethodPatch, maintenancePath+"/"+url.PathEscape(id), nil,
		patch, nil)
}

// DeleteWindow removes a window that is not running.
func (c *Client) DeleteWindow(ctx context.Context, id string) error {
	return c.call(ctx, http.MethodDelete, maintenancePath+"/"+url.PathEscape(id), nil,
		nil, nil)
}

// EndWindow ends a running window immediately.
func (c *Client) EndWindow(ctx context.Context, id string) error {
	return c.call(ctx, http.MethodPatch, maintenancePath+"/"+url.PathEscape(id)+"/end", nil,
		nil, nil)
}

// ExtendWindow postpones the end of a running window.
func (c *Client) ExtendWindow(ctx context.Context, id string, minutes int) error {
	return c.call(ctx, http.MethodPatch, maintenancePath+"/"+url.PathEscape(id)+"/extend",
		nil, map[string]int{"minutes": minutes}, nil)
}

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
	"strconv"
)

const flowsPath = "/kytos/flow_manager/v2"

// States of a stored flow.
const (
	FlowPending   = "pending"
	FlowInstalled = "installed"
	FlowDeleted   = "deleted"
)

// Flow is a flow entry in the flow manager's representation.
type Flow struct {
	Switch       string           `json:"switch,omitempty"`
	TableID      int              `json:"table_id,omitempty"`
	Priority     int              `json:"priority,omitempty"`
	Cookie       uint64           `json:"cookie,omitempty"`
	CookieMask   uint64           `json:"cookie_mask,omitempty"`
	IdleTimeout  int              `json:"idle_timeout,omitempty"`
	HardTimeout  int              `json:"hard_timeout,omitempty"`
	Owner        string           `json:"owner,omitempty"`
	Match        map[string]any   `json:"match,omitempty"`
	Actions      []map[string]any `json:"actions,omitempty"`
	Instructions []map[string]any `json:"instructions,omitempty"`
}

// StoredFlow is a flow as persisted by the flow manager.
type StoredFlow struct {
	ID     string `json:"flow_id"`
	State  string `json:"state"`
	Switch string `json:"switch"`
	Flow   Flow   `json:"flow"`
}

// StoredFlowsFilter restricts a stored flows listing. Zero fields do not
// filter.
type StoredFlowsFilter struct {
	DPIDs  []string
	States []string
	// CookieRange is an inclusive [low, high] range. It is applied if high
	// is non-zero.
	CookieRange [2]uint64
}

func (f StoredFlowsFilter) query() url.Values {
	q := url.Values{}
	for _, dpid := range f.DPIDs {
		q.Add("dpid", dpid)
	}
	for _, state := range f.States {
		q.Add("state", state)
	}
	if f.CookieRange[1] != 0 {
		q.Add("cookie_range", strconv.FormatUint(f.CookieRange[0], 10))
		q.Add("cookie_range", strconv.FormatUint(f.CookieRange[1], 10))
	}
	return q
}

// Flows returns the installed flows of all switches keyed by DPID.
func (c *Client) Flows(ctx context.Context) (map[string][]Flow, error) {
	return c.flows(ctx, flowsPath+"/flows")
}

// SwitchFlows returns the installed flows of one switch.
func (c *Client) SwitchFlows(ctx context.Context, dpid string) ([]Flow, error) {
	all, err := c.flows(ctx, flowsPath+"/flows/"+url.PathEscape(dpid))
	if err != nil {
		return nil, err
	}
	return all[dpid], nil
}

func (c *Client) flows(ctx context.Context, path string) (map[string][]Flow, error) {
	var reply map[string]struct {
		Flows []Flow `json:"flows"`
	}
	if err := c.call(ctx, http.MethodGet, path, nil, nil, &reply); err != nil {
		return nil, err
	}
	res := make(map[string][]Flow, len(reply))
	for dpid, entry := range reply {
		res[dpid] = entry.Flows
	}
	return res, nil
}

// InstallFlows pushes flows to a switch, or to all switches if dpid is
// empty. Force installs the flows even if the switch is not connected.
func (c *Client) InstallFlows(ctx context.Context, dpid string, flows []Flow,
	force bool) error {

	body := map[string]any{"flows": flows, "force": force}
	return c.call(ctx, http.MethodPost, switchFlowsPath(dpid), nil, body, nil)
}

// DeleteFlows removes the flows matching the given entries from a switch,
// or from all switches if dpid is empty. Entries match on their match
// fields and on cookie under cookie_mask.
func (c *Client) DeleteFlows(ctx context.Context, dpid string, flows []Flow,
	force bool) error {

	body := map[string]any{"flows": flows, "force": force}
	return c.call(ctx, http.MethodDelete, switchFlowsPath(dpid), nil, body, nil)
}

// StoredFlows lists persisted flows keyed by DPID.
func (c *Client) StoredFlows(ctx context.Context,
	filter StoredFlowsFilter) (map[string][]StoredFlow, error) {

	var reply map[string][]StoredFlow
	err := c.call(ctx, http.MethodGet, flowsPath+"/stored_flows", filter.query(), nil, &reply)
	return reply, err
}

func switchFlowsPath(dpid string) string {
	if dpid == "" {
		return flowsPath + "/flows"
	}
	return flowsPath + "/flows/" + url.PathEscape(dpid)
}

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
	"strconv"
)

const (
	traceCPPath = "/amlight/sdntrace_cp/v1"
	tracePath   = "/amlight/sdntrace"
)

// TraceSwitch is where a trace enters the network.
type TraceSwitch struct {
	DPID   string `json:"dpid"`
	InPort uint32 `json:"in_port"`
}

// TraceEth are the Ethernet fields of the traced packet.
type TraceEth struct {
	DLVLAN int `json:"dl_vlan,omitempty"`
	DLType int `json:"dl_type,omitempty"`
}

// TraceRequest describes a packet to trace.
type TraceRequest struct {
	Switch TraceSwitch `json:"switch"`
	Eth    *TraceEth   `json:"eth,omitempty"`
}

// TraceOut is where a step forwards the traced packet.
type TraceOut struct {
	Port uint32 `json:"port"`
	VLAN int    `json:"vlan,omitempty"`
}

// TraceStep is one hop of a trace.
type TraceStep struct {
	DPID string    `json:"dpid"`
	Port uint32    `json:"port"`
	Type string    `json:"type"`
	VLAN int       `json:"vlan,omitempty"`
	Time string    `json:"time,omitempty"`
	Out  *TraceOut `json:"out"`
}

type traceBody struct {
	Trace TraceRequest `json:"trace"`
}

// Trace computes the path of a packet from the control plane's flow
// tables.
func (c *Client) Trace(ctx context.Context, req TraceRequest) ([]TraceStep, error) {
	var reply struct {
		Result []TraceStep `json:"result"`
	}
	err := c.call(ctx, http.MethodPut, traceCPPath+"/trace", nil, traceBody{Trace: req}, &reply)
	return reply.Result, err
}

// Traces computes several traces at once. Results are in request order.
func (c *Client) Traces(ctx context.Context, reqs ...TraceRequest) ([][]TraceStep, error) {
	body := make([]traceBody, 0, len(reqs))
	for _, r := range reqs {
		body = append(body, traceBody{Trace: r})
	}
	var reply struct {
		Result [][]TraceStep `json:"result"`
	}
	err := c.call(ctx, http.MethodPut, traceCPPath+"/traces", nil, body, &reply)
	return reply.Result, err
}

// StartDataplaneTrace injects a trace packet and returns the trace ID.
func (c *Client) StartDataplaneTrace(ctx context.Context, req TraceRequest) (int, error) {
	var reply struct {
		Result struct {
			TraceID int `json:"trace_id"`
		} `json:"result"`
	}
	err := c.call(ctx, http.MethodPut, tracePath+"/trace", nil, traceBody{Trace: req}, &reply)
	return reply.Result.TraceID, err
}

// DataplaneTrace returns the result of a dataplane trace.
func (c *Client) DataplaneTrace(ctx context.Context, id int) (map[string]any, error) {
	var reply map[string]any
	err := c.call(ctx, http.MethodGet, tracePath+"/trace/"+strconv.Itoa(id), nil, nil, &reply)
	return reply, err
}

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
)

const lldpPath = "/kytos/of_lldp/v1"

// Liveness states of an interface.
const (
	LivenessUp   = "up"
	LivenessDown = "down"
	LivenessInit = "init"
)

// LivenessStatus is the liveness detection state of an interface.
type LivenessStatus struct {
	ID              string `json:"id"`
	Status          string `json:"status"`
	StatusUpdatedAt string `json:"status_updated_at,omitempty"`
}

// LivenessPair is a pair of interfaces exchanging liveness LLDP packets.
type LivenessPair struct {
	InterfaceA LivenessStatus `json:"interface_a"`
	InterfaceB LivenessStatus `json:"interface_b"`
	Status     string         `json:"status"`
}

type interfaceList struct {
	Interfaces []string `json:"interfaces"`
}

// EnableLiveness enables liveness detection on the given interfaces.
func (c *Client) EnableLiveness(ctx context.Context, ifaces ...string) error {
	return c.call(ctx, http.MethodPost, lldpPath+"/liveness/enable", nil,
		interfaceList{Interfaces: ifaces}, nil)
}

// DisableLiveness disables liveness detection on the given interfaces.
func (c *Client) DisableLiveness(ctx context.Context, ifaces ...string) error {
	return c.call(ctx, http.MethodPost, lldpPath+"/liveness/disable", nil,
		interfaceList{Interfaces: ifaces}, nil)
}

// Liveness returns the liveness state of the given interfaces, or of all
// interfaces with liveness enabled if none are given.
func (c *Client) Liveness(ctx context.Context, ifaces ...string) ([]LivenessStatus, error) {
	q := url.Values{}
	for _, id := range ifaces {
		q.Add("interface_id", id)
	}
	var reply struct {
		Interfaces []LivenessStatus `json:"interfaces"`
	}
	err := c.call(ctx, http.MethodGet, lldpPath+"/liveness/", q, nil, &reply)
	return reply.Interfaces, err
}

// LivenessPairs returns the interface pairs with liveness enabled.
func (c *Client) LivenessPairs(ctx context.Context) ([]LivenessPair, error) {
	var reply struct {
		Pairs []LivenessPair `json:"pairs"`
	}
	err := c.call(ctx, http.MethodGet, lldpPath+"/liveness/pair", nil, nil, &reply)
	return reply.Pairs, err
}

// EnableLLDP enables LLDP on the given interfaces.
func (c *Client) EnableLLDP(ctx context.Context, ifaces ...string) error {
	return c.call(ctx, http.MethodPost, lldpPath+"/interfaces/enable", nil,
		interfaceList{Interfaces: ifaces}, nil)
}

// DisableLLDP disables LLDP on the given interfaces.
func (c *Client) DisableLLDP(ctx context.Context, ifaces ...string) error {
	return c.call(ctx, http.MethodPost, lldpPath+"/interfaces/disable", nil,
		interfaceList{Interfaces: ifaces}, nil)
}

// LLDPInterfaces lists the interfaces with LLDP enabled.
func (c *Client) LLDPInterfaces(ctx context.Context) ([]string, error) {
	var reply interfaceList
	err := c.call(ctx, http.MethodGet, lldpPath+"/interfaces", nil, nil, &reply)
	return reply.Interfaces, err
}

// PollingTime returns the LLDP polling interval in seconds.
func (c *Client) PollingTime(ctx context.Context) (int, error) {
	var reply struct {
		PollingTime int `json:"polling_time"`
	}
	err := c.call(ctx, http.MethodGet, lldpPath+"/polling_time", nil, nil, &reply)
	return reply.PollingTime, err
}

// SetPollingTime changes the LLDP polling interval in seconds.
func (c *Client) SetPollingTime(ctx context.Context, seconds int) error {
	return c.call(ctx, http.MethodPost, lldpPath+"/polling_time", nil,
		map[string]int{"polling_time": seconds}, nil)
}

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

const topologyPath = "/kytos/topology/v3"

// Kind selects the topology element a call refers to.
type Kind string

const (
	KindSwitch    Kind = "switches"
	KindInterface Kind = "interfaces"
	KindLink      Kind = "links"
)

// Interface is a switch port as known to the controller.
type Interface struct {
	ID         string         `json:"id"`
	Name       string         `json:"name,omitempty"`
	PortNumber uint32         `json:"port_number,omitempty"`
	Switch     string         `json:"switch,omitempty"`
	Enabled    bool           `json:"enabled"`
	Active     bool           `json:"active"`
	Link       string         `json:"link,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// Switch is a datapath as known to the controller.
type Switch struct {
	ID         string               `json:"id"`
	DPID       string               `json:"dpid"`
	Enabled    bool                 `json:"enabled"`
	Active     bool                 `json:"active"`
	Interfaces map[string]Interface `json:"interfaces,omitempty"`
	Metadata   map[string]any       `json:"metadata,omitempty"`
}

// Link is a discovered link between two interfaces.
type Link struct {
	ID        string         `json:"id"`
	Enabled   bool           `json:"enabled"`
	Active    bool           `json:"active"`
	EndpointA Interface      `json:"endpoint_a"`
	EndpointB Interface      `json:"endpoint_b"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Topology is the controller's view of the network.
type Topology struct {
	Switches map[string]Switch `json:"switches"`
	Links    map[string]Link   `json:"links"`
}

// EnabledSwitches counts the switches administratively enabled.
func (t Topology) EnabledSwitches() int {
	n := 0
	for _, sw := range t.Switches {
		if sw.Enabled {
			n++
		}
	}
	return n
}

// Topology returns the full topology.
func (c *Client) Topology(ctx context.Context) (Topology, error) {
	var reply struct {
		Topology Topology `json:"topology"`
	}
	err := c.call(ctx, http.MethodGet, topologyPath+"/", nil, nil, &reply)
	return reply.Topology, err
}

// Switches returns all switches keyed by ID.
func (c *Client) Switches(ctx context.Context) (map[string]Switch, error) {
	var reply struct {
		Switches map[string]Switch `json:"switches"`
	}
	err := c.call(ctx, http.MethodGet, topologyPath+"/switches", nil, nil, &reply)
	return reply.Switches, err
}

// Interfaces returns all interfaces keyed by ID.
func (c *Client) Interfaces(ctx context.Context) (map[string]Interface, error) {
	var reply struct {
		Interfaces map[string]Interface `json:"interfaces"`
	}
	err := c.call(ctx, http.MethodGet, topologyPath+"/interfaces", nil, nil, &reply)
	return reply.Interfaces, err
}

// Links returns all links keyed by ID.
func (c *Client) Links(ctx context.Context) (map[string]Link, error) {
	var reply struct {
		Links map[string]Link `json:"links"`
	}
	err := c.call(ctx, http.MethodGet, topologyPath+"/links", nil, nil, &reply)
	return reply.Links, err
}

// Enable administratively enables a switch, interface or link.
func (c *Client) Enable(ctx context.Context, kind Kind, id string) error {
	return c.call(ctx, http.MethodPost, elementPath(kind, id)+"/enable", nil, nil, nil)
}

// Disable administratively disables a switch, interface or link.
func (c *Client) Disable(ctx context.Context, kind Kind, id string) error {
	return c.call(ctx, http.MethodPost, elementPath(kind, id)+"/disable", nil, nil, nil)
}

// EnableInterfaces administratively enables every interface of a switch.
func (c *Client) EnableInterfaces(ctx context.Context, dpid string) error {
	return c.call(ctx, http.MethodPost,
		topologyPath+"/interfaces/switch/"+url.PathEscape(dpid)+"/enable", nil, nil, nil)
}

// Metadata returns the metadata of an element.
func (c *Client) Metadata(ctx context.Context, kind Kind, id string) (map[string]any, error) {
	var reply struct {
		Metadata map[string]any `json:"metadata"`
	}
	err := c.call(ctx, http.MethodGet, elementPath(kind, id)+"/metadata", nil, nil, &reply)
	return reply.Metadata, err
}

// AddMetadata merges md into the metadata of an element.
func (c *Client) AddMetadata(ctx context.Context, kind Kind, id string,
	md map[string]any) error {

	return c.call(ctx, http.MethodPost, elementPath(kind, id)+"/metadata", nil, md, nil)
}

// DeleteMetadata removes a single metadata key of an element.
func (c *Client) DeleteMetadata(ctx context.Context, kind Kind, id, key string) error {
	return c.call(ctx, http.MethodDelete,
		elementPath(kind, id)+"/metadata/"+url.PathEscape(key), nil, nil, nil)
}

func elementPath(kind Kind, id string) string {
	return topologyPath + "/" + string(kind) + "/" + url.PathEscape(id)
}

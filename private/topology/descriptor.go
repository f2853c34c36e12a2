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

// Package topology describes virtual OpenFlow fabrics.
//
// A Descriptor is an immutable recipe: switches, hosts and the links between
// them, with every port number resolved. Descriptors are created with a
// Builder, taken from the closed catalog, or read from a YAML file.
package topology

import (
	"fmt"
	"net"
	"net/netip"
	"slices"

	"github.com/openflow-e2e/harness/pkg/dpid"
)

// Switch is an emulated OpenFlow switch.
type Switch struct {
	Name string
	DPID dpid.DPID
	// ListenPort, if non-zero, is a passive OpenFlow port opened on the
	// switch in addition to the active controller connection.
	ListenPort uint16
}

// Host is an emulated end host living in its own network namespace.
type Host struct {
	Name string
	MAC  net.HardwareAddr
	Addr netip.Prefix
}

// Endpoint is one side of a link.
type Endpoint struct {
	Node string
	Port uint32
}

func (e Endpoint) String() string {
	return fmt.Sprintf("%s:%d", e.Node, e.Port)
}

// IfName is the name of the network interface backing the endpoint.
func (e Endpoint) IfName() string {
	return fmt.Sprintf("%s-eth%d", e.Node, e.Port)
}

// Link connects two endpoints.
type Link struct {
	A, B Endpoint
}

func (l Link) String() string {
	return l.A.String() + "<->" + l.B.String()
}

// Connects reports whether the link joins nodes a and b, in either order.
func (l Link) Connects(a, b string) bool {
	return (l.A.Node == a && l.B.Node == b) || (l.A.Node == b && l.B.Node == a)
}

// IsLoop reports whether both ends of the link are on the same node.
func (l Link) IsLoop() bool {
	return l.A.Node == l.B.Node
}

// Descriptor is a fully resolved topology. It is safe for concurrent use.
type Descriptor struct {
	name     string
	switches []Switch
	hosts    []Host
	links    []Link
}

// Name returns the topology name.
func (d *Descriptor) Name() string {
	return d.name
}

// Switches returns the switches in declaration order.
func (d *Descriptor) Switches() []Switch {
	return slices.Clone(d.switches)
}

// Hosts returns the hosts in declaration order.
func (d *Descriptor) Hosts() []Host {
	hosts := make([]Host, 0, len(d.hosts))
	for _, h := range d.hosts {
		h.MAC = slices.Clone(h.MAC)
		hosts = append(hosts, h)
	}
	return hosts
}

// Links returns the links in declaration order.
func (d *Descriptor) Links() []Link {
	return slices.Clone(d.links)
}

// Switch returns the switch with the given name.
func (d *Descriptor) Switch(name string) (Switch, bool) {
	for _, s := range d.switches {
		if s.Name == name {
			return s, true
		}
	}
	return Switch{}, false
}

// HostIndex returns the position of host name in declaration order,
// starting at 1.
func (d *Descriptor) HostIndex(name string) (int, bool) {
	for i, h := range d.hosts {
		if h.Name == name {
			return i + 1, true
		}
	}
	return 0, false
}

// Host returns the host with the given name.
func (d *Descriptor) Host(name string) (Host, bool) {
	for _, h := range d.hosts {
		if h.Name == name {
			h.MAC = slices.Clone(h.MAC)
			return h, true
		}
	}
	return Host{}, false
}

// LinksBetween returns all links joining a and b.
func (d *Descriptor) LinksBetween(a, b string) []Link {
	var links []Link
	for _, l := range d.links {
		if l.Connects(a, b) {
			links = append(links, l)
		}
	}
	return links
}

// Attachment returns the switch-side endpoint the host is wired to. Hosts
// attached to more than one switch return their first link.
func (d *Descriptor) Attachment(host string) (Endpoint, bool) {
	for _, l := range d.links {
		switch host {
		case l.A.Node:
			return l.B, true
		case l.B.Node:
			return l.A, true
		}
	}
	return Endpoint{}, false
}

// SwitchLinks returns the number of links with a switch on both ends,
// excluding loops. It is the count the controller discovers over LLDP.
func (d *Descriptor) SwitchLinks() int {
	n := 0
	for _, l := range d.links {
		_, a := d.Switch(l.A.Node)
		_, b := d.Switch(l.B.Node)
		if a && b && !l.IsLoop() {
			n++
		}
	}
	return n
}

func (d *Descriptor) String() string {
	return fmt.Sprintf("%s: %d switches, %d hosts, %d links",
		d.name, len(d.switches), len(d.hosts), len(d.links))
}

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

package topology

import (
	"net"
	"net/netip"
	"regexp"
	"strconv"
	"strings"

	"github.com/openflow-e2e/harness/pkg/dpid"
	"github.com/openflow-e2e/harness/pkg/private/serrors"
)

// maxNameLen keeps "<name>-eth<port>" within the kernel's 15 byte interface
// name limit for ports up to 99.
const maxNameLen = 9

var (
	validName     = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9]*$`)
	trailingDigit = regexp.MustCompile(`[0-9]+$`)
)

// SwitchOption customizes a switch.
type SwitchOption func(*Switch)

// WithDPID sets an explicit datapath identifier. Without it, the dpid is
// derived from the trailing digits of the switch name.
func WithDPID(d dpid.DPID) SwitchOption {
	return func(s *Switch) { s.DPID = d }
}

// WithListenPort opens a passive OpenFlow port on the switch.
func WithListenPort(port uint16) SwitchOption {
	return func(s *Switch) { s.ListenPort = port }
}

// HostOption customizes a host.
type HostOption func(*hostSpec)

type hostSpec struct {
	mac  string
	addr string
}

// WithMAC sets a fixed MAC address, e.g. "00:00:00:00:00:11".
func WithMAC(mac string) HostOption {
	return func(h *hostSpec) { h.mac = mac }
}

// WithAddr sets the host address in prefix notation, e.g. "10.0.0.1/24".
func WithAddr(addr string) HostOption {
	return func(h *hostSpec) { h.addr = addr }
}

type linkSpec struct {
	a, b string
}

// Builder assembles a Descriptor. Errors are deferred to Build.
type Builder struct {
	name     string
	switches []Switch
	hosts    []Host
	specs    []hostSpec
	links    []linkSpec
}

// NewBuilder starts a new descriptor with the given name.
func NewBuilder(name string) *Builder {
	return &Builder{name: name}
}

// Switch adds a switch.
func (b *Builder) Switch(name string, opts ...SwitchOption) *Builder {
	s := Switch{Name: name}
	for _, opt := range opts {
		opt(&s)
	}
	b.switches = append(b.switches, s)
	return b
}

// Switches adds switches with default options.
func (b *Builder) Switches(names ...string) *Builder {
	for _, n := range names {
		b.Switch(n)
	}
	return b
}

// Host adds a host.
func (b *Builder) Host(name string, opts ...HostOption) *Builder {
	var spec hostSpec
	for _, opt := range opts {
		opt(&spec)
	}
	b.hosts = append(b.hosts, Host{Name: name})
	b.specs = append(b.specs, spec)
	return b
}

// Hosts adds hosts with default options.
func (b *Builder) Hosts(names ...string) *Builder {
	for _, n := range names {
		b.Host(n)
	}
	return b
}

// Link connects two endpoints. An endpoint is either a node name, in which
// case the next free port is used, or "node:port".
func (b *Builder) Link(a, z string) *Builder {
	b.links = append(b.links, linkSpec{a: a, b: z})
	return b
}

// Build validates the recipe and resolves all ports, dpids and addresses.
func (b *Builder) Build() (*Descriptor, error) {
	if b.name == "" {
		return nil, serrors.New("topology without name")
	}
	nodes := make(map[string]bool)
	for _, n := range b.nodeNames() {
		if !validName.MatchString(n) || len(n) > maxNameLen {
			return nil, serrors.New("invalid node name", "topology", b.name, "node", n,
				"max_len", maxNameLen)
		}
		if nodes[n] {
			return nil, serrors.New("duplicate node", "topology", b.name, "node", n)
		}
		nodes[n] = true
	}
	switches, err := b.resolveSwitches()
	if err != nil {
		return nil, err
	}
	hosts, err := b.resolveHosts()
	if err != nil {
		return nil, err
	}
	links, err := b.resolveLinks(nodes)
	if err != nil {
		return nil, err
	}
	return &Descriptor{name: b.name, switches: switches, hosts: hosts, links: links}, nil
}

func (b *Builder) nodeNames() []string {
	names := make([]string, 0, len(b.switches)+len(b.hosts))
	for _, s := range b.switches {
		names = append(names, s.Name)
	}
	for _, h := range b.hosts {
		names = append(names, h.Name)
	}
	return names
}

func (b *Builder) resolveSwitches() ([]Switch, error) {
	seen := make(map[dpid.DPID]string)
	switches := make([]Switch, 0, len(b.switches))
	for _, s := range b.switches {
		if s.DPID == 0 {
			digits := trailingDigit.FindString(s.Name)
			if digits == "" {
				return nil, serrors.New("cannot derive dpid, name has no trailing digits",
					"topology", b.name, "switch", s.Name)
			}
			v, err := strconv.ParseUint(digits, 10, 64)
			if err != nil || v == 0 {
				return nil, serrors.New("cannot derive dpid", "topology", b.name,
					"switch", s.Name)
			}
			s.DPID = dpid.DPID(v)
		}
		if other, ok := seen[s.DPID]; ok {
			return nil, serrors.New("duplicate dpid", "topology", b.name, "dpid", s.DPID,
				"switches", []string{other, s.Name})
		}
		seen[s.DPID] = s.Name
		switches = append(switches, s)
	}
	return switches, nil
}

func (b *Builder) resolveHosts() ([]Host, error) {
	seen := make(map[string]string)
	hosts := make([]Host, 0, len(b.hosts))
	for i, h := range b.hosts {
		spec := b.specs[i]
		idx := uint64(i + 1)
		if spec.mac == "" {
			h.MAC = net.HardwareAddr{0, 0, byte(idx >> 24), byte(idx >> 16),
				byte(idx >> 8), byte(idx)}
		} else {
			mac, err := net.ParseMAC(spec.mac)
			if err != nil || len(mac) != 6 {
				return nil, serrors.New("invalid host MAC", "topology", b.name,
					"host", h.Name, "mac", spec.mac)
			}
			h.MAC = mac
		}
		if other, ok := seen[h.MAC.String()]; ok {
			return nil, serrors.New("duplicate MAC", "topology", b.name, "mac", h.MAC,
				"hosts", []string{other, h.Name})
		}
		seen[h.MAC.String()] = h.Name
		if spec.addr == "" {
			h.Addr = netip.PrefixFrom(netip.AddrFrom4([4]byte{10, 0, byte(idx >> 8),
				byte(idx)}), 8)
		} else {
			p, err := netip.ParsePrefix(spec.addr)
			if err != nil {
				return nil, serrors.Wrap("invalid host address", err, "topology", b.name,
					"host", h.Name)
			}
			h.Addr = p
		}
		hosts = append(hosts, h)
	}
	return hosts, nil
}

func (b *Builder) resolveLinks(nodes map[string]bool) ([]Link, error) {
	isHost := make(map[string]bool, len(b.hosts))
	for _, h := range b.hosts {
		isHost[h.Name] = true
	}
	parsed := make([]Link, 0, len(b.links))
	used := make(map[string]map[uint32]bool)
	reserve := func(e Endpoint) error {
		if used[e.Node] == nil {
			used[e.Node] = make(map[uint32]bool)
		}
		if used[e.Node][e.Port] {
			return serrors.New("port used twice", "topology", b.name, "endpoint", e)
		}
		used[e.Node][e.Port] = true
		return nil
	}
	// Explicit ports are reserved first so that automatic numbering never
	// collides with them.
	for _, spec := range b.links {
		a, err := parseEndpoint(spec.a)
		if err != nil {
			return nil, serrors.Wrap("invalid link", err, "topology", b.name)
		}
		z, err := parseEndpoint(spec.b)
		if err != nil {
			return nil, serrors.Wrap("invalid link", err, "topology", b.name)
		}
		for _, e := range []Endpoint{a, z} {
			if !nodes[e.Node] {
				return nil, serrors.New("link to unknown node", "topology", b.name,
					"node", e.Node)
			}
		}
		if isHost[a.Node] && isHost[z.Node] {
			return nil, serrors.New("link between two hosts", "topology", b.name,
				"a", a.Node, "b", z.Node)
		}
		if a.Node == z.Node && isHost[a.Node] {
			return nil, serrors.New("loop on host", "topology", b.name, "host", a.Node)
		}
		for _, e := range []Endpoint{a, z} {
			if e.Port == autoPort {
				continue
			}
			if !isHost[e.Node] && e.Port == 0 {
				return nil, serrors.New("switch port 0 is reserved", "topology", b.name,
					"endpoint", e)
			}
			if err := reserve(e); err != nil {
				return nil, err
			}
		}
		parsed = append(parsed, Link{A: a, B: z})
	}
	next := func(node string) uint32 {
		port := uint32(1)
		if isHost[node] {
			port = 0
		}
		for used[node][port] {
			port++
		}
		return port
	}
	for i := range parsed {
		for _, e := range []*Endpoint{&parsed[i].A, &parsed[i].B} {
			if e.Port != autoPort {
				continue
			}
			e.Port = next(e.Node)
			if err := reserve(*e); err != nil {
				return nil, err
			}
		}
	}
	return parsed, nil
}

// autoPort marks an endpoint whose port is assigned by Build.
const autoPort = ^uint32(0)

func parseEndpoint(raw string) (Endpoint, error) {
	node, port, found := strings.Cut(raw, ":")
	if !found {
		return Endpoint{Node: raw, Port: autoPort}, nil
	}
	p, err := strconv.ParseUint(port, 10, 16)
	if err != nil {
		return Endpoint{}, serrors.Wrap("invalid port", err, "endpoint", raw)
	}
	return Endpoint{Node: node, Port: uint32(p)}, nil
}

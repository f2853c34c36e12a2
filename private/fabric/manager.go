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

// Package fabric manages the lifetime of a virtual OpenFlow fabric: Open
// vSwitch bridges as switches, network namespaces as hosts and veth pairs as
// links.
//
// A Manager owns the host's emulator resources. It builds Fabrics from
// topology descriptors and guarantees that at most one of them runs at a
// time. Every fabric start is preceded by an unconditional purge of leftovers
// from earlier runs.
package fabric

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/openflow-e2e/harness/pkg/log"
	"github.com/openflow-e2e/harness/pkg/private/serrors"
	"github.com/openflow-e2e/harness/private/env"
	"github.com/openflow-e2e/harness/private/topology"
)

// NamespacePrefix prefixes the network namespace of every host.
const NamespacePrefix = "e2e-"

var (
	// ErrFabricActive is returned when a fabric is started while another
	// one is alive.
	ErrFabricActive = errors.New("another fabric is active")
	// ErrNotRunning is returned by operations that need a running fabric.
	ErrNotRunning = errors.New("fabric not running")
	// ErrUnknownNode is returned for names that are not part of the fabric.
	ErrUnknownNode = errors.New("unknown node")
	// ErrNotConnected is returned when switches miss the connection deadline.
	ErrNotConnected = errors.New("switches not connected")
)

// Config configures how fabrics are instantiated.
type Config struct {
	// ControllerIP and ControllerPort are the OpenFlow endpoint every switch
	// dials.
	ControllerIP   string
	ControllerPort uint16
	// Vsctl, Ofctl and IP name the emulator tools.
	Vsctl string
	Ofctl string
	IP    string
	// PollInterval is the interval of connection checks.
	PollInterval time.Duration
}

// InitDefaults fills unset fields.
func (c *Config) InitDefaults() {
	if c.ControllerIP == "" {
		c.ControllerIP = "127.0.0.1"
	}
	if c.ControllerPort == 0 {
		c.ControllerPort = 6653
	}
	if c.Vsctl == "" {
		c.Vsctl = "ovs-vsctl"
	}
	if c.Ofctl == "" {
		c.Ofctl = "ovs-ofctl"
	}
	if c.IP == "" {
		c.IP = "ip"
	}
	if c.PollInterval == 0 {
		c.PollInterval = 500 * time.Millisecond
	}
}

// ConfigFrom derives the manager configuration from the harness
// configuration.
func ConfigFrom(c env.Controller, f env.Fabric, t env.Timeouts) Config {
	return Config{
		ControllerIP:   c.Address,
		ControllerPort: c.OpenFlowPort,
		Vsctl:          f.Vsctl,
		Ofctl:          f.Ofctl,
		IP:             f.IP,
		PollInterval:   t.PollInterval.Duration,
	}
}

// Manager creates fabrics and owns the host's emulator state.
type Manager struct {
	Config  Config
	Runner  Runner
	Links   LinkDriver
	Catalog topology.Catalog
	Logger  log.Logger

	mu     sync.Mutex
	active *Fabric
}

// NewManager returns a manager driving the local host.
func NewManager(cfg Config, logger log.Logger) *Manager {
	cfg.InitDefaults()
	return &Manager{
		Config:  cfg,
		Runner:  ExecRunner{Timeout: 30 * time.Second, Logger: logger},
		Links:   NetlinkDriver{},
		Catalog: topology.DefaultCatalog(),
		Logger:  logger,
	}
}

func (m *Manager) logger() log.Logger {
	if m.Logger == nil {
		return log.Root()
	}
	return m.Logger
}

// Build resolves name against the catalog and binds the resulting topology
// to the controller endpoint. Nothing is created on the host until Start.
func (m *Manager) Build(name string) (*Fabric, error) {
	catalog := m.Catalog
	if catalog == nil {
		catalog = topology.DefaultCatalog()
	}
	desc, err := catalog.Lookup(name)
	if err != nil {
		return nil, err
	}
	return m.BuildFrom(desc), nil
}

// BuildFrom binds an arbitrary descriptor to the controller endpoint.
func (m *Manager) BuildFrom(desc *topology.Descriptor) *Fabric {
	m.Config.InitDefaults()
	f := &Fabric{
		mgr:    m,
		desc:   desc,
		target: fmt.Sprintf("tcp:%s:%d", m.Config.ControllerIP, m.Config.ControllerPort),
		hosts:  make(map[string]*Host),
		logger: m.logger().New("topology", desc.Name()),
	}
	for _, h := range desc.Hosts() {
		att, _ := desc.Attachment(h.Name)
		f.hosts[h.Name] = &Host{
			name:   h.Name,
			ns:     NamespacePrefix + h.Name,
			iface:  hostInterface(desc, h.Name),
			mac:    h.MAC,
			addr:   h.Addr,
			uplink: att,
			mgr:    m,
		}
	}
	return f
}

// Active returns the running fabric, if any.
func (m *Manager) Active() *Fabric {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

func (m *Manager) claim(f *Fabric) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active != nil && m.active != f {
		return serrors.Join(ErrFabricActive, nil, "active", m.active.desc.Name(),
			"requested", f.desc.Name())
	}
	m.active = f
	return nil
}

func (m *Manager) release(f *Fabric) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == f {
		m.active = nil
	}
}

func (m *Manager) vsctl(ctx context.Context, args ...string) ([]byte, error) {
	return m.Runner.Run(ctx, m.Config.Vsctl, args...)
}

func (m *Manager) ofctl(ctx context.Context, args ...string) ([]byte, error) {
	return m.Runner.Run(ctx, m.Config.Ofctl, append([]string{"-O", "OpenFlow13"}, args...)...)
}

func (m *Manager) ip(ctx context.Context, args ...string) ([]byte, error) {
	return m.Runner.Run(ctx, m.Config.IP, args...)
}

// hostInterface returns the interface name of the host's first link.
func hostInterface(desc *topology.Descriptor, host string) string {
	for _, l := range desc.Links() {
		if l.A.Node == host {
			return l.A.IfName()
		}
		if l.B.Node == host {
			return l.B.IfName()
		}
	}
	return ""
}

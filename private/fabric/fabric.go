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

package fabric

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"k8s.io/apimachinery/pkg/util/wait"

	"github.com/openflow-e2e/harness/pkg/log"
	"github.com/openflow-e2e/harness/pkg/private/serrors"
	"github.com/openflow-e2e/harness/private/flowtable"
	"github.com/openflow-e2e/harness/private/topology"
)

// DefaultConnectDeadline bounds WaitAllSwitchesConnected when no deadline is
// given.
const DefaultConnectDeadline = 30 * time.Second

// ownerKey marks bridges created by the harness in the OVS database.
const ownerKey = "external_ids:e2e-harness"

type state int

const (
	stateBuilt state = iota
	stateRunning
	stateStopped
)

// Fabric is a live instance of a topology descriptor.
type Fabric struct {
	mgr    *Manager
	desc   *topology.Descriptor
	target string
	hosts  map[string]*Host
	logger log.Logger

	mu    sync.Mutex
	state state
}

// Descriptor returns the topology the fabric was built from.
func (f *Fabric) Descriptor() *topology.Descriptor {
	return f.desc
}

// Name returns the topology name.
func (f *Fabric) Name() string {
	return f.desc.Name()
}

// Target returns the controller endpoint the switches dial.
func (f *Fabric) Target() string {
	return f.target
}

// Running reports whether the fabric has been started and not stopped.
func (f *Fabric) Running() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state == stateRunning
}

// Start purges leftovers of earlier runs and brings every host, switch and
// link up. Once it returns every switch has been pointed at the controller;
// the control channels come up asynchronously and in no particular order.
func (f *Fabric) Start(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == stateRunning {
		return nil
	}
	if err := f.mgr.claim(f); err != nil {
		return err
	}
	if err := f.mgr.Purge(ctx); err != nil {
		f.mgr.release(f)
		return serrors.Wrap("purging emulator state", err, "topology", f.Name())
	}
	// From here on Stop must clean up, even if creation fails half way.
	f.state = stateRunning
	start := time.Now()
	if err := f.create(ctx); err != nil {
		return serrors.Wrap("starting fabric", err, "topology", f.Name())
	}
	f.logger.Info("Fabric started", "switches", len(f.desc.Switches()),
		"hosts", len(f.hosts), "links", len(f.desc.Links()), "took", time.Since(start))
	return nil
}

func (f *Fabric) create(ctx context.Context) error {
	links := f.mgr.Links
	for _, h := range f.desc.Hosts() {
		ns := f.hosts[h.Name].ns
		if _, err := f.mgr.ip(ctx, "netns", "add", ns); err != nil {
			return err
		}
		if err := links.SetState(ns, "lo", true); err != nil {
			return err
		}
	}
	for _, s := range f.desc.Switches() {
		if _, err := f.mgr.vsctl(ctx, addBridgeArgs(s)...); err != nil {
			return err
		}
	}
	for _, l := range f.desc.Links() {
		if err := f.createLink(ctx, l); err != nil {
			return serrors.Wrap("creating link", err, "link", l)
		}
	}
	for _, s := range f.desc.Switches() {
		if err := f.setController(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

func addBridgeArgs(s topology.Switch) []string {
	return []string{
		"--", "--may-exist", "add-br", s.Name,
		"--", "set", "Bridge", s.Name,
		"fail-mode=secure",
		"protocols=OpenFlow13",
		"other-config:datapath-id=" + s.DPID.Hex(),
		"other-config:disable-in-band=true",
		ownerKey + "=true",
	}
}

func (f *Fabric) createLink(ctx context.Context, l topology.Link) error {
	links := f.mgr.Links
	if err := links.AddVeth(l.A.IfName(), l.B.IfName()); err != nil {
		return err
	}
	for _, ep := range []topology.Endpoint{l.A, l.B} {
		ifName := ep.IfName()
		if h, ok := f.hosts[ep.Node]; ok {
			if err := links.MoveToNamespace(ifName, h.ns); err != nil {
				return err
			}
			if ifName == h.iface {
				if err := links.SetHardwareAddr(h.ns, ifName, h.mac); err != nil {
					return err
				}
				if err := links.SetAddr(h.ns, ifName, h.addr); err != nil {
					return err
				}
			}
			if err := links.SetState(h.ns, ifName, true); err != nil {
				return err
			}
			continue
		}
		_, err := f.mgr.vsctl(ctx, "add-port", ep.Node, ifName,
			"--", "set", "Interface", ifName, fmt.Sprintf("ofport_request=%d", ep.Port))
		if err != nil {
			return err
		}
		if err := links.SetState("", ifName, true); err != nil {
			return err
		}
	}
	return nil
}

func (f *Fabric) setController(ctx context.Context, s topology.Switch) error {
	args := []string{"set-controller", s.Name, f.target}
	if s.ListenPort != 0 {
		args = append(args, fmt.Sprintf("ptcp:%d", s.ListenPort))
	}
	_, err := f.mgr.vsctl(ctx, args...)
	return err
}

// Stop tears the fabric down and purges all residual emulator state. Stopping
// a fabric that does not run is a no-op.
func (f *Fabric) Stop(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != stateRunning {
		return nil
	}
	f.state = stateStopped
	defer f.mgr.release(f)
	if err := f.mgr.Purge(ctx); err != nil {
		return serrors.Wrap("stopping fabric", err, "topology", f.Name())
	}
	f.logger.Info("Fabric stopped")
	return nil
}

// Attach adopts a fabric started by another process, so that tools can
// inspect and stop it. Every switch of the topology must exist.
func (f *Fabric) Attach(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == stateRunning {
		return nil
	}
	st, err := f.SwitchStatus(ctx)
	if err != nil {
		return err
	}
	var missing []string
	for _, s := range st {
		if !s.Present {
			missing = append(missing, s.Name)
		}
	}
	if len(missing) > 0 {
		return serrors.Join(ErrNotRunning, nil, "topology", f.Name(), "missing", missing)
	}
	if err := f.mgr.claim(f); err != nil {
		return err
	}
	f.state = stateRunning
	return nil
}

// WaitAllSwitchesConnected blocks until every switch reports a live control
// channel. A zero deadline means DefaultConnectDeadline. On timeout the error
// carries a per-switch status table.
func (f *Fabric) WaitAllSwitchesConnected(ctx context.Context, deadline time.Duration) error {
	if !f.Running() {
		return ErrNotRunning
	}
	if deadline == 0 {
		deadline = DefaultConnectDeadline
	}
	var last []SwitchStatus
	var lastErr error
	start := time.Now()
	err := wait.PollUntilContextTimeout(ctx, f.mgr.Config.PollInterval, deadline, true,
		func(ctx context.Context) (bool, error) {
			st, err := f.SwitchStatus(ctx)
			if err != nil {
				lastErr = err
				return false, nil
			}
			last, lastErr = st, nil
			return len(Disconnected(st)) == 0, nil
		},
	)
	if err == nil {
		f.logger.Info("All switches connected", "took", time.Since(start))
		return nil
	}
	return serrors.Join(ErrNotConnected, lastErr,
		"topology", f.Name(),
		"deadline", deadline,
		"disconnected", Disconnected(last),
		"status", "\n"+StatusTable(last),
	)
}

// SetLink sets the administrative state of every link between a and b.
func (f *Fabric) SetLink(ctx context.Context, a, b string, up bool) error {
	if !f.Running() {
		return ErrNotRunning
	}
	links := f.desc.LinksBetween(a, b)
	if len(links) == 0 {
		return serrors.Join(ErrUnknownNode, nil, "reason", "no link between nodes",
			"a", a, "b", b)
	}
	for _, l := range links {
		if err := f.setLinkState(l, up); err != nil {
			return err
		}
	}
	f.logger.Info("Link state set", "a", a, "b", b, "up", up)
	return nil
}

// ResetAllLinksUp sets every link up. Links already up stay up.
func (f *Fabric) ResetAllLinksUp(ctx context.Context) error {
	if !f.Running() {
		return ErrNotRunning
	}
	var errs serrors.List
	for _, l := range f.desc.Links() {
		if err := f.setLinkState(l, true); err != nil {
			errs = append(errs, err)
		}
	}
	return errs.ToError()
}

func (f *Fabric) setLinkState(l topology.Link, up bool) error {
	for _, ep := range []topology.Endpoint{l.A, l.B} {
		ns := ""
		if h, ok := f.hosts[ep.Node]; ok {
			ns = h.ns
		}
		if err := f.mgr.Links.SetState(ns, ep.IfName(), up); err != nil {
			return serrors.Wrap("setting link state", err, "link", l, "up", up)
		}
	}
	return nil
}

// RawFlowDump returns the textual flow table of a switch.
func (f *Fabric) RawFlowDump(ctx context.Context, sw string) (string, error) {
	if err := f.checkSwitch(sw); err != nil {
		return "", err
	}
	out, err := f.mgr.ofctl(ctx, "dump-flows", sw)
	if err != nil {
		return "", serrors.Wrap("dumping flows", err, "switch", sw)
	}
	return string(out), nil
}

// FlowTable returns the parsed flow table of a switch.
func (f *Fabric) FlowTable(ctx context.Context, sw string) (flowtable.Table, error) {
	raw, err := f.RawFlowDump(ctx, sw)
	if err != nil {
		return nil, err
	}
	table, err := flowtable.Parse(raw)
	if err != nil {
		return nil, serrors.Wrap("parsing flows", err, "switch", sw)
	}
	return table, nil
}

// InstallRawFlow adds a flow to a switch behind the controller's back.
func (f *Fabric) InstallRawFlow(ctx context.Context, sw string, spec flowtable.Spec) error {
	if err := f.checkSwitch(sw); err != nil {
		return err
	}
	if _, err := f.mgr.ofctl(ctx, "add-flow", sw, spec.String()); err != nil {
		return serrors.Wrap("installing flow", err, "switch", sw, "flow", spec)
	}
	return nil
}

// DeleteRawFlows removes the flows matching the spec's table and match from
// a switch behind the controller's back.
func (f *Fabric) DeleteRawFlows(ctx context.Context, sw string, spec flowtable.Spec) error {
	if err := f.checkSwitch(sw); err != nil {
		return err
	}
	if _, err := f.mgr.ofctl(ctx, "del-flows", sw, spec.MatchString()); err != nil {
		return serrors.Wrap("deleting flows", err, "switch", sw, "match", spec.MatchString())
	}
	return nil
}

// WipeFlows empties the flow table of every switch. Switches are independent,
// so the wipes run concurrently.
func (f *Fabric) WipeFlows(ctx context.Context) error {
	if !f.Running() {
		return ErrNotRunning
	}
	g, ctx := errgroup.WithContext(ctx)
	for _, s := range f.desc.Switches() {
		g.Go(func() error {
			if _, err := f.mgr.ofctl(ctx, "del-flows", s.Name); err != nil {
				return serrors.Wrap("wiping flows", err, "switch", s.Name)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	f.logger.Debug("Flow tables wiped")
	return nil
}

// ReconnectSwitches makes every switch drop and reopen its control channel
// without touching the controller.
func (f *Fabric) ReconnectSwitches(ctx context.Context) error {
	if !f.Running() {
		return ErrNotRunning
	}
	for _, s := range f.desc.Switches() {
		if _, err := f.mgr.vsctl(ctx, "del-controller", s.Name); err != nil {
			return serrors.Wrap("dropping controller", err, "switch", s.Name)
		}
		if err := f.setController(ctx, s); err != nil {
			return serrors.Wrap("restoring controller", err, "switch", s.Name)
		}
	}
	f.logger.Info("Switches reconnected")
	return nil
}

// Host returns the handle of a host.
func (f *Fabric) Host(name string) (*Host, error) {
	h, ok := f.hosts[name]
	if !ok {
		return nil, serrors.Join(ErrUnknownNode, nil, "host", name, "topology", f.Name())
	}
	return h, nil
}

// Get returns the handles of several hosts in order.
func (f *Fabric) Get(names ...string) ([]*Host, error) {
	hosts := make([]*Host, 0, len(names))
	for _, n := range names {
		h, err := f.Host(n)
		if err != nil {
			return nil, err
		}
		hosts = append(hosts, h)
	}
	return hosts, nil
}

// Switch returns the descriptor entry of a switch.
func (f *Fabric) Switch(name string) (topology.Switch, error) {
	s, ok := f.desc.Switch(name)
	if !ok {
		return topology.Switch{}, serrors.Join(ErrUnknownNode, nil, "switch", name,
			"topology", f.Name())
	}
	return s, nil
}

func (f *Fabric) checkSwitch(name string) error {
	if !f.Running() {
		return ErrNotRunning
	}
	_, err := f.Switch(name)
	return err
}

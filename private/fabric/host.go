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
	"net"
	"net/netip"
	"regexp"
	"slices"
	"strconv"

	"github.com/openflow-e2e/harness/pkg/private/serrors"
	"github.com/openflow-e2e/harness/private/topology"
)

// DefaultPingCount is the number of echo requests Ping sends by default.
const DefaultPingCount = 4

// Host is a live handle on an emulated host. Commands run inside the host's
// network namespace.
type Host struct {
	name   string
	ns     string
	iface  string
	mac    net.HardwareAddr
	addr   netip.Prefix
	uplink topology.Endpoint
	mgr    *Manager
}

func (h *Host) Name() string { return h.name }

// Namespace returns the name of the host's network namespace.
func (h *Host) Namespace() string { return h.ns }

// Interface returns the name of the host's primary interface.
func (h *Host) Interface() string { return h.iface }

// MAC returns the MAC address of the primary interface.
func (h *Host) MAC() net.HardwareAddr { return slices.Clone(h.mac) }

// Addr returns the address of the primary interface.
func (h *Host) Addr() netip.Prefix { return h.addr }

// Uplink returns the switch port the host is wired to.
func (h *Host) Uplink() topology.Endpoint { return h.uplink }

// Cmd runs a command in the host's namespace and returns its output.
func (h *Host) Cmd(ctx context.Context, args ...string) (string, error) {
	out, err := h.mgr.ip(ctx, append([]string{"netns", "exec", h.ns}, args...)...)
	if err != nil {
		return string(out), serrors.Wrap("running host command", err, "host", h.name)
	}
	return string(out), nil
}

// AddVLAN creates a tagged sub-interface on the primary interface and returns
// its name.
func (h *Host) AddVLAN(vid uint16) (string, error) {
	name, err := h.mgr.Links.AddVLAN(h.ns, h.iface, vid)
	if err != nil {
		return "", serrors.Wrap("adding VLAN", err, "host", h.name, "vid", vid)
	}
	return name, nil
}

// SetAddr replaces the address of one of the host's interfaces.
func (h *Host) SetAddr(iface string, addr netip.Prefix) error {
	if err := h.mgr.Links.SetAddr(h.ns, iface, addr); err != nil {
		return serrors.Wrap("setting address", err, "host", h.name)
	}
	return nil
}

// PingResult summarizes a ping run.
type PingResult struct {
	Transmitted int
	Received    int
	// Loss is the packet loss in percent.
	Loss float64
}

// Lossless reports whether every request was answered.
func (r PingResult) Lossless() bool {
	return r.Transmitted > 0 && r.Loss == 0
}

var (
	pingCounts = regexp.MustCompile(`(\d+) packets transmitted, (\d+) (?:packets )?received`)
	pingLoss   = regexp.MustCompile(`([\d.]+)% packet loss`)
)

// Ping sends count echo requests to dst from the host. A count of zero sends
// DefaultPingCount requests. Packet loss is reported in the result, not as an
// error; an error means ping produced no summary.
func (h *Host) Ping(ctx context.Context, dst netip.Addr, count int) (PingResult, error) {
	if count <= 0 {
		count = DefaultPingCount
	}
	out, err := h.Cmd(ctx, "ping", "-c", strconv.Itoa(count), "-i", "0.2", "-W", "1",
		dst.String())
	res, perr := ParsePing(out)
	if perr != nil {
		if err != nil {
			return PingResult{}, err
		}
		return PingResult{}, serrors.Wrap("parsing ping output", perr, "host", h.name)
	}
	return res, nil
}

// ParsePing extracts the summary of iputils ping output.
func ParsePing(out string) (PingResult, error) {
	counts := pingCounts.FindStringSubmatch(out)
	loss := pingLoss.FindStringSubmatch(out)
	if counts == nil || loss == nil {
		return PingResult{}, serrors.New("no ping summary", "output", out)
	}
	var res PingResult
	res.Transmitted, _ = strconv.Atoi(counts[1])
	res.Received, _ = strconv.Atoi(counts[2])
	res.Loss, _ = strconv.ParseFloat(loss[1], 64)
	return res, nil
}

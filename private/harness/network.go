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

package harness

import (
	"context"
	"fmt"
	"net/netip"

	"go4.org/netipx"

	"github.com/openflow-e2e/harness/pkg/private/serrors"
	"github.com/openflow-e2e/harness/private/api"
	"github.com/openflow-e2e/harness/private/fabric"
	"github.com/openflow-e2e/harness/private/topology"
)

// descriptor returns the topology of the running fabric.
func (h *Context) descriptor() (*topology.Descriptor, error) {
	if h.Fabric == nil {
		return nil, serrors.New("no fabric running")
	}
	return h.Fabric.Descriptor(), nil
}

// DPID returns the datapath ID of switch sw as the controller renders it.
func (h *Context) DPID(sw string) (string, error) {
	desc, err := h.descriptor()
	if err != nil {
		return "", err
	}
	s, ok := desc.Switch(sw)
	if !ok {
		return "", serrors.New("unknown switch", "switch", sw, "topology", desc.Name())
	}
	return s.DPID.String(), nil
}

// InterfaceID returns the controller ID of port on switch sw.
func (h *Context) InterfaceID(sw string, port uint32) (string, error) {
	id, err := h.DPID(sw)
	if err != nil {
		return "", err
	}
	return InterfaceID(id, port), nil
}

// InterfaceID joins a DPID and a port number into an interface ID.
func InterfaceID(dpid string, port uint32) string {
	return fmt.Sprintf("%s:%d", dpid, port)
}

// EnableAll enables every switch of the fabric and all of its interfaces in
// the controller.
func (h *Context) EnableAll(ctx context.Context) error {
	desc, err := h.descriptor()
	if err != nil {
		return err
	}
	for _, s := range desc.Switches() {
		id := s.DPID.String()
		if err := h.API.Enable(ctx, api.KindSwitch, id); err != nil {
			return serrors.Wrap("enabling switch", err, "switch", s.Name)
		}
		if err := h.API.EnableInterfaces(ctx, id); err != nil {
			return serrors.Wrap("enabling interfaces", err, "switch", s.Name)
		}
	}
	return nil
}

// SwitchLinks returns the number of switch-to-switch links of the fabric,
// which is what the controller can discover.
func (h *Context) SwitchLinks() (int, error) {
	desc, err := h.descriptor()
	if err != nil {
		return 0, err
	}
	return desc.SwitchLinks(), nil
}

// DiscoveredLink returns the controller's link between switches a and b.
func (h *Context) DiscoveredLink(ctx context.Context, a, b string) (api.Link, error) {
	desc, err := h.descriptor()
	if err != nil {
		return api.Link{}, err
	}
	want := make(map[[2]string]bool)
	for _, l := range desc.LinksBetween(a, b) {
		ea, err := h.InterfaceID(l.A.Node, l.A.Port)
		if err != nil {
			return api.Link{}, err
		}
		eb, err := h.InterfaceID(l.B.Node, l.B.Port)
		if err != nil {
			return api.Link{}, err
		}
		want[[2]string{ea, eb}] = true
		want[[2]string{eb, ea}] = true
	}
	links, err := h.API.Links(ctx)
	if err != nil {
		return api.Link{}, err
	}
	for _, l := range links {
		if want[[2]string{l.EndpointA.ID, l.EndpointB.ID}] {
			return l, nil
		}
	}
	return api.Link{}, serrors.New("link not discovered", "a", a, "b", b,
		"discovered", len(links))
}

// vlanPlan holds one /24 per VLAN for tagged host addresses.
var vlanPlan = netip.MustParsePrefix("172.16.0.0/12")

// VLANAddr returns the address of the host at index (starting at 1) on VLAN
// vid. VLAN vid owns 172.(16+vid>>8).(vid&0xff).0/24 and hosts are numbered
// within it, independently of their untagged addresses.
func VLANAddr(index int, vid uint16) (netip.Prefix, error) {
	if vid == 0 || vid > 4094 {
		return netip.Prefix{}, serrors.New("invalid VLAN ID", "vid", vid)
	}
	base := vlanPlan.Addr().As4()
	subnet := netip.PrefixFrom(netip.AddrFrom4([4]byte{
		base[0], base[1] + byte(vid>>8), byte(vid), 0,
	}), 24)
	if index < 1 || index > 255 {
		return netip.Prefix{}, serrors.New("host index outside VLAN subnet",
			"index", index, "subnet", subnet)
	}
	addr := subnet.Addr().As4()
	addr[3] = byte(index)
	host := netip.AddrFrom4(addr)
	if host == netipx.PrefixLastIP(subnet) {
		return netip.Prefix{}, serrors.New("host index is the broadcast address",
			"index", index, "subnet", subnet)
	}
	return netip.PrefixFrom(host, subnet.Bits()), nil
}

// TaggedPing pings dst from src over VLAN vid. Both hosts get a
// sub-interface for vid addressed by VLANAddr.
func (h *Context) TaggedPing(ctx context.Context, src, dst string, vid uint16,
	count int) (fabric.PingResult, error) {

	desc, err := h.descriptor()
	if err != nil {
		return fabric.PingResult{}, err
	}
	hosts, err := h.Fabric.Get(src, dst)
	if err != nil {
		return fabric.PingResult{}, err
	}
	addrs := make([]netip.Prefix, 0, len(hosts))
	for _, host := range hosts {
		index, ok := desc.HostIndex(host.Name())
		if !ok {
			return fabric.PingResult{}, serrors.New("unknown host", "host", host.Name(),
				"topology", desc.Name())
		}
		addr, err := VLANAddr(index, vid)
		if err != nil {
			return fabric.PingResult{}, serrors.Wrap("addressing host", err,
				"host", host.Name())
		}
		iface, err := host.AddVLAN(vid)
		if err != nil {
			return fabric.PingResult{}, err
		}
		if err := host.SetAddr(iface, addr); err != nil {
			return fabric.PingResult{}, err
		}
		addrs = append(addrs, addr)
	}
	return hosts[0].Ping(ctx, addrs[1].Addr(), count)
}

// Ping pings dst from src over the untagged interfaces.
func (h *Context) Ping(ctx context.Context, src, dst string,
	count int) (fabric.PingResult, error) {

	if h.Fabric == nil {
		return fabric.PingResult{}, serrors.New("no fabric running")
	}
	hosts, err := h.Fabric.Get(src, dst)
	if err != nil {
		return fabric.PingResult{}, err
	}
	return hosts[0].Ping(ctx, hosts[1].Addr().Addr(), count)
}

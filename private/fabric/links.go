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
	"errors"
	"fmt"
	"net"
	"net/netip"
	"os"

	"github.com/vishvananda/netlink"
	"github.com/vishvananda/netns"

	"github.com/openflow-e2e/harness/pkg/private/serrors"
)

// OwnerAlias tags every kernel link the harness creates so that a purge can
// find leftovers of a crashed run.
const OwnerAlias = "e2e-harness"

// LinkDriver manipulates kernel network interfaces. An empty namespace name
// refers to the root namespace.
type LinkDriver interface {
	// AddVeth creates a veth pair in the root namespace, tagged with
	// OwnerAlias.
	AddVeth(name, peer string) error
	// MoveToNamespace moves a root namespace link into the named namespace.
	MoveToNamespace(name, ns string) error
	// SetState sets the administrative state of a link.
	SetState(ns, name string, up bool) error
	// SetHardwareAddr sets the MAC address of a link.
	SetHardwareAddr(ns, name string, mac net.HardwareAddr) error
	// SetAddr replaces the address of a link.
	SetAddr(ns, name string, addr netip.Prefix) error
	// AddVLAN creates the 802.1Q sub-interface parent.vid, brings it up and
	// returns its name.
	AddVLAN(ns, parent string, vid uint16) (string, error)
	// Delete removes a root namespace link. A missing link is not an error.
	Delete(name string) error
	// Owned lists root namespace links tagged with OwnerAlias.
	Owned() ([]string, error)
}

var _ LinkDriver = NetlinkDriver{}

// NetlinkDriver implements LinkDriver on top of rtnetlink.
type NetlinkDriver struct{}

func (NetlinkDriver) handle(ns string) (*netlink.Handle, func(), error) {
	if ns == "" {
		h, err := netlink.NewHandle()
		if err != nil {
			return nil, nil, serrors.Wrap("opening netlink handle", err)
		}
		return h, h.Close, nil
	}
	nsh, err := netns.GetFromName(ns)
	if err != nil {
		return nil, nil, serrors.Wrap("opening namespace", err, "ns", ns)
	}
	h, err := netlink.NewHandleAt(nsh)
	if err != nil {
		nsh.Close()
		return nil, nil, serrors.Wrap("opening netlink handle", err, "ns", ns)
	}
	return h, func() {
		h.Close()
		nsh.Close()
	}, nil
}

func (d NetlinkDriver) link(ns, name string) (*netlink.Handle, netlink.Link, func(), error) {
	h, done, err := d.handle(ns)
	if err != nil {
		return nil, nil, nil, err
	}
	l, err := h.LinkByName(name)
	if err != nil {
		done()
		return nil, nil, nil, serrors.Wrap("looking up link", err, "ns", ns, "link", name)
	}
	return h, l, done, nil
}

func (d NetlinkDriver) AddVeth(name, peer string) error {
	h, done, err := d.handle("")
	if err != nil {
		return err
	}
	defer done()
	veth := &netlink.Veth{LinkAttrs: netlink.LinkAttrs{Name: name}, PeerName: peer}
	if err := h.LinkAdd(veth); err != nil {
		return serrors.Wrap("adding veth", err, "name", name, "peer", peer)
	}
	for _, n := range []string{name, peer} {
		l, err := h.LinkByName(n)
		if err != nil {
			return serrors.Wrap("looking up link", err, "link", n)
		}
		if err := h.LinkSetAlias(l, OwnerAlias); err != nil {
			return serrors.Wrap("tagging link", err, "link", n)
		}
	}
	return nil
}

func (d NetlinkDriver) MoveToNamespace(name, ns string) error {
	h, l, done, err := d.link("", name)
	if err != nil {
		return err
	}
	defer done()
	nsh, err := netns.GetFromName(ns)
	if err != nil {
		return serrors.Wrap("opening namespace", err, "ns", ns)
	}
	defer nsh.Close()
	if err := h.LinkSetNsFd(l, int(nsh)); err != nil {
		return serrors.Wrap("moving link", err, "link", name, "ns", ns)
	}
	return nil
}

func (d NetlinkDriver) SetState(ns, name string, up bool) error {
	h, l, done, err := d.link(ns, name)
	if err != nil {
		return err
	}
	defer done()
	if up {
		err = h.LinkSetUp(l)
	} else {
		err = h.LinkSetDown(l)
	}
	if err != nil {
		return serrors.Wrap("setting link state", err, "ns", ns, "link", name, "up", up)
	}
	return nil
}

func (d NetlinkDriver) SetHardwareAddr(ns, name string, mac net.HardwareAddr) error {
	h, l, done, err := d.link(ns, name)
	if err != nil {
		return err
	}
	defer done()
	if err := h.LinkSetHardwareAddr(l, mac); err != nil {
		return serrors.Wrap("setting MAC", err, "ns", ns, "link", name, "mac", mac)
	}
	return nil
}

func (d NetlinkDriver) SetAddr(ns, name string, addr netip.Prefix) error {
	h, l, done, err := d.link(ns, name)
	if err != nil {
		return err
	}
	defer done()
	if err := h.AddrReplace(l, &netlink.Addr{IPNet: ipNet(addr)}); err != nil {
		return serrors.Wrap("setting address", err, "ns", ns, "link", name, "addr", addr)
	}
	return nil
}

func (d NetlinkDriver) AddVLAN(ns, parent string, vid uint16) (string, error) {
	h, l, done, err := d.link(ns, parent)
	if err != nil {
		return "", err
	}
	defer done()
	name := fmt.Sprintf("%s.%d", parent, vid)
	vlan := &netlink.Vlan{
		LinkAttrs: netlink.LinkAttrs{Name: name, ParentIndex: l.Attrs().Index},
		VlanId:    int(vid),
	}
	// An existing sub-interface is reused.
	if err := h.LinkAdd(vlan); err != nil && !errors.Is(err, os.ErrExist) {
		return "", serrors.Wrap("adding VLAN interface", err, "ns", ns, "link", name)
	}
	created, err := h.LinkByName(name)
	if err != nil {
		return "", serrors.Wrap("looking up VLAN interface", err, "ns", ns, "link", name)
	}
	if err := h.LinkSetUp(created); err != nil {
		return "", serrors.Wrap("setting VLAN interface up", err, "ns", ns, "link", name)
	}
	return name, nil
}

func (d NetlinkDriver) Delete(name string) error {
	h, done, err := d.handle("")
	if err != nil {
		return err
	}
	defer done()
	l, err := h.LinkByName(name)
	if err != nil {
		var notFound netlink.LinkNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return serrors.Wrap("looking up link", err, "link", name)
	}
	if err := h.LinkDel(l); err != nil {
		return serrors.Wrap("deleting link", err, "link", name)
	}
	return nil
}

func (d NetlinkDriver) Owned() ([]string, error) {
	h, done, err := d.handle("")
	if err != nil {
		return nil, err
	}
	defer done()
	links, err := h.LinkList()
	if err != nil {
		return nil, serrors.Wrap("listing links", err)
	}
	var owned []string
	for _, l := range links {
		if l.Attrs().Alias == OwnerAlias {
			owned = append(owned, l.Attrs().Name)
		}
	}
	return owned, nil
}

func ipNet(p netip.Prefix) *net.IPNet {
	return &net.IPNet{
		IP:   net.IP(p.Addr().AsSlice()),
		Mask: net.CIDRMask(p.Bits(), p.Addr().BitLen()),
	}
}

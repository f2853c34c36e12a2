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

//go:build e2e

// These tests drive a real controller against an emulated fabric. They need
// root, Open vSwitch and the controller daemon on the host. Run them with
// go test -tags=e2e ./acceptance/topology/

package topology_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openflow-e2e/harness/private/api"
	"github.com/openflow-e2e/harness/private/fabric"
	"github.com/openflow-e2e/harness/private/harness"
	"github.com/openflow-e2e/harness/private/topology"
)

func TestMain(m *testing.M) {
	os.Exit(harness.RunTests(m))
}

func TestDiscoveryRing3(t *testing.T) {
	h := harness.Class(t, "ring3")
	h.Clean(t)
	ctx := t.Context()

	require.NoError(t, h.EnableAll(ctx))
	require.NoError(t, h.Gate.Wait(ctx, h.Gate.LinksDiscovered(3)))

	links, err := h.API.Links(ctx)
	require.NoError(t, err)
	assert.Len(t, links, 3)
}

func TestEveryCatalogTopologyConnects(t *testing.T) {
	for _, name := range topology.DefaultCatalog().Names() {
		t.Run(name, func(t *testing.T) {
			h := harness.Class(t, name)
			statuses, err := h.Fabric.SwitchStatus(t.Context())
			require.NoError(t, err)
			assert.Empty(t, fabric.Disconnected(statuses))
			assert.Len(t, statuses, len(h.Fabric.Descriptor().Switches()))
		})
	}
}

func TestCleanStartHasNoEnabledSwitches(t *testing.T) {
	h := harness.Class(t, "ring3")
	for range 2 {
		h.Clean(t)
		topo, err := h.API.Topology(t.Context())
		require.NoError(t, err)
		assert.Len(t, topo.Switches, 3)
		assert.Zero(t, topo.EnabledSwitches())
	}
}

func TestShortConnectDeadlineFails(t *testing.T) {
	h := harness.Class(t, "ring3")
	ctx := t.Context()
	require.NoError(t, h.Fabric.ReconnectSwitches(ctx))
	err := h.Fabric.WaitAllSwitchesConnected(ctx, time.Nanosecond)
	require.ErrorIs(t, err, fabric.ErrNotConnected)
	// The channels come back on their own.
	require.NoError(t, h.WaitSwitches(ctx))
}

// topologyState is the part of the controller's view set through the
// topology API.
type topologyState struct {
	SwitchEnabled map[string]bool
	IfaceEnabled  map[string]bool
	SwitchMeta    map[string]any
	IfaceMeta     map[string]any
	LinkMeta      map[string]any
}

func observe(ctx context.Context, t *testing.T, h *harness.Context,
	sw, iface, link string) topologyState {

	t.Helper()
	switches, err := h.API.Switches(ctx)
	require.NoError(t, err)
	ifaces, err := h.API.Interfaces(ctx)
	require.NoError(t, err)
	st := topologyState{
		SwitchEnabled: map[string]bool{},
		IfaceEnabled:  map[string]bool{},
	}
	for id, s := range switches {
		st.SwitchEnabled[id] = s.Enabled
	}
	for id, i := range ifaces {
		st.IfaceEnabled[id] = i.Enabled
	}
	st.SwitchMeta, err = h.API.Metadata(ctx, api.KindSwitch, sw)
	require.NoError(t, err)
	st.IfaceMeta, err = h.API.Metadata(ctx, api.KindInterface, iface)
	require.NoError(t, err)
	st.LinkMeta, err = h.API.Metadata(ctx, api.KindLink, link)
	require.NoError(t, err)
	return st
}

func TestTopologyStatePersistsAcrossRestarts(t *testing.T) {
	h := harness.Class(t, "ring3")
	h.Clean(t)
	ctx := t.Context()

	require.NoError(t, h.EnableAll(ctx))
	require.NoError(t, h.Gate.Wait(ctx, h.Gate.LinksDiscovered(3)))
	s1, err := h.DPID("s1")
	require.NoError(t, err)
	s3h, err := h.InterfaceID("s3", 1)
	require.NoError(t, err)
	link, err := h.DiscoveredLink(ctx, "s1", "s2")
	require.NoError(t, err)

	require.NoError(t, h.API.Disable(ctx, api.KindInterface, s3h))
	require.NoError(t, h.API.AddMetadata(ctx, api.KindSwitch, s1,
		map[string]any{"site": "lab", "rack": "a1"}))
	require.NoError(t, h.API.AddMetadata(ctx, api.KindInterface, s3h,
		map[string]any{"customer": "acme"}))
	require.NoError(t, h.API.AddMetadata(ctx, api.KindLink, link.ID,
		map[string]any{"latency_ms": 5.0}))
	want := observe(ctx, t, h, s1, s3h, link.ID)
	assert.False(t, want.IfaceEnabled[s3h])

	for range 3 {
		h.Persistent(t, false)
		require.NoError(t, h.WaitSwitches(ctx))
		require.NoError(t, h.Gate.Wait(ctx, h.Gate.LinksDiscovered(3)))
		assert.Equal(t, want, observe(ctx, t, h, s1, s3h, link.ID))
	}

	h.Clean(t)
	switches, err := h.API.Switches(ctx)
	require.NoError(t, err)
	assert.False(t, switches[s1].Enabled)
	assert.Empty(t, switches[s1].Metadata)
}

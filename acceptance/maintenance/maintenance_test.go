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

package maintenance_test

import (
	"context"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openflow-e2e/harness/private/api"
	"github.com/openflow-e2e/harness/private/flowtable"
	"github.com/openflow-e2e/harness/private/harness"
	"github.com/openflow-e2e/harness/private/readiness"
)

func TestMain(m *testing.M) {
	os.Exit(harness.RunTests(m))
}

const (
	windowDelay  = 60 * time.Second
	windowLength = 60 * time.Second
	vid          = 105
)

// within returns p with a timeout covering d plus the usual budget.
func within(p readiness.Predicate, d time.Duration) readiness.Predicate {
	p.Timeout += d
	return p
}

func TestWindowMovesTraffic(t *testing.T) {
	h := harness.Class(t, "ring3")
	h.Clean(t)
	ctx := t.Context()
	require.NoError(t, h.EnableAll(ctx))
	require.NoError(t, h.Gate.Wait(ctx, h.Gate.LinksDiscovered(3)))

	uniA, err := h.InterfaceID("s1", 1)
	require.NoError(t, err)
	uniZ, err := h.InterfaceID("s3", 1)
	require.NoError(t, err)
	var primary []api.Link
	for _, pair := range [][2]string{{"s1", "s2"}, {"s2", "s3"}} {
		l, err := h.DiscoveredLink(ctx, pair[0], pair[1])
		require.NoError(t, err)
		primary = append(primary, l)
	}
	enabled := true
	id, err := h.API.CreateEVC(ctx, api.EVC{
		Name:        "mw-" + uuid.NewString()[:8],
		UNIA:        api.UNI{InterfaceID: uniA, Tag: &api.Tag{TagType: 1, Value: vid}},
		UNIZ:        api.UNI{InterfaceID: uniZ, Tag: &api.Tag{TagType: 1, Value: vid}},
		Enabled:     &enabled,
		Dynamic:     true,
		PrimaryPath: primary,
	})
	require.NoError(t, err)
	require.NoError(t, h.Gate.Wait(ctx, h.Gate.EVCActive(id)))
	require.NoError(t, h.Gate.Wait(ctx, h.Gate.FlowCount("s2", h.BasicFlows()+2)))

	s2, err := h.DPID("s2")
	require.NoError(t, err)
	window := api.NewWindow(time.Now().Add(windowDelay), windowLength, s2)
	window.Description = "e2e " + t.Name()
	mw, err := h.API.CreateWindow(ctx, window)
	require.NoError(t, err)
	t.Cleanup(func() {
		// Ending a finished window is rejected; only log.
		if err := h.API.EndWindow(context.WithoutCancel(ctx), mw); err != nil {
			t.Logf("ending window %s: %s", mw, err)
		}
	})

	// During the window s2 carries no EVC flows and traffic bypasses it.
	require.NoError(t, h.Gate.Wait(ctx, within(h.Gate.FlowCount("s2", h.BasicFlows()), windowDelay)))
	for _, sw := range []string{"s1", "s3"} {
		require.NoError(t, h.Gate.Wait(ctx, h.Gate.FlowCount(sw, h.BasicFlows()+2)))
		table, err := h.Fabric.FlowTable(ctx, sw)
		require.NoError(t, err)
		assert.True(t, table.Contains(flowtable.ReferencesVLAN(vid)), "flows of %s:\n%s", sw, table)
	}
	res, err := h.TaggedPing(ctx, "h1", "h3", vid, 0)
	require.NoError(t, err)
	assert.True(t, res.Lossless(), "ping: %+v", res)

	// Once the window is over the primary path is restored.
	require.NoError(t, h.Gate.Wait(ctx,
		within(h.Gate.FlowCount("s2", h.BasicFlows()+2), windowLength)))
	res, err = h.TaggedPing(ctx, "h1", "h3", vid, 0)
	require.NoError(t, err)
	assert.True(t, res.Lossless(), "ping: %+v", res)
}

func TestOverlappingWindowRejected(t *testing.T) {
	h := harness.Class(t, "ring3")
	h.Clean(t)
	ctx := t.Context()
	s1, err := h.DPID("s1")
	require.NoError(t, err)

	start := time.Now().Add(time.Hour)
	first, err := h.API.CreateWindow(ctx, api.NewWindow(start, time.Hour, s1))
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.API.DeleteWindow(context.WithoutCancel(ctx), first) })

	_, err = h.API.CreateWindow(ctx, api.NewWindow(start.Add(30*time.Minute), time.Hour, s1))
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, api.StatusCode(err))

	windows, err := h.API.Windows(ctx)
	require.NoError(t, err)
	require.Len(t, windows, 1)
	assert.Equal(t, first, windows[0].ID)
	assert.Equal(t, []string{s1}, windows[0].Switches)
}

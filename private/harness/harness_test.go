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

package harness_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openflow-e2e/harness/pkg/log/testlog"
	"github.com/openflow-e2e/harness/private/env"
	"github.com/openflow-e2e/harness/private/fabric/mock_fabric"
	"github.com/openflow-e2e/harness/private/harness"
	"github.com/openflow-e2e/harness/private/topology"
)

// captureTB records errors instead of failing the test.
type captureTB struct {
	testing.TB
	name   string
	failed bool
	errs   []string
}

func (c *captureTB) Helper() {}

func (c *captureTB) Name() string {
	if c.name != "" {
		return c.name
	}
	return c.TB.Name()
}

func (c *captureTB) Errorf(format string, args ...any) {
	c.errs = append(c.errs, fmt.Sprintf(format, args...))
	c.failed = true
}

func (c *captureTB) Failed() bool { return c.failed }

func TestExpectFailure(t *testing.T) {
	t.Run("expected failure passes", func(t *testing.T) {
		reached := false
		harness.ExpectFailure(t, "flow count drifts", func(t harness.TB) {
			require.Equal(t, 3, 4)
			reached = true
		})
		assert.False(t, reached)
		assert.False(t, t.Failed())
	})
	t.Run("non-fatal failure", func(t *testing.T) {
		harness.ExpectFailure(t, "soft", func(t harness.TB) {
			assert.True(t, false)
			t.Log("continues after assert")
		})
		assert.False(t, t.Failed())
	})
	t.Run("unexpected pass fails", func(t *testing.T) {
		c := &captureTB{TB: t}
		harness.ExpectFailure(c, "known bug", func(t harness.TB) {
			assert.True(t, true)
		})
		require.Len(t, c.errs, 1)
		assert.Contains(t, c.errs[0], "XPASS: known bug")
	})
	t.Run("panic propagates", func(t *testing.T) {
		assert.PanicsWithValue(t, "boom", func() {
			harness.ExpectFailure(t, "panics", func(harness.TB) { panic("boom") })
		})
	})
}

func TestReport(t *testing.T) {
	r := harness.NewReport()
	t.Run("passes", func(t *testing.T) {
		r.Track(t)
		r.Track(t)
	})
	t.Run("skips", func(t *testing.T) {
		r.Track(t)
		t.Skip("not applicable")
	})
	t.Run("fails", func(t *testing.T) {
		r.Track(&captureTB{TB: t, failed: true})
	})

	records := r.Records()
	require.Len(t, records, 3)
	outcomes := map[string]harness.Outcome{}
	for _, rec := range records {
		outcomes[filepath.Base(rec.Name)] = rec.Outcome
		assert.False(t, rec.End.Before(rec.Start))
	}
	assert.Equal(t, map[string]harness.Outcome{
		"passes": harness.Pass,
		"skips":  harness.Skip,
		"fails":  harness.Fail,
	}, outcomes)

	dir := filepath.Join(t.TempDir(), "report")
	require.NoError(t, r.Write(dir))

	md, err := os.ReadFile(filepath.Join(dir, harness.ReportFile))
	require.NoError(t, err)
	assert.Contains(t, string(md), r.RunID.String())
	assert.Contains(t, string(md), "OUTCOME")
	assert.Contains(t, string(md), "TestReport/skips")

	prom, err := os.ReadFile(filepath.Join(dir, harness.MetricsFile))
	require.NoError(t, err)
	assert.Contains(t, string(prom), `harness_tests_total{outcome="pass"} 1`)
	assert.Contains(t, string(prom), `harness_tests_total{outcome="fail"} 1`)
	assert.Contains(t, string(prom),
		fmt.Sprintf(`harness_run_info{run_id="%s"} 1`, r.RunID))
	assert.Contains(t, string(prom), `harness_test_duration_seconds{outcome="skip",test="TestReport/skips"}`)
}

func newConfig(t *testing.T, apiURL string) *env.Config {
	t.Helper()
	cfg := &env.Config{}
	cfg.Controller.APIURL = apiURL
	cfg.Controller.PIDFile = filepath.Join(t.TempDir(), "kytosd.pid")
	cfg.Controller.StopGrace.Duration = 20 * time.Millisecond
	cfg.Timeouts.ControllerHealthy.Duration = 200 * time.Millisecond
	cfg.Timeouts.HealthInterval.Duration = 5 * time.Millisecond
	cfg.Timeouts.Quiescence.Duration = time.Millisecond
	cfg.InitDefaults()
	require.NoError(t, cfg.Validate())
	return cfg
}

func healthyController(t *testing.T) string {
	r := chi.NewRouter()
	r.Get("/api/kytos/core/status/", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"response": "running"}`)
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv.URL + "/api"
}

func TestNewContext(t *testing.T) {
	cfg := newConfig(t, "http://127.0.0.1:8181/api")
	h, err := harness.NewContext(cfg, testlog.NewLogger(t))
	require.NoError(t, err)
	assert.Nil(t, h.Store)
	assert.Nil(t, h.Controller.Store)
	assert.Nil(t, h.Fabric)
	assert.Nil(t, h.Gate.Metrics)
	assert.Equal(t, 3, h.BasicFlows())
	assert.Equal(t, "http://127.0.0.1:8181/api", h.API.BaseURL())

	cfg.Store.Seeds = []string{"mongo1t:27027"}
	h, err = harness.NewContext(cfg, testlog.NewLogger(t))
	require.NoError(t, err)
	require.NotNil(t, h.Store)
	assert.Same(t, h.Store, h.Controller.Store)
	assert.Equal(t, "napps", h.Store.Options.Database)

	cfg.Controller.APIURL = "not a url"
	_, err = harness.NewContext(cfg, testlog.NewLogger(t))
	assert.Error(t, err)
}

func TestFabricConfig(t *testing.T) {
	cfg := newConfig(t, "http://127.0.0.1:8181/api")
	cfg.Controller.Address = "10.0.0.254"
	fc := harness.FabricConfig(cfg)
	assert.Equal(t, "10.0.0.254", fc.ControllerIP)
	assert.Equal(t, uint16(6653), fc.ControllerPort)
	assert.Equal(t, "ovs-vsctl", fc.Vsctl)
	assert.Equal(t, time.Second, fc.PollInterval)
}

func TestDescriptor(t *testing.T) {
	cfg := newConfig(t, "http://127.0.0.1:8181/api")
	h, err := harness.NewContext(cfg, testlog.NewLogger(t))
	require.NoError(t, err)

	desc, err := h.Descriptor("")
	require.NoError(t, err)
	assert.Equal(t, "ring3", desc.Name())

	desc, err = h.Descriptor("amlight")
	require.NoError(t, err)
	assert.Len(t, desc.Switches(), 12)

	_, err = h.Descriptor("ring5")
	assert.Error(t, err)

	file := filepath.Join(t.TempDir(), "pair.yml")
	require.NoError(t, os.WriteFile(file, []byte(`
name: pair
switches:
  - name: s1
  - name: s2
hosts:
  - name: h1
links:
  - [s1, s2]
  - [s1, h1]
`), 0o644))
	cfg.Fabric.TopologyFile = file
	desc, err = h.Descriptor("")
	require.NoError(t, err)
	assert.Equal(t, "pair", desc.Name())
}

func TestFixturesWithoutFabric(t *testing.T) {
	cfg := newConfig(t, healthyController(t))
	h, err := harness.NewContext(cfg, testlog.NewLogger(t))
	require.NoError(t, err)

	ctrl := gomock.NewController(t)
	runner := mock_fabric.NewMockRunner(ctrl)
	h.Controller.Runner = runner
	runner.EXPECT().Run(gomock.Any(), "pkill", "-f", "kytosd").AnyTimes()
	gomock.InOrder(
		runner.EXPECT().Run(gomock.Any(), "kytosd", "-E"),
		runner.EXPECT().Run(gomock.Any(), "kytosd"),
	)

	h.Clean(t)
	assert.Equal(t, "running", h.Controller.State().String())
	h.Persistent(t, false)
	assert.Equal(t, "running", h.Controller.State().String())

	require.NoError(t, h.Teardown(context.Background()))
	assert.Equal(t, "unstarted", h.Controller.State().String())
}

func TestSettle(t *testing.T) {
	cfg := newConfig(t, "http://127.0.0.1:8181/api")
	cfg.Timeouts.Quiescence.Duration = time.Hour
	h, err := harness.NewContext(cfg, testlog.NewLogger(t))
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, h.Settle(ctx), context.Canceled)
}

func TestVLANAddr(t *testing.T) {
	testCases := map[string]struct {
		Index     int
		VID       uint16
		Want      netip.Prefix
		ErrSubstr string
	}{
		"vlan 100": {
			Index: 1,
			VID:   100,
			Want:  netip.MustParsePrefix("172.16.100.1/24"),
		},
		"vlan 3799": {
			Index: 12,
			VID:   3799,
			Want:  netip.MustParsePrefix("172.30.215.12/24"),
		},
		"highest vlan": {
			Index: 254,
			VID:   4094,
			Want:  netip.MustParsePrefix("172.31.254.254/24"),
		},
		"vlan 0":          {Index: 1, VID: 0, ErrSubstr: "invalid VLAN ID"},
		"vlan 4095":       {Index: 1, VID: 4095, ErrSubstr: "invalid VLAN ID"},
		"index 0":         {Index: 0, VID: 100, ErrSubstr: "outside VLAN subnet"},
		"broadcast":       {Index: 255, VID: 100, ErrSubstr: "broadcast"},
		"beyond a subnet": {Index: 300, VID: 100, ErrSubstr: "outside VLAN subnet"},
	}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			got, err := harness.VLANAddr(tc.Index, tc.VID)
			if tc.ErrSubstr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.ErrSubstr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.Want, got)
		})
	}
}

func TestVLANAddrPerHost(t *testing.T) {
	// Untagged addresses share the last octet or are not IPv4 at all.
	desc, err := topology.NewBuilder("mixed").
		Switches("s1").
		Host("h1", topology.WithAddr("10.0.1.5/24")).
		Host("h2", topology.WithAddr("10.0.2.5/24")).
		Host("h3", topology.WithAddr("fd00::5/64")).
		Link("s1", "h1").Link("s1", "h2").Link("s1", "h3").
		Build()
	require.NoError(t, err)

	seen := map[netip.Prefix]string{}
	for _, host := range desc.Hosts() {
		index, ok := desc.HostIndex(host.Name)
		require.True(t, ok)
		addr, err := harness.VLANAddr(index, 100)
		require.NoError(t, err, host.Name)
		assert.True(t, addr.Addr().Is4(), host.Name)
		assert.NotContains(t, seen, addr, "%s collides with %s", host.Name, seen[addr])
		seen[addr] = host.Name
	}
	assert.Len(t, seen, 3)
}

func TestControllerView(t *testing.T) {
	var (
		mu      sync.Mutex
		enabled []string
	)
	r := chi.NewRouter()
	r.Post("/api/kytos/topology/v3/*", func(w http.ResponseWriter, req *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		enabled = append(enabled, strings.TrimPrefix(req.URL.Path, "/api/kytos/topology/v3/"))
		_, _ = io.WriteString(w, `"Operation successful"`)
	})
	r.Get("/api/kytos/topology/v3/links", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"links": {
			"l12": {"id": "l12", "active": true,
				"endpoint_a": {"id": "00:00:00:00:00:00:00:02:2"},
				"endpoint_b": {"id": "00:00:00:00:00:00:00:01:2"}},
			"l23": {"id": "l23", "active": true,
				"endpoint_a": {"id": "00:00:00:00:00:00:00:02:3"},
				"endpoint_b": {"id": "00:00:00:00:00:00:00:03:2"}}}}`)
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	cfg := newConfig(t, srv.URL+"/api")
	h, err := harness.NewContext(cfg, testlog.NewLogger(t))
	require.NoError(t, err)
	ctx := context.Background()

	_, err = h.DPID("s1")
	assert.Error(t, err, "no fabric")

	h.Fabric = h.Fabrics.BuildFrom(topology.Ring3())
	id, err := h.DPID("s2")
	require.NoError(t, err)
	assert.Equal(t, "00:00:00:00:00:00:00:02", id)
	iface, err := h.InterfaceID("s3", 1)
	require.NoError(t, err)
	assert.Equal(t, "00:00:00:00:00:00:00:03:1", iface)
	_, err = h.DPID("s9")
	assert.Error(t, err)

	n, err := h.SwitchLinks()
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	require.NoError(t, h.EnableAll(ctx))
	assert.Equal(t, []string{
		"switches/00:00:00:00:00:00:00:01/enable",
		"interfaces/switch/00:00:00:00:00:00:00:01/enable",
		"switches/00:00:00:00:00:00:00:02/enable",
		"interfaces/switch/00:00:00:00:00:00:00:02/enable",
		"switches/00:00:00:00:00:00:00:03/enable",
		"interfaces/switch/00:00:00:00:00:00:00:03/enable",
	}, enabled)

	l, err := h.DiscoveredLink(ctx, "s1", "s2")
	require.NoError(t, err)
	assert.Equal(t, "l12", l.ID)
	l, err = h.DiscoveredLink(ctx, "s3", "s2")
	require.NoError(t, err)
	assert.Equal(t, "l23", l.ID)
	_, err = h.DiscoveredLink(ctx, "s1", "s3")
	assert.ErrorContains(t, err, "link not discovered")
}

func TestPause(t *testing.T) {
	start := time.Now()
	harness.Pause(t, 20*time.Millisecond)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

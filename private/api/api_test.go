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

package api_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openflow-e2e/harness/pkg/log/testlog"
	"github.com/openflow-e2e/harness/private/api"
)

// recorded is the last request seen by a handler.
type recorded struct {
	Method string
	Path   string
	Query  map[string][]string
	Body   map[string]any
	Auth   string
}

func record(t *testing.T, rec *recorded, status int, reply string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		*rec = recorded{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.Query(),
			Auth:   r.Header.Get("Authorization"),
		}
		if len(raw) > 0 {
			require.NoError(t, json.Unmarshal(raw, &rec.Body))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, reply)
	}
}

func newClient(t *testing.T, r chi.Router) *api.Client {
	t.Helper()
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	c, err := api.New(srv.URL+"/api/", api.WithTimeout(time.Second),
		api.WithLogger(testlog.NewLogger(t)))
	require.NoError(t, err)
	return c
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewBuilder().Subject("admin").Expiration(exp).Build()
	require.NoError(t, err)
	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256(), []byte("0123456789abcdef0123456789abcdef")))
	require.NoError(t, err)
	return string(signed)
}

func TestNew(t *testing.T) {
	_, err := api.New("127.0.0.1:8181/api")
	assert.Error(t, err)
	c, err := api.New("http://127.0.0.1:8181/api/")
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:8181/api", c.BaseURL())
}

func TestHealth(t *testing.T) {
	var rec recorded
	r := chi.NewRouter()
	r.Get("/api/kytos/core/status/", record(t, &rec, 200, `{"response": "running"}`))
	c := newClient(t, r)
	status, err := c.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "running", status)
}

func TestStatusError(t *testing.T) {
	var rec recorded
	r := chi.NewRouter()
	r.Get("/api/kytos/mef_eline/v2/evc/{id}", record(t, &rec, 404,
		`{"description": "circuit_id 42 not found"}`))
	c := newClient(t, r)
	_, err := c.EVC(context.Background(), "42")
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, api.StatusCode(err))
	assert.Contains(t, err.Error(), "circuit_id 42 not found")
	assert.Equal(t, 0, api.StatusCode(assert.AnError))

	code, body, err := c.Do(context.Background(), http.MethodGet,
		"/kytos/mef_eline/v2/evc/42", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Contains(t, string(body), "not found")
}

func TestTimeout(t *testing.T) {
	done := make(chan struct{})
	defer close(done)
	r := chi.NewRouter()
	r.Get("/api/kytos/core/status/", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-done:
		case <-r.Context().Done():
		}
	})
	srv := httptest.NewServer(r)
	defer srv.Close()
	c, err := api.New(srv.URL+"/api", api.WithTimeout(20*time.Millisecond))
	require.NoError(t, err)
	_, err = c.Health(context.Background())
	assert.Error(t, err)
}

func TestBearerToken(t *testing.T) {
	testCases := map[string]struct {
		Expiry time.Duration
		Logins int32
	}{
		"cached": {
			Expiry: time.Hour,
			Logins: 1,
		},
		"renewed before expiry": {
			Expiry: 10 * time.Second,
			Logins: 2,
		},
	}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			var logins atomic.Int32
			token := signedToken(t, time.Now().Add(tc.Expiry))
			r := chi.NewRouter()
			r.Get("/api/kytos/core/auth/login/", func(w http.ResponseWriter, r *http.Request) {
				user, pass, ok := r.BasicAuth()
				if !ok || user != "admin" || pass != "secret" {
					w.WriteHeader(http.StatusUnauthorized)
					return
				}
				logins.Add(1)
				_ = json.NewEncoder(w).Encode(map[string]string{"token": token})
			})
			r.Get("/api/kytos/core/auth/users/", func(w http.ResponseWriter, r *http.Request) {
				if r.Header.Get("Authorization") != "Bearer "+token {
					w.WriteHeader(http.StatusUnauthorized)
					return
				}
				_, _ = io.WriteString(w, `{"users": [{"username": "admin", "state": "active"}]}`)
			})
			c := newClient(t, r)

			_, err := c.Users(context.Background())
			assert.Equal(t, http.StatusUnauthorized, api.StatusCode(err))

			authed := c.WithCredentials("admin", "secret")
			for range 2 {
				users, err := authed.Users(context.Background())
				require.NoError(t, err)
				assert.Equal(t, []api.User{{Username: "admin", State: "active"}}, users)
			}
			assert.Equal(t, tc.Logins, logins.Load())

			_, err = c.WithCredentials("admin", "wrong").Users(context.Background())
			assert.ErrorContains(t, err, "obtaining bearer token")
		})
	}
}

func TestTokenExpiry(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	got, err := api.TokenExpiry(signedToken(t, exp))
	require.NoError(t, err)
	assert.True(t, exp.Equal(got), "expected %v, got %v", exp, got)

	_, err = api.TokenExpiry("not-a-token")
	assert.Error(t, err)
}

func TestUsers(t *testing.T) {
	var rec recorded
	r := chi.NewRouter()
	r.Post("/api/kytos/core/auth/users/", record(t, &rec, 201, `{}`))
	r.Patch("/api/kytos/core/auth/users/{name}", record(t, &rec, 200, `{}`))
	r.Delete("/api/kytos/core/auth/users/{name}", record(t, &rec, 200, `{}`))
	c := newClient(t, r)
	ctx := context.Background()

	require.NoError(t, c.CreateUser(ctx, api.User{Username: "joe", Password: "pw",
		Email: "joe@example.com"}))
	assert.Equal(t, map[string]any{"username": "joe", "password": "pw",
		"email": "joe@example.com"}, rec.Body)

	require.NoError(t, c.UpdateUser(ctx, "joe", map[string]any{"state": "inactive"}))
	assert.Equal(t, "/api/kytos/core/auth/users/joe", rec.Path)
	assert.Equal(t, http.MethodPatch, rec.Method)

	require.NoError(t, c.DeleteUser(ctx, "joe"))
	assert.Equal(t, http.MethodDelete, rec.Method)
}

func TestTopology(t *testing.T) {
	var rec recorded
	r := chi.NewRouter()
	r.Get("/api/kytos/topology/v3/", record(t, &rec, 200, `{"topology": {
		"switches": {
			"00:00:00:00:00:00:00:01": {"id": "00:00:00:00:00:00:00:01",
				"dpid": "00:00:00:00:00:00:00:01", "enabled": true, "active": true},
			"00:00:00:00:00:00:00:02": {"id": "00:00:00:00:00:00:00:02",
				"dpid": "00:00:00:00:00:00:00:02", "enabled": false, "active": true}
		},
		"links": {
			"abc": {"id": "abc", "enabled": true, "active": true,
				"endpoint_a": {"id": "00:00:00:00:00:00:00:01:2", "enabled": true, "active": true},
				"endpoint_b": {"id": "00:00:00:00:00:00:00:02:2", "enabled": true, "active": true}}
		}}}`))
	r.Post("/api/kytos/topology/v3/{kind}/{id}/enable", record(t, &rec, 201, `"Operation successful"`))
	r.Post("/api/kytos/topology/v3/interfaces/switch/{dpid}/enable", record(t, &rec, 200,
		`"Operation successful"`))
	r.Post("/api/kytos/topology/v3/{kind}/{id}/metadata", record(t, &rec, 201, `"Operation successful"`))
	r.Get("/api/kytos/topology/v3/{kind}/{id}/metadata", record(t, &rec, 200,
		`{"metadata": {"color": "red"}}`))
	r.Delete("/api/kytos/topology/v3/{kind}/{id}/metadata/{key}", record(t, &rec, 200, `{}`))
	c := newClient(t, r)
	ctx := context.Background()

	topo, err := c.Topology(ctx)
	require.NoError(t, err)
	assert.Len(t, topo.Switches, 2)
	assert.Equal(t, 1, topo.EnabledSwitches())
	assert.Equal(t, "00:00:00:00:00:00:00:02:2", topo.Links["abc"].EndpointB.ID)

	require.NoError(t, c.Enable(ctx, api.KindInterface, "00:00:00:00:00:00:00:01:1"))
	assert.Equal(t, "/api/kytos/topology/v3/interfaces/00:00:00:00:00:00:00:01:1/enable",
		rec.Path)
	require.NoError(t, c.EnableInterfaces(ctx, "00:00:00:00:00:00:00:02"))
	assert.Equal(t, "/api/kytos/topology/v3/interfaces/switch/00:00:00:00:00:00:00:02/enable",
		rec.Path)

	require.NoError(t, c.AddMetadata(ctx, api.KindSwitch, "00:00:00:00:00:00:00:01",
		map[string]any{"color": "red"}))
	assert.Equal(t, map[string]any{"color": "red"}, rec.Body)

	md, err := c.Metadata(ctx, api.KindLink, "abc")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"color": "red"}, md)

	require.NoError(t, c.DeleteMetadata(ctx, api.KindLink, "abc", "color"))
	assert.Equal(t, "/api/kytos/topology/v3/links/abc/metadata/color", rec.Path)
}

func TestFlows(t *testing.T) {
	var rec recorded
	r := chi.NewRouter()
	r.Get("/api/kytos/flow_manager/v2/flows/{dpid}", record(t, &rec, 200, `{
		"00:00:00:00:00:00:00:01": {"flows": [
			{"priority": 10, "table_id": 0, "cookie": 42,
			 "match": {"in_port": 1, "dl_vlan": 999},
			 "actions": [{"action_type": "output", "port": 2}]}]}}`))
	r.Post("/api/kytos/flow_manager/v2/flows/{dpid}", record(t, &rec, 202, `{"response": "FlowMod Messages Sent"}`))
	r.Delete("/api/kytos/flow_manager/v2/flows", record(t, &rec, 202, `{}`))
	r.Get("/api/kytos/flow_manager/v2/stored_flows", record(t, &rec, 200, `{
		"00:00:00:00:00:00:00:01": [{"flow_id": "f1", "state": "installed",
			"switch": "00:00:00:00:00:00:00:01", "flow": {"priority": 10}}]}`))
	c := newClient(t, r)
	ctx := context.Background()

	flows, err := c.SwitchFlows(ctx, "00:00:00:00:00:00:00:01")
	require.NoError(t, err)
	require.Len(t, flows, 1)
	assert.Equal(t, 10, flows[0].Priority)
	assert.Equal(t, uint64(42), flows[0].Cookie)
	assert.Equal(t, float64(999), flows[0].Match["dl_vlan"])

	flow := api.Flow{
		Priority: 10,
		Match:    map[string]any{"in_port": 1, "dl_vlan": 999},
		Actions:  []map[string]any{{"action_type": "output", "port": 2}},
	}
	require.NoError(t, c.InstallFlows(ctx, "00:00:00:00:00:00:00:01", []api.Flow{flow}, true))
	assert.Equal(t, http.MethodPost, rec.Method)
	assert.Equal(t, true, rec.Body["force"])
	assert.Len(t, rec.Body["flows"], 1)

	require.NoError(t, c.DeleteFlows(ctx, "", []api.Flow{{Cookie: 0xaa00000000000000,
		CookieMask: 0xff00000000000000}}, false))
	assert.Equal(t, http.MethodDelete, rec.Method)
	assert.Equal(t, "/api/kytos/flow_manager/v2/flows", rec.Path)

	stored, err := c.StoredFlows(ctx, api.StoredFlowsFilter{
		DPIDs:       []string{"00:00:00:00:00:00:00:01"},
		States:      []string{api.FlowInstalled},
		CookieRange: [2]uint64{10, 20},
	})
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{
		"dpid":         {"00:00:00:00:00:00:00:01"},
		"state":        {"installed"},
		"cookie_range": {"10", "20"},
	}, rec.Query)
	assert.Equal(t, api.FlowInstalled, stored["00:00:00:00:00:00:00:01"][0].State)
}

func TestEVCRoundTrip(t *testing.T) {
	var created []byte
	r := chi.NewRouter()
	r.Post("/api/kytos/mef_eline/v2/evc/", func(w http.ResponseWriter, r *http.Request) {
		created, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"circuit_id": "4f1c"}`)
	})
	r.Get("/api/kytos/mef_eline/v2/evc/{id}", func(w http.ResponseWriter, r *http.Request) {
		var doc map[string]any
		require.NoError(t, json.Unmarshal(created, &doc))
		doc["id"] = chi.URLParam(r, "id")
		doc["active"] = true
		doc["creation_time"] = "2026-10-15T10:00:00"
		doc["current_path"] = []any{map[string]any{"id": "abc"}}
		_ = json.NewEncoder(w).Encode(doc)
	})
	c := newClient(t, r)
	ctx := context.Background()

	enabled := true
	evc := api.EVC{
		Name:    "evc-vlan-999",
		Enabled: &enabled,
		UNIA: api.UNI{InterfaceID: "00:00:00:00:00:00:00:01:1",
			Tag: &api.Tag{TagType: "vlan", Value: float64(999)}},
		UNIZ: api.UNI{InterfaceID: "00:00:00:00:00:00:00:03:1",
			Tag: &api.Tag{TagType: "vlan", Value: float64(999)}},
		Dynamic: true,
	}
	id, err := c.CreateEVC(ctx, evc)
	require.NoError(t, err)
	assert.Equal(t, "4f1c", id)

	got, err := c.EVC(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	diff := cmp.Diff(evc, got, cmpopts.IgnoreFields(api.EVC{},
		"ID", "Active", "CreationTime", "CurrentPath"))
	assert.Empty(t, diff)
}

func TestSchedules(t *testing.T) {
	var rec recorded
	r := chi.NewRouter()
	r.Post("/api/kytos/mef_eline/v2/evc/schedule/", record(t, &rec, 201,
		`{"id": "s1", "frequency": "*/2 * * * *", "action": "create"}`))
	r.Get("/api/kytos/mef_eline/v2/evc/schedule/", record(t, &rec, 200,
		`[{"schedule_id": "s1", "circuit_id": "4f1c", "name": "evc",
		   "schedule": {"id": "s1", "frequency": "*/2 * * * *"}}]`))
	c := newClient(t, r)
	ctx := context.Background()

	s, err := c.AddSchedule(ctx, "4f1c", api.Schedule{Frequency: "*/2 * * * *"})
	require.NoError(t, err)
	assert.Equal(t, "s1", s.ID)
	assert.Equal(t, "4f1c", rec.Body["circuit_id"])

	all, err := c.Schedules(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "4f1c", all[0].CircuitID)
}

func TestMaintenance(t *testing.T) {
	var rec recorded
	r := chi.NewRouter()
	r.Post("/api/kytos/maintenance/v1", record(t, &rec, 201, `{"mw_id": "mw1"}`))
	r.Patch("/api/kytos/maintenance/v1/{id}/end", record(t, &rec, 200, `{}`))
	r.Patch("/api/kytos/maintenance/v1/{id}/extend", record(t, &rec, 200, `{}`))
	c := newClient(t, r)
	ctx := context.Background()

	start := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	w := api.NewWindow(start, time.Hour, "00:00:00:00:00:00:00:01")
	assert.Equal(t, "2026-10-15T12:00:00+0000", w.Start)
	assert.Equal(t, "2026-10-15T13:00:00+0000", w.End)

	id, err := c.CreateWindow(ctx, w)
	require.NoError(t, err)
	assert.Equal(t, "mw1", id)
	assert.Equal(t, []any{"00:00:00:00:00:00:00:01"}, rec.Body["switches"])

	require.NoError(t, c.EndWindow(ctx, id))
	assert.Equal(t, "/api/kytos/maintenance/v1/mw1/end", rec.Path)
	require.NoError(t, c.ExtendWindow(ctx, id, 30))
	assert.Equal(t, float64(30), rec.Body["minutes"])
}

func TestLiveness(t *testing.T) {
	var rec recorded
	r := chi.NewRouter()
	r.Post("/api/kytos/of_lldp/v1/liveness/enable", record(t, &rec, 200, `{}`))
	r.Get("/api/kytos/of_lldp/v1/liveness/", record(t, &rec, 200, `{"interfaces": [
		{"id": "00:00:00:00:00:00:00:01:2", "status": "up"}]}`))
	r.Post("/api/kytos/of_lldp/v1/polling_time", record(t, &rec, 200, `{}`))
	c := newClient(t, r)
	ctx := context.Background()

	require.NoError(t, c.EnableLiveness(ctx, "00:00:00:00:00:00:00:01:2"))
	assert.Equal(t, []any{"00:00:00:00:00:00:00:01:2"}, rec.Body["interfaces"])

	status, err := c.Liveness(ctx, "00:00:00:00:00:00:00:01:2")
	require.NoError(t, err)
	assert.Equal(t, []string{"00:00:00:00:00:00:00:01:2"}, rec.Query["interface_id"])
	assert.Equal(t, []api.LivenessStatus{{ID: "00:00:00:00:00:00:00:01:2",
		Status: api.LivenessUp}}, status)

	require.NoError(t, c.SetPollingTime(ctx, 5))
	assert.Equal(t, float64(5), rec.Body["polling_time"])
}

func TestTrace(t *testing.T) {
	var rec recorded
	r := chi.NewRouter()
	r.Put("/api/amlight/sdntrace_cp/v1/trace", record(t, &rec, 200, `{"result": [
		{"dpid": "00:00:00:00:00:00:00:01", "port": 1, "type": "starting", "vlan": 999},
		{"dpid": "00:00:00:00:00:00:00:02", "port": 2, "type": "intermediary",
		 "out": {"port": 1, "vlan": 999}}]}`))
	r.Put("/api/amlight/sdntrace/trace", record(t, &rec, 200, `{"result": {"trace_id": 30001}}`))
	c := newClient(t, r)
	ctx := context.Background()

	req := api.TraceRequest{
		Switch: api.TraceSwitch{DPID: "00:00:00:00:00:00:00:01", InPort: 1},
		Eth:    &api.TraceEth{DLVLAN: 999},
	}
	steps, err := c.Trace(ctx, req)
	require.NoError(t, err)
	require.Len(t, steps, 2)
	assert.Equal(t, &api.TraceOut{Port: 1, VLAN: 999}, steps[1].Out)
	assert.Equal(t, map[string]any{"trace": map[string]any{
		"switch": map[string]any{"dpid": "00:00:00:00:00:00:00:01", "in_port": float64(1)},
		"eth":    map[string]any{"dl_vlan": float64(999)},
	}}, rec.Body)

	id, err := c.StartDataplaneTrace(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, 30001, id)
}

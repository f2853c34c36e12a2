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
	"os"
	"sync"
	"testing"
	"time"

	"github.com/openflow-e2e/harness/pkg/log"
	"github.com/openflow-e2e/harness/private/controller"
	"github.com/openflow-e2e/harness/private/env"
)

var suite struct {
	mu     sync.Mutex
	cfg    *env.Config
	report *Report
}

// RunTests is the TestMain body of acceptance suites. It loads the
// configuration, sets up logging, runs the tests and writes the report. It
// returns the exit code for os.Exit.
func RunTests(m *testing.M) int {
	cfg, err := env.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading harness configuration: %v\n", err)
		return 2
	}
	if err := log.Setup(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "setting up logging: %v\n", err)
		return 2
	}
	defer log.Flush()

	report := NewReport()
	suite.mu.Lock()
	suite.cfg, suite.report = cfg, report
	suite.mu.Unlock()
	defer func() {
		suite.mu.Lock()
		suite.cfg, suite.report = nil, nil
		suite.mu.Unlock()
	}()

	log.Info("Starting test run", "run_id", report.RunID)
	code := m.Run()
	if cfg.Report.Dir != "" {
		if err := report.Write(cfg.Report.Dir); err != nil {
			log.Error("Writing report failed", "err", err)
			if code == 0 {
				code = 1
			}
		} else {
			log.Info("Report written", "dir", cfg.Report.Dir)
		}
	}
	return code
}

func activeReport() *Report {
	suite.mu.Lock()
	defer suite.mu.Unlock()
	return suite.report
}

// config returns the configuration loaded by RunTests, or loads it.
func config() (*env.Config, error) {
	suite.mu.Lock()
	defer suite.mu.Unlock()
	if suite.cfg != nil {
		return suite.cfg, nil
	}
	return env.Load()
}

// Track adds t to the run report. Fixtures track their tests; Track is for
// tests that use none.
func Track(t testing.TB) {
	if r := activeReport(); r != nil {
		r.Track(t)
	}
}

// Class builds the topology, starts it together with a cleanly configured
// controller and waits until both are ready. Everything is torn down when t
// completes. An empty topology selects the configured one.
func Class(t testing.TB, topo string) *Context {
	t.Helper()
	Track(t)
	cfg, err := config()
	if err != nil {
		t.Fatalf("loading harness configuration: %v", err)
	}
	h, err := NewContext(cfg, log.New("test", t.Name()))
	if err != nil {
		t.Fatalf("wiring harness: %v", err)
	}
	t.Cleanup(func() {
		if err := h.Teardown(context.WithoutCancel(t.Context())); err != nil {
			t.Errorf("teardown: %v", err)
		}
	})
	ctx := t.Context()
	if err := h.UseFabric(ctx, topo); err != nil {
		t.Fatalf("starting fabric: %v", err)
	}
	if err := h.Restart(ctx, controller.StartOptions{CleanConfig: true, EnableAll: true}); err != nil {
		t.Fatalf("starting controller: %v", err)
	}
	if err := h.WaitSwitches(ctx); err != nil {
		t.Fatalf("waiting for switches: %v", err)
	}
	return h
}

// Clean brings the fabric and the controller back to their initial state:
// all links up, controller restarted with a clean configuration and all
// applications enabled, then a quiescence window for discovery.
func (h *Context) Clean(t testing.TB) {
	t.Helper()
	Track(t)
	ctx := t.Context()
	if h.Fabric != nil {
		if err := h.Fabric.ResetAllLinksUp(ctx); err != nil {
			t.Fatalf("resetting links: %v", err)
		}
	}
	if err := h.Restart(ctx, controller.StartOptions{CleanConfig: true, EnableAll: true}); err != nil {
		t.Fatalf("restarting controller: %v", err)
	}
	if h.Fabric != nil {
		if err := h.WaitSwitches(ctx); err != nil {
			t.Fatalf("waiting for switches: %v", err)
		}
	}
	if err := h.Settle(ctx); err != nil {
		t.Fatalf("settling: %v", err)
	}
}

// Persistent restarts the controller keeping its stored configuration.
func (h *Context) Persistent(t testing.TB, enableAll bool) {
	t.Helper()
	Track(t)
	if err := h.Restart(t.Context(), controller.StartOptions{EnableAll: enableAll}); err != nil {
		t.Fatalf("restarting controller: %v", err)
	}
}

// Pause blocks for d. It is meant for the few places where the controller
// exposes no convergence signal, such as accumulating flow durations.
func Pause(t testing.TB, d time.Duration) {
	t.Helper()
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-t.Context().Done():
		t.Fatalf("pause of %s interrupted: %v", d, t.Context().Err())
	}
}

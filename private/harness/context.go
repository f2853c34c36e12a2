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

// Package harness composes the fabric, the controller supervisor and the
// readiness gate into test fixtures. A suite obtains a Context from Class
// and refines it per test with Clean or Persistent:
//
//	func TestMain(m *testing.M) {
//		os.Exit(harness.RunTests(m))
//	}
//
//	func TestFlowPersistence(t *testing.T) {
//		h := harness.Class(t, "ring3")
//		h.Persistent(t, true)
//		...
//	}
//
// Tests drive the controller through the API client and inspect switches
// through the fabric; they never start or stop components themselves.
package harness

import (
	"context"
	"time"

	"github.com/openflow-e2e/harness/pkg/log"
	"github.com/openflow-e2e/harness/pkg/private/serrors"
	"github.com/openflow-e2e/harness/private/api"
	"github.com/openflow-e2e/harness/private/controller"
	"github.com/openflow-e2e/harness/private/env"
	"github.com/openflow-e2e/harness/private/fabric"
	"github.com/openflow-e2e/harness/private/readiness"
	"github.com/openflow-e2e/harness/private/store"
	"github.com/openflow-e2e/harness/private/topology"
)

// Context holds everything a test needs. It replaces suite-level globals.
type Context struct {
	Config     *env.Config
	Fabrics    *fabric.Manager
	Fabric     *fabric.Fabric
	Controller *controller.Supervisor
	Gate       *readiness.Gate
	API        *api.Client
	// Store is nil if no store is configured.
	Store  *store.Dropper
	Logger log.Logger
}

// NewContext wires the components described by cfg. Nothing is started.
func NewContext(cfg *env.Config, logger log.Logger) (*Context, error) {
	if logger == nil {
		logger = log.Root()
	}
	client, err := api.New(cfg.Controller.APIURL,
		api.WithTimeout(cfg.Timeouts.HTTPRequest.Duration),
		api.WithLogger(logger.New("component", "api")),
	)
	if err != nil {
		return nil, err
	}

	fabrics := fabric.NewManager(FabricConfig(cfg), logger.New("component", "fabric"))
	fabrics.Runner = fabric.ExecRunner{
		Timeout: cfg.Fabric.CommandTimeout.Duration,
		Logger:  logger.New("component", "fabric"),
	}

	sup := controller.New(controller.ConfigFrom(cfg.Controller, cfg.Timeouts), client,
		logger.New("component", "controller"))
	h := &Context{
		Config:     cfg,
		Fabrics:    fabrics,
		Controller: sup,
		Gate:       readiness.New(cfg.Timeouts, client, nil, logger.New("component", "gate")),
		API:        client,
		Logger:     logger,
	}
	if cfg.Store.Configured() {
		h.Store = &store.Dropper{
			Options: store.FromConfig(cfg.Store),
			Logger:  logger.New("component", "store"),
		}
		sup.Store = h.Store
	}
	if r := activeReport(); r != nil {
		h.Gate.Metrics = r.readinessMetrics()
	}
	return h, nil
}

// FabricConfig derives the fabric manager configuration.
func FabricConfig(cfg *env.Config) fabric.Config {
	return fabric.ConfigFrom(cfg.Controller, cfg.Fabric, cfg.Timeouts)
}

// Descriptor resolves the topology to run. An empty name selects the
// configured topology file, or else the configured catalog entry.
func (h *Context) Descriptor(name string) (*topology.Descriptor, error) {
	if name != "" {
		return topology.Lookup(name)
	}
	return topology.Select(h.Config.Fabric.TopologyFile, h.Config.Fabric.Topology)
}

// UseFabric starts the named topology and waits for every switch to
// connect. The fabric replaces any previous one of this context.
func (h *Context) UseFabric(ctx context.Context, name string) error {
	desc, err := h.Descriptor(name)
	if err != nil {
		return err
	}
	if h.Fabric != nil {
		if err := h.Fabric.Stop(ctx); err != nil {
			return err
		}
	}
	f := h.Fabrics.BuildFrom(desc)
	h.Fabric = f
	h.Controller.Flows = f
	h.Gate.Switches = f
	if err := f.Start(ctx); err != nil {
		return err
	}
	return nil
}

// Restart (re)starts the controller and waits until it is healthy.
func (h *Context) Restart(ctx context.Context, opts controller.StartOptions) error {
	if err := h.Controller.Start(ctx, opts); err != nil {
		return err
	}
	return h.Gate.Wait(ctx, h.Gate.ControllerHealthy())
}

// WaitSwitches waits until every switch of the fabric is connected.
func (h *Context) WaitSwitches(ctx context.Context) error {
	if h.Fabric == nil {
		return serrors.New("no fabric running")
	}
	return h.Fabric.WaitAllSwitchesConnected(ctx, h.Config.Timeouts.SwitchesConnected.Duration)
}

// Settle sleeps for the quiescence window, during which the controller
// runs its periodic discovery pass.
func (h *Context) Settle(ctx context.Context) error {
	d := h.Config.Timeouts.Quiescence.Duration
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// BasicFlows is the number of flows each switch holds after a clean start.
func (h *Context) BasicFlows() int {
	return h.Config.Controller.BasicFlows
}

// Teardown stops the controller and the fabric. Both are attempted; the
// errors are aggregated.
func (h *Context) Teardown(ctx context.Context) error {
	var errs serrors.List
	if err := h.Controller.Stop(ctx); err != nil {
		errs = append(errs, serrors.Wrap("stopping controller", err))
	}
	if h.Fabric != nil {
		if err := h.Fabric.Stop(ctx); err != nil {
			errs = append(errs, serrors.Wrap("stopping fabric", err))
		}
	}
	return errs.ToError()
}

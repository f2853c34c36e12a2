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

package readiness

import (
	"context"
	"fmt"

	"github.com/openflow-e2e/harness/pkg/private/serrors"
	"github.com/openflow-e2e/harness/private/api"
	"github.com/openflow-e2e/harness/private/fabric"
	"github.com/openflow-e2e/harness/private/flowtable"
)

var errNoFabric = serrors.New("no fabric to observe")

// ControllerHealthy holds once the controller reports running.
func (g *Gate) ControllerHealthy() Predicate {
	return Predicate{
		Name:     "controller-healthy",
		Timeout:  g.Timeouts.ControllerHealthy.Duration,
		Interval: g.Timeouts.HealthInterval.Duration,
		Check: func(ctx context.Context) (bool, string, error) {
			status, err := g.Controller.Health(ctx)
			if err != nil {
				return false, "", err
			}
			return status == api.StatusRunning, "status=" + status, nil
		},
	}
}

// SwitchesConnected holds once every switch of the fabric has an active
// control channel. The observation is the per-switch status table.
func (g *Gate) SwitchesConnected() Predicate {
	return Predicate{
		Name:     "switches-connected",
		Timeout:  g.Timeouts.SwitchesConnected.Duration,
		Interval: g.Timeouts.PollInterval.Duration,
		Check: func(ctx context.Context) (bool, string, error) {
			if g.Switches == nil {
				return false, "", Permanent(errNoFabric)
			}
			statuses, err := g.Switches.SwitchStatus(ctx)
			if err != nil {
				return false, "", err
			}
			down := fabric.Disconnected(statuses)
			if len(down) == 0 {
				return true, fmt.Sprintf("connected=%d", len(statuses)), nil
			}
			return false, fmt.Sprintf("disconnected=%v\n%s", down,
				fabric.StatusTable(statuses)), nil
		},
	}
}

// LinksDiscovered holds once the controller's topology lists at least n
// active links.
func (g *Gate) LinksDiscovered(n int) Predicate {
	return Predicate{
		Name:     "links-discovered",
		Args:     []any{"want", n},
		Timeout:  g.Timeouts.LinksDiscovered.Duration,
		Interval: g.Timeouts.PollInterval.Duration,
		Check: func(ctx context.Context) (bool, string, error) {
			links, err := g.Controller.Links(ctx)
			if err != nil {
				return false, "", err
			}
			active := 0
			for _, l := range links {
				if l.Active {
					active++
				}
			}
			return active >= n, fmt.Sprintf("active=%d total=%d", active, len(links)), nil
		},
	}
}

// FlowInstalled holds once the flow table of sw contains a flow selected by
// sel. Desc names the flow in diagnostics.
func (g *Gate) FlowInstalled(sw, desc string, sel flowtable.Selector) Predicate {
	return Predicate{
		Name:     "flow-installed",
		Args:     []any{"switch", sw, "flow", desc},
		Timeout:  g.Timeouts.FlowInstalled.Duration,
		Interval: g.Timeouts.PollInterval.Duration,
		Check: func(ctx context.Context) (bool, string, error) {
			table, err := g.flowTable(ctx, sw)
			if err != nil {
				return false, "", err
			}
			return table.Contains(sel), fmt.Sprintf("flows=%d", table.Len()), nil
		},
	}
}

// FlowRemoved holds once no flow of sw is selected by sel.
func (g *Gate) FlowRemoved(sw, desc string, sel flowtable.Selector) Predicate {
	return Predicate{
		Name:     "flow-removed",
		Args:     []any{"switch", sw, "flow", desc},
		Timeout:  g.Timeouts.FlowInstalled.Duration,
		Interval: g.Timeouts.PollInterval.Duration,
		Check: func(ctx context.Context) (bool, string, error) {
			table, err := g.flowTable(ctx, sw)
			if err != nil {
				return false, "", err
			}
			n := table.Count(sel)
			return n == 0, fmt.Sprintf("selected=%d", n), nil
		},
	}
}

// FlowCount holds once the flow table of sw holds exactly n flows.
func (g *Gate) FlowCount(sw string, n int) Predicate {
	return Predicate{
		Name:     "flow-count",
		Args:     []any{"switch", sw, "want", n},
		Timeout:  g.Timeouts.FlowInstalled.Duration,
		Interval: g.Timeouts.PollInterval.Duration,
		Check: func(ctx context.Context) (bool, string, error) {
			table, err := g.flowTable(ctx, sw)
			if err != nil {
				return false, "", err
			}
			return table.Len() == n, fmt.Sprintf("flows=%d", table.Len()), nil
		},
	}
}

func (g *Gate) flowTable(ctx context.Context, sw string) (flowtable.Table, error) {
	if g.Switches == nil {
		return nil, Permanent(errNoFabric)
	}
	return g.Switches.FlowTable(ctx, sw)
}

// EVCActive holds once the EVC is active.
func (g *Gate) EVCActive(id string) Predicate {
	return Predicate{
		Name:     "evc-active",
		Args:     []any{"evc", id},
		Timeout:  g.Timeouts.EVCActive.Duration,
		Interval: g.Timeouts.PollInterval.Duration,
		Check: func(ctx context.Context) (bool, string, error) {
			evc, err := g.Controller.EVC(ctx, id)
			if err != nil {
				return false, "", err
			}
			enabled := evc.Enabled != nil && *evc.Enabled
			return evc.Active, fmt.Sprintf("active=%t enabled=%t", evc.Active, enabled), nil
		},
	}
}

// LivenessStatus holds once the liveness state of iface equals status,
// which must be up or down.
func (g *Gate) LivenessStatus(iface, status string) Predicate {
	return Predicate{
		Name:     "liveness-status",
		Args:     []any{"interface", iface, "want", status},
		Timeout:  g.Timeouts.Liveness.Duration,
		Interval: g.Timeouts.PollInterval.Duration,
		Check: func(ctx context.Context) (bool, string, error) {
			if status != api.LivenessUp && status != api.LivenessDown {
				return false, "", Permanent(serrors.New("invalid liveness status",
					"status", status))
			}
			states, err := g.Controller.Liveness(ctx, iface)
			if err != nil {
				return false, "", err
			}
			for _, s := range states {
				if s.ID == iface {
					return s.Status == status, "status=" + s.Status, nil
				}
			}
			return false, "status=absent", nil
		},
	}
}

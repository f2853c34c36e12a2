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

// Package readiness synchronizes tests with convergence events of the
// controller and the fabric. A Predicate names an observable fact; the Gate
// polls it with the predicate's interval until it holds or its timeout
// expires. Tests wait on predicates instead of sleeping.
package readiness

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"k8s.io/apimachinery/pkg/util/wait"

	"github.com/openflow-e2e/harness/pkg/log"
	"github.com/openflow-e2e/harness/pkg/metrics"
	"github.com/openflow-e2e/harness/pkg/private/serrors"
	"github.com/openflow-e2e/harness/private/api"
	"github.com/openflow-e2e/harness/private/env"
	"github.com/openflow-e2e/harness/private/fabric"
	"github.com/openflow-e2e/harness/private/flowtable"
)

// ErrNotReady is returned if a predicate did not hold within its timeout.
var ErrNotReady = serrors.New("readiness predicate not satisfied")

// Outcomes recorded in the wait histogram.
const (
	OutcomeOK       = "ok"
	OutcomeTimeout  = "timeout"
	OutcomeError    = "error"
	OutcomeCanceled = "canceled"
)

// Check observes the system once. It reports whether the predicate holds
// together with a short description of the observation. Errors are treated
// as a failed observation unless wrapped with Permanent.
type Check func(ctx context.Context) (bool, string, error)

// Predicate is a named, bounded wait.
type Predicate struct {
	// Name identifies the kind of predicate. It is used as metric label and
	// must not carry arguments.
	Name string
	// Args describe the instance, e.g. the switch or EVC waited on.
	Args     []any
	Timeout  time.Duration
	Interval time.Duration
	Check    Check
}

type permanentError struct {
	err error
}

func (e permanentError) Error() string { return e.err.Error() }
func (e permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth another observation; the wait aborts.
func Permanent(err error) error {
	return permanentError{err: err}
}

// Controller is the part of the controller API observed by the gate.
type Controller interface {
	Health(ctx context.Context) (string, error)
	Links(ctx context.Context) (map[string]api.Link, error)
	EVC(ctx context.Context, id string) (api.EVC, error)
	Liveness(ctx context.Context, ifaces ...string) ([]api.LivenessStatus, error)
}

// Switches is the part of the fabric observed by the gate.
type Switches interface {
	SwitchStatus(ctx context.Context) ([]fabric.SwitchStatus, error)
	FlowTable(ctx context.Context, sw string) (flowtable.Table, error)
}

// Metrics are the metrics of the gate.
type Metrics struct {
	// WaitSeconds observes the duration of every wait by predicate and
	// outcome.
	WaitSeconds *prometheus.HistogramVec
}

// NewMetrics creates and registers the gate metrics.
func NewMetrics(opts ...metrics.Option) *Metrics {
	f := metrics.ApplyOptions(opts...).Auto()
	return &Metrics{
		WaitSeconds: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "harness_readiness_wait_seconds",
			Help:    "Time spent waiting for readiness predicates.",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 20, 30, 60, 120},
		}, []string{"predicate", "outcome"}),
	}
}

// Gate evaluates predicates against a controller and a fabric.
type Gate struct {
	Timeouts   env.Timeouts
	Controller Controller
	// Switches may be nil if no fabric is running; switch predicates then
	// fail permanently.
	Switches Switches
	// Metrics is optional.
	Metrics *Metrics
	// Logger defaults to the logger attached to the context of Wait.
	Logger log.Logger
}

// New returns a gate with the given timeouts. Unset timeouts take their
// defaults.
func New(timeouts env.Timeouts, ctrl Controller, switches Switches,
	logger log.Logger) *Gate {

	timeouts.InitDefaults()
	return &Gate{
		Timeouts:   timeouts,
		Controller: ctrl,
		Switches:   switches,
		Logger:     logger,
	}
}

// logger falls back to the logger carried by ctx.
func (g *Gate) logger(ctx context.Context) log.Logger {
	if g.Logger == nil {
		return log.FromCtx(ctx)
	}
	return g.Logger
}

// Wait polls p until it holds. On failure the error carries the predicate
// name, its arguments and the last observation.
func (g *Gate) Wait(ctx context.Context, p Predicate) error {
	var (
		observed  string
		lastErr   error
		permanent bool
		start     = time.Now()
	)
	err := wait.PollUntilContextTimeout(ctx, p.Interval, p.Timeout, true,
		func(ctx context.Context) (bool, error) {
			ok, obs, err := p.Check(ctx)
			observed, lastErr = obs, err
			var perm permanentError
			if errors.As(err, &perm) {
				permanent = true
				return false, perm.err
			}
			return err == nil && ok, nil
		})
	took := time.Since(start)
	outcome := OutcomeOK
	switch {
	case err == nil:
	case ctx.Err() != nil:
		outcome = OutcomeCanceled
	case permanent:
		outcome = OutcomeError
	default:
		outcome = OutcomeTimeout
	}
	if g.Metrics != nil {
		g.Metrics.WaitSeconds.WithLabelValues(p.Name, outcome).Observe(took.Seconds())
	}
	logCtx := append([]any{"predicate", p.Name, "outcome", outcome, "took", took}, p.Args...)
	if err == nil {
		g.logger(ctx).Debug("Readiness predicate satisfied", logCtx...)
		return nil
	}
	g.logger(ctx).Info("Readiness predicate failed", append(logCtx, "observed", observed)...)
	errCtx := append([]any{"predicate", p.Name, "timeout", p.Timeout, "observed", observed},
		p.Args...)
	if lastErr != nil {
		errCtx = append(errCtx, "last_error", lastErr)
	}
	return serrors.Join(ErrNotReady, err, errCtx...)
}

// WaitAll waits for the predicates in order and stops at the first failure.
func (g *Gate) WaitAll(ctx context.Context, preds ...Predicate) error {
	for _, p := range preds {
		if err := g.Wait(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

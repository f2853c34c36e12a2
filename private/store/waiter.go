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

package store

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/openflow-e2e/harness/pkg/log"
	"github.com/openflow-e2e/harness/pkg/private/serrors"
)

// ErrNotReady is returned once the waiter exhausted its retries.
var ErrNotReady = serrors.New("store not ready")

// Waiter pings the store until it answers.
type Waiter struct {
	// Dial defaults to Dial.
	Dial DialFunc
	// Unit scales the sleep between attempts. Defaults to one second.
	Unit   time.Duration
	Logger log.Logger
}

// Interval is the sleep between two attempts for the given server selection
// timeout: the timeout in whole units, at least one unit.
func (w *Waiter) Interval(timeout time.Duration) time.Duration {
	unit := w.Unit
	if unit == 0 {
		unit = time.Second
	}
	return max(timeout/time.Second, 1) * unit
}

// WaitReady pings the store until it responds. Every transient failure
// consumes one of retries; any other failure aborts immediately. With zero
// retries a single attempt is made.
func (w *Waiter) WaitReady(ctx context.Context, o Options, retries uint64,
	timeout time.Duration) error {

	logger := w.Logger
	if logger == nil {
		logger = log.Root()
	}
	dial := w.Dial
	if dial == nil {
		dial = Dial
	}
	o.ServerSelectionTimeout = timeout

	attempt := 0
	ping := func() error {
		attempt++
		conn, err := dial(ctx, o)
		if err != nil {
			return backoff.Permanent(err)
		}
		defer conn.Close(context.WithoutCancel(ctx))
		if err := conn.Ping(ctx); err != nil {
			if IsTransient(err) {
				return err
			}
			return backoff.Permanent(err)
		}
		return nil
	}
	notify := func(err error, next time.Duration) {
		logger.Info("Store not ready", "attempt", attempt, "retries", retries,
			"next", next, "err", err)
	}
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(w.Interval(timeout)), retries),
		ctx,
	)
	if err := backoff.RetryNotify(ping, policy, notify); err != nil {
		if IsTransient(err) {
			return serrors.Join(ErrNotReady, err, "attempts", attempt, "seeds", o.Seeds)
		}
		return serrors.Wrap("probing store", err, "seeds", o.Seeds)
	}
	logger.Info("Store ready", "attempts", attempt, "seeds", o.Seeds)
	return nil
}

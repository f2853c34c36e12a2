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

package store_test

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openflow-e2e/harness/pkg/log/testlog"
	"github.com/openflow-e2e/harness/private/env"
	"github.com/openflow-e2e/harness/private/harness"
	"github.com/openflow-e2e/harness/private/store"
)

func TestMain(m *testing.M) {
	os.Exit(harness.RunTests(m))
}

// configured returns the store options of the harness configuration. The
// test is skipped if no store is configured.
func configured(t *testing.T) store.Options {
	t.Helper()
	cfg, err := env.Load()
	require.NoError(t, err)
	if !cfg.Store.Configured() {
		t.Skip("no store configured")
	}
	return store.WaiterOptions(cfg.Store)
}

func TestWaiterGivesUpOnUnreachableStore(t *testing.T) {
	harness.Track(t)
	opts := store.Options{
		Seeds:       []string{"127.0.0.1:1"},
		Database:    "napps",
		MaxPoolSize: env.WaiterMaxPoolSize,
		MinPoolSize: env.WaiterMinPoolSize,
	}
	w := store.Waiter{Logger: testlog.NewLogger(t)}

	start := time.Now()
	err := w.WaitReady(t.Context(), opts, 0, 500*time.Millisecond)
	assert.ErrorIs(t, err, store.ErrNotReady)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestWaiterReachesConfiguredStore(t *testing.T) {
	harness.Track(t)
	opts := configured(t)
	w := store.Waiter{Logger: testlog.NewLogger(t)}
	require.NoError(t, w.WaitReady(t.Context(), opts, 3, 30*time.Second))
}

func TestDropperIsRepeatable(t *testing.T) {
	harness.Track(t)
	opts := configured(t)
	d := store.Dropper{Options: opts, Logger: testlog.NewLogger(t)}
	for range 2 {
		require.NoError(t, d.DropDatabase(t.Context()))
	}
}

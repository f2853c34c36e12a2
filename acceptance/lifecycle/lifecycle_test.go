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

package lifecycle_test

import (
	"errors"
	"io/fs"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openflow-e2e/harness/private/controller"
	"github.com/openflow-e2e/harness/private/harness"
)

func TestMain(m *testing.M) {
	os.Exit(harness.RunTests(m))
}

func pidFileExists(t *testing.T, h *harness.Context) bool {
	t.Helper()
	_, err := os.Stat(h.Controller.Config.PIDFile)
	if errors.Is(err, fs.ErrNotExist) {
		return false
	}
	require.NoError(t, err)
	return true
}

func TestNoPIDFileBetweenStopAndStart(t *testing.T) {
	h := harness.Class(t, "ring3")
	ctx := t.Context()
	assert.True(t, pidFileExists(t, h))

	for _, opts := range []controller.StartOptions{
		{},
		{EnableAll: true},
		{CleanConfig: true, EnableAll: true},
		{DelFlows: true},
	} {
		require.NoError(t, h.Controller.Stop(ctx))
		assert.Equal(t, controller.Unstarted, h.Controller.State())
		assert.False(t, pidFileExists(t, h))

		require.NoError(t, h.Restart(ctx, opts))
		assert.Equal(t, controller.Running, h.Controller.State())
		assert.True(t, pidFileExists(t, h))
	}
}

func TestStopIsIdempotent(t *testing.T) {
	h := harness.Class(t, "ring3")
	ctx := t.Context()
	require.NoError(t, h.Controller.Stop(ctx))
	require.NoError(t, h.Controller.Stop(ctx))
	assert.False(t, pidFileExists(t, h))
	h.Persistent(t, true)
	require.NoError(t, h.WaitSwitches(ctx))
}

func TestResidualPIDFileIsRemoved(t *testing.T) {
	h := harness.Class(t, "ring3")
	ctx := t.Context()
	require.NoError(t, h.Controller.Stop(ctx))
	// A file left by a crashed daemon whose process is long gone.
	require.NoError(t, os.WriteFile(h.Controller.Config.PIDFile, []byte("999999\n"), 0o644))

	require.NoError(t, h.Restart(ctx, controller.StartOptions{EnableAll: true}))
	assert.True(t, pidFileExists(t, h))
	require.NoError(t, h.WaitSwitches(ctx))
}

func TestCleanStartWipesFlows(t *testing.T) {
	h := harness.Class(t, "ring3")
	h.Clean(t)
	ctx := t.Context()
	for _, sw := range []string{"s1", "s2", "s3"} {
		require.NoError(t, h.Gate.Wait(ctx, h.Gate.FlowCount(sw, h.BasicFlows())))
	}
}

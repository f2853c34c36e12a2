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

package env_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openflow-e2e/harness/private/config"
	"github.com/openflow-e2e/harness/private/env"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{
		env.EnvHostSeeds, env.EnvHostsPorts, env.EnvUsername, env.EnvPassword,
		env.EnvDatabase, env.EnvMaxPoolSize, env.EnvMinPoolSize, env.EnvConfig,
		env.EnvTopology, env.EnvTopologyFile, env.EnvReportDir, env.EnvBasicFlows,
		env.EnvLogLevel, env.EnvAdminUsername, env.EnvAdminPassword,
	} {
		t.Setenv(k, "")
	}
}

func TestSampleMatchesDefaults(t *testing.T) {
	var sample bytes.Buffer
	var cfg env.Config
	cfg.Sample(&sample, nil, nil)

	var decoded env.Config
	require.NoError(t, config.Decode(sample.Bytes(), &decoded))
	assert.Empty(t, decoded.Store.Seeds)
	decoded.Store.Seeds = nil
	decoded.InitDefaults()

	var defaults env.Config
	defaults.InitDefaults()
	assert.Equal(t, defaults, decoded)
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := env.Load()
	require.NoError(t, err)
	assert.Equal(t, env.DefaultTopology, cfg.Fabric.Topology)
	assert.Equal(t, env.DefaultBasicFlows, cfg.Controller.BasicFlows)
	assert.Zero(t, cfg.Store.MaxPoolSize)
	assert.Zero(t, cfg.Store.MinPoolSize)
	maxPool, minPool := cfg.Store.Pool(env.DefaultMaxPoolSize, env.DefaultMinPoolSize)
	assert.Equal(t, uint64(env.DefaultMaxPoolSize), maxPool)
	assert.Equal(t, uint64(env.DefaultMinPoolSize), minPool)
	assert.Equal(t, 10*time.Second, cfg.Timeouts.Quiescence.Duration)
	assert.Equal(t, 500*time.Millisecond, cfg.Timeouts.HealthInterval.Duration)
	assert.False(t, cfg.Store.Configured())
}

func TestLoadEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv(env.EnvHostsPorts, "mongo1:27017, mongo2:27018,,mongo3:27019")
	t.Setenv(env.EnvUsername, "napp_user")
	t.Setenv(env.EnvPassword, "napp_pw")
	t.Setenv(env.EnvDatabase, "kytos")
	t.Setenv(env.EnvAdminUsername, "root")
	t.Setenv(env.EnvAdminPassword, "rootpw")
	t.Setenv(env.EnvMaxPoolSize, "6")
	t.Setenv(env.EnvMinPoolSize, "3")
	t.Setenv(env.EnvBasicFlows, "1")
	t.Setenv(env.EnvTopology, "ring4")

	cfg, err := env.Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"mongo1:27017", "mongo2:27018", "mongo3:27019"}, cfg.Store.Seeds)
	assert.Equal(t, "napp_user", cfg.Store.Username)
	assert.Equal(t, "napp_pw", cfg.Store.Password)
	assert.Equal(t, "kytos", cfg.Store.Database)
	assert.Equal(t, "root", cfg.Store.AdminUsername)
	assert.Equal(t, "rootpw", cfg.Store.AdminPassword)
	assert.Equal(t, uint64(6), cfg.Store.MaxPoolSize)
	assert.Equal(t, uint64(3), cfg.Store.MinPoolSize)
	assert.Equal(t, 1, cfg.Controller.BasicFlows)
	assert.Equal(t, "ring4", cfg.Fabric.Topology)
	assert.True(t, cfg.Store.Configured())
}

func TestLoadHostSeedsPreferred(t *testing.T) {
	clearEnv(t)
	t.Setenv(env.EnvHostSeeds, "a:1")
	t.Setenv(env.EnvHostsPorts, "b:2")
	cfg, err := env.Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"a:1"}, cfg.Store.Seeds)
}

func TestLoadFile(t *testing.T) {
	tests := map[string]struct {
		Content   string
		Env       map[string]string
		Assertion assert.ErrorAssertionFunc
		Check     func(t *testing.T, cfg *env.Config)
	}{
		"file values": {
			Content: "[controller]\nbasic_flows = 1\n\n[timeouts]\nquiescence = \"2s\"\n",
			Assertion: assert.NoError,
			Check: func(t *testing.T, cfg *env.Config) {
				assert.Equal(t, 1, cfg.Controller.BasicFlows)
				assert.Equal(t, 2*time.Second, cfg.Timeouts.Quiescence.Duration)
			},
		},
		"environment wins": {
			Content:   "[store]\ndatabase = \"fromfile\"\n",
			Env:       map[string]string{env.EnvDatabase: "fromenv"},
			Assertion: assert.NoError,
			Check: func(t *testing.T, cfg *env.Config) {
				assert.Equal(t, "fromenv", cfg.Store.Database)
			},
		},
		"unknown key": {
			Content:   "[controller]\nbogus = 1\n",
			Assertion: assert.Error,
		},
		"invalid pool": {
			Content:   "[store]\nmax_pool_size = 2\nmin_pool_size = 5\n",
			Assertion: assert.Error,
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			file := filepath.Join(t.TempDir(), "e2e.toml")
			require.NoError(t, os.WriteFile(file, []byte(tc.Content), 0o644))
			t.Setenv(env.EnvConfig, file)
			for k, v := range tc.Env {
				t.Setenv(k, v)
			}
			cfg, err := env.Load()
			tc.Assertion(t, err)
			if tc.Check != nil && err == nil {
				tc.Check(t, cfg)
			}
		})
	}
}

func TestSplitSeeds(t *testing.T) {
	assert.Nil(t, env.SplitSeeds(""))
	assert.Equal(t, []string{"a:1", "b:2"}, env.SplitSeeds(" a:1 ,b:2, "))
}

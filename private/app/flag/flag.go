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

// Package flag registers the command line flags shared by the harness tools.
// Flags take precedence over the environment and the configuration file.
package flag

import (
	"github.com/spf13/pflag"

	"github.com/openflow-e2e/harness/pkg/log"
	"github.com/openflow-e2e/harness/private/env"
)

// Harness holds the flags that override the harness configuration.
type Harness struct {
	fs *pflag.FlagSet

	config       string
	seeds        []string
	database     string
	topology     string
	topologyFile string
	controllerIP string
	logLevel     string
}

// Register registers the flags on fs.
func (h *Harness) Register(fs *pflag.FlagSet) {
	h.fs = fs
	fs.StringVar(&h.config, "config", "",
		"Harness configuration file (default $"+env.EnvConfig+")")
	fs.StringSliceVar(&h.seeds, "seeds", nil,
		"Store seeds as host:port (default $"+env.EnvHostSeeds+")")
	fs.StringVar(&h.database, "database", "",
		"Controller database (default $"+env.EnvDatabase+")")
	fs.StringVar(&h.topology, "topology", "",
		"Catalog topology (default $"+env.EnvTopology+")")
	fs.StringVar(&h.topologyFile, "topology-file", "",
		"YAML topology descriptor (default $"+env.EnvTopologyFile+")")
	fs.StringVar(&h.controllerIP, "controller-ip", "",
		"Address switches connect to")
	fs.StringVar(&h.logLevel, "log.level", "",
		"Console logging level (debug|info|error)")
}

// Load loads the configuration and applies the flags that were set on the
// command line.
func (h *Harness) Load() (*env.Config, error) {
	cfg, err := env.LoadFrom(h.config)
	if err != nil {
		return nil, err
	}
	if h.changed("seeds") {
		cfg.Store.Seeds = h.seeds
	}
	if h.changed("database") {
		cfg.Store.Database = h.database
	}
	if h.changed("topology") {
		cfg.Fabric.Topology = h.topology
		cfg.Fabric.TopologyFile = ""
	}
	if h.changed("topology-file") {
		cfg.Fabric.TopologyFile = h.topologyFile
	}
	if h.changed("controller-ip") {
		cfg.Controller.Address = h.controllerIP
	}
	if h.changed("log.level") {
		cfg.Logging.Console.Level = h.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Setup loads the configuration and sets up console logging with it.
func (h *Harness) Setup() (*env.Config, error) {
	cfg, err := h.Load()
	if err != nil {
		return nil, err
	}
	if err := log.Setup(cfg.Logging); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (h *Harness) changed(name string) bool {
	return h.fs != nil && h.fs.Changed(name)
}

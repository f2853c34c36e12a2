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

// fabricctl is the operator entry point to the switch fabric: it starts,
// inspects and tears down emulated topologies outside of a test run.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/openflow-e2e/harness/pkg/log"
	"github.com/openflow-e2e/harness/private/app/command"
	"github.com/openflow-e2e/harness/private/app/flag"
	"github.com/openflow-e2e/harness/private/env"
	"github.com/openflow-e2e/harness/private/fabric"
	"github.com/openflow-e2e/harness/private/topology"
)

func main() {
	executable := filepath.Base(os.Args[0])
	var flags flag.Harness
	cmd := &cobra.Command{
		Use:   executable,
		Short: "Switch fabric control tool",
		Args:  cobra.NoArgs,
		// Errors are printed by main.
		SilenceErrors: true,
	}
	flags.Register(cmd.PersistentFlags())
	cmd.AddCommand(
		command.NewCompletion(cmd),
		command.NewSample(cmd),
		newStart(cmd, &flags),
		newStop(cmd, &flags),
		newPurge(cmd, &flags),
		newStatus(cmd, &flags),
		newFlows(cmd, &flags),
		newLink(cmd, &flags),
		newTopologies(cmd),
	)

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

// session is the loaded configuration with a fabric built from it.
type session struct {
	cfg    *env.Config
	mgr    *fabric.Manager
	fabric *fabric.Fabric
}

func open(flags *flag.Harness) (*session, error) {
	cfg, err := flags.Setup()
	if err != nil {
		return nil, err
	}
	logger := log.New("component", "fabricctl")
	mgr := fabric.NewManager(fabric.ConfigFrom(cfg.Controller, cfg.Fabric, cfg.Timeouts), logger)
	mgr.Runner = fabric.ExecRunner{Timeout: cfg.Fabric.CommandTimeout.Duration, Logger: logger}
	desc, err := topology.Select(cfg.Fabric.TopologyFile, cfg.Fabric.Topology)
	if err != nil {
		return nil, err
	}
	return &session{cfg: cfg, mgr: mgr, fabric: mgr.BuildFrom(desc)}, nil
}

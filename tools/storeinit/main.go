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

// storeinit bootstraps the document store of the controller: it initiates
// the replica set, creates the controller user and writes the seed list.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/openflow-e2e/harness/pkg/log"
	"github.com/openflow-e2e/harness/private/app/command"
	"github.com/openflow-e2e/harness/private/app/flag"
	"github.com/openflow-e2e/harness/private/env"
	"github.com/openflow-e2e/harness/private/store"
)

func main() {
	executable := filepath.Base(os.Args[0])
	var flags flag.Harness
	cmd := &cobra.Command{
		Use:   executable,
		Short: "Bootstraps the controller document store",
		Long: `Runs the complete bootstrap: initiates the replica set, waits for the
first seed to become primary, creates the controller user and writes the
resolved seed list.`,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.Setup()
			if err != nil {
				return err
			}
			cmd.SilenceUsage = true
			defer log.Flush()
			return bootstrap(context.Background(), cfg)
		},
	}
	flags.Register(cmd.PersistentFlags())
	cmd.AddCommand(
		command.NewCompletion(cmd),
		command.NewSample(cmd),
		newInitiate(cmd, &flags),
		newUser(cmd, &flags),
		newSeeds(cmd, &flags),
	)

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func newInitializer(cfg *env.Config) *store.Initializer {
	return &store.Initializer{
		HostsFile:     cfg.Store.HostsFile,
		AdminUsername: cfg.Store.AdminUsername,
		AdminPassword: cfg.Store.AdminPassword,
		Logger:        log.New("component", "storeinit"),
	}
}

// bootstrap runs without an upper bound; CI waits for the store as long as
// it takes to elect a primary.
func bootstrap(ctx context.Context, cfg *env.Config) error {
	si := newInitializer(cfg)
	opts := store.FromConfig(cfg.Store)
	if err := si.InitiateReplicaSet(ctx, opts, cfg.Store.ReplicaSet); err != nil {
		return err
	}
	if cfg.Store.Username != "" {
		if err := si.EnsureAdminUser(ctx, opts, cfg.Store.Username,
			cfg.Store.Password); err != nil {
			return err
		}
	}
	return si.EmitSeedList(cfg.Store.SeedListPath, cfg.Store.Seeds)
}

func newInitiate(pather command.Pather, flags *flag.Harness) *cobra.Command {
	return &cobra.Command{
		Use:   "initiate",
		Short: "Initiates the replica set and waits for a primary",
		Example: fmt.Sprintf(`  %[1]s initiate --seeds mongo1t:27027,mongo2t:27028,mongo3t:27029`,
			pather.CommandPath()),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.Setup()
			if err != nil {
				return err
			}
			cmd.SilenceUsage = true
			defer log.Flush()
			return newInitializer(cfg).InitiateReplicaSet(context.Background(),
				store.FromConfig(cfg.Store), cfg.Store.ReplicaSet)
		},
	}
}

func newUser(pather command.Pather, flags *flag.Harness) *cobra.Command {
	return &cobra.Command{
		Use:   "user",
		Short: "Creates the controller user on the controller database",
		Long: fmt.Sprintf(`'user' creates $%s with password $%s and the %s role on
the controller database. An existing user is left untouched.`,
			env.EnvUsername, env.EnvPassword, store.AdminRole),
		Example: fmt.Sprintf(`  %[1]s user --seeds mongo1t:27027`, pather.CommandPath()),
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.Setup()
			if err != nil {
				return err
			}
			if cfg.Store.Username == "" {
				return fmt.Errorf("no user given, set $%s", env.EnvUsername)
			}
			cmd.SilenceUsage = true
			defer log.Flush()
			return newInitializer(cfg).EnsureAdminUser(context.Background(),
				store.FromConfig(cfg.Store), cfg.Store.Username, cfg.Store.Password)
		},
	}
}

func newSeeds(pather command.Pather, flags *flag.Harness) *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:     "seeds",
		Short:   "Writes the seed list resolved through the hosts file",
		Example: fmt.Sprintf(`  %[1]s seeds --out /tmp/host_seeds.txt`, pather.CommandPath()),
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.Setup()
			if err != nil {
				return err
			}
			cmd.SilenceUsage = true
			defer log.Flush()
			if path == "" {
				path = cfg.Store.SeedListPath
			}
			return newInitializer(cfg).EmitSeedList(path, cfg.Store.Seeds)
		},
	}
	cmd.Flags().StringVar(&path, "out", "", "Seed list file (default from configuration)")
	return cmd
}

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

// storewait blocks until the document store answers. It exits with code 1
// once its retries are exhausted.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/openflow-e2e/harness/pkg/log"
	"github.com/openflow-e2e/harness/private/app/command"
	"github.com/openflow-e2e/harness/private/app/flag"
	"github.com/openflow-e2e/harness/private/store"
)

func main() {
	if err := newRoot().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func newRoot() *cobra.Command {
	var harness flag.Harness
	var flags struct {
		retries uint64
		timeout time.Duration
	}
	cmd := &cobra.Command{
		Use:   filepath.Base(os.Args[0]),
		Short: "Waits until the document store is reachable",
		Long: `Pings the store until it answers. Every transient failure, such as a
server selection timeout, consumes one retry and sleeps the timeout in
whole seconds, at least one second.`,
		Example: `  storewait --seeds mongo1t:27027 --retries 3 --timeout 30s`,
		Args:    cobra.NoArgs,
		// Errors are printed by main.
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := harness.Setup()
			if err != nil {
				return err
			}
			cmd.SilenceUsage = true
			defer log.Flush()

			opts := store.WaiterOptions(cfg.Store)
			w := store.Waiter{Logger: log.New("component", "storewait")}
			return w.WaitReady(context.Background(), opts, flags.retries, flags.timeout)
		},
	}
	harness.Register(cmd.PersistentFlags())
	cmd.Flags().Uint64Var(&flags.retries, "retries", 3, "Number of retries on transient errors")
	cmd.Flags().DurationVar(&flags.timeout, "timeout", 30*time.Second,
		"Server selection timeout of a single attempt")
	cmd.AddCommand(command.NewCompletion(cmd), command.NewSample(cmd))
	return cmd
}

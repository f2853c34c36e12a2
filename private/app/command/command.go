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

// Package command contains subcommands shared by the harness tools.
package command

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openflow-e2e/harness/private/config"
	"github.com/openflow-e2e/harness/private/env"
)

// Pather returns the path to a command.
type Pather interface {
	CommandPath() string
}

// NewCompletion creates a command that provides shell completion.
func NewCompletion(pather Pather) *cobra.Command {
	var flags struct {
		shell string
	}
	cmd := &cobra.Command{
		Use:   "completion",
		Short: "Generates shell completion scripts",
		Long: fmt.Sprintf(`Outputs the autocomplete configuration for some shells.

For example, you can add autocompletion for your current bash session using:

    . <( %[1]s completion )
`, pather.CommandPath()),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			out := cmd.OutOrStdout()
			switch flags.shell {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			default:
				return fmt.Errorf("unknown shell: %s", flags.shell)
			}
		},
	}
	cmd.Flags().StringVar(&flags.shell, "shell", "bash", "Shell type (bash|zsh|fish)")
	return cmd
}

// NewSample creates a command that prints a sample harness configuration.
func NewSample(pather Pather) *cobra.Command {
	return &cobra.Command{
		Use:   "sample",
		Short: "Displays a sample configuration file",
		Example: fmt.Sprintf(`  %[1]s sample > e2e.toml
  E2E_CONFIG=e2e.toml go test -tags e2e ./acceptance/...`, pather.CommandPath()),
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			var cfg env.Config
			cfg.Sample(cmd.OutOrStdout(), nil, config.CtxMap{})
		},
	}
}

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

package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/openflow-e2e/harness/private/app/command"
	"github.com/openflow-e2e/harness/private/app/flag"
	"github.com/openflow-e2e/harness/private/fabric"
	"github.com/openflow-e2e/harness/private/flowtable"
	"github.com/openflow-e2e/harness/private/topology"
)

func newStart(pather command.Pather, flags *flag.Harness) *cobra.Command {
	var wait bool
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Purges leftovers and starts the configured topology",
		Example: fmt.Sprintf(`  %[1]s start --topology ring3
  %[1]s start --topology-file custom.yml --wait`, pather.CommandPath()),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open(flags)
			if err != nil {
				return err
			}
			cmd.SilenceUsage = true
			if err := s.fabric.Start(cmd.Context()); err != nil {
				return err
			}
			if !wait {
				return nil
			}
			return s.fabric.WaitAllSwitchesConnected(cmd.Context(),
				s.cfg.Timeouts.SwitchesConnected.Duration)
		},
	}
	cmd.Flags().BoolVar(&wait, "wait", false, "Wait until every switch is connected")
	return cmd
}

func newStop(pather command.Pather, flags *flag.Harness) *cobra.Command {
	return &cobra.Command{
		Use:     "stop",
		Short:   "Tears down the configured topology",
		Example: fmt.Sprintf(`  %[1]s stop --topology ring3`, pather.CommandPath()),
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open(flags)
			if err != nil {
				return err
			}
			cmd.SilenceUsage = true
			if err := s.fabric.Attach(cmd.Context()); err != nil {
				return err
			}
			return s.fabric.Stop(cmd.Context())
		},
	}
}

func newPurge(pather command.Pather, flags *flag.Harness) *cobra.Command {
	return &cobra.Command{
		Use:   "purge",
		Short: "Removes every bridge, namespace and link left by the harness",
		Long: `'purge' removes all emulator state created by the harness, whether or
not it belongs to the configured topology.`,
		Example: fmt.Sprintf(`  %[1]s purge`, pather.CommandPath()),
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open(flags)
			if err != nil {
				return err
			}
			cmd.SilenceUsage = true
			return s.mgr.Purge(cmd.Context())
		},
	}
}

func newStatus(pather command.Pather, flags *flag.Harness) *cobra.Command {
	var noColor bool
	cmd := &cobra.Command{
		Use:     "status",
		Short:   "Shows the control channel state of every switch",
		Example: fmt.Sprintf(`  %[1]s status --topology amlight`, pather.CommandPath()),
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open(flags)
			if err != nil {
				return err
			}
			cmd.SilenceUsage = true
			st, err := s.fabric.SwitchStatus(cmd.Context())
			if err != nil {
				return err
			}
			writeStatus(cmd.OutOrStdout(), st, !noColor)
			if down := fabric.Disconnected(st); len(down) > 0 {
				return fmt.Errorf("%d of %d switches disconnected", len(down), len(st))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&noColor, "no-color", !terminal(os.Stdout),
		"Disable colored output (default when stdout is not a terminal)")
	return cmd
}

func newFlows(pather command.Pather, flags *flag.Harness) *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:     "flows <switch>",
		Short:   "Lists the flow table of a switch",
		Example: fmt.Sprintf(`  %[1]s flows s1`, pather.CommandPath()),
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open(flags)
			if err != nil {
				return err
			}
			cmd.SilenceUsage = true
			if err := s.fabric.Attach(cmd.Context()); err != nil {
				return err
			}
			if raw {
				dump, err := s.fabric.RawFlowDump(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), dump)
				return err
			}
			table, err := s.fabric.FlowTable(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			writeFlows(cmd.OutOrStdout(), table)
			return nil
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "Print the unparsed dump")
	return cmd
}

func newLink(pather command.Pather, flags *flag.Harness) *cobra.Command {
	return &cobra.Command{
		Use:   "link <node> <node> up|down",
		Short: "Sets the administrative state of the links between two nodes",
		Example: fmt.Sprintf(`  %[1]s link s1 s2 down
  %[1]s link s1 s2 up`, pather.CommandPath()),
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			up, err := parseState(args[2])
			if err != nil {
				return err
			}
			s, err := open(flags)
			if err != nil {
				return err
			}
			cmd.SilenceUsage = true
			if err := s.fabric.Attach(cmd.Context()); err != nil {
				return err
			}
			return s.fabric.SetLink(cmd.Context(), args[0], args[1], up)
		},
	}
}

func newTopologies(pather command.Pather) *cobra.Command {
	return &cobra.Command{
		Use:     "topologies",
		Short:   "Lists the topology catalog",
		Example: fmt.Sprintf(`  %[1]s topologies`, pather.CommandPath()),
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog := topology.DefaultCatalog()
			for _, name := range catalog.Names() {
				d, err := catalog.Lookup(name)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-10s switches=%d hosts=%d links=%d\n",
					name, len(d.Switches()), len(d.Hosts()), len(d.Links()))
			}
			return nil
		},
	}
}

func parseState(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "up":
		return true, nil
	case "down":
		return false, nil
	default:
		return false, fmt.Errorf("invalid link state %q, want up or down", s)
	}
}

func writeStatus(w io.Writer, statuses []fabric.SwitchStatus, colored bool) {
	noColor := color.New()
	good, bad := noColor, noColor
	if colored {
		good = color.New(color.FgGreen)
		bad = color.New(color.FgRed)
	}
	state := func(ok bool, yes, no string) string {
		if ok {
			return good.Sprint(yes)
		}
		return bad.Sprint(no)
	}
	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetBorder(false)
	table.SetHeaderLine(false)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeader([]string{"SWITCH", "DPID", "BRIDGE", "CONTROLLER", "TARGETS"})
	for _, s := range statuses {
		table.Append([]string{
			s.Name,
			s.DPID.String(),
			state(s.Present, "present", "missing"),
			state(s.Connected, "connected", "disconnected"),
			strings.Join(s.Targets, " "),
		})
	}
	table.Render()
}

func writeFlows(w io.Writer, t flowtable.Table) {
	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeader([]string{"Table", "Priority", "Cookie", "Match", "Actions", "Packets"})
	for _, f := range t {
		table.Append([]string{
			strconv.Itoa(int(f.Table)),
			strconv.Itoa(f.Priority),
			fmt.Sprintf("%#x", f.Cookie),
			f.Match.String(),
			f.Actions,
			strconv.FormatUint(f.Packets, 10),
		})
	}
	table.SetFooter([]string{"", "", "", "", "Total", strconv.Itoa(t.Len())})
	table.Render()
}

func terminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

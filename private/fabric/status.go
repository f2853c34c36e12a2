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

package fabric

import (
	"bytes"
	"context"
	"encoding/csv"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/openflow-e2e/harness/pkg/dpid"
	"github.com/openflow-e2e/harness/pkg/private/serrors"
)

// SwitchStatus is the control channel state of one switch.
type SwitchStatus struct {
	Name string
	DPID dpid.DPID
	// Present is false if the bridge does not exist.
	Present bool
	// Connected is true if the channel to the fabric's controller target
	// is up.
	Connected bool
	// Targets lists all controller targets configured on the bridge.
	Targets []string
}

type controllerRecord struct {
	target    string
	connected bool
}

// SwitchStatus queries the OVS database for the control channel state of
// every switch of the fabric.
func (f *Fabric) SwitchStatus(ctx context.Context) ([]SwitchStatus, error) {
	bridges, err := f.mgr.vsctl(ctx, listArgs("Bridge", "name", "controller")...)
	if err != nil {
		return nil, serrors.Wrap("listing bridges", err)
	}
	controllers, err := f.mgr.vsctl(ctx,
		listArgs("Controller", "_uuid", "target", "is_connected")...)
	if err != nil {
		return nil, serrors.Wrap("listing controllers", err)
	}
	byBridge, err := parseBridges(bridges)
	if err != nil {
		return nil, err
	}
	byUUID, err := parseControllers(controllers)
	if err != nil {
		return nil, err
	}
	var res []SwitchStatus
	for _, s := range f.desc.Switches() {
		st := SwitchStatus{Name: s.Name, DPID: s.DPID}
		uuids, ok := byBridge[s.Name]
		st.Present = ok
		for _, u := range uuids {
			c, ok := byUUID[u]
			if !ok {
				continue
			}
			st.Targets = append(st.Targets, c.target)
			if c.target == f.target && c.connected {
				st.Connected = true
			}
		}
		res = append(res, st)
	}
	return res, nil
}

func listArgs(table string, columns ...string) []string {
	return []string{
		"--format=csv", "--data=bare", "--no-headings",
		"--columns=" + strings.Join(columns, ","), "list", table,
	}
}

func readCSV(out []byte, fields int) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(out))
	r.FieldsPerRecord = fields
	records, err := r.ReadAll()
	if err != nil {
		return nil, serrors.Wrap("parsing ovs-vsctl output", err)
	}
	return records, nil
}

// parseBridges maps bridge names to controller record UUIDs.
func parseBridges(out []byte) (map[string][]string, error) {
	records, err := readCSV(out, 2)
	if err != nil {
		return nil, err
	}
	res := make(map[string][]string, len(records))
	for _, r := range records {
		res[r[0]] = strings.Fields(r[1])
	}
	return res, nil
}

func parseControllers(out []byte) (map[string]controllerRecord, error) {
	records, err := readCSV(out, 3)
	if err != nil {
		return nil, err
	}
	res := make(map[string]controllerRecord, len(records))
	for _, r := range records {
		connected, err := strconv.ParseBool(r[2])
		if err != nil {
			return nil, serrors.Wrap("parsing is_connected", err, "value", r[2])
		}
		res[r[0]] = controllerRecord{target: r[1], connected: connected}
	}
	return res, nil
}

// Disconnected returns the names of the switches without a live channel.
func Disconnected(statuses []SwitchStatus) []string {
	var names []string
	for _, s := range statuses {
		if !s.Connected {
			names = append(names, s.Name)
		}
	}
	return names
}

// StatusTable renders statuses as a table for diagnostics.
func StatusTable(statuses []SwitchStatus) string {
	rows := make([][]string, 0, len(statuses))
	for _, s := range statuses {
		rows = append(rows, []string{
			s.Name,
			s.DPID.String(),
			strconv.FormatBool(s.Present),
			strconv.FormatBool(s.Connected),
			strings.Join(s.Targets, " "),
		})
	}
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoWrapText(false)
	table.SetBorder(false)
	table.SetHeaderLine(false)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeader([]string{"SWITCH", "DPID", "PRESENT", "CONNECTED", "TARGETS"})
	table.AppendBulk(rows)
	table.Render()
	return buf.String()
}

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

package flowtable_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openflow-e2e/harness/private/flowtable"
)

const dump = `OFPST_FLOW reply (OF1.3) (xid=0x2):
 cookie=0xab00000000000001, duration=41.337s, table=0, n_packets=24, n_bytes=1440, send_flow_rem priority=50000,dl_vlan=3799,dl_type=0x88cc actions=CONTROLLER:65535
 cookie=0xac00000000000001, duration=41.337s, table=0, n_packets=0, n_bytes=0, send_flow_rem priority=50000,dl_src=ee:ee:ee:ee:ee:02 actions=CONTROLLER:65535
 cookie=0xaa5c3a1c0f3b9c4e, duration=3.5s, table=0, n_packets=7, n_bytes=686, send_flow_rem priority=20000,in_port=1,dl_vlan=100 actions=mod_vlan_vid:100,output:2
 cookie=0x0, duration=40.02s, table=0, n_packets=0, n_bytes=0, priority=10,in_port=1,dl_vlan=999 actions=output:2
 cookie=0x0, duration=1.2s, table=1, n_packets=0, n_bytes=0, idle_timeout=60, arp actions=NORMAL
 cookie=0x0, duration=0.5s, table=2, n_packets=0, n_bytes=0, actions=drop
`

func TestParse(t *testing.T) {
	table, err := flowtable.Parse(dump)
	require.NoError(t, err)
	require.Equal(t, 6, table.Len())

	lldp := table[0]
	assert.Equal(t, uint64(0xab00000000000001), lldp.Cookie)
	assert.Equal(t, 41337*time.Millisecond, lldp.Duration)
	assert.Equal(t, uint64(24), lldp.Packets)
	assert.Equal(t, uint64(1440), lldp.Bytes)
	assert.Equal(t, 50000, lldp.Priority)
	assert.Equal(t, []string{"send_flow_rem"}, lldp.Flags)
	assert.Equal(t, "CONTROLLER:65535", lldp.Actions)
	vlan, ok := lldp.Match.Get("dl_vlan")
	assert.True(t, ok)
	assert.Equal(t, "3799", vlan)

	arp := table[4]
	assert.Equal(t, uint8(1), arp.Table)
	assert.Equal(t, uint16(60), arp.IdleTimeout)
	assert.Equal(t, flowtable.DefaultPriority, arp.Priority)
	assert.Equal(t, flowtable.Match{{Key: "arp"}}, arp.Match)

	drop := table[5]
	assert.Empty(t, drop.Match)
	assert.Equal(t, "drop", drop.Actions)
	assert.Equal(t, uint8(2), drop.Table)
}

func TestParseErrors(t *testing.T) {
	tests := map[string]string{
		"no actions":     "cookie=0x0, duration=1s, table=0, priority=1",
		"bad cookie":     "cookie=0xzz, duration=1s, table=0, actions=drop",
		"bad duration":   "cookie=0x0, duration=xs, table=0, actions=drop",
		"bad priority":   "cookie=0x0, duration=1s, table=0, priority=high actions=drop",
		"stray token":    "cookie=0x0, bogus duration=1s, table=0, actions=drop",
		"table overflow": "cookie=0x0, duration=1s, table=256, actions=drop",
	}
	for name, line := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := flowtable.ParseFlow(line)
			assert.Error(t, err)
		})
	}
	_, err := flowtable.Parse("cookie=0x0, duration=1s\n")
	assert.Error(t, err)
}

func TestSelectors(t *testing.T) {
	table, err := flowtable.Parse(dump)
	require.NoError(t, err)

	tests := map[string]struct {
		Selectors []flowtable.Selector
		Count     int
	}{
		"all":              {Count: 6},
		"table 0":          {Selectors: []flowtable.Selector{flowtable.InTable(0)}, Count: 4},
		"lldp priority":    {Selectors: []flowtable.Selector{flowtable.Priority(50000)}, Count: 2},
		"cookie":           {Selectors: []flowtable.Selector{flowtable.Cookie(0)}, Count: 3},
		"cookie range": {
			Selectors: []flowtable.Selector{
				flowtable.CookieRange(0xaa00000000000000, 0xaaffffffffffffff),
			},
			Count: 1,
		},
		"hex vlan": {
			Selectors: []flowtable.Selector{flowtable.MatchField("dl_vlan", "0x64")},
			Count:     1,
		},
		"output 2": {Selectors: []flowtable.Selector{flowtable.HasAction("output:2")}, Count: 2},
		"controller": {
			Selectors: []flowtable.Selector{flowtable.HasAction("controller:65535")},
			Count:     2,
		},
		"vlan 100":  {Selectors: []flowtable.Selector{flowtable.ReferencesVLAN(100)}, Count: 1},
		"not vlan": {
			Selectors: []flowtable.Selector{flowtable.Not(flowtable.HasMatchField("dl_vlan"))},
			Count:     3,
		},
		"combined": {
			Selectors: []flowtable.Selector{
				flowtable.MatchField("in_port", "1"),
				flowtable.Priority(10),
			},
			Count: 1,
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.Count, table.Count(tc.Selectors...))
		})
	}
}

func TestSpecRoundTrip(t *testing.T) {
	spec := flowtable.Spec{
		Priority: 10,
		Match: flowtable.Match{
			{Key: "in_port", Value: "1"},
			{Key: "dl_vlan", Value: "999"},
		},
		Actions: []string{"output:2"},
	}
	assert.Equal(t, "table=0,priority=10,in_port=1,dl_vlan=999,actions=output:2", spec.String())
	assert.Equal(t, "table=0,in_port=1,dl_vlan=999", spec.MatchString())

	table, err := flowtable.Parse(dump)
	require.NoError(t, err)
	f, ok := table.Find(spec.Selector())
	require.True(t, ok)
	assert.Equal(t, 40020*time.Millisecond, f.Duration)

	without := table.Filter(flowtable.Not(spec.Selector()))
	assert.False(t, without.Contains(spec.Selector()))
	assert.Equal(t, 5, without.Len())
}

func TestSpecDefaults(t *testing.T) {
	spec := flowtable.Spec{Table: 1, Cookie: 0xff}
	assert.Equal(t, "table=1,cookie=0xff,actions=drop", spec.String())
	f, err := flowtable.ParseFlow(
		"cookie=0xff, duration=1s, table=1, n_packets=0, n_bytes=0, actions=drop")
	require.NoError(t, err)
	assert.True(t, spec.Selector()(f))
}

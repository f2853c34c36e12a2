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

// Package flowtable turns textual OpenFlow flow dumps, as printed by
// "ovs-ofctl dump-flows", into structured flows.
//
// It is the only place in the harness that looks at the dump syntax. Callers
// select flows with Selectors instead of matching substrings.
package flowtable

import (
	"bufio"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/openflow-e2e/harness/pkg/private/serrors"
)

// DefaultPriority is the priority of flows whose dump omits it.
const DefaultPriority = 32768

// Field is a single key=value pair of a match. Bare protocol keywords such as
// "arp" have an empty value.
type Field struct {
	Key   string
	Value string
}

func (f Field) String() string {
	if f.Value == "" {
		return f.Key
	}
	return f.Key + "=" + f.Value
}

// Match is an ordered list of match fields.
type Match []Field

// Get returns the value of key.
func (m Match) Get(key string) (string, bool) {
	for _, f := range m {
		if f.Key == key {
			return f.Value, true
		}
	}
	return "", false
}

func (m Match) String() string {
	parts := make([]string, 0, len(m))
	for _, f := range m {
		parts = append(parts, f.String())
	}
	return strings.Join(parts, ",")
}

// Flow is one entry of a switch flow table.
type Flow struct {
	Cookie      uint64
	Duration    time.Duration
	Table       uint8
	Packets     uint64
	Bytes       uint64
	IdleTimeout uint16
	HardTimeout uint16
	Priority    int
	// Flags holds keywords such as "send_flow_rem".
	Flags   []string
	Match   Match
	Actions string
	// Raw is the unmodified dump line.
	Raw string
}

// Table is a parsed flow table.
type Table []Flow

// Len returns the number of flows.
func (t Table) Len() int {
	return len(t)
}

// Filter returns the flows matching every selector.
func (t Table) Filter(sels ...Selector) Table {
	var out Table
	for _, f := range t {
		if All(sels...)(f) {
			out = append(out, f)
		}
	}
	return out
}

// Count returns the number of flows matching every selector.
func (t Table) Count(sels ...Selector) int {
	return len(t.Filter(sels...))
}

// Contains reports whether at least one flow matches every selector.
func (t Table) Contains(sels ...Selector) bool {
	_, ok := t.Find(sels...)
	return ok
}

// Find returns the first flow matching every selector.
func (t Table) Find(sels ...Selector) (Flow, bool) {
	for _, f := range t {
		if All(sels...)(f) {
			return f, true
		}
	}
	return Flow{}, false
}

func (t Table) String() string {
	lines := make([]string, 0, len(t))
	for _, f := range t {
		lines = append(lines, f.Raw)
	}
	return strings.Join(lines, "\n")
}

var statKeys = map[string]bool{
	"cookie": true, "duration": true, "table": true, "n_packets": true, "n_bytes": true,
	"idle_timeout": true, "hard_timeout": true, "idle_age": true, "hard_age": true,
	"importance": true,
}

var flagKeys = map[string]bool{
	"send_flow_rem": true, "check_overlap": true, "reset_counts": true,
	"no_packet_counts": true, "no_byte_counts": true,
}

// Parse parses a complete dump. Header lines ("OFPST_FLOW reply ...") and
// blank lines are skipped.
func Parse(dump string) (Table, error) {
	var table Table
	scanner := bufio.NewScanner(strings.NewReader(dump))
	for n := 1; scanner.Scan(); n++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "OFPST_") || strings.HasPrefix(line, "NXST_") {
			continue
		}
		f, err := ParseFlow(line)
		if err != nil {
			return nil, serrors.Wrap("parsing flow dump", err, "line", n)
		}
		table = append(table, f)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return table, nil
}

// ParseFlow parses a single dump line.
func ParseFlow(line string) (Flow, error) {
	line = strings.TrimSpace(line)
	f := Flow{Raw: line, Priority: DefaultPriority}
	idx := strings.Index(line, "actions=")
	if idx < 0 {
		return Flow{}, serrors.New("flow without actions", "flow", line)
	}
	head := line[:idx]
	f.Actions = line[idx+len("actions="):]
	tokens := strings.Fields(head)
	for i, tok := range tokens {
		trailingComma := strings.HasSuffix(tok, ",")
		tok = strings.TrimSuffix(tok, ",")
		key, value, hasValue := strings.Cut(tok, "=")
		switch {
		case hasValue && statKeys[key]:
			if err := f.setStat(key, value); err != nil {
				return Flow{}, serrors.Wrap("invalid flow statistic", err, "flow", line,
					"key", key)
			}
		case !hasValue && flagKeys[key]:
			f.Flags = append(f.Flags, key)
		case i == len(tokens)-1 && !trailingComma:
			if err := f.setMatch(tok); err != nil {
				return Flow{}, serrors.Wrap("invalid match", err, "flow", line)
			}
		default:
			return Flow{}, serrors.New("unexpected token", "flow", line, "token", tok)
		}
	}
	return f, nil
}

func (f *Flow) setStat(key, value string) error {
	var err error
	switch key {
	case "cookie":
		f.Cookie, err = strconv.ParseUint(value, 0, 64)
	case "duration":
		var secs float64
		secs, err = strconv.ParseFloat(strings.TrimSuffix(value, "s"), 64)
		f.Duration = time.Duration(math.Round(secs * float64(time.Second)))
	case "table":
		var v uint64
		v, err = strconv.ParseUint(value, 10, 8)
		f.Table = uint8(v)
	case "n_packets":
		f.Packets, err = strconv.ParseUint(value, 10, 64)
	case "n_bytes":
		f.Bytes, err = strconv.ParseUint(value, 10, 64)
	case "idle_timeout":
		var v uint64
		v, err = strconv.ParseUint(value, 10, 16)
		f.IdleTimeout = uint16(v)
	case "hard_timeout":
		var v uint64
		v, err = strconv.ParseUint(value, 10, 16)
		f.HardTimeout = uint16(v)
	}
	return err
}

func (f *Flow) setMatch(raw string) error {
	for _, part := range strings.Split(raw, ",") {
		if part == "" {
			continue
		}
		key, value, _ := strings.Cut(part, "=")
		value = strings.Trim(value, `"`)
		switch key {
		case "priority":
			p, err := strconv.Atoi(value)
			if err != nil {
				return serrors.Wrap("invalid priority", err, "value", value)
			}
			f.Priority = p
		case "table":
			v, err := strconv.ParseUint(value, 10, 8)
			if err != nil {
				return serrors.Wrap("invalid table", err, "value", value)
			}
			f.Table = uint8(v)
		case "cookie":
			v, err := strconv.ParseUint(value, 0, 64)
			if err != nil {
				return serrors.Wrap("invalid cookie", err, "value", value)
			}
			f.Cookie = v
		default:
			f.Match = append(f.Match, Field{Key: key, Value: value})
		}
	}
	return nil
}

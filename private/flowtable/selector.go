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

package flowtable

import (
	"strconv"
	"strings"
)

// Selector picks flows out of a table.
type Selector func(Flow) bool

// All combines selectors with a logical and. No selectors select everything.
func All(sels ...Selector) Selector {
	return func(f Flow) bool {
		for _, s := range sels {
			if !s(f) {
				return false
			}
		}
		return true
	}
}

// Priority selects flows with the given priority.
func Priority(p int) Selector {
	return func(f Flow) bool { return f.Priority == p }
}

// InTable selects flows of an OpenFlow table.
func InTable(table uint8) Selector {
	return func(f Flow) bool { return f.Table == table }
}

// Cookie selects flows with the given cookie.
func Cookie(c uint64) Selector {
	return func(f Flow) bool { return f.Cookie == c }
}

// CookieRange selects flows whose cookie lies in [lo, hi].
func CookieRange(lo, hi uint64) Selector {
	return func(f Flow) bool { return f.Cookie >= lo && f.Cookie <= hi }
}

// MatchField selects flows matching key=value. Numeric values compare
// numerically so that "dl_vlan=0x64" selects "dl_vlan=100".
func MatchField(key, value string) Selector {
	return func(f Flow) bool {
		v, ok := f.Match.Get(key)
		return ok && sameValue(v, value)
	}
}

// HasMatchField selects flows that match on key at all.
func HasMatchField(key string) Selector {
	return func(f Flow) bool {
		_, ok := f.Match.Get(key)
		return ok
	}
}

// HasAction selects flows whose action list contains action, e.g.
// "output:2" or "CONTROLLER:65535".
func HasAction(action string) Selector {
	return func(f Flow) bool {
		for _, a := range splitActions(f.Actions) {
			if strings.EqualFold(a, action) {
				return true
			}
		}
		return false
	}
}

// ActionContains selects flows whose rendered actions contain substr. It is
// meant for actions with nested arguments, e.g. "set_field:4196->vlan_vid".
func ActionContains(substr string) Selector {
	return func(f Flow) bool { return strings.Contains(f.Actions, substr) }
}

// Not negates a selector.
func Not(s Selector) Selector {
	return func(f Flow) bool { return !s(f) }
}

// ReferencesVLAN selects flows that match on or push the given VLAN id.
func ReferencesVLAN(vid uint16) Selector {
	v := strconv.Itoa(int(vid))
	tagged := strconv.Itoa(int(vid) | 0x1000)
	return func(f Flow) bool {
		if MatchField("dl_vlan", v)(f) {
			return true
		}
		if val, ok := f.Match.Get("vlan_tci"); ok {
			base, _, _ := strings.Cut(val, "/")
			if sameValue(base, tagged) {
				return true
			}
		}
		return HasAction("mod_vlan_vid:"+v)(f) ||
			ActionContains("set_field:"+tagged+"->vlan_vid")(f)
	}
}

func sameValue(a, b string) bool {
	if a == b {
		return true
	}
	x, errA := strconv.ParseUint(a, 0, 64)
	y, errB := strconv.ParseUint(b, 0, 64)
	return errA == nil && errB == nil && x == y
}

// splitActions splits a comma separated action list, ignoring commas nested
// in parentheses.
func splitActions(actions string) []string {
	var out []string
	depth, start := 0, 0
	for i, c := range actions {
		switch c {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				out = append(out, actions[start:i])
				start = i + 1
			}
		}
	}
	if start < len(actions) {
		out = append(out, actions[start:])
	}
	return out
}

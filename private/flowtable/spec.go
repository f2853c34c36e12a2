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
	"fmt"
	"strings"
)

// Spec is a flow in the syntax "ovs-ofctl add-flow" accepts. It is used to
// manipulate switch flow tables behind the controller's back.
type Spec struct {
	Table uint8
	// Priority zero installs the flow with DefaultPriority.
	Priority int
	Cookie   uint64
	Match    Match
	Actions  []string
}

// String renders the spec for add-flow.
func (s Spec) String() string {
	parts := []string{fmt.Sprintf("table=%d", s.Table)}
	if s.Cookie != 0 {
		parts = append(parts, fmt.Sprintf("cookie=%#x", s.Cookie))
	}
	if s.Priority != 0 {
		parts = append(parts, fmt.Sprintf("priority=%d", s.Priority))
	}
	if len(s.Match) > 0 {
		parts = append(parts, s.Match.String())
	}
	actions := "drop"
	if len(s.Actions) > 0 {
		actions = strings.Join(s.Actions, ",")
	}
	return strings.Join(parts, ",") + ",actions=" + actions
}

// MatchString renders the match for del-flows. Non-strict deletion ignores
// the priority, so only table and match fields are included.
func (s Spec) MatchString() string {
	parts := []string{fmt.Sprintf("table=%d", s.Table)}
	if len(s.Match) > 0 {
		parts = append(parts, s.Match.String())
	}
	return strings.Join(parts, ",")
}

// Selector returns a selector finding the flow the spec installs in a dump.
func (s Spec) Selector() Selector {
	sels := []Selector{InTable(s.Table)}
	prio := s.Priority
	if prio == 0 {
		prio = DefaultPriority
	}
	sels = append(sels, Priority(prio))
	if s.Cookie != 0 {
		sels = append(sels, Cookie(s.Cookie))
	}
	for _, f := range s.Match {
		sels = append(sels, MatchField(f.Key, f.Value))
	}
	for _, a := range s.Actions {
		sels = append(sels, HasAction(a))
	}
	return All(sels...)
}

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

package topology

import (
	"errors"
	"fmt"
	"sort"

	"github.com/openflow-e2e/harness/pkg/dpid"
	"github.com/openflow-e2e/harness/pkg/private/serrors"
)

// ErrUnknownTopology is returned for names outside the catalog.
var ErrUnknownTopology = errors.New("unknown topology")

// Factory creates a fresh descriptor.
type Factory func() *Descriptor

// Catalog maps topology names to factories.
type Catalog map[string]Factory

// DefaultCatalog returns the closed set of topologies the suites run on.
func DefaultCatalog() Catalog {
	return Catalog{
		"ring3":    Ring3,
		"ring4":    Ring4,
		"amlight":  AmLight,
		"linear10": Linear10,
		"multi":    Multi,
		"looped":   Looped,
	}
}

// Lookup returns the descriptor registered under name.
func (c Catalog) Lookup(name string) (*Descriptor, error) {
	f, ok := c[name]
	if !ok {
		return nil, serrors.Join(ErrUnknownTopology, nil, "name", name, "known", c.Names())
	}
	return f(), nil
}

// Names returns the sorted topology names.
func (c Catalog) Names() []string {
	names := make([]string, 0, len(c))
	for n := range c {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Lookup resolves name against the default catalog.
func Lookup(name string) (*Descriptor, error) {
	return DefaultCatalog().Lookup(name)
}

func mustBuild(b *Builder) *Descriptor {
	d, err := b.Build()
	if err != nil {
		panic(err)
	}
	return d
}

// Ring3 is a triangle of three switches with one host each. Every host sits
// on port 1 of its switch.
func Ring3() *Descriptor {
	return mustBuild(NewBuilder("ring3").
		Switches("s1", "s2", "s3").
		Hosts("h1", "h2", "h3").
		Link("s1", "h1").Link("s2", "h2").Link("s3", "h3").
		Link("s1", "s2").Link("s2", "s3").Link("s3", "s1"))
}

// Ring4 is a ring of four switches with two hosts each on ports 1 and 2.
// Switch links use ports 3 (clockwise) and 4 (counter-clockwise), so s1:3
// faces s2 and s1:4 faces s4.
func Ring4() *Descriptor {
	b := NewBuilder("ring4").Switches("s1", "s2", "s3", "s4")
	for i := 1; i <= 8; i++ {
		h := fmt.Sprintf("h%d", i)
		b.Host(h).Link(fmt.Sprintf("s%d", (i+1)/2), h)
	}
	return mustBuild(b.
		Link("s1:3", "s2:4").Link("s2:3", "s3:4").
		Link("s3:3", "s4:4").Link("s4:3", "s1:4"))
}

// Linear10 chains ten switches, each with one host on port 1.
func Linear10() *Descriptor {
	b := NewBuilder("linear10")
	for i := 1; i <= 10; i++ {
		s, h := fmt.Sprintf("s%d", i), fmt.Sprintf("h%d", i)
		b.Switch(s).Host(h).Link(s, h)
	}
	for i := 1; i < 10; i++ {
		b.Link(fmt.Sprintf("s%d", i), fmt.Sprintf("s%d", i+1))
	}
	return mustBuild(b)
}

// Multi is a partial mesh of six switches with one host each.
func Multi() *Descriptor {
	b := NewBuilder("multi")
	for i := 1; i <= 6; i++ {
		s, h := fmt.Sprintf("s%d", i), fmt.Sprintf("h%d", i)
		b.Switch(s).Host(h).Link(s, h)
	}
	return mustBuild(b.
		Link("s1", "s2").Link("s1", "s3").Link("s2", "s3").Link("s2", "s4").
		Link("s3", "s5").Link("s4", "s5").Link("s4", "s6").Link("s5", "s6"))
}

// Looped has two switches with one host each and a cable looping from
// s1:3 back into s1:4.
func Looped() *Descriptor {
	return mustBuild(NewBuilder("looped").
		Switches("s1", "s2").
		Hosts("h1", "h2").
		Link("s1", "h1").Link("s2", "h2").
		Link("s1", "s2").
		Link("s1:3", "s1:4"))
}

// AmLight mirrors a production research backbone: twelve switches with one
// host each, meshed across several paths.
func AmLight() *Descriptor {
	switches := []struct {
		name string
		dpid string
	}{
		{"Ampath1", "00:00:00:00:00:00:00:11"},
		{"Ampath2", "00:00:00:00:00:00:00:12"},
		{"SoL2", "00:00:00:00:00:00:00:13"},
		{"SanJuan", "00:00:00:00:00:00:00:14"},
		{"AnL2", "00:00:00:00:00:00:00:15"},
		{"AnL3", "00:00:00:00:00:00:00:16"},
		{"Ampath3", "00:00:00:00:00:00:00:17"},
		{"Ampath4", "00:00:00:00:00:00:00:18"},
		{"Ampath5", "00:00:00:00:00:00:00:19"},
		{"Ampath7", "00:00:00:00:00:00:00:20"},
		{"JAX1", "00:00:00:00:00:00:00:21"},
		{"JAX2", "00:00:00:00:00:00:00:22"},
	}
	b := NewBuilder("amlight")
	for i, s := range switches {
		h := fmt.Sprintf("h%d", i+1)
		b.Switch(s.name, WithDPID(dpid.MustParse(s.dpid))).Host(h).Link(s.name, h)
	}
	return mustBuild(b.
		Link("Ampath1", "Ampath2").Link("Ampath1", "SoL2").Link("Ampath1", "SanJuan").
		Link("Ampath1", "Ampath3").Link("Ampath2", "AnL2").Link("Ampath2", "SanJuan").
		Link("Ampath2", "Ampath4").Link("SoL2", "AnL3").Link("SoL2", "SanJuan").
		Link("AnL2", "AnL3").Link("AnL2", "Ampath5").Link("AnL3", "Ampath7").
		Link("Ampath3", "Ampath4").Link("Ampath3", "JAX1").Link("Ampath4", "JAX2").
		Link("Ampath5", "Ampath7").Link("JAX1", "JAX2"))
}

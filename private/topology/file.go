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
	"os"

	"gopkg.in/yaml.v2"

	"github.com/openflow-e2e/harness/pkg/dpid"
	"github.com/openflow-e2e/harness/pkg/private/serrors"
)

// fileFormat is the YAML representation of a descriptor:
//
//	name: custom
//	switches:
//	  - name: s1
//	    dpid: "00:00:00:00:00:00:00:01"
//	hosts:
//	  - name: h1
//	    mac: "00:00:00:00:00:01"
//	links:
//	  - [s1:1, h1]
type fileFormat struct {
	Name     string `yaml:"name"`
	Switches []struct {
		Name       string `yaml:"name"`
		DPID       string `yaml:"dpid"`
		ListenPort uint16 `yaml:"listen_port"`
	} `yaml:"switches"`
	Hosts []struct {
		Name string `yaml:"name"`
		MAC  string `yaml:"mac"`
		Addr string `yaml:"addr"`
	} `yaml:"hosts"`
	Links [][]string `yaml:"links"`
}

// Parse decodes a YAML descriptor. Unknown keys are rejected.
func Parse(raw []byte) (*Descriptor, error) {
	var f fileFormat
	if err := yaml.UnmarshalStrict(raw, &f); err != nil {
		return nil, serrors.Wrap("decoding topology", err)
	}
	b := NewBuilder(f.Name)
	for _, s := range f.Switches {
		var opts []SwitchOption
		if s.DPID != "" {
			d, err := dpid.Parse(s.DPID)
			if err != nil {
				return nil, serrors.Wrap("invalid switch", err, "switch", s.Name)
			}
			opts = append(opts, WithDPID(d))
		}
		if s.ListenPort != 0 {
			opts = append(opts, WithListenPort(s.ListenPort))
		}
		b.Switch(s.Name, opts...)
	}
	for _, h := range f.Hosts {
		var opts []HostOption
		if h.MAC != "" {
			opts = append(opts, WithMAC(h.MAC))
		}
		if h.Addr != "" {
			opts = append(opts, WithAddr(h.Addr))
		}
		b.Host(h.Name, opts...)
	}
	for i, l := range f.Links {
		if len(l) != 2 {
			return nil, serrors.New("link needs exactly two endpoints", "index", i,
				"endpoints", l)
		}
		b.Link(l[0], l[1])
	}
	return b.Build()
}

// LoadFile reads a YAML descriptor from file.
func LoadFile(file string) (*Descriptor, error) {
	raw, err := os.ReadFile(file)
	if err != nil {
		return nil, serrors.Wrap("reading topology", err, "file", file)
	}
	d, err := Parse(raw)
	if err != nil {
		return nil, serrors.Wrap("loading topology", err, "file", file)
	}
	return d, nil
}

// Select returns the descriptor in file if it is set, or else the catalog
// entry name.
func Select(file, name string) (*Descriptor, error) {
	if file != "" {
		return LoadFile(file)
	}
	return Lookup(name)
}

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

// Package dpid implements OpenFlow datapath identifiers.
package dpid

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/openflow-e2e/harness/pkg/private/serrors"
)

// DPID is the 64-bit identifier of an OpenFlow switch.
type DPID uint64

// Parse parses either the colon separated form ("00:00:00:00:00:00:00:01")
// or a plain hex string of up to 16 digits ("0000000000000001", "1").
func Parse(s string) (DPID, error) {
	raw := s
	if strings.Contains(s, ":") {
		parts := strings.Split(s, ":")
		if len(parts) != 8 {
			return 0, serrors.New("invalid dpid, expected 8 octets", "dpid", s)
		}
		for _, p := range parts {
			if len(p) != 2 {
				return 0, serrors.New("invalid dpid octet", "dpid", s, "octet", p)
			}
		}
		raw = strings.Join(parts, "")
	}
	if raw == "" || len(raw) > 16 {
		return 0, serrors.New("invalid dpid length", "dpid", s)
	}
	v, err := strconv.ParseUint(raw, 16, 64)
	if err != nil {
		return 0, serrors.Wrap("invalid dpid", err, "dpid", s)
	}
	return DPID(v), nil
}

// MustParse is like Parse but panics on error. Use it for literals.
func MustParse(s string) DPID {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

// String renders the dpid as eight colon separated octets.
func (d DPID) String() string {
	h := d.Hex()
	var sb strings.Builder
	for i := 0; i < 16; i += 2 {
		if i != 0 {
			sb.WriteByte(':')
		}
		sb.WriteString(h[i : i+2])
	}
	return sb.String()
}

// Hex renders the dpid as 16 hex digits, the form Open vSwitch expects for
// other-config:datapath-id.
func (d DPID) Hex() string {
	return fmt.Sprintf("%016x", uint64(d))
}

// Interface returns the controller's identifier of port on this switch,
// e.g. "00:00:00:00:00:00:00:01:1".
func (d DPID) Interface(port uint32) string {
	return fmt.Sprintf("%s:%d", d, port)
}

func (d DPID) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *DPID) UnmarshalText(b []byte) error {
	v, err := Parse(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

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

package store

import (
	"bufio"
	"io"
	"net"
	"net/netip"
	"os"
	"strings"

	"github.com/openflow-e2e/harness/pkg/private/serrors"
)

// Hosts is a host name to address resolution table in the format of
// /etc/hosts.
type Hosts map[string]string

// ParseHosts reads a hosts table. The first address listed for a name wins.
func ParseHosts(r io.Reader) (Hosts, error) {
	hosts := make(Hosts)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line, _, _ := strings.Cut(scanner.Text(), "#")
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		if _, err := netip.ParseAddr(fields[0]); err != nil {
			continue
		}
		for _, name := range fields[1:] {
			if _, ok := hosts[name]; !ok {
				hosts[name] = fields[0]
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, serrors.Wrap("reading hosts table", err)
	}
	return hosts, nil
}

// LoadHosts reads the hosts table at path.
func LoadHosts(path string) (Hosts, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, serrors.Wrap("opening hosts table", err, "path", path)
	}
	defer f.Close()
	return ParseHosts(f)
}

// Resolve maps "host:port" seeds to "address:port". Seeds that already carry
// an address are kept as they are.
func (h Hosts) Resolve(seeds []string) ([]string, error) {
	resolved := make([]string, 0, len(seeds))
	for _, seed := range seeds {
		host, port, err := net.SplitHostPort(seed)
		if err != nil {
			return nil, serrors.Wrap("invalid seed", err, "seed", seed)
		}
		if _, err := netip.ParseAddr(host); err != nil {
			addr, ok := h[host]
			if !ok {
				return nil, serrors.New("seed host not in hosts table", "seed", seed)
			}
			host = addr
		}
		resolved = append(resolved, net.JoinHostPort(host, port))
	}
	return resolved, nil
}

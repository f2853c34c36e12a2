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
	"context"
	"strings"
	"time"

	"github.com/openflow-e2e/harness/pkg/private/serrors"
)

// Purge removes every bridge, namespace and kernel link a harness run may
// have left behind, whether or not a fabric is known to this manager. Each
// kind of leftover is removed independently; the errors are aggregated.
func (m *Manager) Purge(ctx context.Context) error {
	start := time.Now()
	var errs serrors.List
	bridges, err := m.ownedBridges(ctx)
	if err != nil {
		errs = append(errs, err)
	}
	for _, br := range bridges {
		if _, err := m.vsctl(ctx, "--if-exists", "del-br", br); err != nil {
			errs = append(errs, serrors.Wrap("deleting bridge", err, "bridge", br))
		}
	}
	namespaces, err := m.ownedNamespaces(ctx)
	if err != nil {
		errs = append(errs, err)
	}
	for _, ns := range namespaces {
		if _, err := m.ip(ctx, "netns", "del", ns); err != nil {
			errs = append(errs, serrors.Wrap("deleting namespace", err, "ns", ns))
		}
	}
	// Host ends vanish with their namespace; switch-to-switch pairs and
	// pairs that never left the root namespace remain.
	links, err := m.Links.Owned()
	if err != nil {
		errs = append(errs, err)
	}
	for _, l := range links {
		if err := m.Links.Delete(l); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errs.ToError(); err != nil {
		return err
	}
	m.logger().Debug("Emulator state purged", "bridges", len(bridges),
		"namespaces", len(namespaces), "links", len(links), "took", time.Since(start))
	return nil
}

func (m *Manager) ownedBridges(ctx context.Context) ([]string, error) {
	out, err := m.vsctl(ctx, "--bare", "--columns=name", "find", "Bridge", ownerKey+"=true")
	if err != nil {
		return nil, serrors.Wrap("listing bridges", err)
	}
	return lines(out), nil
}

// ownedNamespaces parses "ip netns list", whose lines look like
// "e2e-h1 (id: 3)".
func (m *Manager) ownedNamespaces(ctx context.Context) ([]string, error) {
	out, err := m.ip(ctx, "netns", "list")
	if err != nil {
		return nil, serrors.Wrap("listing namespaces", err)
	}
	var res []string
	for _, l := range lines(out) {
		name := strings.Fields(l)[0]
		if strings.HasPrefix(name, NamespacePrefix) {
			res = append(res, name)
		}
	}
	return res, nil
}

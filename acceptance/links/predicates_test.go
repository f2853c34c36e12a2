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

//go:build e2e

package links_test

import (
	"context"
	"fmt"

	"github.com/openflow-e2e/harness/private/harness"
	"github.com/openflow-e2e/harness/private/readiness"
)

// linkActive holds once the controller reports the link between a and b in
// the wanted state.
func linkActive(h *harness.Context, a, b string, active bool) readiness.Predicate {
	return readiness.Predicate{
		Name:     "link-active",
		Args:     []any{"a", a, "b", b, "want", active},
		Timeout:  h.Config.Timeouts.LinksDiscovered.Duration,
		Interval: h.Config.Timeouts.PollInterval.Duration,
		Check: func(ctx context.Context) (bool, string, error) {
			l, err := h.DiscoveredLink(ctx, a, b)
			if err != nil {
				return false, "", err
			}
			return l.Active == active, fmt.Sprintf("active=%t", l.Active), nil
		},
	}
}

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
	"context"

	"github.com/openflow-e2e/harness/pkg/log"
	"github.com/openflow-e2e/harness/pkg/private/serrors"
)

// Dropper drops the controller database.
type Dropper struct {
	Options Options
	// Dial defaults to Dial.
	Dial   DialFunc
	Logger log.Logger
}

// DropDatabase drops the configured database. A store that cannot be
// reached within the server selection timeout is logged and tolerated, so
// that a controller without a store can still be restarted cleanly.
func (d *Dropper) DropDatabase(ctx context.Context) error {
	logger := d.Logger
	if logger == nil {
		logger = log.Root()
	}
	dial := d.Dial
	if dial == nil {
		dial = Dial
	}
	conn, err := dial(ctx, d.Options)
	if err != nil {
		return err
	}
	defer conn.Close(context.WithoutCancel(ctx))
	if err := conn.DropDatabase(ctx, d.Options.Database); err != nil {
		if IsTransient(err) && ctx.Err() == nil {
			logger.Info("Store unreachable, database not dropped",
				"db", d.Options.Database, "err", err)
			return nil
		}
		return serrors.Wrap("dropping database", err, "db", d.Options.Database)
	}
	logger.Info("Database dropped", "db", d.Options.Database)
	return nil
}

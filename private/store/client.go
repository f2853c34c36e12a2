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
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/openflow-e2e/harness/pkg/private/serrors"
)

// Conn is a connection to the store.
type Conn interface {
	// RunCommand runs cmd against db and decodes the reply into result,
	// unless result is nil.
	RunCommand(ctx context.Context, db string, cmd any, result any) error
	// Ping checks that a member accepts commands.
	Ping(ctx context.Context) error
	// DropDatabase drops the named database.
	DropDatabase(ctx context.Context, name string) error
	Close(ctx context.Context) error
}

// DialFunc opens a connection to the store.
type DialFunc func(ctx context.Context, o Options) (Conn, error)

// Client is a Conn backed by the MongoDB driver.
type Client struct {
	client *mongo.Client
}

var _ Conn = (*Client)(nil)

// Dial connects to the store. Connecting is lazy; the first command selects
// a server.
func Dial(ctx context.Context, o Options) (Conn, error) {
	if len(o.Seeds) == 0 {
		return nil, serrors.New("no store seeds configured")
	}
	c, err := mongo.Connect(ctx, o.ClientOptions())
	if err != nil {
		return nil, serrors.Wrap("connecting to store", err, "seeds", o.Seeds)
	}
	return &Client{client: c}, nil
}

func (c *Client) RunCommand(ctx context.Context, db string, cmd any, result any) error {
	res := c.client.Database(db).RunCommand(ctx, cmd)
	if result == nil {
		return res.Err()
	}
	return res.Decode(result)
}

func (c *Client) Ping(ctx context.Context) error {
	return c.client.Ping(ctx, readpref.PrimaryPreferred())
}

func (c *Client) DropDatabase(ctx context.Context, name string) error {
	return c.client.Database(name).Drop(ctx)
}

func (c *Client) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}

// IsTransient reports whether err is a server selection timeout or a network
// error, i.e. whether the store may still become reachable.
func IsTransient(err error) bool {
	return mongo.IsTimeout(err) || mongo.IsNetworkError(err) ||
		errors.Is(err, context.DeadlineExceeded)
}

// commandCode returns the server error code carried by err, or 0.
func commandCode(err error) int32 {
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.Code
	}
	return 0
}

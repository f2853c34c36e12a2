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
	"os"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"k8s.io/apimachinery/pkg/util/wait"

	"github.com/openflow-e2e/harness/pkg/log"
	"github.com/openflow-e2e/harness/pkg/private/serrors"
	"github.com/openflow-e2e/harness/private/env"
)

const (
	// DefaultPrimaryPollInterval is the interval at which the initializer
	// checks whether the replica set elected a primary.
	DefaultPrimaryPollInterval = 3 * time.Second
	// AdminRole is the role granted to the controller user.
	AdminRole = "dbAdmin"

	codeUserExists = 51003
	statePrimary   = "PRIMARY"
)

// Member is a replica set member as sent with replSetInitiate.
type Member struct {
	ID       int    `bson:"_id"`
	Host     string `bson:"host"`
	Priority int    `bson:"priority"`
}

// Members returns the members for the resolved seeds. Priorities ascend
// towards the first seed, which makes it the preferred primary.
func Members(seeds []string) []Member {
	members := make([]Member, 0, len(seeds))
	for i, seed := range seeds {
		members = append(members, Member{
			ID:       i,
			Host:     seed,
			Priority: (len(seeds) - i) * 10,
		})
	}
	return members
}

// Initializer bootstraps the store.
type Initializer struct {
	// HostsFile resolves seed host names. Defaults to /etc/hosts.
	HostsFile string
	// PollInterval defaults to DefaultPrimaryPollInterval.
	PollInterval time.Duration
	// AdminUsername and AdminPassword authenticate the bootstrap commands
	// against the admin database. The credentials of the dialed options are
	// never used: they name the user the bootstrap is about to create.
	AdminUsername string
	AdminPassword string
	// Dial defaults to Dial.
	Dial   DialFunc
	Logger log.Logger
}

func (i *Initializer) logger() log.Logger {
	if i.Logger == nil {
		return log.Root()
	}
	return i.Logger
}

// dial connects with the bootstrap credentials.
func (i *Initializer) dial(ctx context.Context, o Options) (Conn, error) {
	o = o.WithCredentials(i.AdminUsername, i.AdminPassword)
	if i.Dial == nil {
		return Dial(ctx, o)
	}
	return i.Dial(ctx, o)
}

// Resolve maps the seeds through the hosts file.
func (i *Initializer) Resolve(seeds []string) ([]string, error) {
	path := i.HostsFile
	if path == "" {
		path = env.DefaultHostsFile
	}
	hosts, err := LoadHosts(path)
	if err != nil {
		return nil, err
	}
	return hosts.Resolve(seeds)
}

// InitiateReplicaSet initiates the replica set name over a direct connection
// to the first seed and blocks until member 0 is primary or ctx is done.
// Initiation is attempted exactly once.
func (i *Initializer) InitiateReplicaSet(ctx context.Context, o Options, name string) error {
	if len(o.Seeds) == 0 {
		return serrors.New("no store seeds configured")
	}
	resolved, err := i.Resolve(o.Seeds)
	if err != nil {
		return err
	}
	members := Members(resolved)
	logger := i.logger().New("replica_set", name)

	direct := o
	direct.Seeds = resolved[:1]
	direct.Direct = true
	conn, err := i.dial(ctx, direct)
	if err != nil {
		return err
	}
	defer conn.Close(context.WithoutCancel(ctx))

	cmd := bson.D{{Key: "replSetInitiate", Value: bson.D{
		{Key: "_id", Value: name},
		{Key: "members", Value: members},
	}}}
	var reply struct {
		OK float64 `bson:"ok"`
	}
	if err := conn.RunCommand(ctx, "admin", cmd, &reply); err != nil {
		return serrors.Wrap("initiating replica set", err, "replica_set", name,
			"members", resolved)
	}
	if reply.OK != 1 {
		return serrors.New("replica set initiation not acknowledged",
			"replica_set", name, "ok", reply.OK)
	}
	logger.Info("Replica set initiated", "members", resolved)

	interval := i.PollInterval
	if interval == 0 {
		interval = DefaultPrimaryPollInterval
	}
	var last string
	err = wait.PollUntilContextCancel(ctx, interval, true,
		func(ctx context.Context) (bool, error) {
			state, err := memberState(ctx, conn)
			if err != nil {
				logger.Debug("Replica set status unavailable", "err", err)
				return false, nil
			}
			last = state
			return state == statePrimary, nil
		})
	if err != nil {
		return serrors.Wrap("waiting for primary", err, "replica_set", name,
			"member", resolved[0], "state", last)
	}
	logger.Info("Replica set primary elected", "member", resolved[0])
	return nil
}

func memberState(ctx context.Context, conn Conn) (string, error) {
	var status struct {
		Members []struct {
			StateStr string `bson:"stateStr"`
		} `bson:"members"`
	}
	cmd := bson.D{{Key: "replSetGetStatus", Value: 1}}
	if err := conn.RunCommand(ctx, "admin", cmd, &status); err != nil {
		return "", err
	}
	if len(status.Members) == 0 {
		return "", serrors.New("replica set has no members")
	}
	return status.Members[0].StateStr, nil
}

// EnsureAdminUser creates user with the dbAdmin role on the database of o.
// A user that already exists is not an error.
func (i *Initializer) EnsureAdminUser(ctx context.Context, o Options,
	user, password string) error {

	conn, err := i.dial(ctx, o)
	if err != nil {
		return err
	}
	defer conn.Close(context.WithoutCancel(ctx))

	cmd := bson.D{
		{Key: "createUser", Value: user},
		{Key: "pwd", Value: password},
		{Key: "roles", Value: bson.A{
			bson.D{{Key: "role", Value: AdminRole}, {Key: "db", Value: o.Database}},
		}},
	}
	err = conn.RunCommand(ctx, o.Database, cmd, nil)
	switch {
	case err == nil:
		i.logger().Info("Store user created", "user", user, "db", o.Database)
		return nil
	case commandCode(err) == codeUserExists:
		i.logger().Info("Store user already exists", "user", user, "db", o.Database)
		return nil
	default:
		return serrors.Wrap("creating store user", err, "user", user, "db", o.Database)
	}
}

// EmitSeedList writes the resolved seeds, comma separated, to path.
func (i *Initializer) EmitSeedList(path string, seeds []string) error {
	resolved, err := i.Resolve(seeds)
	if err != nil {
		return err
	}
	if path == "" {
		path = env.DefaultSeedListPath
	}
	if err := os.WriteFile(path, []byte(strings.Join(resolved, ",")), 0o644); err != nil {
		return serrors.Wrap("writing seed list", err, "path", path)
	}
	i.logger().Info("Seed list written", "path", path, "seeds", resolved)
	return nil
}

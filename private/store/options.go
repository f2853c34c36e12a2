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

// Package store bootstraps and checks the document store backing the
// controller. The store is a MongoDB replica set; the package initiates it,
// creates the controller's database user, waits for it to accept commands
// and drops the controller database on clean restarts.
package store

import (
	"time"

	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/openflow-e2e/harness/private/env"
)

// Options describes a connection to the store.
type Options struct {
	// Seeds are the "host:port" members used to discover the replica set.
	Seeds []string
	// Username and Password authenticate against AuthSource. No
	// authentication is performed if Username is empty.
	Username string
	Password string
	// AuthSource defaults to Database.
	AuthSource string
	// Database is the controller database.
	Database    string
	ReplicaSet  string
	MaxPoolSize uint64
	MinPoolSize uint64
	// ServerSelectionTimeout bounds how long an operation waits for a
	// suitable member.
	ServerSelectionTimeout time.Duration
	// Direct connects to the first seed only, bypassing discovery. It is
	// required before the replica set is initiated.
	Direct bool
}

// FromConfig returns the options described by the store section of the
// harness configuration. Unset pool bounds take the defaults of the
// controller-side client.
func FromConfig(cfg env.Store) Options {
	maxPool, minPool := cfg.Pool(env.DefaultMaxPoolSize, env.DefaultMinPoolSize)
	return Options{
		Seeds:                  cfg.Seeds,
		Username:               cfg.Username,
		Password:               cfg.Password,
		Database:               cfg.Database,
		MaxPoolSize:            maxPool,
		MinPoolSize:            minPool,
		ServerSelectionTimeout: cfg.ServerSelectionTimeout.Duration,
	}
}

// WaiterOptions is FromConfig with the smaller pool defaults of the waiter.
func WaiterOptions(cfg env.Store) Options {
	o := FromConfig(cfg)
	o.MaxPoolSize, o.MinPoolSize = cfg.Pool(env.WaiterMaxPoolSize, env.WaiterMinPoolSize)
	return o
}

// WithCredentials returns a copy of o authenticating as user against the
// admin database. An empty user drops authentication.
func (o Options) WithCredentials(user, password string) Options {
	o.Username, o.Password, o.AuthSource = user, password, ""
	if user != "" {
		o.AuthSource = "admin"
	}
	return o
}

// ClientOptions maps o to driver options. Reads prefer the primary and both
// reads and writes are retried by the driver.
func (o Options) ClientOptions() *options.ClientOptions {
	co := options.Client().
		SetHosts(o.Seeds).
		SetReadPreference(readpref.PrimaryPreferred()).
		SetRetryReads(true).
		SetRetryWrites(true)
	if o.Direct {
		co.SetHosts(o.Seeds[:min(len(o.Seeds), 1)]).SetDirect(true)
	} else if o.ReplicaSet != "" {
		co.SetReplicaSet(o.ReplicaSet)
	}
	if o.Username != "" {
		source := o.AuthSource
		if source == "" {
			source = o.Database
		}
		co.SetAuth(options.Credential{
			Username:   o.Username,
			Password:   o.Password,
			AuthSource: source,
		})
	}
	if o.MaxPoolSize > 0 {
		co.SetMaxPoolSize(o.MaxPoolSize)
	}
	if o.MinPoolSize > 0 {
		co.SetMinPoolSize(o.MinPoolSize)
	}
	if o.ServerSelectionTimeout > 0 {
		co.SetServerSelectionTimeout(o.ServerSelectionTimeout)
	}
	return co
}

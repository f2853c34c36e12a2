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

// Package env contains the configuration shared by the harness runtime and
// the command line tools.
//
// Configuration is read in three layers: built-in defaults, an optional TOML
// file (pointed at by E2E_CONFIG), and environment variables. Environment
// variables always win. The MONGO_* variables are the ones the controller
// itself understands, so the harness and the controller agree on the store.
package env

import (
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/openflow-e2e/harness/pkg/log"
	"github.com/openflow-e2e/harness/pkg/private/serrors"
	"github.com/openflow-e2e/harness/pkg/private/util"
	"github.com/openflow-e2e/harness/private/config"
)

const (
	// DefaultDatabase is the database the controller persists its state in.
	DefaultDatabase = "napps"
	// DefaultReplicaSet is the replica-set name used by the store bootstrap.
	DefaultReplicaSet = "rs0"
	// DefaultHostsFile is the resolution table used for seed host names.
	DefaultHostsFile = "/etc/hosts"
	// DefaultSeedListPath is where the store initializer writes the seeds.
	DefaultSeedListPath = "/tmp/host_seeds.txt"
	// DefaultMaxPoolSize and DefaultMinPoolSize bound the fabric-side client.
	DefaultMaxPoolSize = 20
	DefaultMinPoolSize = 10
	// WaiterMaxPoolSize and WaiterMinPoolSize bound the store waiter client.
	WaiterMaxPoolSize = 6
	WaiterMinPoolSize = 3

	// DefaultBinary is the controller daemon executable.
	DefaultBinary = "kytosd"
	// DefaultPIDFile is the process-identity file written by the daemon.
	DefaultPIDFile = "/var/run/kytos/kytosd.pid"
	// DefaultAPIURL is the root of the controller REST surface.
	DefaultAPIURL = "http://127.0.0.1:8181/api"
	// DefaultControllerIP is the address switches dial for OpenFlow.
	DefaultControllerIP = "127.0.0.1"
	// DefaultOpenFlowPort is the OpenFlow listening port of the controller.
	DefaultOpenFlowPort = 6653
	// DefaultBasicFlows is the number of flows present on every switch after
	// a clean start: one LLDP flow and two coloring flows.
	DefaultBasicFlows = 3
	// DefaultStoreBackend selects the store backend passed to the daemon.
	DefaultStoreBackend = "mongodb"

	// DefaultTopology is the catalog entry used when nothing else is asked for.
	DefaultTopology = "ring3"
)

// Environment variable names.
const (
	EnvHostSeeds    = "MONGO_HOST_SEEDS"
	EnvHostsPorts   = "MONGO_HOSTS_PORTS"
	EnvUsername     = "MONGO_USERNAME"
	EnvPassword     = "MONGO_PASSWORD"
	EnvDatabase     = "MONGO_DBNAME"
	EnvMaxPoolSize  = "MONGO_MAX_POOLSIZE"
	EnvMinPoolSize  = "MONGO_MIN_POOLSIZE"
	EnvConfig       = "E2E_CONFIG"
	EnvTopology     = "E2E_TOPOLOGY"
	EnvTopologyFile = "E2E_TOPOLOGY_FILE"
	EnvReportDir    = "E2E_REPORT_DIR"
	EnvBasicFlows   = "E2E_BASIC_FLOWS"
	EnvLogLevel     = "E2E_LOG_LEVEL"

	// The bootstrap credentials follow the naming of the mongo image.
	EnvAdminUsername = "MONGO_INITDB_ROOT_USERNAME"
	EnvAdminPassword = "MONGO_INITDB_ROOT_PASSWORD"
)

var _ config.Config = (*Config)(nil)

// Config is the complete harness configuration.
type Config struct {
	Logging    log.Config `toml:"log,omitempty"`
	Store      Store      `toml:"store,omitempty"`
	Controller Controller `toml:"controller,omitempty"`
	Fabric     Fabric     `toml:"fabric,omitempty"`
	Timeouts   Timeouts   `toml:"timeouts,omitempty"`
	Report     Report     `toml:"report,omitempty"`
}

func (cfg *Config) InitDefaults() {
	cfg.Logging.Console.InitDefaults()
	config.InitAll(&cfg.Store, &cfg.Controller, &cfg.Fabric, &cfg.Timeouts, &cfg.Report)
}

func (cfg *Config) Validate() error {
	return config.ValidateAll(&cfg.Store, &cfg.Controller, &cfg.Fabric, &cfg.Timeouts,
		&cfg.Report)
}

func (cfg *Config) Sample(dst io.Writer, path config.Path, ctx config.CtxMap) {
	config.WriteSample(dst, path, ctx, &cfg.Store, &cfg.Controller, &cfg.Fabric,
		&cfg.Timeouts, &cfg.Report)
}

var _ config.Config = (*Store)(nil)

// Store describes how to reach the controller's document store.
type Store struct {
	// Seeds is the list of host:port seeds of the replica set.
	Seeds []string `toml:"seeds,omitempty"`
	// Username and Password authenticate against Database. The store
	// bootstrap creates this user.
	Username string `toml:"username,omitempty"`
	Password string `toml:"password,omitempty"`
	Database string `toml:"database,omitempty"`
	// AdminUsername and AdminPassword authenticate the bootstrap against the
	// admin database. Empty means the bootstrap runs unauthenticated, as on
	// a freshly started store.
	AdminUsername string `toml:"admin_username,omitempty"`
	AdminPassword string `toml:"admin_password,omitempty"`
	// ReplicaSet is the name given to the replica set on bootstrap.
	ReplicaSet string `toml:"replica_set,omitempty"`
	// MaxPoolSize and MinPoolSize bound the connection pool. Zero leaves
	// the choice to the client, see Pool.
	MaxPoolSize uint64 `toml:"max_pool_size,omitempty"`
	MinPoolSize uint64 `toml:"min_pool_size,omitempty"`
	// ServerSelectionTimeout bounds how long a single operation looks for
	// a suitable server.
	ServerSelectionTimeout util.DurWrap `toml:"server_selection_timeout,omitempty"`
	// HostsFile resolves seed host names to addresses.
	HostsFile string `toml:"hosts_file,omitempty"`
	// SeedListPath is where the resolved seed list is written.
	SeedListPath string `toml:"seed_list_path,omitempty"`
}

func (cfg *Store) InitDefaults() {
	if cfg.Database == "" {
		cfg.Database = DefaultDatabase
	}
	if cfg.ReplicaSet == "" {
		cfg.ReplicaSet = DefaultReplicaSet
	}
	if cfg.ServerSelectionTimeout.Duration == 0 {
		cfg.ServerSelectionTimeout.Duration = 30 * time.Second
	}
	if cfg.HostsFile == "" {
		cfg.HostsFile = DefaultHostsFile
	}
	if cfg.SeedListPath == "" {
		cfg.SeedListPath = DefaultSeedListPath
	}
}

func (cfg *Store) Validate() error {
	if cfg.MaxPoolSize != 0 && cfg.MinPoolSize > cfg.MaxPoolSize {
		return serrors.New("min_pool_size exceeds max_pool_size",
			"min", cfg.MinPoolSize, "max", cfg.MaxPoolSize)
	}
	for _, s := range cfg.Seeds {
		if s == "" {
			return serrors.New("empty store seed", "seeds", cfg.Seeds)
		}
	}
	return nil
}

// Pool returns the pool bounds, taking defMax and defMin for unset values.
// The minimum never exceeds the maximum.
func (cfg *Store) Pool(defMax, defMin uint64) (uint64, uint64) {
	maxSize, minSize := cfg.MaxPoolSize, cfg.MinPoolSize
	if maxSize == 0 {
		maxSize = defMax
	}
	if minSize == 0 {
		minSize = defMin
	}
	return maxSize, min(minSize, maxSize)
}

// Configured reports whether any store seed is known.
func (cfg *Store) Configured() bool {
	return len(cfg.Seeds) > 0
}

func (cfg *Store) Sample(dst io.Writer, _ config.Path, _ config.CtxMap) {
	config.WriteString(dst, storeSample)
}

func (cfg *Store) ConfigName() string {
	return "store"
}

var _ config.Config = (*Controller)(nil)

// Controller describes the supervised controller daemon.
type Controller struct {
	// Binary is the daemon executable, looked up in PATH.
	Binary string `toml:"binary,omitempty"`
	// PIDFile is the process-identity file the daemon writes.
	PIDFile string `toml:"pid_file,omitempty"`
	// APIURL is the root of the REST surface.
	APIURL string `toml:"api_url,omitempty"`
	// Address is the IP switches connect to.
	Address string `toml:"address,omitempty"`
	// OpenFlowPort is the port switches connect to.
	OpenFlowPort uint16 `toml:"openflow_port,omitempty"`
	// StoreBackend is passed to the daemon as its database backend. An empty
	// value runs the daemon without a store and disables database drops.
	StoreBackend string `toml:"store_backend,omitempty"`
	// BasicFlows is the number of flows every switch carries right after a
	// clean start.
	BasicFlows int `toml:"basic_flows,omitempty"`
	// StopGrace is how long a killed daemon may take to remove its PID file
	// before it is killed forcefully.
	StopGrace util.DurWrap `toml:"stop_grace,omitempty"`
	// ExtraArgs are appended verbatim to the daemon command line.
	ExtraArgs []string `toml:"extra_args,omitempty"`
}

func (cfg *Controller) InitDefaults() {
	if cfg.Binary == "" {
		cfg.Binary = DefaultBinary
	}
	if cfg.PIDFile == "" {
		cfg.PIDFile = DefaultPIDFile
	}
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	if cfg.Address == "" {
		cfg.Address = DefaultControllerIP
	}
	if cfg.OpenFlowPort == 0 {
		cfg.OpenFlowPort = DefaultOpenFlowPort
	}
	if cfg.BasicFlows == 0 {
		cfg.BasicFlows = DefaultBasicFlows
	}
	if cfg.StopGrace.Duration == 0 {
		cfg.StopGrace.Duration = 5 * time.Second
	}
}

func (cfg *Controller) Validate() error {
	if _, err := url.Parse(cfg.APIURL); err != nil {
		return serrors.Wrap("invalid api_url", err, "url", cfg.APIURL)
	}
	if cfg.BasicFlows < 0 {
		return serrors.New("basic_flows must not be negative", "value", cfg.BasicFlows)
	}
	if cfg.PIDFile == "" {
		return serrors.New("pid_file must be set")
	}
	return nil
}

func (cfg *Controller) Sample(dst io.Writer, _ config.Path, _ config.CtxMap) {
	config.WriteString(dst, controllerSample)
}

func (cfg *Controller) ConfigName() string {
	return "controller"
}

var _ config.Config = (*Fabric)(nil)

// Fabric selects the topology and the emulator tools.
type Fabric struct {
	// Topology is a catalog name.
	Topology string `toml:"topology,omitempty"`
	// TopologyFile, if set, is a YAML descriptor used instead of Topology.
	TopologyFile string `toml:"topology_file,omitempty"`
	// Vsctl, Ofctl and IP are the emulator tool executables.
	Vsctl string `toml:"vsctl,omitempty"`
	Ofctl string `toml:"ofctl,omitempty"`
	IP    string `toml:"ip,omitempty"`
	// CommandTimeout bounds every emulator command.
	CommandTimeout util.DurWrap `toml:"command_timeout,omitempty"`
}

func (cfg *Fabric) InitDefaults() {
	if cfg.Topology == "" {
		cfg.Topology = DefaultTopology
	}
	if cfg.Vsctl == "" {
		cfg.Vsctl = "ovs-vsctl"
	}
	if cfg.Ofctl == "" {
		cfg.Ofctl = "ovs-ofctl"
	}
	if cfg.IP == "" {
		cfg.IP = "ip"
	}
	if cfg.CommandTimeout.Duration == 0 {
		cfg.CommandTimeout.Duration = 30 * time.Second
	}
}

func (cfg *Fabric) Validate() error {
	if cfg.Topology == "" && cfg.TopologyFile == "" {
		return serrors.New("no topology configured")
	}
	return nil
}

func (cfg *Fabric) Sample(dst io.Writer, _ config.Path, _ config.CtxMap) {
	config.WriteString(dst, fabricSample)
}

func (cfg *Fabric) ConfigName() string {
	return "fabric"
}

var _ config.Config = (*Timeouts)(nil)

// Timeouts holds the deadlines and intervals of the readiness predicates.
type Timeouts struct {
	ControllerHealthy util.DurWrap `toml:"controller_healthy,omitempty"`
	HealthInterval    util.DurWrap `toml:"health_interval,omitempty"`
	SwitchesConnected util.DurWrap `toml:"switches_connected,omitempty"`
	LinksDiscovered   util.DurWrap `toml:"links_discovered,omitempty"`
	FlowInstalled     util.DurWrap `toml:"flow_installed,omitempty"`
	EVCActive         util.DurWrap `toml:"evc_active,omitempty"`
	Liveness          util.DurWrap `toml:"liveness,omitempty"`
	PollInterval      util.DurWrap `toml:"poll_interval,omitempty"`
	// Quiescence is the settle time after a clean restart during which the
	// controller runs its periodic LLDP pass.
	Quiescence util.DurWrap `toml:"quiescence,omitempty"`
	// HTTPRequest bounds every single REST call.
	HTTPRequest util.DurWrap `toml:"http_request,omitempty"`
}

func (cfg *Timeouts) InitDefaults() {
	initDur(&cfg.ControllerHealthy, 30*time.Second)
	initDur(&cfg.HealthInterval, 500*time.Millisecond)
	initDur(&cfg.SwitchesConnected, 30*time.Second)
	initDur(&cfg.LinksDiscovered, 60*time.Second)
	initDur(&cfg.FlowInstalled, 30*time.Second)
	initDur(&cfg.EVCActive, 90*time.Second)
	initDur(&cfg.Liveness, 30*time.Second)
	initDur(&cfg.PollInterval, time.Second)
	initDur(&cfg.Quiescence, 10*time.Second)
	initDur(&cfg.HTTPRequest, 30*time.Second)
}

func initDur(d *util.DurWrap, def time.Duration) {
	if d.Duration == 0 {
		d.Duration = def
	}
}

func (cfg *Timeouts) Validate() error {
	if cfg.HealthInterval.Duration > cfg.ControllerHealthy.Duration {
		return serrors.New("health_interval exceeds controller_healthy",
			"interval", cfg.HealthInterval, "deadline", cfg.ControllerHealthy)
	}
	if cfg.PollInterval.Duration <= 0 {
		return serrors.New("poll_interval must be positive", "value", cfg.PollInterval)
	}
	return nil
}

func (cfg *Timeouts) Sample(dst io.Writer, _ config.Path, _ config.CtxMap) {
	config.WriteString(dst, timeoutsSample)
}

func (cfg *Timeouts) ConfigName() string {
	return "timeouts"
}

var _ config.Config = (*Report)(nil)

// Report configures the artifacts written after a test binary finishes.
type Report struct {
	// Dir is the directory the report and the metrics textfile go to. An
	// empty value disables the report.
	Dir string `toml:"dir,omitempty"`
}

func (cfg *Report) InitDefaults() {}

func (cfg *Report) Validate() error { return nil }

func (cfg *Report) Sample(dst io.Writer, _ config.Path, _ config.CtxMap) {
	config.WriteString(dst, reportSample)
}

func (cfg *Report) ConfigName() string {
	return "report"
}

// Load builds the configuration from defaults, the TOML file named by
// E2E_CONFIG (if any) and the environment.
func Load() (*Config, error) {
	return LoadFrom("")
}

// LoadFrom is Load with an explicit configuration file. An empty file falls
// back to E2E_CONFIG.
func LoadFrom(file string) (*Config, error) {
	v := newViper()
	cfg := &Config{}
	if file == "" {
		file = v.GetString("config")
	}
	if file != "" {
		if err := config.LoadFile(file, cfg); err != nil {
			return nil, err
		}
	}
	applyEnv(v, cfg)
	cfg.InitDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	bind := func(key string, envs ...string) {
		// BindEnv only fails without a key.
		_ = v.BindEnv(append([]string{key}, envs...)...)
	}
	bind("config", EnvConfig)
	bind("store.seeds", EnvHostSeeds, EnvHostsPorts)
	bind("store.username", EnvUsername)
	bind("store.password", EnvPassword)
	bind("store.database", EnvDatabase)
	bind("store.admin_username", EnvAdminUsername)
	bind("store.admin_password", EnvAdminPassword)
	bind("store.max_pool_size", EnvMaxPoolSize)
	bind("store.min_pool_size", EnvMinPoolSize)
	bind("fabric.topology", EnvTopology)
	bind("fabric.topology_file", EnvTopologyFile)
	bind("report.dir", EnvReportDir)
	bind("controller.basic_flows", EnvBasicFlows)
	bind("log.console.level", EnvLogLevel)
	return v
}

func applyEnv(v *viper.Viper, cfg *Config) {
	if v.IsSet("store.seeds") {
		cfg.Store.Seeds = SplitSeeds(v.GetString("store.seeds"))
	}
	setString(v, "store.username", &cfg.Store.Username)
	setString(v, "store.password", &cfg.Store.Password)
	setString(v, "store.database", &cfg.Store.Database)
	setString(v, "store.admin_username", &cfg.Store.AdminUsername)
	setString(v, "store.admin_password", &cfg.Store.AdminPassword)
	if v.IsSet("store.max_pool_size") {
		cfg.Store.MaxPoolSize = v.GetUint64("store.max_pool_size")
	}
	if v.IsSet("store.min_pool_size") {
		cfg.Store.MinPoolSize = v.GetUint64("store.min_pool_size")
	}
	setString(v, "fabric.topology", &cfg.Fabric.Topology)
	setString(v, "fabric.topology_file", &cfg.Fabric.TopologyFile)
	setString(v, "report.dir", &cfg.Report.Dir)
	setString(v, "log.console.level", &cfg.Logging.Console.Level)
	if v.IsSet("controller.basic_flows") {
		cfg.Controller.BasicFlows = v.GetInt("controller.basic_flows")
	}
}

func setString(v *viper.Viper, key string, dst *string) {
	if v.IsSet(key) {
		*dst = v.GetString(key)
	}
}

// SplitSeeds splits a comma separated seed list, dropping blanks.
func SplitSeeds(raw string) []string {
	var seeds []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			seeds = append(seeds, s)
		}
	}
	return seeds
}

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

package env

const storeSample = `
# Seeds of the replica set as host:port. Overridden by MONGO_HOST_SEEDS or
# MONGO_HOSTS_PORTS. (default [])
seeds = []

# Credentials and database of the controller. Overridden by MONGO_USERNAME,
# MONGO_PASSWORD and MONGO_DBNAME. (default database "napps")
username = ""
password = ""
database = "napps"

# Credentials used by the store bootstrap against the admin database.
# Overridden by MONGO_INITDB_ROOT_USERNAME and MONGO_INITDB_ROOT_PASSWORD.
# Empty runs the bootstrap unauthenticated. (default "")
admin_username = ""
admin_password = ""

# Name of the replica set created on bootstrap. (default "rs0")
replica_set = "rs0"

# Connection pool bounds. Overridden by MONGO_MAX_POOLSIZE and
# MONGO_MIN_POOLSIZE. Unset bounds default to 20/10, and to 6/3 for the
# store waiter.
# max_pool_size = 20
# min_pool_size = 10

# Time a single operation waits for a suitable server. (default 30s)
server_selection_timeout = "30s"

# Hosts file used to resolve seed names. (default "/etc/hosts")
hosts_file = "/etc/hosts"

# Output of the resolved seed list. (default "/tmp/host_seeds.txt")
seed_list_path = "/tmp/host_seeds.txt"
`

const controllerSample = `
# Controller daemon executable. (default "kytosd")
binary = "kytosd"

# Process-identity file of the daemon. (default "/var/run/kytos/kytosd.pid")
pid_file = "/var/run/kytos/kytosd.pid"

# Root of the REST API. (default "http://127.0.0.1:8181/api")
api_url = "http://127.0.0.1:8181/api"

# Address and port switches connect to. (default 127.0.0.1:6653)
address = "127.0.0.1"
openflow_port = 6653

# Store backend given to the daemon. Empty runs it without a store.
# (default "")
store_backend = ""

# Flows present on every switch right after a clean start. Overridden by
# E2E_BASIC_FLOWS. (default 3)
basic_flows = 3

# Time a killed daemon gets to remove its PID file. (default 5s)
stop_grace = "5s"
`

const fabricSample = `
# Catalog topology. Overridden by E2E_TOPOLOGY. (default "ring3")
topology = "ring3"

# YAML descriptor used instead of the catalog. Overridden by
# E2E_TOPOLOGY_FILE. (default "")
topology_file = ""

# Emulator tools. (default "ovs-vsctl", "ovs-ofctl", "ip")
vsctl = "ovs-vsctl"
ofctl = "ovs-ofctl"
ip = "ip"

# Upper bound for a single emulator command. (default 30s)
command_timeout = "30s"
`

const timeoutsSample = `
# Deadline and poll interval of the controller health wait. (default 30s, 500ms)
controller_healthy = "30s"
health_interval = "500ms"

# Deadline for every switch to open its control channel. (default 30s)
switches_connected = "30s"

# Deadline for the controller to discover the expected links. (default 1m)
links_discovered = "1m0s"

# Deadline for a flow to appear in a switch flow table. (default 30s)
flow_installed = "30s"

# Deadline for a scheduled circuit to activate. (default 1m30s)
evc_active = "1m30s"

# Deadline for an interface liveness status change. (default 30s)
liveness = "30s"

# Poll interval of all waits except the health wait. (default 1s)
poll_interval = "1s"

# Settle time after a clean restart. (default 10s)
quiescence = "10s"

# Upper bound for a single REST call. (default 30s)
http_request = "30s"
`

const reportSample = `
# Directory for e2e-report.md and e2e-metrics.prom. Overridden by
# E2E_REPORT_DIR. Empty disables the report. (default "")
dir = ""
`

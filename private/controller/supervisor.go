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

// Package controller supervises the controller daemon under test. The
// supervisor owns the single daemon of the host: it kills residual
// instances, optionally resets the controller's persistent state, launches
// the daemon and waits until its health endpoint reports it running.
//
// The supervised daemon moves through the following states:
//
//	Unstarted --Start--> Starting --healthy--> Running
//	Starting/Running --timeout or crash--> Failed
//	any --Stop--> Stopping --> Unstarted
package controller

import (
	"context"
	"errors"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sys/unix"
	"k8s.io/apimachinery/pkg/util/wait"

	"github.com/openflow-e2e/harness/pkg/log"
	"github.com/openflow-e2e/harness/pkg/private/serrors"
	"github.com/openflow-e2e/harness/private/api"
	"github.com/openflow-e2e/harness/private/env"
	"github.com/openflow-e2e/harness/private/fabric"
)

const pidPollInterval = 100 * time.Millisecond

var (
	// ErrBusy is returned if Start is called while a transition is ongoing.
	ErrBusy = serrors.New("controller transition in progress")
	// ErrUnhealthy is returned if the controller did not report running in
	// time.
	ErrUnhealthy = serrors.New("controller not healthy")
)

// State is the state of the supervised daemon.
type State int

const (
	Unstarted State = iota
	Starting
	Running
	Stopping
	Failed
)

func (s State) String() string {
	switch s {
	case Unstarted:
		return "unstarted"
	case Starting:
		return "starting"
	case Running:
		return "running"
	case Stopping:
		return "stopping"
	case Failed:
		return "failed"
	default:
		return "unknown(" + strconv.Itoa(int(s)) + ")"
	}
}

// FlowWiper removes every flow from every switch of the current fabric.
type FlowWiper interface {
	WipeFlows(ctx context.Context) error
}

// StoreDropper drops the controller database.
type StoreDropper interface {
	DropDatabase(ctx context.Context) error
}

// HealthChecker reports the health status string of the controller.
type HealthChecker interface {
	Health(ctx context.Context) (string, error)
}

// StartOptions select how the daemon is (re)started.
type StartOptions struct {
	// CleanConfig drops the controller database and wipes all flow tables
	// before launching.
	CleanConfig bool
	// EnableAll starts the daemon with all installed applications enabled.
	EnableAll bool
	// DelFlows wipes all flow tables before launching.
	DelFlows bool
	// Port overrides the daemon's API port. Zero keeps the default.
	Port uint16
	// StoreBackend overrides the configured store backend.
	StoreBackend string
}

// Config configures the supervisor.
type Config struct {
	Binary         string
	PIDFile        string
	StoreBackend   string
	ExtraArgs      []string
	StopGrace      time.Duration
	HealthDeadline time.Duration
	HealthInterval time.Duration
}

// ConfigFrom derives the supervisor configuration from the harness
// configuration.
func ConfigFrom(c env.Controller, t env.Timeouts) Config {
	return Config{
		Binary:         c.Binary,
		PIDFile:        c.PIDFile,
		StoreBackend:   c.StoreBackend,
		ExtraArgs:      c.ExtraArgs,
		StopGrace:      c.StopGrace.Duration,
		HealthDeadline: t.ControllerHealthy.Duration,
		HealthInterval: t.HealthInterval.Duration,
	}
}

// InitDefaults populates unset fields.
func (c *Config) InitDefaults() {
	if c.Binary == "" {
		c.Binary = env.DefaultBinary
	}
	if c.PIDFile == "" {
		c.PIDFile = env.DefaultPIDFile
	}
	if c.StopGrace == 0 {
		c.StopGrace = 5 * time.Second
	}
	if c.HealthDeadline == 0 {
		c.HealthDeadline = 30 * time.Second
	}
	if c.HealthInterval == 0 {
		c.HealthInterval = 500 * time.Millisecond
	}
}

// Supervisor supervises the controller daemon.
type Supervisor struct {
	Config Config
	Runner fabric.Runner
	Health HealthChecker
	// Store is optional. Without it clean starts do not drop the database.
	Store StoreDropper
	// Flows is the fabric whose switches are wiped on clean starts. Optional.
	Flows FlowWiper
	// Kill terminates a residual daemon by PID. Defaults to KillProcess.
	Kill   func(pid int) error
	Logger log.Logger

	mu    sync.Mutex
	state State
}

// New returns a supervisor running commands on the local host.
func New(cfg Config, health HealthChecker, logger log.Logger) *Supervisor {
	cfg.InitDefaults()
	return &Supervisor{
		Config: cfg,
		Runner: fabric.ExecRunner{Timeout: cfg.HealthDeadline, Logger: logger},
		Health: health,
		Kill:   KillProcess,
		Logger: logger,
	}
}

// KillProcess sends SIGKILL to pid. A process that is already gone is not
// an error.
func KillProcess(pid int) error {
	err := unix.Kill(pid, unix.SIGKILL)
	if errors.Is(err, unix.ESRCH) {
		return nil
	}
	return err
}

func (s *Supervisor) logger() log.Logger {
	if s.Logger == nil {
		return log.Root()
	}
	return s.Logger
}

// State returns the current state.
func (s *Supervisor) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Supervisor) setState(st State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != st {
		s.logger().Debug("Controller state changed", "from", s.state, "to", st)
	}
	s.state = st
}

// Args returns the daemon command line arguments for opts.
func (s *Supervisor) Args(opts StartOptions) []string {
	var args []string
	if backend := s.backend(opts); backend != "" {
		args = append(args, "--database", backend)
	}
	if opts.Port != 0 {
		args = append(args, "--port", strconv.Itoa(int(opts.Port)))
	}
	if opts.EnableAll {
		args = append(args, "-E")
	}
	return append(args, s.Config.ExtraArgs...)
}

func (s *Supervisor) backend(opts StartOptions) string {
	if opts.StoreBackend != "" {
		return opts.StoreBackend
	}
	return s.Config.StoreBackend
}

// Start (re)starts the daemon and waits until it is healthy. A failed start
// leaves the supervisor in the Failed state and is not retried.
func (s *Supervisor) Start(ctx context.Context, opts StartOptions) error {
	s.mu.Lock()
	if s.state == Starting || s.state == Stopping {
		st := s.state
		s.mu.Unlock()
		return serrors.Join(ErrBusy, nil, "state", st)
	}
	s.mu.Unlock()

	if err := s.Stop(ctx); err != nil {
		s.setState(Failed)
		return err
	}
	s.setState(Starting)
	if err := s.start(ctx, opts); err != nil {
		s.setState(Failed)
		return err
	}
	if err := s.WaitHealthy(ctx, s.Config.HealthDeadline); err != nil {
		return err
	}
	return nil
}

func (s *Supervisor) start(ctx context.Context, opts StartOptions) error {
	logger := s.logger()
	if opts.CleanConfig && s.backend(opts) != "" && s.Store != nil {
		if err := s.Store.DropDatabase(ctx); err != nil {
			return serrors.Wrap("resetting controller database", err)
		}
	}
	if (opts.CleanConfig || opts.DelFlows) && s.Flows != nil {
		if err := s.Flows.WipeFlows(ctx); err != nil {
			return serrors.Wrap("wiping flow tables", err)
		}
	}
	args := s.Args(opts)
	logger.Info("Starting controller", "binary", s.Config.Binary, "args", args,
		"clean", opts.CleanConfig)
	if _, err := s.Runner.Run(ctx, s.Config.Binary, args...); err != nil {
		return serrors.Wrap("launching controller", err, "binary", s.Config.Binary,
			"args", args)
	}
	return nil
}

// Stop terminates the daemon and waits for its PID file to disappear. A PID
// file that outlives the grace period is treated as residual state: the
// recorded process is killed and the file removed. Stop is idempotent.
func (s *Supervisor) Stop(ctx context.Context) error {
	s.setState(Stopping)
	logger := s.logger()
	if _, err := s.Runner.Run(ctx, "pkill", "-f", s.Config.Binary); err != nil {
		// pkill fails when nothing matched.
		logger.Debug("No controller process terminated", "err", err)
	}
	err := wait.PollUntilContextTimeout(ctx, pidPollInterval, s.Config.StopGrace, true,
		func(context.Context) (bool, error) {
			return !exists(s.Config.PIDFile), nil
		})
	if err == nil {
		s.setState(Unstarted)
		return nil
	}
	if ctx.Err() != nil {
		s.setState(Failed)
		return serrors.Wrap("stopping controller", ctx.Err())
	}
	if err := s.forceKill(); err != nil {
		s.setState(Failed)
		return err
	}
	s.setState(Unstarted)
	return nil
}

func (s *Supervisor) forceKill() error {
	logger := s.logger()
	raw, err := os.ReadFile(s.Config.PIDFile)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return serrors.Wrap("reading PID file", err, "file", s.Config.PIDFile)
	}
	if pid, perr := strconv.Atoi(strings.TrimSpace(string(raw))); perr == nil && pid > 0 {
		logger.Info("Killing residual controller", "pid", pid, "file", s.Config.PIDFile)
		kill := s.Kill
		if kill == nil {
			kill = KillProcess
		}
		if err := kill(pid); err != nil {
			return serrors.Wrap("killing residual controller", err, "pid", pid)
		}
	}
	if err := os.Remove(s.Config.PIDFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return serrors.Wrap("removing PID file", err, "file", s.Config.PIDFile)
	}
	return nil
}

// WaitHealthy polls the health endpoint until it reports running. On
// timeout the supervisor is marked Failed and the last observation is part
// of the error. A zero deadline uses the configured one.
func (s *Supervisor) WaitHealthy(ctx context.Context, deadline time.Duration) error {
	if deadline == 0 {
		deadline = s.Config.HealthDeadline
	}
	var (
		last    string
		lastErr error
		start   = time.Now()
	)
	err := wait.PollUntilContextTimeout(ctx, s.Config.HealthInterval, deadline, true,
		func(ctx context.Context) (bool, error) {
			last, lastErr = s.Health.Health(ctx)
			return lastErr == nil && last == api.StatusRunning, nil
		})
	if err != nil {
		s.setState(Failed)
		errCtx := []any{"deadline", deadline, "status", last}
		if lastErr != nil {
			errCtx = append(errCtx, "last_error", lastErr)
		}
		return serrors.Join(ErrUnhealthy, err, errCtx...)
	}
	s.setState(Running)
	s.logger().Info("Controller healthy", "took", time.Since(start))
	return nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

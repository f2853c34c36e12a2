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
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"

	"github.com/openflow-e2e/harness/pkg/log"
	"github.com/openflow-e2e/harness/pkg/private/serrors"
)

// Runner executes an external command and returns its standard output.
// Implementations return the output collected so far together with the
// error when the command fails.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// DefaultWaitDelay is how long ExecRunner keeps reading output after the
// command exited.
const DefaultWaitDelay = time.Second

// ExecRunner runs commands on the local host.
type ExecRunner struct {
	// Timeout bounds a single command. Zero means no bound besides ctx.
	Timeout time.Duration
	// WaitDelay bounds the wait for output pipes after the command exited,
	// which daemons forked by the command keep open. Zero means
	// DefaultWaitDelay.
	WaitDelay time.Duration
	// Logger receives one debug line per command. Optional.
	Logger log.Logger
}

func (r ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = r.WaitDelay
	if cmd.WaitDelay == 0 {
		cmd.WaitDelay = DefaultWaitDelay
	}
	start := time.Now()
	err := cmd.Run()
	if errors.Is(err, exec.ErrWaitDelay) {
		// The command succeeded, a descendant still holds its output.
		err = nil
	}
	if r.Logger != nil {
		r.Logger.Debug("Command executed", "cmd", cmd.String(), "took", time.Since(start),
			"err", err)
	}
	if err != nil {
		return stdout.Bytes(), serrors.Wrap("command failed", err, "cmd", cmd.String(),
			"stderr", strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}

// lines splits command output into trimmed non-empty lines.
func lines(out []byte) []string {
	var res []string
	for _, l := range strings.Split(string(out), "\n") {
		if l = strings.TrimSpace(l); l != "" {
			res = append(res, l)
		}
	}
	return res
}

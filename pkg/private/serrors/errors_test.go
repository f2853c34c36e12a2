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

package serrors_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/openflow-e2e/harness/pkg/private/serrors"
)

type timeoutErr struct{ timeout bool }

func (e timeoutErr) Error() string { return "to" }
func (e timeoutErr) Timeout() bool { return e.timeout }

func TestIsTimeout(t *testing.T) {
	assert.False(t, serrors.IsTimeout(serrors.New("no timeout")))
	assert.True(t, serrors.IsTimeout(serrors.Wrap("wrapped", timeoutErr{timeout: true})))
	assert.False(t, serrors.IsTimeout(serrors.Wrap("wrapped", timeoutErr{})))
	assert.True(t, serrors.IsTimeout(context.DeadlineExceeded))
}

func TestErrorString(t *testing.T) {
	testCases := map[string]struct {
		Err      error
		Expected string
	}{
		"new without context": {
			Err:      serrors.New("controller not healthy"),
			Expected: "controller not healthy",
		},
		"new with sorted context": {
			Err:      serrors.New("switch not connected", "switch", "s2", "dpid", "00:01"),
			Expected: "switch not connected {dpid=00:01; switch=s2}",
		},
		"wrap": {
			Err:      serrors.Wrap("stopping", errors.New("boom"), "pid", 42),
			Expected: "stopping {pid=42}: boom",
		},
		"join": {
			Err:      serrors.Join(errors.New("sentinel"), errors.New("cause"), "k", "v"),
			Expected: "sentinel {k=v}: cause",
		},
	}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.Expected, tc.Err.Error())
		})
	}
}

func TestIs(t *testing.T) {
	sentinel := errors.New("sentinel")
	cause := errors.New("cause")

	assert.ErrorIs(t, serrors.Wrap("msg", cause), cause)
	assert.ErrorIs(t, serrors.WrapNoStack("msg", cause), cause)
	joined := serrors.Join(sentinel, cause)
	assert.ErrorIs(t, joined, sentinel)
	assert.ErrorIs(t, joined, cause)
	assert.Nil(t, serrors.Join(nil, nil))
	assert.ErrorIs(t, serrors.Join(nil, cause), cause)
}

func TestStackTrace(t *testing.T) {
	err := serrors.New("with stack")
	var st interface{ StackTrace() serrors.StackTrace }
	require.True(t, errors.As(err, &st))
	assert.NotEmpty(t, st.StackTrace())

	noStack := serrors.WrapNoStack("no stack", errors.New("x"))
	require.True(t, errors.As(noStack, &st))
	assert.Empty(t, st.StackTrace())
}

func TestList(t *testing.T) {
	var errs serrors.List
	assert.NoError(t, errs.ToError())

	first := errors.New("first")
	errs = append(errs, first, errors.New("second"))
	err := errs.ToError()
	assert.EqualError(t, err, "[ first; second ]")
	assert.ErrorIs(t, err, first)

	enc := zapcore.NewMapObjectEncoder()
	require.NoError(t, enc.AddArray("errs", errs))
	assert.Len(t, enc.Fields["errs"], 2)
}

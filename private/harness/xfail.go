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

package harness

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"testing"
)

// TB is the part of testing.TB available to the body of ExpectFailure. It
// satisfies the TestingT interfaces of testify's assert and require.
type TB interface {
	Helper()
	Name() string
	Context() context.Context
	Error(args ...any)
	Errorf(format string, args ...any)
	Fatal(args ...any)
	Fatalf(format string, args ...any)
	Fail()
	FailNow()
	Failed() bool
	Log(args ...any)
	Logf(format string, args ...any)
}

// ExpectFailure runs body and inverts its verdict: a failing body is an
// expected failure and passes t, a passing body fails t. The body must
// report through the TB it is given, not through t.
func ExpectFailure(t testing.TB, reason string, body func(TB)) {
	t.Helper()
	xt := &expectT{parent: t}
	var panicked any
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer func() { panicked = recover() }()
		body(xt)
	}()
	<-done
	if panicked != nil {
		panic(panicked)
	}

	r := activeReport()
	if r != nil {
		r.Track(t)
	}
	if xt.Failed() {
		t.Logf("XFAIL: %s: %s", reason, strings.Join(xt.messages(), "; "))
		if r != nil {
			r.mark(t, XFail, reason)
		}
		return
	}
	if r != nil {
		r.mark(t, XPass, reason)
	}
	t.Errorf("XPASS: %s: expected failure did not occur", reason)
}

// expectT records failures instead of failing the parent test.
type expectT struct {
	parent testing.TB

	mu     sync.Mutex
	failed bool
	msgs   []string
}

func (x *expectT) Helper()                  { x.parent.Helper() }
func (x *expectT) Name() string             { return x.parent.Name() }
func (x *expectT) Context() context.Context { return x.parent.Context() }

func (x *expectT) Log(args ...any) { x.parent.Log(args...) }

func (x *expectT) Logf(format string, args ...any) { x.parent.Logf(format, args...) }

func (x *expectT) Error(args ...any) {
	x.record(fmt.Sprint(args...))
}

func (x *expectT) Errorf(format string, args ...any) {
	x.record(fmt.Sprintf(format, args...))
}

func (x *expectT) Fatal(args ...any) {
	x.record(fmt.Sprint(args...))
	runtime.Goexit()
}

func (x *expectT) Fatalf(format string, args ...any) {
	x.record(fmt.Sprintf(format, args...))
	runtime.Goexit()
}

func (x *expectT) Fail() {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.failed = true
}

func (x *expectT) FailNow() {
	x.Fail()
	runtime.Goexit()
}

func (x *expectT) Failed() bool {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.failed
}

func (x *expectT) record(msg string) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.failed = true
	x.msgs = append(x.msgs, strings.TrimSpace(msg))
}

func (x *expectT) messages() []string {
	x.mu.Lock()
	defer x.mu.Unlock()
	return append([]string(nil), x.msgs...)
}

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

// Package serrors provides errors that carry key/value context. The context
// is rendered in the error string and, when the error is logged through
// pkg/log, as structured zap fields:
//
//	return serrors.Wrap("starting controller", err, "pidfile", path, "state", state)
//
// All returned errors support errors.Is and errors.As on their cause.
package serrors

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type ctxPair struct {
	Key   string
	Value any
}

// info is shared by the two error implementations of this package.
type info struct {
	ctx   []ctxPair
	cause error
	stack *stack
}

func newInfo(cause error, addStack bool, errCtx []any) info {
	ctx := make([]ctxPair, 0, len(errCtx)/2)
	for i := 0; i+1 < len(errCtx); i += 2 {
		ctx = append(ctx, ctxPair{Key: fmt.Sprint(errCtx[i]), Value: errCtx[i+1]})
	}
	sort.SliceStable(ctx, func(a, b int) bool { return ctx[a].Key < ctx[b].Key })
	i := info{ctx: ctx, cause: cause}
	if addStack && !hasStack(cause) {
		i.stack = callers()
	}
	return i
}

func hasStack(err error) bool {
	var b *basicError
	var j *joinedError
	return errors.As(err, &b) || errors.As(err, &j)
}

func (i info) suffix() string {
	var sb strings.Builder
	if len(i.ctx) != 0 {
		sb.WriteString(" {")
		for n, p := range i.ctx {
			if n != 0 {
				sb.WriteString("; ")
			}
			fmt.Fprintf(&sb, "%s=%v", p.Key, p.Value)
		}
		sb.WriteString("}")
	}
	if i.cause != nil {
		fmt.Fprintf(&sb, ": %s", i.cause)
	}
	return sb.String()
}

func (i info) marshalLogObject(enc zapcore.ObjectEncoder) error {
	if i.cause != nil {
		if m, ok := i.cause.(zapcore.ObjectMarshaler); ok {
			if err := enc.AddObject("cause", m); err != nil {
				return err
			}
		} else {
			enc.AddString("cause", i.cause.Error())
		}
	}
	if i.stack != nil {
		if err := enc.AddArray("stacktrace", i.stack); err != nil {
			return err
		}
	}
	for _, p := range i.ctx {
		zap.Any(p.Key, p.Value).AddTo(enc)
	}
	return nil
}

// StackTrace returns the attached stack trace if there is any.
func (i info) StackTrace() StackTrace {
	if i.stack == nil {
		return nil
	}
	return i.stack.StackTrace()
}

type basicError struct {
	info
	msg string
}

func (e *basicError) Error() string {
	return e.msg + e.info.suffix()
}

func (e *basicError) Unwrap() error {
	return e.cause
}

// MarshalLogObject implements zapcore.ObjectMarshaler.
func (e *basicError) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("msg", e.msg)
	return e.info.marshalLogObject(enc)
}

type joinedError struct {
	info
	err error
}

func (e *joinedError) Error() string {
	return e.err.Error() + e.info.suffix()
}

func (e *joinedError) Unwrap() []error {
	if e.cause == nil {
		return []error{e.err}
	}
	return []error{e.err, e.cause}
}

// MarshalLogObject implements zapcore.ObjectMarshaler.
func (e *joinedError) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("msg", e.err.Error())
	return e.info.marshalLogObject(enc)
}

// New creates a new error with the given message and context, plus a stack
// dump. Sentinel errors should be created with errors.New instead.
func New(msg string, errCtx ...any) error {
	return &basicError{info: newInfo(nil, true, errCtx), msg: msg}
}

// Wrap returns an error with the given message that wraps cause and carries
// the given context. A stack dump is added unless cause already has one.
func Wrap(msg string, cause error, errCtx ...any) error {
	return &basicError{info: newInfo(cause, true, errCtx), msg: msg}
}

// WrapNoStack is like Wrap but never records a stack dump.
func WrapNoStack(msg string, cause error, errCtx ...any) error {
	return &basicError{info: newInfo(cause, false, errCtx), msg: msg}
}

// Join associates err (typically a sentinel) with an optional cause and
// context. errors.Is matches both err and cause. Join(nil, nil) is nil.
func Join(err, cause error, errCtx ...any) error {
	if err == nil && cause == nil {
		return nil
	}
	if err == nil {
		err = cause
		cause = nil
	}
	return &joinedError{info: newInfo(cause, true, errCtx), err: err}
}

// IsTimeout returns whether err is or is caused by a timeout error.
func IsTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}

// List is a slice of errors.
type List []error

// Error implements the error interface.
func (e List) Error() string {
	s := make([]string, 0, len(e))
	for _, err := range e {
		s = append(s, err.Error())
	}
	return fmt.Sprintf("[ %s ]", strings.Join(s, "; "))
}

// ToError returns the object as error interface implementation. An empty
// list is nil.
func (e List) ToError() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// Unwrap makes errors.Is and errors.As search all elements.
func (e List) Unwrap() []error {
	return e
}

// MarshalLogArray implements zapcore.ArrayMarshaler.
func (e List) MarshalLogArray(ae zapcore.ArrayEncoder) error {
	for _, err := range e {
		if m, ok := err.(zapcore.ObjectMarshaler); ok {
			if err := ae.AppendObject(m); err != nil {
				return err
			}
		} else {
			ae.AppendString(err.Error())
		}
	}
	return nil
}

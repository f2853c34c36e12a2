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

package config_test

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openflow-e2e/harness/private/config"
)

type section struct {
	Name  string `toml:"name"`
	Count int    `toml:"count"`
}

func (s *section) InitDefaults() {
	if s.Count == 0 {
		s.Count = 3
	}
}

func (s *section) Validate() error {
	if s.Name == "" {
		return errors.New("name missing")
	}
	return nil
}

func (s *section) Sample(dst io.Writer, _ config.Path, _ config.CtxMap) {
	config.WriteString(dst, "\nname = \"ring3\"\ncount = 3\n")
}

func (s *section) ConfigName() string { return "section" }

func TestDecodeRejectsUnknownFields(t *testing.T) {
	var s section
	require.NoError(t, config.Decode([]byte("name = \"a\"\ncount = 2\n"), &s))
	assert.Equal(t, section{Name: "a", Count: 2}, s)
	assert.Error(t, config.Decode([]byte("unknown = 1\n"), &s))
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "cfg.toml")
	require.NoError(t, os.WriteFile(file, []byte("name = \"linear10\"\n"), 0o644))

	var s section
	require.NoError(t, config.LoadFile(file, &s))
	config.InitAll(&s)
	assert.Equal(t, section{Name: "linear10", Count: 3}, s)
	assert.NoError(t, config.ValidateAll(&s))
	assert.Error(t, config.ValidateAll(&section{}))
	assert.Error(t, config.LoadFile(filepath.Join(dir, "missing.toml"), &s))
}

func TestWriteSample(t *testing.T) {
	var buf bytes.Buffer
	config.WriteSample(&buf, nil, nil, &section{})
	assert.Equal(t, "\n[section]\n    name = \"ring3\"\n    count = 3\n", buf.String())

	var s struct {
		Section section `toml:"section"`
	}
	require.NoError(t, config.Decode(buf.Bytes(), &s))
	assert.Equal(t, "ring3", s.Section.Name)
}

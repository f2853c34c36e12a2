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

package config

import (
	"fmt"
	"io"
	"strings"
)

// CtxMap contains the context for sample generation.
type CtxMap map[string]string

// Path is the header of a config block possibly consisting of multiple parts.
type Path []string

// Extend creates a copy of the path with string s appended.
func (p Path) Extend(s string) Path {
	c := append(Path(nil), p...)
	return append(c, s)
}

// Sampler defines the sample generation part of Config.
type Sampler interface {
	// Sample writes a commented sample config to dst. Sample panics if
	// writing fails.
	Sample(dst io.Writer, path Path, ctx CtxMap)
}

// TableSampler is a Sampler that is rendered as a named TOML table.
type TableSampler interface {
	Sampler
	ConfigName() string
}

// WriteSample renders the samplers in order. Table samplers get a header
// derived from path and their body is indented. It panics if dst fails.
func WriteSample(dst io.Writer, path Path, ctx CtxMap, samplers ...Sampler) {
	var body strings.Builder
	for _, sampler := range samplers {
		body.Reset()
		ts, ok := sampler.(TableSampler)
		if !ok {
			sampler.Sample(&body, path, ctx)
			WriteString(dst, body.String())
			continue
		}
		table := path.Extend(ts.ConfigName())
		WriteString(dst, "\n["+strings.Join(table, ".")+"]")
		ts.Sample(&body, table, ctx)
		WriteString(dst, indent(body.String()))
	}
}

// WriteString writes s to dst. It panics if dst fails.
func WriteString(dst io.Writer, s string) {
	if _, err := io.WriteString(dst, s); err != nil {
		panic(fmt.Sprintf("writing sample: %s", err))
	}
}

// indent prefixes every non-empty line of s with four spaces.
func indent(s string) string {
	var out strings.Builder
	for line := range strings.Lines(s) {
		line = strings.TrimSuffix(line, "\n")
		if line != "" {
			out.WriteString("    ")
			out.WriteString(line)
		}
		out.WriteByte('\n')
	}
	return out.String()
}

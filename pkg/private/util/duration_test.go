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

package util_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openflow-e2e/harness/pkg/private/util"
)

func TestParseDuration(t *testing.T) {
	testCases := map[string]struct {
		Input     string
		Expected  time.Duration
		assertErr assert.ErrorAssertionFunc
	}{
		"seconds":      {Input: "30s", Expected: 30 * time.Second, assertErr: assert.NoError},
		"milliseconds": {Input: "500ms", Expected: 500 * time.Millisecond, assertErr: assert.NoError},
		"days":         {Input: "2d", Expected: 48 * time.Hour, assertErr: assert.NoError},
		"garbage":      {Input: "soon", assertErr: assert.Error},
		"bad days":     {Input: "xd", assertErr: assert.Error},
	}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			d, err := util.ParseDuration(tc.Input)
			tc.assertErr(t, err)
			assert.Equal(t, tc.Expected, d)
		})
	}
}

func TestDurWrapText(t *testing.T) {
	var d util.DurWrap
	require.NoError(t, d.UnmarshalText([]byte("1m30s")))
	assert.Equal(t, 90*time.Second, d.Duration)
	raw, err := d.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "1m30s", string(raw))
	assert.Equal(t, "1d", util.DurWrap{Duration: 24 * time.Hour}.String())
}

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
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/openflow-e2e/harness/pkg/metrics"
	"github.com/openflow-e2e/harness/pkg/private/serrors"
	"github.com/openflow-e2e/harness/private/readiness"
)

// Report file names inside the report directory.
const (
	ReportFile  = "e2e-report.md"
	MetricsFile = "e2e-metrics.prom"
)

// Outcome is the result of a tracked test.
type Outcome string

const (
	Pass Outcome = "pass"
	Fail Outcome = "fail"
	Skip Outcome = "skip"
	// XFail is a failure that was expected. It counts as passed.
	XFail Outcome = "xfail"
	// XPass is an unexpected success of a test expected to fail. It counts
	// as failed.
	XPass Outcome = "xpass"
)

// Record is the report entry of one test.
type Record struct {
	Name    string
	Start   time.Time
	End     time.Time
	Outcome Outcome
	Reason  string
}

// Duration is the wall time of the test.
func (r Record) Duration() time.Duration {
	return r.End.Sub(r.Start)
}

// Report collects per-test timestamps and outcomes of a test binary run.
type Report struct {
	RunID    uuid.UUID
	Registry *prometheus.Registry

	mu        sync.Mutex
	records   []Record
	index     map[string]int
	overrides map[string]Record

	duration  *prometheus.GaugeVec
	total     *prometheus.CounterVec
	readiness *readiness.Metrics
}

// NewReport returns an empty report with its own metrics registry.
func NewReport() *Report {
	reg := prometheus.NewRegistry()
	f := metrics.ApplyOptions(metrics.WithRegistry(reg)).Auto()
	r := &Report{
		RunID:     uuid.New(),
		Registry:  reg,
		index:     make(map[string]int),
		overrides: make(map[string]Record),
		duration: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "harness_test_duration_seconds",
			Help: "Wall time of each test.",
		}, []string{"test", "outcome"}),
		total: f.NewCounterVec(prometheus.CounterOpts{
			Name: "harness_tests_total",
			Help: "Number of tests by outcome.",
		}, []string{"outcome"}),
		readiness: readiness.NewMetrics(metrics.WithRegistry(reg)),
	}
	f.NewGaugeVec(prometheus.GaugeOpts{
		Name: "harness_run_info",
		Help: "Identifies the test run.",
	}, []string{"run_id"}).WithLabelValues(r.RunID.String()).Set(1)
	return r
}

func (r *Report) readinessMetrics() *readiness.Metrics {
	return r.readiness
}

// Track records the start of t now and its end and outcome when t
// completes. Tracking a test twice has no effect.
func (r *Report) Track(t testing.TB) {
	r.mu.Lock()
	defer r.mu.Unlock()
	name := t.Name()
	if _, ok := r.index[name]; ok {
		return
	}
	r.index[name] = len(r.records)
	r.records = append(r.records, Record{Name: name, Start: time.Now()})
	t.Cleanup(func() { r.finish(t) })
}

func (r *Report) finish(t testing.TB) {
	outcome := Pass
	switch {
	case t.Skipped():
		outcome = Skip
	case t.Failed():
		outcome = Fail
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	rec := &r.records[r.index[t.Name()]]
	rec.End = time.Now()
	rec.Outcome = outcome
	if o, ok := r.overrides[t.Name()]; ok && outcome != Skip {
		if outcome == Fail && o.Outcome == XFail {
			// The expected failure passed, something else failed the test.
			o.Outcome = Fail
		}
		rec.Outcome, rec.Reason = o.Outcome, o.Reason
	}
	r.duration.WithLabelValues(rec.Name, string(rec.Outcome)).Set(rec.Duration().Seconds())
	r.total.WithLabelValues(string(rec.Outcome)).Inc()
}

// mark sets the outcome reported for a tracked test in place of the one
// derived from its status.
func (r *Report) mark(t testing.TB, outcome Outcome, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.overrides[t.Name()] = Record{Outcome: outcome, Reason: reason}
}

// Records returns the finished and running records in start order.
func (r *Report) Records() []Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.records)
}

// WriteTable renders the records as a markdown table.
func (r *Report) WriteTable(w io.Writer) {
	fmt.Fprintf(w, "# E2E report\n\nRun `%s`\n\n", r.RunID)
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Test", "Outcome", "Start", "End", "Duration", "Reason"})
	table.SetBorders(tablewriter.Border{Left: true, Top: false, Right: true, Bottom: false})
	table.SetCenterSeparator("|")
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, rec := range r.Records() {
		end, took := "", ""
		if !rec.End.IsZero() {
			end = rec.End.UTC().Format(time.RFC3339)
			took = rec.Duration().Round(time.Millisecond).String()
		}
		table.Append([]string{
			rec.Name,
			string(rec.Outcome),
			rec.Start.UTC().Format(time.RFC3339),
			end,
			took,
			rec.Reason,
		})
	}
	table.Render()
}

// Write stores the markdown report and the metrics textfile in dir.
func (r *Report) Write(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return serrors.Wrap("creating report directory", err, "dir", dir)
	}
	f, err := os.Create(filepath.Join(dir, ReportFile))
	if err != nil {
		return serrors.Wrap("creating report", err, "dir", dir)
	}
	r.WriteTable(f)
	if err := f.Close(); err != nil {
		return serrors.Wrap("writing report", err, "dir", dir)
	}
	if err := prometheus.WriteToTextfile(filepath.Join(dir, MetricsFile), r.Registry); err != nil {
		return serrors.Wrap("writing metrics textfile", err, "dir", dir)
	}
	return nil
}

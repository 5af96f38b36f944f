// Package metrics provides timing instrumentation for affectmap's hot paths:
// dataset loading, parsing, flattening, filtering, reconciliation and
// rendering.
//
// Metrics are collected in-memory with atomic operations. Collection is
// enabled by default but can be disabled via AFFECTMAP_METRICS=0.
//
//	func reconcile() {
//	    defer metrics.Timer(metrics.Reconcile)()
//	}
package metrics

import (
	"os"
	"sync/atomic"
	"time"
)

// EnvVar disables collection when set to "0".
const EnvVar = "AFFECTMAP_METRICS"

var enabled atomic.Bool

func init() {
	enabled.Store(os.Getenv(EnvVar) != "0")
}

// Enabled returns whether metrics collection is enabled.
func Enabled() bool {
	return enabled.Load()
}

// SetEnabled allows programmatic control of metrics collection.
func SetEnabled(e bool) {
	enabled.Store(e)
}

// TimingMetric tracks timing statistics for a named operation.
// All methods are safe for concurrent use.
type TimingMetric struct {
	name    string
	count   atomic.Int64
	totalNs atomic.Int64
	maxNs   atomic.Int64
	minNs   atomic.Int64 // 0 means not set
}

func newTimingMetric(name string) *TimingMetric {
	return &TimingMetric{name: name}
}

// Record adds one measurement.
func (m *TimingMetric) Record(d time.Duration) {
	if !Enabled() {
		return
	}
	ns := d.Nanoseconds()
	m.count.Add(1)
	m.totalNs.Add(ns)

	for {
		old := m.maxNs.Load()
		if ns <= old || m.maxNs.CompareAndSwap(old, ns) {
			break
		}
	}
	for {
		old := m.minNs.Load()
		if (old != 0 && ns >= old) || m.minNs.CompareAndSwap(old, ns) {
			break
		}
	}
}

// Name returns the metric name.
func (m *TimingMetric) Name() string { return m.name }

// Count returns the number of recorded measurements.
func (m *TimingMetric) Count() int64 { return m.count.Load() }

// Stats returns a consistent-enough snapshot for reporting.
func (m *TimingMetric) Stats() TimingStats {
	count := m.count.Load()
	total := m.totalNs.Load()
	var avg int64
	if count > 0 {
		avg = total / count
	}
	return TimingStats{
		Name:    m.name,
		Count:   count,
		TotalMs: ms(total),
		AvgMs:   ms(avg),
		MaxMs:   ms(m.maxNs.Load()),
		MinMs:   ms(m.minNs.Load()),
	}
}

// Reset clears all recorded measurements.
func (m *TimingMetric) Reset() {
	m.count.Store(0)
	m.totalNs.Store(0)
	m.maxNs.Store(0)
	m.minNs.Store(0)
}

func ms(ns int64) float64 { return float64(ns) / 1e6 }

// TimingStats holds a snapshot of timing statistics.
type TimingStats struct {
	Name    string  `json:"name"`
	Count   int64   `json:"count"`
	TotalMs float64 `json:"total_ms"`
	AvgMs   float64 `json:"avg_ms"`
	MaxMs   float64 `json:"max_ms"`
	MinMs   float64 `json:"min_ms,omitempty"`
}

// Timer returns a function that records elapsed time when called.
// Use with defer for automatic timing:
//
//	func myFunc() {
//	    defer metrics.Timer(metrics.SomeMetric)()
//	    // ... function body
//	}
func Timer(m *TimingMetric) func() {
	if !Enabled() || m == nil {
		return func() {}
	}
	start := time.Now()
	return func() {
		m.Record(time.Since(start))
	}
}

// Global timing metrics for various operations.
var (
	DatasetLoad    = newTimingMetric("dataset_load")
	JSONParsing    = newTimingMetric("json_parsing")
	Flatten        = newTimingMetric("flatten")
	FilterCompute  = newTimingMetric("filter_compute")
	Reconcile      = newTimingMetric("reconcile")
	SnapshotRender = newTimingMetric("snapshot_render")
	SQLiteExport   = newTimingMetric("sqlite_export")
	UIRender       = newTimingMetric("ui_render")
)

// AllTimingMetrics returns all registered timing metrics.
func AllTimingMetrics() []*TimingMetric {
	return []*TimingMetric{
		DatasetLoad,
		JSONParsing,
		Flatten,
		FilterCompute,
		Reconcile,
		SnapshotRender,
		SQLiteExport,
		UIRender,
	}
}

// ResetAll resets all timing metrics.
func ResetAll() {
	for _, m := range AllTimingMetrics() {
		m.Reset()
	}
}

// AllTimingStats returns stats for the metrics that have data.
func AllTimingStats() []TimingStats {
	var stats []TimingStats
	for _, m := range AllTimingMetrics() {
		if m.Count() > 0 {
			stats = append(stats, m.Stats())
		}
	}
	return stats
}

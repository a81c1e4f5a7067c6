// Silt - Embedded Rotating Telemetry Appender
// Copyright 2026 M. Waldrop (mwaldrop)
// SPDX-License-Identifier: Apache-2.0
// https://github.com/mwaldrop/silt

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// appendsTotal counts records accepted into a buffer.
	appendsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "silt_appends_total",
		Help: "Total number of records accepted into an instance buffer",
	})

	// droppedTotal counts records dropped (closed appender, full queue, write failure).
	droppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "silt_records_dropped_total",
		Help: "Total number of records dropped instead of persisted",
	})

	// flushesTotal counts flush passes by outcome.
	flushesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "silt_flushes_total",
		Help: "Total number of flush passes by outcome",
	}, []string{"outcome"})

	// rotationsTotal counts file rotations.
	rotationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "silt_rotations_total",
		Help: "Total number of log file rotations",
	})

	// bytesWrittenTotal counts bytes persisted to disk (framed block bytes).
	bytesWrittenTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "silt_bytes_written_total",
		Help: "Total number of block bytes written to disk",
	})

	// flushLatency measures flush pass latency.
	flushLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "silt_flush_latency_seconds",
		Help:    "Flush pass latency in seconds",
		Buckets: prometheus.DefBuckets,
	})

	// bufferedBytes is the current number of buffered record bytes per prefix.
	bufferedBytes = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "silt_buffered_bytes",
		Help: "Current number of buffered record bytes per instance",
	}, []string{"prefix"})

	// sweepDeletedTotal counts files removed by the retention sweeper.
	sweepDeletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "silt_sweep_deleted_files_total",
		Help: "Total number of cached log files removed by the retention sweeper",
	})

	// sweepRunsTotal counts retention sweep passes.
	sweepRunsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "silt_sweep_runs_total",
		Help: "Total number of retention sweep passes",
	})

	// breakerOpenTotal counts disk circuit breaker open transitions.
	breakerOpenTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "silt_disk_breaker_open_total",
		Help: "Total number of disk circuit breaker open transitions",
	})
)

// RecordAppend increments the append counter.
func RecordAppend() {
	appendsTotal.Inc()
}

// RecordDropped adds to the dropped records counter.
func RecordDropped(n int) {
	droppedTotal.Add(float64(n))
}

// RecordFlush increments the flush counter for the given outcome
// ("flushed", "rotated", "failed", "empty").
func RecordFlush(outcome string) {
	flushesTotal.WithLabelValues(outcome).Inc()
}

// RecordRotation increments the rotation counter.
func RecordRotation() {
	rotationsTotal.Inc()
}

// RecordBytesWritten adds to the bytes written counter.
func RecordBytesWritten(n int) {
	bytesWrittenTotal.Add(float64(n))
}

// RecordFlushLatency records a flush latency measurement.
func RecordFlushLatency(seconds float64) {
	flushLatency.Observe(seconds)
}

// UpdateBufferedBytes sets the buffered bytes gauge for an instance.
func UpdateBufferedBytes(prefix string, n int) {
	bufferedBytes.WithLabelValues(prefix).Set(float64(n))
}

// ForgetInstance drops per-instance series after release.
func ForgetInstance(prefix string) {
	bufferedBytes.DeleteLabelValues(prefix)
}

// RecordSweepDeleted adds to the sweep deletion counter.
func RecordSweepDeleted(n int) {
	sweepDeletedTotal.Add(float64(n))
}

// RecordSweepRun increments the sweep pass counter.
func RecordSweepRun() {
	sweepRunsTotal.Inc()
}

// RecordBreakerOpen increments the breaker open counter.
func RecordBreakerOpen() {
	breakerOpenTotal.Inc()
}

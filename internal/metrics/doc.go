// Silt - Embedded Rotating Telemetry Appender
// Copyright 2026 M. Waldrop (mwaldrop)
// SPDX-License-Identifier: Apache-2.0
// https://github.com/mwaldrop/silt

// Package metrics defines Prometheus instrumentation for the appender.
//
// Metrics register with the default registry via promauto; a host
// process that already serves /metrics picks them up without extra
// wiring. Counters cover the write path (appends, drops), the flush
// path (flushes by outcome, rotations, bytes written), and the
// retention sweeper. Flush latency is tracked as a histogram.
package metrics

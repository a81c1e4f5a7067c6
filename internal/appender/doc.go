// Silt - Embedded Rotating Telemetry Appender
// Copyright 2026 M. Waldrop (mwaldrop)
// SPDX-License-Identifier: Apache-2.0
// https://github.com/mwaldrop/silt

// Package appender owns the write path for a single log prefix: the
// in-memory record buffer, block framing, the active file handle, and
// size, age, and day-boundary rotation.
//
// Two locks split the hot path from the slow path. The producer mutex
// guards only the buffer, so Append never waits on disk. The flush
// mutex serializes flushes end to end; a flush swaps the buffer out
// under the producer mutex and then writes with only the flush mutex
// held. Flushes therefore drain batches in append order, which keeps
// persisted record order identical to append order.
//
// Rotation accounts raw record bytes, not on-disk bytes, so rotation
// points do not depend on how well a particular batch compressed. A
// record is never split across files; a record larger than the size
// limit becomes the sole tail of its file.
//
// Disk writes run through a circuit breaker so a dead filesystem
// degrades to fast-failing appends instead of a stalled process.
package appender

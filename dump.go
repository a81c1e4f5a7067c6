// Silt - Embedded Rotating Telemetry Appender
// Copyright 2026 M. Waldrop (mwaldrop)
// SPDX-License-Identifier: Apache-2.0
// https://github.com/mwaldrop/silt

package silt

import "github.com/mwaldrop/silt/internal/dump"

// Dump renders an arbitrary byte buffer as a hex/ASCII listing safe to
// embed in a log message. It never fails: oversized input is cut at a
// fixed cap with an explicit truncation marker.
func Dump(b []byte) string {
	return dump.Dump(b)
}

// MemoryDump renders a crash-time memory region, prefixed with the
// region size. Same safety guarantees as Dump.
func MemoryDump(b []byte) string {
	return dump.MemoryDump(b)
}

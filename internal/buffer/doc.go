// Silt - Embedded Rotating Telemetry Appender
// Copyright 2026 M. Waldrop (mwaldrop)
// SPDX-License-Identifier: Apache-2.0
// https://github.com/mwaldrop/silt

// Package buffer holds encoded records between appends and flushes.
//
// A RecordBuffer keeps whole records, never byte fragments, so a flush
// can map cleanly onto on-disk blocks without ever splitting a record.
// The buffer itself is not goroutine safe; the appender guards it with
// its producer mutex and swaps the contents out under that lock so disk
// writes happen outside it.
package buffer

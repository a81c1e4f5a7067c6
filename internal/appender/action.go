// Silt - Embedded Rotating Telemetry Appender
// Copyright 2026 M. Waldrop (mwaldrop)
// SPDX-License-Identifier: Apache-2.0
// https://github.com/mwaldrop/silt

package appender

// Action reports what a flush did to the file system.
type Action int

const (
	// ActionNone means there was nothing to write.
	ActionNone Action = iota

	// ActionFlushed means records were appended to an existing file.
	ActionFlushed

	// ActionRotatedAndFlushed means the flush opened at least one new
	// file, by rotation or first write.
	ActionRotatedAndFlushed

	// ActionFailed means the flush hit an I/O or compression error.
	// Undrained records are lost; the error is retained for LastError.
	ActionFailed
)

// String returns the action name for diagnostics.
func (a Action) String() string {
	switch a {
	case ActionNone:
		return "none"
	case ActionFlushed:
		return "flushed"
	case ActionRotatedAndFlushed:
		return "rotated_and_flushed"
	case ActionFailed:
		return "failed"
	default:
		return "unknown"
	}
}

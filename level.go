// Silt - Embedded Rotating Telemetry Appender
// Copyright 2026 M. Waldrop (mwaldrop)
// SPDX-License-Identifier: Apache-2.0
// https://github.com/mwaldrop/silt

package silt

import "strings"

// Level is a record severity. An instance drops records below its
// threshold; LevelNone as threshold drops everything.
type Level int32

const (
	LevelVerbose Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
	LevelNone
)

// String returns the lowercase level name.
func (l Level) String() string {
	switch l {
	case LevelVerbose:
		return "verbose"
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	case LevelFatal:
		return "fatal"
	case LevelNone:
		return "none"
	default:
		return "unknown"
	}
}

// Valid reports whether l is a defined level.
func (l Level) Valid() bool {
	return l >= LevelVerbose && l <= LevelNone
}

// ParseLevel maps a level name to its Level. Unknown names default to
// LevelInfo.
func ParseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "verbose", "trace":
		return LevelVerbose
	case "debug":
		return LevelDebug
	case "info", "":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	case "fatal":
		return LevelFatal
	case "none", "off":
		return LevelNone
	default:
		return LevelInfo
	}
}

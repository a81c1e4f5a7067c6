// Silt - Embedded Rotating Telemetry Appender
// Copyright 2026 M. Waldrop (mwaldrop)
// SPDX-License-Identifier: Apache-2.0
// https://github.com/mwaldrop/silt

package silt

import "strings"

// Fixed-capacity adapters for foreign-function boundaries that cannot
// grow a buffer. Each call reports the byte count required to hold the
// result including its NUL terminator; when the supplied buffer is at
// least that large the result is copied in and terminated, otherwise
// nothing is written and ErrTruncated tells the caller to retry with
// the reported size. A zero-capacity buffer is the idiomatic way to
// ask for the size alone.

// fillString implements the required-length contract for one string.
func fillString(s string, buf []byte) (int, error) {
	need := len(s) + 1
	if len(buf) < need {
		return need, ErrTruncated
	}
	copy(buf, s)
	buf[len(s)] = 0
	return need, nil
}

// ActivePathInto copies the instance's active file path into buf.
func ActivePathInto(i *Instance, buf []byte) (int, error) {
	return fillString(i.ActivePath(), buf)
}

// CacheDirPathInto copies the instance's cache directory into buf.
func CacheDirPathInto(i *Instance, buf []byte) (int, error) {
	return fillString(i.CacheDirPath(), buf)
}

// LogfileNameInto copies the base filename for the day timespanDays
// ago into buf.
func LogfileNameInto(i *Instance, timespanDays int, buf []byte) (int, error) {
	name, err := i.LogfileName(timespanDays)
	if err != nil {
		return 0, err
	}
	return fillString(name, buf)
}

// FilepathsFromTimespanInto copies the matching file paths for the day
// timespanDays ago into buf, joined by newlines. A day with no files
// yields just the terminator.
func FilepathsFromTimespanInto(i *Instance, timespanDays int, buf []byte) (int, error) {
	paths, err := i.Filepaths(timespanDays)
	if err != nil {
		return 0, err
	}
	return fillString(strings.Join(paths, "\n"), buf)
}

// Silt - Embedded Rotating Telemetry Appender
// Copyright 2026 M. Waldrop (mwaldrop)
// SPDX-License-Identifier: Apache-2.0
// https://github.com/mwaldrop/silt

// Package retention deletes log files older than the cache window.
//
// Age is taken from the day stamp in the filename, never from
// filesystem timestamps, so copied or restored files are judged by the
// day their records belong to. Files that are currently open for
// writing are exempt no matter how old their stamp is, and files that
// do not follow the naming scheme are never touched.
package retention

// Silt - Embedded Rotating Telemetry Appender
// Copyright 2026 M. Waldrop (mwaldrop)
// SPDX-License-Identifier: Apache-2.0
// https://github.com/mwaldrop/silt

// Package dump renders arbitrary byte regions as loggable text.
//
// The renderers exist for crash paths: a host process hands over a raw
// snapshot (stack memory, a corrupt frame, an undecoded payload) and
// gets back a string safe to put in a log record. Rendering never
// panics and never produces unbounded output; past the cap an explicit
// truncation marker is appended so readers know bytes are missing.
package dump

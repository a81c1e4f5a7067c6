// Silt - Embedded Rotating Telemetry Appender
// Copyright 2026 M. Waldrop (mwaldrop)
// SPDX-License-Identifier: Apache-2.0
// https://github.com/mwaldrop/silt

// Package diag provides zerolog-based self-diagnostics for the appender.
//
// The appender never reports its own faults through its own pipeline; a
// failing disk would make such reports disappear along with the data they
// describe. Instead every internal component logs through this package,
// which writes structured events to a configurable side channel (stderr
// by default).
//
// # Quick Start
//
//	diag.Init(diag.Config{Level: "warn"})
//	diag.Warn().Str("prefix", "app").Msg("flush retried")
//
// # Levels
//
// The default level is warn: a healthy appender embedded in a host
// process stays silent. Raise to debug when investigating rotation or
// retention behavior.
package diag

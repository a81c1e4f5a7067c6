// Silt - Embedded Rotating Telemetry Appender
// Copyright 2026 M. Waldrop (mwaldrop)
// SPDX-License-Identifier: Apache-2.0
// https://github.com/mwaldrop/silt

// Package compress implements the block compressors used by the flush
// pipeline.
//
// Compression is a pure transform: the same (mode, level, input) always
// yields the same output, and failures (an invalid level for the mode)
// are reported rather than silently downgraded to passthrough. Both
// directions are provided so external readers can recover the original
// bytes from persisted blocks.
package compress

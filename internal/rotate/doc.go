// Silt - Embedded Rotating Telemetry Appender
// Copyright 2026 M. Waldrop (mwaldrop)
// SPDX-License-Identifier: Apache-2.0
// https://github.com/mwaldrop/silt

// Package rotate implements log file naming and selection for the
// rotating appender.
//
// Files are named <prefix>_<YYYYMMDD>.slg, with an overflow sequence
// suffix (<prefix>_<YYYYMMDD>_<n>.slg) when size or age limits force
// more than one file per day. Names are the source of truth for the
// retention sweeper: the day stamp is parsed back out of the filename
// rather than trusting filesystem mtimes, which lie after copies and
// restores.
package rotate

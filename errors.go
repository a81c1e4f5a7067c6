// Silt - Embedded Rotating Telemetry Appender
// Copyright 2026 M. Waldrop (mwaldrop)
// SPDX-License-Identifier: Apache-2.0
// https://github.com/mwaldrop/silt

package silt

import (
	"errors"

	"github.com/mwaldrop/silt/internal/appender"
	"github.com/mwaldrop/silt/internal/block"
	"github.com/mwaldrop/silt/internal/compress"
)

var (
	// ErrConfigInvalid reports a missing or contradictory configuration
	// at instance creation or oneshot time.
	ErrConfigInvalid = errors.New("invalid configuration")

	// ErrDuplicatePrefix reports an attempt to create an instance for a
	// prefix that is already registered and unreleased.
	ErrDuplicatePrefix = errors.New("prefix already registered")

	// ErrNotFound reports a lookup or release for an unknown prefix.
	ErrNotFound = errors.New("instance not found")

	// ErrRegistryClosed reports use of a registry after Close.
	ErrRegistryClosed = errors.New("registry closed")

	// ErrIOFailure wraps open, write, and delete failures on the file
	// pipeline.
	ErrIOFailure = appender.ErrIO

	// ErrCompressionFailure reports an invalid compression level for
	// the selected mode; compression is never silently downgraded.
	ErrCompressionFailure = compress.ErrInvalidLevel

	// ErrTruncated reports a fixed-capacity output buffer that was too
	// small; retry with the returned required length.
	ErrTruncated = errors.New("output buffer too small")

	// ErrCorruptBlock reports an unreadable block when decoding files.
	ErrCorruptBlock = block.ErrTruncated
)

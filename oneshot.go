// Silt - Embedded Rotating Telemetry Appender
// Copyright 2026 M. Waldrop (mwaldrop)
// SPDX-License-Identifier: Apache-2.0
// https://github.com/mwaldrop/silt

package silt

import (
	"time"

	"github.com/mwaldrop/silt/internal/appender"
)

// FileIOAction reports what a flush did to the file system.
type FileIOAction int

const (
	// ActionNone: nothing to write, or the work was only enqueued.
	ActionNone FileIOAction = iota

	// ActionFlushed: records were appended to an existing file.
	ActionFlushed

	// ActionRotatedAndFlushed: the flush created or rotated to a new
	// file.
	ActionRotatedAndFlushed

	// ActionFailed: the flush hit an I/O or compression error.
	ActionFailed
)

// String returns the action name.
func (a FileIOAction) String() string {
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

func fileIOAction(a appender.Action) FileIOAction {
	switch a {
	case appender.ActionFlushed:
		return ActionFlushed
	case appender.ActionRotatedAndFlushed:
		return ActionRotatedAndFlushed
	case appender.ActionFailed:
		return ActionFailed
	default:
		return ActionNone
	}
}

// OneshotFlush performs exactly one flush pass against the file
// implied by cfg without requiring a live registry or instance, for
// crash and shutdown paths. records may be nil to just touch the file.
// No handle is left open.
func OneshotFlush(cfg Config, records []Record) (FileIOAction, error) {
	if err := cfg.Validate(); err != nil {
		return ActionFailed, err
	}
	mode, err := ParseCompressMode(cfg.CompressMode)
	if err != nil {
		return ActionFailed, err
	}

	now := time.Now
	encoded := make([][]byte, 0, len(records))
	for _, rec := range records {
		if rec.TS.IsZero() {
			rec.TS = now()
		}
		b, err := rec.encode()
		if err != nil {
			return ActionFailed, err
		}
		encoded = append(encoded, b)
	}

	action, err := appender.Oneshot(appender.Options{
		Dir:           cfg.LogDir,
		Prefix:        cfg.NamePrefix,
		CompressMode:  mode,
		CompressLevel: cfg.CompressLevel,
		PubKeyHex:     cfg.PublicKey,
	}, encoded)
	return fileIOAction(action), err
}

// Silt - Embedded Rotating Telemetry Appender
// Copyright 2026 M. Waldrop (mwaldrop)
// SPDX-License-Identifier: Apache-2.0
// https://github.com/mwaldrop/silt

package appender

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mwaldrop/silt/internal/block"
	"github.com/mwaldrop/silt/internal/compress"
	"github.com/mwaldrop/silt/internal/rotate"
	"github.com/mwaldrop/silt/internal/seal"
)

// Oneshot writes records straight into today's file for opts.Prefix
// without keeping an appender alive: open, append one block, close.
// Meant for crash handlers and short-lived helper processes, so it
// skips rotation limits.
//
// The action tells the caller what happened to the file: a file that
// had to be created reports ActionRotatedAndFlushed, an existing file
// with nothing to write reports ActionFlushed.
func Oneshot(opts Options, records [][]byte) (Action, error) {
	opts.setDefaults()

	if err := rotate.ValidatePrefix(opts.Prefix); err != nil {
		return ActionFailed, err
	}
	if opts.Dir == "" {
		return ActionFailed, fmt.Errorf("log dir is required")
	}
	if err := compress.ValidateLevel(opts.CompressMode, opts.CompressLevel); err != nil {
		return ActionFailed, err
	}
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return ActionFailed, fmt.Errorf("%w: create log dir: %v", ErrIO, err)
	}

	var sealer *seal.Sealer
	if opts.PubKeyHex != "" {
		var err error
		sealer, err = seal.NewSealer(opts.PubKeyHex)
		if err != nil {
			return ActionFailed, err
		}
	}

	now := opts.Now()
	day := rotate.DayKey(now)
	seq, found, err := rotate.MaxSeq(opts.Dir, opts.Prefix, day)
	if err != nil {
		return ActionFailed, fmt.Errorf("%w: %v", ErrIO, err)
	}
	if !found {
		seq = 0
	}
	path := filepath.Join(opts.Dir, rotate.Name(opts.Prefix, day, seq))

	created := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		created = true
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return ActionFailed, fmt.Errorf("%w: open %s: %v", ErrIO, path, err)
	}
	defer f.Close()

	if len(records) > 0 {
		blk, err := block.Build(records, opts.CompressMode, opts.CompressLevel, sealer)
		if err != nil {
			return ActionFailed, err
		}
		if _, err := f.Write(blk); err != nil {
			return ActionFailed, fmt.Errorf("%w: %s: %v", ErrIO, path, err)
		}
	}
	if err := f.Sync(); err != nil {
		return ActionFailed, fmt.Errorf("%w: sync %s: %v", ErrIO, path, err)
	}

	if created {
		return ActionRotatedAndFlushed, nil
	}
	return ActionFlushed, nil
}

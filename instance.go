// Silt - Embedded Rotating Telemetry Appender
// Copyright 2026 M. Waldrop (mwaldrop)
// SPDX-License-Identifier: Apache-2.0
// https://github.com/mwaldrop/silt

package silt

import (
	"path/filepath"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/mwaldrop/silt/internal/appender"
	"github.com/mwaldrop/silt/internal/rotate"
)

// Instance is one named logging target. All methods are safe for
// concurrent use; the level and mode gates are single atomic loads so
// disabled writes cost almost nothing.
type Instance struct {
	cfg    Config
	prefix string
	app    *appender.Appender
	sink   ConsoleSink
	now    func() time.Time

	level       atomic.Int32
	mode        atomic.Int32
	console     atomic.Bool
	closedDrops atomic.Int64
}

func newInstance(cfg Config, sink ConsoleSink, now func() time.Time) (*Instance, error) {
	mode, err := ParseCompressMode(cfg.CompressMode)
	if err != nil {
		return nil, err
	}

	app, err := appender.New(appender.Options{
		Dir:            cfg.LogDir,
		Prefix:         cfg.NamePrefix,
		MaxFileSize:    cfg.MaxFileSize,
		MaxAliveTime:   cfg.MaxAliveTime,
		CompressMode:   mode,
		CompressLevel:  cfg.CompressLevel,
		PubKeyHex:      cfg.PublicKey,
		FlushThreshold: cfg.FlushThreshold,
		Now:            now,
	})
	if err != nil {
		return nil, err
	}

	if sink == nil {
		sink = NopConsoleSink()
	}

	inst := &Instance{
		cfg:    cfg,
		prefix: cfg.NamePrefix,
		app:    app,
		sink:   sink,
		now:    now,
	}
	inst.level.Store(int32(ParseLevel(cfg.Level)))
	inst.console.Store(cfg.ConsoleEnabled)
	inst.SetAppenderMode(ParseAppenderMode(cfg.Mode))
	return inst, nil
}

// Prefix returns the instance's file prefix.
func (i *Instance) Prefix() string {
	return i.prefix
}

// IsEnabled reports whether a record at level l would be persisted.
// Pure threshold comparison, no locking.
func (i *Instance) IsEnabled(l Level) bool {
	return l.Valid() && l != LevelNone && l >= Level(i.level.Load())
}

// SetLevel updates the severity threshold. Visible to IsEnabled on
// every goroutine immediately.
func (i *Instance) SetLevel(l Level) {
	i.level.Store(int32(l))
}

// GetLevel returns the current severity threshold.
func (i *Instance) GetLevel() Level {
	return Level(i.level.Load())
}

// SetAppenderMode switches between async, sync, and closed writes.
func (i *Instance) SetAppenderMode(m AppenderMode) {
	i.mode.Store(int32(m))
	switch m {
	case ModeSync:
		i.app.SetMode(appender.ModeSync)
	default:
		i.app.SetMode(appender.ModeAsync)
	}
}

// GetAppenderMode returns the current appender mode.
func (i *Instance) GetAppenderMode() AppenderMode {
	return AppenderMode(i.mode.Load())
}

// SetConsoleEnabled toggles mirroring to the console sink.
func (i *Instance) SetConsoleEnabled(enabled bool) {
	i.console.Store(enabled)
}

// SetMaxFileSize changes the size rotation limit from the next flush.
func (i *Instance) SetMaxFileSize(n int64) {
	i.app.SetMaxFileSize(n)
}

// SetMaxAliveTime changes the age rotation limit from the next flush.
func (i *Instance) SetMaxAliveTime(d time.Duration) {
	i.app.SetMaxAliveTime(d)
}

// Write appends one record, capturing the caller's file and line. In
// sync mode the record is on disk when Write returns; in async mode it
// is buffered. Records below the threshold, and all records in closed
// mode, are dropped and counted.
func (i *Instance) Write(level Level, tag, msg string) error {
	rec := Record{
		TS:    i.now(),
		Level: level.String(),
		Tag:   tag,
		Msg:   msg,
	}
	if pc, file, line, ok := runtime.Caller(1); ok {
		rec.File = filepath.Base(file)
		rec.Line = line
		if fn := runtime.FuncForPC(pc); fn != nil {
			rec.Func = fn.Name()
		}
	}
	return i.writeRecord(level, rec)
}

// WriteRecord appends a fully formed record.
func (i *Instance) WriteRecord(rec Record) error {
	if rec.TS.IsZero() {
		rec.TS = i.now()
	}
	return i.writeRecord(ParseLevel(rec.Level), rec)
}

func (i *Instance) writeRecord(level Level, rec Record) error {
	if !i.IsEnabled(level) {
		return nil
	}
	if i.GetAppenderMode() == ModeClosed {
		i.closedDrops.Add(1)
		return nil
	}

	if i.console.Load() {
		i.sink.Emit(level, rec.Tag, rec.Msg)
	}

	encoded, err := rec.encode()
	if err != nil {
		return err
	}
	return i.app.Append(encoded)
}

// Flush drains buffered records. With sync true it blocks until bytes
// are durably written and reports what happened; otherwise it enqueues
// the work for the flush worker and returns immediately.
func (i *Instance) Flush(sync bool) (FileIOAction, error) {
	if !sync {
		i.app.RequestFlush()
		return ActionNone, nil
	}
	action, err := i.app.Flush()
	return fileIOAction(action), err
}

// ActivePath returns the file currently being written, or "" before
// the first flush with data.
func (i *Instance) ActivePath() string {
	return i.app.ActivePath()
}

// CacheDirPath returns the directory the retention sweeper prunes for
// this instance.
func (i *Instance) CacheDirPath() string {
	return i.cfg.cacheDir()
}

// LogfileName returns the base filename for the day timespanDays
// before now.
func (i *Instance) LogfileName(timespanDays int) (string, error) {
	return rotate.MakeLogfileName(i.prefix, i.now(), timespanDays)
}

// Filepaths lists this instance's files for the day timespanDays
// before now, oldest overflow first. No files is an empty slice, not
// an error.
func (i *Instance) Filepaths(timespanDays int) ([]string, error) {
	return rotate.FilepathsFromTimespan(i.cfg.LogDir, i.prefix, i.now(), timespanDays)
}

// LastError returns the error recorded against this instance by the
// most recent failed flush. The next explicit flush that does not
// itself fail returns it wrapped and clears it.
func (i *Instance) LastError() error {
	return i.app.LastError()
}

// Dropped counts records lost to closed mode, a closed appender, or
// failed flushes.
func (i *Instance) Dropped() int64 {
	return i.closedDrops.Load() + i.app.Dropped()
}

// close drains and shuts the appender. Called by the registry when the
// reference count reaches zero.
func (i *Instance) close() error {
	i.mode.Store(int32(ModeClosed))
	return i.app.Close()
}

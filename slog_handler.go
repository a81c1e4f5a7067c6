// Silt - Embedded Rotating Telemetry Appender
// Copyright 2026 M. Waldrop (mwaldrop)
// SPDX-License-Identifier: Apache-2.0
// https://github.com/mwaldrop/silt

package silt

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"strings"
)

// SlogHandler adapts an Instance to slog.Handler, so application code
// already written against log/slog can persist through the rotating
// appender without changes.
type SlogHandler struct {
	inst  *Instance
	tag   string
	attrs []slog.Attr
}

// NewSlogHandler wraps inst. The handler does not own the instance;
// releasing it remains the caller's concern.
func NewSlogHandler(inst *Instance) *SlogHandler {
	return &SlogHandler{inst: inst}
}

// Enabled defers to the instance's severity threshold.
func (h *SlogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return h.inst.IsEnabled(levelFromSlog(level))
}

// Handle converts the slog record and appends it.
//
//nolint:gocritic // slog.Record is passed by value per slog.Handler interface
func (h *SlogHandler) Handle(_ context.Context, record slog.Record) error {
	var sb strings.Builder
	sb.WriteString(record.Message)

	appendAttr := func(attr slog.Attr) {
		fmt.Fprintf(&sb, " %s=%v", attr.Key, attr.Value.Any())
	}
	for _, attr := range h.attrs {
		appendAttr(attr)
	}
	record.Attrs(func(attr slog.Attr) bool {
		appendAttr(attr)
		return true
	})

	rec := Record{
		TS:    record.Time,
		Level: levelFromSlog(record.Level).String(),
		Tag:   h.tag,
		Msg:   sb.String(),
	}
	if record.PC != 0 {
		frame, _ := runtime.CallersFrames([]uintptr{record.PC}).Next()
		rec.File = filepath.Base(frame.File)
		rec.Line = frame.Line
		rec.Func = frame.Function
	}
	return h.inst.WriteRecord(rec)
}

// WithAttrs returns a handler that prepends attrs to every record.
func (h *SlogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &SlogHandler{inst: h.inst, tag: h.tag, attrs: merged}
}

// WithGroup maps the group name onto the record tag.
func (h *SlogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	tag := name
	if h.tag != "" {
		tag = h.tag + "." + name
	}
	return &SlogHandler{inst: h.inst, tag: tag, attrs: h.attrs}
}

func levelFromSlog(level slog.Level) Level {
	switch {
	case level < slog.LevelDebug:
		return LevelVerbose
	case level < slog.LevelInfo:
		return LevelDebug
	case level < slog.LevelWarn:
		return LevelInfo
	case level < slog.LevelError:
		return LevelWarn
	default:
		return LevelError
	}
}

// Silt - Embedded Rotating Telemetry Appender
// Copyright 2026 M. Waldrop (mwaldrop)
// SPDX-License-Identifier: Apache-2.0
// https://github.com/mwaldrop/silt

package silt

import (
	"fmt"
	"io"
	"sync"
)

// ConsoleSink mirrors records to a live destination alongside the file
// pipeline. Implementations must tolerate concurrent calls.
type ConsoleSink interface {
	Emit(level Level, tag, msg string)
}

// NopConsoleSink discards everything. It stands in on platforms with
// no console rather than scattering conditionals through call sites.
func NopConsoleSink() ConsoleSink {
	return nopSink{}
}

type nopSink struct{}

func (nopSink) Emit(Level, string, string) {}

// NewWriterSink mirrors records to w, one line per record.
func NewWriterSink(w io.Writer) ConsoleSink {
	return &writerSink{w: w}
}

type writerSink struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *writerSink) Emit(level Level, tag, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if tag != "" {
		fmt.Fprintf(s.w, "[%s] %s: %s\n", level, tag, msg)
		return
	}
	fmt.Fprintf(s.w, "[%s] %s\n", level, msg)
}

// Silt - Embedded Rotating Telemetry Appender
// Copyright 2026 M. Waldrop (mwaldrop)
// SPDX-License-Identifier: Apache-2.0
// https://github.com/mwaldrop/silt

package appender

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/mwaldrop/silt/internal/diag"
)

// DefaultFlushInterval is the async flush cadence when none is set.
const DefaultFlushInterval = 15 * time.Second

// Worker flushes an appender periodically and on demand. It implements
// suture.Service so the registry's supervisor can restart it if a
// flush panics.
type Worker struct {
	app      *Appender
	interval time.Duration
}

// NewWorker wraps a for supervised async flushing.
func NewWorker(a *Appender, interval time.Duration) *Worker {
	if interval <= 0 {
		interval = DefaultFlushInterval
	}
	return &Worker{app: a, interval: interval}
}

// String names the service in supervisor logs.
func (w *Worker) String() string {
	return "silt-flush-" + w.app.opts.Prefix
}

// Serve runs the flush loop until ctx is cancelled, draining once on
// the way out.
func (w *Worker) Serve(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	log := diag.With().Str("component", "flush-worker").Str("prefix", w.app.opts.Prefix).Logger()
	log.Debug().Dur("interval", w.interval).Msg("flush worker started")

	for {
		select {
		case <-ctx.Done():
			if _, err := w.app.Flush(); err != nil {
				log.Err(err).Msg("final drain failed")
			}
			log.Debug().Msg("flush worker stopped")
			return ctx.Err()
		case <-ticker.C:
			w.flushOnce(log)
		case <-w.app.FlushSignal():
			w.flushOnce(log)
		}
	}
}

func (w *Worker) flushOnce(log zerolog.Logger) {
	if _, err := w.app.BackgroundFlush(); err != nil {
		log.Err(err).Msg("periodic flush failed")
	}
}

// Silt - Embedded Rotating Telemetry Appender
// Copyright 2026 M. Waldrop (mwaldrop)
// SPDX-License-Identifier: Apache-2.0
// https://github.com/mwaldrop/silt

package retention

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mwaldrop/silt/internal/diag"
	"github.com/mwaldrop/silt/internal/metrics"
	"github.com/mwaldrop/silt/internal/rotate"
)

// DefaultInterval is the sweep cadence when none is configured.
const DefaultInterval = time.Hour

// Config controls a Sweeper.
type Config struct {
	// Dir is the log directory to sweep.
	Dir string

	// CacheDays keeps files whose day stamp is within this many days
	// of today. 0 disables deletion entirely.
	CacheDays int

	// Interval between sweeps. Default DefaultInterval.
	Interval time.Duration

	// ActivePaths reports files currently open for writing; they are
	// never deleted. May be nil.
	ActivePaths func() map[string]struct{}

	// Now overrides the clock, for tests.
	Now func() time.Time
}

// Sweeper prunes expired log files. It implements suture.Service and
// runs under the registry's supervisor.
type Sweeper struct {
	cfg Config
}

// New returns a sweeper for cfg.
func New(cfg Config) *Sweeper {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Sweeper{cfg: cfg}
}

// String names the service in supervisor logs.
func (s *Sweeper) String() string {
	return "silt-retention"
}

// Serve sweeps once at startup and then on every interval tick until
// ctx is cancelled.
func (s *Sweeper) Serve(ctx context.Context) error {
	log := diag.With().Str("component", "retention").Str("dir", s.cfg.Dir).Logger()
	log.Debug().Int("cache_days", s.cfg.CacheDays).Dur("interval", s.cfg.Interval).Msg("retention sweeper started")

	if deleted, err := s.SweepNow(); err != nil {
		log.Err(err).Msg("startup sweep failed")
	} else if deleted > 0 {
		log.Info().Int("deleted", deleted).Msg("startup sweep")
	}

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if deleted, err := s.SweepNow(); err != nil {
				log.Err(err).Msg("sweep failed")
			} else if deleted > 0 {
				log.Info().Int("deleted", deleted).Msg("sweep")
			}
		}
	}
}

// SweepNow runs one sweep and reports how many files were removed.
func (s *Sweeper) SweepNow() (int, error) {
	metrics.RecordSweepRun()

	if s.cfg.CacheDays <= 0 {
		return 0, nil
	}

	entries, err := os.ReadDir(s.cfg.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("read log dir: %w", err)
	}

	var active map[string]struct{}
	if s.cfg.ActivePaths != nil {
		active = s.cfg.ActivePaths()
	}

	// Keep today and the previous CacheDays-1 days.
	cutoff := s.cfg.Now().AddDate(0, 0, -(s.cfg.CacheDays - 1))
	cutoffDay := time.Date(cutoff.Year(), cutoff.Month(), cutoff.Day(), 0, 0, 0, 0, time.Local)

	deleted := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		_, dayStamp, _, ok := rotate.ParseName(e.Name())
		if !ok {
			continue
		}
		day, err := rotate.ParseDay(dayStamp)
		if err != nil {
			continue
		}
		if !day.Before(cutoffDay) {
			continue
		}

		path := filepath.Join(s.cfg.Dir, e.Name())
		if _, open := active[path]; open {
			continue
		}

		if err := os.Remove(path); err != nil {
			diag.Err(err).Str("path", path).Msg("delete expired log file")
			continue
		}
		deleted++
	}

	if deleted > 0 {
		metrics.RecordSweepDeleted(deleted)
	}
	return deleted, nil
}

// Silt - Embedded Rotating Telemetry Appender
// Copyright 2026 M. Waldrop (mwaldrop)
// SPDX-License-Identifier: Apache-2.0
// https://github.com/mwaldrop/silt

package silt

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/thejerf/suture/v4"
	"github.com/thejerf/sutureslog"

	"github.com/mwaldrop/silt/internal/appender"
	"github.com/mwaldrop/silt/internal/diag"
	"github.com/mwaldrop/silt/internal/retention"
)

// RegistryOptions tunes the supervisor and the shared services. The
// zero value is usable.
type RegistryOptions struct {
	// FailureThreshold, FailureDecay, and FailureBackoff are the
	// supervisor restart parameters. Defaults: 5, 30, 15s.
	FailureThreshold float64
	FailureDecay     float64
	FailureBackoff   time.Duration

	// ShutdownTimeout bounds how long Close waits for workers to
	// drain. Default 10s.
	ShutdownTimeout time.Duration

	// SweepInterval is the retention sweep cadence. Default 1h.
	SweepInterval time.Duration

	// ConsoleSink receives mirrored records for instances with
	// console output enabled. Default: discard.
	ConsoleSink ConsoleSink

	// Now overrides the clock, for tests.
	Now func() time.Time
}

func (o *RegistryOptions) setDefaults() {
	if o.FailureThreshold == 0 {
		o.FailureThreshold = 5
	}
	if o.FailureDecay == 0 {
		o.FailureDecay = 30
	}
	if o.FailureBackoff == 0 {
		o.FailureBackoff = 15 * time.Second
	}
	if o.ShutdownTimeout == 0 {
		o.ShutdownTimeout = 10 * time.Second
	}
	if o.SweepInterval == 0 {
		o.SweepInterval = retention.DefaultInterval
	}
	if o.ConsoleSink == nil {
		o.ConsoleSink = NopConsoleSink()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
}

// Registry owns the process's logging instances and the supervisor
// running their flush workers and retention sweepers. Construct it
// explicitly and tear it down with Close; there is no ambient
// singleton.
type Registry struct {
	opts   RegistryOptions
	sup    *suture.Supervisor
	cancel context.CancelFunc
	supErr <-chan error

	mu            sync.Mutex
	entries       map[string]*registryEntry
	defaultPrefix string
	closed        bool
}

type registryEntry struct {
	inst      *Instance
	refs      int
	workerTok suture.ServiceToken
	sweepTok  suture.ServiceToken
	hasSweep  bool
}

// NewRegistry builds and starts a registry. Supervisor events are
// routed into the diagnostics logger.
func NewRegistry(opts RegistryOptions) *Registry {
	opts.setDefaults()

	hook := (&sutureslog.Handler{Logger: diag.NewSlogLogger()}).MustHook()
	sup := suture.New("silt", suture.Spec{
		EventHook:        hook,
		FailureThreshold: opts.FailureThreshold,
		FailureDecay:     opts.FailureDecay,
		FailureBackoff:   opts.FailureBackoff,
		Timeout:          opts.ShutdownTimeout,
	})

	ctx, cancel := context.WithCancel(context.Background())
	return &Registry{
		opts:    opts,
		sup:     sup,
		cancel:  cancel,
		supErr:  sup.ServeBackground(ctx),
		entries: make(map[string]*registryEntry),
	}
}

// NewInstance allocates an instance bound to cfg.NamePrefix with one
// reference. It fails with ErrConfigInvalid for a bad snapshot and
// ErrDuplicatePrefix when the prefix is already registered.
func (r *Registry) NewInstance(cfg Config) (*Instance, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, ErrRegistryClosed
	}
	if _, ok := r.entries[cfg.NamePrefix]; ok {
		return nil, fmt.Errorf("%w: %q", ErrDuplicatePrefix, cfg.NamePrefix)
	}

	inst, err := newInstance(cfg, r.opts.ConsoleSink, r.opts.Now)
	if err != nil {
		return nil, err
	}

	entry := &registryEntry{inst: inst, refs: 1}
	entry.workerTok = r.sup.Add(appender.NewWorker(inst.app, cfg.FlushInterval))
	if cfg.CacheDays > 0 {
		entry.sweepTok = r.sup.Add(retention.New(retention.Config{
			Dir:         cfg.cacheDir(),
			CacheDays:   cfg.CacheDays,
			Interval:    r.opts.SweepInterval,
			ActivePaths: r.activePaths,
			Now:         r.opts.Now,
		}))
		entry.hasSweep = true
	}
	r.entries[cfg.NamePrefix] = entry

	diag.Info().Str("prefix", cfg.NamePrefix).Str("dir", cfg.LogDir).Msg("instance registered")
	return inst, nil
}

// GetInstance returns the live instance for prefix, adding one
// reference, or ErrNotFound.
func (r *Registry) GetInstance(prefix string) (*Instance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, ErrRegistryClosed
	}
	entry, ok := r.entries[prefix]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, prefix)
	}
	entry.refs++
	return entry.inst, nil
}

// Open gets or creates the instance for cfg.NamePrefix: a hit adds a
// reference to the existing instance, a miss behaves like NewInstance.
// The first prefix opened becomes the registry default, paired with
// CloseDefault.
func (r *Registry) Open(cfg Config) (*Instance, error) {
	inst, err := r.GetInstance(cfg.NamePrefix)
	if errors.Is(err, ErrNotFound) {
		inst, err = r.NewInstance(cfg)
		if errors.Is(err, ErrDuplicatePrefix) {
			// Lost a race with a concurrent Open for the same prefix.
			inst, err = r.GetInstance(cfg.NamePrefix)
		}
	}
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	if r.defaultPrefix == "" {
		r.defaultPrefix = cfg.NamePrefix
	}
	r.mu.Unlock()
	return inst, nil
}

// CloseDefault releases one reference to the default instance set by
// the first Open. ErrNotFound when no default is live.
func (r *Registry) CloseDefault() error {
	r.mu.Lock()
	prefix := r.defaultPrefix
	r.mu.Unlock()
	if prefix == "" {
		return ErrNotFound
	}
	return r.ReleaseInstance(prefix)
}

// ReleaseInstance drops one reference to prefix. At zero the flush
// worker is stopped with a final drain, the instance's file is closed,
// and subsequent GetInstance calls return ErrNotFound. Releasing an
// unknown or already-released prefix returns ErrNotFound.
func (r *Registry) ReleaseInstance(prefix string) error {
	r.mu.Lock()
	entry, ok := r.entries[prefix]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrNotFound, prefix)
	}
	entry.refs--
	if entry.refs > 0 {
		r.mu.Unlock()
		return nil
	}
	delete(r.entries, prefix)
	r.mu.Unlock()

	// Service teardown happens outside the registry lock so a sweep
	// querying active paths cannot deadlock against it.
	return r.teardown(prefix, entry)
}

func (r *Registry) teardown(prefix string, entry *registryEntry) error {
	var errs []error
	if err := r.sup.RemoveAndWait(entry.workerTok, r.opts.ShutdownTimeout); err != nil {
		errs = append(errs, fmt.Errorf("stop flush worker: %w", err))
	}
	if entry.hasSweep {
		if err := r.sup.RemoveAndWait(entry.sweepTok, r.opts.ShutdownTimeout); err != nil {
			errs = append(errs, fmt.Errorf("stop sweeper: %w", err))
		}
	}
	if err := entry.inst.close(); err != nil {
		errs = append(errs, err)
	}
	diag.Info().Str("prefix", prefix).Msg("instance released")
	return errors.Join(errs...)
}

// FlushAll flushes every live instance. With sync true it blocks until
// each instance has drained; ordering across instances is unspecified.
func (r *Registry) FlushAll(sync bool) error {
	r.mu.Lock()
	instances := make([]*Instance, 0, len(r.entries))
	for _, entry := range r.entries {
		instances = append(instances, entry.inst)
	}
	r.mu.Unlock()

	var errs []error
	for _, inst := range instances {
		if _, err := inst.Flush(sync); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", inst.Prefix(), err))
		}
	}
	return errors.Join(errs...)
}

// activePaths snapshots every instance's open file for the sweepers.
func (r *Registry) activePaths() map[string]struct{} {
	r.mu.Lock()
	instances := make([]*Instance, 0, len(r.entries))
	for _, entry := range r.entries {
		instances = append(instances, entry.inst)
	}
	r.mu.Unlock()

	paths := make(map[string]struct{}, len(instances))
	for _, inst := range instances {
		if p := inst.ActivePath(); p != "" {
			paths[p] = struct{}{}
		}
	}
	return paths
}

// Close drains and releases every instance and stops the supervisor.
// The registry is unusable afterwards.
func (r *Registry) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	remaining := r.entries
	r.entries = make(map[string]*registryEntry)
	r.mu.Unlock()

	var errs []error
	for prefix, entry := range remaining {
		if err := r.teardown(prefix, entry); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", prefix, err))
		}
	}

	r.cancel()
	if err := <-r.supErr; err != nil && !errors.Is(err, context.Canceled) {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

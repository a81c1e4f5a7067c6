// Silt - Embedded Rotating Telemetry Appender
// Copyright 2026 M. Waldrop (mwaldrop)
// SPDX-License-Identifier: Apache-2.0
// https://github.com/mwaldrop/silt

package silt

import (
	"errors"
	"testing"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	r := NewRegistry(RegistryOptions{})
	t.Cleanup(func() { r.Close() })
	return r
}

// syncConfig keeps tests deterministic: every write lands on disk
// before the call returns.
func syncConfig(t *testing.T) Config {
	t.Helper()
	cfg := validConfig(t)
	cfg.Mode = "sync"
	cfg.CompressMode = "none"
	cfg.CompressLevel = 0
	cfg.CacheDays = 0
	cfg.Level = "verbose"
	return cfg
}

func TestNewThenGetReturnsSameInstance(t *testing.T) {
	r := newTestRegistry(t)
	cfg := syncConfig(t)

	created, err := r.NewInstance(cfg)
	if err != nil {
		t.Fatalf("NewInstance: %v", err)
	}
	got, err := r.GetInstance(cfg.NamePrefix)
	if err != nil {
		t.Fatalf("GetInstance: %v", err)
	}
	if got != created {
		t.Error("GetInstance returned a different instance")
	}
}

func TestDuplicatePrefixRejected(t *testing.T) {
	r := newTestRegistry(t)
	cfg := syncConfig(t)

	if _, err := r.NewInstance(cfg); err != nil {
		t.Fatalf("NewInstance: %v", err)
	}
	if _, err := r.NewInstance(cfg); !errors.Is(err, ErrDuplicatePrefix) {
		t.Errorf("second NewInstance = %v, want ErrDuplicatePrefix", err)
	}
}

func TestNewInstanceInvalidConfig(t *testing.T) {
	r := newTestRegistry(t)
	cfg := syncConfig(t)
	cfg.LogDir = ""
	if _, err := r.NewInstance(cfg); !errors.Is(err, ErrConfigInvalid) {
		t.Errorf("NewInstance = %v, want ErrConfigInvalid", err)
	}
}

func TestGetUnknownPrefix(t *testing.T) {
	r := newTestRegistry(t)
	if _, err := r.GetInstance("ghost"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetInstance = %v, want ErrNotFound", err)
	}
}

func TestReleaseRefcounting(t *testing.T) {
	r := newTestRegistry(t)
	cfg := syncConfig(t)

	if _, err := r.NewInstance(cfg); err != nil {
		t.Fatalf("NewInstance: %v", err)
	}
	if _, err := r.GetInstance(cfg.NamePrefix); err != nil {
		t.Fatalf("GetInstance: %v", err)
	}

	// Two references: the first release keeps the instance alive.
	if err := r.ReleaseInstance(cfg.NamePrefix); err != nil {
		t.Fatalf("first ReleaseInstance: %v", err)
	}
	if _, err := r.GetInstance(cfg.NamePrefix); err != nil {
		t.Fatalf("instance gone after non-final release: %v", err)
	}
	r.ReleaseInstance(cfg.NamePrefix)

	// Final release removes it.
	if err := r.ReleaseInstance(cfg.NamePrefix); err != nil {
		t.Fatalf("final ReleaseInstance: %v", err)
	}
	if _, err := r.GetInstance(cfg.NamePrefix); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetInstance after release = %v, want ErrNotFound", err)
	}
}

func TestReleaseAlreadyReleasedIsNotFound(t *testing.T) {
	r := newTestRegistry(t)
	cfg := syncConfig(t)

	r.NewInstance(cfg)
	if err := r.ReleaseInstance(cfg.NamePrefix); err != nil {
		t.Fatalf("ReleaseInstance: %v", err)
	}
	if err := r.ReleaseInstance(cfg.NamePrefix); !errors.Is(err, ErrNotFound) {
		t.Errorf("double release = %v, want ErrNotFound", err)
	}
	if err := r.ReleaseInstance("never-existed"); !errors.Is(err, ErrNotFound) {
		t.Errorf("release unknown = %v, want ErrNotFound", err)
	}
}

func TestReleaseDrainsBufferedRecords(t *testing.T) {
	r := newTestRegistry(t)
	cfg := syncConfig(t)
	cfg.Mode = "async"

	inst, err := r.NewInstance(cfg)
	if err != nil {
		t.Fatalf("NewInstance: %v", err)
	}
	for i := range 5 {
		inst.Write(LevelInfo, "t", "buffered record "+string(rune('a'+i)))
	}

	if err := r.ReleaseInstance(cfg.NamePrefix); err != nil {
		t.Fatalf("ReleaseInstance: %v", err)
	}

	paths, err := inst.Filepaths(0)
	if err != nil {
		t.Fatalf("Filepaths: %v", err)
	}
	if len(paths) == 0 {
		t.Fatal("release did not persist buffered records")
	}
	records := readRecords(t, paths)
	if len(records) != 5 {
		t.Errorf("got %d records after release, want 5", len(records))
	}
}

func TestOpenGetOrCreate(t *testing.T) {
	r := newTestRegistry(t)
	cfg := syncConfig(t)

	first, err := r.Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	second, err := r.Open(cfg)
	if err != nil {
		t.Fatalf("second Open: %v", err)
	}
	if first != second {
		t.Error("Open created a second instance for the same prefix")
	}

	// Two references now; instance survives one release.
	r.ReleaseInstance(cfg.NamePrefix)
	if _, err := r.GetInstance(cfg.NamePrefix); err != nil {
		t.Errorf("instance gone after one of two releases: %v", err)
	}
}

func TestCloseDefault(t *testing.T) {
	r := newTestRegistry(t)

	if err := r.CloseDefault(); !errors.Is(err, ErrNotFound) {
		t.Errorf("CloseDefault before Open = %v, want ErrNotFound", err)
	}

	cfg := syncConfig(t)
	if _, err := r.Open(cfg); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := r.CloseDefault(); err != nil {
		t.Fatalf("CloseDefault: %v", err)
	}
	if _, err := r.GetInstance(cfg.NamePrefix); !errors.Is(err, ErrNotFound) {
		t.Errorf("default instance still live after CloseDefault: %v", err)
	}
	if err := r.CloseDefault(); !errors.Is(err, ErrNotFound) {
		t.Errorf("second CloseDefault = %v, want ErrNotFound", err)
	}
}

func TestFlushAll(t *testing.T) {
	r := newTestRegistry(t)

	cfgA := syncConfig(t)
	cfgA.Mode = "async"
	cfgA.NamePrefix = "alpha"
	cfgB := syncConfig(t)
	cfgB.Mode = "async"
	cfgB.NamePrefix = "beta"

	a, _ := r.NewInstance(cfgA)
	b, _ := r.NewInstance(cfgB)
	a.Write(LevelInfo, "", "from alpha")
	b.Write(LevelInfo, "", "from beta")

	if err := r.FlushAll(true); err != nil {
		t.Fatalf("FlushAll: %v", err)
	}
	for _, inst := range []*Instance{a, b} {
		paths, err := inst.Filepaths(0)
		if err != nil || len(paths) == 0 {
			t.Errorf("%s not persisted by FlushAll (paths %v, err %v)", inst.Prefix(), paths, err)
		}
	}
}

func TestRegistryClosedRejectsUse(t *testing.T) {
	r := NewRegistry(RegistryOptions{})
	if err := r.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := r.NewInstance(syncConfig(t)); !errors.Is(err, ErrRegistryClosed) {
		t.Errorf("NewInstance after close = %v, want ErrRegistryClosed", err)
	}
	if _, err := r.GetInstance("app"); !errors.Is(err, ErrRegistryClosed) {
		t.Errorf("GetInstance after close = %v, want ErrRegistryClosed", err)
	}
	// Close is idempotent.
	if err := r.Close(); err != nil {
		t.Errorf("second Close = %v", err)
	}
}

func TestCloseDrainsAllInstances(t *testing.T) {
	r := NewRegistry(RegistryOptions{})
	cfg := syncConfig(t)
	cfg.Mode = "async"

	inst, err := r.NewInstance(cfg)
	if err != nil {
		t.Fatalf("NewInstance: %v", err)
	}
	inst.Write(LevelInfo, "", "pending at close")

	if err := r.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	paths, err := inst.Filepaths(0)
	if err != nil || len(paths) == 0 {
		t.Fatalf("Close did not persist pending records (paths %v, err %v)", paths, err)
	}
}

// Silt - Embedded Rotating Telemetry Appender
// Copyright 2026 M. Waldrop (mwaldrop)
// SPDX-License-Identifier: Apache-2.0
// https://github.com/mwaldrop/silt

package silt

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestRegistrySweepsExpiredFiles(t *testing.T) {
	cfg := syncConfig(t)
	cfg.CacheDays = 1

	stale := filepath.Join(cfg.LogDir, "app_20200101.slg")
	if err := os.WriteFile(stale, []byte("x"), 0o644); err != nil {
		t.Fatalf("seed stale file: %v", err)
	}

	r := NewRegistry(RegistryOptions{SweepInterval: time.Hour})
	t.Cleanup(func() { r.Close() })
	if _, err := r.NewInstance(cfg); err != nil {
		t.Fatalf("NewInstance: %v", err)
	}

	// The sweeper runs once at startup.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := os.Stat(stale); os.IsNotExist(err) {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Error("stale file survived the startup sweep")
}

func TestRegistrySweepSparesActiveFile(t *testing.T) {
	cfg := syncConfig(t)
	cfg.CacheDays = 1

	r := NewRegistry(RegistryOptions{SweepInterval: 20 * time.Millisecond})
	t.Cleanup(func() { r.Close() })
	inst, err := r.NewInstance(cfg)
	if err != nil {
		t.Fatalf("NewInstance: %v", err)
	}

	inst.Write(LevelInfo, "", "keeps the file active")
	active := inst.ActivePath()
	if active == "" {
		t.Fatal("no active file after sync write")
	}

	// Let several sweep cycles pass; today's active file must survive.
	time.Sleep(150 * time.Millisecond)
	if _, err := os.Stat(active); err != nil {
		t.Errorf("active file missing after sweeps: %v", err)
	}
}

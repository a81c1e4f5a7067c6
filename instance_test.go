// Silt - Embedded Rotating Telemetry Appender
// Copyright 2026 M. Waldrop (mwaldrop)
// SPDX-License-Identifier: Apache-2.0
// https://github.com/mwaldrop/silt

package silt

import (
	"bytes"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/mwaldrop/silt/internal/block"
	"github.com/mwaldrop/silt/internal/seal"
)

// readRecords decodes every given file and returns the records in file
// order.
func readRecords(t *testing.T, paths []string) []Record {
	t.Helper()
	var out []Record
	for _, path := range paths {
		raw, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("read %s: %v", path, err)
		}
		payload, err := block.ReadAll(bytes.NewReader(raw), "")
		if err != nil {
			t.Fatalf("decode %s: %v", path, err)
		}
		records, err := DecodeRecords(payload)
		if err != nil {
			t.Fatalf("parse %s: %v", path, err)
		}
		out = append(out, records...)
	}
	return out
}

func newSyncInstance(t *testing.T, cfg Config) *Instance {
	t.Helper()
	r := newTestRegistry(t)
	inst, err := r.NewInstance(cfg)
	if err != nil {
		t.Fatalf("NewInstance: %v", err)
	}
	return inst
}

func TestWritePersistsRecordFields(t *testing.T) {
	inst := newSyncInstance(t, syncConfig(t))

	if err := inst.Write(LevelWarn, "net", "listener dropped"); err != nil {
		t.Fatalf("Write: %v", err)
	}

	records := readRecords(t, []string{inst.ActivePath()})
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	rec := records[0]
	if rec.Level != "warn" || rec.Tag != "net" || rec.Msg != "listener dropped" {
		t.Errorf("record = %+v", rec)
	}
	if rec.File != "instance_test.go" || rec.Line == 0 || !strings.Contains(rec.Func, "TestWritePersistsRecordFields") {
		t.Errorf("caller capture = (%q, %d, %q)", rec.File, rec.Line, rec.Func)
	}
	if rec.TS.IsZero() {
		t.Error("timestamp missing")
	}
}

func TestWriteOrderPreserved(t *testing.T) {
	cfg := syncConfig(t)
	cfg.Mode = "async"
	r := newTestRegistry(t)
	inst, err := r.NewInstance(cfg)
	if err != nil {
		t.Fatalf("NewInstance: %v", err)
	}

	msgs := []string{"first", "second", "third", "fourth"}
	for _, m := range msgs {
		inst.Write(LevelInfo, "", m)
	}
	if action, err := inst.Flush(true); err != nil || action != ActionRotatedAndFlushed {
		t.Fatalf("Flush = (%v, %v)", action, err)
	}

	records := readRecords(t, []string{inst.ActivePath()})
	if len(records) != len(msgs) {
		t.Fatalf("got %d records, want %d", len(records), len(msgs))
	}
	for i, rec := range records {
		if rec.Msg != msgs[i] {
			t.Errorf("records[%d].Msg = %q, want %q", i, rec.Msg, msgs[i])
		}
	}
}

func TestLevelGating(t *testing.T) {
	cfg := syncConfig(t)
	cfg.Level = "warn"
	inst := newSyncInstance(t, cfg)

	if inst.IsEnabled(LevelDebug) || !inst.IsEnabled(LevelWarn) || !inst.IsEnabled(LevelFatal) {
		t.Error("IsEnabled disagrees with warn threshold")
	}
	if inst.IsEnabled(LevelNone) {
		t.Error("LevelNone must never be enabled as a record level")
	}

	inst.Write(LevelDebug, "", "filtered out")
	inst.Write(LevelError, "", "kept")
	records := readRecords(t, []string{inst.ActivePath()})
	if len(records) != 1 || records[0].Msg != "kept" {
		t.Errorf("records = %+v, want only the error record", records)
	}

	// Threshold changes are visible immediately.
	inst.SetLevel(LevelVerbose)
	if inst.GetLevel() != LevelVerbose || !inst.IsEnabled(LevelDebug) {
		t.Error("SetLevel not visible to IsEnabled")
	}
	inst.SetLevel(LevelNone)
	if inst.IsEnabled(LevelFatal) {
		t.Error("threshold none must disable everything")
	}
}

func TestClosedModeDropsAndCounts(t *testing.T) {
	inst := newSyncInstance(t, syncConfig(t))
	inst.SetAppenderMode(ModeClosed)

	for range 3 {
		if err := inst.Write(LevelError, "", "dropped"); err != nil {
			t.Fatalf("Write in closed mode: %v", err)
		}
	}
	if got := inst.Dropped(); got != 3 {
		t.Errorf("Dropped = %d, want 3", got)
	}
	if inst.ActivePath() != "" {
		t.Error("closed mode reached the file pipeline")
	}

	// Reopening resumes writes.
	inst.SetAppenderMode(ModeSync)
	inst.Write(LevelError, "", "resumed")
	if records := readRecords(t, []string{inst.ActivePath()}); len(records) != 1 {
		t.Errorf("got %d records after reopen, want 1", len(records))
	}
}

func TestConsoleMirror(t *testing.T) {
	var buf strings.Builder
	r := NewRegistry(RegistryOptions{ConsoleSink: NewWriterSink(&buf)})
	t.Cleanup(func() { r.Close() })

	cfg := syncConfig(t)
	cfg.ConsoleEnabled = true
	inst, err := r.NewInstance(cfg)
	if err != nil {
		t.Fatalf("NewInstance: %v", err)
	}

	inst.Write(LevelInfo, "boot", "mirrored")
	if got := buf.String(); got != "[info] boot: mirrored\n" {
		t.Errorf("console output = %q", got)
	}

	inst.SetConsoleEnabled(false)
	inst.Write(LevelInfo, "boot", "silent")
	if strings.Contains(buf.String(), "silent") {
		t.Error("console mirror active after disable")
	}
}

func TestSetMaxFileSizeTakesEffect(t *testing.T) {
	inst := newSyncInstance(t, syncConfig(t))

	inst.Write(LevelInfo, "", strings.Repeat("a", 100))
	first := inst.ActivePath()

	inst.SetMaxFileSize(64)
	inst.Write(LevelInfo, "", strings.Repeat("b", 100))
	if inst.ActivePath() == first {
		t.Error("lowered size limit did not trigger rotation")
	}
}

func TestWriteRecordCustomTimestamp(t *testing.T) {
	inst := newSyncInstance(t, syncConfig(t))

	ts := time.Date(2026, 8, 1, 9, 30, 0, 0, time.UTC)
	err := inst.WriteRecord(Record{TS: ts, Level: "info", Msg: "imported"})
	if err != nil {
		t.Fatalf("WriteRecord: %v", err)
	}
	records := readRecords(t, []string{inst.ActivePath()})
	if len(records) != 1 || !records[0].TS.Equal(ts) {
		t.Errorf("records = %+v, want preserved timestamp", records)
	}
}

func TestSealedInstanceRoundTrip(t *testing.T) {
	pub, priv, err := seal.GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}

	cfg := syncConfig(t)
	cfg.PublicKey = pub
	cfg.CompressMode = "zstd"
	cfg.CompressLevel = 3
	inst := newSyncInstance(t, cfg)

	inst.Write(LevelInfo, "sec", "sealed payload")

	raw, err := os.ReadFile(inst.ActivePath())
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if bytes.Contains(raw, []byte("sealed payload")) {
		t.Error("sealed file leaks plaintext")
	}

	payload, err := block.ReadAll(bytes.NewReader(raw), priv)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	records, err := DecodeRecords(payload)
	if err != nil || len(records) != 1 || records[0].Msg != "sealed payload" {
		t.Errorf("decoded = (%+v, %v)", records, err)
	}
}

func TestFilepathsAndLogfileName(t *testing.T) {
	inst := newSyncInstance(t, syncConfig(t))

	// Nothing written yet: empty result, not an error.
	paths, err := inst.Filepaths(0)
	if err != nil {
		t.Fatalf("Filepaths: %v", err)
	}
	if len(paths) != 0 {
		t.Errorf("paths = %v, want empty", paths)
	}

	inst.Write(LevelInfo, "", "creates the file")
	paths, err = inst.Filepaths(0)
	if err != nil || len(paths) != 1 {
		t.Fatalf("Filepaths after write = (%v, %v), want one path", paths, err)
	}
	if paths[0] != inst.ActivePath() {
		t.Errorf("paths[0] = %q, want active %q", paths[0], inst.ActivePath())
	}

	name, err := inst.LogfileName(0)
	if err != nil {
		t.Fatalf("LogfileName: %v", err)
	}
	if !strings.HasSuffix(paths[0], name) {
		t.Errorf("active path %q does not end with %q", paths[0], name)
	}
}

// Silt - Embedded Rotating Telemetry Appender
// Copyright 2026 M. Waldrop (mwaldrop)
// SPDX-License-Identifier: Apache-2.0
// https://github.com/mwaldrop/silt

package silt

import (
	"errors"
	"strings"
	"testing"
)

func TestZeroCapacityReturnsRequiredLength(t *testing.T) {
	inst := newSyncInstance(t, syncConfig(t))
	inst.Write(LevelInfo, "", "create the file")

	need, err := ActivePathInto(inst, nil)
	if !errors.Is(err, ErrTruncated) {
		t.Fatalf("zero-capacity err = %v, want ErrTruncated", err)
	}
	if need != len(inst.ActivePath())+1 {
		t.Errorf("need = %d, want %d", need, len(inst.ActivePath())+1)
	}

	// A buffer of exactly the reported size succeeds and is
	// NUL-terminated.
	buf := make([]byte, need)
	got, err := ActivePathInto(inst, buf)
	if err != nil {
		t.Fatalf("sized call: %v", err)
	}
	if got != need {
		t.Errorf("second need = %d, want %d", got, need)
	}
	if string(buf[:need-1]) != inst.ActivePath() || buf[need-1] != 0 {
		t.Errorf("buf = %q", buf)
	}

	// One byte short still refuses.
	if _, err := ActivePathInto(inst, make([]byte, need-1)); !errors.Is(err, ErrTruncated) {
		t.Errorf("short buffer err = %v, want ErrTruncated", err)
	}
}

func TestCacheDirPathInto(t *testing.T) {
	inst := newSyncInstance(t, syncConfig(t))
	buf := make([]byte, 4096)
	n, err := CacheDirPathInto(inst, buf)
	if err != nil {
		t.Fatalf("CacheDirPathInto: %v", err)
	}
	if string(buf[:n-1]) != inst.CacheDirPath() {
		t.Errorf("buf = %q, want %q", buf[:n-1], inst.CacheDirPath())
	}
}

func TestFilepathsFromTimespanInto(t *testing.T) {
	inst := newSyncInstance(t, syncConfig(t))

	// Empty day: just the terminator.
	buf := make([]byte, 16)
	n, err := FilepathsFromTimespanInto(inst, 0, buf)
	if err != nil {
		t.Fatalf("empty day: %v", err)
	}
	if n != 1 || buf[0] != 0 {
		t.Errorf("empty day = (%d, %q), want lone terminator", n, buf[:n])
	}

	inst.SetMaxFileSize(32)
	inst.Write(LevelInfo, "", strings.Repeat("a", 64))
	inst.Write(LevelInfo, "", strings.Repeat("b", 64))

	need, err := FilepathsFromTimespanInto(inst, 0, nil)
	if !errors.Is(err, ErrTruncated) {
		t.Fatalf("sizing call err = %v, want ErrTruncated", err)
	}
	buf = make([]byte, need)
	if _, err := FilepathsFromTimespanInto(inst, 0, buf); err != nil {
		t.Fatalf("sized call: %v", err)
	}
	joined := string(buf[:need-1])
	paths := strings.Split(joined, "\n")
	if len(paths) < 2 {
		t.Errorf("paths = %q, want at least two rotated files", joined)
	}
	for _, p := range paths {
		if !strings.Contains(p, "app_") {
			t.Errorf("path %q missing prefix", p)
		}
	}
}

func TestLogfileNameInto(t *testing.T) {
	inst := newSyncInstance(t, syncConfig(t))
	need, err := LogfileNameInto(inst, 0, nil)
	if !errors.Is(err, ErrTruncated) {
		t.Fatalf("sizing call err = %v, want ErrTruncated", err)
	}
	buf := make([]byte, need)
	if _, err := LogfileNameInto(inst, 0, buf); err != nil {
		t.Fatalf("sized call: %v", err)
	}
	name := string(buf[:need-1])
	if !strings.HasPrefix(name, "app_") || !strings.HasSuffix(name, ".slg") {
		t.Errorf("name = %q", name)
	}
}

// Silt - Embedded Rotating Telemetry Appender
// Copyright 2026 M. Waldrop (mwaldrop)
// SPDX-License-Identifier: Apache-2.0
// https://github.com/mwaldrop/silt

package rotate

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Ext is the on-disk extension for rotated log files.
const Ext = ".slg"

const dayLayout = "20060102"

var (
	// ErrBadPrefix is returned for an empty prefix or one containing
	// path separators.
	ErrBadPrefix = errors.New("invalid file prefix")

	// nameRe captures prefix, day stamp, and optional overflow sequence.
	nameRe = regexp.MustCompile(`^(.+)_(\d{8})(?:_(\d+))?\.slg$`)
)

// ValidatePrefix rejects prefixes that would break filename parsing or
// escape the log directory.
func ValidatePrefix(prefix string) error {
	if prefix == "" {
		return fmt.Errorf("%w: empty", ErrBadPrefix)
	}
	if strings.ContainsAny(prefix, `/\`) || prefix != filepath.Base(prefix) {
		return fmt.Errorf("%w: %q contains path elements", ErrBadPrefix, prefix)
	}
	return nil
}

// DayKey formats t as the YYYYMMDD day stamp embedded in filenames.
func DayKey(t time.Time) string {
	return t.Format(dayLayout)
}

// ParseDay parses a YYYYMMDD day stamp back into a midnight-local time.
func ParseDay(day string) (time.Time, error) {
	return time.ParseInLocation(dayLayout, day, time.Local)
}

// Name builds the filename for a given prefix, day stamp, and overflow
// sequence. Sequence 0 is the bare daily file; higher sequences carry a
// numeric suffix.
func Name(prefix, day string, seq int) string {
	if seq <= 0 {
		return prefix + "_" + day + Ext
	}
	return prefix + "_" + day + "_" + strconv.Itoa(seq) + Ext
}

// ParseName splits a filename produced by Name. ok is false for files
// that do not follow the naming scheme; those are never touched by the
// sweeper.
func ParseName(name string) (prefix, day string, seq int, ok bool) {
	m := nameRe.FindStringSubmatch(name)
	if m == nil {
		return "", "", 0, false
	}
	prefix, day = m[1], m[2]
	if m[3] != "" {
		n, err := strconv.Atoi(m[3])
		if err != nil {
			return "", "", 0, false
		}
		seq = n
	}
	return prefix, day, seq, true
}

// MakeLogfileName returns the base filename (sequence 0) for the day
// timespanDays before now. timespanDays 0 means today.
func MakeLogfileName(prefix string, now time.Time, timespanDays int) (string, error) {
	if err := ValidatePrefix(prefix); err != nil {
		return "", err
	}
	day := DayKey(now.AddDate(0, 0, -timespanDays))
	return Name(prefix, day, 0), nil
}

// FilepathsFromTimespan lists every log file in dir belonging to prefix
// on the day timespanDays before now, sorted by overflow sequence. A day
// with no files yields an empty slice, not an error; errors are reserved
// for a bad prefix or an unreadable directory.
func FilepathsFromTimespan(dir, prefix string, now time.Time, timespanDays int) ([]string, error) {
	if err := ValidatePrefix(prefix); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read log dir: %w", err)
	}

	wantDay := DayKey(now.AddDate(0, 0, -timespanDays))
	type match struct {
		path string
		seq  int
	}
	var found []match
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		p, day, seq, ok := ParseName(e.Name())
		if !ok || p != prefix || day != wantDay {
			continue
		}
		found = append(found, match{path: filepath.Join(dir, e.Name()), seq: seq})
	}
	sort.Slice(found, func(i, j int) bool { return found[i].seq < found[j].seq })

	paths := make([]string, len(found))
	for i, m := range found {
		paths[i] = m.path
	}
	return paths, nil
}

// MaxSeq scans dir for the highest overflow sequence already used by
// prefix on the given day. found is false when no file for that day
// exists yet.
func MaxSeq(dir, prefix, day string) (maxSeq int, found bool, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("read log dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		p, d, seq, ok := ParseName(e.Name())
		if !ok || p != prefix || d != day {
			continue
		}
		if !found || seq > maxSeq {
			maxSeq = seq
		}
		found = true
	}
	return maxSeq, found, nil
}

// Silt - Embedded Rotating Telemetry Appender
// Copyright 2026 M. Waldrop (mwaldrop)
// SPDX-License-Identifier: Apache-2.0
// https://github.com/mwaldrop/silt

package dump

import (
	"fmt"
	"strings"
)

const (
	// bytesPerLine is the number of bytes rendered per hex line.
	bytesPerLine = 16

	// MaxDumpBytes caps rendered output; bytes beyond the cap are
	// summarized by a truncation marker.
	MaxDumpBytes = 64 * 1024
)

// Dump renders a byte buffer as a hex/ASCII dump.
// Empty input yields an empty string. Input longer than MaxDumpBytes is
// rendered up to the cap and terminated with a truncation marker naming
// the number of omitted bytes.
func Dump(b []byte) string {
	return render(b, 0)
}

// MemoryDump renders a byte region like Dump but prefixes a header with
// the region length, for crash snapshots where the caller wants the
// region framed explicitly.
func MemoryDump(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "memory region: %d bytes\n", len(b))
	sb.WriteString(render(b, 0))
	return sb.String()
}

// render produces the hex/ASCII lines. base offsets the printed
// addresses; the appender always passes 0 but keeping it explicit makes
// the line format independent of slicing.
func render(b []byte, base int) string {
	if len(b) == 0 {
		return ""
	}

	truncated := 0
	if len(b) > MaxDumpBytes {
		truncated = len(b) - MaxDumpBytes
		b = b[:MaxDumpBytes]
	}

	var sb strings.Builder
	for off := 0; off < len(b); off += bytesPerLine {
		end := off + bytesPerLine
		if end > len(b) {
			end = len(b)
		}
		line := b[off:end]

		fmt.Fprintf(&sb, "%08x  ", base+off)
		for i := 0; i < bytesPerLine; i++ {
			if i < len(line) {
				fmt.Fprintf(&sb, "%02x ", line[i])
			} else {
				sb.WriteString("   ")
			}
			if i == bytesPerLine/2-1 {
				sb.WriteByte(' ')
			}
		}
		sb.WriteString(" |")
		for _, c := range line {
			if c >= 0x20 && c < 0x7f {
				sb.WriteByte(c)
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteString("|\n")
	}

	if truncated > 0 {
		fmt.Fprintf(&sb, "... truncated (%d bytes)\n", truncated)
	}
	return sb.String()
}

// Silt - Embedded Rotating Telemetry Appender
// Copyright 2026 M. Waldrop (mwaldrop)
// SPDX-License-Identifier: Apache-2.0
// https://github.com/mwaldrop/silt

package buffer

import (
	"bytes"
	"fmt"
	"testing"
)

func TestAppendAccounting(t *testing.T) {
	b := New(4)
	if b.Len() != 0 || b.Bytes() != 0 {
		t.Fatalf("new buffer = (%d, %d), want (0, 0)", b.Len(), b.Bytes())
	}

	b.Append([]byte("alpha"))
	b.Append([]byte("be"))
	if b.Len() != 2 {
		t.Errorf("Len = %d, want 2", b.Len())
	}
	if b.Bytes() != 7 {
		t.Errorf("Bytes = %d, want 7", b.Bytes())
	}
}

func TestTakeAllPreservesOrderAndResets(t *testing.T) {
	b := New(0)
	for i := range 10 {
		b.Append(fmt.Appendf(nil, "record-%d", i))
	}

	records, size := b.TakeAll()
	if len(records) != 10 {
		t.Fatalf("took %d records, want 10", len(records))
	}
	if size != b.Bytes()+size {
		t.Errorf("size = %d but buffer still reports %d", size, b.Bytes())
	}
	for i, rec := range records {
		want := fmt.Appendf(nil, "record-%d", i)
		if !bytes.Equal(rec, want) {
			t.Errorf("records[%d] = %q, want %q", i, rec, want)
		}
	}

	if b.Len() != 0 || b.Bytes() != 0 {
		t.Errorf("after TakeAll = (%d, %d), want (0, 0)", b.Len(), b.Bytes())
	}

	// Appends after a take do not disturb the taken snapshot.
	b.Append([]byte("after"))
	if !bytes.Equal(records[0], []byte("record-0")) {
		t.Error("snapshot mutated by later append")
	}
}

func TestTakeAllEmpty(t *testing.T) {
	b := New(2)
	records, size := b.TakeAll()
	if len(records) != 0 || size != 0 {
		t.Errorf("TakeAll on empty = (%d records, %d bytes), want (0, 0)", len(records), size)
	}
}

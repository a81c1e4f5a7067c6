// Silt - Embedded Rotating Telemetry Appender
// Copyright 2026 M. Waldrop (mwaldrop)
// SPDX-License-Identifier: Apache-2.0
// https://github.com/mwaldrop/silt

package buffer

// RecordBuffer accumulates encoded records until the next flush. It
// takes ownership of appended slices; callers must not reuse them.
type RecordBuffer struct {
	records [][]byte
	bytes   int
}

// New returns an empty buffer with room for hint records before the
// backing slice grows.
func New(hint int) *RecordBuffer {
	if hint < 0 {
		hint = 0
	}
	return &RecordBuffer{records: make([][]byte, 0, hint)}
}

// Append adds one encoded record.
func (b *RecordBuffer) Append(rec []byte) {
	b.records = append(b.records, rec)
	b.bytes += len(rec)
}

// Len reports the number of buffered records.
func (b *RecordBuffer) Len() int {
	return len(b.records)
}

// Bytes reports the total size of buffered records.
func (b *RecordBuffer) Bytes() int {
	return b.bytes
}

// TakeAll removes and returns every buffered record in append order,
// leaving the buffer empty and ready for reuse.
func (b *RecordBuffer) TakeAll() (records [][]byte, size int) {
	records, size = b.records, b.bytes
	b.records = make([][]byte, 0, cap(records))
	b.bytes = 0
	return records, size
}

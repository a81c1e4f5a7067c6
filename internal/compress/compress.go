// Silt - Embedded Rotating Telemetry Appender
// Copyright 2026 M. Waldrop (mwaldrop)
// SPDX-License-Identifier: Apache-2.0
// https://github.com/mwaldrop/silt

package compress

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
)

// Mode selects the compression algorithm for persisted blocks.
type Mode uint8

const (
	// ModeNone passes bytes through unchanged.
	ModeNone Mode = iota

	// ModeZlib compresses with zlib (levels -2..9, 6 is the usual default).
	ModeZlib

	// ModeZstd compresses with zstandard (levels 1..22).
	ModeZstd
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeNone:
		return "none"
	case ModeZlib:
		return "zlib"
	case ModeZstd:
		return "zstd"
	default:
		return fmt.Sprintf("mode(%d)", uint8(m))
	}
}

// Valid reports whether m names a known mode.
func (m Mode) Valid() bool {
	return m <= ModeZstd
}

var (
	// ErrInvalidLevel is returned when the level is out of range for the mode.
	ErrInvalidLevel = errors.New("compression level invalid for mode")

	// ErrInvalidMode is returned for an unknown compression mode.
	ErrInvalidMode = errors.New("unknown compression mode")
)

// ValidateLevel checks that level is acceptable for mode.
// ModeNone accepts any level (it is ignored).
func ValidateLevel(mode Mode, level int) error {
	switch mode {
	case ModeNone:
		return nil
	case ModeZlib:
		if level < zlib.HuffmanOnly || level > zlib.BestCompression {
			return fmt.Errorf("%w: zlib level %d not in [%d, %d]",
				ErrInvalidLevel, level, zlib.HuffmanOnly, zlib.BestCompression)
		}
		return nil
	case ModeZstd:
		if level < 1 || level > 22 {
			return fmt.Errorf("%w: zstd level %d not in [1, 22]", ErrInvalidLevel, level)
		}
		return nil
	default:
		return fmt.Errorf("%w: %d", ErrInvalidMode, uint8(mode))
	}
}

// Compress transforms b according to mode and level.
// It is deterministic for a given (mode, level, input) and side-effect
// free. An invalid level is an error, never a passthrough.
func Compress(b []byte, mode Mode, level int) ([]byte, error) {
	if err := ValidateLevel(mode, level); err != nil {
		return nil, err
	}

	switch mode {
	case ModeNone:
		out := make([]byte, len(b))
		copy(out, b)
		return out, nil

	case ModeZlib:
		var buf bytes.Buffer
		w, err := zlib.NewWriterLevel(&buf, level)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidLevel, err)
		}
		if _, err := w.Write(b); err != nil {
			return nil, fmt.Errorf("zlib write: %w", err)
		}
		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("zlib close: %w", err)
		}
		return buf.Bytes(), nil

	case ModeZstd:
		enc, err := zstd.NewWriter(nil,
			zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)),
			zstd.WithEncoderConcurrency(1),
		)
		if err != nil {
			return nil, fmt.Errorf("zstd encoder: %w", err)
		}
		defer enc.Close()
		return enc.EncodeAll(b, nil), nil

	default:
		return nil, fmt.Errorf("%w: %d", ErrInvalidMode, uint8(mode))
	}
}

// Decompress reverses Compress for the given mode. The level used to
// compress does not matter for decoding.
func Decompress(b []byte, mode Mode) ([]byte, error) {
	switch mode {
	case ModeNone:
		out := make([]byte, len(b))
		copy(out, b)
		return out, nil

	case ModeZlib:
		r, err := zlib.NewReader(bytes.NewReader(b))
		if err != nil {
			return nil, fmt.Errorf("zlib reader: %w", err)
		}
		defer r.Close()
		out, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("zlib read: %w", err)
		}
		return out, nil

	case ModeZstd:
		dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, fmt.Errorf("zstd decoder: %w", err)
		}
		defer dec.Close()
		out, err := dec.DecodeAll(b, nil)
		if err != nil {
			return nil, fmt.Errorf("zstd decode: %w", err)
		}
		return out, nil

	default:
		return nil, fmt.Errorf("%w: %d", ErrInvalidMode, uint8(mode))
	}
}

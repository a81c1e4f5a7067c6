// Silt - Embedded Rotating Telemetry Appender
// Copyright 2026 M. Waldrop (mwaldrop)
// SPDX-License-Identifier: Apache-2.0
// https://github.com/mwaldrop/silt

package block

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/mwaldrop/silt/internal/compress"
	"github.com/mwaldrop/silt/internal/seal"
)

// Magic opens every block.
var Magic = []byte("SLT1")

const (
	headerSize = 4 + 1 + 1 // magic, mode, sealed flag
	lenSize    = 4

	// maxPayload caps a decoded block so a corrupt length field cannot
	// trigger a huge allocation.
	maxPayload = 64 << 20
)

var (
	// ErrBadMagic is returned when a block does not start with Magic.
	ErrBadMagic = errors.New("bad block magic")

	// ErrTruncated is returned for a block cut short, typically the
	// tail of a file interrupted mid-write.
	ErrTruncated = errors.New("truncated block")
)

// Build frames a batch of records into one block. The records are
// concatenated, compressed with the given mode and level, and sealed
// when sealer is non-nil.
func Build(records [][]byte, mode compress.Mode, level int, sealer *seal.Sealer) ([]byte, error) {
	payload := bytes.Join(records, nil)

	compressed, err := compress.Compress(payload, mode, level)
	if err != nil {
		return nil, err
	}

	sealed := byte(0)
	var ephPub, nonce []byte
	if sealer != nil {
		sealed = 1
		ephPub, nonce, compressed, err = sealer.Seal(compressed)
		if err != nil {
			return nil, fmt.Errorf("seal block: %w", err)
		}
	}

	out := make([]byte, 0, headerSize+len(ephPub)+len(nonce)+lenSize+len(compressed))
	out = append(out, Magic...)
	out = append(out, byte(mode), sealed)
	out = append(out, ephPub...)
	out = append(out, nonce...)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(compressed)))
	out = append(out, compressed...)
	return out, nil
}

// Reader decodes blocks from a log file. privHex is only consulted for
// sealed blocks; it may be empty for plain files.
type Reader struct {
	r       io.Reader
	privHex string
}

// NewReader wraps r for block-at-a-time decoding.
func NewReader(r io.Reader, privHex string) *Reader {
	return &Reader{r: r, privHex: privHex}
}

// Next reads and decodes one block, returning the decompressed record
// payload. It returns io.EOF cleanly at end of file and ErrTruncated
// when the file ends inside a block.
func (br *Reader) Next() ([]byte, error) {
	head := make([]byte, headerSize)
	if _, err := io.ReadFull(br.r, head); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("%w: header", ErrTruncated)
	}
	if !bytes.Equal(head[:4], Magic) {
		return nil, ErrBadMagic
	}

	mode := compress.Mode(head[4])
	if !mode.Valid() {
		return nil, fmt.Errorf("%w: unknown compression mode %d", ErrBadMagic, head[4])
	}
	sealed := head[5] == 1

	var ephPub, nonce []byte
	if sealed {
		ephPub = make([]byte, seal.KeySize)
		nonce = make([]byte, seal.NonceSize)
		if _, err := io.ReadFull(br.r, ephPub); err != nil {
			return nil, fmt.Errorf("%w: ephemeral key", ErrTruncated)
		}
		if _, err := io.ReadFull(br.r, nonce); err != nil {
			return nil, fmt.Errorf("%w: nonce", ErrTruncated)
		}
	}

	var lenBuf [lenSize]byte
	if _, err := io.ReadFull(br.r, lenBuf[:]); err != nil {
		return nil, fmt.Errorf("%w: length", ErrTruncated)
	}
	n := binary.LittleEndian.Uint32(lenBuf[:])
	if n > maxPayload {
		return nil, fmt.Errorf("%w: implausible payload length %d", ErrBadMagic, n)
	}

	payload := make([]byte, n)
	if _, err := io.ReadFull(br.r, payload); err != nil {
		return nil, fmt.Errorf("%w: payload", ErrTruncated)
	}

	if sealed {
		var err error
		payload, err = seal.Open(br.privHex, ephPub, nonce, payload)
		if err != nil {
			return nil, fmt.Errorf("open sealed block: %w", err)
		}
	}

	return compress.Decompress(payload, mode)
}

// ReadAll decodes every block in r and concatenates the payloads. A
// truncated final block ends the read with ErrTruncated alongside the
// records recovered so far.
func ReadAll(r io.Reader, privHex string) ([]byte, error) {
	br := NewReader(r, privHex)
	var out bytes.Buffer
	for {
		payload, err := br.Next()
		if err == io.EOF {
			return out.Bytes(), nil
		}
		if err != nil {
			return out.Bytes(), err
		}
		out.Write(payload)
	}
}

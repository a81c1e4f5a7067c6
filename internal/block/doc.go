// Silt - Embedded Rotating Telemetry Appender
// Copyright 2026 M. Waldrop (mwaldrop)
// SPDX-License-Identifier: Apache-2.0
// https://github.com/mwaldrop/silt

// Package block frames flushed record batches for the on-disk file
// format.
//
// Each flush produces one self-describing block:
//
//	magic "SLT1" (4 bytes)
//	compression mode (1 byte)
//	sealed flag (1 byte)
//	[sealed only] ephemeral X25519 public key (32 bytes)
//	[sealed only] AES-GCM nonce (12 bytes)
//	payload length (uint32, little endian)
//	payload
//
// The payload is the concatenation of whole records, compressed and
// then sealed in that order. Because every block starts with the magic
// and carries its own length, a reader can resynchronize after a torn
// tail write by scanning forward, and a truncated final block is
// detected rather than misparsed.
package block

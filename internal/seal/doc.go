// Silt - Embedded Rotating Telemetry Appender
// Copyright 2026 M. Waldrop (mwaldrop)
// SPDX-License-Identifier: Apache-2.0
// https://github.com/mwaldrop/silt

// Package seal encrypts persisted blocks against a deployment public key.
//
// The writer side holds only the recipient's X25519 public key, so a
// compromised device cannot read back its own archived telemetry. Each
// sealed block uses a fresh ephemeral key pair: the block key is
// HKDF-SHA256 over the ECDH shared secret, and the payload is encrypted
// with AES-256-GCM. The ephemeral public key and GCM nonce travel in the
// block header; the recipient recovers the key with their private half.
//
// This framing is defined here from scratch and carries no compatibility
// promise with any other on-disk format.
package seal

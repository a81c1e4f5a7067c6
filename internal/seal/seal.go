// Silt - Embedded Rotating Telemetry Appender
// Copyright 2026 M. Waldrop (mwaldrop)
// SPDX-License-Identifier: Apache-2.0
// https://github.com/mwaldrop/silt

package seal

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/ecdh"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

const (
	// KeySize is the X25519 key length in bytes (64 hex characters).
	KeySize = 32

	// NonceSize is the AES-GCM nonce length in bytes.
	NonceSize = 12

	// blockSealSalt binds derived keys to this use case.
	blockSealSalt = "silt-block-seal"

	// blockSealInfo is the HKDF info parameter, versioned with the framing.
	blockSealInfo = "block-seal-v1"

	// aesKeySize is the derived AES key length (256 bits).
	aesKeySize = 32
)

var (
	// ErrInvalidKey is returned for a malformed public or private key.
	ErrInvalidKey = errors.New("invalid X25519 key")

	// ErrOpenFailed is returned when a sealed payload fails to decrypt.
	ErrOpenFailed = errors.New("open failed: invalid ciphertext or authentication tag")
)

// Sealer encrypts block payloads against a fixed recipient public key.
// A Sealer is immutable and safe for concurrent use.
type Sealer struct {
	recipient *ecdh.PublicKey
}

// NewSealer parses a 64-character hex X25519 public key.
func NewSealer(pubHex string) (*Sealer, error) {
	raw, err := hex.DecodeString(pubHex)
	if err != nil {
		return nil, fmt.Errorf("%w: not hex: %v", ErrInvalidKey, err)
	}
	if len(raw) != KeySize {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidKey, len(raw), KeySize)
	}
	pub, err := ecdh.X25519().NewPublicKey(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	return &Sealer{recipient: pub}, nil
}

// Seal encrypts plain for the recipient. It returns the ephemeral public
// key and nonce that must travel in the block header alongside the
// ciphertext.
func (s *Sealer) Seal(plain []byte) (ephemeralPub, nonce, ciphertext []byte, err error) {
	ephemeral, err := ecdh.X25519().GenerateKey(rand.Reader)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("generate ephemeral key: %w", err)
	}

	shared, err := ephemeral.ECDH(s.recipient)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("ecdh: %w", err)
	}

	aead, err := newAEAD(shared)
	if err != nil {
		return nil, nil, nil, err
	}

	nonce = make([]byte, NonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, nil, nil, fmt.Errorf("generate nonce: %w", err)
	}

	ciphertext = aead.Seal(nil, nonce, plain, nil)
	return ephemeral.PublicKey().Bytes(), nonce, ciphertext, nil
}

// Open decrypts a sealed payload with the recipient's private key.
// This is the reader side; the appender itself never holds the private
// half.
func Open(privHex string, ephemeralPub, nonce, ciphertext []byte) ([]byte, error) {
	raw, err := hex.DecodeString(privHex)
	if err != nil {
		return nil, fmt.Errorf("%w: not hex: %v", ErrInvalidKey, err)
	}
	priv, err := ecdh.X25519().NewPrivateKey(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}

	pub, err := ecdh.X25519().NewPublicKey(ephemeralPub)
	if err != nil {
		return nil, fmt.Errorf("%w: ephemeral: %v", ErrInvalidKey, err)
	}

	shared, err := priv.ECDH(pub)
	if err != nil {
		return nil, fmt.Errorf("ecdh: %w", err)
	}

	aead, err := newAEAD(shared)
	if err != nil {
		return nil, err
	}

	if len(nonce) != NonceSize {
		return nil, ErrOpenFailed
	}
	plain, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrOpenFailed
	}
	return plain, nil
}

// GenerateKeyPair returns a fresh (public, private) hex key pair for
// provisioning a deployment.
func GenerateKeyPair() (pubHex, privHex string, err error) {
	priv, err := ecdh.X25519().GenerateKey(rand.Reader)
	if err != nil {
		return "", "", fmt.Errorf("generate key: %w", err)
	}
	return hex.EncodeToString(priv.PublicKey().Bytes()), hex.EncodeToString(priv.Bytes()), nil
}

// newAEAD derives the block key from the ECDH shared secret and builds
// the AES-256-GCM cipher.
func newAEAD(shared []byte) (cipher.AEAD, error) {
	kdf := hkdf.New(sha256.New, shared, []byte(blockSealSalt), []byte(blockSealInfo))
	key := make([]byte, aesKeySize)
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, fmt.Errorf("derive block key: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("aes cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("gcm: %w", err)
	}
	return aead, nil
}

// Silt - Embedded Rotating Telemetry Appender
// Copyright 2026 M. Waldrop (mwaldrop)
// SPDX-License-Identifier: Apache-2.0
// https://github.com/mwaldrop/silt

package silt

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/mwaldrop/silt/internal/compress"
	"github.com/mwaldrop/silt/internal/rotate"
)

// AppenderMode controls how writes reach disk.
type AppenderMode int32

const (
	// ModeAsync buffers writes; the flush worker drains them.
	ModeAsync AppenderMode = iota

	// ModeSync flushes after every write.
	ModeSync

	// ModeClosed drops and counts every write.
	ModeClosed
)

// String returns the mode name used in configuration.
func (m AppenderMode) String() string {
	switch m {
	case ModeAsync:
		return "async"
	case ModeSync:
		return "sync"
	case ModeClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// ParseAppenderMode maps a configuration string to its mode. Unknown
// strings default to ModeAsync.
func ParseAppenderMode(s string) AppenderMode {
	switch strings.ToLower(s) {
	case "sync":
		return ModeSync
	case "closed":
		return ModeClosed
	default:
		return ModeAsync
	}
}

// CompressMode selects the per-block codec.
type CompressMode = compress.Mode

const (
	CompressNone = compress.ModeNone
	CompressZlib = compress.ModeZlib
	CompressZstd = compress.ModeZstd
)

// ParseCompressMode maps a configuration string to its codec.
func ParseCompressMode(s string) (CompressMode, error) {
	switch strings.ToLower(s) {
	case "none", "":
		return CompressNone, nil
	case "zlib":
		return CompressZlib, nil
	case "zstd":
		return CompressZstd, nil
	default:
		return CompressNone, fmt.Errorf("%w: unknown compress mode %q", ErrConfigInvalid, s)
	}
}

// Config is the immutable per-instance snapshot taken at creation
// time. Path derivation and compression settings are fixed until the
// instance is released and recreated; size, age, level, mode, and
// console settings have runtime mutators on Instance.
type Config struct {
	// Mode is the appender mode: async, sync, or closed.
	Mode string `koanf:"mode" validate:"omitempty,oneof=async sync closed"`

	// LogDir is the directory for active log files. Required.
	LogDir string `koanf:"log_dir" validate:"required"`

	// NamePrefix keys the instance and names its files. Required.
	NamePrefix string `koanf:"name_prefix" validate:"required"`

	// Level is the minimum severity persisted.
	Level string `koanf:"level"`

	// PublicKey enables block sealing when set. 64 hex characters.
	PublicKey string `koanf:"public_key" validate:"omitempty,hexadecimal,len=64"`

	// CompressMode is none, zlib, or zstd.
	CompressMode string `koanf:"compress_mode" validate:"omitempty,oneof=none zlib zstd"`

	// CompressLevel is codec-specific; validated against the mode.
	CompressLevel int `koanf:"compress_level"`

	// CacheDir is swept for expired files. Defaults to LogDir.
	CacheDir string `koanf:"cache_dir"`

	// CacheDays keeps files for this many days. 0 disables pruning.
	CacheDays int `koanf:"cache_days" validate:"gte=0"`

	// MaxFileSize rotates after this many raw record bytes. 0 means
	// no size rotation.
	MaxFileSize int64 `koanf:"max_file_size" validate:"gte=0"`

	// MaxAliveTime rotates a file once it has been open this long.
	MaxAliveTime time.Duration `koanf:"max_alive_time" validate:"gte=0"`

	// FlushInterval is the async flush cadence.
	FlushInterval time.Duration `koanf:"flush_interval" validate:"gte=0"`

	// FlushThreshold triggers an early async flush at this many
	// buffered bytes.
	FlushThreshold int `koanf:"flush_threshold" validate:"gte=0"`

	// ConsoleEnabled mirrors records to the console sink.
	ConsoleEnabled bool `koanf:"console_enabled"`
}

// DefaultConfig returns the baseline configuration. LogDir and
// NamePrefix must still be set by the caller.
func DefaultConfig() Config {
	return Config{
		Mode:           "async",
		Level:          "info",
		CompressMode:   "zlib",
		CompressLevel:  6,
		CacheDays:      10,
		FlushInterval:  15 * time.Second,
		FlushThreshold: 256 << 10,
	}
}

// envPrefix scopes the environment variables read by LoadConfig.
const envPrefix = "SILT_"

// LoadConfig layers SILT_* environment variables over DefaultConfig
// and validates the result. SILT_LOG_DIR maps to log_dir, and so on.
func LoadConfig() (Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(DefaultConfig(), "koanf"), nil); err != nil {
		return Config{}, fmt.Errorf("%w: load defaults: %v", ErrConfigInvalid, err)
	}

	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return Config{}, fmt.Errorf("%w: load environment: %v", ErrConfigInvalid, err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: unmarshal: %v", ErrConfigInvalid, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the snapshot for structural problems. All failures
// wrap ErrConfigInvalid.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrConfigInvalid, err)
	}
	if err := rotate.ValidatePrefix(c.NamePrefix); err != nil {
		return fmt.Errorf("%w: %v", ErrConfigInvalid, err)
	}
	mode, err := ParseCompressMode(c.CompressMode)
	if err != nil {
		return err
	}
	if err := compress.ValidateLevel(mode, c.CompressLevel); err != nil {
		return fmt.Errorf("%w: %v", ErrConfigInvalid, err)
	}
	return nil
}

// cacheDir resolves the sweep directory.
func (c Config) cacheDir() string {
	if c.CacheDir != "" {
		return c.CacheDir
	}
	return c.LogDir
}

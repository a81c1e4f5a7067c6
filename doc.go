// Silt - Embedded Rotating Telemetry Appender
// Copyright 2026 M. Waldrop (mwaldrop)
// SPDX-License-Identifier: Apache-2.0
// https://github.com/mwaldrop/silt

// Package silt is an embeddable high-throughput logging appender with
// rotating, compressed, optionally sealed files.
//
// A Registry owns a set of named instances, one per file prefix. Each
// instance buffers records in memory and drains them to disk either
// synchronously per write or through a supervised background worker.
// Files rotate on raw-byte size, file age, and day boundaries, and an
// age-based sweeper prunes the cache directory.
//
// Typical use:
//
//	reg := silt.NewRegistry(silt.RegistryOptions{})
//	defer reg.Close()
//
//	inst, err := reg.NewInstance(silt.Config{
//		LogDir:     "/var/log/myapp",
//		NamePrefix: "myapp",
//		Level:      "info",
//	})
//	if err != nil {
//		// ...
//	}
//	inst.Write(silt.LevelInfo, "net", "listener up")
//
// For crash paths where no registry survives, OneshotFlush appends a
// final batch with nothing left open afterwards.
package silt

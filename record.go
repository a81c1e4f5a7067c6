// Silt - Embedded Rotating Telemetry Appender
// Copyright 2026 M. Waldrop (mwaldrop)
// SPDX-License-Identifier: Apache-2.0
// https://github.com/mwaldrop/silt

package silt

import (
	"time"

	json "github.com/goccy/go-json"
)

// Record is one log entry as persisted inside a block: a JSON object
// terminated by a newline, so a decoded file is directly line-parseable.
type Record struct {
	TS    time.Time `json:"ts"`
	Level string    `json:"level"`
	Tag   string    `json:"tag,omitempty"`
	File  string    `json:"file,omitempty"`
	Func  string    `json:"func,omitempty"`
	Line  int       `json:"line,omitempty"`
	Msg   string    `json:"msg"`
}

// encode renders the record in its on-disk form.
func (r Record) encode() ([]byte, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

// DecodeRecords parses a decoded file payload back into records.
// Partial trailing garbage stops the parse without failing the records
// already recovered.
func DecodeRecords(payload []byte) ([]Record, error) {
	var out []Record
	start := 0
	for i, c := range payload {
		if c != '\n' {
			continue
		}
		var rec Record
		if err := json.Unmarshal(payload[start:i], &rec); err != nil {
			return out, err
		}
		out = append(out, rec)
		start = i + 1
	}
	return out, nil
}

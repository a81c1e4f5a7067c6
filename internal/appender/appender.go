// Silt - Embedded Rotating Telemetry Appender
// Copyright 2026 M. Waldrop (mwaldrop)
// SPDX-License-Identifier: Apache-2.0
// https://github.com/mwaldrop/silt

package appender

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/mwaldrop/silt/internal/block"
	"github.com/mwaldrop/silt/internal/buffer"
	"github.com/mwaldrop/silt/internal/compress"
	"github.com/mwaldrop/silt/internal/diag"
	"github.com/mwaldrop/silt/internal/dump"
	"github.com/mwaldrop/silt/internal/metrics"
	"github.com/mwaldrop/silt/internal/rotate"
	"github.com/mwaldrop/silt/internal/seal"
)

// Mode selects how Append interacts with the disk.
type Mode int32

const (
	// ModeAsync buffers records; a flush worker or explicit Flush
	// moves them to disk.
	ModeAsync Mode = iota

	// ModeSync flushes after every append. Slow, for crash hunting.
	ModeSync
)

var (
	// ErrClosed is returned by Append after Close; the record is
	// dropped and counted.
	ErrClosed = errors.New("appender closed")

	// ErrIO wraps file system failures on the write path.
	ErrIO = errors.New("log write failed")
)

// Options configures an Appender. Zero values fall back to the
// defaults noted per field.
type Options struct {
	// Dir is the log directory, created if missing.
	Dir string

	// Prefix names the instance's files.
	Prefix string

	// MaxFileSize rotates the file once this many raw record bytes
	// are accounted to it. 0 disables size rotation.
	MaxFileSize int64

	// MaxAliveTime rotates the file once it has been open this long.
	// 0 disables age rotation.
	MaxAliveTime time.Duration

	// CompressMode and CompressLevel select the per-block codec.
	CompressMode  compress.Mode
	CompressLevel int

	// PubKeyHex enables block sealing when non-empty. 64 hex chars.
	PubKeyHex string

	// FlushThreshold signals the flush worker once this many bytes
	// are buffered. 0 disables the signal.
	FlushThreshold int

	// BufferHint pre-sizes the record buffer.
	BufferHint int

	// BreakerThreshold opens the disk circuit breaker after this many
	// consecutive write failures. Default 5.
	BreakerThreshold uint32

	// BreakerCooldown is how long the breaker stays open before
	// probing the disk again. Default 30s.
	BreakerCooldown time.Duration

	// Now overrides the clock, for tests. Default time.Now.
	Now func() time.Time
}

func (o *Options) setDefaults() {
	if o.BreakerThreshold == 0 {
		o.BreakerThreshold = 5
	}
	if o.BreakerCooldown == 0 {
		o.BreakerCooldown = 30 * time.Second
	}
	if o.Now == nil {
		o.Now = time.Now
	}
}

// Appender is the write path for one prefix. Append is safe for
// concurrent use; Flush and Close serialize among themselves.
type Appender struct {
	opts   Options
	sealer *seal.Sealer

	mode atomic.Int32

	// mu guards the producer-facing state.
	mu      sync.Mutex
	buf     *buffer.RecordBuffer
	dropped int64
	closed  bool

	// flushMu serializes flushes and guards the file state below.
	flushMu   sync.Mutex
	file      *os.File
	filePath  string
	fileDay   string
	fileSeq   int
	fileBirth time.Time
	gen       string // rotation generation id, fresh per file
	accounted int64  // raw record bytes attributed to the open file
	lastErr   error

	breaker   *gobreaker.CircuitBreaker[int]
	diagLimit *rate.Limiter

	flushCh chan struct{}
}

// New validates opts and returns an appender. The first file is not
// created until the first flush with data.
func New(opts Options) (*Appender, error) {
	opts.setDefaults()

	if err := rotate.ValidatePrefix(opts.Prefix); err != nil {
		return nil, err
	}
	if opts.Dir == "" {
		return nil, fmt.Errorf("log dir is required")
	}
	if opts.MaxFileSize < 0 {
		return nil, fmt.Errorf("max file size must not be negative")
	}
	if err := compress.ValidateLevel(opts.CompressMode, opts.CompressLevel); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}

	var sealer *seal.Sealer
	if opts.PubKeyHex != "" {
		var err error
		sealer, err = seal.NewSealer(opts.PubKeyHex)
		if err != nil {
			return nil, err
		}
	}

	a := &Appender{
		opts:      opts,
		sealer:    sealer,
		buf:       buffer.New(opts.BufferHint),
		diagLimit: rate.NewLimiter(rate.Every(10*time.Second), 3),
		flushCh:   make(chan struct{}, 1),
	}

	a.breaker = gobreaker.NewCircuitBreaker[int](gobreaker.Settings{
		Name:    "silt-disk-" + opts.Prefix,
		Timeout: opts.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= opts.BreakerThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if to == gobreaker.StateOpen {
				metrics.RecordBreakerOpen()
			}
			diag.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("disk breaker state change")
		},
	})

	return a, nil
}

// SetMode switches between async and sync flushing.
func (a *Appender) SetMode(m Mode) {
	a.mode.Store(int32(m))
}

// GetMode returns the current flush mode.
func (a *Appender) GetMode() Mode {
	return Mode(a.mode.Load())
}

// Append buffers one encoded record. In sync mode it also flushes. A
// closed appender drops the record, counts it, and returns ErrClosed.
func (a *Appender) Append(rec []byte) error {
	a.mu.Lock()
	if a.closed {
		a.dropped++
		a.mu.Unlock()
		metrics.RecordDropped(1)
		return ErrClosed
	}
	a.buf.Append(rec)
	buffered := a.buf.Bytes()
	a.mu.Unlock()

	metrics.RecordAppend()
	metrics.UpdateBufferedBytes(a.opts.Prefix, buffered)

	if a.GetMode() == ModeSync {
		_, err := a.Flush()
		return err
	}
	if a.opts.FlushThreshold > 0 && buffered >= a.opts.FlushThreshold {
		a.signalFlush()
	}
	return nil
}

// signalFlush nudges the flush worker without blocking the producer.
func (a *Appender) signalFlush() {
	select {
	case a.flushCh <- struct{}{}:
	default:
	}
}

// RequestFlush asks the flush worker for an out-of-band flush. It
// never blocks; completion is observable via a later sync flush.
func (a *Appender) RequestFlush() {
	a.signalFlush()
}

// SetMaxFileSize changes the size rotation limit. It applies from the
// next flush; the active file is not rotated retroactively.
func (a *Appender) SetMaxFileSize(n int64) {
	a.flushMu.Lock()
	defer a.flushMu.Unlock()
	if n < 0 {
		n = 0
	}
	a.opts.MaxFileSize = n
}

// SetMaxAliveTime changes the age rotation limit, applied from the
// next flush.
func (a *Appender) SetMaxAliveTime(d time.Duration) {
	a.flushMu.Lock()
	defer a.flushMu.Unlock()
	if d < 0 {
		d = 0
	}
	a.opts.MaxAliveTime = d
}

// FlushSignal exposes the worker wake-up channel.
func (a *Appender) FlushSignal() <-chan struct{} {
	return a.flushCh
}

// Flush drains the buffer to disk. An error retained from an earlier
// failed flush is returned (wrapped) by the next Flush that does not
// itself fail, then cleared; it is never dropped silently.
func (a *Appender) Flush() (Action, error) {
	return a.flush(true)
}

// BackgroundFlush drains the buffer like Flush but leaves a retained
// failure in place, so the flush worker never consumes an error the
// caller has not seen.
func (a *Appender) BackgroundFlush() (Action, error) {
	return a.flush(false)
}

func (a *Appender) flush(takeRetained bool) (Action, error) {
	a.flushMu.Lock()
	defer a.flushMu.Unlock()

	a.mu.Lock()
	records, size := a.buf.TakeAll()
	a.mu.Unlock()
	metrics.UpdateBufferedBytes(a.opts.Prefix, 0)

	var retained error
	if takeRetained {
		retained = a.lastErr
	}
	if len(records) == 0 {
		if retained != nil {
			a.lastErr = nil
			return ActionNone, fmt.Errorf("earlier flush: %w", retained)
		}
		return ActionNone, nil
	}

	start := time.Now()
	action, written, err := a.writeLocked(a.opts.Now(), records)
	metrics.RecordFlushLatency(time.Since(start).Seconds())
	metrics.RecordFlush(action.String())

	if err != nil {
		a.lastErr = err
		lost := len(records) - written
		a.mu.Lock()
		a.dropped += int64(lost)
		a.mu.Unlock()
		metrics.RecordDropped(lost)
		if a.diagLimit.Allow() {
			diag.Err(err).
				Str("prefix", a.opts.Prefix).
				Int("records", lost).
				Int("bytes", size).
				Str("head", dump.Dump(head(records[0], 48))).
				Msg("flush failed, batch dropped")
		}
		return ActionFailed, err
	}

	if takeRetained {
		a.lastErr = nil
		if retained != nil {
			return action, fmt.Errorf("earlier flush: %w", retained)
		}
	}
	return action, nil
}

// head returns the first n bytes of b for failure diagnostics.
func head(b []byte, n int) []byte {
	if len(b) < n {
		return b
	}
	return b[:n]
}

// writeLocked walks the batch in order, rotating between records when
// a limit would be crossed. It returns the records persisted so far, so
// a mid-batch failure only counts the rest as lost. flushMu must be
// held.
func (a *Appender) writeLocked(now time.Time, records [][]byte) (Action, int, error) {
	action := ActionFlushed
	written := 0

	var pending [][]byte
	var pendingBytes int64

	writePending := func() error {
		if len(pending) == 0 {
			return nil
		}
		if err := a.writeBlockLocked(pending); err != nil {
			return err
		}
		a.accounted += pendingBytes
		written += len(pending)
		pending, pendingBytes = nil, 0
		return nil
	}

	for _, rec := range records {
		if a.file == nil {
			if err := a.openFileLocked(now); err != nil {
				return ActionFailed, written, err
			}
			action = ActionRotatedAndFlushed
		} else if a.needsRotationLocked(now, pendingBytes, int64(len(rec))) {
			if err := writePending(); err != nil {
				return ActionFailed, written, err
			}
			if err := a.rotateLocked(now); err != nil {
				return ActionFailed, written, err
			}
			action = ActionRotatedAndFlushed
		}
		pending = append(pending, rec)
		pendingBytes += int64(len(rec))
	}
	if err := writePending(); err != nil {
		return ActionFailed, written, err
	}
	if a.file != nil {
		if err := a.file.Sync(); err != nil {
			return ActionFailed, written, fmt.Errorf("%w: sync %s: %v", ErrIO, a.filePath, err)
		}
	}
	return action, written, nil
}

// needsRotationLocked decides whether the next record must start a new
// file. Size rotation never fires on an empty file, so an oversized
// record still lands whole.
func (a *Appender) needsRotationLocked(now time.Time, pendingBytes, recLen int64) bool {
	if a.fileDay != rotate.DayKey(now) {
		return true
	}
	if a.opts.MaxAliveTime > 0 && now.Sub(a.fileBirth) >= a.opts.MaxAliveTime {
		return true
	}
	effective := a.accounted + pendingBytes
	return a.opts.MaxFileSize > 0 && effective > 0 && effective+recLen > a.opts.MaxFileSize
}

// writeBlockLocked frames pending into one block and writes it through
// the disk breaker.
func (a *Appender) writeBlockLocked(pending [][]byte) error {
	blk, err := block.Build(pending, a.opts.CompressMode, a.opts.CompressLevel, a.sealer)
	if err != nil {
		return err
	}
	n, err := a.breaker.Execute(func() (int, error) {
		return a.file.Write(blk)
	})
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrIO, a.filePath, err)
	}
	metrics.RecordBytesWritten(n)
	return nil
}

// openFileLocked opens the current day's file, resuming the highest
// existing overflow sequence so restarts do not fork naming.
func (a *Appender) openFileLocked(now time.Time) error {
	day := rotate.DayKey(now)
	seq, found, err := rotate.MaxSeq(a.opts.Dir, a.opts.Prefix, day)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	if !found {
		seq = 0
	}
	return a.openFileAtLocked(now, day, seq)
}

func (a *Appender) openFileAtLocked(now time.Time, day string, seq int) error {
	path := filepath.Join(a.opts.Dir, rotate.Name(a.opts.Prefix, day, seq))
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("%w: open %s: %v", ErrIO, path, err)
	}

	// Resuming an existing file: seed accounting from its on-disk
	// size so size rotation still converges.
	var accounted int64
	if st, err := f.Stat(); err == nil {
		accounted = st.Size()
	}

	a.file = f
	a.filePath = path
	a.fileDay = day
	a.fileSeq = seq
	a.fileBirth = now
	a.accounted = accounted
	a.gen = uuid.NewString()

	diag.Debug().
		Str("prefix", a.opts.Prefix).
		Str("path", path).
		Str("generation", a.gen).
		Msg("log file opened")
	return nil
}

// rotateLocked closes the active file and opens its successor.
func (a *Appender) rotateLocked(now time.Time) error {
	old := a.filePath
	if err := a.file.Close(); err != nil {
		diag.Err(err).Str("path", old).Msg("close rotated file")
	}
	a.file = nil

	day := rotate.DayKey(now)
	seq := 0
	if day == a.fileDay {
		seq = a.fileSeq + 1
	} else if maxSeq, found, err := rotate.MaxSeq(a.opts.Dir, a.opts.Prefix, day); err == nil && found {
		seq = maxSeq + 1
	}

	if err := a.openFileAtLocked(now, day, seq); err != nil {
		return err
	}

	metrics.RecordRotation()
	diag.Info().
		Str("prefix", a.opts.Prefix).
		Str("from", old).
		Str("to", a.filePath).
		Str("generation", a.gen).
		Msg("rotated log file")
	return nil
}

// ActivePath returns the file currently being written, or "" before
// the first write.
func (a *Appender) ActivePath() string {
	a.flushMu.Lock()
	defer a.flushMu.Unlock()
	return a.filePath
}

// LastError returns the error retained from the most recent failed
// flush. The next Flush that does not itself fail returns it wrapped
// and clears it.
func (a *Appender) LastError() error {
	a.flushMu.Lock()
	defer a.flushMu.Unlock()
	return a.lastErr
}

// Dropped reports records lost to a closed appender or failed flushes.
func (a *Appender) Dropped() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.dropped
}

// BufferedBytes reports raw bytes waiting for the next flush.
func (a *Appender) BufferedBytes() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.buf.Bytes()
}

// Close drains the buffer and closes the file. Further appends drop.
// Close is idempotent.
func (a *Appender) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	a.mu.Unlock()

	_, ferr := a.Flush()

	a.flushMu.Lock()
	var cerr error
	if a.file != nil {
		cerr = a.file.Close()
		a.file = nil
	}
	a.flushMu.Unlock()

	metrics.ForgetInstance(a.opts.Prefix)

	if ferr != nil {
		return ferr
	}
	if cerr != nil {
		return fmt.Errorf("%w: %v", ErrIO, cerr)
	}
	return nil
}

// Package trace streams solver diagnostic events to disk as
// zstd-compressed JSONL so long searches can be inspected after the fact
// without holding everything in memory.
package trace

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/eseidel/better-idle-sub000/internal/solver"
)

// Record is one traced event. Seq orders records within a file; At is wall
// clock, Tick is planner time.
type Record struct {
	Seq    uint64         `json:"seq"`
	At     time.Time      `json:"at"`
	Type   string         `json:"type"`
	Tick   int64          `json:"tick"`
	Detail string         `json:"detail,omitempty"`
	Extra  map[string]any `json:"extra,omitempty"`
}

// Writer appends records to a single .jsonl.zst file. It is safe for
// concurrent use; the first write error sticks and fails everything after.
type Writer struct {
	mu   sync.Mutex
	f    *os.File
	enc  *zstd.Encoder
	w    *bufio.Writer
	seq  uint64
	err  error
	done bool
}

// NewWriter creates path (and its directory) and truncates any previous
// trace there.
func NewWriter(path string) (*Writer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create trace dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to create trace file: %w", err)
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to start zstd stream: %w", err)
	}
	return &Writer{f: f, enc: enc, w: bufio.NewWriterSize(enc, 64*1024)}, nil
}

// Write appends one record, assigning its sequence number.
func (w *Writer) Write(rec Record) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.done {
		return errors.New("trace writer is closed")
	}
	if w.err != nil {
		return w.err
	}

	w.seq++
	rec.Seq = w.seq
	if rec.At.IsZero() {
		rec.At = time.Now().UTC()
	}

	b, err := json.Marshal(rec)
	if err != nil {
		w.err = err
		return err
	}
	if _, err := w.w.Write(b); err != nil {
		w.err = err
		return err
	}
	if err := w.w.WriteByte('\n'); err != nil {
		w.err = err
		return err
	}
	return nil
}

// Close flushes and finishes the zstd stream. Records written after Close
// are rejected.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.done {
		return nil
	}
	w.done = true

	if w.w != nil {
		if err := w.w.Flush(); err != nil && w.err == nil {
			w.err = err
		}
	}
	if w.enc != nil {
		if err := w.enc.Close(); err != nil && w.err == nil {
			w.err = err
		}
		w.enc = nil
	}
	if w.f != nil {
		if err := w.f.Close(); err != nil && w.err == nil {
			w.err = err
		}
		w.f = nil
	}
	return w.err
}

// Err reports the first write error, if any.
func (w *Writer) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}

// Publisher adapts the writer to the solver's diagnostics interface. Write
// errors are swallowed so a full disk cannot abort a solve; check Err after
// the run.
func (w *Writer) Publisher() solver.Publisher {
	return solver.PublisherFunc(func(_ context.Context, e solver.Event) {
		_ = w.Write(Record{
			Type:   string(e.Type),
			Tick:   e.Tick,
			Detail: e.Detail,
			Extra:  e.Extra,
		})
	})
}

// Read loads every record from a trace file in write order.
func Read(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace: %w", err)
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read zstd stream: %w", err)
	}
	defer dec.Close()

	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 64*1024), 8*1024*1024)

	var recs []Record
	for sc.Scan() {
		var rec Record
		if err := json.Unmarshal(sc.Bytes(), &rec); err != nil {
			return nil, fmt.Errorf("bad trace record after %d: %w", len(recs), err)
		}
		recs = append(recs, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan trace: %w", err)
	}
	return recs, nil
}

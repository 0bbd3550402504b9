package trace

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/eseidel/better-idle-sub000/internal/solver"
)

func TestWriteReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "solve.jsonl.zst")
	w, err := NewWriter(path)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 50; i++ {
		err := w.Write(Record{
			Type:   "node_expanded",
			Tick:   int64(i * 30),
			Detail: fmt.Sprintf("node %d", i),
		})
		if err != nil {
			t.Fatalf("write %d: %v", i, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	recs, err := Read(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 50 {
		t.Fatalf("read %d records, want 50", len(recs))
	}
	for i, rec := range recs {
		if rec.Seq != uint64(i+1) {
			t.Errorf("record %d: Seq = %d, want %d", i, rec.Seq, i+1)
		}
		if rec.Tick != int64(i*30) {
			t.Errorf("record %d: Tick = %d, want %d", i, rec.Tick, i*30)
		}
		if rec.At.IsZero() {
			t.Errorf("record %d: At not stamped", i)
		}
	}
	if recs[7].Detail != "node 7" {
		t.Errorf("Detail = %q, want %q", recs[7].Detail, "node 7")
	}
}

func TestFileIsCompressed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "solve.jsonl.zst")
	w, err := NewWriter(path)
	if err != nil {
		t.Fatal(err)
	}
	// Repetitive payloads compress well below their JSON size.
	line := strings.Repeat("woodcutting level 12 ", 20)
	for i := 0; i < 200; i++ {
		if err := w.Write(Record{Type: "boundary_hit", Detail: line}); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(raw) == 0 {
		t.Fatal("trace file is empty")
	}
	// 200 near-identical records deflate to a small fraction of their
	// JSON size.
	if len(raw) >= 200*len(line)/4 {
		t.Errorf("file is %d bytes for %d bytes of detail text; not compressed",
			len(raw), 200*len(line))
	}
}

func TestWriteAfterCloseFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "solve.jsonl.zst")
	w, err := NewWriter(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if err := w.Write(Record{Type: "replan"}); err == nil {
		t.Error("Write after Close succeeded")
	}
	// Close is idempotent.
	if err := w.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

func TestPublisherBridgesEvents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "solve.jsonl.zst")
	w, err := NewWriter(path)
	if err != nil {
		t.Fatal(err)
	}
	pub := w.Publisher()
	pub.Publish(context.Background(), solver.Event{
		Type:   solver.EventSegmentSolved,
		Tick:   1200,
		Detail: "until woodcutting unlocked chop_oak",
	})
	pub.Publish(context.Background(), solver.Event{
		Type: solver.EventGoalReached,
		Tick: 4500,
	}.WithExtra("goal", "reach gold 100"))
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	recs, err := Read(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 2 {
		t.Fatalf("read %d records, want 2", len(recs))
	}
	if recs[0].Type != string(solver.EventSegmentSolved) || recs[0].Tick != 1200 {
		t.Errorf("first record = %+v", recs[0])
	}
	if got := recs[1].Extra["goal"]; got != "reach gold 100" {
		t.Errorf("Extra[goal] = %v, want %q", got, "reach gold 100")
	}
	if w.Err() != nil {
		t.Errorf("Err = %v after successful writes", w.Err())
	}
}

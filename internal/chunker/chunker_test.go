package chunker

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/skiby7/parallel-external-mergesort/internal/record"
	"github.com/skiby7/parallel-external-mergesort/internal/recordio"
)

func writeFile(t *testing.T, n int) (string, []record.Record) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "input.bin")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()

	records := make([]record.Record, n)
	sink := recordio.NewSliceSink(n)
	for i := 0; i < n; i++ {
		records[i] = record.New(uint64(i), []byte{byte(i), byte(i * 2)})
		sink.Push(records[i])
	}
	if _, err := recordio.AppendRecords(f, recordio.AsSource(sink)); err != nil {
		t.Fatalf("append: %v", err)
	}
	return path, records
}

// TestChunkCoversWholeFileNoOverlap proves the union of returned ranges
// equals [0, file_size) with no gaps or overlaps, for several chunk counts.
func TestChunkCoversWholeFileNoOverlap(t *testing.T) {
	path, records := writeFile(t, 1000)
	fi, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}

	for _, target := range []int{1, 2, 3, 7, 50, 1000, 5000} {
		ranges, err := Chunk(path, target)
		if err != nil {
			t.Fatalf("target=%d: Chunk: %v", target, err)
		}
		if len(ranges) == 0 {
			t.Fatalf("target=%d: expected at least one range", target)
		}
		if ranges[0].Start != 0 {
			t.Fatalf("target=%d: first range does not start at 0: %+v", target, ranges[0])
		}
		if ranges[len(ranges)-1].End != fi.Size() {
			t.Fatalf("target=%d: last range does not end at file size: %+v", target, ranges[len(ranges)-1])
		}
		for i := 1; i < len(ranges); i++ {
			if ranges[i].Start != ranges[i-1].End {
				t.Fatalf("target=%d: gap/overlap between range %d and %d: %+v %+v", target, i-1, i, ranges[i-1], ranges[i])
			}
		}
	}
	_ = records
}

// TestChunkBoundariesOnRecordEdges proves every chunk boundary lands on a
// record edge by re-reading each range with recordio and checking the
// concatenation reproduces every record exactly once, in order.
func TestChunkBoundariesOnRecordEdges(t *testing.T) {
	path, want := writeFile(t, 237)

	ranges, err := Chunk(path, 11)
	if err != nil {
		t.Fatalf("Chunk: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	var got []record.Record
	for _, rg := range ranges {
		sink := recordio.NewSliceSink(0)
		consumed, err := recordio.ReadRecords(f, rg.Start, rg.Len(), sink)
		if err != nil {
			t.Fatalf("ReadRecords over range %+v: %v", rg, err)
		}
		if consumed != rg.Len() {
			t.Fatalf("range %+v: consumed %d, want %d (boundary not on record edge)", rg, consumed, rg.Len())
		}
		got = append(got, sink.Records...)
	}

	if len(got) != len(want) {
		t.Fatalf("got %d records, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Key != want[i].Key {
			t.Fatalf("record %d: key mismatch got=%d want=%d", i, got[i].Key, want[i].Key)
		}
	}
}

// TestChunkEmptyFile proves an empty file yields zero ranges.
func TestChunkEmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.bin")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	f.Close()

	ranges, err := Chunk(path, 4)
	if err != nil {
		t.Fatalf("Chunk: %v", err)
	}
	if len(ranges) != 0 {
		t.Fatalf("expected zero ranges for empty file, got %d", len(ranges))
	}
}

// TestChunkSingleRecord proves a file with one record yields exactly one
// range spanning the whole file regardless of target chunk count.
func TestChunkSingleRecord(t *testing.T) {
	path, _ := writeFile(t, 1)

	ranges, err := Chunk(path, 100)
	if err != nil {
		t.Fatalf("Chunk: %v", err)
	}
	if len(ranges) != 1 {
		t.Fatalf("expected 1 range, got %d: %+v", len(ranges), ranges)
	}
}

// TestChunkTruncatedFile proves a malformed trailing record fails the
// whole chunk operation rather than silently dropping it.
func TestChunkTruncatedFile(t *testing.T) {
	path, _ := writeFile(t, 5)
	fi, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if err := os.Truncate(path, fi.Size()-1); err != nil {
		t.Fatalf("truncate: %v", err)
	}

	if _, err := Chunk(path, 2); err == nil {
		t.Fatalf("expected error for truncated file, got nil")
	}
}

package recordio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/skiby7/parallel-external-mergesort/internal/record"
)

func writeFixture(t *testing.T, records []record.Record) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "fixture.bin")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create fixture: %v", err)
	}
	defer f.Close()

	sink := NewSliceSink(len(records))
	for _, r := range records {
		sink.Push(r)
	}
	if _, err := AppendRecords(f, AsSource(sink)); err != nil {
		t.Fatalf("append fixture: %v", err)
	}
	return path
}

func sampleRecords(n int) []record.Record {
	out := make([]record.Record, n)
	for i := 0; i < n; i++ {
		out[i] = record.New(uint64(i), []byte{byte(i), byte(i + 1), byte(i + 2)})
	}
	return out
}

// TestReadRecordsEquivalence proves the buffered and mmap read strategies
// decode an identical record sequence from the same file.
func TestReadRecordsEquivalence(t *testing.T) {
	want := sampleRecords(500)
	path := writeFixture(t, want)

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	fi, _ := f.Stat()

	bufSink := NewSliceSink(len(want))
	if _, err := readRecordsBuffered(f, 0, fi.Size(), bufSink); err != nil {
		t.Fatalf("buffered read: %v", err)
	}

	mmapSink := NewSliceSink(len(want))
	if _, err := readRecordsMmap(f, 0, fi.Size(), mmapSink); err != nil {
		t.Fatalf("mmap read: %v", err)
	}

	if diff := cmp.Diff(bufSink.Records, mmapSink.Records); diff != "" {
		t.Fatalf("buffered vs mmap mismatch (-buffered +mmap):\n%s", diff)
	}
	if diff := cmp.Diff(want, bufSink.Records); diff != "" {
		t.Fatalf("buffered vs expected mismatch:\n%s", diff)
	}
}

// TestReadRecordsMidFileOffset proves a read starting mid-file, at an
// offset that is not page-aligned, yields the same records from both
// strategies — exercising the intra-page skip math.
func TestReadRecordsMidFileOffset(t *testing.T) {
	all := sampleRecords(2000)
	path := writeFixture(t, all)

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	fi, _ := f.Stat()

	// Find a record boundary roughly one third of the way through the file
	// to use as a non-page-aligned start offset.
	var startOffset int64
	var skipped int
	for i, r := range all {
		if startOffset > fi.Size()/3 {
			skipped = i
			break
		}
		startOffset += int64(r.ByteSize())
	}
	want := all[skipped:]

	bufSink := NewSliceSink(len(want))
	if _, err := readRecordsBuffered(f, startOffset, fi.Size()-startOffset, bufSink); err != nil {
		t.Fatalf("buffered read: %v", err)
	}
	mmapSink := NewSliceSink(len(want))
	if _, err := readRecordsMmap(f, startOffset, fi.Size()-startOffset, mmapSink); err != nil {
		t.Fatalf("mmap read: %v", err)
	}

	if diff := cmp.Diff(want, bufSink.Records); diff != "" {
		t.Fatalf("buffered mismatch:\n%s", diff)
	}
	if diff := cmp.Diff(want, mmapSink.Records); diff != "" {
		t.Fatalf("mmap mismatch:\n%s", diff)
	}
}

// TestReadRecordsBudgetExceeded proves a budget too small for even one
// record fails fatally rather than silently truncating.
func TestReadRecordsBudgetExceeded(t *testing.T) {
	path := writeFixture(t, sampleRecords(3))
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	sink := NewSliceSink(0)
	_, err = readRecordsBuffered(f, 0, record.HeaderSize, sink)
	if err == nil {
		t.Fatalf("expected LengthExceedsBudgetError, got nil")
	}
}

// TestReadRecordsStopsBeforeExceedingBudget proves a budget that fits N
// whole records but not N+1 returns exactly N records and never reads
// past the budget boundary's worth of whole records.
func TestReadRecordsStopsBeforeExceedingBudget(t *testing.T) {
	want := sampleRecords(10)
	path := writeFixture(t, want)
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	budget := int64(0)
	for _, r := range want[:4] {
		budget += int64(r.ByteSize())
	}
	budget += 1 // not enough for a 5th record's header+payload

	sink := NewSliceSink(0)
	consumed, err := readRecordsBuffered(f, 0, budget, sink)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sink.Records) != 4 {
		t.Fatalf("got %d records, want 4", len(sink.Records))
	}
	if consumed != budget-1 {
		t.Fatalf("consumed = %d, want %d", consumed, budget-1)
	}
}

// TestAppendRecordsEquivalence proves the buffered and mmap append
// strategies produce byte-identical files for the same input sequence.
func TestAppendRecordsEquivalence(t *testing.T) {
	records := sampleRecords(300)

	dir := t.TempDir()
	bufPath := filepath.Join(dir, "buf.bin")
	mmapPath := filepath.Join(dir, "mmap.bin")

	bufFile, err := os.Create(bufPath)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer bufFile.Close()
	sink1 := NewSliceSink(len(records))
	for _, r := range records {
		sink1.Push(r)
	}
	if _, err := appendRecordsBuffered(bufFile, AsSource(sink1)); err != nil {
		t.Fatalf("appendRecordsBuffered: %v", err)
	}

	mmapFile, err := os.Create(mmapPath)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer mmapFile.Close()
	sink2 := NewSliceSink(len(records))
	for _, r := range records {
		sink2.Push(r)
	}
	if _, err := appendRecordsMmap(mmapFile, AsSource(sink2)); err != nil {
		t.Fatalf("appendRecordsMmap: %v", err)
	}

	bufBytes, err := os.ReadFile(bufPath)
	if err != nil {
		t.Fatalf("read buf file: %v", err)
	}
	mmapBytes, err := os.ReadFile(mmapPath)
	if err != nil {
		t.Fatalf("read mmap file: %v", err)
	}
	if diff := cmp.Diff(bufBytes, mmapBytes); diff != "" {
		t.Fatalf("buffered vs mmap file bytes differ")
	}
}

// TestDequeAndHeapSourceDrainOrder proves DequeSink drains front-to-back
// (preserving push order) and HeapSink drains in ascending key order
// regardless of push order.
func TestDequeAndHeapSourceDrainOrder(t *testing.T) {
	pushOrder := []uint64{5, 1, 4, 2, 3}

	deque := NewDequeSink()
	heapSink := NewHeapSink()
	for _, k := range pushOrder {
		deque.Push(record.New(k, nil))
		heapSink.Push(record.New(k, nil))
	}

	var dequeOut []uint64
	dsrc := AsDequeSource(deque)
	for {
		r, ok := dsrc.Next()
		if !ok {
			break
		}
		dequeOut = append(dequeOut, r.Key)
	}
	if diff := cmp.Diff(pushOrder, dequeOut); diff != "" {
		t.Fatalf("deque drain order mismatch:\n%s", diff)
	}

	var heapOut []uint64
	hsrc := AsHeapSource(heapSink)
	for {
		r, ok := hsrc.Next()
		if !ok {
			break
		}
		heapOut = append(heapOut, r.Key)
	}
	want := []uint64{1, 2, 3, 4, 5}
	if diff := cmp.Diff(want, heapOut); diff != "" {
		t.Fatalf("heap drain order mismatch:\n%s", diff)
	}
}

package e2e

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"gotest.tools/v3/assert"
	"gotest.tools/v3/icmd"

	"github.com/skiby7/parallel-external-mergesort/internal/record"
	"github.com/skiby7/parallel-external-mergesort/internal/recordio"
)

func encodeRecords(t *testing.T, records []record.Record) []byte {
	t.Helper()
	var buf bytes.Buffer
	for _, r := range records {
		if err := record.Encode(&buf, r); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	return buf.Bytes()
}

func readRecordsFile(t *testing.T, path string) []record.Record {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	fi, err := f.Stat()
	if err != nil {
		t.Fatalf("stat %s: %v", path, err)
	}
	sink := recordio.NewSliceSink(0)
	if _, err := recordio.ReadRecords(f, 0, fi.Size(), sink); err != nil {
		t.Fatalf("ReadRecords %s: %v", path, err)
	}
	return sink.Records
}

// TestEmptyInput covers scenario 1: a zero-byte input sorts to a
// zero-byte output with a clean exit.
func TestEmptyInput(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "input.bin", nil)
	output := filepath.Join(dir, "output.bin")

	icmd.RunCmd(mergesort(dir, "sort", input, output)).Assert(t, icmd.Success)

	got := readFile(t, output)
	assert.Equal(t, len(got), 0)
}

// TestSingleRecord covers scenario 2: one record round-trips byte-identical.
func TestSingleRecord(t *testing.T) {
	dir := t.TempDir()
	rec := record.New(42, []byte{0x01, 0x02, 0x03})
	input := writeFile(t, dir, "input.bin", encodeRecords(t, []record.Record{rec}))
	output := filepath.Join(dir, "output.bin")

	icmd.RunCmd(mergesort(dir, "sort", input, output)).Assert(t, icmd.Success)

	got := readRecordsFile(t, output)
	assert.Equal(t, len(got), 1)
	assert.Equal(t, got[0].Key, uint64(42))
	assert.DeepEqual(t, got[0].Payload, []byte{0x01, 0x02, 0x03})
}

// TestThreeRecordsReverseOrder covers scenario 3.
func TestThreeRecordsReverseOrder(t *testing.T) {
	dir := t.TempDir()
	records := []record.Record{
		record.New(9, []byte{0xAA}),
		record.New(4, []byte{0xBB, 0xCC}),
		record.New(7, []byte{0xDD}),
	}
	input := writeFile(t, dir, "input.bin", encodeRecords(t, records))
	output := filepath.Join(dir, "output.bin")

	icmd.RunCmd(mergesort(dir, "sort", input, output)).Assert(t, icmd.Success)

	got := readRecordsFile(t, output)
	assert.Equal(t, len(got), 3)
	wantKeys := []uint64{4, 7, 9}
	for i, r := range got {
		assert.Equal(t, r.Key, wantKeys[i])
	}
}

// TestRunSplittingForcesMultipleRuns covers scenario 4: 1000 descending
// records sorted under a memory budget small enough to force several run
// files, verified end to end against ascending order.
func TestRunSplittingForcesMultipleRuns(t *testing.T) {
	dir := t.TempDir()
	records := make([]record.Record, 1000)
	for i := range records {
		records[i] = record.New(uint64(1000-i), make([]byte, 8))
	}
	input := writeFile(t, dir, "input.bin", encodeRecords(t, records))
	output := filepath.Join(dir, "output.bin")

	// Each record is 12 + 8 = 20 bytes. With a 4096-byte budget the
	// orchestrator cuts the 20000-byte input into 200-byte chunks (1% of
	// the file, below 3x the budget), so 100 run files reach the merge.
	icmd.RunCmd(mergesort(dir, "-t", "1", "-m", "4096", "sort", input, output)).Assert(t, icmd.Success)

	got := readRecordsFile(t, output)
	assert.Equal(t, len(got), 1000)
	for i := 1; i < len(got); i++ {
		if got[i].Key < got[i-1].Key {
			t.Fatalf("not ascending at %d: %d before %d", i, got[i-1].Key, got[i].Key)
		}
	}
	assert.Equal(t, got[0].Key, uint64(1))
	assert.Equal(t, got[len(got)-1].Key, uint64(1000))
}

// TestIdempotence covers the Idempotence property: sorting an
// already-sorted file yields a byte-identical output.
func TestIdempotence(t *testing.T) {
	dir := t.TempDir()
	records := make([]record.Record, 200)
	for i := range records {
		records[i] = record.New(uint64(i), []byte{byte(i)})
	}
	input := writeFile(t, dir, "input.bin", encodeRecords(t, records))
	output := filepath.Join(dir, "output.bin")

	icmd.RunCmd(mergesort(dir, "sort", input, output)).Assert(t, icmd.Success)
	firstPass := readFile(t, output)

	secondOutput := filepath.Join(dir, "output2.bin")
	icmd.RunCmd(mergesort(dir, "sort", output, secondOutput)).Assert(t, icmd.Success)
	secondPass := readFile(t, secondOutput)

	assert.DeepEqual(t, firstPass, secondPass)
}

// TestVerifySubcommand exercises the verify subcommand against both a
// sorted and an unsorted file.
func TestVerifySubcommand(t *testing.T) {
	dir := t.TempDir()
	sorted := writeFile(t, dir, "sorted.bin", encodeRecords(t, []record.Record{
		record.New(1, nil), record.New(2, nil), record.New(3, nil),
	}))
	unsorted := writeFile(t, dir, "unsorted.bin", encodeRecords(t, []record.Record{
		record.New(1, nil), record.New(3, nil), record.New(2, nil),
	}))

	icmd.RunCmd(mergesort(dir, "verify", sorted)).Assert(t, icmd.Success)
	result := icmd.RunCmd(mergesort(dir, "verify", unsorted))
	assert.Assert(t, result.ExitCode != 0)
}

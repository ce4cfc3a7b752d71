package rungen

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/google/uuid"

	"github.com/skiby7/parallel-external-mergesort/internal/record"
	"github.com/skiby7/parallel-external-mergesort/internal/recordio"
	"github.com/skiby7/parallel-external-mergesort/internal/sorterr"
)

// newRunPath returns a fresh, collision-free path for a run file under
// dir, named run#<uuid> per the reference naming scheme.
func newRunPath(dir string) string {
	return filepath.Join(dir, "run#"+uuid.New().String())
}

// writeSortedRun sorts records by key in place and writes them to a new
// run file under dir, returning the file's path.
func writeSortedRun(dir string, records []record.Record) (string, error) {
	sort.Slice(records, func(i, j int) bool { return records[i].Less(records[j]) })

	path := newRunPath(dir)
	f, err := os.Create(path)
	if err != nil {
		return "", &sorterr.IoError{Op: "create run file", Path: path, Err: err}
	}
	defer f.Close()

	sink := recordio.NewSliceSink(len(records))
	for _, r := range records {
		sink.Push(r)
	}
	if _, err := recordio.AppendRecords(f, recordio.AsSource(sink)); err != nil {
		return "", err
	}
	return path, nil
}

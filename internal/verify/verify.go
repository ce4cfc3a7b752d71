// Package verify re-reads a file with C2's bounded reader and confirms
// the engine's Monotonicity property, matching the original project's
// check_file_diff.cpp role as an external verification collaborator.
package verify

import (
	"fmt"
	"os"

	"github.com/skiby7/parallel-external-mergesort/internal/record"
	"github.com/skiby7/parallel-external-mergesort/internal/recordio"
	"github.com/skiby7/parallel-external-mergesort/internal/sorterr"
)

// Violation describes the first non-monotonic adjacent pair found, if any.
type Violation struct {
	Index    int64
	Previous record.Record
	Current  record.Record
}

func (v *Violation) Error() string {
	return fmt.Sprintf("record %d (key=%d) precedes record %d (key=%d): not ascending",
		v.Index-1, v.Previous.Key, v.Index, v.Current.Key)
}

// monotonicSink checks each pushed record against the previous one,
// recording the first violation rather than aborting: the caller decides
// what to do with a non-nil Violation.
type monotonicSink struct {
	index     int64
	havePrev  bool
	prev      record.Record
	violation *Violation
}

func (s *monotonicSink) Push(r record.Record) {
	if s.havePrev && s.violation == nil && r.Key < s.prev.Key {
		s.violation = &Violation{Index: s.index, Previous: s.prev, Current: r}
	}
	s.prev = r
	s.havePrev = true
	s.index++
}

// File streams path in windowBudget-sized chunks (so verification itself
// stays bounded-memory) and reports the first adjacent pair that breaks
// ascending-key order, if any. A nil return means the file is sorted.
func File(path string, windowBudget int64) (*Violation, error) {
	if windowBudget < 1 {
		windowBudget = 1 << 20
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, &sorterr.IoError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, &sorterr.IoError{Op: "stat", Path: path, Err: err}
	}

	sink := &monotonicSink{}
	var offset int64
	for offset < fi.Size() {
		remaining := fi.Size() - offset
		window := windowBudget
		if window > remaining {
			window = remaining
		}
		consumed, err := recordio.ReadRecords(f, offset, window, sink)
		if err != nil {
			return nil, err
		}
		if consumed == 0 {
			return nil, &sorterr.InvariantViolationError{What: "ReadRecords made no progress", Context: path}
		}
		offset += consumed
		if sink.violation != nil {
			return sink.violation, nil
		}
	}
	return nil, nil
}

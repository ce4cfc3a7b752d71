package rungen

import (
	"os"

	"github.com/skiby7/parallel-external-mergesort/internal/record"
	"github.com/skiby7/parallel-external-mergesort/internal/recordio"
	"github.com/skiby7/parallel-external-mergesort/internal/sorterr"
)

// generateSnowPlow implements Strategy B (spec §4.4), replacement
// selection: a min-heap of records eligible for the current run, an
// unsorted reservoir of records deferred to the next run, and an output
// buffer flushed to the current run file as it fills. Run count is not
// bounded a priori; expected run length is roughly 2x the heap budget.
func generateSnowPlow(inputPath string, startOffset, sizeBytes int64, outputDir string, memoryBudget int64) ([]string, error) {
	poolBudget := (memoryBudget * 8) / 10
	if poolBudget < 1 {
		poolBudget = 1
	}
	outputBudget := memoryBudget - poolBudget
	if outputBudget < 1 {
		outputBudget = 1
	}

	puller, err := newRecordPuller(inputPath, startOffset, sizeBytes, memoryBudget)
	if err != nil {
		return nil, err
	}
	defer puller.Close()

	heap := recordio.NewHeapSink()
	var heapBytes int64
	var reservoir []record.Record

	var runs []string
	var curFile *os.File
	var curPath string
	var outputBuf []record.Record
	var outputBytes int64

	openNewRun := func() error {
		curPath = newRunPath(outputDir)
		f, err := os.Create(curPath)
		if err != nil {
			return &sorterr.IoError{Op: "create run file", Path: curPath, Err: err}
		}
		curFile = f
		return nil
	}

	flushOutput := func() error {
		if len(outputBuf) == 0 {
			return nil
		}
		sink := recordio.NewSliceSink(len(outputBuf))
		for _, r := range outputBuf {
			sink.Push(r)
		}
		if _, err := recordio.AppendRecords(curFile, recordio.AsSource(sink)); err != nil {
			return err
		}
		outputBuf = outputBuf[:0]
		outputBytes = 0
		return nil
	}

	closeRun := func() error {
		if err := flushOutput(); err != nil {
			return err
		}
		if curFile != nil {
			if err := curFile.Close(); err != nil {
				return &sorterr.IoError{Op: "close run file", Path: curPath, Err: err}
			}
			runs = append(runs, curPath)
			curFile = nil
		}
		return nil
	}

	fillHeapTo := func(limit int64) error {
		for {
			rec, ok, err := puller.peek()
			if err != nil {
				return err
			}
			if !ok {
				return nil
			}
			sz := int64(rec.ByteSize())
			if heapBytes > 0 && heapBytes+sz > limit {
				return nil
			}
			puller.consume()
			heap.Push(rec)
			heapBytes += sz
		}
	}

	if err := fillHeapTo(poolBudget); err != nil {
		return nil, err
	}
	if heap.Len() == 0 {
		return nil, nil // empty input range
	}
	if err := openNewRun(); err != nil {
		return nil, err
	}

	for {
		if heap.Len() == 0 {
			if err := closeRun(); err != nil {
				return runs, err
			}
			for _, r := range reservoir {
				heap.Push(r)
				heapBytes += int64(r.ByteSize())
			}
			reservoir = reservoir[:0]
			// The heap/reservoir pair can both drain to empty while the
			// puller still holds unconsumed records: the per-pop refill
			// below only admits a pending record once enough budget has
			// been freed by a same-sized-or-larger pop, so an oversized
			// record can be left sitting unconsumed at the puller's head.
			// Top the heap back up from the puller before deciding a run
			// (and the whole generation) is actually finished.
			if heap.Len() == 0 && !puller.exhausted() {
				if err := fillHeapTo(poolBudget); err != nil {
					return runs, err
				}
			}
			if heap.Len() == 0 {
				break
			}
			if err := openNewRun(); err != nil {
				return runs, err
			}
			continue
		}

		r := heap.PopMin()
		heapBytes -= int64(r.ByteSize())
		outputBuf = append(outputBuf, r)
		outputBytes += int64(r.ByteSize())
		if outputBytes >= outputBudget {
			if err := flushOutput(); err != nil {
				return runs, err
			}
		}

		freed := int64(r.ByteSize())
		for freed > 0 {
			rec, ok, err := puller.peek()
			if err != nil {
				return runs, err
			}
			if !ok {
				break
			}
			sz := int64(rec.ByteSize())
			if sz > freed {
				break
			}
			puller.consume()
			freed -= sz
			if rec.Key < r.Key {
				reservoir = append(reservoir, rec)
			} else {
				heap.Push(rec)
				heapBytes += sz
			}
		}
	}

	return runs, nil
}

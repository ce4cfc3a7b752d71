package rungen

import (
	"bufio"
	"io"
	"os"

	"github.com/skiby7/parallel-external-mergesort/internal/record"
	"github.com/skiby7/parallel-external-mergesort/internal/sorterr"
)

// recordPuller decodes records sequentially from a byte range of an open
// file, supporting a one-record lookahead so callers can decide whether a
// record belongs in the current buffer before committing to consume it —
// both run-generation strategies need this to implement their "would the
// next record overflow the budget" checks without unreading raw bytes.
type recordPuller struct {
	f          *os.File
	r          *bufio.Reader
	remaining  int64
	maxPayload uint32
	pending    *record.Record
}

func newRecordPuller(path string, startOffset, sizeBytes int64, memoryBudget int64) (*recordPuller, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &sorterr.IoError{Op: "open", Path: path, Err: err}
	}
	if _, err := f.Seek(startOffset, io.SeekStart); err != nil {
		f.Close()
		return nil, &sorterr.IoError{Op: "seek", Path: path, Err: err}
	}
	maxPayload := uint32(memoryBudget)
	if memoryBudget > int64(^uint32(0)) {
		maxPayload = ^uint32(0)
	}
	return &recordPuller{
		f:          f,
		r:          bufio.NewReaderSize(f, 1<<16),
		remaining:  sizeBytes,
		maxPayload: maxPayload,
	}, nil
}

func (p *recordPuller) Close() error {
	return p.f.Close()
}

// peek returns the next record without consuming it, so a second call to
// peek (without an intervening consume) returns the same record.
func (p *recordPuller) peek() (record.Record, bool, error) {
	if p.pending != nil {
		return *p.pending, true, nil
	}
	if p.remaining <= 0 {
		return record.Record{}, false, nil
	}
	rec, err := record.Decode(p.r, p.maxPayload)
	if err == io.EOF {
		return record.Record{}, false, nil
	}
	if err != nil {
		return record.Record{}, false, err
	}
	p.remaining -= int64(rec.ByteSize())
	p.pending = &rec
	return rec, true, nil
}

// consume discards the currently peeked record, advancing the puller.
func (p *recordPuller) consume() {
	p.pending = nil
}

func (p *recordPuller) exhausted() bool {
	return p.pending == nil && p.remaining <= 0
}

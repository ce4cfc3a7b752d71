// Package recordio implements bounded, record-aligned I/O over the
// on-disk record format (spec component C2): reading a byte-bounded
// prefix of records starting at an arbitrary offset, and appending a
// drained sequence of records to an open file. Two equivalent strategies
// are implemented for both directions — a buffered bufio-style scratch
// read/write loop (the default) and a page-aligned memory-mapped window
// (opt-in via UseMmap) — proven equivalent in bounded_test.go.
package recordio

import (
	"encoding/binary"
	"io"
	"os"

	"github.com/edsrzf/mmap-go"

	"github.com/skiby7/parallel-external-mergesort/internal/record"
	"github.com/skiby7/parallel-external-mergesort/internal/sorterr"
)

// UseMmap selects the memory-mapped I/O path for ReadRecords and
// AppendRecords instead of the default buffered path. Both paths produce
// byte-identical records; this is purely a performance knob.
var UseMmap = false

// ReadRecords reads records from f starting at startOffset until either
// the next prospective record would push total bytes consumed past
// maxBytes, or a clean EOF lands on a record boundary, whichever comes
// first. It returns the number of input bytes consumed, always an exact
// multiple of the sizes of the records pushed to sink.
//
// A record is never partially pushed: on any error the sink holds only
// whole records read before the failure.
func ReadRecords(f *os.File, startOffset int64, maxBytes int64, sink Sink) (int64, error) {
	if UseMmap {
		return readRecordsMmap(f, startOffset, maxBytes, sink)
	}
	return readRecordsBuffered(f, startOffset, maxBytes, sink)
}

func readRecordsBuffered(f *os.File, startOffset, maxBytes int64, sink Sink) (int64, error) {
	var consumed int64
	offset := startOffset

	for consumed < maxBytes {
		var hdr [record.HeaderSize]byte
		n, err := f.ReadAt(hdr[:], offset)
		if err != nil && err != io.EOF {
			return consumed, &sorterr.IoError{Op: "read record header", Path: f.Name(), Err: err}
		}
		if n == 0 {
			break // clean EOF exactly on a record boundary
		}
		if n < record.HeaderSize {
			return consumed, &sorterr.TruncatedError{Context: "record header", Path: f.Name()}
		}

		length := binary.LittleEndian.Uint32(hdr[8:12])
		total := int64(record.HeaderSize) + int64(length)

		if consumed+total > maxBytes {
			if consumed == 0 {
				return 0, &sorterr.LengthExceedsBudgetError{Declared: uint32(total), Budget: uint32(maxBytes)}
			}
			break // termination condition 1: budget would be exceeded
		}

		payload := make([]byte, length)
		if length > 0 {
			pn, perr := f.ReadAt(payload, offset+int64(record.HeaderSize))
			if perr != nil && perr != io.EOF {
				return consumed, &sorterr.IoError{Op: "read record payload", Path: f.Name(), Err: perr}
			}
			if pn < len(payload) {
				return consumed, &sorterr.TruncatedError{Context: "record payload", Path: f.Name()}
			}
		}

		key := binary.LittleEndian.Uint64(hdr[0:8])
		sink.Push(record.Record{Key: key, Payload: payload})

		offset += total
		consumed += total
	}

	return consumed, nil
}

// readRecordsMmap implements the same contract as readRecordsBuffered
// using a page-aligned memory-mapped window. The mapping starts at
// floor(startOffset/pageSize); the caller's logical start is reached by
// skipping the intra-page offset within the mapping.
func readRecordsMmap(f *os.File, startOffset, maxBytes int64, sink Sink) (int64, error) {
	fi, err := f.Stat()
	if err != nil {
		return 0, &sorterr.IoError{Op: "stat", Path: f.Name(), Err: err}
	}
	fileSize := fi.Size()
	if startOffset >= fileSize {
		return 0, nil
	}

	pageSize := int64(os.Getpagesize())
	alignedOffset := (startOffset / pageSize) * pageSize
	intraPageSkip := startOffset - alignedOffset
	windowLen := fileSize - alignedOffset

	m, err := mmap.MapRegion(f, int(windowLen), mmap.RDONLY, 0, alignedOffset)
	if err != nil {
		return 0, &sorterr.IoError{Op: "mmap", Path: f.Name(), Err: err}
	}
	defer m.Unmap()

	data := []byte(m)[intraPageSkip:]

	var consumed int64
	var cursor int64 // position within data

	for consumed < maxBytes {
		remaining := int64(len(data)) - cursor
		if remaining == 0 {
			break
		}
		if remaining < int64(record.HeaderSize) {
			return consumed, &sorterr.TruncatedError{Context: "record header", Path: f.Name()}
		}

		hdr := data[cursor : cursor+int64(record.HeaderSize)]
		length := binary.LittleEndian.Uint32(hdr[8:12])
		total := int64(record.HeaderSize) + int64(length)

		if consumed+total > maxBytes {
			if consumed == 0 {
				return 0, &sorterr.LengthExceedsBudgetError{Declared: uint32(total), Budget: uint32(maxBytes)}
			}
			break
		}
		if remaining < total {
			return consumed, &sorterr.TruncatedError{Context: "record payload", Path: f.Name()}
		}

		key := binary.LittleEndian.Uint64(hdr[0:8])
		payload := make([]byte, length)
		copy(payload, data[cursor+int64(record.HeaderSize):cursor+total])
		sink.Push(record.Record{Key: key, Payload: payload})

		cursor += total
		consumed += total
	}

	return consumed, nil
}

// Source is the dual of Sink: a container that can be drained of its
// records in a defined order. append_records (spec §4.2) consumes its
// source by value: ordered and double-ended sequences drain front to
// back, a heap drains in ascending-key order.
type Source interface {
	// Next returns the next record to write and true, or the zero Record
	// and false once the source is exhausted.
	Next() (record.Record, bool)
}

// sliceSource drains a SliceSink forward, starting from its current
// position, without mutating the backing array.
type sliceSource struct {
	s   *SliceSink
	pos int
}

func (s *sliceSource) Next() (record.Record, bool) {
	if s.pos >= len(s.s.Records) {
		return record.Record{}, false
	}
	r := s.s.Records[s.pos]
	s.pos++
	return r, true
}

// AsSource adapts a SliceSink for draining by AppendRecords.
func AsSource(s *SliceSink) Source { return &sliceSource{s: s} }

type dequeSource struct{ d *DequeSink }

func (s *dequeSource) Next() (record.Record, bool) {
	if s.d.Len() == 0 {
		return record.Record{}, false
	}
	return s.d.PopFront(), true
}

// AsDequeSource adapts a DequeSink for draining by AppendRecords, popping
// from the front in forward order.
func AsDequeSource(d *DequeSink) Source { return &dequeSource{d: d} }

type heapSource struct{ h *HeapSink }

func (s *heapSource) Next() (record.Record, bool) {
	if s.h.Len() == 0 {
		return record.Record{}, false
	}
	return s.h.PopMin(), true
}

// AsHeapSource adapts a HeapSink for draining by AppendRecords in
// ascending-key order.
func AsHeapSource(h *HeapSink) Source { return &heapSource{h: h} }

// AppendRecords drains source and appends each record's on-disk encoding
// to dest, extending the file as necessary. It returns the number of
// bytes written. If a write fails partway through, dest's length is
// unspecified and the file must be treated as poisoned by the caller.
func AppendRecords(dest *os.File, source Source) (int64, error) {
	if UseMmap {
		return appendRecordsMmap(dest, source)
	}
	return appendRecordsBuffered(dest, source)
}

func appendRecordsBuffered(dest *os.File, source Source) (int64, error) {
	var written int64
	buf := make([]byte, 0, 1<<16)

	flush := func() error {
		if len(buf) == 0 {
			return nil
		}
		n, err := dest.Write(buf)
		written += int64(n)
		buf = buf[:0]
		if err != nil {
			return &sorterr.IoError{Op: "write", Path: dest.Name(), Err: err}
		}
		return nil
	}

	for {
		r, ok := source.Next()
		if !ok {
			break
		}
		if len(buf)+r.ByteSize() > cap(buf) && len(buf) > 0 {
			if err := flush(); err != nil {
				return written, err
			}
		}
		var hdr [record.HeaderSize]byte
		binary.LittleEndian.PutUint64(hdr[0:8], r.Key)
		binary.LittleEndian.PutUint32(hdr[8:12], uint32(len(r.Payload)))
		buf = append(buf, hdr[:]...)
		buf = append(buf, r.Payload...)
	}

	if err := flush(); err != nil {
		return written, err
	}
	return written, nil
}

// appendRecordsMmap grows dest to the required size, maps a window
// aligned to the page containing the current end-of-file, writes records
// contiguously starting at the intra-page offset, and flushes before
// unmapping, per spec §4.2.
func appendRecordsMmap(dest *os.File, source Source) (int64, error) {
	// Drain into memory first: the total size must be known up front to
	// grow the file and size the mapping in one shot.
	var records []record.Record
	var total int64
	for {
		r, ok := source.Next()
		if !ok {
			break
		}
		total += int64(r.ByteSize())
		records = append(records, r)
	}
	if total == 0 {
		return 0, nil
	}

	fi, err := dest.Stat()
	if err != nil {
		return 0, &sorterr.IoError{Op: "stat", Path: dest.Name(), Err: err}
	}
	startOffset := fi.Size()

	pageSize := int64(os.Getpagesize())
	alignedOffset := (startOffset / pageSize) * pageSize
	intraPageSkip := startOffset - alignedOffset
	requiredSize := alignedOffset + intraPageSkip + total

	if err := dest.Truncate(requiredSize); err != nil {
		return 0, &sorterr.IoError{Op: "truncate", Path: dest.Name(), Err: err}
	}

	m, err := mmap.MapRegion(dest, int(requiredSize-alignedOffset), mmap.RDWR, 0, alignedOffset)
	if err != nil {
		return 0, &sorterr.IoError{Op: "mmap", Path: dest.Name(), Err: err}
	}
	defer m.Unmap()

	cursor := intraPageSkip
	for _, r := range records {
		binary.LittleEndian.PutUint64(m[cursor:cursor+8], r.Key)
		binary.LittleEndian.PutUint32(m[cursor+8:cursor+12], uint32(len(r.Payload)))
		copy(m[cursor+int64(record.HeaderSize):], r.Payload)
		cursor += int64(r.ByteSize())
	}

	if err := m.Flush(); err != nil {
		return 0, &sorterr.IoError{Op: "msync", Path: dest.Name(), Err: err}
	}

	return total, nil
}

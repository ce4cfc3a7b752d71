// Package chunker computes record-aligned byte-range boundaries over an
// input file (spec component C3), the unit of work handed to the run
// generator (internal/rungen) by both the local orchestrator and the
// distributed coordinator.
package chunker

import (
	"encoding/binary"
	"os"

	"github.com/skiby7/parallel-external-mergesort/internal/record"
	"github.com/skiby7/parallel-external-mergesort/internal/sorterr"
)

// Range is a half-open byte interval [Start, End) that begins and ends on
// a record boundary.
type Range struct {
	Start int64
	End   int64
}

// Len returns the number of bytes spanned by the range.
func (r Range) Len() int64 { return r.End - r.Start }

// Chunk walks path at record granularity and returns an ordered list of
// ranges whose union exactly covers [0, file_size) with no overlap. A
// range closes after the first record that brings it to at least
// ceil(file_size / targetChunks) bytes, so every range but the last can
// exceed that size by less than one record; the last range holds
// whatever remains. targetChunks must be >= 1.
//
// Chunk fails with a TruncatedError if any record in the file is
// malformed, matching the fatal treatment C2 gives a torn record.
func Chunk(path string, targetChunks int) ([]Range, error) {
	if targetChunks < 1 {
		return nil, &sorterr.ConfigError{Field: "targetChunks", Reason: "must be >= 1"}
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
	fileSize := fi.Size()
	if fileSize == 0 {
		return []Range{}, nil
	}

	targetChunkSize := (fileSize + int64(targetChunks) - 1) / int64(targetChunks)
	if targetChunkSize < 1 {
		targetChunkSize = 1
	}

	var ranges []Range
	var hdr [record.HeaderSize]byte
	chunkStart := int64(0)
	offset := int64(0)
	chunkBytes := int64(0)

	for offset < fileSize {
		n, err := f.ReadAt(hdr[:], offset)
		if err != nil && n < record.HeaderSize {
			return nil, &sorterr.TruncatedError{Context: "record header", Path: path}
		}

		length := binary.LittleEndian.Uint32(hdr[8:12])
		total := int64(record.HeaderSize) + int64(length)
		if offset+total > fileSize {
			return nil, &sorterr.TruncatedError{Context: "record payload", Path: path}
		}

		offset += total
		chunkBytes += total

		if chunkBytes >= targetChunkSize {
			ranges = append(ranges, Range{Start: chunkStart, End: offset})
			chunkStart = offset
			chunkBytes = 0
		}
	}

	if chunkStart < fileSize {
		ranges = append(ranges, Range{Start: chunkStart, End: fileSize})
	}

	return ranges, nil
}

// Package record defines the on-disk record format shared by every stage of
// the external sort: run generation, merging, and the distributed shard
// protocol all read and write records through this package alone.
package record

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/skiby7/parallel-external-mergesort/internal/sorterr"
)

// HeaderSize is the size in bytes of the fixed key+length header that
// precedes every record's payload on disk.
const HeaderSize = 8 + 4 // 8 byte key, 4 byte length

// Record is the sortable unit: a 64-bit key and an owned payload buffer.
// The zero value is not a valid record (Payload is nil); use New or Decode.
type Record struct {
	Key     uint64
	Payload []byte
}

// New copies p into a freshly allocated payload buffer so the caller's
// slice can be reused or mutated after this call returns.
func New(key uint64, p []byte) Record {
	buf := make([]byte, len(p))
	copy(buf, p)
	return Record{Key: key, Payload: buf}
}

// Clone deep-copies the record, including its payload buffer. Every
// consumer that must hold on to a record past the lifetime of the
// container it came from (an arena reset, a reused scratch buffer) must
// clone rather than alias.
func (r Record) Clone() Record {
	return New(r.Key, r.Payload)
}

// ByteSize is the number of bytes r occupies on disk: the fixed header
// plus the payload.
func (r Record) ByteSize() int {
	return HeaderSize + len(r.Payload)
}

// Less implements the engine's total order: strict ascending by Key.
// Ties are intentionally unordered here; callers needing a deterministic
// tie-break (the merger) break ties on stream index instead.
func (r Record) Less(other Record) bool {
	return r.Key < other.Key
}

// Encode appends r's on-disk encoding to w: 8 bytes little-endian key, 4
// bytes little-endian payload length, then the payload bytes verbatim.
func Encode(w io.Writer, r Record) error {
	var hdr [HeaderSize]byte
	binary.LittleEndian.PutUint64(hdr[0:8], r.Key)
	binary.LittleEndian.PutUint32(hdr[8:12], uint32(len(r.Payload)))
	if _, err := w.Write(hdr[:]); err != nil {
		return &sorterr.IoError{Op: "write record header", Err: err}
	}
	if len(r.Payload) > 0 {
		if _, err := w.Write(r.Payload); err != nil {
			return &sorterr.IoError{Op: "write record payload", Err: err}
		}
	}
	return nil
}

// Decode reads exactly one record from r. maxPayload bounds the declared
// payload length; a record claiming more than maxPayload bytes is rejected
// with LengthExceedsBudget before any payload bytes are read, so a
// corrupt header can never trigger an unbounded allocation.
//
// Decode never returns a partially-read record: on any error the returned
// Record is the zero value.
func Decode(r io.Reader, maxPayload uint32) (Record, error) {
	var hdr [HeaderSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		if err == io.EOF {
			return Record{}, io.EOF
		}
		if err == io.ErrUnexpectedEOF {
			return Record{}, &sorterr.TruncatedError{Context: "record header"}
		}
		return Record{}, &sorterr.IoError{Op: "read record header", Err: err}
	}

	key := binary.LittleEndian.Uint64(hdr[0:8])
	length := binary.LittleEndian.Uint32(hdr[8:12])
	if length > maxPayload {
		return Record{}, &sorterr.LengthExceedsBudgetError{Declared: length, Budget: maxPayload}
	}

	payload := make([]byte, length)
	if length > 0 {
		if _, err := io.ReadFull(r, payload); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return Record{}, &sorterr.TruncatedError{Context: "record payload"}
			}
			return Record{}, &sorterr.IoError{Op: "read record payload", Err: err}
		}
	}

	return Record{Key: key, Payload: payload}, nil
}

// String implements fmt.Stringer for debugging and test failure output.
func (r Record) String() string {
	return fmt.Sprintf("Record{key=%d, len=%d}", r.Key, len(r.Payload))
}

// Package distsort implements the distributed variant (spec component
// C7): a coordinator that shards input records round-robin across
// workers over a size-prefixed frame protocol, and workers that sort
// their shard locally (spilling sorted runs, then merging them with the
// k-way merger, C5) and stream it back.
package distsort

import (
	"encoding/binary"
	"io"

	"github.com/skiby7/parallel-external-mergesort/internal/sorterr"
)

// writeFrame writes one (int32 size; size bytes) frame to w, matching
// spec §6's literal coordinator<->worker wire format.
func writeFrame(w io.Writer, payload []byte) error {
	var sizeBuf [4]byte
	binary.LittleEndian.PutUint32(sizeBuf[:], uint32(len(payload)))
	if _, err := w.Write(sizeBuf[:]); err != nil {
		return &sorterr.IoError{Op: "write frame size", Err: err}
	}
	if len(payload) == 0 {
		return nil
	}
	if _, err := w.Write(payload); err != nil {
		return &sorterr.IoError{Op: "write frame payload", Err: err}
	}
	return nil
}

// writeEndOfStream writes the zero-sized sentinel frame that terminates
// a stream of frames.
func writeEndOfStream(w io.Writer) error {
	return writeFrame(w, nil)
}

// readFrame reads one frame from r. ok is false (with a nil error) when
// the frame read was the zero-sized end-of-stream sentinel.
func readFrame(r io.Reader) (payload []byte, ok bool, err error) {
	var sizeBuf [4]byte
	if _, err := io.ReadFull(r, sizeBuf[:]); err != nil {
		if err == io.EOF {
			return nil, false, &sorterr.IoError{Op: "read frame size", Err: io.ErrUnexpectedEOF}
		}
		return nil, false, &sorterr.IoError{Op: "read frame size", Err: err}
	}
	size := binary.LittleEndian.Uint32(sizeBuf[:])
	if size == 0 {
		return nil, false, nil
	}
	buf := make([]byte, size)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, false, &sorterr.IoError{Op: "read frame payload", Err: err}
	}
	return buf, true, nil
}

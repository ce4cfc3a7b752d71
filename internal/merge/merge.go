// Package merge implements the k-way merger (spec component C5): fanning
// a list of sorted run files into a single sorted output, under a bounded
// memory budget split between an output buffer and one read-ahead queue
// per input stream.
package merge

import (
	"container/heap"
	"os"

	"github.com/skiby7/parallel-external-mergesort/internal/record"
	"github.com/skiby7/parallel-external-mergesort/internal/recordio"
	"github.com/skiby7/parallel-external-mergesort/internal/sorterr"
)

// minPageBudget floors each stream's share of the input-side memory
// budget so a merge with many inputs never starves a stream's queue.
const minPageBudget = 4096

// stream holds the per-input state the merge protocol needs: a read-ahead
// queue of decoded records, the file it reads from, its current offset,
// bytes remaining to read, and its own memory budget.
type stream struct {
	index     int
	f         *os.File
	queue     *recordio.DequeSink
	offset    int64
	remaining int64
	budget    int64
}

func (s *stream) refill() error {
	if s.remaining <= 0 {
		return nil
	}
	consumed, err := recordio.ReadRecords(s.f, s.offset, s.budget, s.queue)
	if err != nil {
		return err
	}
	s.offset += consumed
	s.remaining -= consumed
	return nil
}

// heapEntry is the unit ordered by the merge's min-heap: a record plus
// the index of the stream it came from, used to break ties
// deterministically.
type heapEntry struct {
	rec         record.Record
	streamIndex int
}

type lossTree []heapEntry

func (h lossTree) Len() int { return len(h) }
func (h lossTree) Less(i, j int) bool {
	if h[i].rec.Key != h[j].rec.Key {
		return h[i].rec.Key < h[j].rec.Key
	}
	return h[i].streamIndex < h[j].streamIndex
}
func (h lossTree) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *lossTree) Push(x interface{}) { *h = append(*h, x.(heapEntry)) }
func (h *lossTree) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// Merge fans the sorted files in paths into a single sorted file at
// outPath, under memoryBudget bytes of total working memory: one third
// for the output buffer, the rest divided evenly across the input
// streams (floored at minPageBudget per stream). On success every input
// file in paths is closed and deleted. On failure the output and any
// remaining inputs are left in an undefined, poisoned state for the
// caller to discard.
func Merge(paths []string, outPath string, memoryBudget int64) error {
	if len(paths) == 0 {
		f, err := os.Create(outPath)
		if err != nil {
			return &sorterr.IoError{Op: "create", Path: outPath, Err: err}
		}
		return f.Close()
	}

	outputBudget := memoryBudget / 3
	inputBudget := memoryBudget - outputBudget
	perStreamBudget := inputBudget / int64(len(paths))
	if perStreamBudget < minPageBudget {
		perStreamBudget = minPageBudget
	}

	streams := make([]*stream, len(paths))
	for i, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			return &sorterr.IoError{Op: "open run file", Path: p, Err: err}
		}
		fi, err := f.Stat()
		if err != nil {
			f.Close()
			return &sorterr.IoError{Op: "stat run file", Path: p, Err: err}
		}
		streams[i] = &stream{
			index:     i,
			f:         f,
			queue:     recordio.NewDequeSink(),
			remaining: fi.Size(),
			budget:    perStreamBudget,
		}
	}
	defer func() {
		for _, s := range streams {
			s.f.Close()
		}
	}()

	out, err := os.Create(outPath)
	if err != nil {
		return &sorterr.IoError{Op: "create", Path: outPath, Err: err}
	}
	defer out.Close()

	h := make(lossTree, 0, len(streams))
	for _, s := range streams {
		if err := s.refill(); err != nil {
			return err
		}
		if s.queue.Len() > 0 {
			heap.Push(&h, heapEntry{rec: s.queue.PopFront(), streamIndex: s.index})
		}
	}

	var outBuf []record.Record
	var outBytes int64

	flush := func() error {
		if len(outBuf) == 0 {
			return nil
		}
		sink := recordio.NewSliceSink(len(outBuf))
		for _, r := range outBuf {
			sink.Push(r)
		}
		if _, err := recordio.AppendRecords(out, recordio.AsSource(sink)); err != nil {
			return err
		}
		outBuf = outBuf[:0]
		outBytes = 0
		return nil
	}

	for h.Len() > 0 {
		top := heap.Pop(&h).(heapEntry)
		outBuf = append(outBuf, top.rec)
		outBytes += int64(top.rec.ByteSize())

		s := streams[top.streamIndex]
		if s.queue.Len() == 0 && s.remaining > 0 {
			if err := s.refill(); err != nil {
				return err
			}
		}
		if s.queue.Len() > 0 {
			heap.Push(&h, heapEntry{rec: s.queue.PopFront(), streamIndex: s.index})
		}

		if outBytes >= outputBudget {
			if err := flush(); err != nil {
				return err
			}
		}
	}

	if err := flush(); err != nil {
		return err
	}

	for i, s := range streams {
		if err := s.f.Close(); err != nil {
			return &sorterr.IoError{Op: "close run file", Path: paths[i], Err: err}
		}
		if err := os.Remove(paths[i]); err != nil {
			return &sorterr.IoError{Op: "remove run file", Path: paths[i], Err: err}
		}
	}
	streams = nil // closed above; deferred cleanup becomes a no-op

	return nil
}

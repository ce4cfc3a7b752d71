package recordio

import (
	"container/heap"
	"container/list"

	"github.com/skiby7/parallel-external-mergesort/internal/record"
)

// Sink is the narrow interface ReadRecords and merge/run-generation code
// push decoded records into. It is the single contract: a container's
// internal representation (slice, deque, heap) is never branched on at
// the call site, only Push is called. This replaces the teacher's
// compile-time container-type selection with runtime polymorphism over
// one small interface, per the "Polymorphism over sinks" design note.
type Sink interface {
	Push(r record.Record)
}

// SliceSink is an ordered, append-only sink: records come out in the
// order they were pushed.
type SliceSink struct {
	Records []record.Record
}

// NewSliceSink returns a SliceSink with capacity pre-reserved for n records.
func NewSliceSink(n int) *SliceSink {
	return &SliceSink{Records: make([]record.Record, 0, n)}
}

// Push implements Sink.
func (s *SliceSink) Push(r record.Record) {
	s.Records = append(s.Records, r)
}

// DequeSink is a double-ended sequence sink backed by container/list, used
// where records must be pushed at the back and drained from the front
// without the cost of slice compaction — the merge engine's per-stream
// read-ahead queue being the primary client.
type DequeSink struct {
	l *list.List
}

// NewDequeSink returns an empty DequeSink.
func NewDequeSink() *DequeSink {
	return &DequeSink{l: list.New()}
}

// Push implements Sink; pushes to the back of the deque.
func (s *DequeSink) Push(r record.Record) {
	s.l.PushBack(r)
}

// Len returns the number of records currently queued.
func (s *DequeSink) Len() int {
	return s.l.Len()
}

// Front returns the oldest queued record without removing it. Front
// panics if the deque is empty; callers must check Len first.
func (s *DequeSink) Front() record.Record {
	return s.l.Front().Value.(record.Record)
}

// PopFront removes and returns the oldest queued record.
func (s *DequeSink) PopFront() record.Record {
	e := s.l.Front()
	s.l.Remove(e)
	return e.Value.(record.Record)
}

// heapItems is the container/heap backing store for HeapSink, ordered by
// ascending key.
type heapItems []record.Record

func (h heapItems) Len() int            { return len(h) }
func (h heapItems) Less(i, j int) bool  { return h[i].Less(h[j]) }
func (h heapItems) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *heapItems) Push(x interface{}) { *h = append(*h, x.(record.Record)) }
func (h *heapItems) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// HeapSink is a min-heap sink ordered by key. append_records drains a
// HeapSink in ascending-key order (spec §4.2): it is the sink used when a
// run generator's output must already be ordered regardless of push order.
type HeapSink struct {
	h heapItems
}

// NewHeapSink returns an empty HeapSink.
func NewHeapSink() *HeapSink {
	return &HeapSink{h: make(heapItems, 0)}
}

// Push implements Sink.
func (s *HeapSink) Push(r record.Record) {
	heap.Push(&s.h, r)
}

// Len returns the number of records currently held.
func (s *HeapSink) Len() int {
	return s.h.Len()
}

// PopMin removes and returns the smallest-key record held.
func (s *HeapSink) PopMin() record.Record {
	return heap.Pop(&s.h).(record.Record)
}

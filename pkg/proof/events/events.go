// --- START OF FINAL REVISED FILE pkg/proof/events/events.go ---
package events

import "sync"

// Event is a progress notification emitted by the run pipeline.
// The set of events is closed; only types in this package implement it.
type Event interface {
	isEvent()
}

// AssetFound is emitted once per discovered asset, in index order, before ScanDone.
type AssetFound struct {
	Filename string
	Kind     string // "image" or "video"
}

// ScanDone marks the end of discovery.
type ScanDone struct {
	Total int
}

// Processing is emitted when work on the asset at Index starts.
type Processing struct {
	Index int
}

// Processed is emitted when the asset at Index produced a record.
type Processed struct {
	Index int
}

// Failed is emitted when the asset at Index could not be processed.
type Failed struct {
	Index   int
	Message string
}

// Rendering marks the start of document rendering.
type Rendering struct{}

// Done is the terminal success event.
type Done struct {
	Output string
	Total  int
}

// Error is the terminal failure event.
type Error struct {
	Message string
}

func (AssetFound) isEvent() {}
func (ScanDone) isEvent()   {}
func (Processing) isEvent() {}
func (Processed) isEvent()  {}
func (Failed) isEvent()     {}
func (Rendering) isEvent()  {}
func (Done) isEvent()       {}
func (Error) isEvent()      {}

// Sink receives events. Implementations MUST be safe for concurrent use and MUST NOT block.
type Sink interface {
	Send(ev Event)
}

// NoOpSink discards every event.
type NoOpSink struct{}

// Send implements Sink.
func (NoOpSink) Send(Event) {}

// --- Queue ---

// Queue is an unbounded, ordered, multi-producer event channel.
// Send never blocks. After Close, further sends are silently dropped while
// already-queued events remain available to Drain.
type Queue struct {
	mu     sync.Mutex
	items  []Event
	closed bool
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Send appends ev to the queue. It is a no-op once the queue is closed.
func (q *Queue) Send(ev Event) {
	if ev == nil {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.items = append(q.items, ev)
}

// Drain removes and returns every queued event in send order.
// It returns nil when the queue is empty.
func (q *Queue) Drain() []Event {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return nil
	}
	out := q.items
	q.items = nil
	return out
}

// Len reports the number of queued events.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Close stops the queue from accepting events.
func (q *Queue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
}

// Closed reports whether Close has been called.
func (q *Queue) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// --- END OF FINAL REVISED FILE pkg/proof/events/events.go ---

package call

import (
	"container/list"
	"sync"

	"github.com/gotelepathy/call/pkg/callerr"
)

// OfferResult is the resolution of one media description negotiation. Err is
// nil on Accept, a *RejectedError on Reject and a *callerr.CancelledError
// when the owning content was torn down.
type OfferResult struct {
	Properties MediaDescriptionProperties
	Err        error
}

type offerEntry struct {
	desc *MediaDescription
	ch   chan OfferResult
}

// offerQueue serializes the media description negotiations of one content:
// at most one description is offered to the far end at a time, strictly in
// FIFO submission order. The next entry is only promoted once the current
// one resolves.
type offerQueue struct {
	mu      sync.Mutex
	queued  *list.List
	current *offerEntry
	closed  bool

	onNewOffer  func(*MediaDescription)
	onOfferDone func(*MediaDescription)
	onResolved  func(*MediaDescription, MediaDescriptionProperties, error)
}

func newOfferQueue(
	onNewOffer func(*MediaDescription),
	onOfferDone func(*MediaDescription),
	onResolved func(*MediaDescription, MediaDescriptionProperties, error),
) *offerQueue {
	return &offerQueue{
		queued:      list.New(),
		onNewOffer:  onNewOffer,
		onOfferDone: onOfferDone,
		onResolved:  onResolved,
	}
}

// Enqueue appends a negotiation request. The returned channel receives
// exactly one result when the description resolves. If nothing is currently
// outstanding the description is promoted immediately; a description that is
// already terminal resolves Cancelled without entering the queue.
func (q *offerQueue) Enqueue(desc *MediaDescription) <-chan OfferResult {
	ch := make(chan OfferResult, 1)

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		desc.Cancel()
		ch <- OfferResult{Err: &callerr.CancelledError{Err: ErrDescriptionTornDown}}
		return ch
	}

	entry := &offerEntry{desc: desc, ch: ch}
	if !desc.bind(func(props MediaDescriptionProperties, err error) {
		q.resolved(entry, props, err)
	}) {
		// Already terminal, e.g. cancelled before it reached the queue. It
		// must not become current or it would wedge everything behind it.
		q.mu.Unlock()
		ch <- OfferResult{Err: &callerr.CancelledError{Err: ErrDescriptionResolved}}
		return ch
	}

	var promoted *offerEntry
	if q.current == nil {
		q.current = entry
		promoted = entry
	} else {
		q.queued.PushBack(entry)
	}
	q.mu.Unlock()

	if promoted != nil {
		promoted.desc.setCurrent(true)
		if q.onNewOffer != nil {
			q.onNewOffer(promoted.desc)
		}
	}
	return ch
}

// HasOutstanding reports whether an offer is currently out to the far end.
func (q *offerQueue) HasOutstanding() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.current != nil
}

// resolved is the completion continuation bound to every enqueued
// description. It delivers the result, announces completion of the current
// offer and promotes the next queued entry.
func (q *offerQueue) resolved(entry *offerEntry, props MediaDescriptionProperties, err error) {
	q.mu.Lock()
	wasCurrent := q.current == entry
	if wasCurrent {
		q.current = nil
	} else {
		for e := q.queued.Front(); e != nil; e = e.Next() {
			if e.Value.(*offerEntry) == entry {
				q.queued.Remove(e)
				break
			}
		}
	}

	var next *offerEntry
	if wasCurrent && !q.closed {
		if front := q.queued.Front(); front != nil {
			q.queued.Remove(front)
			next = front.Value.(*offerEntry)
			q.current = next
		}
	}
	q.mu.Unlock()

	entry.desc.setCurrent(false)
	entry.ch <- OfferResult{Properties: props, Err: err}

	if wasCurrent {
		if q.onResolved != nil {
			q.onResolved(entry.desc, props, err)
		}
		if q.onOfferDone != nil {
			q.onOfferDone(entry.desc)
		}
	}
	if next != nil {
		next.desc.setCurrent(true)
		if q.onNewOffer != nil {
			q.onNewOffer(next.desc)
		}
	}
}

// Close cancels the current offer and drains the queue, resolving every
// pending result with Cancelled in FIFO order. Idempotent.
func (q *offerQueue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	current := q.current
	var drained []*offerEntry
	for e := q.queued.Front(); e != nil; e = e.Next() {
		drained = append(drained, e.Value.(*offerEntry))
	}
	q.queued.Init()
	q.mu.Unlock()

	if current != nil {
		current.desc.Cancel()
	}
	for _, entry := range drained {
		entry.desc.Cancel()
	}
}

// Package notify implements a frontier-aware notificator that carries an
// arbitrary per-notification payload and survives bin migration: payloads
// registered before a bin moves can be drained and replayed at the new
// owner (see the routing operator in package stateful).
//
// This is a Go rendering of the reference FrontierNotificator. Reference
// behavior (coalescing, capability-downgrade-by-minimum, availability
// ordering) is preserved; see doc comments below for where it departs.
package notify

import (
	"cmp"
	"container/heap"
	"fmt"
	"sort"

	"github.com/streamshard/megaflow/pkg/frontier"
)

// Capability is a lightweight stand-in for a runtime-issued capability
// token: holding one keeps its time available for future notification.
// Unlike a real dataflow runtime's capability, this type does no reference
// counting — the host cluster in package runtime is responsible for not
// advancing a worker's output frontier past a time it still holds.
type Capability[T cmp.Ordered] struct {
	t T
}

// NewCapability wraps a time as a capability.
func NewCapability[T cmp.Ordered](t T) Capability[T] {
	return Capability[T]{t: t}
}

// Time returns the capability's time.
func (c Capability[T]) Time() T { return c.t }

// Delayed returns a new capability for a later (or equal) time.
func (c Capability[T]) Delayed(t T) Capability[T] {
	return Capability[T]{t: t}
}

// PendingEntry is one registered-but-not-yet-available notification. Data
// holds every payload registered at Cap's time; entries at equal times are
// coalesced by MakeAvailable. Callers draining the pending list for
// migration (see stateful.Routing) mutate Data in place via Pending /
// PendingMut and rely on Compact to drop entries left empty.
type PendingEntry[T cmp.Ordered, D any] struct {
	Cap  Capability[T]
	Data []D
}

type enqueuedEntry[T cmp.Ordered, D any] struct {
	time T
	data []D
}

// availHeap is a min-heap over PendingEntry ordered by Cap.Time(), used to
// hold notifications already known to be available.
type availHeap[T cmp.Ordered, D any] []*PendingEntry[T, D]

func (h availHeap[T, D]) Len() int            { return len(h) }
func (h availHeap[T, D]) Less(i, j int) bool  { return h[i].Cap.Time() < h[j].Cap.Time() }
func (h availHeap[T, D]) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *availHeap[T, D]) Push(x interface{}) { *h = append(*h, x.(*PendingEntry[T, D])) }
func (h *availHeap[T, D]) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}

// Notificator tracks requested notifications and delivers the ones whose
// time no longer intersects any of a set of input frontiers.
//
// Ordering guarantee: within a single ForEach call, delivered times are
// non-decreasing. Next called outside of ForEach may yield out of order;
// callers that need strict order must use ForEach.
type Notificator[T cmp.Ordered, D any] struct {
	pending    []*PendingEntry[T, D]
	enqueued   []enqueuedEntry[T, D]
	available  availHeap[T, D]
	capability *Capability[T]
}

// New allocates an empty Notificator.
func New[T cmp.Ordered, D any]() *Notificator[T, D] {
	n := &Notificator[T, D]{}
	heap.Init(&n.available)
	return n
}

// NotifyAt registers a future delivery at cap.Time(). Multiple registrations
// at the same time are merged into one delivery the next time MakeAvailable
// coalesces the pending list.
func (n *Notificator[T, D]) NotifyAt(cap Capability[T], data D) {
	n.pending = append(n.pending, &PendingEntry[T, D]{Cap: cap, Data: []D{data}})
}

// NotifyAtFrontiered is the fast-registration path: if no frontier is still
// less-equal cap.Time(), the notification is already available and is
// pushed directly onto the heap; otherwise it is queued in pending.
func (n *Notificator[T, D]) NotifyAtFrontiered(cap Capability[T], data D, frontiers []frontier.Antichain[T]) {
	if allPast(frontiers, cap.Time()) {
		heap.Push(&n.available, &PendingEntry[T, D]{Cap: cap, Data: []D{data}})
	} else {
		n.pending = append(n.pending, &PendingEntry[T, D]{Cap: cap, Data: []D{data}})
	}
}

// Enqueue registers a raw (time, data) pair without a capability, for use by
// migration-ingest code that receives a Pending wire message before it has
// received a capability for the destination time. InitCap must be called at
// least once before MakeAvailable can promote these entries.
func (n *Notificator[T, D]) Enqueue(time T, data D) {
	n.enqueued = append(n.enqueued, enqueuedEntry[T, D]{time: time, data: []D{data}})
}

// InitCap lazily populates the held capability used to convert enqueued raw
// times into real registrations. Only the first call takes effect.
func (n *Notificator[T, D]) InitCap(cap Capability[T]) {
	if n.capability == nil {
		c := cap
		n.capability = &c
	}
}

// MakeAvailable moves enqueued entries into pending (using the held
// capability), coalesces pending entries by equal time, promotes any
// pending entry no longer intersecting frontiers into the available heap,
// and downgrades (or drops) the held capability.
func (n *Notificator[T, D]) MakeAvailable(frontiers []frontier.Antichain[T]) {
	if len(n.enqueued) > 0 && n.capability == nil {
		panic(fmt.Sprintf("notify: %d enqueued notifications but no capability initialized (call InitCap first)", len(n.enqueued)))
	}
	for _, e := range n.enqueued {
		cap := n.capability.Delayed(e.time)
		n.pending = append(n.pending, &PendingEntry[T, D]{Cap: cap, Data: e.data})
	}
	n.enqueued = n.enqueued[:0]

	// Downgrade the held capability to the minimum of the frontiers'
	// minimum elements. This is the total-order simplification documented
	// in package frontier: it is only correct because Time here is
	// assumed totally ordered.
	if n.capability != nil {
		if newTime, ok := minOfFrontierMins(frontiers); ok && n.capability.Time() < newTime {
			n.capability = &Capability[T]{t: newTime}
		}
	}
	if allEmpty(frontiers) {
		n.capability = nil
	}

	n.coalescePending()
	for _, e := range n.pending {
		if len(e.Data) > 0 && allPast(frontiers, e.Cap.Time()) {
			heap.Push(&n.available, &PendingEntry[T, D]{Cap: e.Cap, Data: e.Data})
			e.Data = nil
		}
	}
	n.Compact()
}

// coalescePending merges pending entries that share an exact time, matching
// the reference implementation's sort-then-merge pass.
func (n *Notificator[T, D]) coalescePending() {
	if len(n.pending) < 2 {
		return
	}
	sort.SliceStable(n.pending, func(i, j int) bool { return n.pending[i].Cap.Time() < n.pending[j].Cap.Time() })
	out := n.pending[:1]
	for _, e := range n.pending[1:] {
		last := out[len(out)-1]
		if last.Cap.Time() == e.Cap.Time() {
			last.Data = append(last.Data, e.Data...)
			continue
		}
		out = append(out, e)
	}
	n.pending = out
}

// Compact drops pending entries left with no data (already promoted, or
// filtered to empty by a migration walk over PendingMut).
func (n *Notificator[T, D]) Compact() {
	out := n.pending[:0]
	for _, e := range n.pending {
		if len(e.Data) > 0 {
			out = append(out, e)
		}
	}
	n.pending = out
}

// Next pops the available entry with the smallest time, coalescing any
// duplicate-time entries encountered at the top of the heap. It calls
// MakeAvailable first if nothing is currently available. Returns ok=false
// when no notification is ready.
func (n *Notificator[T, D]) Next(frontiers []frontier.Antichain[T]) (Capability[T], []D, bool) {
	if n.available.Len() == 0 {
		n.MakeAvailable(frontiers)
	}
	if n.available.Len() == 0 {
		var zero Capability[T]
		return zero, nil, false
	}
	front := heap.Pop(&n.available).(*PendingEntry[T, D])
	for n.available.Len() > 0 && n.available[0].Cap.Time() == front.Cap.Time() {
		dup := heap.Pop(&n.available).(*PendingEntry[T, D])
		front.Data = append(front.Data, dup.Data...)
	}
	return front.Cap, front.Data, true
}

// ForEach drains every notification available with respect to frontiers,
// delivering times in non-decreasing order.
func (n *Notificator[T, D]) ForEach(frontiers []frontier.Antichain[T], logic func(cap Capability[T], data []D)) {
	n.MakeAvailable(frontiers)
	for {
		cap, data, ok := n.Next(frontiers)
		if !ok {
			return
		}
		logic(cap, data)
	}
}

// Pending exposes the pending list for inspection — the migration walk in
// package stateful uses this (and PendingMut) to filter entries whose bin
// ownership changed.
func (n *Notificator[T, D]) Pending() []*PendingEntry[T, D] { return n.pending }

// PendingMut exposes the pending list for in-place mutation.
func (n *Notificator[T, D]) PendingMut() []*PendingEntry[T, D] { return n.pending }

func allPast[T cmp.Ordered](frontiers []frontier.Antichain[T], t T) bool {
	for _, f := range frontiers {
		if f.LessEqual(t) {
			return false
		}
	}
	return true
}

func allEmpty[T cmp.Ordered](frontiers []frontier.Antichain[T]) bool {
	for _, f := range frontiers {
		if !f.Empty() {
			return false
		}
	}
	return true
}

func minOfFrontierMins[T cmp.Ordered](frontiers []frontier.Antichain[T]) (T, bool) {
	var best T
	found := false
	for _, f := range frontiers {
		if m, ok := f.Min(); ok {
			if !found || m < best {
				best = m
				found = true
			}
		}
	}
	return best, found
}

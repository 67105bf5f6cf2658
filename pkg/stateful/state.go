package stateful

import (
	"math"

	"github.com/streamshard/megaflow/pkg/frontier"
	"github.com/streamshard/megaflow/pkg/notify"
	"github.com/streamshard/megaflow/pkg/statestore"
	"github.com/streamshard/megaflow/pkg/wire"
)

// OutFunc forwards a record downstream of S, at time t.
type OutFunc[V any] func(t uint64, v V)

// State is operator S: two inputs (routed data, state transfer), one
// output. It holds its own local Notificator — distinct from the store's
// shared one — purely to schedule when a time's stash can be re-examined;
// its payload type is unit since only the time matters.
type State[V any, W any, M any] struct {
	store *statestore.Store[W, M]
	own   *notify.Notificator[uint64, struct{}]

	dataStash     map[uint64][]V
	transferStash map[uint64][]wire.Protocol[W, M]

	out OutFunc[V]
}

// NewState allocates operator S over store, forwarding admitted records to out.
func NewState[V any, W any, M any](store *statestore.Store[W, M], out OutFunc[V]) *State[V, W, M] {
	return &State[V, W, M]{
		store:         store,
		own:           notify.New[uint64, struct{}](),
		dataStash:     map[uint64][]V{},
		transferStash: map[uint64][]wire.Protocol[W, M]{},
		out:           out,
	}
}

// SubmitTransfer queues a state-transfer message for processing once both
// input frontiers have passed t: Prepare/State/Pending must never be applied
// to the store ahead of any data record's fast-path decision at the same
// time.
func (s *State[V, W, M]) SubmitTransfer(msg wire.Protocol[W, M], t uint64) {
	s.transferStash[t] = append(s.transferStash[t], msg)
	s.own.NotifyAt(notify.NewCapability(t), struct{}{})
}

// SubmitData implements the fast path: if neither input frontier is
// still less-equal t — meaning every earlier state-transfer message for t
// must already have arrived — forward immediately. Otherwise stash and
// request a notification for when it's safe to reconsider.
func (s *State[V, W, M]) SubmitData(v V, t uint64, dataFrontier, transferFrontier uint64) {
	fd := frontier.New(dataFrontier)
	ft := frontier.New(transferFrontier)
	if fd.LessEqual(t) || ft.LessEqual(t) {
		s.dataStash[t] = append(s.dataStash[t], v)
		s.own.NotifyAt(notify.NewCapability(t), struct{}{})
		return
	}
	s.out(t, v)
}

// Advance re-activates S against the current input frontiers: every time S's
// own notificator now considers available is drained in non-decreasing
// order, applying any queued transfer messages to the store before
// forwarding any data stashed at that time ("Slow path" ordering).
func (s *State[V, W, M]) Advance(dataFrontier, transferFrontier uint64) {
	frontiers := []frontier.Antichain[uint64]{frontier.New(dataFrontier), frontier.New(transferFrontier)}
	s.own.ForEach(frontiers, func(cap notify.Capability[uint64], _ []struct{}) {
		t := cap.Time()

		if msgs, ok := s.transferStash[t]; ok {
			delete(s.transferStash, t)
			for _, m := range msgs {
				s.applyTransfer(cap, m)
			}
		}

		if data, ok := s.dataStash[t]; ok {
			delete(s.dataStash, t)
			for _, v := range data {
				s.out(t, v)
			}
		}
	})
}

func (s *State[V, W, M]) applyTransfer(cap notify.Capability[uint64], m wire.Protocol[W, M]) {
	switch m.Kind {
	case wire.KindPrepare:
		s.store.Prepare(m.Bin)
	case wire.KindState:
		s.store.ExtendBin(m.Bin, m.Chunk)
	case wire.KindPending:
		s.store.Notificator().NotifyAt(cap.Delayed(m.Time), statestore.Payload[M]{Key: m.Key, Meta: m.Meta})
	}
}

// OutstandingFrontier is the time below which nothing is still stashed or
// awaiting a notification in this operator. The host cluster feeds the
// minimum of every worker's OutstandingFrontier back into F's probe
// argument: a snapshot cannot install until every
// in-flight record governed by an earlier one has left the stateful
// pipeline. Returns math.MaxUint64 ("infinitely far ahead") when nothing is
// outstanding.
func (s *State[V, W, M]) OutstandingFrontier() uint64 {
	min := uint64(math.MaxUint64)
	for t := range s.dataStash {
		if t < min {
			min = t
		}
	}
	for t := range s.transferStash {
		if t < min {
			min = t
		}
	}
	for _, e := range s.own.Pending() {
		if len(e.Data) > 0 && e.Cap.Time() < min {
			min = e.Cap.Time()
		}
	}
	return min
}

package stateful

import (
	"github.com/streamshard/megaflow/pkg/control"
	"github.com/streamshard/megaflow/pkg/megakey"
	"github.com/streamshard/megaflow/pkg/statestore"
)

// Entry is the per-key chunk a state-machine's container ships during
// migration: one (key, folded state) pair per State wire message.
type Entry[D any] struct {
	Key   megakey.Key
	State D
}

// FoldContainer is the Container[Entry[D]] backing control_state_machine and
// control_timed_state_machine: a map from key to its folded state.
// Elements/Extend satisfy the migration contract one key at a time, matching
// the reference's per-key `HashMap<K, D>` bin representation.
type FoldContainer[D any] struct {
	m map[megakey.Key]D
}

func newFoldContainer[D any]() statestore.NewContainerFunc[Entry[D]] {
	return func() statestore.Container[Entry[D]] {
		return &FoldContainer[D]{m: map[megakey.Key]D{}}
	}
}

func (c *FoldContainer[D]) Extend(e Entry[D]) {
	c.m[e.Key] = e.State
}

func (c *FoldContainer[D]) Elements() []Entry[D] {
	out := make([]Entry[D], 0, len(c.m))
	for k, v := range c.m {
		out = append(out, Entry[D]{Key: k, State: v})
	}
	return out
}

// Get returns the folded state for key and whether it is present — the
// Option<D> the reference fold closure receives as `&mut Option<D>`.
func (c *FoldContainer[D]) Get(key megakey.Key) (D, bool) {
	v, ok := c.m[key]
	return v, ok
}

// Set stores key's folded state.
func (c *FoldContainer[D]) Set(key megakey.Key, state D) {
	c.m[key] = state
}

// Delete removes key's folded state, the "fold returned None" case: the key
// is forgotten and nothing further is retained for it.
func (c *FoldContainer[D]) Delete(key megakey.Key) {
	delete(c.m, key)
}

// TimedFoldFunc folds one input V for key against its current state (D,
// hasState — hasState false models Option::None) at time t, returning the
// possibly-updated state, whether to keep it (false discards the key's state
// entirely), and zero or more outputs to emit.
type TimedFoldFunc[V any, D any, R any] func(t uint64, key megakey.Key, input V, state D, hasState bool) (newState D, keep bool, outputs []R)

// FoldFunc is TimedFoldFunc without the time parameter, for
// control_state_machine's simpler fold signature.
type FoldFunc[V any, D any, R any] func(key megakey.Key, input V, state D, hasState bool) (newState D, keep bool, outputs []R)

// StateMachine is the control_state_machine/control_timed_state_machine
// convenience layer: a Stateful[V, Entry[D], M] whose admitted
// records are folded against per-key state before being emitted, so callers
// never touch GetState/ExtendBin directly.
type StateMachine[V any, D any, M any, R any] struct {
	sf   *Stateful[V, Entry[D], M]
	hash megakey.HashFunc[V]
}

// NewControlTimedStateMachine builds a state machine whose fold function
// observes the record's logical time (the reference's
// `control_timed_state_machine`).
func NewControlTimedStateMachine[V any, D any, M any, R any](
	worker int,
	isInitialOwner bool,
	hash megakey.HashFunc[V],
	fold TimedFoldFunc[V, D, R],
	routedOut RoutedFunc[V],
	transferOut TransferFunc[Entry[D], M],
	emit func(t uint64, r R),
) *StateMachine[V, D, M, R] {
	sm := &StateMachine[V, D, M, R]{hash: hash}

	apply := func(t uint64, v V) {
		key := sm.hash(v)
		container := sm.sf.Store.GetState(key).(*FoldContainer[D])
		cur, hasState := container.Get(key)
		newState, keep, outputs := fold(t, key, v, cur, hasState)
		if keep {
			container.Set(key, newState)
		} else {
			container.Delete(key)
		}
		for _, r := range outputs {
			emit(t, r)
		}
	}

	sm.sf = New[V, Entry[D], M](worker, newFoldContainer[D](), isInitialOwner, hash, routedOut, transferOut, apply)
	return sm
}

// NewControlStateMachine builds a state machine whose fold function ignores
// time (the reference's `control_state_machine`).
func NewControlStateMachine[V any, D any, M any, R any](
	worker int,
	isInitialOwner bool,
	hash megakey.HashFunc[V],
	fold FoldFunc[V, D, R],
	routedOut RoutedFunc[V],
	transferOut TransferFunc[Entry[D], M],
	emit func(t uint64, r R),
) *StateMachine[V, D, M, R] {
	return NewControlTimedStateMachine[V, D, M, R](worker, isInitialOwner, hash, func(_ uint64, key megakey.Key, input V, state D, hasState bool) (D, bool, []R) {
		return fold(key, input, state, hasState)
	}, routedOut, transferOut, emit)
}

// SubmitData feeds one input record at time t.
func (sm *StateMachine[V, D, M, R]) SubmitData(v V, t uint64) { sm.sf.SubmitData(v, t) }

// SubmitControl feeds a Control message at time t.
func (sm *StateMachine[V, D, M, R]) SubmitControl(msg control.Message, t uint64) {
	sm.sf.SubmitControl(msg, t)
}

// Advance re-activates the underlying operators.
func (sm *StateMachine[V, D, M, R]) Advance(controlFrontier, dataFrontier, transferFrontier, probe uint64) {
	sm.sf.Advance(controlFrontier, dataFrontier, transferFrontier, probe)
}

// Stateful exposes the underlying Stateful bundle for callers that need
// direct access to Routing/State/Store (e.g. package runtime's Cluster).
func (sm *StateMachine[V, D, M, R]) Stateful() *Stateful[V, Entry[D], M] { return sm.sf }

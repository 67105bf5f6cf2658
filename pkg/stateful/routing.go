// Package stateful implements the two operators that give a dataflow a
// migratable, partitioned keyed state: the routing operator F, which
// addresses records to their current owner and drives installation of new
// bin-to-worker maps, and the state operator S, which guards access to the
// per-worker store while a migration's state transfer is in flight. It also
// provides the Stateful facade and state-machine convenience layer built on
// top of both.
package stateful

import (
	"context"
	"sort"

	"github.com/streamshard/megaflow/internal/logger"
	"github.com/streamshard/megaflow/internal/telemetry"
	"github.com/streamshard/megaflow/pkg/control"
	"github.com/streamshard/megaflow/pkg/frontier"
	"github.com/streamshard/megaflow/pkg/megakey"
	"github.com/streamshard/megaflow/pkg/metrics"
	"github.com/streamshard/megaflow/pkg/statestore"
	"github.com/streamshard/megaflow/pkg/wire"
)

// RoutedFunc forwards a record F has addressed to its owner, at time t.
type RoutedFunc[V any] func(t uint64, r wire.Routed[V])

// TransferFunc forwards a state-transfer protocol message, at time t.
type TransferFunc[W any, M any] func(t uint64, msg wire.Protocol[W, M])

// Routing is operator F: two inputs (data, control), two outputs
// (routed data, state transfer). It owns nothing of the state store besides
// the right to Take a bin from it during installation; S owns Prepare and
// ExtendBin on the receiving side.
type Routing[V any, W any, M any] struct {
	worker int

	store *statestore.Store[W, M]
	hash  megakey.HashFunc[V]

	active  control.Set
	pending []control.Set

	controlStash map[uint64][]control.Message
	dataStash    map[uint64][]V

	controlFrontier uint64

	routedOut   RoutedFunc[V]
	transferOut TransferFunc[W, M]

	// Metrics is optional; a nil value (the default) is zero overhead.
	// Set it directly, or via Stateful.SetMetrics, before driving the
	// operator.
	Metrics metrics.DataflowMetrics
}

// NewRouting allocates operator F for one worker. active is the snapshot in
// effect before any Control message arrives — an all-zero map at time 0 on
// every worker.
func NewRouting[V any, W any, M any](
	worker int,
	store *statestore.Store[W, M],
	hash megakey.HashFunc[V],
	routedOut RoutedFunc[V],
	transferOut TransferFunc[W, M],
) *Routing[V, W, M] {
	return &Routing[V, W, M]{
		worker: worker,
		store:  store,
		hash:   hash,
		active: control.Set{
			Sequence: 0,
			Frontier: frontier.New(uint64(0)),
			Map:      megakey.NewZeroMap(),
		},
		controlStash:    map[uint64][]control.Message{},
		dataStash:       map[uint64][]V{},
		routedOut:       routedOut,
		transferOut:     transferOut,
		controlFrontier: 0,
	}
}

// SubmitControl stashes one Control wire message under its arrival time,
// waiting for the control frontier to pass t before it is compiled.
func (r *Routing[V, W, M]) SubmitControl(msg control.Message, t uint64) {
	r.controlStash[t] = append(r.controlStash[t], msg)
}

// SubmitData routes or stashes one data record at time t, depending on
// whether the control frontier has already passed t.
func (r *Routing[V, W, M]) SubmitData(v V, t uint64) {
	if r.controlFrontier > t {
		r.route(t, v)
		return
	}
	r.dataStash[t] = append(r.dataStash[t], v)
}

// Advance re-activates F: it compiles any control stash whose time the new
// control frontier has passed, re-attempts every stashed data record against
// the (possibly now-advanced) control frontier, and then attempts
// installation against probe, the downstream-S-derived frontier.
// Operators in this package never block; a caller
// (package runtime's Cluster) re-invokes Advance whenever an input or
// frontier changes.
func (r *Routing[V, W, M]) Advance(controlFrontier, probe uint64) {
	r.controlFrontier = controlFrontier
	r.drainControlStash(controlFrontier)
	r.drainDataStash(controlFrontier)
	r.tryInstall(probe)

	metrics.SetControlStashDepth(r.Metrics, r.worker, len(r.controlStash))
	metrics.SetDataStashDepth(r.Metrics, r.worker, len(r.dataStash))
	metrics.SetNotificatorDepth(r.Metrics, r.worker, len(r.store.Notificator().Pending()))
}

func (r *Routing[V, W, M]) drainControlStash(controlFrontier uint64) {
	times := make([]uint64, 0, len(r.controlStash))
	for t := range r.controlStash {
		if controlFrontier > t {
			times = append(times, t)
		}
	}
	sort.Slice(times, func(i, j int) bool { return times[i] < times[j] })

	for _, t := range times {
		msgs := r.controlStash[t]
		delete(r.controlStash, t)

		b := control.NewBuilder()
		for _, m := range msgs {
			b.Apply(m)
		}
		prev := r.active
		if len(r.pending) > 0 {
			prev = r.pending[len(r.pending)-1]
		}
		cs := b.Build(prev, t)

		idx := sort.Search(len(r.pending), func(i int) bool { return r.pending[i].Sequence >= cs.Sequence })
		r.pending = append(r.pending, control.Set{})
		copy(r.pending[idx+1:], r.pending[idx:])
		r.pending[idx] = cs
	}
	if len(times) > 0 {
		control.AssertDominationInvariants(r.active, r.pending)
	}
}

func (r *Routing[V, W, M]) drainDataStash(controlFrontier uint64) {
	times := make([]uint64, 0, len(r.dataStash))
	for t := range r.dataStash {
		if controlFrontier > t {
			times = append(times, t)
		}
	}
	sort.Slice(times, func(i, j int) bool { return times[i] < times[j] })

	for _, t := range times {
		records := r.dataStash[t]
		delete(r.dataStash, t)
		for _, v := range records {
			r.route(t, v)
		}
	}
}

// route picks the latest compiled snapshot whose install time is at or
// before t, falling back to active, and emits the routed record.
func (r *Routing[V, W, M]) route(t uint64, v V) {
	m := r.mapFor(t)
	key := r.hash(v)
	worker := m[megakey.BinOf(key)]
	r.routedOut(t, wire.Routed[V]{Worker: worker, Key: key, Value: v})
}

func (r *Routing[V, W, M]) mapFor(t uint64) megakey.Map {
	for i := len(r.pending) - 1; i >= 0; i-- {
		if ft, ok := r.pending[i].Frontier.Min(); ok && ft <= t {
			return r.pending[i].Map
		}
	}
	return r.active.Map
}

// tryInstall installs every pending snapshot at the head of the queue whose
// install time the probe has already reached — i.e. cs.Frontier.LessEqual(
// probe) — repeating while the new head also qualifies. A snapshot becomes
// the active one in a single atomic step from this worker's point of view;
// the state-transfer messages required to move ownership are emitted in the
// same step.
func (r *Routing[V, W, M]) tryInstall(probe uint64) {
	for len(r.pending) > 0 && r.pending[0].Frontier.LessEqual(probe) {
		next := r.pending[0]
		r.pending = r.pending[1:]

		instTime, ok := next.Frontier.Min()
		if !ok {
			instTime = probe
		}

		ctx, span := telemetry.StartInstallationSpan(context.Background(), r.worker, next.Sequence, "move")

		moveCount := 0
		for b, newOwner := range next.Map {
			bin := megakey.Bin(b)
			oldOwner := r.active.Map[b]
			if oldOwner != r.worker || oldOwner == newOwner {
				continue
			}
			moveCount++
			metrics.RecordBinTransfer(r.Metrics, oldOwner, newOwner, int(bin))
			container := r.store.Take(bin)
			r.transferOut(instTime, wire.Prepare[W, M](newOwner, bin))
			if container != nil {
				for _, chunk := range container.Elements() {
					r.transferOut(instTime, wire.State[W, M](newOwner, bin, chunk))
				}
			}
		}

		for _, entry := range r.store.Notificator().PendingMut() {
			kept := entry.Data[:0]
			for _, p := range entry.Data {
				oldOwner := r.active.Map[megakey.BinOf(p.Key)]
				newOwner := next.Map[megakey.BinOf(p.Key)]
				if oldOwner != newOwner {
					r.transferOut(instTime, wire.Pending[W, M](newOwner, entry.Cap.Time(), p.Key, p.Meta))
				} else {
					kept = append(kept, p)
				}
			}
			entry.Data = kept
		}
		r.store.Notificator().Compact()

		r.active = next
		metrics.RecordInstallation(r.Metrics, r.worker, next.Sequence)
		telemetry.AddEvent(ctx, "bins moved", telemetry.MoveCount(moveCount))
		span.End()
		logger.Info("installed control set",
			logger.Worker(r.worker),
			logger.Sequence(next.Sequence),
			logger.MoveCount(moveCount),
		)
	}
}

// Active returns the currently installed snapshot, for inspection/metrics.
func (r *Routing[V, W, M]) Active() control.Set { return r.active }

// PendingCount returns the depth of the compiled-but-not-installed queue.
func (r *Routing[V, W, M]) PendingCount() int { return len(r.pending) }

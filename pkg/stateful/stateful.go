package stateful

import (
	"github.com/streamshard/megaflow/pkg/control"
	"github.com/streamshard/megaflow/pkg/megakey"
	"github.com/streamshard/megaflow/pkg/metrics"
	"github.com/streamshard/megaflow/pkg/statestore"
)

// Stateful bundles operator F, operator S, and the store they share into the
// single-worker unit a caller drives. The state
// store itself — Store[W, M] — already exposes the handle surface a
// downstream consumer needs (GetState, WithStateFrontier, Scan, Notificator);
// Stateful does not duplicate that surface, it just owns construction and
// the two operators' Advance calls.
type Stateful[V any, W any, M any] struct {
	Store   *statestore.Store[W, M]
	Routing *Routing[V, W, M]
	State   *State[V, W, M]
}

// New constructs a Stateful for one worker. routedOut and transferOut carry
// F's two outputs to wherever the host cluster's exchange fabric sends them
// (possibly back to this same worker's State.SubmitData/SubmitTransfer, for
// a single-worker cluster); out receives S's admitted records.
func New[V any, W any, M any](
	worker int,
	newContainer statestore.NewContainerFunc[W],
	isInitialOwner bool,
	hash megakey.HashFunc[V],
	routedOut RoutedFunc[V],
	transferOut TransferFunc[W, M],
	out OutFunc[V],
) *Stateful[V, W, M] {
	store := statestore.New[W, M](newContainer, isInitialOwner)
	return &Stateful[V, W, M]{
		Store:   store,
		Routing: NewRouting[V, W, M](worker, store, hash, routedOut, transferOut),
		State:   NewState[V, W, M](store, out),
	}
}

// SetMetrics installs m on the bundle's Routing operator, where installation
// and bin-transfer events are recorded. A nil m (the default) is zero
// overhead.
func (sf *Stateful[V, W, M]) SetMetrics(m metrics.DataflowMetrics) {
	sf.Routing.Metrics = m
}

// SubmitData feeds a record into F.
func (sf *Stateful[V, W, M]) SubmitData(v V, t uint64) {
	sf.Routing.SubmitData(v, t)
}

// SubmitControl feeds a Control message into F.
func (sf *Stateful[V, W, M]) SubmitControl(msg control.Message, t uint64) {
	sf.Routing.SubmitControl(msg, t)
}

// Advance re-activates both operators for one round: F against
// (controlFrontier, probe), then S against (dataFrontier, transferFrontier).
// probe should be the cluster-wide minimum of every worker's
// State.OutstandingFrontier.
func (sf *Stateful[V, W, M]) Advance(controlFrontier, dataFrontier, transferFrontier, probe uint64) {
	sf.Routing.Advance(controlFrontier, probe)
	sf.State.Advance(dataFrontier, transferFrontier)
}

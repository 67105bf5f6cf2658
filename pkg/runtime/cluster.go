// Package runtime stands in for the host dataflow runtime: a fixed set of
// workers, each owning one Stateful bundle, wired together by an in-memory
// exchange fabric instead of a real network. It exposes an explicit,
// synchronous driving API — SubmitControl/SubmitData/Tick — so that
// migration scenarios can be exercised deterministically in tests without
// a scheduler or goroutines.
package runtime

import (
	"context"
	"math"
	"strconv"
	"time"

	"github.com/streamshard/megaflow/internal/logger"
	"github.com/streamshard/megaflow/internal/telemetry"
	"github.com/streamshard/megaflow/pkg/control"
	"github.com/streamshard/megaflow/pkg/megakey"
	"github.com/streamshard/megaflow/pkg/metrics"
	"github.com/streamshard/megaflow/pkg/stateful"
	"github.com/streamshard/megaflow/pkg/statestore"
	"github.com/streamshard/megaflow/pkg/wire"
)

type timedRouted[V any] struct {
	t uint64
	r wire.Routed[V]
}

type timedTransfer[W any, M any] struct {
	t   uint64
	msg wire.Protocol[W, M]
}

// Cluster owns every worker's Stateful bundle and the queues that carry F's
// two outputs to their addressed worker's S inputs. Worker 0 is the initial
// owner of every bin.
type Cluster[V any, W any, M any] struct {
	workers []*stateful.Stateful[V, W, M]

	routedInbox   [][]timedRouted[V]
	transferInbox [][]timedTransfer[W, M]

	metrics metrics.DataflowMetrics
}

// New allocates a Cluster of n workers. out receives every record a
// worker's S admits, tagged with the worker that admitted it.
func New[V any, W any, M any](
	n int,
	newContainer statestore.NewContainerFunc[W],
	hash megakey.HashFunc[V],
	out func(worker int, t uint64, v V),
) *Cluster[V, W, M] {
	c := &Cluster[V, W, M]{
		workers:       make([]*stateful.Stateful[V, W, M], n),
		routedInbox:   make([][]timedRouted[V], n),
		transferInbox: make([][]timedTransfer[W, M], n),
	}
	for i := 0; i < n; i++ {
		worker := i
		routedOut := func(t uint64, r wire.Routed[V]) {
			c.routedInbox[r.Worker] = append(c.routedInbox[r.Worker], timedRouted[V]{t: t, r: r})
		}
		transferOut := func(t uint64, msg wire.Protocol[W, M]) {
			c.transferInbox[msg.Worker] = append(c.transferInbox[msg.Worker], timedTransfer[W, M]{t: t, msg: msg})
		}
		workerOut := func(t uint64, v V) { out(worker, t, v) }
		c.workers[worker] = stateful.New[V, W, M](worker, newContainer, worker == 0, hash, routedOut, transferOut, workerOut)
	}
	return c
}

// Worker returns worker i's Stateful bundle, for tests that need to inspect
// or drive it directly (e.g. Routing.Active(), Store.Scan).
func (c *Cluster[V, W, M]) Worker(i int) *stateful.Stateful[V, W, M] { return c.workers[i] }

// SetMetrics installs m on the cluster and every worker's Stateful bundle. A
// nil m (the default) is zero overhead.
func (c *Cluster[V, W, M]) SetMetrics(m metrics.DataflowMetrics) {
	c.metrics = m
	for _, w := range c.workers {
		w.SetMetrics(m)
	}
}

// SubmitControl broadcasts a Control message to every worker's F: all
// workers must compile the same sequence of ControlSets to agree on
// ownership.
func (c *Cluster[V, W, M]) SubmitControl(msg control.Message, t uint64) {
	for _, w := range c.workers {
		w.SubmitControl(msg, t)
	}
}

// SubmitData feeds a record into worker's F.
func (c *Cluster[V, W, M]) SubmitData(worker int, v V, t uint64) {
	c.workers[worker].SubmitData(v, t)
}

// Probe returns the cluster-wide minimum of every worker's
// State.OutstandingFrontier — the signal F's installation step waits on.
func (c *Cluster[V, W, M]) Probe() uint64 {
	min := uint64(math.MaxUint64)
	for _, w := range c.workers {
		if f := w.State.OutstandingFrontier(); f < min {
			min = f
		}
	}
	return min
}

// Tick drives one round of the cluster at the given control and data
// frontiers: every worker's F is re-activated against the current probe and
// drains what it can, F's outputs are delivered to their addressed workers'
// S inputs, and every worker's S is re-activated in turn. Callers advance
// controlFrontier/dataFrontier across repeated Tick calls the way a real
// host runtime advances input frontiers; nothing here blocks waiting for
// more input.
func (c *Cluster[V, W, M]) Tick(controlFrontier, dataFrontier uint64) {
	start := time.Now()
	defer func() { metrics.ObserveTickDuration(c.metrics, time.Since(start)) }()

	_, span := telemetry.StartTickSpan(context.Background(),
		strconv.FormatUint(controlFrontier, 10), strconv.FormatUint(dataFrontier, 10))
	defer span.End()

	probe := c.Probe()
	logger.Debug("cluster tick",
		logger.ControlFrontier(strconv.FormatUint(controlFrontier, 10)),
		logger.DataFrontier(strconv.FormatUint(dataFrontier, 10)),
		logger.Probe(strconv.FormatUint(probe, 10)),
	)
	for _, w := range c.workers {
		w.Routing.Advance(controlFrontier, probe)
	}

	// The transfer input's progress tracks the control frontier: F only
	// emits state-transfer messages once a ControlSet has installed, which
	// itself only happens once the control frontier has passed its time.
	transferFrontier := controlFrontier

	for i, w := range c.workers {
		for _, m := range c.routedInbox[i] {
			w.State.SubmitData(m.r.Value, m.t, dataFrontier, transferFrontier)
		}
		c.routedInbox[i] = nil

		for _, m := range c.transferInbox[i] {
			w.State.SubmitTransfer(m.msg, m.t)
		}
		c.transferInbox[i] = nil
	}

	for _, w := range c.workers {
		w.State.Advance(dataFrontier, transferFrontier)
	}
}

// Package statestore implements the per-worker state store: an array of
// optional bin containers plus the single notificator shared by the routing
// operator F and the state operator S on that worker.
//
// The store is owned by exactly one worker; there is never cross-worker
// access to it; F and S share it on the same worker only via the
// interior-mutability the cooperative, single-threaded scheduling model
// allows.
package statestore

import (
	"fmt"

	"github.com/streamshard/megaflow/pkg/megakey"
	"github.com/streamshard/megaflow/pkg/notify"
)

// Container is the per-bin state container (the reference's generic `D:
// Clone+IntoIterator<Item=W>+Extend<W>+Default`). Elements yields the
// chunks shipped one-per-State-message when the bin migrates away; Extend
// appends a chunk received from State-message during migration ingest.
type Container[W any] interface {
	Extend(chunk W)
	Elements() []W
}

// Payload is the notification payload carried through migration: the key a
// notification was requested for, plus whatever metadata the caller
// attached to it.
type Payload[M any] struct {
	Key  megakey.Key
	Meta M
}

// NewContainerFunc allocates a fresh, empty Container for a bin.
type NewContainerFunc[W any] func() Container[W]

// Store is the per-worker state store: bins[i] is non-nil iff this worker
// currently owns bin i (exactly one worker owns each bin index at a time),
// plus the shared notificator used by both operators.
type Store[W any, M any] struct {
	bins         []Container[W]
	notificator  *notify.Notificator[uint64, Payload[M]]
	newContainer NewContainerFunc[W]
}

// New allocates a Store. isInitialOwner must be true on exactly one worker
// (worker 0): that worker starts with every bin non-empty, since the
// initial map is all-zero and every bin belongs to worker 0 until the
// first reconfiguration installs.
func New[W any, M any](newContainer NewContainerFunc[W], isInitialOwner bool) *Store[W, M] {
	s := &Store[W, M]{
		bins:         make([]Container[W], megakey.NumBins),
		notificator:  notify.New[uint64, Payload[M]](),
		newContainer: newContainer,
	}
	if isInitialOwner {
		for i := range s.bins {
			s.bins[i] = newContainer()
		}
	}
	return s
}

// Notificator returns the store's shared notificator.
func (s *Store[W, M]) Notificator() *notify.Notificator[uint64, Payload[M]] {
	return s.notificator
}

// Owns reports whether this worker currently owns bin.
func (s *Store[W, M]) Owns(bin megakey.Bin) bool {
	return s.bins[bin] != nil
}

// Take removes and returns bin's container, leaving the slot empty. Used by
// the routing operator when shedding a bin it no longer owns.
func (s *Store[W, M]) Take(bin megakey.Bin) Container[W] {
	c := s.bins[bin]
	s.bins[bin] = nil
	return c
}

// Prepare allocates a fresh, empty container for bin. Panics if the bin is
// already owned — a duplicate migration.
func (s *Store[W, M]) Prepare(bin megakey.Bin) {
	if s.bins[bin] != nil {
		panic(fmt.Sprintf("statestore: Prepare on bin %d that is already owned (duplicate migration)", bin))
	}
	s.bins[bin] = s.newContainer()
}

// ExtendBin appends a received chunk to bin's container. Panics if the bin
// has no container — a Prepare was skipped or the wire ordering was
// violated.
func (s *Store[W, M]) ExtendBin(bin megakey.Bin, chunk W) {
	c := s.bins[bin]
	if c == nil {
		panic(fmt.Sprintf("statestore: State chunk for bin %d arrived before Prepare", bin))
	}
	c.Extend(chunk)
}

// GetState returns the container owning key's bin. Panics if the bin is not
// owned locally — a downstream operator touched a record routing never
// addressed to this worker.
func (s *Store[W, M]) GetState(key megakey.Key) Container[W] {
	c := s.bins[megakey.BinOf(key)]
	if c == nil {
		panic(fmt.Sprintf("statestore: get_state(%d) on bin %d which is not owned by this worker", key, megakey.BinOf(key)))
	}
	return c
}

// WithStateFrontier hands f both key's bin state and the shared
// notificator, mirroring the reference `with_state_frontier`.
func WithStateFrontier[W any, M any, R any](s *Store[W, M], key megakey.Key, f func(Container[W], *notify.Notificator[uint64, Payload[M]]) R) R {
	return f(s.GetState(key), s.notificator)
}

// Scan iterates every owned bin.
func (s *Store[W, M]) Scan(f func(bin megakey.Bin, c Container[W])) {
	for i, c := range s.bins {
		if c != nil {
			f(megakey.Bin(i), c)
		}
	}
}

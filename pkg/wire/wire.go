// Package wire defines the messages that flow on the two output channels of
// the routing operator F: routed data addressed to its owning worker, and
// the state-transfer protocol that ships bin contents and pending
// notifications to a new owner during installation.
package wire

import "github.com/streamshard/megaflow/pkg/megakey"

// Routed is a data record F has addressed to its current owner, carried on
// the "routed data" output: (target_worker, Key, V).
type Routed[V any] struct {
	Worker int
	Key    megakey.Key
	Value  V
}

// ProtocolKind discriminates the state-transfer message variants.
type ProtocolKind int

const (
	// KindPrepare instructs the receiver to allocate an empty container
	// for a bin before any State chunks for it arrive.
	KindPrepare ProtocolKind = iota
	// KindState carries one chunk to append to a bin's container.
	KindState
	// KindPending re-registers a notification at a time for a key,
	// replayed at the new owner after migration.
	KindPending
)

// Protocol is one state-transfer wire message ("State-protocol
// message"). Only the fields relevant to Kind are populated:
//   - KindPrepare: Bin
//   - KindState:   Bin, Chunk
//   - KindPending: Time, Key, Meta
type Protocol[W any, M any] struct {
	Worker int
	Kind   ProtocolKind
	Bin    megakey.Bin
	Chunk  W
	Time   uint64
	Key    megakey.Key
	Meta   M
}

// Prepare builds a KindPrepare message addressed to worker for bin.
func Prepare[W any, M any](worker int, bin megakey.Bin) Protocol[W, M] {
	return Protocol[W, M]{Worker: worker, Kind: KindPrepare, Bin: bin}
}

// State builds a KindState message carrying one chunk of bin's contents.
func State[W any, M any](worker int, bin megakey.Bin, chunk W) Protocol[W, M] {
	return Protocol[W, M]{Worker: worker, Kind: KindState, Bin: bin, Chunk: chunk}
}

// Pending builds a KindPending message re-registering a notification.
func Pending[W any, M any](worker int, at uint64, key megakey.Key, meta M) Protocol[W, M] {
	return Protocol[W, M]{Worker: worker, Kind: KindPending, Time: at, Key: key, Meta: meta}
}

// Package megakey defines the key and bin addressing scheme used to shard
// keyed records across workers.
package megakey

import "github.com/cespare/xxhash/v2"

// BinBits is the number of high bits of a Key that select its Bin. The
// reference configuration shards the key space into 256 bins.
const BinBits = 8

// NumBins is the total number of bins in the key space, 1<<BinBits.
const NumBins = 1 << BinBits

// wordBits is the width of Key in bits.
const wordBits = 64

// Key is a 64-bit hash of a record. Keys are not globally unique; equal keys
// always route to the same bin and, once a Map is installed, the same worker.
type Key uint64

// Bin is a shard identifier in [0, NumBins).
type Bin int

// BinOf returns the bin a key maps to: its top BinBits bits.
func BinOf(k Key) Bin {
	return Bin(k >> (wordBits - BinBits))
}

// HashFunc computes a Key for a value of type V. Equal values, or values the
// caller considers equivalent for routing purposes, must hash identically.
type HashFunc[V any] func(v V) Key

// Hash64 derives a Key from an arbitrary byte encoding of a value using
// xxhash, the default hash for callers that don't supply their own
// HashFunc. It is not used by the core operators directly; it exists as a
// convenience for building a HashFunc from a type's byte representation.
func Hash64(b []byte) Key {
	return Key(xxhash.Sum64(b))
}

// Map is a fixed-length bin-to-worker assignment. len(Map) must equal
// NumBins; Map[b] names the worker responsible for bin b.
type Map []int

// NewZeroMap returns a Map of length NumBins with every bin assigned to
// worker 0, the initial assignment invariant: every bin belongs to
// worker 0 until the first reconfiguration installs.
func NewZeroMap() Map {
	return make(Map, NumBins)
}

// Clone returns an independent copy of the map.
func (m Map) Clone() Map {
	out := make(Map, len(m))
	copy(out, m)
	return out
}

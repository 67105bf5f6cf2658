// Package control compiles a stream of Control messages from an external
// policy engine into a totally ordered sequence of ControlSet snapshots: a
// bin-to-worker Map tagged with the logical time at which it becomes safe
// to install.
package control

import (
	"fmt"

	"github.com/streamshard/megaflow/pkg/frontier"
	"github.com/streamshard/megaflow/pkg/megakey"
)

// InstKind names the kind of instruction a Control message carries.
type InstKind int

const (
	// InstNone is padding: a Control message contributing to a count
	// window but changing nothing.
	InstNone InstKind = iota
	// InstMap replaces the bin-to-worker map wholesale.
	InstMap
	// InstMove reassigns a single bin to a worker.
	InstMove
)

// Inst is one control instruction. Only the fields relevant to Kind are
// meaningful: Map for InstMap, Bin/Worker for InstMove.
type Inst struct {
	Kind   InstKind
	Map    megakey.Map
	Bin    megakey.Bin
	Worker int
}

// Message is a single wire-level control message. A logical reconfiguration
// may be sharded across Count messages sharing the same Sequence.
type Message struct {
	Sequence uint64
	Count    int
	Inst     Inst
}

// Set is a compiled snapshot: the bin-to-worker Map with every instruction
// at Sequence already applied on top of the previous snapshot, tagged with
// the Frontier at which it becomes eligible for installation.
type Set struct {
	Sequence uint64
	Frontier frontier.Antichain[uint64]
	Map      megakey.Map
}

// Builder accumulates Control messages that share one Sequence and compiles
// them into a Set. A Builder is single-use: call Build once after Apply has
// consumed exactly Count messages.
type Builder struct {
	sequence     *uint64
	count        *int
	instructions []Inst
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Apply accumulates one Control message. The first call records the
// message's Sequence and Count; every subsequent call must carry the same
// Sequence. Apply panics (a protocol violation) if the sequence is
// inconsistent or if Count would underflow.
func (b *Builder) Apply(msg Message) {
	if b.count == nil {
		count := msg.Count
		b.count = &count
	}
	if *b.count <= 0 {
		panic(fmt.Sprintf("control: received more Control messages than the declared count (sequence %d)", msg.Sequence))
	}
	*b.count--

	if b.sequence == nil {
		seq := msg.Sequence
		b.sequence = &seq
	} else if *b.sequence != msg.Sequence {
		panic(fmt.Sprintf("control: inconsistent sequence number: builder has %d, received %d", *b.sequence, msg.Sequence))
	}

	if msg.Inst.Kind != InstNone {
		b.instructions = append(b.instructions, msg.Inst)
	}
}

// Build compiles the accumulated instructions into a new Set, starting from
// prev's map and applying each instruction in the order Apply received it:
// InstMap replaces the map wholesale, InstMove sets a single bin. Build
// panics if Apply has not yet consumed every declared message (count != 0),
// mirroring the reference `assert_eq!(0, count)`.
func (b *Builder) Build(prev Set, at uint64) Set {
	if b.count == nil || *b.count != 0 {
		remaining := 0
		if b.count != nil {
			remaining = *b.count
		}
		panic(fmt.Sprintf("control: Build called with %d outstanding Control messages still expected", remaining))
	}

	m := prev.Map.Clone()
	for _, inst := range b.instructions {
		switch inst.Kind {
		case InstMap:
			m = inst.Map.Clone()
		case InstMove:
			m[inst.Bin] = inst.Worker
		case InstNone:
		}
	}

	seq := uint64(0)
	if b.sequence != nil {
		seq = *b.sequence
	}

	return Set{
		Sequence: seq,
		Frontier: frontier.New(at),
		Map:      m,
	}
}

// AssertDominationInvariants checks the two compiler invariants over the
// pending queue (sorted by Sequence) and the currently active snapshot:
// any two consecutive pending snapshots must have the earlier dominate the
// later, and active must dominate the first pending entry. Violations are
// programmer errors and panic.
func AssertDominationInvariants(active Set, pending []Set) {
	if len(pending) > 0 && !active.Frontier.Dominates(pending[0].Frontier) {
		panic(fmt.Sprintf("control: active snapshot (sequence %d) does not dominate pending head (sequence %d)", active.Sequence, pending[0].Sequence))
	}
	for i := 0; i+1 < len(pending); i++ {
		if !pending[i].Frontier.Dominates(pending[i+1].Frontier) {
			panic(fmt.Sprintf("control: pending snapshot (sequence %d) does not dominate the next (sequence %d)", pending[i].Sequence, pending[i+1].Sequence))
		}
	}
}

package stateful

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/streamshard/megaflow/pkg/megakey"
	"github.com/streamshard/megaflow/pkg/wire"
)

type countEvent struct {
	Bin   int
	Delta int
}

func TestStateMachineFoldsPerKeyState(t *testing.T) {
	hash := func(e countEvent) megakey.Key { return binKey(e.Bin) }

	var sm *StateMachine[countEvent, int, string, int]
	routedOut := func(t uint64, r wire.Routed[countEvent]) {
		sm.Stateful().State.SubmitData(r.Value, t, 1000, 1000)
	}
	transferOut := func(t uint64, msg wire.Protocol[Entry[int], string]) {}

	var emitted []int
	fold := func(key megakey.Key, input countEvent, state int, hasState bool) (int, bool, []int) {
		next := state + input.Delta
		return next, true, []int{next}
	}

	sm = NewControlStateMachine[countEvent, int, string, int](0, true, hash, fold, routedOut, transferOut, func(t uint64, r int) {
		emitted = append(emitted, r)
	})

	sm.SubmitData(countEvent{Bin: 5, Delta: 3}, 1)
	sm.Advance(1000, 1000, 1000, 1000)
	sm.SubmitData(countEvent{Bin: 5, Delta: 4}, 2)
	sm.Advance(1000, 1000, 1000, 1000)

	require.Equal(t, []int{3, 7}, emitted)
}

func TestStateMachineDiscardClearsKeyedState(t *testing.T) {
	hash := func(e countEvent) megakey.Key { return binKey(e.Bin) }

	var sm *StateMachine[countEvent, int, string, int]
	routedOut := func(t uint64, r wire.Routed[countEvent]) {
		sm.Stateful().State.SubmitData(r.Value, t, 1000, 1000)
	}
	transferOut := func(t uint64, msg wire.Protocol[Entry[int], string]) {}

	var hadState []bool
	fold := func(key megakey.Key, input countEvent, state int, hasState bool) (int, bool, []int) {
		hadState = append(hadState, hasState)
		return 0, input.Delta != 0, nil
	}

	sm = NewControlStateMachine[countEvent, int, string, int](0, true, hash, fold, routedOut, transferOut, func(t uint64, r int) {})

	sm.SubmitData(countEvent{Bin: 9, Delta: 1}, 1) // keep
	sm.Advance(1000, 1000, 1000, 1000)
	sm.SubmitData(countEvent{Bin: 9, Delta: 0}, 2) // discard
	sm.Advance(1000, 1000, 1000, 1000)
	sm.SubmitData(countEvent{Bin: 9, Delta: 1}, 3) // state was cleared
	sm.Advance(1000, 1000, 1000, 1000)

	require.Equal(t, []bool{false, true, false}, hadState)
}

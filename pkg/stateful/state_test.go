package stateful

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamshard/megaflow/pkg/megakey"
	"github.com/streamshard/megaflow/pkg/statestore"
	"github.com/streamshard/megaflow/pkg/wire"
)

func TestFastPathForwardsImmediatelyWhenBothFrontiersPassed(t *testing.T) {
	store := statestore.New[int, string](statestore.NewSliceContainer[int](), true)
	var out []int
	s := NewState[int, int, string](store, func(t uint64, v int) { out = append(out, v) })

	s.SubmitData(99, 5, 10, 10) // both frontiers already past 5
	require.Len(t, out, 1)
	assert.Equal(t, 99, out[0])
}

func TestSlowPathStashesUntilTransferArrivesAndFrontierPasses(t *testing.T) {
	store := statestore.New[int, string](statestore.NewSliceContainer[int](), false)
	var out []int
	s := NewState[int, int, string](store, func(t uint64, v int) { out = append(out, v) })

	s.SubmitTransfer(wire.Prepare[int, string](0, 5), 5)
	s.SubmitData(99, 5, 3, 3) // both frontiers still <=5: stash
	assert.Empty(t, out)
	assert.False(t, store.Owns(5))

	s.Advance(6, 6) // both frontiers now past 5
	require.Len(t, out, 1)
	assert.Equal(t, 99, out[0])
	assert.True(t, store.Owns(5))
}

func TestPendingTransferMessageRegistersOnSharedNotificator(t *testing.T) {
	store := statestore.New[int, string](statestore.NewSliceContainer[int](), false)
	s := NewState[int, int, string](store, func(t uint64, v int) {})

	s.SubmitTransfer(wire.Pending[int, string](0, 20, megakey.Key(7), "meta"), 5)
	s.Advance(6, 6)

	found := false
	for _, e := range store.Notificator().Pending() {
		if e.Cap.Time() == 20 {
			found = true
			require.Len(t, e.Data, 1)
			assert.Equal(t, megakey.Key(7), e.Data[0].Key)
			assert.Equal(t, "meta", e.Data[0].Meta)
		}
	}
	assert.True(t, found)
}

func TestOutstandingFrontierReflectsStash(t *testing.T) {
	store := statestore.New[int, string](statestore.NewSliceContainer[int](), true)
	s := NewState[int, int, string](store, func(t uint64, v int) {})
	assert.Equal(t, uint64(math.MaxUint64), s.OutstandingFrontier())

	s.SubmitData(1, 5, 10, 10) // forwarded directly, not stashed
	assert.Equal(t, uint64(math.MaxUint64), s.OutstandingFrontier())

	s.SubmitData(2, 7, 3, 3) // stashed
	assert.Equal(t, uint64(7), s.OutstandingFrontier())
}

package stateful

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamshard/megaflow/pkg/control"
	"github.com/streamshard/megaflow/pkg/megakey"
	"github.com/streamshard/megaflow/pkg/notify"
	"github.com/streamshard/megaflow/pkg/statestore"
	"github.com/streamshard/megaflow/pkg/wire"
)

// binKey returns a Key whose top BinBits bits equal bin, so tests can pick a
// target bin directly instead of relying on a real hash.
func binKey(bin int) megakey.Key {
	return megakey.Key(bin) << (64 - megakey.BinBits)
}

func identityBinHash(v int) megakey.Key { return binKey(v) }

func TestRouteUsesActiveMapBeforeAnyControl(t *testing.T) {
	store := statestore.New[int, string](statestore.NewSliceContainer[int](), true)
	var routed []wire.Routed[int]
	r := NewRouting[int, int, string](0, store, identityBinHash,
		func(t uint64, rec wire.Routed[int]) { routed = append(routed, rec) },
		func(t uint64, msg wire.Protocol[int, string]) {})

	r.SubmitData(5, 0)
	r.Advance(1, 1000)

	require.Len(t, routed, 1)
	assert.Equal(t, 0, routed[0].Worker)
}

func TestControlMoveInstallsAndEmitsPrepareAndState(t *testing.T) {
	store := statestore.New[int, string](statestore.NewSliceContainer[int](), true)
	key := binKey(5)
	store.GetState(key).Extend(42)
	store.GetState(key).Extend(43)

	var transferred []wire.Protocol[int, string]
	r := NewRouting[int, int, string](0, store, identityBinHash,
		func(t uint64, rec wire.Routed[int]) {},
		func(t uint64, msg wire.Protocol[int, string]) { transferred = append(transferred, msg) })

	r.SubmitControl(control.Message{Sequence: 1, Count: 1, Inst: control.Inst{Kind: control.InstMove, Bin: 5, Worker: 1}}, 0)
	r.Advance(1, 1000)

	require.Len(t, transferred, 3)
	assert.Equal(t, wire.KindPrepare, transferred[0].Kind)
	assert.Equal(t, 1, transferred[0].Worker)
	assert.Equal(t, megakey.Bin(5), transferred[0].Bin)
	assert.Equal(t, wire.KindState, transferred[1].Kind)
	assert.Equal(t, 42, transferred[1].Chunk)
	assert.Equal(t, wire.KindState, transferred[2].Kind)
	assert.Equal(t, 43, transferred[2].Chunk)

	assert.False(t, store.Owns(5))
	assert.Equal(t, 1, r.Active().Map[5])
}

func TestInstallWaitsForProbe(t *testing.T) {
	store := statestore.New[int, string](statestore.NewSliceContainer[int](), true)
	r := NewRouting[int, int, string](0, store, identityBinHash,
		func(t uint64, rec wire.Routed[int]) {},
		func(t uint64, msg wire.Protocol[int, string]) {})

	r.SubmitControl(control.Message{Sequence: 1, Count: 1, Inst: control.Inst{Kind: control.InstMove, Bin: 5, Worker: 1}}, 10)
	r.Advance(11, 5) // probe hasn't reached install time 10 yet

	assert.Equal(t, 1, r.PendingCount())
	assert.True(t, store.Owns(5))

	r.Advance(11, 10) // probe catches up
	assert.Equal(t, 0, r.PendingCount())
	assert.False(t, store.Owns(5))
}

func TestMigrationReplaysPendingNotificationToNewOwner(t *testing.T) {
	store := statestore.New[int, string](statestore.NewSliceContainer[int](), true)
	key := binKey(5)
	store.Notificator().NotifyAt(notify.NewCapability(uint64(5)), statestore.Payload[string]{Key: key, Meta: "m"})

	var transferred []wire.Protocol[int, string]
	r := NewRouting[int, int, string](0, store, identityBinHash,
		func(t uint64, rec wire.Routed[int]) {},
		func(t uint64, msg wire.Protocol[int, string]) { transferred = append(transferred, msg) })

	r.SubmitControl(control.Message{Sequence: 1, Count: 1, Inst: control.Inst{Kind: control.InstMove, Bin: 5, Worker: 1}}, 3)
	r.Advance(4, 1000)

	var pendingMsgs []wire.Protocol[int, string]
	for _, m := range transferred {
		if m.Kind == wire.KindPending {
			pendingMsgs = append(pendingMsgs, m)
		}
	}
	require.Len(t, pendingMsgs, 1)
	assert.Equal(t, 1, pendingMsgs[0].Worker)
	assert.Equal(t, uint64(5), pendingMsgs[0].Time)
	assert.Equal(t, key, pendingMsgs[0].Key)
	assert.Equal(t, "m", pendingMsgs[0].Meta)

	// The notification no longer belongs to this worker once its bin moved.
	for _, e := range store.Notificator().Pending() {
		for _, p := range e.Data {
			assert.NotEqual(t, key, p.Key)
		}
	}
}

func TestDataStashedWhileControlFrontierBehindRoutesOnceItPasses(t *testing.T) {
	store := statestore.New[int, string](statestore.NewSliceContainer[int](), true)
	var routed []wire.Routed[int]
	r := NewRouting[int, int, string](0, store, identityBinHash,
		func(t uint64, rec wire.Routed[int]) { routed = append(routed, rec) },
		func(t uint64, msg wire.Protocol[int, string]) {})

	r.SubmitData(7, 5)
	r.Advance(3, 1000) // control frontier still behind 5
	assert.Empty(t, routed)

	r.Advance(6, 1000)
	require.Len(t, routed, 1)
}

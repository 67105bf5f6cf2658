package runtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamshard/megaflow/pkg/control"
	"github.com/streamshard/megaflow/pkg/megakey"
	"github.com/streamshard/megaflow/pkg/statestore"
)

func binKey(bin int) megakey.Key {
	return megakey.Key(bin) << (64 - megakey.BinBits)
}

type admitted struct {
	worker int
	t      uint64
	v      int
}

func TestClusterRoutesToInitialOwnerBeforeAnyMigration(t *testing.T) {
	var out []admitted
	c := New[int, int, string](2, statestore.NewSliceContainer[int](), binKey,
		func(worker int, t uint64, v int) { out = append(out, admitted{worker, t, v}) })

	c.SubmitData(0, 7, 1)
	c.Tick(2, 1000)

	require.Len(t, out, 1)
	assert.Equal(t, 0, out[0].worker)
	assert.Equal(t, 7, out[0].v)
}

// TestClusterMigratesBinAndRoutesFollowUpRecordToNewOwner exercises the full
// pipeline: a Control message moves a bin from worker 0 to worker 1, the
// move installs once the cluster probe catches up, and a record submitted
// after that routes to the new owner.
func TestClusterMigratesBinAndRoutesFollowUpRecordToNewOwner(t *testing.T) {
	var out []admitted
	c := New[int, int, string](2, statestore.NewSliceContainer[int](), binKey,
		func(worker int, t uint64, v int) { out = append(out, admitted{worker, t, v}) })

	c.Worker(0).Store.GetState(binKey(9)).Extend(111)

	c.SubmitControl(control.Message{Sequence: 1, Count: 1, Inst: control.Inst{Kind: control.InstMove, Bin: 9, Worker: 1}}, 5)
	c.Tick(6, 6) // control frontier passes 5, probe has caught up too: installs

	assert.Equal(t, 1, c.Worker(0).Routing.Active().Map[9])
	assert.False(t, c.Worker(0).Store.Owns(9))
	assert.True(t, c.Worker(1).Store.Owns(9))
	assert.Equal(t, []int{111}, c.Worker(1).Store.GetState(binKey(9)).Elements())

	c.SubmitData(0, 9, 7) // value 9 hashes into bin 9, the bin that just migrated
	c.Tick(8, 1000)

	require.Len(t, out, 1)
	assert.Equal(t, 1, out[0].worker)
	assert.Equal(t, 9, out[0].v)
}

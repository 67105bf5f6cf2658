package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamshard/megaflow/pkg/frontier"
)

func TestNotifyAtDeliveredOnceFrontierPasses(t *testing.T) {
	n := New[uint64, string]()
	n.NotifyAt(NewCapability[uint64](5), "payload")

	// Frontier still at 3: not yet available.
	n.MakeAvailable([]frontier.Antichain[uint64]{frontier.New(uint64(3))})
	_, _, ok := n.Next([]frontier.Antichain[uint64]{frontier.New(uint64(3))})
	assert.False(t, ok)

	// Frontier advances past 5: now available.
	fs := []frontier.Antichain[uint64]{frontier.New(uint64(6))}
	cap, data, ok := n.Next(fs)
	require.True(t, ok)
	assert.Equal(t, uint64(5), cap.Time())
	assert.Equal(t, []string{"payload"}, data)
}

func TestNotifyAtCoalescesEqualTimes(t *testing.T) {
	n := New[uint64, string]()
	n.NotifyAt(NewCapability[uint64](5), "a")
	n.NotifyAt(NewCapability[uint64](5), "b")

	fs := []frontier.Antichain[uint64]{frontier.New(uint64(10))}
	cap, data, ok := n.Next(fs)
	require.True(t, ok)
	assert.Equal(t, uint64(5), cap.Time())
	assert.ElementsMatch(t, []string{"a", "b"}, data)

	_, _, ok = n.Next(fs)
	assert.False(t, ok, "second Next should find nothing left at time 5")
}

func TestForEachNonDecreasing(t *testing.T) {
	n := New[uint64, int]()
	n.NotifyAt(NewCapability[uint64](3), 3)
	n.NotifyAt(NewCapability[uint64](1), 1)
	n.NotifyAt(NewCapability[uint64](2), 2)

	fs := []frontier.Antichain[uint64]{frontier.New(uint64(10))}
	var order []uint64
	n.ForEach(fs, func(cap Capability[uint64], data []int) {
		order = append(order, cap.Time())
	})
	assert.Equal(t, []uint64{1, 2, 3}, order)
}

func TestEnqueueRequiresInitCap(t *testing.T) {
	n := New[uint64, int]()
	n.Enqueue(5, 42)

	assert.Panics(t, func() {
		n.MakeAvailable([]frontier.Antichain[uint64]{frontier.New(uint64(10))})
	})
}

func TestEnqueueWithInitCap(t *testing.T) {
	n := New[uint64, int]()
	n.InitCap(NewCapability[uint64](0))
	n.Enqueue(5, 42)

	fs := []frontier.Antichain[uint64]{frontier.New(uint64(10))}
	cap, data, ok := n.Next(fs)
	require.True(t, ok)
	assert.Equal(t, uint64(5), cap.Time())
	assert.Equal(t, []int{42}, data)
}

func TestPendingMutFilterForMigration(t *testing.T) {
	n := New[uint64, int]()
	n.NotifyAt(NewCapability[uint64](5), 1)
	n.NotifyAt(NewCapability[uint64](5), 2)
	n.MakeAvailable([]frontier.Antichain[uint64]{frontier.New(uint64(0))}) // coalesce, stays pending

	for _, e := range n.PendingMut() {
		filtered := e.Data[:0]
		for _, d := range e.Data {
			if d != 1 {
				filtered = append(filtered, d)
			}
		}
		e.Data = filtered
	}
	n.Compact()

	require.Len(t, n.Pending(), 1)
	assert.Equal(t, []int{2}, n.Pending()[0].Data)
}

func TestCapabilityDroppedWhenFrontiersEmpty(t *testing.T) {
	n := New[uint64, int]()
	n.InitCap(NewCapability[uint64](0))
	n.MakeAvailable([]frontier.Antichain[uint64]{frontier.New[uint64]()})

	assert.Panics(t, func() {
		n.Enqueue(1, 1)
		n.MakeAvailable([]frontier.Antichain[uint64]{frontier.New[uint64]()})
	})
}

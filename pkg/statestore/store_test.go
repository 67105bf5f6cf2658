package statestore

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/streamshard/megaflow/pkg/megakey"
)

func TestInitialOwnerStartsEveryBinNonEmpty(t *testing.T) {
	s := New[int, string](NewSliceContainer[int](), true)
	for b := 0; b < megakey.NumBins; b++ {
		assert.True(t, s.Owns(megakey.Bin(b)))
	}
}

func TestNonOwnerStartsEmpty(t *testing.T) {
	s := New[int, string](NewSliceContainer[int](), false)
	for b := 0; b < megakey.NumBins; b++ {
		assert.False(t, s.Owns(megakey.Bin(b)))
	}
}

func TestTakeClearsSlot(t *testing.T) {
	s := New[int, string](NewSliceContainer[int](), true)
	c := s.Take(5)
	assert.NotNil(t, c)
	assert.False(t, s.Owns(5))
}

func TestPrepareOnOwnedBinPanics(t *testing.T) {
	s := New[int, string](NewSliceContainer[int](), true)
	assert.Panics(t, func() { s.Prepare(5) })
}

func TestPrepareThenExtend(t *testing.T) {
	s := New[int, string](NewSliceContainer[int](), false)
	s.Prepare(5)
	s.ExtendBin(5, 42)
	s.ExtendBin(5, 43)

	c := s.GetState(megakey.Key(5) << (64 - megakey.BinBits))
	assert.Equal(t, []int{42, 43}, c.Elements())
}

func TestExtendWithoutPreparePanics(t *testing.T) {
	s := New[int, string](NewSliceContainer[int](), false)
	assert.Panics(t, func() { s.ExtendBin(5, 1) })
}

func TestGetStateOnUnownedBinPanics(t *testing.T) {
	s := New[int, string](NewSliceContainer[int](), false)
	assert.Panics(t, func() {
		s.GetState(0)
	})
}

func TestScanVisitsOnlyOwnedBins(t *testing.T) {
	s := New[int, string](NewSliceContainer[int](), false)
	s.Prepare(1)
	s.Prepare(3)

	seen := map[megakey.Bin]bool{}
	s.Scan(func(bin megakey.Bin, c Container[int]) {
		seen[bin] = true
	})
	assert.Equal(t, map[megakey.Bin]bool{1: true, 3: true}, seen)
}

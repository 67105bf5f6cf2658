package megakey

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBinOf(t *testing.T) {
	assert.Equal(t, Bin(0), BinOf(0))
	assert.Equal(t, Bin(NumBins-1), BinOf(^Key(0)))

	// top BinBits bits select the bin; low bits within a bin don't matter.
	assert.Equal(t, BinOf(Key(1)<<(wordBits-BinBits)), BinOf(Key(1)<<(wordBits-BinBits)|0xFF))
}

func TestNewZeroMap(t *testing.T) {
	m := NewZeroMap()
	assert.Len(t, m, NumBins)
	for _, w := range m {
		assert.Equal(t, 0, w)
	}
}

func TestMapClone(t *testing.T) {
	m := NewZeroMap()
	m[3] = 7
	clone := m.Clone()
	clone[3] = 9
	assert.Equal(t, 7, m[3])
	assert.Equal(t, 9, clone[3])
}

func TestHash64Deterministic(t *testing.T) {
	a := Hash64([]byte("same-input"))
	b := Hash64([]byte("same-input"))
	assert.Equal(t, a, b)
}

package rolegraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPairCommutative(t *testing.T) {
	cases := [][2]uint64{
		{0, 0},
		{0, 1},
		{1, 2},
		{42, 7},
		{12345, 67890},
		{MaxPairableID, 0},
		{MaxPairableID, MaxPairableID},
	}
	for _, c := range cases {
		ab, err := Pair(c[0], c[1])
		require.NoError(t, err)
		ba, err := Pair(c[1], c[0])
		require.NoError(t, err)
		assert.Equal(t, ab, ba, "Pair(%d,%d)", c[0], c[1])
	}
}

func TestPairUnpairRoundTrip(t *testing.T) {
	cases := [][2]uint64{
		{0, 0},
		{0, 1},
		{1, 1},
		{3, 500},
		{1000, 999},
		{1 << 20, 1 << 21},
		{MaxPairableID, MaxPairableID - 1},
		{MaxPairableID, MaxPairableID},
	}
	for _, c := range cases {
		z, err := Pair(c[0], c[1])
		require.NoError(t, err)
		lo, hi := Unpair(z)
		wantLo, wantHi := c[0], c[1]
		if wantLo > wantHi {
			wantLo, wantHi = wantHi, wantLo
		}
		assert.Equal(t, wantLo, lo, "Unpair(%d) lo", z)
		assert.Equal(t, wantHi, hi, "Unpair(%d) hi", z)
	}
}

func TestPairDistinct(t *testing.T) {
	// Distinct unordered pairs must map to distinct keys.
	seen := make(map[uint64][2]uint64)
	for a := uint64(0); a < 50; a++ {
		for b := a; b < 50; b++ {
			z, err := Pair(a, b)
			require.NoError(t, err)
			prev, dup := seen[z]
			require.False(t, dup, "Pair(%d,%d) collides with Pair(%d,%d)", a, b, prev[0], prev[1])
			seen[z] = [2]uint64{a, b}
		}
	}
}

func TestPairRejectsOversizedID(t *testing.T) {
	_, err := Pair(MaxPairableID+1, 0)
	assert.ErrorIs(t, err, ErrIDRange)
	_, err = Pair(0, MaxPairableID+1)
	assert.ErrorIs(t, err, ErrIDRange)
}

func TestIsqrtBoundaries(t *testing.T) {
	assert.Equal(t, uint64(0), isqrt(0))
	assert.Equal(t, uint64(1), isqrt(1))
	assert.Equal(t, uint64(1), isqrt(3))
	assert.Equal(t, uint64(2), isqrt(4))
	assert.Equal(t, uint64(1<<31), isqrt(1<<62))
	assert.Equal(t, uint64(1<<31-1), isqrt(1<<62-1))
	// The float estimate alone is off by one up here.
	max, err := Pair(MaxPairableID, MaxPairableID)
	require.NoError(t, err)
	assert.Equal(t, uint64(MaxPairableID), isqrt(max))
}

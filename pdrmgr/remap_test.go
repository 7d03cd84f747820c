package pdrmgr

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRemap_DisjointRanges(t *testing.T) {
	h0 := Remap(0, 5)
	h1 := Remap(1, 5)
	require.NotEqual(t, h0, h1)
	require.Equal(t, uint32(1)<<16|5, h0)
	require.Equal(t, uint32(2)<<16|5, h1)
}

func TestOriginIndex_RoundTrips(t *testing.T) {
	for slot := 0; slot < 4; slot++ {
		for _, seq := range []uint16{0, 1, 0xFFFF} {
			h := Remap(slot, seq)
			require.Equal(t, slot, OriginIndex(h))
		}
	}
}

func TestRangeBounds_CoverExactly65536Handles(t *testing.T) {
	low, high := rangeBounds(2)
	require.Equal(t, high-low, uint32(0xFFFF))
	require.Equal(t, 2, OriginIndex(low))
	require.Equal(t, 2, OriginIndex(high))
}

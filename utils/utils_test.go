package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBitReverse(t *testing.T) {
	require.Equal(t, uint64(0b100), BitReverse64(1, 3))
	require.Equal(t, uint64(0b011), BitReverse64(6, 3))
}

func TestSliceHelpers(t *testing.T) {
	require.True(t, AllDistinct([]uint64{3, 5, 7}))
	require.False(t, AllDistinct([]uint64{3, 5, 3}))

	require.True(t, IsPowerOfTwo(1024))
	require.False(t, IsPowerOfTwo(0))
	require.False(t, IsPowerOfTwo(96))

	require.Equal(t, []int{2, 3, 4}, RangeSlice(2, 5))
	require.Equal(t, []int{}, RangeSlice(5, 5))

	a := make([]uint64, 8)
	require.True(t, Alias1D(a[:4], a[4:]))
	require.False(t, Alias1D(a, make([]uint64, 8)))
}

package structs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type item struct {
	values []uint64
}

func (i *item) Clone() *item {
	v := make([]uint64, len(i.values))
	copy(v, i.values)
	return &item{values: v}
}

func (i *item) Copy(other *item) {
	copy(i.values, other.values)
}

func (i *item) Equal(other *item) bool {
	if len(i.values) != len(other.values) {
		return false
	}
	for j := range i.values {
		if i.values[j] != other.values[j] {
			return false
		}
	}
	return true
}

func TestVector(t *testing.T) {

	t.Run("Primitive", func(t *testing.T) {
		v := Vector[uint64]{1, 2, 3}
		w := v.Clone()
		require.True(t, v.Equal(w))
		w[0] = 7
		require.False(t, v.Equal(w))
		v.Copy(w)
		require.True(t, v.Equal(w))
		require.False(t, v.Equal(Vector[uint64]{1, 2}))
	})

	t.Run("Struct", func(t *testing.T) {
		v := Vector[item]{{values: []uint64{1, 2}}, {values: []uint64{3}}}
		w := v.Clone()
		require.True(t, v.Equal(w))
		w[1].values[0] = 9
		require.False(t, v.Equal(w))
		require.Equal(t, uint64(3), v[1].values[0])
		v.Copy(w)
		require.True(t, v.Equal(w))
	})
}

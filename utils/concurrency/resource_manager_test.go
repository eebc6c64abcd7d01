package concurrency

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResourceManager(t *testing.T) {

	t.Run("NoError", func(t *testing.T) {

		acc := make([]int, 8)

		rm := NewResourceManager(make([]bool, 4))
		require.Equal(t, 4, rm.Size())

		for i := range acc {
			rm.Run(func(r bool) (err error) {
				acc[i]++
				return
			})
		}

		require.NoError(t, rm.Wait())

		for i := range acc {
			require.Equal(t, 1, acc[i])
		}
	})

	t.Run("WithError", func(t *testing.T) {

		rm := NewResourceManager(make([]bool, 4))

		for i := range 8 {
			rm.Run(func(r bool) (err error) {
				if i == 2 {
					return fmt.Errorf("something bad happened")
				}
				return
			})
		}

		require.Error(t, rm.Wait())

		// the error is consumed by Wait
		rm.Run(func(r bool) error { return nil })
		require.NoError(t, rm.Wait())
	})

	t.Run("BoundedConcurrency", func(t *testing.T) {

		ids := []int{0, 1}
		rm := NewResourceManager(ids)

		var running, peak atomic.Int64
		var inUse [2]atomic.Bool

		for range 16 {
			rm.Run(func(id int) (err error) {
				if !inUse[id].CompareAndSwap(false, true) {
					return fmt.Errorf("resource %d lent twice", id)
				}
				n := running.Add(1)
				for {
					p := peak.Load()
					if n <= p || peak.CompareAndSwap(p, n) {
						break
					}
				}
				running.Add(-1)
				inUse[id].Store(false)
				return
			})
		}

		require.NoError(t, rm.Wait())
		require.LessOrEqual(t, peak.Load(), int64(len(ids)))
	})
}

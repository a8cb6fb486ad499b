package concurrency

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResourceManager(t *testing.T) {
	rm := NewResourceManager(make([]struct{}, 4))
	var n atomic.Int64
	for i := 0; i < 100; i++ {
		rm.Run(func(struct{}) error {
			n.Add(1)
			return nil
		})
	}
	require.NoError(t, rm.Wait())
	require.Equal(t, int64(100), n.Load())
}

func TestResourceManagerError(t *testing.T) {
	rm := NewResourceManager(make([]int, 2))
	for i := 0; i < 10; i++ {
		i := i
		rm.Run(func(int) error {
			if i == 3 {
				return fmt.Errorf("task %d failed", i)
			}
			return nil
		})
	}
	require.Error(t, rm.Wait())
}

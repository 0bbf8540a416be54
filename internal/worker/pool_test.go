package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolKeepsOrder(t *testing.T) {
	pool := NewPool(4, func(_ context.Context, n int) (int, error) {
		if n == 3 {
			return 0, errors.New("three")
		}
		return n * n, nil
	})

	tasks := pool.Execute(context.Background(), []int{1, 2, 3, 4, 5})
	require.Len(t, tasks, 5)
	for i, task := range tasks {
		assert.Equal(t, i+1, task.Input)
		if task.Input == 3 {
			assert.EqualError(t, task.Err, "three")
			continue
		}
		assert.NoError(t, task.Err)
		assert.Equal(t, task.Input*task.Input, task.Result)
	}
}

func TestPoolCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pool := NewPool(2, func(_ context.Context, n int) (int, error) { return n, nil })
	tasks := pool.Execute(ctx, []int{1, 2, 3})

	require.Len(t, tasks, 3)
	for _, task := range tasks {
		if task.Err != nil {
			assert.ErrorIs(t, task.Err, context.Canceled)
		}
	}
}

func TestBatch(t *testing.T) {
	assert.Equal(t, [][]int{{1, 2}, {3, 4}, {5}}, Batch([]int{1, 2, 3, 4, 5}, 2))
	assert.Equal(t, [][]int{{1}, {2}}, Batch([]int{1, 2}, 0))
	assert.Nil(t, Batch([]int{}, 3))
}

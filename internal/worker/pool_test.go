package worker

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestPoolKeepsInputOrder verifies results line up with inputs regardless
// of completion order.
func TestPoolKeepsInputOrder(t *testing.T) {
	inputs := []int{5, 3, 8, 1, 9, 2}
	pool := NewPool(4, func(ctx context.Context, n int) (string, error) {
		return strconv.Itoa(n * 2), nil
	})

	results := pool.Run(context.Background(), inputs)
	require.Len(t, results, len(inputs))
	for i, res := range results {
		require.Equal(t, inputs[i], res.Input)
		require.NoError(t, res.Err)
		require.Equal(t, strconv.Itoa(inputs[i]*2), res.Output)
	}
}

// TestPoolReportsErrors verifies one failing input does not affect the
// others.
func TestPoolReportsErrors(t *testing.T) {
	boom := errors.New("boom")
	pool := NewPool(2, func(ctx context.Context, n int) (int, error) {
		if n == 2 {
			return 0, boom
		}
		return n, nil
	})

	results := pool.Run(context.Background(), []int{1, 2, 3})
	require.NoError(t, results[0].Err)
	require.ErrorIs(t, results[1].Err, boom)
	require.NoError(t, results[2].Err)
	require.Equal(t, 3, results[2].Output)
}

func TestPoolMinimumWorkers(t *testing.T) {
	pool := NewPool(0, func(ctx context.Context, n int) (int, error) { return n, nil })
	results := pool.Run(context.Background(), []int{7})
	require.Len(t, results, 1)
	require.Equal(t, 7, results[0].Output)
}

// TestPoolCancelledContext verifies a pre-cancelled run leaves zero-value
// results rather than hanging.
func TestPoolCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pool := NewPool(2, func(ctx context.Context, n int) (int, error) { return n + 1, nil })
	results := pool.Run(ctx, []int{1, 2, 3})
	require.Len(t, results, 3)
}

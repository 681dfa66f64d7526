package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_PreservesTaskOrder(t *testing.T) {
	tasks := make([]Task[int], 0, 20)
	for i := 0; i < 20; i++ {
		tasks = append(tasks, func(ctx context.Context) (int, error) {
			time.Sleep(time.Duration(20-i) * time.Millisecond)
			return i * i, nil
		})
	}

	out, err := Run(context.Background(), NewPool(4), tasks)
	require.NoError(t, err)
	for i, v := range out {
		assert.Equal(t, i*i, v)
	}
}

func TestRun_RespectsWorkerLimit(t *testing.T) {
	var running, peak atomic.Int32
	tasks := make([]Task[struct{}], 0, 16)
	for i := 0; i < 16; i++ {
		tasks = append(tasks, func(ctx context.Context) (struct{}, error) {
			n := running.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			running.Add(-1)
			return struct{}{}, nil
		})
	}

	_, err := Run(context.Background(), NewPool(3), tasks)
	require.NoError(t, err)
	assert.LessOrEqual(t, peak.Load(), int32(3))
}

func TestRun_FirstErrorIsReturned(t *testing.T) {
	boom := errors.New("boom")
	tasks := []Task[int]{
		func(ctx context.Context) (int, error) { return 1, nil },
		func(ctx context.Context) (int, error) { return 0, boom },
	}

	_, err := Run(context.Background(), NewPool(1), tasks)
	assert.ErrorIs(t, err, boom)
}

func TestRun_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var called atomic.Bool
	_, err := Run(ctx, NewPool(2), []Task[int]{
		func(ctx context.Context) (int, error) {
			called.Store(true)
			return 1, nil
		},
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called.Load())
}

func TestNewPool_DefaultsToCPUCount(t *testing.T) {
	assert.GreaterOrEqual(t, NewPool(0).Workers(), 1)
	assert.Equal(t, 5, NewPool(5).Workers())
}

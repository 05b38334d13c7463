package collector

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoller_RunsImmediatelyAndOnInterval(t *testing.T) {
	t.Parallel()

	var runs int32
	poller := NewPoller("test", 50*time.Millisecond, func(ctx context.Context) {
		atomic.AddInt32(&runs, 1)
	}, newTestLogger())

	require.NoError(t, poller.Start(context.Background()))
	defer poller.Stop()

	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&runs) >= 3
	}, 2*time.Second, 10*time.Millisecond)
}

func TestPoller_RecoversFromPanickingTask(t *testing.T) {
	t.Parallel()

	var runs int32
	poller := NewPoller("test", 20*time.Millisecond, func(ctx context.Context) {
		atomic.AddInt32(&runs, 1)
		panic("task exploded")
	}, newTestLogger())

	require.NoError(t, poller.Start(context.Background()))

	// The immediate run and the scheduled runs all panic; the process must
	// survive and keep polling.
	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&runs) >= 3
	}, 2*time.Second, 10*time.Millisecond)

	assert.NotPanics(t, poller.Stop)
}

func TestPoller_NoRunsAfterStop(t *testing.T) {
	t.Parallel()

	var runs int32
	poller := NewPoller("test", 20*time.Millisecond, func(ctx context.Context) {
		atomic.AddInt32(&runs, 1)
	}, newTestLogger())

	require.NoError(t, poller.Start(context.Background()))
	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&runs) >= 1
	}, time.Second, 5*time.Millisecond)

	poller.Stop()
	after := atomic.LoadInt32(&runs)

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, after, atomic.LoadInt32(&runs))
}

func TestPoller_StopCancelsInFlightTask(t *testing.T) {
	t.Parallel()

	started := make(chan struct{})
	var cancelled int32
	poller := NewPoller("test", time.Hour, func(ctx context.Context) {
		close(started)
		<-ctx.Done()
		atomic.StoreInt32(&cancelled, 1)
	}, newTestLogger())

	require.NoError(t, poller.Start(context.Background()))
	<-started

	poller.Stop()
	assert.Equal(t, int32(1), atomic.LoadInt32(&cancelled))
}

func TestPoller_StopIsIdempotent(t *testing.T) {
	t.Parallel()

	poller := NewPoller("test", time.Hour, func(ctx context.Context) {}, newTestLogger())

	// Stopping before start is a no-op, and a stopped poller never starts.
	poller.Stop()
	poller.Stop()
	require.NoError(t, poller.Start(context.Background()))
	poller.Stop()
}

func TestPoller_ParentContextCancellation(t *testing.T) {
	t.Parallel()

	var runs int32
	ctx, cancel := context.WithCancel(context.Background())
	poller := NewPoller("test", 20*time.Millisecond, func(ctx context.Context) {
		atomic.AddInt32(&runs, 1)
	}, newTestLogger())

	require.NoError(t, poller.Start(ctx))
	defer poller.Stop()

	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&runs) >= 1
	}, time.Second, 5*time.Millisecond)
	cancel()

	time.Sleep(50 * time.Millisecond)
	after := atomic.LoadInt32(&runs)
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, after, atomic.LoadInt32(&runs))
}

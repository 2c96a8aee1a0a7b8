package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edgescout/internal/domain"
)

func TestSchedulerStartValidation(t *testing.T) {
	s := NewScheduler(slog.Default(), nil)
	ctx := context.Background()
	noop := func(context.Context) {}

	assert.Error(t, s.Start(ctx, nil, time.Hour))
	assert.Error(t, s.Start(ctx, noop, 30*time.Second))

	require.NoError(t, s.Start(ctx, noop, time.Hour))
	t.Cleanup(func() { _ = s.Stop(true) })

	err := s.Start(ctx, noop, time.Hour)
	assert.True(t, errors.Is(err, domain.ErrSchedulerRunning))
}

func TestSchedulerStopWhenStopped(t *testing.T) {
	s := NewScheduler(slog.Default(), nil)
	err := s.Stop(true)
	assert.True(t, errors.Is(err, domain.ErrSchedulerStopped))
}

func TestSchedulerStatusTransitions(t *testing.T) {
	s := NewScheduler(slog.Default(), nil)

	st := s.Status()
	assert.False(t, st.Running)
	assert.False(t, st.HasRunFunc)
	assert.True(t, st.NextRun.IsZero())

	require.NoError(t, s.Start(context.Background(), func(context.Context) {}, time.Hour))

	st = s.Status()
	assert.True(t, st.Running)
	assert.True(t, st.HasRunFunc)
	assert.Equal(t, time.Hour, st.Interval)
	assert.False(t, st.NextRun.IsZero())

	require.NoError(t, s.Stop(true))

	st = s.Status()
	assert.False(t, st.Running)
	assert.True(t, st.NextRun.IsZero())
}

func TestSchedulerTickExecutesRun(t *testing.T) {
	s := NewScheduler(slog.Default(), nil)
	var calls atomic.Int32
	done := make(chan struct{})

	s.mu.Lock()
	s.runFn = func(context.Context) {
		calls.Add(1)
		close(done)
	}
	s.mu.Unlock()

	s.executeTick(context.Background())

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("run function was not executed")
	}
	s.wg.Wait()
	assert.Equal(t, int32(1), calls.Load())
}

func TestSchedulerTickSkipsWhileRunning(t *testing.T) {
	s := NewScheduler(slog.Default(), nil)
	var calls atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})

	s.mu.Lock()
	s.runFn = func(context.Context) {
		calls.Add(1)
		close(started)
		<-release
	}
	s.mu.Unlock()

	ctx := context.Background()
	s.executeTick(ctx)
	<-started

	// A second tick while the first run holds the guard is a no-op.
	s.executeTick(ctx)

	close(release)
	s.wg.Wait()
	assert.Equal(t, int32(1), calls.Load())
}

func TestSchedulerTickExecutingStatus(t *testing.T) {
	s := NewScheduler(slog.Default(), nil)
	started := make(chan struct{})
	release := make(chan struct{})

	s.mu.Lock()
	s.runFn = func(context.Context) {
		close(started)
		<-release
	}
	s.mu.Unlock()

	s.executeTick(context.Background())
	<-started
	assert.True(t, s.Status().TickExecuting)

	close(release)
	s.wg.Wait()
	assert.False(t, s.Status().TickExecuting)
}

type heldLockManager struct{}

func (heldLockManager) Acquire(context.Context, string, time.Duration) (func(), error) {
	return nil, domain.ErrLockHeld
}

func TestSchedulerSkipsWhenDistributedLockHeld(t *testing.T) {
	s := NewScheduler(slog.Default(), heldLockManager{})
	var calls atomic.Int32

	s.mu.Lock()
	s.runFn = func(context.Context) { calls.Add(1) }
	s.mu.Unlock()

	s.executeTick(context.Background())
	s.wg.Wait()
	assert.Equal(t, int32(0), calls.Load())
}

func TestSchedulerRunPanicDoesNotKillGuard(t *testing.T) {
	s := NewScheduler(slog.Default(), nil)
	var calls atomic.Int32

	s.mu.Lock()
	s.runFn = func(context.Context) {
		if calls.Add(1) == 1 {
			panic("boom")
		}
	}
	s.mu.Unlock()

	ctx := context.Background()
	s.executeTick(ctx)
	s.wg.Wait()

	// The guard was released despite the panic; the next tick runs.
	s.executeTick(ctx)
	s.wg.Wait()
	assert.Equal(t, int32(2), calls.Load())
}

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"edgescout/internal/domain"
)

// MinInterval is the shortest allowed scheduling interval.
const MinInterval = time.Minute

// SchedulerLockKey guards scheduled runs across processes.
const SchedulerLockKey = "scheduler:pipeline"

const schedulerLockTTL = time.Hour

// RunFunc is one scheduled pipeline execution.
type RunFunc func(ctx context.Context)

// Status is a point-in-time snapshot of the scheduler.
type Status struct {
	Running       bool
	HasRunFunc    bool
	TickExecuting bool
	Interval      time.Duration
	NextRun       time.Time
}

// Scheduler runs a pipeline function at a fixed interval with single-flight
// semantics: a tick that fires while a run is still in progress is skipped.
// An optional distributed lock extends the guard across processes.
type Scheduler struct {
	log   *slog.Logger
	locks domain.LockManager

	mu       sync.Mutex // guards the fields below
	running  bool
	runFn    RunFunc
	interval time.Duration
	nextRun  time.Time
	stop     chan struct{}

	execMu sync.Mutex     // single-flight guard, held for the duration of a run
	wg     sync.WaitGroup // in-flight run plus the ticker goroutine
}

// NewScheduler creates a stopped Scheduler. Pass a nil LockManager to run
// with the in-process guard only.
func NewScheduler(log *slog.Logger, locks domain.LockManager) *Scheduler {
	return &Scheduler{
		log:   log.With(slog.String("component", "scheduler")),
		locks: locks,
	}
}

// Start registers the run function and begins ticking at the given interval.
// It fails with domain.ErrSchedulerRunning if already started, and with a
// plain error when the run function is missing or the interval is below
// MinInterval. The first scheduled fire is one interval after Start; callers
// wanting an immediate run invoke fn themselves first.
func (s *Scheduler) Start(ctx context.Context, fn RunFunc, interval time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return domain.ErrSchedulerRunning
	}
	if fn == nil {
		return errors.New("scheduler: run function is required")
	}
	if interval < MinInterval {
		return fmt.Errorf("scheduler: interval %s below minimum %s", interval, MinInterval)
	}

	s.runFn = fn
	s.interval = interval
	s.nextRun = time.Now().Add(interval)
	s.stop = make(chan struct{})
	s.running = true

	s.wg.Add(1)
	go s.loop(ctx, s.stop, interval)

	s.log.InfoContext(ctx, "scheduler started",
		slog.Duration("interval", interval),
		slog.Time("next_run", s.nextRun))
	return nil
}

// Stop transitions to Stopped. With wait=true it blocks until any in-flight
// run and the ticker goroutine have finished; with wait=false it returns
// immediately without cancelling the in-flight run. It fails with
// domain.ErrSchedulerStopped if the scheduler is not running.
func (s *Scheduler) Stop(wait bool) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return domain.ErrSchedulerStopped
	}
	close(s.stop)
	s.running = false
	s.nextRun = time.Time{}
	s.mu.Unlock()

	if wait {
		s.wg.Wait()
	}

	s.log.Info("scheduler stopped", slog.Bool("waited", wait))
	return nil
}

// Status reports the current scheduler state.
func (s *Scheduler) Status() Status {
	s.mu.Lock()
	st := Status{
		Running:    s.running,
		HasRunFunc: s.runFn != nil,
		Interval:   s.interval,
		NextRun:    s.nextRun,
	}
	s.mu.Unlock()

	if s.execMu.TryLock() {
		s.execMu.Unlock()
	} else {
		st.TickExecuting = true
	}
	return st
}

func (s *Scheduler) loop(ctx context.Context, stop chan struct{}, interval time.Duration) {
	defer s.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.mu.Lock()
			s.nextRun = time.Now().Add(interval)
			s.mu.Unlock()
			s.executeTick(ctx)
		}
	}
}

// executeTick runs one scheduled execution behind the single-flight guard.
func (s *Scheduler) executeTick(ctx context.Context) {
	if !s.execMu.TryLock() {
		s.log.WarnContext(ctx, "tick skipped: previous run still in progress")
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.execMu.Unlock()
		s.runGuarded(ctx)
	}()
}

// runGuarded takes the optional distributed lock and executes the run
// function. Panics are caught so one bad run does not kill the ticker.
func (s *Scheduler) runGuarded(ctx context.Context) {
	if s.locks != nil {
		unlock, err := s.locks.Acquire(ctx, SchedulerLockKey, schedulerLockTTL)
		if err != nil {
			if errors.Is(err, domain.ErrLockHeld) {
				s.log.WarnContext(ctx, "tick skipped: pipeline lock held elsewhere")
			} else {
				s.log.ErrorContext(ctx, "pipeline lock acquire failed", slog.String("error", err.Error()))
			}
			return
		}
		defer unlock()
	}

	defer func() {
		if r := recover(); r != nil {
			s.log.ErrorContext(ctx, "scheduled run panicked", slog.Any("panic", r))
		}
	}()

	start := time.Now()
	s.log.InfoContext(ctx, "scheduled run starting")

	s.mu.Lock()
	fn := s.runFn
	s.mu.Unlock()
	fn(ctx)

	s.log.InfoContext(ctx, "scheduled run finished",
		slog.Duration("duration", time.Since(start)))
}

package domain

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrAlreadyExists     = errors.New("already exists")
	ErrRateLimited       = errors.New("rate limited")
	ErrLockHeld          = errors.New("lock already held")
	ErrStageEmpty        = errors.New("stage produced no output")
	ErrPipelineAborted   = errors.New("pipeline aborted")
	ErrProviderExhausted = errors.New("provider retries exhausted")
	ErrSchedulerRunning  = errors.New("scheduler already running")
	ErrSchedulerStopped  = errors.New("scheduler not running")
	ErrNoJSONObject      = errors.New("no JSON object found in text")
)

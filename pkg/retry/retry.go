package retry

import (
	"context"
	"errors"
	"time"
)

// Policy is an explicit retry schedule: the n-th retry waits
// BaseDelay * Multiplier^n. It replaces ad-hoc timer recursion so the
// schedule is testable on its own.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Multiplier  float64
}

type stopError struct {
	err error
}

func (e stopError) Error() string {
	return e.err.Error()
}

func (e stopError) Unwrap() error {
	return e.err
}

// Stop wraps an error that must not be retried.
func Stop(err error) error {
	return stopError{err: err}
}

// Delay returns the wait before the retry following the given attempt,
// attempts are counted from zero.
func (p Policy) Delay(attempt int) time.Duration {
	delay := float64(p.BaseDelay)
	for i := 0; i < attempt; i++ {
		delay *= p.Multiplier
	}
	return time.Duration(delay)
}

// Do calls fn up to MaxAttempts times. The sleep function is injectable
// for tests, nil falls back to time.Sleep honoring ctx cancellation.
func (p Policy) Do(ctx context.Context, sleep func(time.Duration), fn func(attempt int) error) error {
	if sleep == nil {
		sleep = func(d time.Duration) {
			timer := time.NewTimer(d)
			defer timer.Stop()
			select {
			case <-timer.C:
			case <-ctx.Done():
			}
		}
	}

	var lastErr error
	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := fn(attempt)
		if err == nil {
			return nil
		}

		var stop stopError
		if errors.As(err, &stop) {
			return stop.err
		}

		lastErr = err
		if attempt < p.MaxAttempts-1 {
			sleep(p.Delay(attempt))
		}
	}

	return lastErr
}

// Package retry runs RPC calls with exponential backoff.
package retry

import (
	"context"
	"errors"
	"time"
)

// Policy controls how often and how fast an operation is retried.
type Policy struct {
	MaxRetries int
	BaseDelay  time.Duration
	// Permanent reports errors that must not be retried. Nil retries all.
	Permanent func(error) bool
}

// Do calls fn until it succeeds, fails permanently, the retries run out or
// ctx is done. The delay doubles after every attempt.
func Do(ctx context.Context, p Policy, fn func(context.Context) error) error {
	maxRetries := p.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	delay := p.BaseDelay
	if delay <= 0 {
		delay = 100 * time.Millisecond
	}

	for attempt := 0; ; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if attempt >= maxRetries || isPermanent(p, err) {
			return err
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		delay *= 2
	}
}

func isPermanent(p Policy, err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	return p.Permanent != nil && p.Permanent(err)
}

// Value is Do for functions that return a result.
func Value[T any](ctx context.Context, p Policy, fn func(context.Context) (T, error)) (T, error) {
	var out T
	err := Do(ctx, p, func(ctx context.Context) error {
		v, err := fn(ctx)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	return out, err
}

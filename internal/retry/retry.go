// Package retry wraps fallible remote operations with bounded
// exponential backoff and jitter. Each call is independent; the
// package holds no shared state.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Classifier reports whether an error is worth retrying. Errors it
// rejects propagate immediately.
type Classifier func(error) bool

// Options bounds a retried operation.
type Options struct {
	// MaxRetries is the number of retries after the first attempt, so
	// an operation runs at most MaxRetries+1 times.
	MaxRetries uint64
	// Base is the initial backoff interval; doubled per attempt with
	// uniform jitter, capped at Cap.
	Base time.Duration
	// Cap bounds a single backoff sleep.
	Cap time.Duration
	// AttemptTimeout is a hard per-attempt deadline. Hitting it counts
	// as a retriable failure.
	AttemptTimeout time.Duration
}

// DefaultOptions mirrors the production call discipline: up to 3
// retries, 500ms base, 8s sleep cap, 10s per-attempt timeout.
func DefaultOptions() Options {
	return Options{
		MaxRetries:     3,
		Base:           500 * time.Millisecond,
		Cap:            8 * time.Second,
		AttemptTimeout: 10 * time.Second,
	}
}

// Do runs op, retrying per opts while classify accepts the error.
// Every attempt runs under its own AttemptTimeout deadline derived
// from ctx; canceling ctx stops the retry loop between attempts.
func Do[T any](ctx context.Context, opts Options, classify Classifier, op func(context.Context) (T, error)) (T, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = opts.Base
	bo.MaxInterval = opts.Cap
	bo.Multiplier = 2
	bo.RandomizationFactor = 0.5
	bo.MaxElapsedTime = 0 // bounded by MaxRetries, not wall time
	bo.Reset()

	policy := backoff.WithContext(backoff.WithMaxRetries(bo, opts.MaxRetries), ctx)

	return backoff.RetryWithData(func() (T, error) {
		attemptCtx := ctx
		if opts.AttemptTimeout > 0 {
			var cancel context.CancelFunc
			attemptCtx, cancel = context.WithTimeout(ctx, opts.AttemptTimeout)
			defer cancel()
		}
		v, err := op(attemptCtx)
		if err != nil && classify != nil && !classify(err) {
			return v, backoff.Permanent(err)
		}
		return v, err
	}, policy)
}

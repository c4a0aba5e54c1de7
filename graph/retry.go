package graph

import (
	"context"

	"github.com/go-kratos/kit/retry"
)

// Retry returns a middleware that retries a node handler.
//
// attempts is the total number of tries including the first. The same state
// value is passed on every attempt, so handlers must not mutate it. Backoff
// and retryable-error classification are configured via retry.Option, for
// example:
//
//	mw := Retry(3,
//	    retry.WithBackoff(retry.NewExponentialBackoff()),
//	    retry.WithRetryable(func(err error) bool {
//	        return errors.Is(err, ErrThrottled)
//	    }),
//	)
func Retry(attempts int, opts ...retry.Option) Middleware {
	r := retry.New(attempts, opts...)
	return func(next Handler) Handler {
		return func(ctx context.Context, input State) (State, error) {
			var output State
			if err := r.Do(ctx, func(ctx context.Context) error {
				var err error
				output, err = next(ctx, input)
				return err
			}); err != nil {
				return nil, err
			}
			return output, nil
		}
	}
}

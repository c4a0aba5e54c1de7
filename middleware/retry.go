package middleware

import (
	"context"

	"github.com/go-kratos/kit/retry"
	"github.com/nimbusworks/nimbus"
)

// Retry returns a middleware that retries the wrapped Runnable.
//
// attempts is the total number of tries including the first. The same prompt
// is passed on every attempt. Backoff and retryable-error classification are
// configured via retry.Option, for example:
//
//	mw := Retry(5,
//	    retry.WithBackoff(retry.NewExponentialBackoff()),
//	    retry.WithRetryable(func(err error) bool {
//	        return IsThrottle(err)
//	    }),
//	)
func Retry(attempts int, opts ...retry.Option) nimbus.Middleware {
	r := retry.New(attempts, opts...)
	return func(next nimbus.Runnable) nimbus.Runnable {
		return nimbus.RunFunc(func(ctx context.Context, prompt *nimbus.Prompt, modelOpts ...nimbus.ModelOption) (*nimbus.Message, error) {
			var output *nimbus.Message
			if err := r.Do(ctx, func(ctx context.Context) error {
				var err error
				output, err = next.Run(ctx, prompt, modelOpts...)
				return err
			}); err != nil {
				return nil, err
			}
			return output, nil
		})
	}
}

package graph

import "context"

// Handler processes the pipeline state at a single node. Handlers must not
// mutate the incoming state; return a new instance instead.
type Handler func(ctx context.Context, state State) (State, error)

// Middleware wraps a Handler with additional behavior.
type Middleware func(Handler) Handler

// ChainMiddlewares composes middlewares into one. The first middleware
// becomes the outermost wrapper.
func ChainMiddlewares(mws ...Middleware) Middleware {
	return func(next Handler) Handler {
		h := next
		for i := len(mws) - 1; i >= 0; i-- {
			h = mws[i](h)
		}
		return h
	}
}

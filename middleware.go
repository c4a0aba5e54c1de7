package nimbus

import "context"

// Runnable is anything that can process a prompt and produce a final message.
type Runnable interface {
	Run(ctx context.Context, prompt *Prompt, opts ...ModelOption) (*Message, error)
}

// RunFunc adapts a plain function to a Runnable.
type RunFunc func(ctx context.Context, prompt *Prompt, opts ...ModelOption) (*Message, error)

// Run implements Runnable.
func (f RunFunc) Run(ctx context.Context, prompt *Prompt, opts ...ModelOption) (*Message, error) {
	return f(ctx, prompt, opts...)
}

// Middleware wraps a Runnable and returns a new Runnable with additional behavior.
type Middleware func(Runnable) Runnable

// ChainMiddlewares composes middlewares into one, applying them in order.
// The first middleware becomes the outermost wrapper.
func ChainMiddlewares(mws ...Middleware) Middleware {
	return func(next Runnable) Runnable {
		r := next
		for i := len(mws) - 1; i >= 0; i-- { // apply in reverse to make mws[0] outermost
			r = mws[i](r)
		}
		return r
	}
}

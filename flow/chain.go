package flow

import (
	"context"

	"github.com/nimbusworks/nimbus"
)

var _ nimbus.Runnable = (*Chain)(nil)

// Chain runs a sequence of Runnables, feeding each output to the next as
// the prompt.
type Chain struct {
	runnables []nimbus.Runnable
}

// NewChain creates a Chain over the given runnables.
func NewChain(runnables ...nimbus.Runnable) *Chain {
	return &Chain{runnables: runnables}
}

// Run executes the chain sequentially and returns the last output.
func (c *Chain) Run(ctx context.Context, prompt *nimbus.Prompt, opts ...nimbus.ModelOption) (*nimbus.Message, error) {
	var (
		err  error
		last *nimbus.Message
	)
	for _, runnable := range c.runnables {
		last, err = runnable.Run(ctx, prompt, opts...)
		if err != nil {
			return nil, err
		}
		prompt = nimbus.NewPrompt(nimbus.UserMessage(last.Text()))
	}
	return last, nil
}

package middleware

import (
	"context"

	"github.com/nimbusworks/nimbus"
)

// ConversationBuffered prepends the session's message history to the prompt
// before processing. maxMessages limits how many of the most recent history
// entries are retained; zero or negative means unlimited.
func ConversationBuffered(maxMessages int) nimbus.Middleware {
	trim := func(messages []*nimbus.Message) []*nimbus.Message {
		if maxMessages <= 0 || len(messages) <= maxMessages {
			return messages
		}
		return messages[len(messages)-maxMessages:]
	}
	return func(next nimbus.Runnable) nimbus.Runnable {
		return nimbus.RunFunc(func(ctx context.Context, prompt *nimbus.Prompt, opts ...nimbus.ModelOption) (*nimbus.Message, error) {
			session, ok := nimbus.FromSessionContext(ctx)
			if !ok {
				return next.Run(ctx, prompt, opts...)
			}
			history := trim(session.History())
			messages := make([]*nimbus.Message, 0, len(history)+len(prompt.Messages))
			messages = append(messages, history...)
			messages = append(messages, prompt.Messages...)
			return next.Run(ctx, nimbus.NewPrompt(messages...), opts...)
		})
	}
}

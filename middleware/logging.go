package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/nimbusworks/nimbus"
)

// Logging returns a middleware that logs each invocation with the agent
// name, duration, and outcome.
func Logging(logger *slog.Logger) nimbus.Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next nimbus.Runnable) nimbus.Runnable {
		return nimbus.RunFunc(func(ctx context.Context, prompt *nimbus.Prompt, opts ...nimbus.ModelOption) (*nimbus.Message, error) {
			agentName := "unknown"
			if ac, ok := nimbus.FromAgentContext(ctx); ok {
				agentName = ac.Name
			}
			start := time.Now()
			out, err := next.Run(ctx, prompt, opts...)
			elapsed := time.Since(start)
			if err != nil {
				logger.ErrorContext(ctx, "agent run failed",
					"agent", agentName,
					"duration", elapsed,
					"error", err,
				)
				return nil, err
			}
			logger.InfoContext(ctx, "agent run completed",
				"agent", agentName,
				"duration", elapsed,
				"finish_reason", out.FinishReason,
			)
			return out, nil
		})
	}
}

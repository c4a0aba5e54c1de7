package nimbus

import "context"

// AgentContext describes the agent handling the current invocation. It is
// placed on the context so middlewares can attach agent metadata to logs
// and spans without depending on the agent implementation.
type AgentContext struct {
	Name        string
	Description string
	Model       string
}

type ctxAgentKey struct{}

// NewAgentContext returns a new Context that carries the agent metadata.
func NewAgentContext(ctx context.Context, agent *AgentContext) context.Context {
	return context.WithValue(ctx, ctxAgentKey{}, agent)
}

// FromAgentContext retrieves the AgentContext from the context.
func FromAgentContext(ctx context.Context) (*AgentContext, bool) {
	agent, ok := ctx.Value(ctxAgentKey{}).(*AgentContext)
	return agent, ok
}

// ToolContext describes the tool call being executed.
type ToolContext struct {
	ID   string
	Name string
}

type ctxToolKey struct{}

// NewToolContext returns a new Context that carries the tool call metadata.
func NewToolContext(ctx context.Context, call *ToolContext) context.Context {
	return context.WithValue(ctx, ctxToolKey{}, call)
}

// FromToolContext retrieves the ToolContext from the context.
func FromToolContext(ctx context.Context) (*ToolContext, bool) {
	call, ok := ctx.Value(ctxToolKey{}).(*ToolContext)
	return call, ok
}

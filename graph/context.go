package graph

import "context"

type ctxNodeKey struct{}

// NodeContext identifies the node currently executing.
type NodeContext struct {
	Name string
}

// NewNodeContext returns a context carrying the given NodeContext.
func NewNodeContext(ctx context.Context, node *NodeContext) context.Context {
	return context.WithValue(ctx, ctxNodeKey{}, node)
}

// FromNodeContext retrieves the NodeContext from the context, if present.
func FromNodeContext(ctx context.Context) (*NodeContext, bool) {
	node, ok := ctx.Value(ctxNodeKey{}).(*NodeContext)
	return node, ok
}

package flow

import (
	"context"
	"fmt"

	"github.com/nimbusworks/nimbus"
)

var _ nimbus.Runnable = (*Branch)(nil)

// BranchCondition selects a branch name from the prompt.
type BranchCondition func(ctx context.Context, prompt *nimbus.Prompt) (string, error)

// Branch routes a prompt to one of several named agents chosen by a
// condition function.
type Branch struct {
	condition BranchCondition
	agents    map[string]nimbus.Agent
}

// NewBranch creates a Branch over the given agents, keyed by agent name.
func NewBranch(condition BranchCondition, agents ...nimbus.Agent) *Branch {
	m := make(map[string]nimbus.Agent, len(agents))
	for _, agent := range agents {
		m[agent.Name()] = agent
	}
	return &Branch{condition: condition, agents: m}
}

// Run evaluates the condition and executes the selected agent.
func (b *Branch) Run(ctx context.Context, prompt *nimbus.Prompt, opts ...nimbus.ModelOption) (*nimbus.Message, error) {
	name, err := b.condition(ctx, prompt)
	if err != nil {
		return nil, err
	}
	agent, ok := b.agents[name]
	if !ok {
		return nil, fmt.Errorf("branch: agent not found: %s", name)
	}
	return agent.Run(ctx, prompt, opts...)
}

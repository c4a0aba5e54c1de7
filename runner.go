package nimbus

import "context"

// RunOption defines options for configuring the Runner.
type RunOption func(*Runner)

// WithSession sets a custom session for the Runner.
func WithSession(session Session) RunOption {
	return func(r *Runner) {
		r.session = session
	}
}

// Runner executes an agent within a session context so that multi-turn
// conversations accumulate history and shared state.
type Runner struct {
	Agent
	session Session
}

// NewRunner creates a new Runner with the given agent and options.
func NewRunner(agent Agent, opts ...RunOption) *Runner {
	r := &Runner{
		Agent:   agent,
		session: NewSession(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Session returns the runner's session.
func (r *Runner) Session() Session {
	return r.session
}

// Run executes the agent with the provided prompt within the session context.
// The prompt and the agent's final message are recorded in the session
// history after a successful run, so middleware reading history during the
// run sees only prior turns.
func (r *Runner) Run(ctx context.Context, prompt *Prompt, opts ...ModelOption) (*Message, error) {
	ctx = NewSessionContext(ctx, r.session)
	out, err := r.Agent.Run(ctx, prompt, opts...)
	if err != nil {
		return nil, err
	}
	if err := r.session.Append(ctx, prompt.Messages); err != nil {
		return nil, err
	}
	if err := r.session.Append(ctx, []*Message{out}); err != nil {
		return nil, err
	}
	return out, nil
}

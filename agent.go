package nimbus

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"text/template"

	"github.com/google/jsonschema-go/jsonschema"
	"golang.org/x/sync/errgroup"
)

// Agent is a Runnable with an identity, a model provider, and an optional
// set of tools executed in a bounded function-calling loop.
type Agent interface {
	Runnable
	Name() string
	Description() string
}

// InstructionProvider generates instructions based on the given context.
type InstructionProvider func(ctx context.Context) (string, error)

// AgentOption is an option for configuring the Agent.
type AgentOption func(*agent)

// WithModel sets the model provider for the Agent.
func WithModel(model ModelProvider) AgentOption {
	return func(a *agent) {
		a.model = model
	}
}

// WithDescription sets the description for the Agent.
func WithDescription(description string) AgentOption {
	return func(a *agent) {
		a.description = description
	}
}

// WithInstructions sets the system instructions for the Agent. Instructions
// are rendered as a text/template against the session state when a session
// is present on the context.
func WithInstructions(instructions string) AgentOption {
	return func(a *agent) {
		a.instructions = instructions
	}
}

// WithInstructionProvider sets a dynamic instruction provider for the Agent.
func WithInstructionProvider(p InstructionProvider) AgentOption {
	return func(a *agent) {
		a.instructionProvider = p
	}
}

// WithTools sets the tools for the Agent.
func WithTools(tools ...*Tool) AgentOption {
	return func(a *agent) {
		a.tools = tools
	}
}

// WithMiddleware sets the middleware for the Agent.
func WithMiddleware(ms ...Middleware) AgentOption {
	return func(a *agent) {
		a.middlewares = ms
	}
}

// WithMaxIterations sets the maximum number of model round-trips for the
// tool loop. By default, it is set to 10.
func WithMaxIterations(n int) AgentOption {
	return func(a *agent) {
		a.maxIterations = n
	}
}

// WithOutputSchema sets the output schema for the Agent.
func WithOutputSchema(schema *jsonschema.Schema) AgentOption {
	return func(a *agent) {
		a.outputSchema = schema
	}
}

// WithOutputKey sets the session state key under which the Agent's final
// output text is stored.
func WithOutputKey(key string) AgentOption {
	return func(a *agent) {
		a.outputKey = key
	}
}

type agent struct {
	name                string
	description         string
	instructions        string
	instructionProvider InstructionProvider
	outputKey           string
	maxIterations       int
	model               ModelProvider
	outputSchema        *jsonschema.Schema
	middlewares         []Middleware
	tools               []*Tool
}

// NewAgent creates a new Agent with the given name and options.
func NewAgent(name string, opts ...AgentOption) (Agent, error) {
	a := &agent{
		name:          name,
		maxIterations: 10,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.model == nil {
		return nil, ErrModelProviderRequired
	}
	return a, nil
}

func (a *agent) Name() string {
	return a.name
}

func (a *agent) Description() string {
	return a.description
}

// instruction resolves the system instruction for this invocation.
func (a *agent) instruction(ctx context.Context) (string, error) {
	var sections []string
	if a.instructionProvider != nil {
		s, err := a.instructionProvider(ctx)
		if err != nil {
			return "", err
		}
		sections = append(sections, s)
	}
	if a.instructions != "" {
		if session, ok := FromSessionContext(ctx); ok && strings.Contains(a.instructions, "{{") {
			t, err := template.New("instructions").Parse(a.instructions)
			if err != nil {
				return "", err
			}
			var buf strings.Builder
			if err := t.Execute(&buf, session.State()); err != nil {
				return "", err
			}
			sections = append(sections, buf.String())
		} else {
			sections = append(sections, a.instructions)
		}
	}
	return strings.Join(sections, "\n\n"), nil
}

// Run executes the agent's tool loop and returns the final assistant message.
func (a *agent) Run(ctx context.Context, prompt *Prompt, opts ...ModelOption) (*Message, error) {
	ctx = NewAgentContext(ctx, &AgentContext{
		Name:        a.name,
		Description: a.description,
		Model:       a.model.Name(),
	})
	var runnable Runnable = RunFunc(a.run)
	if len(a.middlewares) > 0 {
		runnable = ChainMiddlewares(a.middlewares...)(runnable)
	}
	return runnable.Run(ctx, prompt, opts...)
}

func (a *agent) run(ctx context.Context, prompt *Prompt, opts ...ModelOption) (*Message, error) {
	instruction, err := a.instruction(ctx)
	if err != nil {
		return nil, err
	}
	req := &ModelRequest{
		Model:        a.model.Name(),
		Tools:        a.tools,
		OutputSchema: a.outputSchema,
	}
	if instruction != "" {
		req.Messages = append(req.Messages, SystemMessage(instruction))
	}
	req.Messages = append(req.Messages, prompt.Messages...)

	for i := 0; i < a.maxIterations; i++ {
		resp, err := a.model.Generate(ctx, req, opts...)
		if err != nil {
			return nil, err
		}
		if resp.Message == nil {
			return nil, ErrNoFinalResponse
		}
		if calls := resp.Message.ToolCalls(); len(calls) > 0 {
			toolMessage, err := a.executeTools(ctx, resp.Message)
			if err != nil {
				return nil, err
			}
			// Feed the executed tool results back for the next round-trip.
			req.Messages = append(req.Messages, toolMessage)
			continue
		}
		resp.Message.Author = a.name
		if session, ok := FromSessionContext(ctx); ok && a.outputKey != "" {
			session.PutState(a.outputKey, resp.Message.Text())
		}
		return resp.Message, nil
	}
	return nil, ErrMaxIterationsExceeded
}

// executeTools runs all tool calls in the message concurrently and fills in
// their responses.
func (a *agent) executeTools(ctx context.Context, message *Message) (*Message, error) {
	var m sync.Mutex
	eg, ctx := errgroup.WithContext(ctx)
	for i, part := range message.Parts {
		call, ok := part.(ToolPart)
		if !ok {
			continue
		}
		eg.Go(func() error {
			toolCtx := NewToolContext(ctx, &ToolContext{ID: call.ID, Name: call.Name})
			executed, err := a.handleTool(toolCtx, call)
			if err != nil {
				return err
			}
			m.Lock()
			message.Parts[i] = executed
			m.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return message, nil
}

func (a *agent) handleTool(ctx context.Context, call ToolPart) (ToolPart, error) {
	for _, tool := range a.tools {
		if tool.Name == call.Name {
			response, err := tool.Handle(ctx, call.Request)
			if err != nil {
				return call, fmt.Errorf("tool %s: %w", call.Name, err)
			}
			call.Response = response
			return call, nil
		}
	}
	return call, fmt.Errorf("%w: %s", ErrToolNotFound, call.Name)
}

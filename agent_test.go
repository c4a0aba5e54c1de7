package nimbus

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// scriptedProvider replays canned responses and records the requests it saw.
type scriptedProvider struct {
	name      string
	responses []*ModelResponse
	requests  []*ModelRequest
	calls     int
}

func (p *scriptedProvider) Name() string {
	if p.name == "" {
		return "scripted"
	}
	return p.name
}

func (p *scriptedProvider) Generate(ctx context.Context, req *ModelRequest, opts ...ModelOption) (*ModelResponse, error) {
	snapshot := *req
	snapshot.Messages = append([]*Message(nil), req.Messages...)
	p.requests = append(p.requests, &snapshot)
	if p.calls >= len(p.responses) {
		return nil, errors.New("scripted provider exhausted")
	}
	resp := p.responses[p.calls]
	p.calls++
	return resp, nil
}

func toolCallResponse(id, name, args string) *ModelResponse {
	return &ModelResponse{Message: &Message{
		Role:   RoleTool,
		Status: StatusCompleted,
		Parts:  []Part{ToolPart{ID: id, Name: name, Request: args}},
	}}
}

func TestAgentRequiresModel(t *testing.T) {
	if _, err := NewAgent("bare"); !errors.Is(err, ErrModelProviderRequired) {
		t.Fatalf("expected ErrModelProviderRequired, got %v", err)
	}
}

func TestAgentRunPlainResponse(t *testing.T) {
	provider := &scriptedProvider{responses: []*ModelResponse{
		{Message: AssistantMessage("hello there")},
	}}
	agent, err := NewAgent("greeter",
		WithModel(provider),
		WithInstructions("You are a greeter."),
	)
	if err != nil {
		t.Fatalf("new agent: %v", err)
	}
	out, err := agent.Run(context.Background(), NewPrompt(UserMessage("hi")))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if out.Text() != "hello there" {
		t.Fatalf("unexpected output: %q", out.Text())
	}
	if out.Author != "greeter" {
		t.Fatalf("expected author to be set, got %q", out.Author)
	}
	req := provider.requests[0]
	if req.Messages[0].Role != RoleSystem || !strings.Contains(req.Messages[0].Text(), "greeter") {
		t.Fatalf("expected system instructions first, got %+v", req.Messages[0])
	}
}

func TestAgentToolLoop(t *testing.T) {
	echo := MustTool("echo", "echoes its input",
		func(ctx context.Context, in struct {
			Text string `json:"text"`
		}) (map[string]string, error) {
			return map[string]string{"echo": in.Text}, nil
		})
	provider := &scriptedProvider{responses: []*ModelResponse{
		toolCallResponse("call-1", "echo", `{"text":"ping"}`),
		{Message: AssistantMessage("done")},
	}}
	agent, err := NewAgent("tooler", WithModel(provider), WithTools(echo))
	if err != nil {
		t.Fatalf("new agent: %v", err)
	}
	out, err := agent.Run(context.Background(), NewPrompt(UserMessage("use the tool")))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if out.Text() != "done" {
		t.Fatalf("unexpected final output: %q", out.Text())
	}
	// The second request must carry the executed tool result.
	second := provider.requests[1]
	last := second.Messages[len(second.Messages)-1]
	calls := last.ToolCalls()
	if len(calls) != 1 || !strings.Contains(calls[0].Response, "ping") {
		t.Fatalf("expected executed tool result in follow-up request, got %+v", calls)
	}
}

func TestAgentUnknownToolFails(t *testing.T) {
	provider := &scriptedProvider{responses: []*ModelResponse{
		toolCallResponse("call-1", "missing", `{}`),
	}}
	agent, err := NewAgent("tooler", WithModel(provider))
	if err != nil {
		t.Fatalf("new agent: %v", err)
	}
	if _, err := agent.Run(context.Background(), NewPrompt(UserMessage("go"))); !errors.Is(err, ErrToolNotFound) {
		t.Fatalf("expected ErrToolNotFound, got %v", err)
	}
}

func TestAgentMaxIterations(t *testing.T) {
	noop := MustTool("noop", "does nothing",
		func(ctx context.Context, in struct{}) (string, error) { return "ok", nil })
	provider := &scriptedProvider{responses: []*ModelResponse{
		toolCallResponse("c1", "noop", `{}`),
		toolCallResponse("c2", "noop", `{}`),
		toolCallResponse("c3", "noop", `{}`),
	}}
	agent, err := NewAgent("looper",
		WithModel(provider),
		WithTools(noop),
		WithMaxIterations(3),
	)
	if err != nil {
		t.Fatalf("new agent: %v", err)
	}
	if _, err := agent.Run(context.Background(), NewPrompt(UserMessage("loop"))); !errors.Is(err, ErrMaxIterationsExceeded) {
		t.Fatalf("expected ErrMaxIterationsExceeded, got %v", err)
	}
}

func TestRunnerSessionHistory(t *testing.T) {
	provider := &scriptedProvider{responses: []*ModelResponse{
		{Message: AssistantMessage("first")},
		{Message: AssistantMessage("second")},
	}}
	agent, err := NewAgent("chatty", WithModel(provider), WithOutputKey("last_reply"))
	if err != nil {
		t.Fatalf("new agent: %v", err)
	}
	runner := NewRunner(agent)
	ctx := context.Background()
	if _, err := runner.Run(ctx, NewPrompt(UserMessage("one"))); err != nil {
		t.Fatalf("run one: %v", err)
	}
	if _, err := runner.Run(ctx, NewPrompt(UserMessage("two"))); err != nil {
		t.Fatalf("run two: %v", err)
	}
	history := runner.Session().History()
	if len(history) != 4 {
		t.Fatalf("expected 4 history entries, got %d", len(history))
	}
	if got := runner.Session().State()["last_reply"]; got != "second" {
		t.Fatalf("expected output key to hold last reply, got %v", got)
	}
}

func TestAgentInstructionTemplate(t *testing.T) {
	provider := &scriptedProvider{responses: []*ModelResponse{
		{Message: AssistantMessage("ok")},
	}}
	agent, err := NewAgent("templated",
		WithModel(provider),
		WithInstructions("Assist {{.user_name}} with travel plans."),
	)
	if err != nil {
		t.Fatalf("new agent: %v", err)
	}
	session := NewSession(map[string]any{"user_name": "Ada"})
	ctx := NewSessionContext(context.Background(), session)
	if _, err := agent.Run(ctx, NewPrompt(UserMessage("hello"))); err != nil {
		t.Fatalf("run: %v", err)
	}
	system := provider.requests[0].Messages[0].Text()
	if !strings.Contains(system, "Ada") {
		t.Fatalf("expected rendered instructions, got %q", system)
	}
}

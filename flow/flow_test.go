package flow

import (
	"context"
	"strings"
	"testing"

	"github.com/nimbusworks/nimbus"
)

type upperRunnable struct{}

func (upperRunnable) Run(ctx context.Context, prompt *nimbus.Prompt, opts ...nimbus.ModelOption) (*nimbus.Message, error) {
	return nimbus.AssistantMessage(strings.ToUpper(prompt.String())), nil
}

type suffixRunnable struct{ suffix string }

func (r suffixRunnable) Run(ctx context.Context, prompt *nimbus.Prompt, opts ...nimbus.ModelOption) (*nimbus.Message, error) {
	return nimbus.AssistantMessage(prompt.String() + r.suffix), nil
}

func TestChainPassesOutputForward(t *testing.T) {
	chain := NewChain(upperRunnable{}, suffixRunnable{suffix: "!"})
	out, err := chain.Run(context.Background(), nimbus.NewPrompt(nimbus.UserMessage("hello")))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if out.Text() != "HELLO!" {
		t.Fatalf("unexpected chain output: %q", out.Text())
	}
}

type namedAgent struct {
	name  string
	reply string
}

func (a namedAgent) Name() string        { return a.name }
func (a namedAgent) Description() string { return a.name }
func (a namedAgent) Run(ctx context.Context, prompt *nimbus.Prompt, opts ...nimbus.ModelOption) (*nimbus.Message, error) {
	return nimbus.AssistantMessage(a.reply), nil
}

func TestBranchRoutesByCondition(t *testing.T) {
	branch := NewBranch(
		func(ctx context.Context, prompt *nimbus.Prompt) (string, error) {
			if strings.Contains(prompt.String(), "flight") {
				return "flights", nil
			}
			return "hotels", nil
		},
		namedAgent{name: "flights", reply: "flight picked"},
		namedAgent{name: "hotels", reply: "hotel picked"},
	)
	out, err := branch.Run(context.Background(), nimbus.NewPrompt(nimbus.UserMessage("book a flight")))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if out.Text() != "flight picked" {
		t.Fatalf("unexpected branch output: %q", out.Text())
	}
}

func TestBranchUnknownAgent(t *testing.T) {
	branch := NewBranch(
		func(ctx context.Context, prompt *nimbus.Prompt) (string, error) {
			return "missing", nil
		},
		namedAgent{name: "present", reply: "hi"},
	)
	if _, err := branch.Run(context.Background(), nimbus.NewPrompt(nimbus.UserMessage("x"))); err == nil || !strings.Contains(err.Error(), "agent not found") {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

package nimbus

import (
	"context"
	"strings"
	"testing"
)

func TestNewToolDecodesArguments(t *testing.T) {
	type addInput struct {
		A int `json:"a"`
		B int `json:"b"`
	}
	add, err := NewTool("add", "adds two numbers",
		func(ctx context.Context, in addInput) (int, error) { return in.A + in.B, nil })
	if err != nil {
		t.Fatalf("new tool: %v", err)
	}
	if add.InputSchema == nil {
		t.Fatal("expected derived input schema")
	}
	out, err := add.Handle(context.Background(), `{"a":2,"b":3}`)
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if out != "5" {
		t.Fatalf("expected 5, got %q", out)
	}
}

func TestNewToolEmptyArguments(t *testing.T) {
	ping, err := NewTool("ping", "returns pong",
		func(ctx context.Context, in struct{}) (string, error) { return "pong", nil })
	if err != nil {
		t.Fatalf("new tool: %v", err)
	}
	out, err := ping.Handle(context.Background(), "")
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if out != `"pong"` {
		t.Fatalf("expected pong, got %q", out)
	}
}

func TestNewToolBadArguments(t *testing.T) {
	type input struct {
		N int `json:"n"`
	}
	tool, err := NewTool("strict", "wants a number",
		func(ctx context.Context, in input) (int, error) { return in.N, nil })
	if err != nil {
		t.Fatalf("new tool: %v", err)
	}
	if _, err := tool.Handle(context.Background(), `{"n":"oops"}`); err == nil || !strings.Contains(err.Error(), "decode arguments") {
		t.Fatalf("expected decode error, got %v", err)
	}
}

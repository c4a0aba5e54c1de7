package middleware

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/nimbusworks/nimbus"
)

func TestRetrySucceedsAfterFailures(t *testing.T) {
	var attempts int
	inner := nimbus.RunFunc(func(ctx context.Context, prompt *nimbus.Prompt, opts ...nimbus.ModelOption) (*nimbus.Message, error) {
		attempts++
		if attempts < 3 {
			return nil, errors.New("transient")
		}
		return nimbus.AssistantMessage("ok"), nil
	})
	out, err := Retry(3)(inner).Run(context.Background(), nimbus.NewPrompt(nimbus.UserMessage("go")))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
	if out.Text() != "ok" {
		t.Fatalf("unexpected output: %q", out.Text())
	}
}

func TestRetryExhausted(t *testing.T) {
	var attempts int
	inner := nimbus.RunFunc(func(ctx context.Context, prompt *nimbus.Prompt, opts ...nimbus.ModelOption) (*nimbus.Message, error) {
		attempts++
		return nil, errors.New("still broken")
	})
	if _, err := Retry(2)(inner).Run(context.Background(), nimbus.NewPrompt(nimbus.UserMessage("go"))); err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if attempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", attempts)
	}
}

func TestConversationBufferedPrependsHistory(t *testing.T) {
	session := nimbus.NewSession()
	if err := session.Append(context.Background(), []*nimbus.Message{
		nimbus.UserMessage("earlier question"),
		nimbus.AssistantMessage("earlier answer"),
	}); err != nil {
		t.Fatalf("append: %v", err)
	}

	var seen []*nimbus.Message
	inner := nimbus.RunFunc(func(ctx context.Context, prompt *nimbus.Prompt, opts ...nimbus.ModelOption) (*nimbus.Message, error) {
		seen = prompt.Messages
		return nimbus.AssistantMessage("ok"), nil
	})
	ctx := nimbus.NewSessionContext(context.Background(), session)
	if _, err := ConversationBuffered(0)(inner).Run(ctx, nimbus.NewPrompt(nimbus.UserMessage("now"))); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(seen) != 3 {
		t.Fatalf("expected history plus prompt, got %d messages", len(seen))
	}
	if !strings.Contains(seen[0].Text(), "earlier question") {
		t.Fatalf("expected history first, got %q", seen[0].Text())
	}
	if !strings.Contains(seen[2].Text(), "now") {
		t.Fatalf("expected prompt last, got %q", seen[2].Text())
	}
}

func TestConversationBufferedTrimsHistory(t *testing.T) {
	session := nimbus.NewSession()
	if err := session.Append(context.Background(), []*nimbus.Message{
		nimbus.UserMessage("one"),
		nimbus.AssistantMessage("two"),
		nimbus.UserMessage("three"),
	}); err != nil {
		t.Fatalf("append: %v", err)
	}

	var seen []*nimbus.Message
	inner := nimbus.RunFunc(func(ctx context.Context, prompt *nimbus.Prompt, opts ...nimbus.ModelOption) (*nimbus.Message, error) {
		seen = prompt.Messages
		return nimbus.AssistantMessage("ok"), nil
	})
	ctx := nimbus.NewSessionContext(context.Background(), session)
	if _, err := ConversationBuffered(1)(inner).Run(ctx, nimbus.NewPrompt(nimbus.UserMessage("now"))); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(seen) != 2 {
		t.Fatalf("expected trimmed history plus prompt, got %d messages", len(seen))
	}
	if !strings.Contains(seen[0].Text(), "three") {
		t.Fatalf("expected most recent history entry, got %q", seen[0].Text())
	}
}

func TestConversationBufferedWithoutSession(t *testing.T) {
	inner := nimbus.RunFunc(func(ctx context.Context, prompt *nimbus.Prompt, opts ...nimbus.ModelOption) (*nimbus.Message, error) {
		if len(prompt.Messages) != 1 {
			t.Fatalf("expected untouched prompt, got %d messages", len(prompt.Messages))
		}
		return nimbus.AssistantMessage("ok"), nil
	})
	if _, err := ConversationBuffered(5)(inner).Run(context.Background(), nimbus.NewPrompt(nimbus.UserMessage("solo"))); err != nil {
		t.Fatalf("run: %v", err)
	}
}

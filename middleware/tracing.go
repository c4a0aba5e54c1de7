package middleware

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/nimbusworks/nimbus"
)

const traceScope = "nimbus"

// TraceOption configures the tracing middleware.
type TraceOption func(*tracing)

// tracing holds configuration for the agent tracing middleware.
type tracing struct {
	system string
	tracer trace.Tracer
	next   nimbus.Runnable
}

// WithSystem sets the AI system name for spans, e.g. "openai" or
// "aws.bedrock".
func WithSystem(system string) TraceOption {
	return func(t *tracing) {
		t.system = system
	}
}

// WithTracerProvider sets a custom TracerProvider for the middleware.
func WithTracerProvider(tp trace.TracerProvider) TraceOption {
	return func(t *tracing) {
		t.tracer = tp.Tracer(traceScope)
	}
}

// Tracing returns a middleware that records an OpenTelemetry span around
// each agent invocation with GenAI semantic convention attributes.
func Tracing(opts ...TraceOption) nimbus.Middleware {
	t := &tracing{
		system: "_OTHER",
		tracer: otel.GetTracerProvider().Tracer(traceScope),
	}
	for _, o := range opts {
		o(t)
	}
	return func(next nimbus.Runnable) nimbus.Runnable {
		t.next = next
		return t
	}
}

// Run records a span around the wrapped Runnable when agent context is
// present.
func (t *tracing) Run(ctx context.Context, prompt *nimbus.Prompt, opts ...nimbus.ModelOption) (*nimbus.Message, error) {
	ac, ok := nimbus.FromAgentContext(ctx)
	if !ok {
		return t.next.Run(ctx, prompt, opts...)
	}
	ctx, span := t.start(ctx, ac, opts...)
	msg, err := t.next.Run(ctx, prompt, opts...)
	t.end(span, msg, err)
	return msg, err
}

func (t *tracing) start(ctx context.Context, ac *nimbus.AgentContext, opts ...nimbus.ModelOption) (context.Context, trace.Span) {
	ctx, span := t.tracer.Start(ctx, fmt.Sprintf("invoke_agent %s", ac.Name))

	mo := &nimbus.ModelOptions{}
	for _, opt := range opts {
		opt(mo)
	}
	span.SetAttributes(
		semconv.GenAIOperationNameInvokeAgent,
		semconv.GenAISystemKey.String(t.system),
		semconv.GenAIAgentName(ac.Name),
		semconv.GenAIAgentDescription(ac.Description),
		semconv.GenAIRequestModel(ac.Model),
		semconv.GenAIRequestMaxTokens(int(mo.MaxOutputTokens)),
		semconv.GenAIRequestStopSequences(mo.StopSequences...),
		semconv.GenAIRequestTemperature(mo.Temperature),
		semconv.GenAIRequestTopP(mo.TopP),
	)
	if session, ok := nimbus.FromSessionContext(ctx); ok {
		span.SetAttributes(semconv.GenAIConversationID(session.ID()))
	}
	return ctx, span
}

func (t *tracing) end(span trace.Span, msg *nimbus.Message, err error) {
	defer span.End()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}
	span.SetStatus(codes.Ok, codes.Ok.String())
	if msg != nil && msg.FinishReason != "" {
		span.SetAttributes(semconv.GenAIResponseFinishReasons(msg.FinishReason))
	}
}

package nimbus

import (
	"context"

	"github.com/google/jsonschema-go/jsonschema"
)

// ModelOption configures a single request. Providers may ignore options
// they do not support but should prefer best-effort behavior.
type ModelOption func(*ModelOptions)

// ModelOptions holds common request-time controls.
type ModelOptions struct {
	MaxOutputTokens int64
	Temperature     float64
	TopP            float64
	StopSequences   []string
}

// MaxOutputTokens sets the maximum number of tokens to generate in the response.
func MaxOutputTokens(n int64) ModelOption {
	return func(o *ModelOptions) {
		o.MaxOutputTokens = n
	}
}

// Temperature sets the sampling temperature, between 0.0 and 1.0.
func Temperature(t float64) ModelOption {
	return func(o *ModelOptions) {
		o.Temperature = t
	}
}

// TopP sets the nucleus sampling parameter.
func TopP(p float64) ModelOption {
	return func(o *ModelOptions) {
		o.TopP = p
	}
}

// StopSequences sets the sequences at which generation stops.
func StopSequences(seqs ...string) ModelOption {
	return func(o *ModelOptions) {
		o.StopSequences = seqs
	}
}

// ModelRequest is a multimodal chat-style request to the provider.
type ModelRequest struct {
	Model        string
	Messages     []*Message
	Tools        []*Tool
	OutputSchema *jsonschema.Schema
}

// ModelResponse is a single model reply. A reply whose message carries tool
// parts is a tool-call request; otherwise it is a final assistant message.
type ModelResponse struct {
	Message *Message
}

// ModelProvider is an interface for multimodal chat-style models.
type ModelProvider interface {
	// Name returns the provider's model identifier.
	Name() string
	// Generate executes the request and returns a single response.
	Generate(context.Context, *ModelRequest, ...ModelOption) (*ModelResponse, error)
}

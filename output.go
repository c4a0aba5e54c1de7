package nimbus

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
)

// OutputConverter wraps a Runnable and ensures the output decodes into T,
// steering the model with a JSON schema instruction.
type OutputConverter[T any] struct {
	runnable Runnable
}

// NewOutputConverter creates an OutputConverter around the given Runnable.
func NewOutputConverter[T any](runnable Runnable) *OutputConverter[T] {
	return &OutputConverter[T]{runnable: runnable}
}

// Run processes the prompt using the wrapped Runnable and decodes the reply into T.
func (o *OutputConverter[T]) Run(ctx context.Context, prompt *Prompt, opts ...ModelOption) (T, error) {
	var result T
	schema, err := jsonschema.For[T](nil)
	if err != nil {
		return result, err
	}
	b, err := schema.MarshalJSON()
	if err != nil {
		return result, err
	}
	var buf strings.Builder
	buf.WriteString("Your response must be a single RFC8259 compliant JSON document. ")
	buf.WriteString("Do not include any explanations or markdown code blocks. ")
	buf.WriteString("Here is the JSON Schema your output must adhere to:\n")
	buf.Write(b)
	messages := append([]*Message{SystemMessage(buf.String())}, prompt.Messages...)
	output, err := o.runnable.Run(ctx, NewPrompt(messages...), opts...)
	if err != nil {
		return result, err
	}
	if err := DecodeJSON(output.Text(), &result); err != nil {
		return result, err
	}
	return result, nil
}

// CleanJSON strips surrounding markdown code fences and leading prose
// before the first JSON object or array in model output.
func CleanJSON(text string) string {
	s := strings.TrimSpace(text)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}
	if !strings.HasPrefix(s, "{") && !strings.HasPrefix(s, "[") {
		obj := strings.IndexAny(s, "{[")
		if obj >= 0 {
			s = s[obj:]
		}
	}
	return s
}

// DecodeJSON unmarshals model output into v after cleaning fences and prose.
func DecodeJSON(text string, v any) error {
	return json.Unmarshal([]byte(CleanJSON(text)), v)
}

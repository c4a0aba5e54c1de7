package nimbus

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
)

// ToolHandler consumes tool arguments returned by the model (serialized as a
// JSON string) and returns the tool result as JSON.
type ToolHandler func(ctx context.Context, input string) (string, error)

// Tool represents a callable function exposed to the model.
type Tool struct {
	Name        string
	Description string
	InputSchema *jsonschema.Schema
	Handle      ToolHandler
}

// NewTool builds a Tool from a typed handler. The input schema is derived
// from I via reflection; arguments are decoded from JSON before the handler
// runs and the result is encoded back to JSON.
func NewTool[I, O any](name, description string, fn func(context.Context, I) (O, error)) (*Tool, error) {
	schema, err := jsonschema.For[I](nil)
	if err != nil {
		return nil, fmt.Errorf("tool %s: input schema: %w", name, err)
	}
	return &Tool{
		Name:        name,
		Description: description,
		InputSchema: schema,
		Handle: func(ctx context.Context, input string) (string, error) {
			var in I
			if input != "" {
				if err := json.Unmarshal([]byte(input), &in); err != nil {
					return "", fmt.Errorf("tool %s: decode arguments: %w", name, err)
				}
			}
			out, err := fn(ctx, in)
			if err != nil {
				return "", err
			}
			b, err := json.Marshal(out)
			if err != nil {
				return "", fmt.Errorf("tool %s: encode result: %w", name, err)
			}
			return string(b), nil
		},
	}, nil
}

// MustTool is like NewTool but panics on schema derivation failure. Intended
// for package-level tool registration where the input type is static.
func MustTool[I, O any](name, description string, fn func(context.Context, I) (O, error)) *Tool {
	tool, err := NewTool(name, description, fn)
	if err != nil {
		panic(err)
	}
	return tool
}

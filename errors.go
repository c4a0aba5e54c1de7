package nimbus

import "errors"

var (
	// ErrModelProviderRequired is returned when an agent is built without a model provider.
	ErrModelProviderRequired = errors.New("model provider is required")
	// ErrMaxIterationsExceeded is returned when an agent exceeds the maximum allowed tool iterations.
	ErrMaxIterationsExceeded = errors.New("maximum iterations exceeded in agent execution")
	// ErrNoFinalResponse is returned when a run ends without a final assistant message.
	ErrNoFinalResponse = errors.New("run ended without a final response")
	// ErrToolNotFound is returned when the model requests a tool the agent does not have.
	ErrToolNotFound = errors.New("tool not found")
)

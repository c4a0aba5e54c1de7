package graph

import "maps"

// State is the mutable data that flows through a pipeline run, keyed by
// string. Handlers must treat the incoming State as read-only and return a
// new instance with their updates applied.
type State map[string]any

// Clone returns a shallow copy. Nested references are shared, so handlers
// storing maps or slices in the state should replace them rather than mutate.
func (s State) Clone() State {
	if s == nil {
		return State{}
	}
	return State(maps.Clone(map[string]any(s)))
}

// mergeStates merges top-level keys, later updates winning for the same key.
func mergeStates(base State, updates ...State) State {
	merged := base.Clone()
	for _, update := range updates {
		for k, v := range update {
			merged[k] = v
		}
	}
	return merged
}

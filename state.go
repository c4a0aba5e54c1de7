package nimbus

import "maps"

// State holds arbitrary key-value pairs shared across a session.
type State map[string]any

// Clone performs a shallow copy so callers can mutate without affecting the
// original map (nested references are shared intentionally).
func (s State) Clone() State {
	if s == nil {
		return State{}
	}
	return State(maps.Clone(map[string]any(s)))
}

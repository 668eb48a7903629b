package types

import "sort"

// Event represents a typed event emitted during state transitions.
type Event struct {
	Type       string            `json:"type"`
	Attributes map[string]string `json:"attributes"`
}

// SortedKeys returns the attribute keys in lexical order so renderers produce
// deterministic output.
func (e *Event) SortedKeys() []string {
	if e == nil {
		return nil
	}
	keys := make([]string, 0, len(e.Attributes))
	for key := range e.Attributes {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

package types

import "encoding/json"

// DebugStateElement is the wire shape of one entity in a state dump: the
// entity's id plus every occupied component, keyed by component name.
type DebugStateElement struct {
	ID         EntityID                   `json:"id"`
	Components map[string]json.RawMessage `json:"components"`
}

// DebugState is the full dump of every entity matched by a filter.
type DebugState []DebugStateElement

// DebugResourceElement is the wire shape of one resource in a resource dump.
type DebugResourceElement struct {
	Name  string          `json:"name"`
	Value json.RawMessage `json:"value"`
}

// ScheduleInfo describes one registered schedule: its name and the names of
// its systems in execution order.
type ScheduleInfo struct {
	Name    string   `json:"name"`
	Systems []string `json:"systems"`
}

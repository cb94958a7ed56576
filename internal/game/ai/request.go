package ai

import (
	"fmt"

	"github.com/goccy/go-json"

	"github.com/cory-johannsen/fightsim/internal/game/bout"
)

// RequestTable flattens req into the plain map handed to Lua hooks. Keys
// follow the request's JSON field names.
//
// Postcondition: the result holds only maps, slices, strings, numbers and bools.
func RequestTable(req bout.DecisionRequest) (map[string]any, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("ai: encoding decision request: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("ai: decoding decision request: %w", err)
	}
	return out, nil
}

package tools

import (
	"encoding/json"
	"fmt"
)

// Decode unmarshals a tool call's raw argument map into a typed T. Tool
// implementations use this to avoid repeating map[string]any plumbing in
// every Execute function.
func Decode[T any](args map[string]any) (T, error) {
	var out T
	raw, err := json.Marshal(args)
	if err != nil {
		return out, fmt.Errorf("tools: encode args: %w", err)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("tools: decode args: %w", err)
	}
	return out, nil
}

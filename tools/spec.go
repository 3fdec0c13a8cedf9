// Package tools defines the shared metadata types used by the Tool Registry
// (spec §4.3): a name, description, JSON Schema parameter shape, and an
// execute function bound to it.
package tools

import (
	"context"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Ident is the strong type for tool identifiers, kept distinct from plain
// strings so registry lookups and step config cannot silently mix tool names
// with arbitrary text.
type Ident string

type (
	// Spec enumerates the metadata a tool registers under the Tool Registry.
	// description and parameter schema are surfaced to the model as part of
	// the Request.Tools list (model.ToolDefinition).
	Spec struct {
		// Name is the identifier used in manifest config and model tool calls.
		Name Ident
		// Description is shown to the model to decide when to call the tool.
		Description string
		// ParameterSchema is the JSON Schema describing the tool's input, as a
		// decoded map (not serialized text) so it can be attached directly to
		// a model.ToolDefinition.
		ParameterSchema map[string]any
		// Execute invokes the tool with arguments decoded from the model's
		// tool-call payload and returns a JSON-compatible result.
		Execute func(ctx context.Context, args map[string]any) (any, error)
	}
)

// Validate checks that spec has the fields a registry entry requires and
// that ParameterSchema, when present, is itself a well-formed JSON Schema
// document. This runs once at registration time so malformed tool schemas
// fail fast instead of surfacing as confusing provider-side errors later.
func (s Spec) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("tools: name is required")
	}
	if s.Execute == nil {
		return fmt.Errorf("tools: %s: execute is required", s.Name)
	}
	if s.ParameterSchema == nil {
		return nil
	}
	compiler := jsonschema.NewCompiler()
	const resource = "inline://tool-schema.json"
	if err := compiler.AddResource(resource, s.ParameterSchema); err != nil {
		return fmt.Errorf("tools: %s: invalid parameter schema: %w", s.Name, err)
	}
	if _, err := compiler.Compile(resource); err != nil {
		return fmt.Errorf("tools: %s: invalid parameter schema: %w", s.Name, err)
	}
	return nil
}

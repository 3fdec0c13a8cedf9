// Package primitives implements the core handler vocabulary (spec §4.5-4.9):
// llm (blocking), chat (streaming), output-generator (deterministic
// transform), and call-agent (sub-agent composition). Each primitive
// registers itself into the Handler Registry under its step type name via
// an init function, the same "populated at module init" lifecycle the
// spec's Registries section describes for built-ins.
package primitives

import (
	"context"
	"errors"
	"fmt"

	"github.com/botanarede/beddel-alpha/model"
	"github.com/botanarede/beddel-alpha/registry"
	"github.com/botanarede/beddel-alpha/vars"
	"github.com/botanarede/beddel-alpha/workflow"
)

// DefaultMaxToolLoopSteps bounds the llm primitive's internal tool-calling
// loop when the step config does not set one explicitly (spec §4.5's
// "bounded by a step-count limit; recommended default: 5").
const DefaultMaxToolLoopSteps = 5

func init() {
	registry.RegisterHandler("llm", LLMHandler)
}

// ErrProviderNotFound indicates the step's provider name has no registered
// model client.
var ErrProviderNotFound = errors.New("primitives: provider not registered")

// ErrToolNotFound indicates a step's tools config names a tool absent from
// the Tool Registry.
var ErrToolNotFound = errors.New("primitives: tool not registered")

// llmConfig is the decoded shape of an llm/chat step's config mapping.
type llmConfig struct {
	Provider    string
	Model       string
	System      any
	Messages    any
	Tools       []string
	Temperature float64
	MaxTokens   int
	MaxToolLoop int
}

func decodeLLMConfig(raw map[string]any) llmConfig {
	cfg := llmConfig{Provider: "default", Temperature: 0, MaxToolLoop: DefaultMaxToolLoopSteps}
	if v, ok := raw["provider"].(string); ok && v != "" {
		cfg.Provider = v
	}
	if v, ok := raw["model"].(string); ok {
		cfg.Model = v
	}
	cfg.System = raw["system"]
	cfg.Messages = raw["messages"]
	if v, ok := raw["temperature"].(float64); ok {
		cfg.Temperature = v
	}
	if v, ok := raw["maxTokens"].(float64); ok {
		cfg.MaxTokens = int(v)
	}
	switch v := raw["maxToolSteps"].(type) {
	case int:
		if v > 0 {
			cfg.MaxToolLoop = v
		}
	case float64:
		if v > 0 {
			cfg.MaxToolLoop = int(v)
		}
	}
	switch tools := raw["tools"].(type) {
	case []any:
		for _, t := range tools {
			if name, ok := t.(string); ok {
				cfg.Tools = append(cfg.Tools, name)
			}
		}
	case []string:
		cfg.Tools = tools
	}
	return cfg
}

// resolveToolDefinitions looks up each named tool in the Tool Registry and
// adapts it to a model.ToolDefinition.
func resolveToolDefinitions(names []string) ([]model.ToolDefinition, error) {
	if len(names) == 0 {
		return nil, nil
	}
	defs := make([]model.ToolDefinition, 0, len(names))
	for _, name := range names {
		spec, ok := registry.GetTool(name)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrToolNotFound, name)
		}
		defs = append(defs, model.ToolDefinition{
			Name:        string(spec.Name),
			Description: spec.Description,
			InputSchema: spec.ParameterSchema,
		})
	}
	return defs, nil
}

// LLMHandler implements the llm primitive (spec §4.5): a single blocking
// generation, with an optional bounded tool-calling loop when the step
// declares tools.
func LLMHandler(ctx context.Context, config map[string]any) (any, error) {
	cfg := decodeLLMConfig(config)

	execCtx, _ := workflow.FromContext(ctx)
	resolveCtx := vars.Context{}
	if execCtx != nil {
		resolveCtx = vars.Context{Input: execCtx.Input, Variables: execCtx.Variables()}
	}

	system := vars.Resolve(cfg.System, resolveCtx)
	messages := vars.Resolve(cfg.Messages, resolveCtx)

	client, ok := registry.GetProvider(cfg.Provider)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProviderNotFound, cfg.Provider)
	}

	msgs, err := toModelMessages(system, messages)
	if err != nil {
		return nil, err
	}

	toolDefs, err := resolveToolDefinitions(cfg.Tools)
	if err != nil {
		return nil, err
	}

	req := model.Request{
		Model:       cfg.Model,
		Messages:    msgs,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
		Tools:       toolDefs,
	}

	var lastResp model.Response
	for step := 0; step < cfg.MaxToolLoop; step++ {
		resp, err := client.Complete(ctx, req)
		if err != nil {
			return nil, err
		}
		lastResp = resp
		if len(resp.ToolCalls) == 0 || len(toolDefs) == 0 {
			break
		}
		req.Messages = append(req.Messages, assistantToolCallMessage(resp), toolResultMessage(ctx, resp.ToolCalls)...)
	}

	return workflow.Record{
		"text": lastResp.Text,
		"usage": map[string]any{
			"inputTokens":  lastResp.Usage.InputTokens,
			"outputTokens": lastResp.Usage.OutputTokens,
			"totalTokens":  lastResp.Usage.TotalTokens,
		},
	}, nil
}

func assistantToolCallMessage(resp model.Response) model.Message {
	parts := make([]model.Part, 0, len(resp.ToolCalls)+1)
	if resp.Text != "" {
		parts = append(parts, model.TextPart{Text: resp.Text})
	}
	for _, tc := range resp.ToolCalls {
		var input any
		_ = jsonUnmarshalLoose(tc.Payload, &input)
		parts = append(parts, model.ToolUsePart{ID: tc.ID, Name: tc.Name, Input: input})
	}
	return model.Message{Role: model.RoleAssistant, Parts: parts}
}

func toolResultMessage(ctx context.Context, calls []model.ToolCall) []model.Message {
	msgs := make([]model.Message, 0, len(calls))
	for _, tc := range calls {
		result, isErr := invokeTool(ctx, tc)
		msgs = append(msgs, model.Message{
			Role:  model.RoleUser,
			Parts: []model.Part{model.ToolResultPart{ToolUseID: tc.ID, Content: result, IsError: isErr}},
		})
	}
	return msgs
}

func invokeTool(ctx context.Context, tc model.ToolCall) (any, bool) {
	spec, ok := registry.GetTool(tc.Name)
	if !ok {
		return fmt.Sprintf("tool %q not registered", tc.Name), true
	}
	var args map[string]any
	if err := jsonUnmarshalLoose(tc.Payload, &args); err != nil {
		return fmt.Sprintf("invalid tool arguments: %v", err), true
	}
	result, err := spec.Execute(ctx, args)
	if err != nil {
		return err.Error(), true
	}
	return result, false
}

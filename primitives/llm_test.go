package primitives

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/botanarede/beddel-alpha/model"
	"github.com/botanarede/beddel-alpha/registry"
	"github.com/botanarede/beddel-alpha/tools"
	"github.com/botanarede/beddel-alpha/workflow"
)

type fakeClient struct {
	responses []model.Response
	calls     int
}

func (f *fakeClient) Complete(ctx context.Context, req model.Request) (model.Response, error) {
	resp := f.responses[f.calls]
	f.calls++
	return resp, nil
}

func (f *fakeClient) Stream(ctx context.Context, req model.Request) (model.Streamer, error) {
	return nil, model.ErrStreamingUnsupported
}

func TestLLMHandlerBasicCompletion(t *testing.T) {
	client := &fakeClient{responses: []model.Response{{Text: "hello there", Usage: model.TokenUsage{TotalTokens: 12}}}}
	registry.RegisterProvider("llm-test-basic", client)
	t.Cleanup(func() { registry.RegisterProvider("llm-test-basic", nil) })

	result, err := LLMHandler(context.Background(), map[string]any{
		"provider": "llm-test-basic",
		"system":   "you are terse",
		"messages": []any{map[string]any{"role": "user", "content": "hi"}},
	})
	require.NoError(t, err)

	out := result.(workflow.Record)
	assert.Equal(t, "hello there", out["text"])
	assert.Equal(t, 1, client.calls)
}

func TestLLMHandlerMissingProvider(t *testing.T) {
	_, err := LLMHandler(context.Background(), map[string]any{
		"provider": "does-not-exist",
		"messages": []any{},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrProviderNotFound)
}

func TestLLMHandlerToolLoop(t *testing.T) {
	payload, _ := json.Marshal(map[string]any{"x": 1})
	client := &fakeClient{responses: []model.Response{
		{ToolCalls: []model.ToolCall{{ID: "t1", Name: "adder", Payload: payload}}},
		{Text: "done"},
	}}
	registry.RegisterProvider("llm-test-tools", client)
	t.Cleanup(func() { registry.RegisterProvider("llm-test-tools", nil) })

	err := registry.RegisterTool(tools.Spec{
		Name:        "adder",
		Description: "adds one",
		ParameterSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"x": map[string]any{"type": "number"},
			},
		},
		Execute: func(ctx context.Context, args map[string]any) (any, error) {
			return map[string]any{"sum": 2}, nil
		},
	})
	require.NoError(t, err)

	result, err := LLMHandler(context.Background(), map[string]any{
		"provider": "llm-test-tools",
		"tools":    []any{"adder"},
		"messages": []any{map[string]any{"role": "user", "content": "add one to 1"}},
	})
	require.NoError(t, err)
	out := result.(workflow.Record)
	assert.Equal(t, "done", out["text"])
	assert.Equal(t, 2, client.calls)
}

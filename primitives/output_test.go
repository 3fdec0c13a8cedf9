package primitives

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/botanarede/beddel-alpha/workflow"
)

func TestOutputHandlerNeitherSet(t *testing.T) {
	result, err := OutputHandler(context.Background(), map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, workflow.Record{}, result)
}

func TestOutputHandlerJSONFencedCodeBlock(t *testing.T) {
	result, err := OutputHandler(context.Background(), map[string]any{
		"json": "```json\n{\"tags\":[\"a\",\"b\"]}\n```",
	})
	require.NoError(t, err)
	out := result.(workflow.Record)
	assert.Equal(t, []any{"a", "b"}, out["tags"])
}

func TestOutputHandlerJSONBalancedScan(t *testing.T) {
	result, err := OutputHandler(context.Background(), map[string]any{
		"json": "here is your answer: {\"ok\":true} thanks",
	})
	require.NoError(t, err)
	out := result.(workflow.Record)
	assert.Equal(t, true, out["ok"])
}

func TestOutputHandlerJSONParseFailureYieldsEmpty(t *testing.T) {
	result, err := OutputHandler(context.Background(), map[string]any{
		"json": "not json at all",
	})
	require.NoError(t, err)
	assert.Equal(t, workflow.Record{}, result)
}

func TestOutputHandlerTemplateWrapsNonMapping(t *testing.T) {
	result, err := OutputHandler(context.Background(), map[string]any{
		"template": "plain string",
	})
	require.NoError(t, err)
	out := result.(workflow.Record)
	assert.Equal(t, "plain string", out["value"])
}

func TestOutputHandlerTemplateReferencesParsedJSON(t *testing.T) {
	result, err := OutputHandler(context.Background(), map[string]any{
		"json":     map[string]any{"tags": []any{"x"}},
		"template": map[string]any{"firstTag": "$json.tags.0"},
	})
	require.NoError(t, err)
	out := result.(workflow.Record)
	assert.Equal(t, "x", out["firstTag"])
}

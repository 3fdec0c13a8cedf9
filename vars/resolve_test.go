package vars

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseCtx() Context {
	return Context{
		Input: map[string]any{
			"messages": []any{
				map[string]any{"role": "user", "text": "hi"},
			},
		},
		Variables: map[string]any{
			"step1": map[string]any{
				"text":  "hello world",
				"usage": map[string]any{"inputTokens": float64(12)},
			},
		},
	}
}

func TestResolveWholeValueInput(t *testing.T) {
	got := Resolve("$input.messages.0.text", baseCtx())
	assert.Equal(t, "hi", got)
}

func TestResolveWholeValueStepResult(t *testing.T) {
	got := Resolve("$stepResult.step1.usage.inputTokens", baseCtx())
	assert.Equal(t, float64(12), got)
}

func TestResolveWholeValueLegacyAlias(t *testing.T) {
	got := Resolve("$step1.text", baseCtx())
	assert.Equal(t, "hello world", got)
}

func TestResolveWholeValueEnv(t *testing.T) {
	require.NoError(t, os.Setenv("VARS_TEST_KEY", "secret-value"))
	defer os.Unsetenv("VARS_TEST_KEY")

	got := Resolve("$env.VARS_TEST_KEY", baseCtx())
	assert.Equal(t, "secret-value", got)
}

func TestResolveWholeValueUndefined(t *testing.T) {
	got := Resolve("$stepResult.missing.text", baseCtx())
	assert.True(t, IsUndefined(got))
}

func TestResolveWholeValueThroughNonObject(t *testing.T) {
	got := Resolve("$stepResult.step1.text.nope", baseCtx())
	assert.True(t, IsUndefined(got))
}

func TestResolveStringInterpolation(t *testing.T) {
	got := Resolve("Result: $step1.text!", baseCtx())
	assert.Equal(t, "Result: hello world!", got)
}

func TestResolveStringInterpolationLeavesUnresolvedVerbatim(t *testing.T) {
	got := Resolve("Missing: $nope.text here", baseCtx())
	assert.Equal(t, "Missing: $nope.text here", got)
}

func TestResolveEscapedDollar(t *testing.T) {
	got := Resolve("$$not.a.reference", baseCtx())
	assert.Equal(t, "$not.a.reference", got)
}

func TestResolveRecursesThroughContainers(t *testing.T) {
	template := map[string]any{
		"greeting": "$step1.text",
		"items":    []any{"$step1.text", "literal"},
	}
	got := Resolve(template, baseCtx())
	m, ok := got.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "hello world", m["greeting"])
	items, ok := m["items"].([]any)
	require.True(t, ok)
	assert.Equal(t, []any{"hello world", "literal"}, items)
}

func TestResolvePlainStringUnchanged(t *testing.T) {
	got := Resolve("no references here", baseCtx())
	assert.Equal(t, "no references here", got)
}

func TestResolveNonStringPassthrough(t *testing.T) {
	assert.Equal(t, 42, Resolve(42, baseCtx()))
	assert.Equal(t, true, Resolve(true, baseCtx()))
	assert.Nil(t, Resolve(nil, baseCtx()))
}

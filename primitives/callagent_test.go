package primitives

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/botanarede/beddel-alpha/registry"
	"github.com/botanarede/beddel-alpha/workflow"
)

const subAgentManifest = `
metadata:
  name: sub
  version: "1.0.0"
workflow:
  - id: only
    type: test-record
    config:
      greeting: hello from sub-agent
`

func writeSubAgent(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "sub.yaml")
	require.NoError(t, os.WriteFile(path, []byte(subAgentManifest), 0o644))
	return path
}

func TestCallAgentHandlerPropagatesRecord(t *testing.T) {
	path := writeSubAgent(t)
	registry.RegisterHandler("test-record", func(ctx context.Context, config map[string]any) (any, error) {
		return workflow.Record{"greeting": config["greeting"]}, nil
	})
	t.Cleanup(func() { SetAgentResolver(nil) })

	SetAgentResolver(func(ctx context.Context, agentID string) (string, error) {
		require.Equal(t, "sub-agent", agentID)
		return path, nil
	})

	result, err := CallAgentHandler(context.Background(), map[string]any{"agentId": "sub-agent"})
	require.NoError(t, err)
	out := result.(workflow.Record)
	assert.Equal(t, "hello from sub-agent", out["greeting"])
}

func TestCallAgentHandlerRequiresResolver(t *testing.T) {
	SetAgentResolver(nil)
	_, err := CallAgentHandler(context.Background(), map[string]any{"agentId": "anything"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAgentResolverUnset)
}

func TestCallAgentHandlerMissingAgentID(t *testing.T) {
	SetAgentResolver(func(ctx context.Context, agentID string) (string, error) { return "", nil })
	t.Cleanup(func() { SetAgentResolver(nil) })

	_, err := CallAgentHandler(context.Background(), map[string]any{})
	require.Error(t, err)
}

// TestCallAgentHandlerInheritsParentMaxAgentDepth confirms a nested executor
// is built with the caller's Options rather than the package default, so a
// parent that tightened MaxAgentDepth has that limit enforced on every
// call-agent hop instead of silently reverting to 8.
func TestCallAgentHandlerInheritsParentMaxAgentDepth(t *testing.T) {
	path := writeSubAgent(t)
	registry.RegisterHandler("test-record", func(ctx context.Context, config map[string]any) (any, error) {
		return workflow.Record{"greeting": config["greeting"]}, nil
	})
	t.Cleanup(func() { SetAgentResolver(nil) })

	SetAgentResolver(func(ctx context.Context, agentID string) (string, error) {
		return path, nil
	})

	execCtx := workflow.NewContext(nil, false)
	execCtx.Depth = 1
	execCtx.Options = workflow.Options{MaxAgentDepth: 1}
	ctx := workflow.WithExecutionContext(context.Background(), execCtx)

	_, err := CallAgentHandler(ctx, map[string]any{"agentId": "sub-agent"})
	require.Error(t, err)
	var depthErr *workflow.ErrMaxAgentDepth
	assert.ErrorAs(t, err, &depthErr)
	assert.Equal(t, 1, depthErr.Limit)
}

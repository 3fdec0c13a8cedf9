package primitives

import (
	"context"
	"errors"
	"fmt"

	"github.com/botanarede/beddel-alpha/manifest"
	"github.com/botanarede/beddel-alpha/registry"
	"github.com/botanarede/beddel-alpha/vars"
	"github.com/botanarede/beddel-alpha/workflow"
)

func init() {
	registry.RegisterHandler("call-agent", CallAgentHandler)
}

// ErrAgentResolverUnset indicates no path-resolver has been configured, so
// call-agent steps cannot locate a sub-agent manifest by id.
var ErrAgentResolverUnset = errors.New("primitives: no agent resolver configured")

// AgentResolver locates the manifest path for an agentId. The core does not
// discover agents on disk itself (spec Non-goals); the embedding application
// supplies this collaborator, e.g. backed by a directory convention or a
// registry service.
type AgentResolver func(ctx context.Context, agentID string) (string, error)

var agentResolver AgentResolver

// SetAgentResolver installs the path-resolver call-agent consults to turn an
// agentId into a loadable manifest path. Call once at bootstrap, alongside
// registry.RegisterProvider/RegisterTool calls.
func SetAgentResolver(r AgentResolver) { agentResolver = r }

// CallAgentHandler implements the call-agent primitive (spec §4.8):
// composition by re-entering the executor against a sub-agent manifest. The
// sub-execution owns its own Context; traces are not merged across the
// boundary.
func CallAgentHandler(ctx context.Context, config map[string]any) (any, error) {
	if agentResolver == nil {
		return nil, ErrAgentResolverUnset
	}

	execCtx, _ := workflow.FromContext(ctx)
	resolveCtx := vars.Context{}
	if execCtx != nil {
		resolveCtx = vars.Context{Input: execCtx.Input, Variables: execCtx.Variables()}
	}

	agentID, _ := vars.Resolve(config["agentId"], resolveCtx).(string)
	if agentID == "" {
		return nil, fmt.Errorf("primitives: call-agent requires a non-empty agentId")
	}

	input := vars.Resolve(config["input"], resolveCtx)
	if input == nil && execCtx != nil {
		input = execCtx.Input
	}

	path, err := agentResolver(ctx, agentID)
	if err != nil {
		return nil, fmt.Errorf("primitives: resolving agent %q: %w", agentID, err)
	}

	sub, err := manifest.Load(path)
	if err != nil {
		return nil, fmt.Errorf("primitives: loading agent %q: %w", agentID, err)
	}

	callerDepth := 0
	var opts workflow.Options
	if execCtx != nil {
		callerDepth = execCtx.Depth
		opts = execCtx.Options
	}

	exec := workflow.New(sub, opts)
	result, err := exec.ExecuteNested(ctx, input, callerDepth)
	if err != nil {
		return nil, err
	}

	switch v := result.(type) {
	case workflow.Response:
		return v, nil
	case map[string]any:
		return workflow.Record(v), nil
	default:
		return workflow.Record{"value": v}, nil
	}
}

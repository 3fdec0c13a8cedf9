package workflow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/codes"

	"github.com/botanarede/beddel-alpha/manifest"
	"github.com/botanarede/beddel-alpha/registry"
	"github.com/botanarede/beddel-alpha/telemetry"
	"github.com/botanarede/beddel-alpha/vars"
)

// MaxAgentDepth bounds call-agent recursion (spec §9 Open Question,
// resolved per SPEC_FULL supplemented feature #2): a call-agent chain deeper
// than this fails with ErrMaxAgentDepth rather than recursing unboundedly.
const MaxAgentDepth = 8

// Options configures an Executor beyond what the manifest itself specifies.
type Options struct {
	Logger  telemetry.Logger
	Metrics telemetry.Metrics
	Tracer  telemetry.Tracer

	// MaxAgentDepth overrides the default call-agent recursion limit. Zero
	// means use the package default (8).
	MaxAgentDepth int
}

func (o Options) maxAgentDepth() int {
	if o.MaxAgentDepth > 0 {
		return o.MaxAgentDepth
	}
	return MaxAgentDepth
}

// Executor runs one manifest's workflow sequentially against a fresh
// Execution Context per call. An Executor is stateless across calls: it may
// be constructed once and reused, or built fresh per invocation.
type Executor struct {
	manifest *manifest.Manifest
	opts     Options
}

// New constructs an Executor bound to m.
func New(m *manifest.Manifest, opts Options) *Executor {
	if opts.Logger == nil {
		opts.Logger = telemetry.NewNoopLogger()
	}
	if opts.Metrics == nil {
		opts.Metrics = telemetry.NewNoopMetrics()
	}
	if opts.Tracer == nil {
		opts.Tracer = telemetry.NewNoopTracer()
	}
	return &Executor{manifest: m, opts: opts}
}

// ErrMaxAgentDepth is returned when a call-agent chain would exceed the
// configured recursion limit.
type ErrMaxAgentDepth struct{ Limit int }

func (e *ErrMaxAgentDepth) Error() string {
	return fmt.Sprintf("workflow: call-agent depth exceeds limit of %d", e.Limit)
}

// Execute runs the bound manifest's workflow against input, implementing the
// algorithm of spec §4.4. It returns either a Response (the pipeline
// short-circuited on a streaming handler) or a map[string]any (possibly with
// __trace attached).
func (e *Executor) Execute(ctx context.Context, input any) (any, error) {
	return e.execute(ctx, input, 0)
}

// ExecuteNested is the call-agent entry point (spec §4.8): it re-enters the
// executor with a fresh Context, carrying the caller's recursion depth so
// the limit applies across the whole chain, not per Executor instance.
// callerDepth is the parent Context's Depth; the sub-execution runs at
// callerDepth+1.
func (e *Executor) ExecuteNested(ctx context.Context, input any, callerDepth int) (any, error) {
	return e.execute(ctx, input, callerDepth+1)
}

func (e *Executor) execute(ctx context.Context, input any, depth int) (any, error) {
	if depth > e.opts.maxAgentDepth() {
		return nil, &ErrMaxAgentDepth{Limit: e.opts.maxAgentDepth()}
	}

	steps := e.manifest.Workflow
	total := len(steps)
	execCtx := NewContext(input, e.manifest.Metadata.Observability.Enabled)
	execCtx.Depth = depth
	execCtx.Options = e.opts
	ctx = WithExecutionContext(ctx, execCtx)

	var lastResult any
	var lastStepHadResult bool

	for i, step := range steps {
		handler, ok := registry.GetHandler(step.Type)
		if !ok {
			return nil, fmt.Errorf("workflow: unknown step type %q for step %q (registered: %s)",
				step.Type, step.ID, strings.Join(registry.HandlerNames(), ", "))
		}

		execCtx.pushEvent(telemetry.Event{
			Type:       telemetry.EventStart,
			StepID:     step.ID,
			StepType:   step.Type,
			StepIndex:  i,
			TotalSteps: total,
			Timestamp:  now(),
		})
		e.opts.Logger.Debug(ctx, "workflow: step start", "stepId", step.ID, "stepType", step.Type)
		spanCtx, span := e.opts.Tracer.Start(ctx, step.Type)
		start := now()

		result, err := handler(spanCtx, step.Config)
		duration := now().Sub(start)

		if err != nil {
			errType := telemetry.Classify(err)
			execCtx.pushEvent(telemetry.Event{
				Type:       telemetry.EventError,
				StepID:     step.ID,
				StepType:   step.Type,
				StepIndex:  i,
				TotalSteps: total,
				Timestamp:  now(),
				Duration:   duration,
				ErrorType:  errType,
			})
			e.opts.Logger.Debug(ctx, "workflow: step error", "stepId", step.ID, "stepType", step.Type, "errorType", string(errType))
			e.opts.Metrics.IncCounter("workflow.step.error", 1, "stepType", step.Type)
			span.RecordError(err)
			span.SetStatus(codes.Error, string(errType))
			span.End()
			return nil, err
		}

		execCtx.pushEvent(telemetry.Event{
			Type:       telemetry.EventComplete,
			StepID:     step.ID,
			StepType:   step.Type,
			StepIndex:  i,
			TotalSteps: total,
			Timestamp:  now(),
			Duration:   duration,
		})
		e.opts.Logger.Debug(ctx, "workflow: step complete", "stepId", step.ID, "stepType", step.Type)
		e.opts.Metrics.RecordTimer("workflow.step.duration", duration, "stepType", step.Type)
		span.End()

		switch v := result.(type) {
		case Response:
			return v, nil
		case Record:
			lastResult = map[string]any(v)
			lastStepHadResult = step.Result != ""
			if step.Result != "" {
				execCtx.SetVariable(step.Result, map[string]any(v))
			}
		default:
			return nil, fmt.Errorf("workflow: handler for step %q returned unsupported output type %T", step.ID, result)
		}
	}

	return e.buildReturn(execCtx, lastResult, lastStepHadResult)
}

// buildReturn computes the Execute return value per §4.4 step 4: the
// manifest's return template if set, else the last step's bare result if it
// had no result slot, else the accumulated variables.
func (e *Executor) buildReturn(execCtx *Context, lastResult any, lastStepHadResult bool) (any, error) {
	var out map[string]any

	switch {
	case e.manifest.Return != nil:
		resolved := vars.Resolve(e.manifest.Return, vars.Context{
			Input:     execCtx.Input,
			Variables: execCtx.Variables(),
		})
		if m, ok := resolved.(map[string]any); ok {
			out = m
		} else {
			out = map[string]any{"value": resolved}
		}
	case !lastStepHadResult:
		if m, ok := lastResult.(map[string]any); ok {
			out = m
		} else {
			out = map[string]any{"value": lastResult}
		}
	default:
		out = execCtx.Variables()
	}

	if trace := execCtx.Trace(); len(trace) > 0 {
		merged := make(map[string]any, len(out)+1)
		for k, v := range out {
			merged[k] = v
		}
		merged["__trace"] = trace
		out = merged
	}
	return out, nil
}

func now() time.Time { return time.Now() }

// Package workflow implements the Execution Context and sequential executor
// (spec §4.4): the single-threaded scheduler that drives a manifest's steps
// in order, dispatching each step's raw config to its bound handler (which
// resolves variable references itself), and accumulating results into the
// shared Context.
package workflow

import (
	"context"
	"sync"

	"github.com/botanarede/beddel-alpha/telemetry"
)

// Context is created per Execute call and owned exclusively by the executor
// for its duration. Handlers receive a borrowed reference and may mutate it
// only through their returned Record (which the executor writes into
// variables under step.result).
type Context struct {
	// Input is the opaque request payload, conventionally a mapping
	// containing "messages".
	Input any

	mu sync.Mutex
	// variables is an insertion-preserving mapping from variable name to
	// resolved step result.
	variables map[string]any
	order     []string

	// trace accumulates sanitized lifecycle events when observability is
	// enabled for this execution; nil when disabled.
	trace []telemetry.Event

	// Depth counts call-agent re-entries into the executor for this request
	// chain, enforced against Options.MaxAgentDepth (spec §9 Open Question,
	// resolved per SPEC_FULL supplemented feature #2).
	Depth int

	// Options is the Options the owning Executor was constructed with.
	// call-agent reads this so a nested Executor inherits the caller's
	// MaxAgentDepth/Logger/Metrics/Tracer instead of silently reverting to
	// package defaults for every sub-agent hop.
	Options Options
}

// NewContext constructs an Execution Context for a single top-level
// Execute call. observabilityEnabled controls whether trace starts as an
// empty, non-nil slice (so Len(trace) >= 0 can be observed) or stays nil.
func NewContext(input any, observabilityEnabled bool) *Context {
	c := &Context{Input: input, variables: make(map[string]any)}
	if observabilityEnabled {
		c.trace = make([]telemetry.Event, 0)
	}
	return c
}

// Variable returns the stored value for name and whether it was set.
func (c *Context) Variable(name string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.variables[name]
	return v, ok
}

// Variables returns a snapshot of the resolved context variables as a plain
// map (unordered; see OrderedVariableNames for insertion order), suitable for
// the variable resolver or as the accumulated-variables return value.
func (c *Context) Variables() map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]any, len(c.variables))
	for k, v := range c.variables {
		out[k] = v
	}
	return out
}

// OrderedVariableNames returns variable names in the order they were first
// set, needed when the executor falls back to materializing all variables
// as the return value.
func (c *Context) OrderedVariableNames() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// SetVariable stores a step's Record result under name.
func (c *Context) SetVariable(name string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.variables[name]; !exists {
		c.order = append(c.order, name)
	}
	c.variables[name] = value
}

// TraceEnabled reports whether this context accumulates trace events.
func (c *Context) TraceEnabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.trace != nil
}

// Trace returns a snapshot of the accumulated trace events.
func (c *Context) Trace() []telemetry.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]telemetry.Event, len(c.trace))
	copy(out, c.trace)
	return out
}

// pushEvent appends ev to the trace if tracing is enabled. Wrapped so a
// trace-layer failure (there is none today, but future sinks may fail) can
// never mask the original step error, per §4.4.3.f.
func (c *Context) pushEvent(ev telemetry.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.trace == nil {
		return
	}
	c.trace = append(c.trace, ev)
}

type ctxKey struct{}

// WithExecutionContext attaches exec to ctx so nested calls (handler
// implementations, sub-agent invocations) can recover it without threading
// an extra parameter through every registered Handler signature.
func WithExecutionContext(ctx context.Context, exec *Context) context.Context {
	return context.WithValue(ctx, ctxKey{}, exec)
}

// FromContext recovers the Execution Context attached by
// WithExecutionContext, if any.
func FromContext(ctx context.Context) (*Context, bool) {
	v, ok := ctx.Value(ctxKey{}).(*Context)
	return v, ok
}

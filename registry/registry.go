// Package registry implements the four process-wide registries the executor
// and primitives resolve against by name: Handler, Provider, Tool, and
// Callback (spec §4.3). All four share override-with-warning semantics: a
// second registration under the same name replaces the first and logs a
// warning rather than failing, since reloading a manifest-driven process
// (tests, hot config reload) commonly re-registers the same names.
package registry

import (
	"context"
	"sync"

	"github.com/botanarede/beddel-alpha/model"
	"github.com/botanarede/beddel-alpha/telemetry"
	"github.com/botanarede/beddel-alpha/tools"
)

// Handler is the contract every step type (llm, chat, output-generator,
// call-agent, or an extension) implements to participate in the executor.
// config is the step's configuration map as written in the manifest (the
// handler resolves any variable references in it); ctx carries the
// execution Context value under a package-agnostic key so primitives can
// recover it without an import cycle on workflow.
type Handler func(ctx context.Context, config map[string]any) (any, error)

// store is a generic name -> value map guarded by a mutex, with
// override-with-warning registration. It backs all four registries so the
// locking and logging logic is written once.
type store[T any] struct {
	mu     sync.RWMutex
	items  map[string]T
	kind   string
	logger telemetry.Logger
}

func newStore[T any](kind string) *store[T] {
	return &store[T]{items: make(map[string]T), kind: kind, logger: telemetry.NewNoopLogger()}
}

// SetLogger directs override warnings to logger instead of the default
// no-op logger. Call once during process startup, before any Register call
// whose warnings you want observed.
func (s *store[T]) SetLogger(logger telemetry.Logger) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if logger != nil {
		s.logger = logger
	}
}

func (s *store[T]) register(name string, value T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.items[name]; exists {
		s.logger.Warn(context.Background(), "registry: overriding existing registration",
			"kind", s.kind, "name", name)
	}
	s.items[name] = value
}

func (s *store[T]) get(name string) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.items[name]
	return v, ok
}

func (s *store[T]) names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.items))
	for k := range s.items {
		out = append(out, k)
	}
	return out
}

func (s *store[T]) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[string]T)
}

var (
	handlers  = newStore[Handler]("handler")
	providers = newStore[model.Client]("provider")
	toolSpecs = newStore[tools.Spec]("tool")
	callbacks = newStore[Callback]("callback")
)

// Callback is the signature for onFinish/onError hooks the chat primitive
// looks up by name from step config (spec §4.7).
type Callback func(ctx context.Context, payload any) error

// SetLoggers directs override-warning output from all four registries to
// logger. Call once during process startup.
func SetLoggers(logger telemetry.Logger) {
	handlers.SetLogger(logger)
	providers.SetLogger(logger)
	toolSpecs.SetLogger(logger)
	callbacks.SetLogger(logger)
}

// RegisterHandler registers a step-type handler under name, overriding and
// warning if name is already bound.
func RegisterHandler(name string, h Handler) { handlers.register(name, h) }

// GetHandler looks up a registered step-type handler.
func GetHandler(name string) (Handler, bool) { return handlers.get(name) }

// HandlerNames lists all registered step-type names.
func HandlerNames() []string { return handlers.names() }

// RegisterProvider registers a model client under name.
func RegisterProvider(name string, c model.Client) { providers.register(name, c) }

// GetProvider looks up a registered model client.
func GetProvider(name string) (model.Client, bool) { return providers.get(name) }

// ProviderNames lists all registered provider names.
func ProviderNames() []string { return providers.names() }

// RegisterTool registers a tool spec under its own Name.
func RegisterTool(spec tools.Spec) error {
	if err := spec.Validate(); err != nil {
		return err
	}
	toolSpecs.register(string(spec.Name), spec)
	return nil
}

// GetTool looks up a registered tool spec by name.
func GetTool(name string) (tools.Spec, bool) { return toolSpecs.get(name) }

// ToolNames lists all registered tool names.
func ToolNames() []string { return toolSpecs.names() }

// RegisterCallback registers an onFinish/onError callback under name.
func RegisterCallback(name string, cb Callback) { callbacks.register(name, cb) }

// GetCallback looks up a registered callback by name.
func GetCallback(name string) (Callback, bool) { return callbacks.get(name) }

// CallbackNames lists all registered callback names.
func CallbackNames() []string { return callbacks.names() }

// ResetAll clears every registry. Intended for test isolation between
// workflow executions that register their own handlers/providers/tools.
func ResetAll() {
	handlers.reset()
	providers.reset()
	toolSpecs.reset()
	callbacks.reset()
}

package primitives

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/botanarede/beddel-alpha/model"
	"github.com/botanarede/beddel-alpha/registry"
	"github.com/botanarede/beddel-alpha/stream"
	"github.com/botanarede/beddel-alpha/vars"
	"github.com/botanarede/beddel-alpha/workflow"
)

func init() {
	registry.RegisterHandler("chat", ChatHandler)
}

// ChatHandler implements the chat primitive (spec §4.6): config mirrors the
// llm primitive's with additional onFinish/onError callback names, and
// "messages" is in the UI-message shape (typed parts) rather than the llm
// primitive's native model shape. The step short-circuits the remaining
// workflow by returning a Response wrapping the stream.
func ChatHandler(ctx context.Context, config map[string]any) (any, error) {
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

	msgs, err := toUIMessages(messages)
	if err != nil {
		return nil, err
	}
	if text, ok := system.(string); ok && text != "" {
		msgs = append([]model.Message{{Role: model.RoleSystem, Parts: []model.Part{model.TextPart{Text: text}}}}, msgs...)
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

	modelStream, err := client.Stream(ctx, req)
	if err != nil {
		return nil, err
	}

	s := stream.FromModel(modelStream)

	onFinish, _ := config["onFinish"].(string)
	onError, _ := config["onError"].(string)
	if onFinish != "" || onError != "" {
		s = withLifecycle(ctx, s, onFinish, onError)
	}

	if execCtx != nil {
		if trace := execCtx.Trace(); len(trace) > 0 {
			s = stream.WithTrace(s, uuid.NewString(), trace)
		}
	}

	return workflow.Response{Stream: s}, nil
}

// withLifecycle wraps s so the onFinish/onError names (looked up in the
// Callback Registry at invocation time) are invoked once the stream reaches
// its terminal event. Names that are not in the Callback Registry are
// ignored; no log entry is written for them.
func withLifecycle(ctx context.Context, s stream.Stream, onFinish, onError string) stream.Stream {
	return &lifecycleStream{ctx: ctx, inner: s, onFinish: onFinish, onError: onError}
}

type lifecycleStream struct {
	ctx      context.Context
	inner    stream.Stream
	onFinish string
	onError  string
	text     string
	done     bool
}

func (l *lifecycleStream) Recv() (stream.Event, error) {
	ev, err := l.inner.Recv()
	if err != nil {
		if err != io.EOF {
			l.fireError(err)
		}
		return ev, err
	}
	switch ev.Type {
	case stream.EventTextDelta:
		l.text += ev.Delta
	case stream.EventFinish:
		l.fireFinish(ev)
	}
	return ev, nil
}

func (l *lifecycleStream) Close() error { return l.inner.Close() }

func (l *lifecycleStream) fireFinish(ev stream.Event) {
	if l.done || l.onFinish == "" {
		l.done = true
		return
	}
	l.done = true
	cb, ok := registry.GetCallback(l.onFinish)
	if !ok {
		return
	}
	_ = cb(l.ctx, map[string]any{"text": l.text, "response": ev.Data})
}

func (l *lifecycleStream) fireError(err error) {
	if l.onError == "" {
		return
	}
	cb, ok := registry.GetCallback(l.onError)
	if !ok {
		return
	}
	_ = cb(l.ctx, map[string]any{"error": err.Error()})
}

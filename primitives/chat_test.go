package primitives

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/botanarede/beddel-alpha/model"
	"github.com/botanarede/beddel-alpha/registry"
	"github.com/botanarede/beddel-alpha/stream"
	"github.com/botanarede/beddel-alpha/workflow"
)

type fakeStreamer struct {
	chunks []model.Chunk
	idx    int
}

func (f *fakeStreamer) Recv() (model.Chunk, error) {
	if f.idx >= len(f.chunks) {
		return model.Chunk{}, io.EOF
	}
	c := f.chunks[f.idx]
	f.idx++
	return c, nil
}

func (f *fakeStreamer) Close() error { return nil }

type fakeStreamingClient struct {
	streamer *fakeStreamer
}

func (f *fakeStreamingClient) Complete(ctx context.Context, req model.Request) (model.Response, error) {
	return model.Response{}, nil
}

func (f *fakeStreamingClient) Stream(ctx context.Context, req model.Request) (model.Streamer, error) {
	return f.streamer, nil
}

func drain(t *testing.T, s stream.Stream) []stream.Event {
	t.Helper()
	var events []stream.Event
	for {
		ev, err := s.Recv()
		if err == io.EOF {
			return events
		}
		require.NoError(t, err)
		events = append(events, ev)
	}
}

func TestChatHandlerReturnsStreamingResponse(t *testing.T) {
	client := &fakeStreamingClient{streamer: &fakeStreamer{chunks: []model.Chunk{
		{TextDelta: "hel"},
		{TextDelta: "lo"},
		{StopReason: "stop"},
	}}}
	registry.RegisterProvider("chat-test", client)
	t.Cleanup(func() { registry.RegisterProvider("chat-test", nil) })

	result, err := ChatHandler(context.Background(), map[string]any{
		"provider": "chat-test",
		"messages": []any{map[string]any{"role": "user", "parts": []any{
			map[string]any{"type": "text", "text": "hi"},
		}}},
	})
	require.NoError(t, err)

	resp, ok := result.(workflow.Response)
	require.True(t, ok)
	s := resp.Stream.(stream.Stream)
	events := drain(t, s)
	require.Len(t, events, 3)
	assert.Equal(t, "hel", events[0].Delta)
	assert.Equal(t, stream.EventFinish, events[2].Type)
}

func TestChatHandlerFiresOnFinishCallback(t *testing.T) {
	client := &fakeStreamingClient{streamer: &fakeStreamer{chunks: []model.Chunk{
		{TextDelta: "done"},
		{StopReason: "stop"},
	}}}
	registry.RegisterProvider("chat-test-finish", client)
	t.Cleanup(func() { registry.RegisterProvider("chat-test-finish", nil) })

	var captured map[string]any
	registry.RegisterCallback("capture-finish", func(ctx context.Context, payload any) error {
		captured = payload.(map[string]any)
		return nil
	})

	result, err := ChatHandler(context.Background(), map[string]any{
		"provider": "chat-test-finish",
		"onFinish": "capture-finish",
		"messages": []any{},
	})
	require.NoError(t, err)
	resp := result.(workflow.Response)
	drain(t, resp.Stream.(stream.Stream))

	require.NotNil(t, captured)
	assert.Equal(t, "done", captured["text"])
}

func TestChatHandlerUnknownCallbackNameIgnored(t *testing.T) {
	client := &fakeStreamingClient{streamer: &fakeStreamer{chunks: []model.Chunk{{StopReason: "stop"}}}}
	registry.RegisterProvider("chat-test-unknown-cb", client)
	t.Cleanup(func() { registry.RegisterProvider("chat-test-unknown-cb", nil) })

	result, err := ChatHandler(context.Background(), map[string]any{
		"provider": "chat-test-unknown-cb",
		"onFinish": "not-registered",
		"messages": []any{},
	})
	require.NoError(t, err)
	resp := result.(workflow.Response)
	events := drain(t, resp.Stream.(stream.Stream))
	require.Len(t, events, 1)
}

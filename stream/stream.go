// Package stream implements the UI-message stream abstraction the chat
// primitive returns (spec §4.6): a sequence of typed events a transport
// (SSE, WebSocket) forwards to a client, including the transient
// "data-trace" part that carries sanitized observability events without
// being persisted into the message list.
package stream

import (
	"io"

	"github.com/botanarede/beddel-alpha/model"
	"github.com/botanarede/beddel-alpha/telemetry"
)

// EventType enumerates the UI-message stream event kinds this package
// emits. Real deployments may carry a richer vocabulary (tool-call deltas,
// reasoning parts); the core only needs enough to forward model text and
// inject the trace data-part.
type EventType string

const (
	EventTextDelta EventType = "text-delta"
	EventToolCall  EventType = "tool-call"
	EventData      EventType = "data-trace"
	EventFinish    EventType = "finish"
	EventError     EventType = "error"
)

// Event is one item of a UI-message stream.
type Event struct {
	Type EventType `json:"type"`
	// ID identifies the part an event belongs to: the tool-call id for
	// EventToolCall, or the stable id of a single data-trace injection for
	// EventData. Text-delta events carry no ID.
	ID string `json:"id,omitempty"`
	// Delta carries incremental text for EventTextDelta.
	Delta string `json:"delta,omitempty"`
	// Data carries the payload for EventData (a {events: trace} envelope)
	// and EventError (an error's classified type, never its raw message).
	Data any `json:"data,omitempty"`
	// Transient marks a data-part that must be delivered to the client but
	// not appended to the persisted message list, per spec §4.6.
	Transient bool `json:"transient,omitempty"`
}

// Stream delivers Events to a consumer. Recv returns io.EOF once the
// underlying generation has finished.
type Stream interface {
	Recv() (Event, error)
	Close() error
}

// FromModel adapts a model.Streamer into a Stream, translating each
// model.Chunk into the corresponding UI-message Event.
func FromModel(s model.Streamer) Stream {
	return &modelStream{s: s}
}

type modelStream struct {
	s      model.Streamer
	closed bool
}

func (m *modelStream) Recv() (Event, error) {
	chunk, err := m.s.Recv()
	if err != nil {
		return Event{}, err
	}
	switch {
	case chunk.Type == "tool_use" && chunk.ToolCall != nil:
		return Event{Type: EventToolCall, ID: chunk.ToolCall.ID, Data: map[string]any{
			"name":    chunk.ToolCall.Name,
			"payload": chunk.ToolCall.Payload,
		}}, nil
	case chunk.StopReason != "":
		return Event{Type: EventFinish, Data: map[string]any{"stopReason": chunk.StopReason}}, nil
	default:
		return Event{Type: EventTextDelta, Delta: chunk.TextDelta}, nil
	}
}

func (m *modelStream) Close() error {
	if m.closed {
		return nil
	}
	m.closed = true
	return m.s.Close()
}

// WithTrace wraps inner so its first Recv call returns a single transient
// data-trace event carrying events, per §4.6's "writes a transient
// data-part ... and then merges the model's UI-message stream". id is the
// stable identifier for that data-part.
func WithTrace(inner Stream, id string, events []telemetry.Event) Stream {
	if len(events) == 0 {
		return inner
	}
	return &tracePrefixedStream{inner: inner, id: id, events: events}
}

type tracePrefixedStream struct {
	inner      Stream
	id         string
	events     []telemetry.Event
	sentHeader bool
}

func (t *tracePrefixedStream) Recv() (Event, error) {
	if !t.sentHeader {
		t.sentHeader = true
		return Event{
			Type:      EventData,
			ID:        t.id,
			Data:      map[string]any{"events": t.events},
			Transient: true,
		}, nil
	}
	return t.inner.Recv()
}

func (t *tracePrefixedStream) Close() error { return t.inner.Close() }

var _ = io.EOF

// Package model defines the provider-agnostic message and request/response
// types shared by the llm and chat primitives and by every Provider Registry
// adapter. Messages are modeled as typed parts (text, image, document,
// thinking, tool use/result) rather than flattened strings so that providers
// can round-trip structure without lossy string concatenation.
package model

import (
	"context"
	"encoding/json"
	"errors"
)

// ConversationRole is the role for a message in a conversation.
type ConversationRole string

const (
	// RoleSystem is the role for system messages.
	RoleSystem ConversationRole = "system"
	// RoleUser is the role for user messages.
	RoleUser ConversationRole = "user"
	// RoleAssistant is the role for assistant messages.
	RoleAssistant ConversationRole = "assistant"
)

type (
	// Part is a marker interface implemented by all message content blocks.
	Part interface {
		isPart()
	}

	// TextPart is a plain text content block.
	TextPart struct {
		Text string `json:"text"`
	}

	// ImagePart carries image bytes attached to a message.
	ImagePart struct {
		Format string `json:"format"`
		Bytes  []byte `json:"bytes"`
	}

	// DocumentPart carries document content attached to a message.
	DocumentPart struct {
		Name   string `json:"name"`
		Format string `json:"format"`
		Text   string `json:"text,omitempty"`
		Bytes  []byte `json:"bytes,omitempty"`
	}

	// ThinkingPart represents provider-issued reasoning content. Callers treat
	// this as opaque and surface it according to UI policy.
	ThinkingPart struct {
		Text      string `json:"text"`
		Signature string `json:"signature,omitempty"`
		Index     int    `json:"index"`
	}

	// ToolUsePart declares a tool invocation requested by the assistant.
	ToolUsePart struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Input any    `json:"input"`
	}

	// ToolResultPart carries a tool result attached to a user message so a
	// subsequent model turn can read it.
	ToolResultPart struct {
		ToolUseID string `json:"toolUseId"`
		Content   any    `json:"content"`
		IsError   bool   `json:"isError,omitempty"`
	}

	// CacheCheckpointPart marks a prompt-caching boundary. Providers that do
	// not support caching ignore it.
	CacheCheckpointPart struct{}

	// Message is a single chat message: an ordered sequence of typed parts
	// under a conversation role.
	Message struct {
		Role  ConversationRole `json:"role"`
		Parts []Part           `json:"parts"`
		Meta  map[string]any   `json:"meta,omitempty"`
	}

	// ToolDefinition describes a tool exposed to the model for a single
	// request. Name and InputSchema come from the bound tools.ToolSpec.
	ToolDefinition struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		InputSchema any    `json:"inputSchema"`
	}

	// ToolCall is a tool invocation requested by the model in a non-streaming
	// Response.
	ToolCall struct {
		ID      string          `json:"id"`
		Name    string          `json:"name"`
		Payload json.RawMessage `json:"payload"`
	}

	// TokenUsage tracks token counts for a single model call.
	TokenUsage struct {
		InputTokens  int `json:"inputTokens"`
		OutputTokens int `json:"outputTokens"`
		TotalTokens  int `json:"totalTokens"`
	}

	// ModelClass selects a model family when Request.Model is not set.
	ModelClass string

	// Request captures the inputs for a single model invocation. The llm and
	// chat primitives build a Request from their resolved step config before
	// invoking the bound Client.
	Request struct {
		Model       string
		ModelClass  ModelClass
		Messages    []Message
		Temperature float64
		MaxTokens   int
		Tools       []ToolDefinition
	}

	// Response is the result of a non-streaming invocation.
	Response struct {
		Text      string
		ToolCalls []ToolCall
		Usage     TokenUsage
		StopReason string
	}

	// Chunk is a single streaming event emitted while a Streamer is drained.
	Chunk struct {
		Type       string
		TextDelta  string
		ToolCall   *ToolCall
		StopReason string
	}

	// Client is the provider-agnostic model client bound to a name in the
	// Provider Registry (§4.3). Implementations translate Request into a
	// concrete provider call and adapt the provider's response back into
	// Response/Chunk.
	Client interface {
		// Complete performs a single non-streaming invocation.
		Complete(ctx context.Context, req Request) (Response, error)
		// Stream performs a streaming invocation. Implementations that cannot
		// stream return ErrStreamingUnsupported.
		Stream(ctx context.Context, req Request) (Streamer, error)
	}

	// Streamer delivers incremental chunks from a streaming model call.
	// Callers drain Recv until it returns io.EOF, then call Close.
	Streamer interface {
		Recv() (Chunk, error)
		Close() error
	}
)

const (
	// ModelClassDefault selects the provider's default model.
	ModelClassDefault ModelClass = "default"
	// ModelClassHighReasoning selects a high-reasoning model family.
	ModelClassHighReasoning ModelClass = "high-reasoning"
	// ModelClassSmall selects a small/cheap model family.
	ModelClassSmall ModelClass = "small"
)

// ErrStreamingUnsupported indicates the provider does not support streaming.
var ErrStreamingUnsupported = errors.New("model: streaming not supported")

// ErrRateLimited indicates the provider rejected the request due to rate
// limiting. Callers must not retry in a tight loop; the core never retries
// on the caller's behalf (see spec Non-goals).
var ErrRateLimited = errors.New("model: rate limited")

func (TextPart) isPart()            {}
func (ImagePart) isPart()           {}
func (DocumentPart) isPart()        {}
func (ThinkingPart) isPart()        {}
func (ToolUsePart) isPart()         {}
func (ToolResultPart) isPart()      {}
func (CacheCheckpointPart) isPart() {}

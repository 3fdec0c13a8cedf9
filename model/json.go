package model

import (
	"encoding/json"
	"fmt"
)

// MarshalJSON encodes a Message while preserving the concrete Part types
// stored in Parts via an explicit "kind" discriminator, since Parts is stored
// as an interface slice and would otherwise lose type information on
// round-trip.
func (m Message) MarshalJSON() ([]byte, error) {
	type alias struct {
		Role  ConversationRole `json:"role"`
		Parts []any            `json:"parts,omitempty"`
		Meta  map[string]any   `json:"meta,omitempty"`
	}
	if len(m.Parts) == 0 {
		return json.Marshal(alias{Role: m.Role, Meta: m.Meta})
	}
	parts := make([]any, 0, len(m.Parts))
	for i, p := range m.Parts {
		enc, err := encodePart(p)
		if err != nil {
			return nil, fmt.Errorf("encode parts[%d]: %w", i, err)
		}
		parts = append(parts, enc)
	}
	return json.Marshal(alias{Role: m.Role, Parts: parts, Meta: m.Meta})
}

// UnmarshalJSON decodes a Message, materializing concrete Part
// implementations from the "kind" discriminator.
func (m *Message) UnmarshalJSON(data []byte) error {
	type alias struct {
		Role  ConversationRole  `json:"role"`
		Parts []json.RawMessage `json:"parts"`
		Meta  map[string]any    `json:"meta"`
	}
	var tmp alias
	if err := json.Unmarshal(data, &tmp); err != nil {
		return err
	}
	m.Role = tmp.Role
	m.Meta = tmp.Meta
	if len(tmp.Parts) == 0 {
		m.Parts = nil
		return nil
	}
	parts := make([]Part, 0, len(tmp.Parts))
	for i, raw := range tmp.Parts {
		p, err := decodePart(raw)
		if err != nil {
			return fmt.Errorf("decode parts[%d]: %w", i, err)
		}
		parts = append(parts, p)
	}
	m.Parts = parts
	return nil
}

func encodePart(p Part) (any, error) {
	switch v := p.(type) {
	case TextPart:
		return map[string]any{"kind": "text", "text": v.Text}, nil
	case ImagePart:
		return map[string]any{"kind": "image", "format": v.Format, "bytes": v.Bytes}, nil
	case DocumentPart:
		return map[string]any{"kind": "document", "name": v.Name, "format": v.Format, "text": v.Text, "bytes": v.Bytes}, nil
	case ThinkingPart:
		return map[string]any{"kind": "thinking", "text": v.Text, "signature": v.Signature, "index": v.Index}, nil
	case ToolUsePart:
		return map[string]any{"kind": "tool_use", "id": v.ID, "name": v.Name, "input": v.Input}, nil
	case ToolResultPart:
		return map[string]any{"kind": "tool_result", "toolUseId": v.ToolUseID, "content": v.Content, "isError": v.IsError}, nil
	case CacheCheckpointPart:
		return map[string]any{"kind": "cache_checkpoint"}, nil
	default:
		return nil, fmt.Errorf("unsupported part type %T", p)
	}
}

func decodePart(raw json.RawMessage) (Part, error) {
	var head struct {
		Kind string `json:"kind"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, err
	}
	switch head.Kind {
	case "text":
		var v struct {
			Text string `json:"text"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return TextPart{Text: v.Text}, nil
	case "image":
		var v struct {
			Format string `json:"format"`
			Bytes  []byte `json:"bytes"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return ImagePart{Format: v.Format, Bytes: v.Bytes}, nil
	case "document":
		var v struct {
			Name   string `json:"name"`
			Format string `json:"format"`
			Text   string `json:"text"`
			Bytes  []byte `json:"bytes"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return DocumentPart{Name: v.Name, Format: v.Format, Text: v.Text, Bytes: v.Bytes}, nil
	case "thinking":
		var v struct {
			Text      string `json:"text"`
			Signature string `json:"signature"`
			Index     int    `json:"index"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return ThinkingPart{Text: v.Text, Signature: v.Signature, Index: v.Index}, nil
	case "tool_use":
		var v struct {
			ID    string `json:"id"`
			Name  string `json:"name"`
			Input any    `json:"input"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return ToolUsePart{ID: v.ID, Name: v.Name, Input: v.Input}, nil
	case "tool_result":
		var v struct {
			ToolUseID string `json:"toolUseId"`
			Content   any    `json:"content"`
			IsError   bool   `json:"isError"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return ToolResultPart{ToolUseID: v.ToolUseID, Content: v.Content, IsError: v.IsError}, nil
	case "cache_checkpoint":
		return CacheCheckpointPart{}, nil
	default:
		return nil, fmt.Errorf("unknown part kind %q", head.Kind)
	}
}

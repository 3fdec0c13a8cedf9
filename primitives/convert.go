package primitives

import (
	"encoding/json"
	"fmt"

	"github.com/botanarede/beddel-alpha/model"
)

// jsonUnmarshalLoose decodes raw into dst, treating empty input as a no-op
// rather than an error so a tool call with no payload does not fail solely
// for lacking arguments.
func jsonUnmarshalLoose(raw json.RawMessage, dst any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dst)
}

// toModelMessages builds the request message list for the llm primitive,
// which per spec §4.5 does not convert message shape: the resolved
// "messages" value is assumed to already be in the model's native shape.
// system, if set, is prepended as a system-role message.
func toModelMessages(system, messages any) ([]model.Message, error) {
	var out []model.Message
	if text, ok := system.(string); ok && text != "" {
		out = append(out, model.Message{Role: model.RoleSystem, Parts: []model.Part{model.TextPart{Text: text}}})
	}

	list, ok := messages.([]any)
	if !ok {
		if messages == nil {
			return out, nil
		}
		return nil, fmt.Errorf("primitives: messages must resolve to a list, got %T", messages)
	}
	for i, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("primitives: messages[%d] must be a mapping, got %T", i, item)
		}
		msg, err := decodeNativeMessage(m)
		if err != nil {
			return nil, fmt.Errorf("primitives: messages[%d]: %w", i, err)
		}
		out = append(out, msg)
	}
	return out, nil
}

// decodeNativeMessage decodes a resolved message mapping that already uses
// the model's native shape: {role, content} where content is a string, as
// opposed to the UI-message {role, parts} shape the chat primitive converts
// from. Content given as a list of parts (or any other non-string value) is
// rejected with an error; a missing content yields a message with no parts.
func decodeNativeMessage(m map[string]any) (model.Message, error) {
	role, _ := m["role"].(string)
	msg := model.Message{Role: model.ConversationRole(role)}
	switch content := m["content"].(type) {
	case string:
		msg.Parts = []model.Part{model.TextPart{Text: content}}
	case nil:
	default:
		return model.Message{}, fmt.Errorf("unsupported content shape %T", content)
	}
	return msg, nil
}

// uiMessage is the structured, typed-parts shape the chat primitive accepts
// from its caller before converting to the model's native message shape.
type uiMessage struct {
	Role  string      `json:"role"`
	Parts []uiPart    `json:"parts"`
}

type uiPart struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// toUIMessages converts a resolved "messages" value from the UI-message
// shape (role + typed parts) to model.Message, the definitional conversion
// step §4.6 performs that §4.5 does not.
func toUIMessages(messages any) ([]model.Message, error) {
	list, ok := messages.([]any)
	if !ok {
		if messages == nil {
			return nil, nil
		}
		return nil, fmt.Errorf("primitives: messages must resolve to a list, got %T", messages)
	}
	out := make([]model.Message, 0, len(list))
	for i, item := range list {
		raw, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("primitives: messages[%d] must be a mapping, got %T", i, item)
		}
		role, _ := raw["role"].(string)
		msg := model.Message{Role: model.ConversationRole(role)}
		parts, _ := raw["parts"].([]any)
		for _, p := range parts {
			partMap, ok := p.(map[string]any)
			if !ok {
				continue
			}
			switch partMap["type"] {
			case "text":
				text, _ := partMap["text"].(string)
				msg.Parts = append(msg.Parts, model.TextPart{Text: text})
			}
		}
		out = append(out, msg)
	}
	return out, nil
}

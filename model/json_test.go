package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMessageJSONRoundTrip(t *testing.T) {
	msg := Message{
		Role: RoleAssistant,
		Parts: []Part{
			TextPart{Text: "hello"},
			ToolUsePart{ID: "t1", Name: "search", Input: map[string]any{"q": "go"}},
			ToolResultPart{ToolUseID: "t1", Content: "result", IsError: false},
		},
		Meta: map[string]any{"turn": float64(1)},
	}

	data, err := json.Marshal(msg)
	require.NoError(t, err)

	var decoded Message
	require.NoError(t, json.Unmarshal(data, &decoded))

	require.Equal(t, msg.Role, decoded.Role)
	require.Len(t, decoded.Parts, 3)
	require.Equal(t, TextPart{Text: "hello"}, decoded.Parts[0])
	require.Equal(t, msg.Meta, decoded.Meta)
}

func TestMessageJSONUnknownPartKind(t *testing.T) {
	_, err := decodePart(json.RawMessage(`{"kind":"bogus"}`))
	require.Error(t, err)
}

package bedrock

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/document"
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/stretchr/testify/require"

	"github.com/botanarede/beddel-alpha/model"
)

type mockRuntime struct {
	output   *bedrockruntime.ConverseOutput
	captured *bedrockruntime.ConverseInput
}

func (m *mockRuntime) Converse(_ context.Context, params *bedrockruntime.ConverseInput, _ ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error) {
	m.captured = params
	return m.output, nil
}

func (m *mockRuntime) ConverseStream(context.Context, *bedrockruntime.ConverseStreamInput, ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseStreamOutput, error) {
	return nil, nil
}

func TestClientCompleteTranslatesResponse(t *testing.T) {
	mock := &mockRuntime{
		output: &bedrockruntime.ConverseOutput{
			Output: &brtypes.ConverseOutputMemberMessage{Value: brtypes.Message{
				Role: brtypes.ConversationRoleAssistant,
				Content: []brtypes.ContentBlock{
					&brtypes.ContentBlockMemberText{Value: "hello"},
					&brtypes.ContentBlockMemberToolUse{Value: brtypes.ToolUseBlock{
						Name:  aws.String("calc_tool"),
						Input: document.NewLazyDocument(&map[string]any{"value": 42}),
					}},
				},
			}},
			Usage:      &brtypes.TokenUsage{InputTokens: aws.Int32(100), OutputTokens: aws.Int32(20), TotalTokens: aws.Int32(120)},
			StopReason: brtypes.StopReasonToolUse,
		},
	}
	client, err := New(mock, Options{DefaultModel: "anthropic.claude-3"})
	require.NoError(t, err)

	resp, err := client.Complete(context.Background(), model.Request{
		Messages: []model.Message{
			{Role: model.RoleSystem, Parts: []model.Part{model.TextPart{Text: "you are smart"}}},
			{Role: model.RoleUser, Parts: []model.Part{model.TextPart{Text: "hi"}}},
		},
		Tools: []model.ToolDefinition{{Name: "calc_tool", Description: "calculator", InputSchema: map[string]any{"type": "object"}}},
	})
	require.NoError(t, err)
	require.Equal(t, "hello", resp.Text)
	require.Len(t, resp.ToolCalls, 1)
	require.Equal(t, "calc_tool", resp.ToolCalls[0].Name)
	require.Equal(t, "tool_use", resp.StopReason)
	require.Equal(t, 120, resp.Usage.TotalTokens)

	require.Equal(t, "anthropic.claude-3", *mock.captured.ModelId)
	require.Len(t, mock.captured.System, 1)
	require.Len(t, mock.captured.Messages, 1)
	require.NotNil(t, mock.captured.ToolConfig)
	require.Len(t, mock.captured.ToolConfig.Tools, 1)
}

func TestClientCompleteRequiresMessages(t *testing.T) {
	client, err := New(&mockRuntime{}, Options{DefaultModel: "id"})
	require.NoError(t, err)
	_, err = client.Complete(context.Background(), model.Request{
		Messages: []model.Message{{Role: model.RoleSystem, Parts: []model.Part{model.TextPart{Text: "only system"}}}},
	})
	require.Error(t, err)
}

package openai

import (
	"context"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/botanarede/beddel-alpha/model"
)

type fakeChatClient struct {
	resp openai.ChatCompletionResponse
	err  error
	got  openai.ChatCompletionRequest
}

func (f *fakeChatClient) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.got = req
	return f.resp, f.err
}

func TestClientCompleteTranslatesResponse(t *testing.T) {
	fake := &fakeChatClient{resp: openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{
			Message:      openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: "hi there"},
			FinishReason: openai.FinishReasonStop,
		}},
		Usage: openai.Usage{PromptTokens: 10, CompletionTokens: 2, TotalTokens: 12},
	}}
	client, err := New(Options{Client: fake, DefaultModel: "gpt-4o"})
	require.NoError(t, err)

	resp, err := client.Complete(context.Background(), model.Request{
		Messages: []model.Message{{
			Role:  model.RoleUser,
			Parts: []model.Part{model.TextPart{Text: "hello"}},
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, "hi there", resp.Text)
	assert.Equal(t, "stop", resp.StopReason)
	assert.Equal(t, 12, resp.Usage.TotalTokens)
	assert.Equal(t, "gpt-4o", fake.got.Model)
}

func TestClientCompleteRequiresMessages(t *testing.T) {
	client, err := New(Options{Client: &fakeChatClient{}, DefaultModel: "gpt-4o"})
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), model.Request{})
	require.Error(t, err)
}

func TestClientStreamUnsupported(t *testing.T) {
	client, err := New(Options{Client: &fakeChatClient{}, DefaultModel: "gpt-4o"})
	require.NoError(t, err)

	_, err = client.Stream(context.Background(), model.Request{})
	assert.ErrorIs(t, err, model.ErrStreamingUnsupported)
}

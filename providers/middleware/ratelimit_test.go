package middleware

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/botanarede/beddel-alpha/model"
)

type fakeClient struct {
	completeErr error

	completeCalls int
}

func (f *fakeClient) Complete(context.Context, model.Request) (model.Response, error) {
	f.completeCalls++
	return model.Response{}, f.completeErr
}

func (f *fakeClient) Stream(context.Context, model.Request) (model.Streamer, error) {
	return nil, nil
}

func TestAdaptiveRateLimiterBackoffOnRateLimited(t *testing.T) {
	limiter := NewAdaptiveRateLimiter(60000, 60000)
	initial := limiter.currentTPM

	client := &fakeClient{completeErr: model.ErrRateLimited}
	wrapped := limiter.Middleware()(client)

	req := model.Request{
		Messages: []model.Message{{Role: model.RoleUser, Parts: []model.Part{model.TextPart{Text: "hello"}}}},
	}

	_, err := wrapped.Complete(context.Background(), req)
	require.ErrorIs(t, err, model.ErrRateLimited)
	require.Equal(t, 1, client.completeCalls)

	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	require.Less(t, limiter.currentTPM, initial)
}

func TestAdaptiveRateLimiterProbeOnSuccess(t *testing.T) {
	limiter := NewAdaptiveRateLimiter(60000, 60000)
	limiter.backoff()
	backedOff := limiter.currentTPM

	client := &fakeClient{}
	wrapped := limiter.Middleware()(client)

	req := model.Request{Messages: []model.Message{{Role: model.RoleUser, Parts: []model.Part{model.TextPart{Text: "hello"}}}}}
	_, err := wrapped.Complete(context.Background(), req)
	require.NoError(t, err)

	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	require.Greater(t, limiter.currentTPM, backedOff)
}

func TestAdaptiveRateLimiterNilNextReturnsNil(t *testing.T) {
	limiter := NewAdaptiveRateLimiter(1000, 1000)
	require.Nil(t, limiter.Middleware()(nil))
}

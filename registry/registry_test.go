package registry

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/botanarede/beddel-alpha/tools"
)

type recordingLogger struct {
	mu    sync.Mutex
	warns []string
}

func (l *recordingLogger) Debug(context.Context, string, ...any) {}
func (l *recordingLogger) Info(context.Context, string, ...any)  {}
func (l *recordingLogger) Error(context.Context, string, ...any) {}
func (l *recordingLogger) Warn(_ context.Context, msg string, _ ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, msg)
}

func TestRegisterHandlerOverrideWarns(t *testing.T) {
	ResetAll()
	defer ResetAll()

	logger := &recordingLogger{}
	SetLoggers(logger)

	first := Handler(func(context.Context, map[string]any) (any, error) { return "first", nil })
	second := Handler(func(context.Context, map[string]any) (any, error) { return "second", nil })

	RegisterHandler("demo", first)
	assert.Empty(t, logger.warns)

	RegisterHandler("demo", second)
	assert.Len(t, logger.warns, 1)

	got, ok := GetHandler("demo")
	require.True(t, ok)
	result, err := got(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "second", result)
}

func TestGetHandlerMissing(t *testing.T) {
	ResetAll()
	defer ResetAll()

	_, ok := GetHandler("nope")
	assert.False(t, ok)
}

func TestRegisterToolRejectsInvalidSpec(t *testing.T) {
	ResetAll()
	defer ResetAll()

	err := RegisterTool(tools.Spec{Name: "broken"})
	require.Error(t, err)
}

package telemetry

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want ErrorType
	}{
		{"timeout", errors.New("context deadline exceeded: timeout waiting for response"), ErrorTypeTimeout},
		{"auth lower", errors.New("request failed: unauthorized"), ErrorTypeAuthFailed},
		{"auth mixed case", errors.New("Auth token expired"), ErrorTypeAuthFailed},
		{"validation", errors.New("schema validation failed for field q"), ErrorTypeValidation},
		{"network", errors.New("dial tcp: connect: ECONNREFUSED"), ErrorTypeNetwork},
		{"unknown", errors.New("something went sideways"), ErrorTypeUnknown},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, Classify(c.err))
		})
	}
}

func TestClassifyNeverLeaksMessage(t *testing.T) {
	err := errors.New("ECONNREFUSED talking to upstream at https://internal.example.com/secret")
	got := Classify(err)
	assert.Equal(t, ErrorTypeNetwork, got)
	assert.NotContains(t, string(got), "secret")
	assert.NotContains(t, string(got), "internal.example.com")
}

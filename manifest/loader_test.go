package manifest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseValidManifest(t *testing.T) {
	src := []byte(`
metadata:
  name: demo-agent
  version: "1.0.0"
  observability:
    enabled: "true"
workflow:
  - id: step1
    type: llm
    config:
      provider: anthropic
      messages: $input.messages
    result: step1
  - id: step2
    type: output-generator
    config:
      template: $step1
return:
  value: $step2
`)
	m, err := Parse("inline", src)
	require.NoError(t, err)
	assert.Equal(t, "demo-agent", m.Metadata.Name)
	assert.True(t, m.Metadata.Observability.Enabled)
	require.Len(t, m.Workflow, 2)
	assert.Equal(t, "step1", m.Workflow[0].ID)
	assert.Equal(t, "llm", m.Workflow[0].Type)
}

func TestParseRejectsUnsafeTag(t *testing.T) {
	src := []byte(`
metadata:
  name: demo
  version: "1.0.0"
workflow:
  - id: step1
    type: llm
    config:
      payload: !!binary "SGVsbG8="
`)
	_, err := Parse("inline", src)
	require.Error(t, err)
	var parseErr *ParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestParseRejectsMissingWorkflow(t *testing.T) {
	src := []byte(`
metadata:
  name: demo
  version: "1.0.0"
workflow: []
`)
	_, err := Parse("inline", src)
	require.Error(t, err)
	var valErr *ValidationError
	assert.ErrorAs(t, err, &valErr)
}

func TestParseRejectsDuplicateStepID(t *testing.T) {
	src := []byte(`
metadata:
  name: demo
  version: "1.0.0"
workflow:
  - id: step1
    type: llm
  - id: step1
    type: output-generator
`)
	_, err := Parse("inline", src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate step id")
}

func TestParseRejectsNonMappingDocument(t *testing.T) {
	src := []byte(`- a\n- b`)
	_, err := Parse("inline", src)
	require.Error(t, err)
}

func TestParseObservabilityDefaultsFalse(t *testing.T) {
	src := []byte(`
metadata:
  name: demo
  version: "1.0.0"
workflow:
  - id: step1
    type: llm
`)
	m, err := Parse("inline", src)
	require.NoError(t, err)
	assert.False(t, m.Metadata.Observability.Enabled)
}

// Package manifest implements the YAML loader (spec §4.1) and the in-memory
// workflow model (spec §3's Agent Manifest / Workflow Step) it produces.
package manifest

// Observability holds the metadata.observability block. Enabled is parsed
// leniently: both boolean and string truthy forms are accepted, matching the
// executor's "treating both boolean and string forms as truthy" rule.
type Observability struct {
	Enabled bool
}

// Metadata is the manifest's required identity block.
type Metadata struct {
	Name          string        `yaml:"name" validate:"required"`
	Version       string        `yaml:"version" validate:"required"`
	Observability Observability `yaml:"-"`
}

// Step is one entry of the ordered workflow sequence. Config is an opaque
// mapping whose recognized keys are defined by the bound handler; the loader
// never interprets it beyond basic-tag decoding.
type Step struct {
	ID     string         `yaml:"id" validate:"required"`
	Type   string         `yaml:"type" validate:"required"`
	Config map[string]any `yaml:"config"`
	Result string         `yaml:"result,omitempty"`
}

// Manifest is the typed shape of a parsed agent: metadata, an ordered
// sequence of steps, and an optional return template resolved via the
// variable resolver after the last step runs.
type Manifest struct {
	Metadata Metadata `yaml:"metadata" validate:"required"`
	Workflow []Step   `yaml:"workflow" validate:"required,min=1,dive"`
	Return   any      `yaml:"return,omitempty"`
}

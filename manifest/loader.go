package manifest

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// allowedTags is the restricted tag set the loader accepts: plain scalars,
// sequences, and mappings, plus YAML's core scalar kinds. Any other resolved
// tag (binary blobs, timestamps, custom `!` tags, merge keys) is rejected
// before the document is ever decoded into Go types, since that is the
// attack surface closest to untrusted input.
var allowedTags = map[string]bool{
	"!!str":   true,
	"!!seq":   true,
	"!!map":   true,
	"!!null":  true,
	"!!bool":  true,
	"!!int":   true,
	"!!float": true,
}

// Load reads path, parses it under the restricted tag set, and validates the
// resulting document against the Agent Manifest invariants: non-empty
// metadata, a non-empty workflow, and unique non-empty step ids/types.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewParseError(path, 0, "unable to read manifest", err)
	}
	return Parse(path, data)
}

// Parse parses raw YAML bytes (source is used only to annotate errors) into
// a validated Manifest. It is split out from Load so tests and embedders can
// supply in-memory manifests without touching the filesystem.
func Parse(source string, data []byte) (*Manifest, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, NewParseError(source, extractLine(err), "invalid YAML syntax", err)
	}
	if len(doc.Content) == 0 {
		return nil, NewParseError(source, 0, "empty document", nil)
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, NewParseError(source, root.Line, "document must be a top-level mapping", nil)
	}
	if err := checkTags(root); err != nil {
		return nil, NewParseError(source, root.Line, err.Error(), err)
	}

	var raw rawManifest
	if err := root.Decode(&raw); err != nil {
		return nil, NewParseError(source, root.Line, "unable to decode manifest", err)
	}

	m, err := raw.toManifest()
	if err != nil {
		return nil, err
	}
	if err := validateManifest(m); err != nil {
		return nil, err
	}
	return m, nil
}

// rawManifest mirrors the wire shape before Observability's leniently-typed
// enabled field is normalized into a bool.
type rawManifest struct {
	Metadata struct {
		Name          string `yaml:"name"`
		Version       string `yaml:"version"`
		Observability *struct {
			Enabled yaml.Node `yaml:"enabled"`
		} `yaml:"observability"`
	} `yaml:"metadata"`
	Workflow []Step `yaml:"workflow"`
	Return   any    `yaml:"return"`
}

func (r rawManifest) toManifest() (*Manifest, error) {
	m := &Manifest{
		Metadata: Metadata{
			Name:    r.Metadata.Name,
			Version: r.Metadata.Version,
		},
		Workflow: r.Workflow,
		Return:   r.Return,
	}
	if r.Metadata.Observability != nil {
		enabled, err := truthy(r.Metadata.Observability.Enabled)
		if err != nil {
			return nil, NewValidationError("metadata.observability.enabled", err.Error(), err)
		}
		m.Metadata.Observability.Enabled = enabled
	}
	return m, nil
}

// truthy normalizes metadata.observability.enabled, which the manifest model
// accepts as either a boolean or a string, per the executor's "treating both
// boolean and string forms as truthy" rule.
func truthy(node yaml.Node) (bool, error) {
	if node.Kind == 0 {
		return false, nil
	}
	var raw string
	if err := node.Decode(&raw); err != nil {
		var b bool
		if err2 := node.Decode(&b); err2 != nil {
			return false, fmt.Errorf("observability.enabled must be a boolean or string")
		}
		return b, nil
	}
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1", "yes", "on":
		return true, nil
	case "", "false", "0", "no", "off":
		return false, nil
	default:
		if b, err := strconv.ParseBool(raw); err == nil {
			return b, nil
		}
		return false, fmt.Errorf("observability.enabled has unrecognized value %q", raw)
	}
}

// checkTags walks the node tree and rejects any resolved tag outside
// allowedTags, refusing executable/custom YAML constructs.
func checkTags(n *yaml.Node) error {
	if n.Tag != "" && !allowedTags[n.Tag] {
		return fmt.Errorf("unsafe or unknown YAML tag %q at line %d", n.Tag, n.Line)
	}
	for _, child := range n.Content {
		if err := checkTags(child); err != nil {
			return err
		}
	}
	return nil
}

func extractLine(err error) int {
	var line int
	if _, scanErr := fmt.Sscanf(err.Error(), "yaml: line %d:", &line); scanErr == nil {
		return line
	}
	return 0
}

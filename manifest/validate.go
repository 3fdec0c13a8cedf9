package manifest

import (
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validatorOnce sync.Once
	validatorInst *validator.Validate
)

func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		validatorInst = validator.New()
	})
	return validatorInst
}

// validateManifest enforces the Agent Manifest invariants. Required metadata
// identity, a non-empty workflow, and non-empty step id/type are checked via
// struct tags (dive into each Step); the uniqueness invariant needs
// cross-step state a struct tag cannot express, so it is checked separately.
func validateManifest(m *Manifest) error {
	if err := validatorInstance().Struct(m); err != nil {
		return convertValidationError(err)
	}

	seen := make(map[string]bool, len(m.Workflow))
	for _, step := range m.Workflow {
		if seen[step.ID] {
			return NewValidationError("workflow", fmt.Sprintf("duplicate step id %q", step.ID), nil)
		}
		seen[step.ID] = true
	}
	return nil
}

func convertValidationError(err error) error {
	if ves, ok := err.(validator.ValidationErrors); ok && len(ves) > 0 {
		fe := ves[0]
		field := yamlishFieldName(fe)
		return NewValidationError(field, fmt.Sprintf("failed validation for tag %q", fe.Tag()), err)
	}
	return NewValidationError("manifest", err.Error(), err)
}

func yamlishFieldName(fe validator.FieldError) string {
	parts := strings.Split(fe.StructNamespace(), ".")
	for i, p := range parts {
		parts[i] = strings.ToLower(p)
	}
	return strings.Join(parts, ".")
}
